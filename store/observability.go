package store

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/arllen133/userforms/store"

// Metrics holds the OpenTelemetry instruments recorded per query.
type Metrics struct {
	QueryCount    metric.Int64Counter
	QueryDuration metric.Float64Histogram
	QueryErrors   metric.Int64Counter
}

// ObservabilityConfig holds logging, tracing and metrics settings.
// Nil members disable the corresponding signal.
type ObservabilityConfig struct {
	Logger             *slog.Logger
	Tracer             trace.Tracer
	Metrics            *Metrics
	SlowQueryThreshold time.Duration
	LogQueries         bool
}

func defaultObservabilityConfig() *ObservabilityConfig {
	return &ObservabilityConfig{SlowQueryThreshold: 200 * time.Millisecond}
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger enables query logging to logger.
func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) { s.obs.Logger = logger }
}

// WithTracer starts a span per statement.
func WithTracer(tracer trace.Tracer) SessionOption {
	return func(s *Session) { s.obs.Tracer = tracer }
}

// WithDefaultTracer uses the globally registered tracer provider.
func WithDefaultTracer() SessionOption {
	return WithTracer(otel.Tracer(instrumentationName))
}

// WithMeter records query count, errors and duration.
func WithMeter(meter metric.Meter) SessionOption {
	return func(s *Session) { s.obs.Metrics = newMetrics(meter) }
}

// WithDefaultMeter uses the globally registered meter provider.
func WithDefaultMeter() SessionOption {
	return WithMeter(otel.Meter(instrumentationName))
}

// WithSlowQueryThreshold sets the duration above which a query is logged at warn.
func WithSlowQueryThreshold(d time.Duration) SessionOption {
	return func(s *Session) { s.obs.SlowQueryThreshold = d }
}

// WithQueryLogging logs every statement at debug, including its SQL text.
func WithQueryLogging(enabled bool) SessionOption {
	return func(s *Session) { s.obs.LogQueries = enabled }
}

func newMetrics(meter metric.Meter) *Metrics {
	queryCount, _ := meter.Int64Counter("userforms.store.query.count",
		metric.WithDescription("Total number of SQL statements executed"),
		metric.WithUnit("{query}"),
	)
	queryDuration, _ := meter.Float64Histogram("userforms.store.query.duration",
		metric.WithDescription("Statement execution duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500),
	)
	queryErrors, _ := meter.Int64Counter("userforms.store.query.errors",
		metric.WithDescription("Total number of failed SQL statements"),
		metric.WithUnit("{error}"),
	)
	return &Metrics{
		QueryCount:    queryCount,
		QueryDuration: queryDuration,
		QueryErrors:   queryErrors,
	}
}

// spanWrapper tolerates a nil span so callers need not check whether
// tracing is enabled.
type spanWrapper struct {
	span trace.Span
}

func (w spanWrapper) End() {
	if w.span != nil {
		w.span.End()
	}
}

func (w spanWrapper) RecordError(err error) {
	if w.span != nil {
		w.span.RecordError(err)
	}
}

func (w spanWrapper) SetStatus(code codes.Code, description string) {
	if w.span != nil {
		w.span.SetStatus(code, description)
	}
}

func (s *Session) startSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, spanWrapper) {
	if s.obs.Tracer == nil {
		return ctx, spanWrapper{}
	}
	ctx, span := s.obs.Tracer.Start(ctx, name, opts...)
	return ctx, spanWrapper{span}
}

func (s *Session) recordMetrics(ctx context.Context, operation string, duration time.Duration, err error) {
	if s.obs.Metrics == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("db.operation", operation),
		attribute.String("db.system", s.dialect.Name()),
	)
	s.obs.Metrics.QueryCount.Add(ctx, 1, attrs)
	s.obs.Metrics.QueryDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	if err != nil {
		s.obs.Metrics.QueryErrors.Add(ctx, 1, attrs)
	}
}

func (s *Session) logQuery(ctx context.Context, operation, query string, duration time.Duration, err error) {
	if s.obs.Logger == nil {
		return
	}

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.Duration("duration", duration),
	}
	if s.obs.LogQueries {
		attrs = append(attrs, slog.String("query", query))
	}

	switch {
	case err != nil:
		s.obs.Logger.LogAttrs(ctx, slog.LevelError, "query failed", append(attrs, slog.String("error", err.Error()))...)
	case duration > s.obs.SlowQueryThreshold:
		s.obs.Logger.LogAttrs(ctx, slog.LevelWarn, "slow query", attrs...)
	case s.obs.LogQueries:
		s.obs.Logger.LogAttrs(ctx, slog.LevelDebug, "query executed", attrs...)
	}
}
