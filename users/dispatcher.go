package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/arllen133/userforms/users"

// Dispatcher classifies a form submission by its intent, validates it and
// makes at most one gateway call. It keeps no state between calls.
type Dispatcher struct {
	gateway Gateway
	logger  *slog.Logger
	tracer  trace.Tracer
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger for internal errors and completed writes.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

// WithTracer replaces the tracer from the global provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(d *Dispatcher) { d.tracer = tracer }
}

// NewDispatcher returns a Dispatcher over gateway that logs nothing and
// traces with the global provider unless options say otherwise.
func NewDispatcher(gateway Gateway, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		gateway: gateway,
		logger:  slog.New(slog.DiscardHandler),
		tracer:  otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Handle is the single entry point for submissions. Validation failures
// and unknown intents are reported before the gateway is touched; any
// gateway error or panic becomes an InternalError whose cause is logged
// but not returned.
func (d *Dispatcher) Handle(ctx context.Context, form Form) (result Result) {
	intent := form.Get(IntentField)

	ctx, span := d.tracer.Start(ctx, "users.Dispatch",
		trace.WithAttributes(attribute.String("userforms.intent", intent)))
	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("panic: %v", p)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			d.logger.ErrorContext(ctx, "dispatch failed", slog.String("intent", intent), slog.Any("error", err))
			result = InternalError()
		}
		span.SetAttributes(attribute.String("userforms.result", result.Kind.String()))
		span.End()
	}()

	result, err := d.dispatch(ctx, Intent(intent), form)
	if err == nil {
		return result
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		d.logger.DebugContext(ctx, "submission rejected", slog.String("intent", intent), slog.Any("fields", verr.Fields))
		return ValidationFailed(verr.Message)
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	d.logger.ErrorContext(ctx, "dispatch failed", slog.String("intent", intent), slog.Any("error", err))
	return InternalError()
}

func (d *Dispatcher) dispatch(ctx context.Context, intent Intent, form Form) (Result, error) {
	switch intent {
	case IntentCreate:
		in, err := ParseCreate(form)
		if err != nil {
			return Result{}, err
		}
		u, err := d.gateway.Insert(ctx, in.Name, in.Age, in.Email)
		if err != nil {
			return Result{}, fmt.Errorf("insert user: %w", err)
		}
		d.logger.InfoContext(ctx, "user created", slog.Int64("id", u.ID))
		return Success(MsgCreated), nil

	case IntentUpdate:
		in, err := ParseUpdate(form)
		if err != nil {
			return Result{}, err
		}
		if err := d.gateway.UpdateByID(ctx, in.ID, in.Name, in.Age, in.Email); err != nil {
			return Result{}, fmt.Errorf("update user %d: %w", in.ID, err)
		}
		d.logger.InfoContext(ctx, "user updated", slog.Int64("id", in.ID))
		return Success(MsgUpdated), nil

	case IntentDelete:
		in := ParseDelete(form)
		if err := d.gateway.DeleteByID(ctx, in.ID); err != nil {
			return Result{}, fmt.Errorf("delete user %d: %w", in.ID, err)
		}
		d.logger.InfoContext(ctx, "user deleted", slog.Int64("id", in.ID))
		return Success(MsgDeleted), nil
	}
	return InvalidIntent(), nil
}
