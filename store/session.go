// Package store is the data-access layer: a Session over database/sql,
// per-database dialects, a schema registry and a generic Repository with
// its QueryBuilder. SQL is built with squirrel and executed through sqlx.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Executor is the set of operations shared by *sqlx.DB and *sqlx.Tx.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

// Session binds a connection pool (or an open transaction) to a dialect
// and to the logging, tracing and metrics configuration.
type Session struct {
	db       *sqlx.DB
	executor Executor
	dialect  Dialect
	obs      *ObservabilityConfig
}

// NewSession wraps db. The session is meant to live as long as the pool
// and be passed to every repository that needs it.
func NewSession(db *sql.DB, dialect Dialect, opts ...SessionOption) *Session {
	xdb := sqlx.NewDb(db, dialect.Name())
	s := &Session{
		db:       xdb,
		executor: xdb,
		dialect:  dialect,
		obs:      defaultObservabilityConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dialect returns the dialect the session was opened with.
func (s *Session) Dialect() Dialect { return s.dialect }

// Ping checks that the database is reachable.
func (s *Session) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Exec runs a statement that returns no rows.
func (s *Session) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var result sql.Result
	err := s.instrument(ctx, "exec", query, func(ctx context.Context) error {
		var err error
		result, err = s.executor.ExecContext(ctx, query, args...)
		return err
	})
	return result, err
}

// Select scans every row into dest, a pointer to a slice.
func (s *Session) Select(ctx context.Context, dest any, query string, args ...any) error {
	return s.instrument(ctx, "select", query, func(ctx context.Context) error {
		return s.executor.SelectContext(ctx, dest, query, args...)
	})
}

// Get scans a single row into dest.
func (s *Session) Get(ctx context.Context, dest any, query string, args ...any) error {
	return s.instrument(ctx, "get", query, func(ctx context.Context) error {
		return s.executor.GetContext(ctx, dest, query, args...)
	})
}

// Transaction runs fn inside a transaction, committing when fn returns nil
// and rolling back on error or panic. Nested calls reuse the open transaction.
func (s *Session) Transaction(ctx context.Context, fn func(tx *Session) error) (err error) {
	if _, ok := s.executor.(*sqlx.Tx); ok {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	txSession := &Session{db: s.db, executor: tx, dialect: s.dialect, obs: s.obs}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(txSession); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Session) instrument(ctx context.Context, operation, query string, fn func(context.Context) error) error {
	ctx, span := s.startSpan(ctx, "store."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", s.dialect.Name()),
			attribute.String("db.operation", operation),
			attribute.String("db.statement", query),
		),
	)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.recordMetrics(ctx, operation, duration, err)
	s.logQuery(ctx, operation, query, duration, err)
	return err
}
