package store

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/arllen133/userforms/clause"
)

// ErrNotFound is returned by Take, First and FindOne when nothing matches.
var ErrNotFound = errors.New("store: record not found")

// QueryBuilder assembles a SELECT over model T. Methods mutate and return
// the receiver; the first build error is kept and reported by the
// terminal call.
type QueryBuilder[T any] struct {
	session *Session
	schema  Schema[T]
	builder sq.SelectBuilder
	columns []string
	err     error
}

// Query starts a SELECT over all columns of T.
func Query[T any](session *Session) *QueryBuilder[T] {
	schema := LoadSchema[T]()
	return &QueryBuilder[T]{
		session: session,
		schema:  schema,
		builder: sq.Select().
			From(schema.TableName()).
			PlaceholderFormat(session.dialect.PlaceholderFormat()),
	}
}

// Where adds a condition; repeated calls are joined with AND.
func (q *QueryBuilder[T]) Where(expr clause.Expression) *QueryBuilder[T] {
	if q.err != nil {
		return q
	}
	sql, args, err := expr.Build()
	if err != nil {
		q.err = err
		return q
	}
	q.builder = q.builder.Where(sq.Expr(sql, args...))
	return q
}

// OrderBy appends ORDER BY terms in the given order.
func (q *QueryBuilder[T]) OrderBy(orders ...clause.OrderByColumn) *QueryBuilder[T] {
	if q.err != nil {
		return q
	}
	for _, order := range orders {
		sql, _, err := order.Build()
		if err != nil {
			q.err = err
			return q
		}
		q.builder = q.builder.OrderBy(sql)
	}
	return q
}

// Limit caps the number of rows.
func (q *QueryBuilder[T]) Limit(n uint64) *QueryBuilder[T] {
	q.builder = q.builder.Limit(n)
	return q
}

// Offset skips the first n rows. SQLite needs a Limit with it.
func (q *QueryBuilder[T]) Offset(n uint64) *QueryBuilder[T] {
	q.builder = q.builder.Offset(n)
	return q
}

// Select narrows the selected columns; by default all schema columns are read.
func (q *QueryBuilder[T]) Select(columns ...clause.Columnar) *QueryBuilder[T] {
	q.columns = make([]string, len(columns))
	for i, c := range columns {
		q.columns[i] = c.ColumnName()
	}
	return q
}

// Find returns every matching row. An empty result is an empty slice, not nil.
func (q *QueryBuilder[T]) Find(ctx context.Context) ([]*T, error) {
	query, args, err := q.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("store: build select: %w", err)
	}
	results := make([]*T, 0)
	if err := q.session.Select(ctx, &results, query, args...); err != nil {
		return nil, fmt.Errorf("store: select from %s: %w", q.schema.TableName(), err)
	}
	return results, nil
}

// Take returns one matching row in no particular order.
func (q *QueryBuilder[T]) Take(ctx context.Context) (*T, error) {
	results, err := q.Limit(1).Find(ctx)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	return results[0], nil
}

// First returns the matching row with the lowest key.
func (q *QueryBuilder[T]) First(ctx context.Context) (*T, error) {
	return q.OrderBy(clause.OrderByColumn{Column: q.schema.PK(nil).Column}).Take(ctx)
}

// Count ignores Limit and Offset.
func (q *QueryBuilder[T]) Count(ctx context.Context) (int64, error) {
	if q.err != nil {
		return 0, q.err
	}
	query, args, err := q.builder.Columns("COUNT(*)").RemoveLimit().RemoveOffset().ToSql()
	if err != nil {
		return 0, fmt.Errorf("store: build count: %w", err)
	}
	var count int64
	if err := q.session.Get(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("store: count %s: %w", q.schema.TableName(), err)
	}
	return count, nil
}

// ToSQL returns the statement Find would run.
func (q *QueryBuilder[T]) ToSQL() (string, []any, error) {
	if q.err != nil {
		return "", nil, q.err
	}
	cols := q.columns
	if len(cols) == 0 {
		cols = q.schema.SelectColumns()
	}
	return q.builder.Columns(cols...).ToSql()
}
