package store

import (
	"context"
	"fmt"
	"slices"

	sq "github.com/Masterminds/squirrel"
	"github.com/arllen133/userforms/clause"
)

// Repository runs type-safe CRUD statements for model T.
//
// Where returns a new Repository, so a base repository can be shared and
// narrowed per call without affecting other callers:
//
//	repo := store.NewRepository[users.User](session)
//	err := repo.Create(ctx, &users.User{Name: "Ann", Age: 30, Email: "ann@x.com"})
//	adults, err := repo.Query().Where(users.UserColumns.Age.Gt(17)).Find(ctx)
type Repository[T any] struct {
	session *Session
	schema  Schema[T]
	scopes  []clause.Expression
}

// NewRepository panics if T has no registered schema.
func NewRepository[T any](session *Session) *Repository[T] {
	return &Repository[T]{
		session: session,
		schema:  LoadSchema[T](),
	}
}

// Where returns a copy of the repository whose writes and queries are
// additionally restricted by conds.
func (r *Repository[T]) Where(conds ...clause.Expression) *Repository[T] {
	next := *r
	next.scopes = append(slices.Clip(r.scopes), conds...)
	return &next
}

// Create inserts model and back-fills its generated key.
func (r *Repository[T]) Create(ctx context.Context, model *T) error {
	if err := triggerBeforeCreate(ctx, model); err != nil {
		return err
	}

	table := r.schema.TableName()
	cols, vals := r.schema.InsertRow(model)
	builder := sq.Insert(table).
		Columns(cols...).
		Values(vals...).
		PlaceholderFormat(r.session.dialect.PlaceholderFormat())

	if r.schema.AutoIncrement() && r.session.dialect.ReturnsInsertID() {
		builder = builder.Suffix("RETURNING " + r.schema.PK(nil).Column.Name)
		query, args, err := builder.ToSql()
		if err != nil {
			return fmt.Errorf("store: build insert: %w", err)
		}
		var id int64
		if err := r.session.Get(ctx, &id, query, args...); err != nil {
			return fmt.Errorf("store: insert into %s: %w", table, err)
		}
		r.schema.SetPK(model, id)
		return triggerAfterCreate(ctx, model)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("store: build insert: %w", err)
	}
	result, err := r.session.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("store: insert into %s: %w", table, err)
	}
	if r.schema.AutoIncrement() {
		if id, err := result.LastInsertId(); err == nil {
			r.schema.SetPK(model, id)
		}
	}
	return triggerAfterCreate(ctx, model)
}

// Update replaces every non-key column of the row identified by model's
// key. A key that matches no row is not an error.
func (r *Repository[T]) Update(ctx context.Context, model *T) error {
	if err := triggerBeforeUpdate(ctx, model); err != nil {
		return err
	}

	pk := r.schema.PK(model)
	builder := sq.Update(r.schema.TableName()).
		SetMap(r.schema.UpdateMap(model)).
		Where(sq.Eq{pk.Column.Name: pk.Value})
	builder, err := applyScopes(builder, r.scopes)
	if err != nil {
		return err
	}

	query, args, err := builder.PlaceholderFormat(r.session.dialect.PlaceholderFormat()).ToSql()
	if err != nil {
		return fmt.Errorf("store: build update: %w", err)
	}
	if _, err := r.session.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("store: update %s: %w", r.schema.TableName(), err)
	}
	return triggerAfterUpdate(ctx, model)
}

// UpdateColumns sets only the given columns of the row with key id.
// No hooks run because there is no model instance.
func (r *Repository[T]) UpdateColumns(ctx context.Context, id any, assignments ...clause.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}

	builder := sq.Update(r.schema.TableName()).
		Where(sq.Eq{r.schema.PK(nil).Column.Name: id})
	for _, a := range assignments {
		builder = builder.Set(a.Column.Name, a.Value)
	}
	builder, err := applyScopes(builder, r.scopes)
	if err != nil {
		return err
	}

	query, args, err := builder.PlaceholderFormat(r.session.dialect.PlaceholderFormat()).ToSql()
	if err != nil {
		return fmt.Errorf("store: build update: %w", err)
	}
	if _, err := r.session.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("store: update %s: %w", r.schema.TableName(), err)
	}
	return nil
}

// Delete removes the row with key id. A key that matches no row is not an error.
func (r *Repository[T]) Delete(ctx context.Context, id any) error {
	builder := sq.Delete(r.schema.TableName()).
		Where(sq.Eq{r.schema.PK(nil).Column.Name: id})
	builder, err := applyScopes(builder, r.scopes)
	if err != nil {
		return err
	}

	query, args, err := builder.PlaceholderFormat(r.session.dialect.PlaceholderFormat()).ToSql()
	if err != nil {
		return fmt.Errorf("store: build delete: %w", err)
	}
	if _, err := r.session.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("store: delete from %s: %w", r.schema.TableName(), err)
	}
	return nil
}

// FindOne returns the row with key id, or ErrNotFound.
func (r *Repository[T]) FindOne(ctx context.Context, id any) (*T, error) {
	pk := r.schema.PK(nil)
	return r.Query().Where(clause.Eq{Column: pk.Column, Value: id}).Take(ctx)
}

// Query starts a SELECT over T restricted by the repository's scopes.
func (r *Repository[T]) Query() *QueryBuilder[T] {
	q := Query[T](r.session)
	for _, scope := range r.scopes {
		q = q.Where(scope)
	}
	return q
}

// wherer is satisfied by squirrel's UPDATE and DELETE builders.
type wherer[B any] interface {
	Where(pred any, args ...any) B
}

func applyScopes[B wherer[B]](builder B, scopes []clause.Expression) (B, error) {
	for _, scope := range scopes {
		sql, args, err := scope.Build()
		if err != nil {
			return builder, fmt.Errorf("store: build scope: %w", err)
		}
		builder = builder.Where(sq.Expr(sql, args...))
	}
	return builder, nil
}
