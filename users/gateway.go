package users

import (
	"context"

	"github.com/arllen133/userforms/store"
)

// Gateway is the record store boundary. Each method is one round trip;
// UpdateByID and DeleteByID on an unknown id succeed without effect.
type Gateway interface {
	ListAll(ctx context.Context) ([]*User, error)
	Insert(ctx context.Context, name string, age int, email string) (*User, error)
	UpdateByID(ctx context.Context, id int64, name string, age int, email string) error
	DeleteByID(ctx context.Context, id int64) error
}

// SQLGateway is the Gateway backed by the users table.
type SQLGateway struct {
	repo *store.Repository[User]
}

var _ Gateway = (*SQLGateway)(nil)

// NewSQLGateway returns a gateway over session; the users table must exist.
func NewSQLGateway(session *store.Session) *SQLGateway {
	return &SQLGateway{repo: store.NewRepository[User](session)}
}

// ListAll returns users in id order.
func (g *SQLGateway) ListAll(ctx context.Context) ([]*User, error) {
	return g.repo.Query().OrderBy(UserColumns.ID.Asc()).Find(ctx)
}

// Insert stores a new user and returns it with the assigned id.
func (g *SQLGateway) Insert(ctx context.Context, name string, age int, email string) (*User, error) {
	u := &User{Name: name, Age: age, Email: email}
	if err := g.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateByID replaces name, age and email of user id.
func (g *SQLGateway) UpdateByID(ctx context.Context, id int64, name string, age int, email string) error {
	return g.repo.Update(ctx, &User{ID: id, Name: name, Age: age, Email: email})
}

// DeleteByID removes user id.
func (g *SQLGateway) DeleteByID(ctx context.Context, id int64) error {
	return g.repo.Delete(ctx, id)
}

// CreateTable is the users DDL for store.Migrate.
func CreateTable(d store.Dialect) string {
	return `CREATE TABLE IF NOT EXISTS users (
	id ` + d.AutoIncrementKey() + `,
	name TEXT NOT NULL,
	age INTEGER NOT NULL,
	email TEXT NOT NULL
)`
}
