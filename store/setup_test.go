package store_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/arllen133/userforms/clause"
	"github.com/arllen133/userforms/store"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// gadget is a minimal model with a hand-written schema.
type gadget struct {
	ID    int64  `db:"id,primaryKey,autoIncrement"`
	Label string `db:"label"`
	Stock int    `db:"stock"`
}

var errEmptyLabel = errors.New("empty label")

func (g *gadget) BeforeCreate(context.Context) error { return g.validate() }
func (g *gadget) BeforeUpdate(context.Context) error { return g.validate() }

func (g *gadget) AfterCreate(ctx context.Context) error { return recordHook(ctx, "create", g) }
func (g *gadget) AfterUpdate(ctx context.Context) error { return recordHook(ctx, "update", g) }

type hookLogKey struct{}

// hookLog collects After hook calls made with a context that carries it.
// err is returned from every hook.
type hookLog struct {
	calls []string
	err   error
}

func withHookLog(ctx context.Context, log *hookLog) context.Context {
	return context.WithValue(ctx, hookLogKey{}, log)
}

func recordHook(ctx context.Context, op string, g *gadget) error {
	log, ok := ctx.Value(hookLogKey{}).(*hookLog)
	if !ok {
		return nil
	}
	log.calls = append(log.calls, fmt.Sprintf("%s %d %s", op, g.ID, g.Label))
	return log.err
}

func (g *gadget) validate() error {
	if g.Label == "" {
		return errEmptyLabel
	}
	return nil
}

type gadgetSchema struct{}

func (gadgetSchema) TableName() string       { return "gadgets" }
func (gadgetSchema) SelectColumns() []string { return []string{"id", "label", "stock"} }
func (gadgetSchema) InsertRow(m *gadget) ([]string, []any) {
	if m.ID != 0 {
		return []string{"id", "label", "stock"}, []any{m.ID, m.Label, m.Stock}
	}
	return []string{"label", "stock"}, []any{m.Label, m.Stock}
}
func (gadgetSchema) UpdateMap(m *gadget) map[string]any {
	return map[string]any{"label": m.Label, "stock": m.Stock}
}
func (gadgetSchema) PK(m *gadget) store.PK {
	var val any
	if m != nil {
		val = m.ID
	}
	return store.PK{Column: clause.Column{Name: "id"}, Value: val}
}
func (gadgetSchema) SetPK(m *gadget, val int64) { m.ID = val }
func (gadgetSchema) AutoIncrement() bool        { return true }

func init() {
	store.RegisterSchema[gadget](gadgetSchema{})
}

func gadgetsTable(d store.Dialect) string {
	return `CREATE TABLE IF NOT EXISTS gadgets (
		id ` + d.AutoIncrementKey() + `,
		label TEXT NOT NULL,
		stock INTEGER NOT NULL
	)`
}

func setupTestDB(t *testing.T, opts ...store.SessionOption) (*sql.DB, *store.Session) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// each connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	session := store.NewSession(db, store.SQLite, opts...)
	require.NoError(t, store.Migrate(context.Background(), session, gadgetsTable))
	return db, session
}
