package store

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

var (
	SQLite     Dialect = sqliteDialect{}
	PostgreSQL Dialect = postgresDialect{}
)

// Dialect captures the SQL differences between supported databases.
type Dialect interface {
	// Name is the database/sql driver name; sqlx also derives its bindvar
	// style from it.
	Name() string

	PlaceholderFormat() sq.PlaceholderFormat

	// ReturnsInsertID reports whether generated keys must be read with
	// INSERT ... RETURNING instead of sql.Result.LastInsertId.
	ReturnsInsertID() bool

	// AutoIncrementKey is the column definition of a generated int64
	// primary key.
	AutoIncrementKey() string
}

// DialectFor maps a driver name to its dialect.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "sqlite3", "sqlite":
		return SQLite, nil
	case "postgres", "postgresql":
		return PostgreSQL, nil
	}
	return nil, fmt.Errorf("store: unsupported driver %q", driver)
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string                            { return "sqlite3" }
func (sqliteDialect) PlaceholderFormat() sq.PlaceholderFormat { return sq.Question }
func (sqliteDialect) ReturnsInsertID() bool                   { return false }
func (sqliteDialect) AutoIncrementKey() string                { return "INTEGER PRIMARY KEY AUTOINCREMENT" }

// lib/pq does not implement LastInsertId.
type postgresDialect struct{}

func (postgresDialect) Name() string                            { return "postgres" }
func (postgresDialect) PlaceholderFormat() sq.PlaceholderFormat { return sq.Dollar }
func (postgresDialect) ReturnsInsertID() bool                   { return true }
func (postgresDialect) AutoIncrementKey() string                { return "BIGSERIAL PRIMARY KEY" }
