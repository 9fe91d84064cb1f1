package store

import (
	"fmt"
	"reflect"

	"github.com/arllen133/userforms/clause"
)

// PK is a primary key column paired with its value.
type PK = clause.Eq

// Schema maps model T to its table and back. Implementations are usually
// generated by cmd/schemagen.
type Schema[T any] interface {
	TableName() string
	SelectColumns() []string

	// InsertRow returns the columns and values for an INSERT, omitting a
	// zero auto-increment key.
	InsertRow(*T) ([]string, []any)

	// UpdateMap returns every column an UPDATE replaces; the key is excluded.
	UpdateMap(*T) map[string]any

	// PK returns the key column; the value is nil when m is nil.
	PK(m *T) PK
	SetPK(m *T, val int64)
	AutoIncrement() bool
}

// schemas is written only from init functions.
var schemas = make(map[reflect.Type]any)

// RegisterSchema makes schema the mapping for T. Call it from init.
func RegisterSchema[T any](schema Schema[T]) {
	schemas[reflect.TypeFor[T]()] = schema
}

// LoadSchema panics when T was never registered: that is a wiring bug, not
// a runtime condition.
func LoadSchema[T any]() Schema[T] {
	typ := reflect.TypeFor[T]()
	if s, ok := schemas[typ]; ok {
		return s.(Schema[T])
	}
	panic(fmt.Sprintf("store: schema not registered for type %v", typ))
}
