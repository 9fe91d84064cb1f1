// Package field provides typed column descriptors. Generated schema code
// exposes one descriptor per model column so queries are checked by the
// compiler instead of by string matching.
package field

import (
	"github.com/arllen133/userforms/clause"
	"golang.org/x/exp/constraints"
)

// Number describes an integer or float column.
type Number[T constraints.Integer | constraints.Float] struct {
	column clause.Column
}

// NewNumber returns a descriptor for the named column.
func NewNumber[T constraints.Integer | constraints.Float](name string) Number[T] {
	return Number[T]{column: clause.Column{Name: name}}
}

func (n Number[T]) Column() clause.Column { return n.column }

func (n Number[T]) ColumnName() string { return n.column.ColumnName() }

var _ clause.Columnar = Number[int]{}

// WithTable qualifies the column, for use in joins.
func (n Number[T]) WithTable(table string) Number[T] {
	column := n.column
	column.Table = table
	return Number[T]{column: column}
}

func (n Number[T]) Eq(value T) clause.Expression {
	return clause.Eq{Column: n.column, Value: value}
}

func (n Number[T]) Neq(value T) clause.Expression {
	return clause.Neq{Column: n.column, Value: value}
}

func (n Number[T]) Gt(value T) clause.Expression {
	return clause.Gt{Column: n.column, Value: value}
}

func (n Number[T]) Lt(value T) clause.Expression {
	return clause.Lt{Column: n.column, Value: value}
}

func (n Number[T]) In(values ...T) clause.Expression {
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = v
	}
	return clause.IN{Column: n.column, Values: vals}
}

// Set builds an UPDATE assignment.
func (n Number[T]) Set(value T) clause.Assignment {
	return clause.Assignment{Column: n.column, Value: value}
}

func (n Number[T]) Asc() clause.OrderByColumn {
	return clause.OrderByColumn{Column: n.column}
}

func (n Number[T]) Desc() clause.OrderByColumn {
	return clause.OrderByColumn{Column: n.column, Desc: true}
}
