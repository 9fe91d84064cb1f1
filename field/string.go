package field

import "github.com/arllen133/userforms/clause"

// String describes a text column.
type String struct {
	column clause.Column
}

// NewString returns a descriptor for the named column.
func NewString(name string) String {
	return String{column: clause.Column{Name: name}}
}

func (s String) Column() clause.Column { return s.column }

func (s String) ColumnName() string { return s.column.ColumnName() }

var _ clause.Columnar = String{}

func (s String) WithTable(table string) String {
	column := s.column
	column.Table = table
	return String{column: column}
}

func (s String) Eq(value string) clause.Expression {
	return clause.Eq{Column: s.column, Value: value}
}

func (s String) Neq(value string) clause.Expression {
	return clause.Neq{Column: s.column, Value: value}
}

// Like matches a SQL LIKE pattern; the caller supplies the wildcards.
func (s String) Like(pattern string) clause.Expression {
	return clause.Like{Column: s.column, Value: pattern}
}

func (s String) Set(value string) clause.Assignment {
	return clause.Assignment{Column: s.column, Value: value}
}

func (s String) Asc() clause.OrderByColumn {
	return clause.OrderByColumn{Column: s.column}
}

func (s String) Desc() clause.OrderByColumn {
	return clause.OrderByColumn{Column: s.column, Desc: true}
}
