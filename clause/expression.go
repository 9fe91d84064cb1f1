// Package clause holds the SQL expression vocabulary shared by the field
// descriptors and the store's query builder.
package clause

import (
	"fmt"
	"strings"
)

// Columnar is anything that can name a column.
type Columnar interface {
	ColumnName() string
}

// Column is a database column with an optional table qualifier.
type Column struct {
	Table string
	Name  string
}

// ColumnName returns "table.name" when a table is set, "name" otherwise.
func (c Column) ColumnName() string {
	if c.Table != "" {
		return c.Table + "." + c.Name
	}
	return c.Name
}

var _ Columnar = Column{}

// Expression renders itself as a SQL fragment with ? placeholders.
type Expression interface {
	Build() (sql string, args []any, err error)
}

// Eq is column = value.
type Eq struct {
	Column Column
	Value  any
}

func (e Eq) Build() (string, []any, error) {
	return e.Column.ColumnName() + " = ?", []any{e.Value}, nil
}

// Neq is column <> value.
type Neq struct {
	Column Column
	Value  any
}

func (n Neq) Build() (string, []any, error) {
	return n.Column.ColumnName() + " <> ?", []any{n.Value}, nil
}

// Gt is column > value.
type Gt struct {
	Column Column
	Value  any
}

func (g Gt) Build() (string, []any, error) {
	return g.Column.ColumnName() + " > ?", []any{g.Value}, nil
}

// Lt is column < value.
type Lt struct {
	Column Column
	Value  any
}

func (l Lt) Build() (string, []any, error) {
	return l.Column.ColumnName() + " < ?", []any{l.Value}, nil
}

// Like is column LIKE pattern.
type Like struct {
	Column Column
	Value  string
}

func (l Like) Build() (string, []any, error) {
	return l.Column.ColumnName() + " LIKE ?", []any{l.Value}, nil
}

// IN is column IN (values...). An empty list never matches.
type IN struct {
	Column Column
	Values []any
}

func (i IN) Build() (string, []any, error) {
	switch len(i.Values) {
	case 0:
		return "1 = 0", nil, nil
	case 1:
		return i.Column.ColumnName() + " = ?", []any{i.Values[0]}, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(i.Values)), ", ")
	return fmt.Sprintf("%s IN (%s)", i.Column.ColumnName(), placeholders), i.Values, nil
}

// And joins expressions with AND. An empty And always matches.
type And []Expression

func (a And) Build() (string, []any, error) {
	if len(a) == 0 {
		return "1 = 1", nil, nil
	}
	sqls := make([]string, 0, len(a))
	var args []any
	for _, expr := range a {
		sql, exprArgs, err := expr.Build()
		if err != nil {
			return "", nil, err
		}
		sqls = append(sqls, "("+sql+")")
		args = append(args, exprArgs...)
	}
	return strings.Join(sqls, " AND "), args, nil
}

// Assignment is a SET column = value pair for UPDATE statements.
type Assignment struct {
	Column Column
	Value  any
}

func (a Assignment) Build() (string, []any, error) {
	return a.Column.ColumnName() + " = ?", []any{a.Value}, nil
}

// OrderByColumn is one ORDER BY term.
type OrderByColumn struct {
	Column Column
	Desc   bool
}

func (o OrderByColumn) Build() (string, []any, error) {
	sql := o.Column.ColumnName()
	if o.Desc {
		sql += " DESC"
	}
	return sql, nil, nil
}
