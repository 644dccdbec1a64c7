// Package query assembles the parameterized SQL every REST resource needs:
// equality filters, Refine-style pagination and sorting, and the dynamic
// column lists of INSERT and UPDATE statements.
//
// Column names always come from a Table definition, never from the request.
package query

import (
	"strings"
)

// Kind tells Bind how to coerce a JSON value for a column.
type Kind int

const (
	Text Kind = iota
	Int
	Numeric
	Bool
	Date
	Timestamp
	TextArray
)

// Column describes one SQL column and the JSON field it is exposed as.
type Column struct {
	Name     string
	Field    string
	Kind     Kind
	Filter   bool
	Sort     bool
	Write    bool
	Required bool
	Enum     []string
}

// Table is the query-relevant description of a resource table.
type Table struct {
	Name        string
	Label       string
	Columns     []Column
	DefaultSort string
	DefaultDesc bool

	byField map[string]int
	byName  map[string]int
}

// NewTable indexes the columns of a table. The column order is the order of
// the SELECT list, which row scanners rely on.
func NewTable(name, label string, cols ...Column) *Table {
	t := &Table{
		Name:        name,
		Label:       label,
		Columns:     cols,
		DefaultSort: "id",
		byField:     make(map[string]int, len(cols)),
		byName:      make(map[string]int, len(cols)),
	}
	for i, c := range cols {
		t.byField[c.Field] = i
		t.byName[c.Name] = i
	}
	return t
}

// SortBy sets the fallback ORDER BY column.
func (t *Table) SortBy(column string, desc bool) *Table {
	t.DefaultSort = column
	t.DefaultDesc = desc
	return t
}

// SelectList is the comma separated column list used by SELECT and RETURNING.
func (t *Table) SelectList() string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return strings.Join(names, ", ")
}

// ByField looks a column up by JSON field name.
func (t *Table) ByField(field string) (Column, bool) {
	i, ok := t.byField[field]
	if !ok {
		return Column{}, false
	}
	return t.Columns[i], true
}

// ByName looks a column up by SQL name.
func (t *Table) ByName(name string) (Column, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Column{}, false
	}
	return t.Columns[i], true
}

// lookup accepts either the JSON field or the SQL name.
func (t *Table) lookup(key string) (Column, bool) {
	if c, ok := t.ByField(key); ok {
		return c, true
	}
	return t.ByName(key)
}

// Column helpers keep resource definitions short.

func ID() Column {
	return Column{Name: "id", Field: "id", Kind: Int, Filter: true, Sort: true}
}

func CreatedAt() Column {
	return Column{Name: "created_at", Field: "createdAt", Kind: Timestamp, Sort: true}
}

func UpdatedAt() Column {
	return Column{Name: "updated_at", Field: "updatedAt", Kind: Timestamp, Sort: true}
}

// Writable is a column accepted on create and update.
func Writable(name, field string, kind Kind) Column {
	return Column{Name: name, Field: field, Kind: kind, Write: true}
}

// Required is a writable column that must be present on create.
func Required(name, field string, kind Kind) Column {
	return Column{Name: name, Field: field, Kind: kind, Write: true, Required: true}
}

// Filterable marks the column usable as a list filter.
func (c Column) Filterable() Column {
	c.Filter = true
	return c
}

// Sortable marks the column usable in _sort.
func (c Column) Sortable() Column {
	c.Sort = true
	return c
}

// OneOf restricts the column to a set of values.
func (c Column) OneOf(values ...string) Column {
	c.Enum = values
	return c
}
