package query

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// MaxPageSize caps _end - _start.
const MaxPageSize = 500

// ErrNoValues is returned when an UPDATE would set nothing.
var ErrNoValues = errors.New("no updatable fields supplied")

// Filter is an equality condition on a column.
type Filter struct {
	Column string
	Value  any
}

// ListParams is a parsed list request.
type ListParams struct {
	Filters []Filter
	Sort    string
	Desc    bool
	Offset  int
	Limit   int
}

// Statement is SQL with its positional arguments.
type Statement struct {
	SQL  string
	Args []any
}

// ParseList reads filters (by JSON field or column name) and the Refine
// pagination parameters _start, _end, _sort and _order.
func (t *Table) ParseList(v url.Values) (ListParams, error) {
	p := ListParams{Sort: t.DefaultSort, Desc: t.DefaultDesc}

	for _, c := range t.Columns {
		if !c.Filter {
			continue
		}
		raw, ok := firstOf(v, c.Field, c.Name)
		if !ok {
			continue
		}
		val, err := c.ParseParam(raw)
		if err != nil {
			return ListParams{}, err
		}
		p.Filters = append(p.Filters, Filter{Column: c.Name, Value: val})
	}

	if s := v.Get("_sort"); s != "" {
		if c, ok := t.lookup(s); ok && c.Sort {
			p.Sort = c.Name
			p.Desc = false
		}
	}
	switch strings.ToLower(v.Get("_order")) {
	case "":
	case "asc":
		p.Desc = false
	case "desc":
		p.Desc = true
	default:
		return ListParams{}, fieldErr("_order", "must be asc or desc")
	}

	start, err := intParam(v, "_start")
	if err != nil {
		return ListParams{}, err
	}
	end, err := intParam(v, "_end")
	if err != nil {
		return ListParams{}, err
	}
	if start < 0 {
		return ListParams{}, fieldErr("_start", "must not be negative")
	}
	p.Offset = start
	if v.Has("_end") {
		if end <= start {
			return ListParams{}, fieldErr("_end", "must be greater than _start")
		}
		p.Limit = min(end-start, MaxPageSize)
	}
	return p, nil
}

func firstOf(v url.Values, keys ...string) (string, bool) {
	for _, k := range keys {
		if v.Has(k) {
			return v.Get(k), true
		}
	}
	return "", false
}

func intParam(v url.Values, key string) (int, error) {
	s := v.Get(key)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fieldErr(key, "must be an integer")
	}
	return n, nil
}

// BuildList returns the page query and the count query for p. Both share the
// same WHERE clause and arguments; only the page query is paginated.
func (t *Table) BuildList(p ListParams) (page Statement, count Statement) {
	var where []string
	var args []any
	for _, f := range p.Filters {
		args = append(args, f.Value)
		where = append(where, fmt.Sprintf("%s = $%d", f.Column, len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	count = Statement{
		SQL:  fmt.Sprintf("SELECT COUNT(*) FROM %s%s", t.Name, clause),
		Args: append([]any(nil), args...),
	}

	sortCol := p.Sort
	if _, ok := t.ByName(sortCol); !ok {
		sortCol = t.DefaultSort
	}
	dir := "ASC"
	if p.Desc {
		dir = "DESC"
	}
	order := fmt.Sprintf(" ORDER BY %s %s", sortCol, dir)
	if sortCol != "id" {
		order += ", id " + dir
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s%s%s", t.SelectList(), t.Name, clause, order)
	if p.Limit > 0 {
		args = append(args, p.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if p.Offset > 0 {
		args = append(args, p.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}
	page = Statement{SQL: sb.String(), Args: args}
	return page, count
}

// BuildGet selects one row by id.
func (t *Table) BuildGet(id int64) Statement {
	return Statement{
		SQL:  fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", t.SelectList(), t.Name),
		Args: []any{id},
	}
}

// BuildInsert inserts vals and returns the full row.
func (t *Table) BuildInsert(vals Values) Statement {
	if len(vals) == 0 {
		return Statement{SQL: fmt.Sprintf("INSERT INTO %s DEFAULT VALUES RETURNING %s", t.Name, t.SelectList())}
	}
	cols := make([]string, len(vals))
	marks := make([]string, len(vals))
	args := make([]any, len(vals))
	for i, a := range vals {
		cols[i] = a.Column
		marks[i] = fmt.Sprintf("$%d", i+1)
		args[i] = a.Value
	}
	return Statement{
		SQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
			t.Name, strings.Join(cols, ", "), strings.Join(marks, ", "), t.SelectList()),
		Args: args,
	}
}

// BuildUpdate builds the SET clause from vals and bumps updated_at when the
// table has that column.
func (t *Table) BuildUpdate(id int64, vals Values) (Statement, error) {
	if len(vals) == 0 {
		return Statement{}, ErrNoValues
	}
	sets := make([]string, 0, len(vals)+1)
	args := make([]any, 0, len(vals)+1)
	for _, a := range vals {
		args = append(args, a.Value)
		sets = append(sets, fmt.Sprintf("%s = $%d", a.Column, len(args)))
	}
	if _, ok := t.ByName("updated_at"); ok {
		if _, set := vals.Get("updated_at"); !set {
			sets = append(sets, "updated_at = NOW()")
		}
	}
	args = append(args, id)
	return Statement{
		SQL: fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d RETURNING %s",
			t.Name, strings.Join(sets, ", "), len(args), t.SelectList()),
		Args: args,
	}, nil
}

// PreviousStatus is the extra column BuildStatusUpdate appends to RETURNING.
const PreviousStatus = "prev_status"

// BuildStatusUpdate is BuildUpdate for a row whose status column is being
// set. The current status is read and locked in the same statement and
// returned after the row's columns. Each stamp is written only when the
// status changes or the stamp column is still NULL.
func (t *Table) BuildStatusUpdate(id int64, vals Values, status string, stamps Values) (Statement, error) {
	if len(vals) == 0 {
		return Statement{}, ErrNoValues
	}
	args := []any{id}
	sets := make([]string, 0, len(vals)+len(stamps)+1)
	for _, a := range vals {
		args = append(args, a.Value)
		sets = append(sets, fmt.Sprintf("%s = $%d", a.Column, len(args)))
	}
	statusArg := 0
	for _, a := range stamps {
		if _, set := vals.Get(a.Column); set {
			continue
		}
		if statusArg == 0 {
			args = append(args, status)
			statusArg = len(args)
		}
		args = append(args, a.Value)
		sets = append(sets, fmt.Sprintf(
			"%[1]s = CASE WHEN prev.%[2]s IS DISTINCT FROM $%[3]d OR %[1]s IS NULL THEN $%[4]d ELSE %[1]s END",
			a.Column, PreviousStatus, statusArg, len(args)))
	}
	if _, ok := t.ByName("updated_at"); ok {
		if _, set := vals.Get("updated_at"); !set {
			sets = append(sets, "updated_at = NOW()")
		}
	}
	return Statement{
		SQL: fmt.Sprintf("WITH prev AS (SELECT status AS %[1]s FROM %[2]s WHERE id = $1 FOR UPDATE) "+
			"UPDATE %[2]s SET %[3]s FROM prev WHERE %[2]s.id = $1 RETURNING %[4]s, prev.%[1]s",
			PreviousStatus, t.Name, strings.Join(sets, ", "), t.SelectList()),
		Args: args,
	}, nil
}

// BuildDelete removes one row by id.
func (t *Table) BuildDelete(id int64) Statement {
	return Statement{
		SQL:  fmt.Sprintf("DELETE FROM %s WHERE id = $1 RETURNING id", t.Name),
		Args: []any{id},
	}
}

// ParseID parses a path id.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fieldErr("id", "must be a positive integer")
	}
	return id, nil
}
