package query

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
)

// FieldError reports a request value that cannot be stored.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func fieldErr(field, format string, args ...any) *FieldError {
	return &FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Mode selects the binding rules.
type Mode int

const (
	Create Mode = iota
	Update
)

// Assignment is one column = value pair.
type Assignment struct {
	Column string
	Value  any
}

// Values is an ordered list of column assignments.
type Values []Assignment

// Get returns the value assigned to column.
func (v Values) Get(column string) (any, bool) {
	for _, a := range v {
		if a.Column == column {
			return a.Value, true
		}
	}
	return nil, false
}

// Set replaces or appends an assignment.
func (v *Values) Set(column string, value any) {
	for i, a := range *v {
		if a.Column == column {
			(*v)[i].Value = value
			return
		}
	}
	*v = append(*v, Assignment{Column: column, Value: value})
}

// Del removes the assignment to column, if any.
func (v *Values) Del(column string) {
	for i, a := range *v {
		if a.Column == column {
			*v = append((*v)[:i], (*v)[i+1:]...)
			return
		}
	}
}

// Columns lists the assigned column names in order.
func (v Values) Columns() []string {
	out := make([]string, len(v))
	for i, a := range v {
		out[i] = a.Column
	}
	return out
}

// Bind maps a decoded JSON object onto the table's writable columns.
// Read-only fields the table knows about (id, createdAt, ...) are skipped so
// that clients may send back whole records. Unknown fields are rejected.
func (t *Table) Bind(body map[string]any, mode Mode) (Values, error) {
	keys := make([]string, 0, len(body))
	for k := range body {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := t.ByField(k); !ok {
			return nil, fieldErr(k, "is not a known field")
		}
	}

	var vals Values
	for _, c := range t.Columns {
		if !c.Write {
			continue
		}
		raw, present := body[c.Field]
		if raw == nil {
			if mode == Create && c.Required {
				if err := c.check(raw, ruleRequired); err != nil {
					return nil, err
				}
			}
			if present {
				vals = append(vals, Assignment{Column: c.Name, Value: nil})
			}
			continue
		}
		v, err := c.Coerce(raw)
		if err != nil {
			return nil, err
		}
		if c.Required && c.Kind == Text {
			if err := c.check(v, ruleNotBlank); err != nil {
				return nil, err
			}
		}
		vals = append(vals, Assignment{Column: c.Name, Value: v})
	}
	return vals, nil
}

// Coerce converts a JSON-decoded value into a driver value for the column.
func (c Column) Coerce(raw any) (any, error) {
	switch c.Kind {
	case Text:
		s, ok := raw.(string)
		if !ok {
			return nil, c.kindError()
		}
		if err := c.check(s, c.enumRule()); err != nil {
			return nil, err
		}
		return s, nil
	case Int:
		n, err := toInt(raw)
		if err != nil {
			return nil, c.kindError()
		}
		return n, nil
	case Numeric:
		s, err := toNumeric(raw)
		if err != nil {
			return nil, c.kindError()
		}
		if err := c.check(s, ruleDecimal); err != nil {
			return nil, err
		}
		return s, nil
	case Bool:
		b, ok := raw.(bool)
		if !ok {
			return nil, c.kindError()
		}
		return b, nil
	case Date:
		s, ok := raw.(string)
		if !ok {
			return nil, c.kindError()
		}
		if err := c.check(s, ruleDate); err != nil {
			return nil, err
		}
		d, err := ParseDate(s)
		if err != nil {
			return nil, c.kindError()
		}
		return d, nil
	case Timestamp:
		s, ok := raw.(string)
		if !ok {
			return nil, c.kindError()
		}
		if err := c.check(s, ruleTimestamp); err != nil {
			return nil, err
		}
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, c.kindError()
		}
		return ts.UTC(), nil
	case TextArray:
		items, ok := raw.([]any)
		if !ok {
			return nil, c.kindError()
		}
		out := make([]string, 0, len(items))
		for _, it := range items {
			s, ok := it.(string)
			if !ok {
				return nil, c.kindError()
			}
			out = append(out, s)
		}
		return pq.Array(out), nil
	}
	return nil, c.kindError()
}

// ParseParam converts a query-string value for a filter on the column.
func (c Column) ParseParam(s string) (any, error) {
	switch c.Kind {
	case Int:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, c.kindError()
		}
		return n, nil
	case Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fieldErr(c.Field, "must be true or false")
		}
		return b, nil
	case TextArray:
		return nil, fieldErr(c.Field, "cannot be filtered")
	}
	return c.Coerce(s)
}

// ParseDate accepts YYYY-MM-DD or a full RFC3339 timestamp and returns the
// date part.
func ParseDate(s string) (string, error) {
	if d, err := time.Parse(time.DateOnly, s); err == nil {
		return d.Format(time.DateOnly), nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return "", err
	}
	return ts.Format(time.DateOnly), nil
}

func toInt(raw any) (int64, error) {
	switch v := raw.(type) {
	case json.Number:
		return v.Int64()
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("not an integer: %v", v)
		}
		return int64(v), nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	}
	return 0, fmt.Errorf("not an integer: %T", raw)
}

// toNumeric keeps numbers in their decimal text form so NUMERIC columns
// receive the exact value the client sent. Exponent forms are expanded;
// the result is checked against the plain decimal rule by the caller.
func toNumeric(raw any) (string, error) {
	switch v := raw.(type) {
	case json.Number:
		if !strings.ContainsAny(v.String(), "eE") {
			return v.String(), nil
		}
		f, err := v.Float64()
		if err != nil {
			return "", err
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case string:
		return v, nil
	}
	return "", fmt.Errorf("not a number: %T", raw)
}
