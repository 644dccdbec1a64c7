package query

import (
	"encoding/json"
	"math"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messagesTable() *Table {
	return NewTable("messages", "Message",
		ID(),
		Required("subject", "subject", Text),
		Writable("category", "category", Text).Filterable(),
		Writable("status", "status", Text).Filterable().Sortable().OneOf("draft", "sent", "read"),
		Writable("recipient_id", "recipientId", Int).Filterable(),
		Writable("amount", "amount", Numeric),
		Writable("is_active", "isActive", Bool).Filterable(),
		Writable("due_date", "dueDate", Date).Sortable(),
		Writable("tags", "tags", TextArray),
		CreatedAt(),
		UpdatedAt(),
	).SortBy("created_at", true)
}

func TestParseList_FiltersAndPagination(t *testing.T) {
	tbl := messagesTable()
	v, _ := url.ParseQuery("status=sent&recipientId=7&_start=20&_end=30&_sort=dueDate&_order=DESC")

	p, err := tbl.ParseList(v)
	require.NoError(t, err)

	want := ListParams{
		Filters: []Filter{{Column: "status", Value: "sent"}, {Column: "recipient_id", Value: int64(7)}},
		Sort:    "due_date",
		Desc:    true,
		Offset:  20,
		Limit:   10,
	}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Fatalf("ListParams mismatch (-want +got):\n%s", diff)
	}
}

func TestParseList_Defaults(t *testing.T) {
	tbl := messagesTable()

	p, err := tbl.ParseList(url.Values{"_sort": {"subject"}})
	require.NoError(t, err)
	assert.Equal(t, "created_at", p.Sort, "non-sortable field falls back to default")
	assert.True(t, p.Desc)
	assert.Zero(t, p.Limit)
	assert.Empty(t, p.Filters)
}

func TestParseList_SnakeCaseFilterAlias(t *testing.T) {
	p, err := messagesTable().ParseList(url.Values{"recipient_id": {"3"}})
	require.NoError(t, err)
	require.Len(t, p.Filters, 1)
	assert.Equal(t, int64(3), p.Filters[0].Value)
}

func TestParseList_Errors(t *testing.T) {
	tbl := messagesTable()
	cases := map[string]string{
		"bad order":       "_order=sideways",
		"end before":      "_start=10&_end=5",
		"negative start":  "_start=-1&_end=5",
		"non-int start":   "_start=abc",
		"bad int filter":  "recipientId=abc",
		"bad bool filter": "isActive=maybe",
		"bad enum filter": "status=lost",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			v, _ := url.ParseQuery(raw)
			_, err := tbl.ParseList(v)
			var fe *FieldError
			require.ErrorAs(t, err, &fe)
		})
	}
}

func TestParseList_CapsPageSize(t *testing.T) {
	p, err := messagesTable().ParseList(url.Values{"_start": {"0"}, "_end": {"100000"}})
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, p.Limit)
}

func TestBuildList(t *testing.T) {
	tbl := messagesTable()
	page, count := tbl.BuildList(ListParams{
		Filters: []Filter{{Column: "status", Value: "sent"}, {Column: "category", Value: "billing"}},
		Sort:    "created_at",
		Desc:    true,
		Offset:  10,
		Limit:   10,
	})

	assert.Equal(t, "SELECT COUNT(*) FROM messages WHERE status = $1 AND category = $2", count.SQL)
	assert.Equal(t, []any{"sent", "billing"}, count.Args)

	assert.True(t, strings.HasPrefix(page.SQL, "SELECT id, subject, category, status, recipient_id, amount, is_active, due_date, tags, created_at, updated_at FROM messages"))
	assert.True(t, strings.HasSuffix(page.SQL, " WHERE status = $1 AND category = $2 ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4"))
	assert.Equal(t, []any{"sent", "billing", 10, 10}, page.Args)
}

func TestBuildList_NoFiltersNoLimit(t *testing.T) {
	tbl := messagesTable()
	page, count := tbl.BuildList(ListParams{Sort: "id"})
	assert.Equal(t, "SELECT COUNT(*) FROM messages", count.SQL)
	assert.Empty(t, count.Args)
	assert.True(t, strings.HasSuffix(page.SQL, "FROM messages ORDER BY id ASC"))
	assert.Empty(t, page.Args)
}

func TestBuildList_UnknownSortFallsBack(t *testing.T) {
	page, _ := messagesTable().BuildList(ListParams{Sort: "1; DROP TABLE messages"})
	assert.Contains(t, page.SQL, "ORDER BY created_at ASC, id ASC")
	assert.NotContains(t, page.SQL, "DROP")
}

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	require.NoError(t, dec.Decode(&m))
	return m
}

func TestBind_Create(t *testing.T) {
	tbl := messagesTable()
	vals, err := tbl.Bind(decode(t, `{
		"id": 99,
		"subject": "Welcome",
		"status": "draft",
		"recipientId": 4,
		"amount": 1250.50,
		"isActive": true,
		"dueDate": "2025-03-01T10:00:00Z",
		"tags": ["a", "b"],
		"createdAt": "2020-01-01T00:00:00Z"
	}`), Create)
	require.NoError(t, err)

	assert.Equal(t, []string{"subject", "status", "recipient_id", "amount", "is_active", "due_date", "tags"}, vals.Columns())
	amount, _ := vals.Get("amount")
	assert.Equal(t, "1250.50", amount)
	due, _ := vals.Get("due_date")
	assert.Equal(t, "2025-03-01", due)
	tags, _ := vals.Get("tags")
	assert.Equal(t, pq.Array([]string{"a", "b"}), tags)
}

func TestBind_Errors(t *testing.T) {
	tbl := messagesTable()
	cases := []struct {
		name string
		body string
		mode Mode
		msg  string
	}{
		{"missing required", `{"category":"x"}`, Create, "subject is required"},
		{"null required", `{"subject":null}`, Create, "subject is required"},
		{"blank required", `{"subject":"  "}`, Create, "subject must not be empty"},
		{"unknown field", `{"subject":"x","bogus":1}`, Create, "bogus is not a known field"},
		{"bad enum", `{"status":"lost"}`, Update, "status must be one of draft, sent, read"},
		{"bad int", `{"recipientId":1.5}`, Update, "recipientId must be an integer"},
		{"bad numeric", `{"amount":"lots"}`, Update, "amount must be a number"},
		{"nan numeric", `{"amount":"NaN"}`, Update, "amount must be a number"},
		{"inf numeric", `{"amount":"Inf"}`, Update, "amount must be a number"},
		{"infinity numeric", `{"amount":"-Infinity"}`, Update, "amount must be a number"},
		{"hex numeric", `{"amount":"0x1p4"}`, Update, "amount must be a number"},
		{"overflowing numeric", `{"amount":1e400}`, Update, "amount must be a number"},
		{"bad timestamp date", `{"dueDate":"2025-02-30"}`, Update, "dueDate must be a date (YYYY-MM-DD)"},
		{"bad bool", `{"isActive":"yes"}`, Update, "isActive must be a boolean"},
		{"bad date", `{"dueDate":"31/01/2025"}`, Update, "dueDate must be a date (YYYY-MM-DD)"},
		{"bad array", `{"tags":[1]}`, Update, "tags must be an array of strings"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tbl.Bind(decode(t, tc.body), tc.mode)
			require.Error(t, err)
			assert.EqualError(t, err, tc.msg)
		})
	}
}

func TestCoerce_Numeric(t *testing.T) {
	c := Column{Name: "amount", Field: "amount", Kind: Numeric}
	cases := []struct {
		raw  any
		want string
	}{
		{json.Number("1250.50"), "1250.50"},
		{json.Number("-3"), "-3"},
		{json.Number("1e3"), "1000"},
		{json.Number("2.5E-1"), "0.25"},
		{float64(12.75), "12.75"},
		{"99.10", "99.10"},
	}
	for _, tc := range cases {
		got, err := c.Coerce(tc.raw)
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, got)
	}

	for _, raw := range []any{math.NaN(), math.Inf(1), math.Inf(-1), "", " 1", "1,5", true} {
		_, err := c.Coerce(raw)
		assert.EqualError(t, err, "amount must be a number", "%v", raw)
	}
}

func TestParseParam_Validates(t *testing.T) {
	tbl := messagesTable()
	amount, _ := tbl.ByField("amount")
	_, err := amount.ParseParam("NaN")
	assert.EqualError(t, err, "amount must be a number")
	v, err := amount.ParseParam("10.5")
	require.NoError(t, err)
	assert.Equal(t, "10.5", v)

	status, _ := tbl.ByField("status")
	_, err = status.ParseParam("lost")
	assert.EqualError(t, err, "status must be one of draft, sent, read")

	due, _ := tbl.ByField("dueDate")
	v, err = due.ParseParam("2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", v)
	_, err = due.ParseParam("March 1st")
	assert.EqualError(t, err, "dueDate must be a date (YYYY-MM-DD)")
}

func TestBind_UpdateAllowsNullAndPartial(t *testing.T) {
	vals, err := messagesTable().Bind(decode(t, `{"category":null}`), Update)
	require.NoError(t, err)
	assert.Equal(t, Values{{Column: "category", Value: nil}}, vals)
}

func TestBuildInsert(t *testing.T) {
	tbl := messagesTable()
	st := tbl.BuildInsert(Values{{Column: "subject", Value: "hi"}, {Column: "status", Value: "draft"}})
	assert.Equal(t, "INSERT INTO messages (subject, status) VALUES ($1, $2) RETURNING "+tbl.SelectList(), st.SQL)
	assert.Equal(t, []any{"hi", "draft"}, st.Args)
}

func TestBuildUpdate(t *testing.T) {
	tbl := messagesTable()
	st, err := tbl.BuildUpdate(5, Values{{Column: "subject", Value: "hi"}, {Column: "category", Value: nil}})
	require.NoError(t, err)
	assert.Equal(t, "UPDATE messages SET subject = $1, category = $2, updated_at = NOW() WHERE id = $3 RETURNING "+tbl.SelectList(), st.SQL)
	assert.Equal(t, []any{"hi", nil, int64(5)}, st.Args)

	_, err = tbl.BuildUpdate(5, nil)
	assert.ErrorIs(t, err, ErrNoValues)
}

func TestBuildStatusUpdate(t *testing.T) {
	tbl := messagesTable()
	st, err := tbl.BuildStatusUpdate(5,
		Values{{Column: "status", Value: "read"}, {Column: "subject", Value: "hi"}},
		"read",
		Values{{Column: "due_date", Value: "2025-01-01"}},
	)
	require.NoError(t, err)
	assert.Equal(t, "WITH prev AS (SELECT status AS prev_status FROM messages WHERE id = $1 FOR UPDATE) "+
		"UPDATE messages SET status = $2, subject = $3, "+
		"due_date = CASE WHEN prev.prev_status IS DISTINCT FROM $4 OR due_date IS NULL THEN $5 ELSE due_date END, "+
		"updated_at = NOW() FROM prev WHERE messages.id = $1 RETURNING "+tbl.SelectList()+", prev.prev_status", st.SQL)
	assert.Equal(t, []any{int64(5), "read", "hi", "read", "2025-01-01"}, st.Args)

	_, err = tbl.BuildStatusUpdate(5, nil, "read", nil)
	assert.ErrorIs(t, err, ErrNoValues)
}

func TestBuildStatusUpdate_SuppliedStampWins(t *testing.T) {
	st, err := messagesTable().BuildStatusUpdate(5,
		Values{{Column: "status", Value: "read"}, {Column: "due_date", Value: "2024-12-31"}},
		"read",
		Values{{Column: "due_date", Value: "2025-01-01"}},
	)
	require.NoError(t, err)
	assert.NotContains(t, st.SQL, "CASE")
	assert.Equal(t, []any{int64(5), "read", "2024-12-31"}, st.Args)
}

func TestValuesDel(t *testing.T) {
	v := Values{{"status", "paid"}, {"paid_date", nil}, {"notes", "x"}}
	v.Del("paid_date")
	v.Del("missing")
	assert.Equal(t, Values{{"status", "paid"}, {"notes", "x"}}, v)
}

func TestValuesSet(t *testing.T) {
	var v Values
	v.Set("status", "paid")
	v.Set("paid_date", "2025-01-01")
	v.Set("status", "approved")
	assert.Equal(t, Values{{"status", "approved"}, {"paid_date", "2025-01-01"}}, v)
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "0", "-3", "abc"} {
		_, err := ParseID(bad)
		assert.Error(t, err, bad)
	}
}
