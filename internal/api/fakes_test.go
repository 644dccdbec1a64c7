package api

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"velocity/internal/messaging"
	"velocity/internal/model"
	"velocity/internal/query"
	"velocity/internal/storage"
)

// memStore is an in-memory Store. apply copies assigned values onto a row
// and field reads a column for filtering.
type memStore[T model.Record] struct {
	table *query.Table
	apply func(row *T, id int64, vals query.Values)
	field func(row T, column string) any

	mu         sync.Mutex
	rows       map[int64]T
	nextID     int64
	lastParams query.ListParams
	lastValues query.Values
}

func newMemStore[T model.Record](table *query.Table, apply func(*T, int64, query.Values), field func(T, string) any) *memStore[T] {
	return &memStore[T]{table: table, apply: apply, field: field, rows: map[int64]T{}}
}

func (m *memStore[T]) Table() *query.Table { return m.table }

func (m *memStore[T]) seed(vals query.Values) T {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	var row T
	m.apply(&row, m.nextID, vals)
	m.rows[m.nextID] = row
	return row
}

func (m *memStore[T]) List(_ context.Context, p query.ListParams) ([]T, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastParams = p

	ids := make([]int64, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var matched []T
	for _, id := range ids {
		row := m.rows[id]
		ok := true
		for _, f := range p.Filters {
			if m.field(row, f.Column) != f.Value {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, row)
		}
	}

	total := len(matched)
	start := min(p.Offset, total)
	end := total
	if p.Limit > 0 {
		end = min(start+p.Limit, total)
	}
	page := append([]T{}, matched[start:end]...)
	return page, total, nil
}

func (m *memStore[T]) Get(_ context.Context, id int64) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		var zero T
		return zero, storage.ErrNotFound
	}
	return row, nil
}

func (m *memStore[T]) Create(_ context.Context, vals query.Values) (T, error) {
	m.mu.Lock()
	m.lastValues = vals
	m.mu.Unlock()
	return m.seed(vals), nil
}

func (m *memStore[T]) Update(_ context.Context, id int64, vals query.Values) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastValues = vals
	row, ok := m.rows[id]
	if !ok {
		var zero T
		return zero, storage.ErrNotFound
	}
	m.apply(&row, id, vals)
	m.rows[id] = row
	return row, nil
}

// UpdateStatus mirrors the repo: stamps apply when the status moves or the
// stamp column reads as NULL through field.
func (m *memStore[T]) UpdateStatus(_ context.Context, id int64, vals, stamps query.Values) (T, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		var zero T
		return zero, "", storage.ErrNotFound
	}
	previous := row.StatusValue()
	status, _ := vals.Get("status")
	all := append(query.Values{}, vals...)
	for _, s := range stamps {
		if status != any(previous) || m.field(row, s.Column) == nil {
			all.Set(s.Column, s.Value)
		}
	}
	m.lastValues = all
	m.apply(&row, id, all)
	m.rows[id] = row
	return row, previous, nil
}

func (m *memStore[T]) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func text(v any) string {
	s, _ := v.(string)
	return s
}

func intPtr(v any) *int64 {
	n, ok := v.(int64)
	if !ok {
		return nil
	}
	return &n
}

func timePtr(v any) *time.Time {
	t, ok := v.(time.Time)
	if !ok {
		return nil
	}
	return &t
}

func datePtr(v any) *model.Date {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil
	}
	d := model.NewDate(t)
	return &d
}

func applyMessage(m *model.Message, id int64, vals query.Values) {
	if m.ID == 0 {
		m.ID, m.Status, m.Priority, m.Category = id, "draft", "normal", "general"
		m.CreatedAt = time.Now().UTC()
	}
	for _, a := range vals {
		switch a.Column {
		case "sender_id":
			m.SenderID = intPtr(a.Value)
		case "recipient_id":
			m.RecipientID = intPtr(a.Value)
		case "subject":
			m.Subject = text(a.Value)
		case "body":
			m.Body = text(a.Value)
		case "category":
			m.Category = text(a.Value)
		case "status":
			m.Status = text(a.Value)
		case "priority":
			m.Priority = text(a.Value)
		case "template_id":
			m.TemplateID = intPtr(a.Value)
		case "sent_at":
			m.SentAt = timePtr(a.Value)
		case "read_at":
			m.ReadAt = timePtr(a.Value)
		}
	}
}

func messageField(m model.Message, column string) any {
	switch column {
	case "status":
		return m.Status
	case "category":
		return m.Category
	case "priority":
		return m.Priority
	case "sent_at":
		if m.SentAt == nil {
			return nil
		}
		return *m.SentAt
	case "read_at":
		if m.ReadAt == nil {
			return nil
		}
		return *m.ReadAt
	}
	return nil
}

func applyTemplate(t *model.MessageTemplate, id int64, vals query.Values) {
	if t.ID == 0 {
		t.ID, t.IsActive, t.Category = id, true, "general"
	}
	for _, a := range vals {
		switch a.Column {
		case "name":
			t.Name = text(a.Value)
		case "subject":
			t.Subject = text(a.Value)
		case "body":
			t.Body = text(a.Value)
		case "category":
			t.Category = text(a.Value)
		}
	}
}

func applyTranche(tr *model.SOWTranche, id int64, vals query.Values) {
	if tr.ID == 0 {
		tr.ID, tr.Status = id, "pending"
	}
	for _, a := range vals {
		switch a.Column {
		case "sow_id":
			tr.SOWID, _ = a.Value.(int64)
		case "name":
			tr.Name = text(a.Value)
		case "status":
			tr.Status = text(a.Value)
		case "paid_date":
			tr.PaidDate = datePtr(a.Value)
		}
	}
}

func trancheField(tr model.SOWTranche, column string) any {
	switch column {
	case "status":
		return tr.Status
	case "paid_date":
		if tr.PaidDate == nil {
			return nil
		}
		return tr.PaidDate.String()
	}
	return nil
}

func applyTimecard(tc *model.Timecard, id int64, vals query.Values) {
	if tc.ID == 0 {
		tc.ID, tc.Status = id, "draft"
	}
	for _, a := range vals {
		switch a.Column {
		case "status":
			tc.Status = text(a.Value)
		case "approved_at":
			tc.ApprovedAt = timePtr(a.Value)
		case "approved_by":
			tc.ApprovedBy = intPtr(a.Value)
		case "submitted_at":
			tc.SubmittedAt = timePtr(a.Value)
		}
	}
}

func applyAlert(al *model.Alert, id int64, vals query.Values) {
	if al.ID == 0 {
		al.ID, al.Severity = id, "info"
	}
	for _, a := range vals {
		switch a.Column {
		case "title":
			al.Title = text(a.Value)
		case "type":
			al.Type = text(a.Value)
		case "is_read":
			al.IsRead, _ = a.Value.(bool)
		}
	}
}

// noFields makes every filter miss; used where no filter is exercised.
func noFields[T any](T, string) any { return nil }

type recordingPublisher struct {
	mu     sync.Mutex
	events []messaging.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev messaging.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) last() messaging.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return messaging.Event{}
	}
	return p.events[len(p.events)-1]
}

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

type fakeReports struct {
	kpiCalls int
	summary  model.TrancheSummary
	err      error
}

func (f *fakeReports) TrancheSummary(_ context.Context, sowID *int64) (model.TrancheSummary, error) {
	s := f.summary
	s.SOWID = sowID
	return s, f.err
}

func (f *fakeReports) DashboardKPIs(context.Context) (model.DashboardKPIs, error) {
	f.kpiCalls++
	return model.DashboardKPIs{ActiveContractors: 4, UnreadAlerts: f.kpiCalls}, f.err
}

type fakeUsers struct {
	users map[string]model.User
}

func (f *fakeUsers) UserByEmail(_ context.Context, email string) (model.User, error) {
	u, ok := f.users[strings.ToLower(email)]
	if !ok {
		return model.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) UserByID(_ context.Context, id int64) (model.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, storage.ErrNotFound
}

type fakeScaler struct {
	counts map[string]int
}

func (f *fakeScaler) SetWorkerCount(queue string, n int) error {
	if _, ok := f.counts[queue]; !ok {
		return errors.New("queue not found")
	}
	f.counts[queue] = n
	return nil
}

func (f *fakeScaler) WorkerCounts() map[string]int { return f.counts }
