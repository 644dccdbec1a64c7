package storage

import (
	"github.com/lib/pq"

	"velocity/internal/model"
	q "velocity/internal/query"
)

// Message statuses and priorities.
var (
	MessageStatuses   = []string{"draft", "sent", "read", "archived"}
	MessagePriorities = []string{"low", "normal", "high", "urgent"}
)

var MessageTable = q.NewTable("messages", "Message",
	q.ID(),
	q.Writable("sender_id", "senderId", q.Int).Filterable(),
	q.Writable("recipient_id", "recipientId", q.Int).Filterable(),
	q.Required("subject", "subject", q.Text).Sortable(),
	q.Required("body", "body", q.Text),
	q.Writable("category", "category", q.Text).Filterable().Sortable(),
	q.Writable("status", "status", q.Text).Filterable().Sortable().OneOf(MessageStatuses...),
	q.Writable("priority", "priority", q.Text).Filterable().Sortable().OneOf(MessagePriorities...),
	q.Writable("template_id", "templateId", q.Int).Filterable(),
	q.Writable("related_entity_type", "relatedEntityType", q.Text).Filterable(),
	q.Writable("related_entity_id", "relatedEntityId", q.Int).Filterable(),
	q.Writable("sent_at", "sentAt", q.Timestamp).Sortable(),
	q.Writable("read_at", "readAt", q.Timestamp).Sortable(),
	q.CreatedAt(),
	q.UpdatedAt(),
).SortBy("created_at", true)

func scanMessage(s RowScanner) (model.Message, error) {
	var m model.Message
	err := s.Scan(
		&m.ID, &m.SenderID, &m.RecipientID, &m.Subject, &m.Body, &m.Category,
		&m.Status, &m.Priority, &m.TemplateID, &m.RelatedEntityType, &m.RelatedEntityID,
		&m.SentAt, &m.ReadAt, &m.CreatedAt, &m.UpdatedAt,
	)
	return m, err
}

var TemplateTable = q.NewTable("message_templates", "Template",
	q.ID(),
	q.Required("name", "name", q.Text).Sortable(),
	q.Writable("category", "category", q.Text).Filterable().Sortable(),
	q.Writable("subject", "subject", q.Text),
	q.Required("body", "body", q.Text),
	q.Writable("variables", "variables", q.TextArray),
	q.Writable("is_active", "isActive", q.Bool).Filterable(),
	q.CreatedAt(),
	q.UpdatedAt(),
).SortBy("name", false)

func scanTemplate(s RowScanner) (model.MessageTemplate, error) {
	var t model.MessageTemplate
	err := s.Scan(
		&t.ID, &t.Name, &t.Category, &t.Subject, &t.Body, pq.Array(&t.Variables),
		&t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	)
	if t.Variables == nil {
		t.Variables = []string{}
	}
	return t, err
}
