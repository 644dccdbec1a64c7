// internal/model/message.go
package model

import "time"

type Message struct {
	ID                int64      `json:"id"`
	SenderID          *int64     `json:"senderId"`
	RecipientID       *int64     `json:"recipientId"`
	Subject           string     `json:"subject"`
	Body              string     `json:"body"`
	Category          string     `json:"category"`
	Status            string     `json:"status"`
	Priority          string     `json:"priority"`
	TemplateID        *int64     `json:"templateId"`
	RelatedEntityType *string    `json:"relatedEntityType"`
	RelatedEntityID   *int64     `json:"relatedEntityId"`
	SentAt            *time.Time `json:"sentAt"`
	ReadAt            *time.Time `json:"readAt"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

func (m Message) RecordID() int64     { return m.ID }
func (m Message) StatusValue() string { return m.Status }

type MessageTemplate struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Variables []string  `json:"variables"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t MessageTemplate) RecordID() int64     { return t.ID }
func (t MessageTemplate) StatusValue() string { return "" }
