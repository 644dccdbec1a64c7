package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"velocity/internal/metrics"
)

// Event actions.
const (
	ActionCreated       = "created"
	ActionUpdated       = "updated"
	ActionDeleted       = "deleted"
	ActionStatusChanged = "status_changed"
)

// Event is the JSON envelope published for every write. Its routing key is
// Type, "<resource>.<action>".
type Event struct {
	ID             uuid.UUID       `json:"id"`
	Type           string          `json:"type"`
	Resource       string          `json:"resource"`
	Action         string          `json:"action"`
	EntityID       int64           `json:"entityId"`
	Status         string          `json:"status,omitempty"`
	PreviousStatus string          `json:"previousStatus,omitempty"`
	ActorID        int64           `json:"actorId,omitempty"`
	OccurredAt     time.Time       `json:"occurredAt"`
	Data           json.RawMessage `json:"data,omitempty"`
}

// NewEvent stamps a fresh id and time; data is marshalled into Data.
func NewEvent(resource, action string, entityID int64, data any) Event {
	ev := Event{
		ID:         uuid.New(),
		Type:       resource + "." + action,
		Resource:   resource,
		Action:     action,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
	}
	if data != nil {
		if raw, err := json.Marshal(data); err == nil {
			ev.Data = raw
		}
	}
	return ev
}

// DecodeEvent parses a delivery body.
func DecodeEvent(body []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if ev.Type == "" || ev.Resource == "" {
		return Event{}, fmt.Errorf("decode event: missing type or resource")
	}
	return ev, nil
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// EventPublisher publishes events through a RabbitClient.
type EventPublisher struct {
	client *RabbitClient
}

func NewEventPublisher(client *RabbitClient) *EventPublisher {
	return &EventPublisher{client: client}
}

func (p *EventPublisher) Publish(_ context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := p.client.Publish(ev.Type, body); err != nil {
		metrics.EventsPublished.WithLabelValues(ev.Type, "error").Inc()
		return err
	}
	metrics.EventsPublished.WithLabelValues(ev.Type, "ok").Inc()
	return nil
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct {
	Log *zap.Logger
}

func (p NoopPublisher) Publish(_ context.Context, ev Event) error {
	if p.Log != nil {
		p.Log.Debug("Event dropped, no broker configured", zap.String("type", ev.Type))
	}
	return nil
}
