// Package alerting consumes domain events and raises dashboard alerts for
// the transitions finance and managers need to act on.
package alerting

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"velocity/internal/cache"
	"velocity/internal/messaging"
	"velocity/internal/metrics"
	"velocity/internal/model"
	"velocity/internal/query"
	"velocity/internal/worker"
)

// AlertCreator persists an alert row.
type AlertCreator interface {
	Create(ctx context.Context, vals query.Values) (model.Alert, error)
}

// Draft is an alert produced by a rule, before it is stored.
type Draft struct {
	Type     string
	Severity string
	Title    string
	Message  string
}

// Rule inspects an event and optionally produces an alert.
type Rule func(ev messaging.Event, data map[string]any) (Draft, bool)

type Handler struct {
	alerts AlertCreator
	cache  cache.Cache
	rules  []Rule
	log    *zap.Logger
}

func NewHandler(alerts AlertCreator, c cache.Cache, log *zap.Logger) *Handler {
	if c == nil {
		c = cache.Noop{}
	}
	return &Handler{alerts: alerts, cache: c, rules: DefaultRules(), log: log}
}

// HandleDelivery is a worker.HandlerFunc.
func (h *Handler) HandleDelivery(ctx context.Context, msg amqp.Delivery) error {
	ev, err := messaging.DecodeEvent(msg.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", worker.ErrMalformed, err)
	}
	return h.Handle(ctx, ev)
}

// Handle evaluates every rule against ev and stores the resulting alerts.
func (h *Handler) Handle(ctx context.Context, ev messaging.Event) error {
	data := map[string]any{}
	if len(ev.Data) > 0 {
		if err := json.Unmarshal(ev.Data, &data); err != nil {
			return fmt.Errorf("%w: event data: %v", worker.ErrMalformed, err)
		}
	}

	raised := 0
	for _, rule := range h.rules {
		d, ok := rule(ev, data)
		if !ok {
			continue
		}
		vals := query.Values{
			{Column: "type", Value: d.Type},
			{Column: "severity", Value: d.Severity},
			{Column: "title", Value: d.Title},
			{Column: "message", Value: d.Message},
			{Column: "entity_type", Value: ev.Resource},
			{Column: "entity_id", Value: ev.EntityID},
		}
		alert, err := h.alerts.Create(ctx, vals)
		if err != nil {
			return fmt.Errorf("create %s alert: %w", d.Type, err)
		}
		metrics.AlertsCreated.WithLabelValues(d.Type, d.Severity).Inc()
		h.log.Info("Alert raised",
			zap.Int64("alert_id", alert.ID),
			zap.String("type", d.Type),
			zap.String("severity", d.Severity),
			zap.String("event", ev.Type),
		)
		raised++
	}

	if raised > 0 {
		if err := h.cache.Invalidate(ctx, cache.KeyDashboard); err != nil {
			h.log.Warn("Failed to invalidate dashboard cache", zap.Error(err))
		}
	}
	return nil
}
