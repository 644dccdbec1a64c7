package alerting

import (
	"fmt"

	"velocity/internal/messaging"
	"velocity/internal/model"
)

// DefaultRules returns the alert rules evaluated for every event.
func DefaultRules() []Rule {
	return []Rule{
		statusRule(model.ResourceInvoice, "overdue", "invoice_overdue", "warning",
			func(d map[string]any) string { return fmt.Sprintf("Invoice %s is overdue", str(d, "invoiceNumber")) }),
		statusRule(model.ResourceInvoice, "rejected", "invoice_rejected", "warning",
			func(d map[string]any) string { return fmt.Sprintf("Invoice %s was rejected", str(d, "invoiceNumber")) }),
		statusRule(model.ResourceTranche, "overdue", "tranche_overdue", "critical",
			func(d map[string]any) string { return fmt.Sprintf("Tranche %s is overdue", trancheName(d)) }),
		statusRule(model.ResourceTranche, "paid", "tranche_paid", "info",
			func(d map[string]any) string { return fmt.Sprintf("Tranche %s was paid", trancheName(d)) }),
		statusRule(model.ResourceTimecard, "submitted", "timecard_submitted", "info",
			func(d map[string]any) string {
				return fmt.Sprintf("Timecard for week ending %s awaits approval", str(d, "weekEnding"))
			}),
		statusRule(model.ResourcePurchaseOrder, "closed", "purchase_order_closed", "info",
			func(d map[string]any) string { return fmt.Sprintf("Purchase order %s was closed", str(d, "poNumber")) }),
		urgentMessage,
	}
}

func statusRule(resource, status, alertType, severity string, title func(map[string]any) string) Rule {
	return func(ev messaging.Event, data map[string]any) (Draft, bool) {
		if ev.Resource != resource || ev.Action != messaging.ActionStatusChanged || ev.Status != status {
			return Draft{}, false
		}
		msg := fmt.Sprintf("%s %d moved to %s", resource, ev.EntityID, status)
		if ev.PreviousStatus != "" {
			msg = fmt.Sprintf("%s %d moved from %s to %s", resource, ev.EntityID, ev.PreviousStatus, status)
		}
		return Draft{Type: alertType, Severity: severity, Title: title(data), Message: msg}, true
	}
}

func urgentMessage(ev messaging.Event, data map[string]any) (Draft, bool) {
	if ev.Resource != model.ResourceMessage || ev.Action != messaging.ActionCreated {
		return Draft{}, false
	}
	if str(data, "priority") != "urgent" {
		return Draft{}, false
	}
	return Draft{
		Type:     "urgent_message",
		Severity: "warning",
		Title:    "Urgent message: " + str(data, "subject"),
		Message:  str(data, "body"),
	}, true
}

func trancheName(d map[string]any) string {
	if name := str(d, "name"); name != "" {
		return name
	}
	return "#" + str(d, "trancheNumber")
}

// str renders a decoded JSON value, empty for missing or null.
func str(d map[string]any, key string) string {
	switch v := d[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprint(v)
	}
}
