package readiness

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// RequiredTables must exist before the API can serve traffic.
var RequiredTables = []string{
	"users", "departments", "contractors", "purchase_orders", "invoices",
	"sow_tranches", "timecards", "message_templates", "messages", "alerts",
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// DefaultChecks returns the platform checks in execution order. broker may
// be nil when no message broker is configured.
func DefaultChecks(db *sql.DB, broker func() bool) []Check {
	return []Check{
		{Name: "database connection", Run: PingCheck(db)},
		{Name: "required tables", Run: TablesCheck(db, RequiredTables)},
		{Name: "paid tranches have paid date", Run: CountCheck(db, Fail,
			`SELECT COUNT(*) FROM sow_tranches WHERE status = 'paid' AND paid_date IS NULL`,
			"%d paid tranche(s) without paid date")},
		{Name: "approved timecards are stamped", Run: CountCheck(db, Fail,
			`SELECT COUNT(*) FROM timecards WHERE status = 'approved' AND approved_at IS NULL`,
			"%d approved timecard(s) without approval time")},
		{Name: "invoices within PO budget", Run: CountCheck(db, Warn, `
			SELECT COUNT(*)
			FROM invoices i
			JOIN purchase_orders po ON po.id = i.purchase_order_id
			WHERE i.status IN ('pending', 'approved')
			  AND i.amount > po.total_amount - po.amount_spent`,
			"%d open invoice(s) exceed the remaining PO budget")},
		{Name: "purchase orders not overspent", Run: CountCheck(db, Fail,
			`SELECT COUNT(*) FROM purchase_orders WHERE amount_spent > total_amount`,
			"%d purchase order(s) spent over total")},
		{Name: "no expired open purchase orders", Run: CountCheck(db, Warn,
			`SELECT COUNT(*) FROM purchase_orders WHERE status = 'open' AND expiry_date < CURRENT_DATE`,
			"%d open purchase order(s) past expiry")},
		{Name: "message broker", Run: BrokerCheck(broker)},
	}
}

func PingCheck(db Pinger) CheckFunc {
	return func(ctx context.Context) (Status, string) {
		if err := db.PingContext(ctx); err != nil {
			return Fail, err.Error()
		}
		return Pass, "connected"
	}
}

// TablesCheck fails when any of tables is missing from the search path.
func TablesCheck(db *sql.DB, tables []string) CheckFunc {
	return func(ctx context.Context) (Status, string) {
		var missing []string
		for _, t := range tables {
			var found sql.NullString
			if err := db.QueryRowContext(ctx, `SELECT to_regclass($1)::text`, t).Scan(&found); err != nil {
				return Fail, err.Error()
			}
			if !found.Valid {
				missing = append(missing, t)
			}
		}
		if len(missing) > 0 {
			return Fail, "missing tables: " + strings.Join(missing, ", ")
		}
		return Pass, fmt.Sprintf("%d tables present", len(tables))
	}
}

// CountCheck runs a COUNT query; a non-zero count yields onFound with the
// count formatted into format.
func CountCheck(db *sql.DB, onFound Status, query, format string) CheckFunc {
	return func(ctx context.Context) (Status, string) {
		var n int
		if err := db.QueryRowContext(ctx, query).Scan(&n); err != nil {
			return Fail, err.Error()
		}
		if n > 0 {
			return onFound, fmt.Sprintf(format, n)
		}
		return Pass, "ok"
	}
}

func BrokerCheck(connected func() bool) CheckFunc {
	return func(context.Context) (Status, string) {
		if connected == nil {
			return Warn, "not configured, events are dropped"
		}
		if !connected() {
			return Fail, "disconnected"
		}
		return Pass, "connected"
	}
}
