package storage

import (
	"context"
	"fmt"
	"time"

	"velocity/internal/model"
)

const trancheSummaryQuery = `
	SELECT
		COUNT(*),
		COUNT(*) FILTER (WHERE status = 'pending'),
		COUNT(*) FILTER (WHERE status = 'invoiced'),
		COUNT(*) FILTER (WHERE status = 'approved'),
		COUNT(*) FILTER (WHERE status = 'paid'),
		COUNT(*) FILTER (WHERE status = 'overdue'),
		COALESCE(SUM(amount) FILTER (WHERE status <> 'cancelled'), 0),
		COALESCE(SUM(amount) FILTER (WHERE status = 'paid'), 0),
		COALESCE(SUM(amount) FILTER (WHERE status NOT IN ('paid', 'cancelled')), 0)
	FROM sow_tranches
	WHERE ($1::bigint IS NULL OR sow_id = $1)
`

// TrancheSummary aggregates tranche counts and amounts, optionally for one SOW.
func (s *Storage) TrancheSummary(ctx context.Context, sowID *int64) (model.TrancheSummary, error) {
	sum := model.TrancheSummary{SOWID: sowID}
	var arg any
	if sowID != nil {
		arg = *sowID
	}
	err := s.DB.QueryRowContext(ctx, trancheSummaryQuery, arg).Scan(
		&sum.TotalTranches,
		&sum.PendingCount,
		&sum.InvoicedCount,
		&sum.ApprovedCount,
		&sum.PaidCount,
		&sum.OverdueCount,
		&sum.TotalAmount,
		&sum.PaidAmount,
		&sum.OutstandingAmount,
	)
	if err != nil {
		return model.TrancheSummary{}, fmt.Errorf("tranche summary: %w", translate(err))
	}
	return sum, nil
}

const dashboardQuery = `
	SELECT
		(SELECT COUNT(*) FROM contractors WHERE status = 'active'),
		(SELECT COUNT(*) FROM purchase_orders WHERE status = 'open'),
		(SELECT COALESCE(SUM(total_amount - amount_spent), 0) FROM purchase_orders WHERE status = 'open'),
		(SELECT COUNT(*) FROM invoices WHERE status = 'pending'),
		(SELECT COALESCE(SUM(amount), 0) FROM invoices WHERE status = 'pending'),
		(SELECT COUNT(*) FROM timecards WHERE status = 'submitted'),
		(SELECT COUNT(*) FROM alerts WHERE NOT is_read),
		(SELECT COALESCE(SUM(amount) FILTER (WHERE status = 'paid'), 0) FROM sow_tranches),
		(SELECT COALESCE(SUM(amount) FILTER (WHERE status NOT IN ('paid', 'cancelled')), 0) FROM sow_tranches)
`

func (s *Storage) DashboardKPIs(ctx context.Context) (model.DashboardKPIs, error) {
	var k model.DashboardKPIs
	err := s.DB.QueryRowContext(ctx, dashboardQuery).Scan(
		&k.ActiveContractors,
		&k.OpenPurchaseOrders,
		&k.RemainingPOBudget,
		&k.PendingInvoices,
		&k.PendingInvoiceAmount,
		&k.TimecardsAwaiting,
		&k.UnreadAlerts,
		&k.TranchePaidAmount,
		&k.TrancheOutstanding,
	)
	if err != nil {
		return model.DashboardKPIs{}, fmt.Errorf("dashboard kpis: %w", translate(err))
	}
	k.GeneratedAt = time.Now().UTC()
	return k, nil
}
