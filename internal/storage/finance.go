package storage

import (
	"velocity/internal/model"
	q "velocity/internal/query"
)

var (
	TrancheStatuses       = []string{"pending", "invoiced", "approved", "paid", "overdue", "cancelled"}
	PurchaseOrderStatuses = []string{"draft", "open", "closed", "cancelled"}
	InvoiceStatuses       = []string{"pending", "approved", "paid", "rejected", "overdue"}
)

var TrancheTable = q.NewTable("sow_tranches", "Tranche",
	q.ID(),
	q.Required("sow_id", "sowId", q.Int).Filterable().Sortable(),
	q.Required("tranche_number", "trancheNumber", q.Int).Sortable(),
	q.Writable("name", "name", q.Text).Sortable(),
	q.Required("amount", "amount", q.Numeric).Sortable(),
	q.Writable("due_date", "dueDate", q.Date).Sortable(),
	q.Writable("status", "status", q.Text).Filterable().Sortable().OneOf(TrancheStatuses...),
	q.Writable("paid_date", "paidDate", q.Date).Sortable(),
	q.Writable("invoice_id", "invoiceId", q.Int).Filterable(),
	q.Writable("notes", "notes", q.Text),
	q.CreatedAt(),
	q.UpdatedAt(),
)

func scanTranche(s RowScanner) (model.SOWTranche, error) {
	var t model.SOWTranche
	err := s.Scan(
		&t.ID, &t.SOWID, &t.TrancheNumber, &t.Name, &t.Amount, &t.DueDate,
		&t.Status, &t.PaidDate, &t.InvoiceID, &t.Notes, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

var PurchaseOrderTable = q.NewTable("purchase_orders", "Purchase order",
	q.ID(),
	q.Required("po_number", "poNumber", q.Text).Filterable().Sortable(),
	q.Required("vendor_name", "vendorName", q.Text).Filterable().Sortable(),
	q.Writable("department_id", "departmentId", q.Int).Filterable(),
	q.Required("total_amount", "totalAmount", q.Numeric).Sortable(),
	q.Writable("amount_spent", "amountSpent", q.Numeric).Sortable(),
	q.Writable("status", "status", q.Text).Filterable().Sortable().OneOf(PurchaseOrderStatuses...),
	q.Writable("issue_date", "issueDate", q.Date).Sortable(),
	q.Writable("expiry_date", "expiryDate", q.Date).Sortable(),
	q.Writable("closed_at", "closedAt", q.Timestamp).Sortable(),
	q.Writable("description", "description", q.Text),
	q.CreatedAt(),
	q.UpdatedAt(),
)

func scanPurchaseOrder(s RowScanner) (model.PurchaseOrder, error) {
	var p model.PurchaseOrder
	err := s.Scan(
		&p.ID, &p.PONumber, &p.VendorName, &p.DepartmentID, &p.TotalAmount, &p.AmountSpent,
		&p.Status, &p.IssueDate, &p.ExpiryDate, &p.ClosedAt, &p.Description, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

var InvoiceTable = q.NewTable("invoices", "Invoice",
	q.ID(),
	q.Required("invoice_number", "invoiceNumber", q.Text).Filterable().Sortable(),
	q.Writable("contractor_id", "contractorId", q.Int).Filterable(),
	q.Writable("purchase_order_id", "purchaseOrderId", q.Int).Filterable(),
	q.Required("amount", "amount", q.Numeric).Sortable(),
	q.Writable("status", "status", q.Text).Filterable().Sortable().OneOf(InvoiceStatuses...),
	q.Writable("issue_date", "issueDate", q.Date).Sortable(),
	q.Writable("due_date", "dueDate", q.Date).Sortable(),
	q.Writable("paid_date", "paidDate", q.Date).Sortable(),
	q.Writable("approved_at", "approvedAt", q.Timestamp).Sortable(),
	q.Writable("notes", "notes", q.Text),
	q.CreatedAt(),
	q.UpdatedAt(),
)

func scanInvoice(s RowScanner) (model.Invoice, error) {
	var i model.Invoice
	err := s.Scan(
		&i.ID, &i.InvoiceNumber, &i.ContractorID, &i.PurchaseOrderID, &i.Amount, &i.Status,
		&i.IssueDate, &i.DueDate, &i.PaidDate, &i.ApprovedAt, &i.Notes, &i.CreatedAt, &i.UpdatedAt,
	)
	return i, err
}
