// internal/model/finance.go
package model

import "time"

// SOWTranche is a payment installment of a statement of work.
type SOWTranche struct {
	ID            int64     `json:"id"`
	SOWID         int64     `json:"sowId"`
	TrancheNumber int       `json:"trancheNumber"`
	Name          string    `json:"name"`
	Amount        float64   `json:"amount"`
	DueDate       *Date     `json:"dueDate"`
	Status        string    `json:"status"`
	PaidDate      *Date     `json:"paidDate"`
	InvoiceID     *int64    `json:"invoiceId"`
	Notes         *string   `json:"notes"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (t SOWTranche) RecordID() int64     { return t.ID }
func (t SOWTranche) StatusValue() string { return t.Status }

type PurchaseOrder struct {
	ID           int64      `json:"id"`
	PONumber     string     `json:"poNumber"`
	VendorName   string     `json:"vendorName"`
	DepartmentID *int64     `json:"departmentId"`
	TotalAmount  float64    `json:"totalAmount"`
	AmountSpent  float64    `json:"amountSpent"`
	Status       string     `json:"status"`
	IssueDate    *Date      `json:"issueDate"`
	ExpiryDate   *Date      `json:"expiryDate"`
	ClosedAt     *time.Time `json:"closedAt"`
	Description  *string    `json:"description"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (p PurchaseOrder) RecordID() int64     { return p.ID }
func (p PurchaseOrder) StatusValue() string { return p.Status }

type Invoice struct {
	ID              int64      `json:"id"`
	InvoiceNumber   string     `json:"invoiceNumber"`
	ContractorID    *int64     `json:"contractorId"`
	PurchaseOrderID *int64     `json:"purchaseOrderId"`
	Amount          float64    `json:"amount"`
	Status          string     `json:"status"`
	IssueDate       *Date      `json:"issueDate"`
	DueDate         *Date      `json:"dueDate"`
	PaidDate        *Date      `json:"paidDate"`
	ApprovedAt      *time.Time `json:"approvedAt"`
	Notes           *string    `json:"notes"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func (i Invoice) RecordID() int64     { return i.ID }
func (i Invoice) StatusValue() string { return i.Status }

// TrancheSummary aggregates tranches of one SOW, or of all SOWs when SOWID
// is nil.
type TrancheSummary struct {
	SOWID             *int64  `json:"sowId"`
	TotalTranches     int     `json:"totalTranches"`
	PendingCount      int     `json:"pendingCount"`
	InvoicedCount     int     `json:"invoicedCount"`
	ApprovedCount     int     `json:"approvedCount"`
	PaidCount         int     `json:"paidCount"`
	OverdueCount      int     `json:"overdueCount"`
	TotalAmount       float64 `json:"totalAmount"`
	PaidAmount        float64 `json:"paidAmount"`
	OutstandingAmount float64 `json:"outstandingAmount"`
}

// DashboardKPIs backs the KPI cards of the dashboard.
type DashboardKPIs struct {
	ActiveContractors    int       `json:"activeContractors"`
	OpenPurchaseOrders   int       `json:"openPurchaseOrders"`
	RemainingPOBudget    float64   `json:"remainingPoBudget"`
	PendingInvoices      int       `json:"pendingInvoices"`
	PendingInvoiceAmount float64   `json:"pendingInvoiceAmount"`
	TimecardsAwaiting    int       `json:"timecardsAwaitingApproval"`
	UnreadAlerts         int       `json:"unreadAlerts"`
	TranchePaidAmount    float64   `json:"tranchePaidAmount"`
	TrancheOutstanding   float64   `json:"trancheOutstandingAmount"`
	GeneratedAt          time.Time `json:"generatedAt"`
}
