// internal/model/record.go
package model

// Record is implemented by every resource model served over REST.
type Record interface {
	RecordID() int64
	StatusValue() string
}

// Resource names used in event types and alert entity types.
const (
	ResourceMessage       = "message"
	ResourceTemplate      = "message_template"
	ResourceTranche       = "sow_tranche"
	ResourceContractor    = "contractor"
	ResourcePurchaseOrder = "purchase_order"
	ResourceInvoice       = "invoice"
	ResourceTimecard      = "timecard"
	ResourceAlert         = "alert"
	ResourceDepartment    = "department"
)
