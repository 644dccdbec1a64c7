package storage

import (
	"velocity/internal/model"
	q "velocity/internal/query"
)

var (
	ContractorStatuses = []string{"onboarding", "active", "inactive", "offboarded"}
	TimecardStatuses   = []string{"draft", "submitted", "approved", "rejected"}
	AlertSeverities    = []string{"info", "warning", "critical"}
)

var ContractorTable = q.NewTable("contractors", "Contractor",
	q.ID(),
	q.Required("first_name", "firstName", q.Text).Sortable(),
	q.Required("last_name", "lastName", q.Text).Sortable(),
	q.Required("email", "email", q.Text).Filterable().Sortable(),
	q.Writable("phone", "phone", q.Text),
	q.Writable("department_id", "departmentId", q.Int).Filterable(),
	q.Writable("job_title", "jobTitle", q.Text).Filterable().Sortable(),
	q.Writable("hourly_rate", "hourlyRate", q.Numeric).Sortable(),
	q.Writable("status", "status", q.Text).Filterable().Sortable().OneOf(ContractorStatuses...),
	q.Writable("start_date", "startDate", q.Date).Sortable(),
	q.Writable("end_date", "endDate", q.Date).Sortable(),
	q.CreatedAt(),
	q.UpdatedAt(),
).SortBy("last_name", false)

func scanContractor(s RowScanner) (model.Contractor, error) {
	var c model.Contractor
	err := s.Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.DepartmentID, &c.JobTitle,
		&c.HourlyRate, &c.Status, &c.StartDate, &c.EndDate, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

var TimecardTable = q.NewTable("timecards", "Timecard",
	q.ID(),
	q.Required("contractor_id", "contractorId", q.Int).Filterable().Sortable(),
	q.Writable("purchase_order_id", "purchaseOrderId", q.Int).Filterable(),
	q.Required("week_ending", "weekEnding", q.Date).Filterable().Sortable(),
	q.Required("hours_worked", "hoursWorked", q.Numeric).Sortable(),
	q.Writable("overtime_hours", "overtimeHours", q.Numeric),
	q.Writable("status", "status", q.Text).Filterable().Sortable().OneOf(TimecardStatuses...),
	q.Writable("submitted_at", "submittedAt", q.Timestamp).Sortable(),
	q.Writable("approved_at", "approvedAt", q.Timestamp).Sortable(),
	q.Writable("approved_by", "approvedBy", q.Int),
	q.Writable("notes", "notes", q.Text),
	q.CreatedAt(),
	q.UpdatedAt(),
).SortBy("week_ending", true)

func scanTimecard(s RowScanner) (model.Timecard, error) {
	var t model.Timecard
	err := s.Scan(
		&t.ID, &t.ContractorID, &t.PurchaseOrderID, &t.WeekEnding, &t.HoursWorked, &t.OvertimeHours,
		&t.Status, &t.SubmittedAt, &t.ApprovedAt, &t.ApprovedBy, &t.Notes, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

var DepartmentTable = q.NewTable("departments", "Department",
	q.ID(),
	q.Required("name", "name", q.Text).Sortable(),
	q.Required("code", "code", q.Text).Filterable().Sortable(),
	q.Writable("manager_name", "managerName", q.Text),
	q.Writable("budget", "budget", q.Numeric).Sortable(),
	q.Writable("description", "description", q.Text),
	q.CreatedAt(),
	q.UpdatedAt(),
).SortBy("name", false)

func scanDepartment(s RowScanner) (model.Department, error) {
	var d model.Department
	err := s.Scan(
		&d.ID, &d.Name, &d.Code, &d.ManagerName, &d.Budget, &d.Description, &d.CreatedAt, &d.UpdatedAt,
	)
	return d, err
}

var AlertTable = q.NewTable("alerts", "Alert",
	q.ID(),
	q.Required("type", "type", q.Text).Filterable().Sortable(),
	q.Writable("severity", "severity", q.Text).Filterable().Sortable().OneOf(AlertSeverities...),
	q.Required("title", "title", q.Text),
	q.Writable("message", "message", q.Text),
	q.Writable("entity_type", "entityType", q.Text).Filterable(),
	q.Writable("entity_id", "entityId", q.Int).Filterable(),
	q.Writable("is_read", "isRead", q.Bool).Filterable(),
	q.CreatedAt(),
	q.UpdatedAt(),
).SortBy("created_at", true)

func scanAlert(s RowScanner) (model.Alert, error) {
	var a model.Alert
	err := s.Scan(
		&a.ID, &a.Type, &a.Severity, &a.Title, &a.Message, &a.EntityType, &a.EntityID,
		&a.IsRead, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}
