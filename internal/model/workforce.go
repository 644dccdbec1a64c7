// internal/model/workforce.go
package model

import "time"

type Contractor struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	Phone        *string   `json:"phone"`
	DepartmentID *int64    `json:"departmentId"`
	JobTitle     *string   `json:"jobTitle"`
	HourlyRate   *float64  `json:"hourlyRate"`
	Status       string    `json:"status"`
	StartDate    *Date     `json:"startDate"`
	EndDate      *Date     `json:"endDate"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (c Contractor) RecordID() int64     { return c.ID }
func (c Contractor) StatusValue() string { return c.Status }

type Timecard struct {
	ID              int64      `json:"id"`
	ContractorID    int64      `json:"contractorId"`
	PurchaseOrderID *int64     `json:"purchaseOrderId"`
	WeekEnding      Date       `json:"weekEnding"`
	HoursWorked     float64    `json:"hoursWorked"`
	OvertimeHours   float64    `json:"overtimeHours"`
	Status          string     `json:"status"`
	SubmittedAt     *time.Time `json:"submittedAt"`
	ApprovedAt      *time.Time `json:"approvedAt"`
	ApprovedBy      *int64     `json:"approvedBy"`
	Notes           *string    `json:"notes"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func (t Timecard) RecordID() int64     { return t.ID }
func (t Timecard) StatusValue() string { return t.Status }

type Department struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	ManagerName *string   `json:"managerName"`
	Budget      *float64  `json:"budget"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (d Department) RecordID() int64     { return d.ID }
func (d Department) StatusValue() string { return "" }

type Alert struct {
	ID         int64     `json:"id"`
	Type       string    `json:"type"`
	Severity   string    `json:"severity"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	EntityType *string   `json:"entityType"`
	EntityID   *int64    `json:"entityId"`
	IsRead     bool      `json:"isRead"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (a Alert) RecordID() int64     { return a.ID }
func (a Alert) StatusValue() string { return "" }

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
