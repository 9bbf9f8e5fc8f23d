package project

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MaxHoursPerDay caps the hours one user can log on a single day
var MaxHoursPerDay = decimal.NewFromInt(24)

// TimesheetEntry records hours a user spent on a project
type TimesheetEntry struct {
	shared.TenantAggregateRoot
	ProjectID   uuid.UUID
	TaskID      *uuid.UUID
	UserID      uuid.UUID
	WorkDate    time.Time
	Hours       decimal.Decimal
	Description string
	Billable    bool
}

// TimesheetDetails are the editable fields of an entry
type TimesheetDetails struct {
	TaskID      *uuid.UUID
	WorkDate    time.Time
	Hours       decimal.Decimal
	Description string
	Billable    bool
}

// NewTimesheetEntry validates and creates an entry
func NewTimesheetEntry(tenantID, projectID, userID uuid.UUID, d TimesheetDetails) (*TimesheetEntry, error) {
	if projectID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PROJECT", "Project ID cannot be empty")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	e := &TimesheetEntry{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProjectID:           projectID,
		UserID:              userID,
	}
	if err := e.apply(d); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *TimesheetEntry) apply(d TimesheetDetails) error {
	if !d.Hours.IsPositive() || d.Hours.GreaterThan(MaxHoursPerDay) {
		return shared.NewDomainError("INVALID_HOURS", "Hours must be greater than 0 and at most 24")
	}
	if d.WorkDate.IsZero() {
		return shared.NewDomainError("INVALID_WORK_DATE", "Work date is required")
	}
	if d.TaskID != nil && *d.TaskID == uuid.Nil {
		d.TaskID = nil
	}
	e.TaskID = d.TaskID
	e.WorkDate = WorkDay(d.WorkDate)
	e.Hours = d.Hours.Round(2)
	e.Description = strings.TrimSpace(d.Description)
	e.Billable = d.Billable
	return nil
}

// Update replaces the editable fields
func (e *TimesheetEntry) Update(d TimesheetDetails) error {
	if err := e.apply(d); err != nil {
		return err
	}
	e.Touch()
	return nil
}

// WorkDay truncates a timestamp to its calendar day in UTC
func WorkDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CheckDailyLimit rejects an entry that would push the user's day over MaxHoursPerDay.
// alreadyLogged must exclude the entry itself.
func CheckDailyLimit(alreadyLogged, hours decimal.Decimal) error {
	if alreadyLogged.Add(hours).GreaterThan(MaxHoursPerDay) {
		return shared.NewDomainError("DAILY_LIMIT_EXCEEDED", "Cannot log more than 24 hours per day")
	}
	return nil
}

// TimesheetSummary aggregates logged hours for a project
type TimesheetSummary struct {
	ProjectID     uuid.UUID
	TotalHours    decimal.Decimal
	BillableHours decimal.Decimal
	EntryCount    int64
}
