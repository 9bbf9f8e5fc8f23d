package project

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Filter narrows project list queries
type Filter struct {
	shared.Filter
	Status   Status
	MemberID *uuid.UUID
}

// Repository persists projects and their member lists
type Repository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Project, error)
	// FindByIDForUpdate loads the project and row-locks it for the rest of the transaction
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Project, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter Filter) ([]Project, int64, error)
	Save(ctx context.Context, p *Project) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	Exists(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
	// UpdateFinancials writes only the roll-up columns
	UpdateFinancials(ctx context.Context, p *Project) error
}

// TaskFilter narrows task list queries
type TaskFilter struct {
	shared.Filter
	Status     TaskStatus
	AssigneeID *uuid.UUID
}

// TaskRepository persists tasks
type TaskRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Task, error)
	FindByProject(ctx context.Context, tenantID, projectID uuid.UUID, filter TaskFilter) ([]Task, int64, error)
	Save(ctx context.Context, t *Task) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	NextPosition(ctx context.Context, tenantID, projectID uuid.UUID, status TaskStatus) (int, error)
}

// TimesheetFilter narrows timesheet list queries
type TimesheetFilter struct {
	shared.Filter
	ProjectID *uuid.UUID
	UserID    *uuid.UUID
	From      *time.Time
	To        *time.Time
}

// TimesheetRepository persists timesheet entries
type TimesheetRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*TimesheetEntry, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter TimesheetFilter) ([]TimesheetEntry, int64, error)
	Save(ctx context.Context, e *TimesheetEntry) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	// HoursOnDay sums a user's hours on a day, excluding the entry excludeID
	HoursOnDay(ctx context.Context, tenantID, userID uuid.UUID, day time.Time, excludeID uuid.UUID) (decimal.Decimal, error)
	Summarize(ctx context.Context, tenantID, projectID uuid.UUID) (*TimesheetSummary, error)
}
