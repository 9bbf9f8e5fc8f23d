package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/domain/project"
	"github.com/shopspring/decimal"
)

// ProjectModel is the persistence model for the Project aggregate.
// The revenue..committed_cost columns are the roll-up read model.
type ProjectModel struct {
	TenantAggregateModel
	Name                string          `gorm:"type:varchar(200);not null"`
	Description         string          `gorm:"type:text"`
	Status              project.Status  `gorm:"type:varchar(20);not null;default:'PLANNING'"`
	StartDate           *time.Time
	EndDate             *time.Time
	Budget              decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	OwnerID             uuid.UUID       `gorm:"type:uuid;not null;index"`
	Revenue             decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Cost                decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Profit              decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CommittedRevenue    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CommittedCost       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	FinancialsUpdatedAt *time.Time
	Members             []ProjectMemberModel `gorm:"foreignKey:ProjectID;references:ID"`
}

// TableName returns the table name for GORM
func (ProjectModel) TableName() string {
	return "projects"
}

// ToDomain converts the persistence model to a domain Project.
func (m *ProjectModel) ToDomain() *project.Project {
	p := &project.Project{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Name:                m.Name,
		Description:         m.Description,
		Status:              m.Status,
		StartDate:           m.StartDate,
		EndDate:             m.EndDate,
		Budget:              m.Budget,
		OwnerID:             m.OwnerID,
		MemberIDs:           make([]uuid.UUID, len(m.Members)),
		Financials: project.Financials{
			Revenue:          m.Revenue,
			Cost:             m.Cost,
			Profit:           m.Profit,
			CommittedRevenue: m.CommittedRevenue,
			CommittedCost:    m.CommittedCost,
			UpdatedAt:        m.FinancialsUpdatedAt,
		},
	}
	for i, member := range m.Members {
		p.MemberIDs[i] = member.UserID
	}
	return p
}

// ProjectModelFromDomain creates a persistence model from a domain Project.
func ProjectModelFromDomain(p *project.Project) *ProjectModel {
	m := &ProjectModel{
		Name:                p.Name,
		Description:         p.Description,
		Status:              p.Status,
		StartDate:           p.StartDate,
		EndDate:             p.EndDate,
		Budget:              p.Budget,
		OwnerID:             p.OwnerID,
		Revenue:             p.Financials.Revenue,
		Cost:                p.Financials.Cost,
		Profit:              p.Financials.Profit,
		CommittedRevenue:    p.Financials.CommittedRevenue,
		CommittedCost:       p.Financials.CommittedCost,
		FinancialsUpdatedAt: p.Financials.UpdatedAt,
		Members:             make([]ProjectMemberModel, len(p.MemberIDs)),
	}
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	for i, userID := range p.MemberIDs {
		m.Members[i] = ProjectMemberModel{ProjectID: p.ID, UserID: userID}
	}
	return m
}

// ProjectMemberModel links a user to a project team
type ProjectMemberModel struct {
	ProjectID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProjectMemberModel) TableName() string {
	return "project_members"
}

// TaskModel is the persistence model for a board task.
type TaskModel struct {
	TenantAggregateModel
	ProjectID   uuid.UUID            `gorm:"type:uuid;not null;index:idx_tasks_board,priority:1"`
	Title       string               `gorm:"type:varchar(300);not null"`
	Description string               `gorm:"type:text"`
	Status      project.TaskStatus   `gorm:"type:varchar(20);not null;default:'TODO';index:idx_tasks_board,priority:2"`
	Priority    project.TaskPriority `gorm:"type:varchar(20);not null;default:'MEDIUM'"`
	AssigneeID  *uuid.UUID           `gorm:"type:uuid;index"`
	DueDate     *time.Time
	Position    int `gorm:"not null;default:0;index:idx_tasks_board,priority:3"`
	CompletedAt *time.Time
}

// TableName returns the table name for GORM
func (TaskModel) TableName() string {
	return "tasks"
}

// ToDomain converts the persistence model to a domain Task.
func (m *TaskModel) ToDomain() *project.Task {
	return &project.Task{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		ProjectID:           m.ProjectID,
		Title:               m.Title,
		Description:         m.Description,
		Status:              m.Status,
		Priority:            m.Priority,
		AssigneeID:          m.AssigneeID,
		DueDate:             m.DueDate,
		Position:            m.Position,
		CompletedAt:         m.CompletedAt,
	}
}

// TaskModelFromDomain creates a persistence model from a domain Task.
func TaskModelFromDomain(t *project.Task) *TaskModel {
	m := &TaskModel{
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		AssigneeID:  t.AssigneeID,
		DueDate:     t.DueDate,
		Position:    t.Position,
		CompletedAt: t.CompletedAt,
	}
	m.FromDomainTenantAggregateRoot(t.TenantAggregateRoot)
	return m
}

// TimesheetEntryModel is the persistence model for a timesheet entry.
type TimesheetEntryModel struct {
	TenantAggregateModel
	ProjectID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	TaskID      *uuid.UUID      `gorm:"type:uuid;index"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_timesheets_user_day,priority:1"`
	WorkDate    time.Time       `gorm:"type:date;not null;index:idx_timesheets_user_day,priority:2"`
	Hours       decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	Description string          `gorm:"type:text"`
	Billable    bool            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TimesheetEntryModel) TableName() string {
	return "timesheet_entries"
}

// ToDomain converts the persistence model to a domain TimesheetEntry.
func (m *TimesheetEntryModel) ToDomain() *project.TimesheetEntry {
	return &project.TimesheetEntry{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		ProjectID:           m.ProjectID,
		TaskID:              m.TaskID,
		UserID:              m.UserID,
		WorkDate:            project.WorkDay(m.WorkDate),
		Hours:               m.Hours,
		Description:         m.Description,
		Billable:            m.Billable,
	}
}

// TimesheetEntryModelFromDomain creates a persistence model from a domain TimesheetEntry.
func TimesheetEntryModelFromDomain(e *project.TimesheetEntry) *TimesheetEntryModel {
	m := &TimesheetEntryModel{
		ProjectID:   e.ProjectID,
		TaskID:      e.TaskID,
		UserID:      e.UserID,
		WorkDate:    e.WorkDate,
		Hours:       e.Hours,
		Description: e.Description,
		Billable:    e.Billable,
	}
	m.FromDomainTenantAggregateRoot(e.TenantAggregateRoot)
	return m
}
