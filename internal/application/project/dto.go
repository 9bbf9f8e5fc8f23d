package project

import (
	"time"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/application/financials"
	"github.com/projledger/backend/internal/domain/project"
	"github.com/shopspring/decimal"
)

// ==================== Project DTOs ====================

// CreateProjectRequest represents a request to create a project
type CreateProjectRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=200"`
	Description string          `json:"description" binding:"omitempty,max=2000"`
	Status      string          `json:"status" binding:"omitempty,oneof=PLANNING ACTIVE ON_HOLD COMPLETED CANCELLED"`
	StartDate   *time.Time      `json:"start_date"`
	EndDate     *time.Time      `json:"end_date"`
	Budget      decimal.Decimal `json:"budget" binding:"decimal_gte0"`
}

// UpdateProjectRequest represents a request to update a project.
// The roll-up figures are not editable.
type UpdateProjectRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=200"`
	Description string          `json:"description" binding:"omitempty,max=2000"`
	Status      string          `json:"status" binding:"omitempty,oneof=PLANNING ACTIVE ON_HOLD COMPLETED CANCELLED"`
	StartDate   *time.Time      `json:"start_date"`
	EndDate     *time.Time      `json:"end_date"`
	Budget      decimal.Decimal `json:"budget" binding:"decimal_gte0"`
}

// AddProjectMemberRequest represents a request to add a team member to a project
type AddProjectMemberRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

// ProjectListFilter represents filter options for the project list
type ProjectListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status"`
	MemberID string `form:"member_id" binding:"omitempty,uuid"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProjectResponse represents a project in API responses
type ProjectResponse struct {
	ID          uuid.UUID                     `json:"id"`
	TenantID    uuid.UUID                     `json:"tenant_id"`
	Name        string                        `json:"name"`
	Description string                        `json:"description"`
	Status      string                        `json:"status"`
	StartDate   *time.Time                    `json:"start_date,omitempty"`
	EndDate     *time.Time                    `json:"end_date,omitempty"`
	Budget      decimal.Decimal               `json:"budget"`
	OwnerID     uuid.UUID                     `json:"owner_id"`
	MemberIDs   []uuid.UUID                   `json:"member_ids"`
	Financials  financials.FinancialsResponse `json:"financials"`
	CreatedAt   time.Time                     `json:"created_at"`
	UpdatedAt   time.Time                     `json:"updated_at"`
	Version     int                           `json:"version"`
}

// RecomputeResponse is the result of a manual financials recompute
type RecomputeResponse struct {
	Rollup     *financials.RollupStatusResponse      `json:"rollup"`
	Financials *financials.ProjectFinancialsResponse `json:"financials,omitempty"`
}

// ==================== Task DTOs ====================

// CreateTaskRequest represents a request to add a task to a project
type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required,min=1,max=300"`
	Description string     `json:"description" binding:"omitempty,max=5000"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	AssigneeID  *uuid.UUID `json:"assignee_id"`
	DueDate     *time.Time `json:"due_date"`
}

// UpdateTaskRequest represents a request to edit a task
type UpdateTaskRequest struct {
	Title       string     `json:"title" binding:"required,min=1,max=300"`
	Description string     `json:"description" binding:"omitempty,max=5000"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	AssigneeID  *uuid.UUID `json:"assignee_id"`
	DueDate     *time.Time `json:"due_date"`
}

// MoveTaskRequest moves a task to a board column. Without a position the
// task goes to the end of the column.
type MoveTaskRequest struct {
	Status   string `json:"status" binding:"required,oneof=TODO IN_PROGRESS REVIEW DONE"`
	Position *int   `json:"position" binding:"omitempty,min=0"`
}

// TaskListFilter represents filter options for a project's task list
type TaskListFilter struct {
	Search     string `form:"search"`
	Status     string `form:"status"`
	AssigneeID string `form:"assignee_id" binding:"omitempty,uuid"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// TaskResponse represents a task in API responses
type TaskResponse struct {
	ID          uuid.UUID  `json:"id"`
	ProjectID   uuid.UUID  `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	AssigneeID  *uuid.UUID `json:"assignee_id,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Position    int        `json:"position"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Version     int        `json:"version"`
}

// BoardColumn is one kanban column
type BoardColumn struct {
	Status string         `json:"status"`
	Tasks  []TaskResponse `json:"tasks"`
}

// BoardResponse is a project's tasks grouped by status in column order
type BoardResponse struct {
	ProjectID uuid.UUID     `json:"project_id"`
	Columns   []BoardColumn `json:"columns"`
}

// ==================== Timesheet DTOs ====================

// CreateTimesheetRequest represents a request to log hours
type CreateTimesheetRequest struct {
	ProjectID   uuid.UUID       `json:"project_id" binding:"required"`
	TaskID      *uuid.UUID      `json:"task_id"`
	WorkDate    time.Time       `json:"work_date" binding:"required"`
	Hours       decimal.Decimal `json:"hours" binding:"decimal_gt0"`
	Description string          `json:"description" binding:"omitempty,max=1000"`
	Billable    bool            `json:"billable"`
}

// UpdateTimesheetRequest represents a request to edit a timesheet entry
type UpdateTimesheetRequest struct {
	TaskID      *uuid.UUID      `json:"task_id"`
	WorkDate    time.Time       `json:"work_date" binding:"required"`
	Hours       decimal.Decimal `json:"hours" binding:"decimal_gt0"`
	Description string          `json:"description" binding:"omitempty,max=1000"`
	Billable    bool            `json:"billable"`
}

// TimesheetListFilter represents filter options for the timesheet list.
// From and To are calendar days (YYYY-MM-DD), both inclusive.
type TimesheetListFilter struct {
	ProjectID string `form:"project_id" binding:"omitempty,uuid"`
	UserID    string `form:"user_id" binding:"omitempty,uuid"`
	From      string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To        string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string `form:"order_by"`
	OrderDir  string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// TimesheetResponse represents a timesheet entry in API responses
type TimesheetResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProjectID   uuid.UUID       `json:"project_id"`
	TaskID      *uuid.UUID      `json:"task_id,omitempty"`
	UserID      uuid.UUID       `json:"user_id"`
	WorkDate    string          `json:"work_date"`
	Hours       decimal.Decimal `json:"hours"`
	Description string          `json:"description"`
	Billable    bool            `json:"billable"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TimesheetSummaryResponse aggregates the hours logged on a project
type TimesheetSummaryResponse struct {
	ProjectID     uuid.UUID       `json:"project_id"`
	TotalHours    decimal.Decimal `json:"total_hours"`
	BillableHours decimal.Decimal `json:"billable_hours"`
	EntryCount    int64           `json:"entry_count"`
}

// ==================== Conversions ====================

// ToProjectResponse converts a domain project to a response
func ToProjectResponse(p *project.Project) *ProjectResponse {
	members := make([]uuid.UUID, len(p.MemberIDs))
	copy(members, p.MemberIDs)
	return &ProjectResponse{
		ID:          p.ID,
		TenantID:    p.TenantID,
		Name:        p.Name,
		Description: p.Description,
		Status:      string(p.Status),
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		Budget:      p.Budget,
		OwnerID:     p.OwnerID,
		MemberIDs:   members,
		Financials:  financials.ToFinancialsResponse(p.Financials),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Version:     p.Version,
	}
}

// ToTaskResponse converts a domain task to a response
func ToTaskResponse(t *project.Task) *TaskResponse {
	return &TaskResponse{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		AssigneeID:  t.AssigneeID,
		DueDate:     t.DueDate,
		Position:    t.Position,
		CompletedAt: t.CompletedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		Version:     t.Version,
	}
}

// ToBoardResponse lays out a board in column order
func ToBoardResponse(projectID uuid.UUID, board project.Board) *BoardResponse {
	columns := make([]BoardColumn, 0, len(project.TaskStatuses))
	for _, status := range project.TaskStatuses {
		tasks := board[status]
		column := BoardColumn{Status: string(status), Tasks: make([]TaskResponse, len(tasks))}
		for i := range tasks {
			column.Tasks[i] = *ToTaskResponse(&tasks[i])
		}
		columns = append(columns, column)
	}
	return &BoardResponse{ProjectID: projectID, Columns: columns}
}

// ToTimesheetResponse converts a domain timesheet entry to a response
func ToTimesheetResponse(e *project.TimesheetEntry) *TimesheetResponse {
	return &TimesheetResponse{
		ID:          e.ID,
		ProjectID:   e.ProjectID,
		TaskID:      e.TaskID,
		UserID:      e.UserID,
		WorkDate:    e.WorkDate.Format(time.DateOnly),
		Hours:       e.Hours,
		Description: e.Description,
		Billable:    e.Billable,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// ToTimesheetSummaryResponse converts a domain summary to a response
func ToTimesheetSummaryResponse(s *project.TimesheetSummary) *TimesheetSummaryResponse {
	return &TimesheetSummaryResponse{
		ProjectID:     s.ProjectID,
		TotalHours:    s.TotalHours,
		BillableHours: s.BillableHours,
		EntryCount:    s.EntryCount,
	}
}
