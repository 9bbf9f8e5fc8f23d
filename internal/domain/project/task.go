package project

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/domain/shared"
)

// TaskStatus is the kanban column a task sits in
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusReview     TaskStatus = "REVIEW"
	TaskStatusDone       TaskStatus = "DONE"
)

// TaskStatuses lists the board columns in display order
var TaskStatuses = []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusReview, TaskStatusDone}

// IsValid checks if the status is a valid task status
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusReview, TaskStatusDone:
		return true
	}
	return false
}

// TaskPriority orders work within a column
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
	TaskPriorityUrgent TaskPriority = "URGENT"
)

// IsValid checks if the priority is a valid task priority
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

// Task is a unit of work on a project board
type Task struct {
	shared.TenantAggregateRoot
	ProjectID   uuid.UUID
	Title       string
	Description string
	Status      TaskStatus
	Priority    TaskPriority
	AssigneeID  *uuid.UUID
	DueDate     *time.Time
	Position    int
	CompletedAt *time.Time
}

// TaskDetails are the editable fields of a task
type TaskDetails struct {
	Title       string
	Description string
	Priority    TaskPriority
	AssigneeID  *uuid.UUID
	DueDate     *time.Time
}

// NewTask creates a task in the TODO column
func NewTask(tenantID, projectID uuid.UUID, d TaskDetails) (*Task, error) {
	if projectID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PROJECT", "Project ID cannot be empty")
	}
	t := &Task{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProjectID:           projectID,
		Status:              TaskStatusTodo,
	}
	if err := t.apply(d); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Task) apply(d TaskDetails) error {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Task title cannot be empty")
	}
	if len(title) > 300 {
		return shared.NewDomainError("INVALID_TITLE", "Task title cannot exceed 300 characters")
	}
	if d.Priority == "" {
		d.Priority = TaskPriorityMedium
	}
	if !d.Priority.IsValid() {
		return shared.NewDomainError("INVALID_PRIORITY", fmt.Sprintf("Unknown task priority %q", d.Priority))
	}
	if d.AssigneeID != nil && *d.AssigneeID == uuid.Nil {
		d.AssigneeID = nil
	}

	t.Title = title
	t.Description = strings.TrimSpace(d.Description)
	t.Priority = d.Priority
	t.AssigneeID = d.AssigneeID
	t.DueDate = d.DueDate
	return nil
}

// Update replaces the editable fields
func (t *Task) Update(d TaskDetails) error {
	if err := t.apply(d); err != nil {
		return err
	}
	t.Touch()
	return nil
}

// Move places the task in a column at the given position
func (t *Task) Move(status TaskStatus, position int) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown task status %q", status))
	}
	if position < 0 {
		return shared.NewDomainError("INVALID_POSITION", "Position cannot be negative")
	}
	if status == TaskStatusDone && t.Status != TaskStatusDone {
		now := time.Now()
		t.CompletedAt = &now
	} else if status != TaskStatusDone {
		t.CompletedAt = nil
	}
	t.Status = status
	t.Position = position
	t.Touch()
	return nil
}

// Board is a project's tasks grouped into columns
type Board map[TaskStatus][]Task

// NewBoard groups tasks by status. Tasks are expected in position order.
func NewBoard(tasks []Task) Board {
	board := make(Board, len(TaskStatuses))
	for _, s := range TaskStatuses {
		board[s] = []Task{}
	}
	for _, t := range tasks {
		board[t.Status] = append(board[t.Status], t)
	}
	return board
}
