package project

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/domain/project"
	"github.com/projledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// boardPageSize is how many tasks a board load fetches per query
const boardPageSize = 100

// ErrAssigneeNotMember is returned when a task is assigned outside the project team
var ErrAssigneeNotMember = shared.NewDomainError("ASSIGNEE_NOT_MEMBER", "Assignee must be a project member")

// TaskService handles project tasks and the kanban board
type TaskService struct {
	tasks    project.TaskRepository
	projects project.Repository
	logger   *zap.Logger
}

// NewTaskService creates a new TaskService
func NewTaskService(tasks project.TaskRepository, projects project.Repository, logger *zap.Logger) *TaskService {
	return &TaskService{
		tasks:    tasks,
		projects: projects,
		logger:   logger.Named("task"),
	}
}

// Create adds a task at the end of the project's TODO column
func (s *TaskService) Create(ctx context.Context, tenantID, projectID uuid.UUID, req CreateTaskRequest) (*TaskResponse, error) {
	p, err := s.projects.FindByID(ctx, tenantID, projectID)
	if err != nil {
		return nil, err
	}
	if err := checkAssignee(p, req.AssigneeID); err != nil {
		return nil, err
	}

	task, err := project.NewTask(tenantID, projectID, project.TaskDetails{
		Title:       req.Title,
		Description: req.Description,
		Priority:    parsePriority(req.Priority),
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
	})
	if err != nil {
		return nil, err
	}
	position, err := s.tasks.NextPosition(ctx, tenantID, projectID, task.Status)
	if err != nil {
		return nil, err
	}
	task.Position = position

	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, err
	}
	return ToTaskResponse(task), nil
}

// GetByID retrieves a task
func (s *TaskService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*TaskResponse, error) {
	task, err := s.tasks.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return ToTaskResponse(task), nil
}

// ListByProject lists a project's tasks, in board order unless a sort is given
func (s *TaskService) ListByProject(ctx context.Context, tenantID, projectID uuid.UUID, filter TaskListFilter) ([]TaskResponse, int64, error) {
	if err := s.checkProject(ctx, tenantID, projectID); err != nil {
		return nil, 0, err
	}
	assigneeID, err := parseOptionalID(filter.AssigneeID, "assignee_id")
	if err != nil {
		return nil, 0, err
	}

	domainFilter := project.TaskFilter{
		Filter:     buildFilter(filter.Search, filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir),
		Status:     parseTaskStatus(filter.Status),
		AssigneeID: assigneeID,
	}
	if filter.OrderBy == "" {
		domainFilter.OrderBy = ""
	}

	tasks, total, err := s.tasks.FindByProject(ctx, tenantID, projectID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	items := make([]TaskResponse, len(tasks))
	for i := range tasks {
		items[i] = *ToTaskResponse(&tasks[i])
	}
	return items, total, nil
}

// Board returns every task of the project grouped into its columns
func (s *TaskService) Board(ctx context.Context, tenantID, projectID uuid.UUID) (*BoardResponse, error) {
	if err := s.checkProject(ctx, tenantID, projectID); err != nil {
		return nil, err
	}

	var all []project.Task
	for page := 1; ; page++ {
		filter := project.TaskFilter{Filter: shared.Filter{Page: page, PageSize: boardPageSize}}
		tasks, total, err := s.tasks.FindByProject(ctx, tenantID, projectID, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, tasks...)
		if len(tasks) < boardPageSize || int64(len(all)) >= total {
			break
		}
	}
	return ToBoardResponse(projectID, project.NewBoard(all)), nil
}

// Update edits a task's fields. Status and position change through Move.
func (s *TaskService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateTaskRequest) (*TaskResponse, error) {
	task, err := s.tasks.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if req.AssigneeID != nil && *req.AssigneeID != uuid.Nil {
		p, err := s.projects.FindByID(ctx, tenantID, task.ProjectID)
		if err != nil {
			return nil, err
		}
		if err := checkAssignee(p, req.AssigneeID); err != nil {
			return nil, err
		}
	}

	if err := task.Update(project.TaskDetails{
		Title:       req.Title,
		Description: req.Description,
		Priority:    parsePriority(req.Priority),
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
	}); err != nil {
		return nil, err
	}
	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, err
	}
	return ToTaskResponse(task), nil
}

// Move places a task in a column. Without a position it goes to the end.
func (s *TaskService) Move(ctx context.Context, tenantID, id uuid.UUID, req MoveTaskRequest) (*TaskResponse, error) {
	task, err := s.tasks.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	status := parseTaskStatus(req.Status)
	var position int
	if req.Position != nil {
		position = *req.Position
	} else if status == task.Status {
		position = task.Position
	} else {
		position, err = s.tasks.NextPosition(ctx, tenantID, task.ProjectID, status)
		if err != nil {
			return nil, err
		}
	}

	if err := task.Move(status, position); err != nil {
		return nil, err
	}
	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, err
	}
	return ToTaskResponse(task), nil
}

// Delete removes a task. Timesheet entries that referenced it keep their hours.
func (s *TaskService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.tasks.Delete(ctx, tenantID, id)
}

func (s *TaskService) checkProject(ctx context.Context, tenantID, projectID uuid.UUID) error {
	exists, err := s.projects.Exists(ctx, tenantID, projectID)
	if err != nil {
		return err
	}
	if !exists {
		return shared.ErrNotFound.WithMessage("Project not found")
	}
	return nil
}

func checkAssignee(p *project.Project, assigneeID *uuid.UUID) error {
	if assigneeID == nil || *assigneeID == uuid.Nil {
		return nil
	}
	if !p.HasMember(*assigneeID) {
		return ErrAssigneeNotMember
	}
	return nil
}

func parseTaskStatus(s string) project.TaskStatus {
	return project.TaskStatus(strings.ToUpper(strings.TrimSpace(s)))
}

func parsePriority(s string) project.TaskPriority {
	return project.TaskPriority(strings.ToUpper(strings.TrimSpace(s)))
}
