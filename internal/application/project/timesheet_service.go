package project

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/domain/project"
	"github.com/projledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

var (
	// ErrNotProjectMember is returned when a user logs time on a project they are not on
	ErrNotProjectMember = shared.NewDomainError("NOT_A_PROJECT_MEMBER", "Only project members can log time on this project")
	// ErrTaskNotInProject is returned when an entry references a task of another project
	ErrTaskNotInProject = shared.NewDomainError("TASK_NOT_IN_PROJECT", "Task does not belong to this project")
)

// TimesheetService handles timesheet entries
type TimesheetService struct {
	entries  project.TimesheetRepository
	projects project.Repository
	tasks    project.TaskRepository
	tx       shared.Transactor
	logger   *zap.Logger
}

// NewTimesheetService creates a new TimesheetService
func NewTimesheetService(
	entries project.TimesheetRepository,
	projects project.Repository,
	tasks project.TaskRepository,
	tx shared.Transactor,
	logger *zap.Logger,
) *TimesheetService {
	return &TimesheetService{
		entries:  entries,
		projects: projects,
		tasks:    tasks,
		tx:       tx,
		logger:   logger.Named("timesheet"),
	}
}

// Create logs hours for the calling user
func (s *TimesheetService) Create(ctx context.Context, tenantID, userID uuid.UUID, req CreateTimesheetRequest) (*TimesheetResponse, error) {
	p, err := s.projects.FindByID(ctx, tenantID, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if !p.HasMember(userID) {
		return nil, ErrNotProjectMember
	}
	if err := s.checkTask(ctx, tenantID, p.ID, req.TaskID); err != nil {
		return nil, err
	}

	entry, err := project.NewTimesheetEntry(tenantID, p.ID, userID, project.TimesheetDetails{
		TaskID:      req.TaskID,
		WorkDate:    req.WorkDate,
		Hours:       req.Hours,
		Description: req.Description,
		Billable:    req.Billable,
	})
	if err != nil {
		return nil, err
	}
	entry.SetCreatedBy(userID)

	if err := s.saveWithinDailyLimit(ctx, entry, uuid.Nil); err != nil {
		return nil, err
	}
	return ToTimesheetResponse(entry), nil
}

// GetByID retrieves a timesheet entry
func (s *TimesheetService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*TimesheetResponse, error) {
	entry, err := s.entries.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return ToTimesheetResponse(entry), nil
}

// List lists timesheet entries by project, user and date range
func (s *TimesheetService) List(ctx context.Context, tenantID uuid.UUID, filter TimesheetListFilter) ([]TimesheetResponse, int64, error) {
	projectID, err := parseOptionalID(filter.ProjectID, "project_id")
	if err != nil {
		return nil, 0, err
	}
	userID, err := parseOptionalID(filter.UserID, "user_id")
	if err != nil {
		return nil, 0, err
	}
	from, err := parseOptionalDate(filter.From, "from")
	if err != nil {
		return nil, 0, err
	}
	to, err := parseOptionalDate(filter.To, "to")
	if err != nil {
		return nil, 0, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, 0, shared.ErrInvalidInput.WithMessage("to cannot be before from")
	}

	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "work_date"
	}
	domainFilter := project.TimesheetFilter{
		Filter:    buildFilter("", filter.Page, filter.PageSize, orderBy, filter.OrderDir),
		ProjectID: projectID,
		UserID:    userID,
		From:      from,
		To:        to,
	}

	entries, total, err := s.entries.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	items := make([]TimesheetResponse, len(entries))
	for i := range entries {
		items[i] = *ToTimesheetResponse(&entries[i])
	}
	return items, total, nil
}

// Update edits an entry. Only the user who logged it may change it.
func (s *TimesheetService) Update(ctx context.Context, tenantID, userID, id uuid.UUID, req UpdateTimesheetRequest) (*TimesheetResponse, error) {
	entry, err := s.ownedEntry(ctx, tenantID, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkTask(ctx, tenantID, entry.ProjectID, req.TaskID); err != nil {
		return nil, err
	}

	if err := entry.Update(project.TimesheetDetails{
		TaskID:      req.TaskID,
		WorkDate:    req.WorkDate,
		Hours:       req.Hours,
		Description: req.Description,
		Billable:    req.Billable,
	}); err != nil {
		return nil, err
	}
	if err := s.saveWithinDailyLimit(ctx, entry, entry.ID); err != nil {
		return nil, err
	}
	return ToTimesheetResponse(entry), nil
}

// Delete removes an entry. Only the user who logged it may delete it.
func (s *TimesheetService) Delete(ctx context.Context, tenantID, userID, id uuid.UUID) error {
	if _, err := s.ownedEntry(ctx, tenantID, userID, id); err != nil {
		return err
	}
	return s.entries.Delete(ctx, tenantID, id)
}

// Summary totals the hours logged on a project
func (s *TimesheetService) Summary(ctx context.Context, tenantID, projectID uuid.UUID) (*TimesheetSummaryResponse, error) {
	exists, err := s.projects.Exists(ctx, tenantID, projectID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.ErrNotFound.WithMessage("Project not found")
	}
	summary, err := s.entries.Summarize(ctx, tenantID, projectID)
	if err != nil {
		return nil, err
	}
	return ToTimesheetSummaryResponse(summary), nil
}

// saveWithinDailyLimit checks the user's total for the day and saves in one transaction
func (s *TimesheetService) saveWithinDailyLimit(ctx context.Context, entry *project.TimesheetEntry, excludeID uuid.UUID) error {
	return s.tx.Do(ctx, func(ctx context.Context) error {
		logged, err := s.entries.HoursOnDay(ctx, entry.TenantID, entry.UserID, entry.WorkDate, excludeID)
		if err != nil {
			return err
		}
		if err := project.CheckDailyLimit(logged, entry.Hours); err != nil {
			return err
		}
		return s.entries.Save(ctx, entry)
	})
}

func (s *TimesheetService) ownedEntry(ctx context.Context, tenantID, userID, id uuid.UUID) (*project.TimesheetEntry, error) {
	entry, err := s.entries.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if entry.UserID != userID {
		return nil, shared.ErrForbidden.WithMessage("Only the author can change a timesheet entry")
	}
	return entry, nil
}

func (s *TimesheetService) checkTask(ctx context.Context, tenantID, projectID uuid.UUID, taskID *uuid.UUID) error {
	if taskID == nil || *taskID == uuid.Nil {
		return nil
	}
	task, err := s.tasks.FindByID(ctx, tenantID, *taskID)
	if err != nil {
		return err
	}
	if task.ProjectID != projectID {
		return ErrTaskNotInProject
	}
	return nil
}

func parseOptionalDate(s, field string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, shared.ErrInvalidInput.WithMessage(fmt.Sprintf("%s must be a date (YYYY-MM-DD)", field))
	}
	return &t, nil
}
