package project

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/application/financials"
	"github.com/projledger/backend/internal/domain/billing"
	"github.com/projledger/backend/internal/domain/project"
	"github.com/projledger/backend/internal/domain/shared"
	"github.com/projledger/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// FinancialsRollup reads and recomputes project figures
type FinancialsRollup interface {
	RecomputeProjectFinancials(ctx context.Context, tenantID uuid.UUID, projectID *uuid.UUID, kind billing.DocumentKind) financials.RollupResult
	GetFinancials(ctx context.Context, tenantID, projectID uuid.UUID) (*financials.ProjectFinancialsResponse, error)
}

// TeamMembership checks that a user belongs to a team
type TeamMembership interface {
	IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error)
}

// ProjectService handles projects and their member lists
type ProjectService struct {
	projects project.Repository
	teams    TeamMembership
	rollup   FinancialsRollup
	logger   *zap.Logger
}

// NewProjectService creates a new ProjectService
func NewProjectService(projects project.Repository, teams TeamMembership, rollup FinancialsRollup, logger *zap.Logger) *ProjectService {
	return &ProjectService{
		projects: projects,
		teams:    teams,
		rollup:   rollup,
		logger:   logger.Named("project"),
	}
}

// Create creates a project owned by the calling user
func (s *ProjectService) Create(ctx context.Context, tenantID, userID uuid.UUID, req CreateProjectRequest) (*ProjectResponse, error) {
	p, err := project.NewProject(tenantID, userID, project.Details{
		Name:        req.Name,
		Description: req.Description,
		Status:      parseProjectStatus(req.Status),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Budget:      req.Budget,
	})
	if err != nil {
		return nil, err
	}
	if err := s.projects.Save(ctx, p); err != nil {
		return nil, err
	}

	logger.Enrich(ctx, s.logger).Info("project created",
		zap.String("project_id", p.ID.String()),
		zap.String("name", p.Name),
	)
	return ToProjectResponse(p), nil
}

// GetByID retrieves a project
func (s *ProjectService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*ProjectResponse, error) {
	p, err := s.projects.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return ToProjectResponse(p), nil
}

// List lists projects with filtering and pagination
func (s *ProjectService) List(ctx context.Context, tenantID uuid.UUID, filter ProjectListFilter) ([]ProjectResponse, int64, error) {
	memberID, err := parseOptionalID(filter.MemberID, "member_id")
	if err != nil {
		return nil, 0, err
	}
	domainFilter := project.Filter{
		Filter:   buildFilter(filter.Search, filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir),
		Status:   parseProjectStatus(filter.Status),
		MemberID: memberID,
	}

	projects, total, err := s.projects.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	items := make([]ProjectResponse, len(projects))
	for i := range projects {
		items[i] = *ToProjectResponse(&projects[i])
	}
	return items, total, nil
}

// Update replaces a project's editable fields
func (s *ProjectService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateProjectRequest) (*ProjectResponse, error) {
	p, err := s.projects.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := p.Update(project.Details{
		Name:        req.Name,
		Description: req.Description,
		Status:      parseProjectStatus(req.Status),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Budget:      req.Budget,
	}); err != nil {
		return nil, err
	}
	if err := s.projects.Save(ctx, p); err != nil {
		return nil, err
	}
	return ToProjectResponse(p), nil
}

// Delete removes a project with its tasks and timesheets. Its documents and
// expenses are kept and detached.
func (s *ProjectService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := s.projects.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	logger.Enrich(ctx, s.logger).Info("project deleted", zap.String("project_id", id.String()))
	return nil
}

// AddMember adds a member of the team to the project
func (s *ProjectService) AddMember(ctx context.Context, tenantID, id uuid.UUID, req AddProjectMemberRequest) (*ProjectResponse, error) {
	p, err := s.projects.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	isMember, err := s.teams.IsMember(ctx, tenantID, req.UserID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, shared.NewDomainError("NOT_A_TEAM_MEMBER", "Only team members can join a project")
	}
	if err := p.AddMember(req.UserID); err != nil {
		return nil, err
	}
	if err := s.projects.Save(ctx, p); err != nil {
		return nil, err
	}
	return ToProjectResponse(p), nil
}

// RemoveMember removes a user from the project. The owner stays.
func (s *ProjectService) RemoveMember(ctx context.Context, tenantID, id, userID uuid.UUID) (*ProjectResponse, error) {
	p, err := s.projects.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := p.RemoveMember(userID); err != nil {
		return nil, err
	}
	if err := s.projects.Save(ctx, p); err != nil {
		return nil, err
	}
	return ToProjectResponse(p), nil
}

// GetFinancials returns the stored figures and a fresh computation
func (s *ProjectService) GetFinancials(ctx context.Context, tenantID, id uuid.UUID) (*financials.ProjectFinancialsResponse, error) {
	return s.rollup.GetFinancials(ctx, tenantID, id)
}

// RecomputeFinancials forces a full roll-up, e.g. after a stale alert
func (s *ProjectService) RecomputeFinancials(ctx context.Context, tenantID, id uuid.UUID) (*RecomputeResponse, error) {
	exists, err := s.projects.Exists(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.ErrNotFound.WithMessage("Project not found")
	}

	result := s.rollup.RecomputeProjectFinancials(ctx, tenantID, &id, financials.TriggerManual)
	resp := &RecomputeResponse{Rollup: financials.ToRollupStatusResponse(result)}
	if result.IsStale() {
		return resp, nil
	}

	figures, err := s.rollup.GetFinancials(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp.Financials = figures
	return resp, nil
}

func parseProjectStatus(s string) project.Status {
	return project.Status(strings.ToUpper(strings.TrimSpace(s)))
}

func buildFilter(search string, page, pageSize int, orderBy, orderDir string) shared.Filter {
	filter := shared.DefaultFilter()
	filter.Search = strings.TrimSpace(search)
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}
	if orderBy != "" {
		filter.OrderBy = orderBy
	}
	if orderDir != "" {
		filter.OrderDir = orderDir
	}
	filter.Normalize()
	return filter
}

func parseOptionalID(s, field string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, shared.ErrInvalidInput.WithMessage(fmt.Sprintf("%s must be a UUID", field))
	}
	return &id, nil
}
