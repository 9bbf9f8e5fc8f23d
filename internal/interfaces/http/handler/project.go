package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/projledger/backend/internal/application/financials"
	appproject "github.com/projledger/backend/internal/application/project"
)

// ProjectService is the subset of the project service used over HTTP
type ProjectService interface {
	Create(ctx context.Context, tenantID, userID uuid.UUID, req appproject.CreateProjectRequest) (*appproject.ProjectResponse, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*appproject.ProjectResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter appproject.ProjectListFilter) ([]appproject.ProjectResponse, int64, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, req appproject.UpdateProjectRequest) (*appproject.ProjectResponse, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	AddMember(ctx context.Context, tenantID, id uuid.UUID, req appproject.AddProjectMemberRequest) (*appproject.ProjectResponse, error)
	RemoveMember(ctx context.Context, tenantID, id, userID uuid.UUID) (*appproject.ProjectResponse, error)
	GetFinancials(ctx context.Context, tenantID, id uuid.UUID) (*financials.ProjectFinancialsResponse, error)
	RecomputeFinancials(ctx context.Context, tenantID, id uuid.UUID) (*appproject.RecomputeResponse, error)
}

// ProjectHandler serves projects, their members and their financials
type ProjectHandler struct {
	BaseHandler
	projects ProjectService
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(projects ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// RegisterRoutes mounts the project routes
func (h *ProjectHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/projects")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/members", h.AddMember)
	g.DELETE("/:id/members/:userId", h.RemoveMember)
	g.GET("/:id/financials", h.Financials)
	g.POST("/:id/financials/recompute", h.Recompute)
}

// List returns a page of projects
func (h *ProjectHandler) List(c *gin.Context) {
	teamID, _, ok := h.Caller(c)
	if !ok {
		return
	}
	var filter appproject.ProjectListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	items, total, err := h.projects.List(c.Request.Context(), teamID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageOrDefault(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, items, total, page, pageSize)
}

// Create adds a project owned by the caller
func (h *ProjectHandler) Create(c *gin.Context) {
	teamID, userID, ok := h.Caller(c)
	if !ok {
		return
	}
	var req appproject.CreateProjectRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, err := h.projects.Create(c.Request.Context(), teamID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, p)
}

// Get returns one project
func (h *ProjectHandler) Get(c *gin.Context) {
	teamID, id, ok := h.teamAndID(c)
	if !ok {
		return
	}
	p, err := h.projects.GetByID(c.Request.Context(), teamID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Update edits the descriptive fields of a project
func (h *ProjectHandler) Update(c *gin.Context) {
	teamID, id, ok := h.teamAndID(c)
	if !ok {
		return
	}
	var req appproject.UpdateProjectRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, err := h.projects.Update(c.Request.Context(), teamID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Delete removes a project
func (h *ProjectHandler) Delete(c *gin.Context) {
	teamID, id, ok := h.teamAndID(c)
	if !ok {
		return
	}
	if err := h.projects.Delete(c.Request.Context(), teamID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddMember adds a team member to the project
func (h *ProjectHandler) AddMember(c *gin.Context) {
	teamID, id, ok := h.teamAndID(c)
	if !ok {
		return
	}
	var req appproject.AddProjectMemberRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, err := h.projects.AddMember(c.Request.Context(), teamID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// RemoveMember removes a member from the project
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	teamID, id, ok := h.teamAndID(c)
	if !ok {
		return
	}
	userID, ok := h.PathID(c, "userId")
	if !ok {
		return
	}
	p, err := h.projects.RemoveMember(c.Request.Context(), teamID, id, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Financials returns the persisted roll-up next to a fresh computation
func (h *ProjectHandler) Financials(c *gin.Context) {
	teamID, id, ok := h.teamAndID(c)
	if !ok {
		return
	}
	f, err := h.projects.GetFinancials(c.Request.Context(), teamID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, f)
}

// Recompute forces a roll-up of the project figures
func (h *ProjectHandler) Recompute(c *gin.Context) {
	teamID, id, ok := h.teamAndID(c)
	if !ok {
		return
	}
	resp, err := h.projects.RecomputeFinancials(c.Request.Context(), teamID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *BaseHandler) teamAndID(c *gin.Context) (teamID, id uuid.UUID, ok bool) {
	teamID, _, ok = h.Caller(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	id, ok = h.PathID(c, "id")
	return teamID, id, ok
}
