package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appproject "github.com/projledger/backend/internal/application/project"
)

// TimesheetService is the subset of the timesheet service used over HTTP
type TimesheetService interface {
	Create(ctx context.Context, tenantID, userID uuid.UUID, req appproject.CreateTimesheetRequest) (*appproject.TimesheetResponse, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*appproject.TimesheetResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter appproject.TimesheetListFilter) ([]appproject.TimesheetResponse, int64, error)
	Update(ctx context.Context, tenantID, userID, id uuid.UUID, req appproject.UpdateTimesheetRequest) (*appproject.TimesheetResponse, error)
	Delete(ctx context.Context, tenantID, userID, id uuid.UUID) error
	Summary(ctx context.Context, tenantID, projectID uuid.UUID) (*appproject.TimesheetSummaryResponse, error)
}

// TimesheetHandler serves logged hours
type TimesheetHandler struct {
	BaseHandler
	timesheets TimesheetService
}

// NewTimesheetHandler creates a new TimesheetHandler
func NewTimesheetHandler(timesheets TimesheetService) *TimesheetHandler {
	return &TimesheetHandler{timesheets: timesheets}
}

// RegisterRoutes mounts the timesheet routes
func (h *TimesheetHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/timesheets")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)

	rg.GET("/projects/:id/timesheets/summary", h.Summary)
}

// List returns a page of timesheet entries
func (h *TimesheetHandler) List(c *gin.Context) {
	teamID, _, ok := h.Caller(c)
	if !ok {
		return
	}
	var filter appproject.TimesheetListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	items, total, err := h.timesheets.List(c.Request.Context(), teamID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageOrDefault(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, items, total, page, pageSize)
}

// Create logs hours for the caller
func (h *TimesheetHandler) Create(c *gin.Context) {
	teamID, userID, ok := h.Caller(c)
	if !ok {
		return
	}
	var req appproject.CreateTimesheetRequest
	if !h.BindJSON(c, &req) {
		return
	}
	entry, err := h.timesheets.Create(c.Request.Context(), teamID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// Get returns one timesheet entry
func (h *TimesheetHandler) Get(c *gin.Context) {
	teamID, id, ok := h.teamAndID(c)
	if !ok {
		return
	}
	entry, err := h.timesheets.GetByID(c.Request.Context(), teamID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// Update edits one of the caller's entries
func (h *TimesheetHandler) Update(c *gin.Context) {
	teamID, userID, ok := h.Caller(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req appproject.UpdateTimesheetRequest
	if !h.BindJSON(c, &req) {
		return
	}
	entry, err := h.timesheets.Update(c.Request.Context(), teamID, userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// Delete removes one of the caller's entries
func (h *TimesheetHandler) Delete(c *gin.Context) {
	teamID, userID, ok := h.Caller(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	if err := h.timesheets.Delete(c.Request.Context(), teamID, userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Summary totals the hours logged on a project
func (h *TimesheetHandler) Summary(c *gin.Context) {
	teamID, projectID, ok := h.teamAndID(c)
	if !ok {
		return
	}
	summary, err := h.timesheets.Summary(c.Request.Context(), teamID, projectID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
