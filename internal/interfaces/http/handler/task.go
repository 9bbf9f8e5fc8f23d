package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appproject "github.com/projledger/backend/internal/application/project"
)

// TaskService is the subset of the task service used over HTTP
type TaskService interface {
	Create(ctx context.Context, tenantID, projectID uuid.UUID, req appproject.CreateTaskRequest) (*appproject.TaskResponse, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*appproject.TaskResponse, error)
	ListByProject(ctx context.Context, tenantID, projectID uuid.UUID, filter appproject.TaskListFilter) ([]appproject.TaskResponse, int64, error)
	Board(ctx context.Context, tenantID, projectID uuid.UUID) (*appproject.BoardResponse, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, req appproject.UpdateTaskRequest) (*appproject.TaskResponse, error)
	Move(ctx context.Context, tenantID, id uuid.UUID, req appproject.MoveTaskRequest) (*appproject.TaskResponse, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// TaskHandler serves project tasks and the kanban board
type TaskHandler struct {
	BaseHandler
	tasks TaskService
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(tasks TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// RegisterRoutes mounts the task routes
func (h *TaskHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/projects/:id/tasks", h.List)
	rg.POST("/projects/:id/tasks", h.Create)
	rg.GET("/projects/:id/board", h.Board)

	g := rg.Group("/tasks")
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.PATCH("/:id/move", h.Move)
}

// List returns a page of a project's tasks
func (h *TaskHandler) List(c *gin.Context) {
	teamID, projectID, ok := h.teamAndID(c)
	if !ok {
		return
	}
	var filter appproject.TaskListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	items, total, err := h.tasks.ListByProject(c.Request.Context(), teamID, projectID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageOrDefault(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, items, total, page, pageSize)
}

// Create adds a task to the project
func (h *TaskHandler) Create(c *gin.Context) {
	teamID, projectID, ok := h.teamAndID(c)
	if !ok {
		return
	}
	var req appproject.CreateTaskRequest
	if !h.BindJSON(c, &req) {
		return
	}
	task, err := h.tasks.Create(c.Request.Context(), teamID, projectID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, task)
}

// Board returns the project's tasks grouped by column
func (h *TaskHandler) Board(c *gin.Context) {
	teamID, projectID, ok := h.teamAndID(c)
	if !ok {
		return
	}
	board, err := h.tasks.Board(c.Request.Context(), teamID, projectID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, board)
}

// Get returns one task
func (h *TaskHandler) Get(c *gin.Context) {
	teamID, id, ok := h.teamAndID(c)
	if !ok {
		return
	}
	task, err := h.tasks.GetByID(c.Request.Context(), teamID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, task)
}

// Update edits a task
func (h *TaskHandler) Update(c *gin.Context) {
	teamID, id, ok := h.teamAndID(c)
	if !ok {
		return
	}
	var req appproject.UpdateTaskRequest
	if !h.BindJSON(c, &req) {
		return
	}
	task, err := h.tasks.Update(c.Request.Context(), teamID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, task)
}

// Move places a task in a board column
func (h *TaskHandler) Move(c *gin.Context) {
	teamID, id, ok := h.teamAndID(c)
	if !ok {
		return
	}
	var req appproject.MoveTaskRequest
	if !h.BindJSON(c, &req) {
		return
	}
	task, err := h.tasks.Move(c.Request.Context(), teamID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, task)
}

// Delete removes a task
func (h *TaskHandler) Delete(c *gin.Context) {
	teamID, id, ok := h.teamAndID(c)
	if !ok {
		return
	}
	if err := h.tasks.Delete(c.Request.Context(), teamID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
