package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appbilling "github.com/projledger/backend/internal/application/billing"
	"github.com/projledger/backend/internal/application/financials"
)

// ExpenseService is the subset of the expense service used over HTTP
type ExpenseService interface {
	Create(ctx context.Context, tenantID, userID uuid.UUID, req appbilling.CreateExpenseRequest) (*appbilling.ExpenseResult, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*appbilling.ExpenseResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter appbilling.ExpenseListFilter) ([]appbilling.ExpenseResponse, int64, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, req appbilling.UpdateExpenseRequest) (*appbilling.ExpenseResult, error)
	ChangeStatus(ctx context.Context, tenantID, id uuid.UUID, req appbilling.ChangeStatusRequest) (*appbilling.ExpenseResult, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) (*financials.RollupStatusResponse, error)
}

// ExpenseHandler serves expenses
type ExpenseHandler struct {
	BaseHandler
	expenses ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenses ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses}
}

// RegisterRoutes mounts the expense routes
func (h *ExpenseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/expenses")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.PATCH("/:id/status", h.ChangeStatus)
}

// List returns a page of expenses
func (h *ExpenseHandler) List(c *gin.Context) {
	teamID, _, ok := h.Caller(c)
	if !ok {
		return
	}
	var filter appbilling.ExpenseListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	items, total, err := h.expenses.List(c.Request.Context(), teamID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageOrDefault(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, items, total, page, pageSize)
}

// Create records an expense
func (h *ExpenseHandler) Create(c *gin.Context) {
	teamID, userID, ok := h.Caller(c)
	if !ok {
		return
	}
	var req appbilling.CreateExpenseRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.expenses.Create(c.Request.Context(), teamID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Get returns one expense
func (h *ExpenseHandler) Get(c *gin.Context) {
	teamID, id, ok := h.teamAndID(c)
	if !ok {
		return
	}
	expense, err := h.expenses.GetByID(c.Request.Context(), teamID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// Update edits an expense
func (h *ExpenseHandler) Update(c *gin.Context) {
	teamID, id, ok := h.teamAndID(c)
	if !ok {
		return
	}
	var req appbilling.UpdateExpenseRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.expenses.Update(c.Request.Context(), teamID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ChangeStatus moves an expense to another status
func (h *ExpenseHandler) ChangeStatus(c *gin.Context) {
	teamID, id, ok := h.teamAndID(c)
	if !ok {
		return
	}
	var req appbilling.ChangeStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.expenses.ChangeStatus(c.Request.Context(), teamID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Delete removes an expense and reports the roll-up outcome
func (h *ExpenseHandler) Delete(c *gin.Context) {
	teamID, id, ok := h.teamAndID(c)
	if !ok {
		return
	}
	status, err := h.expenses.Delete(c.Request.Context(), teamID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"financials": status})
}
