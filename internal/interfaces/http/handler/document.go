package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appbilling "github.com/projledger/backend/internal/application/billing"
	"github.com/projledger/backend/internal/application/financials"
	"github.com/projledger/backend/internal/domain/billing"
)

// DocumentService is the subset of the document service used over HTTP
type DocumentService interface {
	Create(ctx context.Context, tenantID, userID uuid.UUID, kind billing.DocumentKind, req appbilling.CreateDocumentRequest) (*appbilling.DocumentResult, error)
	GetByID(ctx context.Context, tenantID uuid.UUID, kind billing.DocumentKind, id uuid.UUID) (*appbilling.DocumentResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, kind billing.DocumentKind, filter appbilling.DocumentListFilter) ([]appbilling.DocumentResponse, int64, error)
	Update(ctx context.Context, tenantID uuid.UUID, kind billing.DocumentKind, id uuid.UUID, req appbilling.UpdateDocumentRequest) (*appbilling.DocumentResult, error)
	ChangeStatus(ctx context.Context, tenantID uuid.UUID, kind billing.DocumentKind, id uuid.UUID, req appbilling.ChangeStatusRequest) (*appbilling.DocumentResult, error)
	Delete(ctx context.Context, tenantID uuid.UUID, kind billing.DocumentKind, id uuid.UUID) (*financials.RollupStatusResponse, error)
	Convert(ctx context.Context, tenantID, userID uuid.UUID, sourceKind billing.DocumentKind, sourceID uuid.UUID, req appbilling.ConvertDocumentRequest) (*appbilling.DocumentResult, error)
}

// documentRoutes maps each document kind to its collection path and,
// where the kind converts, the sub-resource that performs the conversion
var documentRoutes = []struct {
	kind    billing.DocumentKind
	path    string
	convert string
}{
	{billing.KindSalesOrder, "/sales-orders", "/:id/invoice"},
	{billing.KindInvoice, "/invoices", ""},
	{billing.KindPurchaseOrder, "/purchase-orders", "/:id/bill"},
	{billing.KindVendorBill, "/vendor-bills", ""},
}

// DocumentHandler serves one kind of line-itemised financial document
type DocumentHandler struct {
	BaseHandler
	kind      billing.DocumentKind
	documents DocumentService
}

// NewDocumentHandler creates a handler for one document kind
func NewDocumentHandler(kind billing.DocumentKind, documents DocumentService) *DocumentHandler {
	return &DocumentHandler{kind: kind, documents: documents}
}

// DocumentRegistrars returns a registrar per document kind
func DocumentRegistrars(documents DocumentService) []*DocumentHandler {
	out := make([]*DocumentHandler, len(documentRoutes))
	for i, r := range documentRoutes {
		out[i] = NewDocumentHandler(r.kind, documents)
	}
	return out
}

// RegisterRoutes mounts the routes for the handler's kind
func (h *DocumentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	for _, r := range documentRoutes {
		if r.kind != h.kind {
			continue
		}
		g := rg.Group(r.path)
		g.GET("", h.List)
		g.POST("", h.Create)
		g.GET("/:id", h.Get)
		g.PUT("/:id", h.Update)
		g.DELETE("/:id", h.Delete)
		g.PATCH("/:id/status", h.ChangeStatus)
		if r.convert != "" {
			g.POST(r.convert, h.Convert)
		}
	}
}

// List returns a page of documents
func (h *DocumentHandler) List(c *gin.Context) {
	teamID, _, ok := h.Caller(c)
	if !ok {
		return
	}
	var filter appbilling.DocumentListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	items, total, err := h.documents.List(c.Request.Context(), teamID, h.kind, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageOrDefault(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, items, total, page, pageSize)
}

// Create saves a new document and rolls up its project
func (h *DocumentHandler) Create(c *gin.Context) {
	teamID, userID, ok := h.Caller(c)
	if !ok {
		return
	}
	var req appbilling.CreateDocumentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.documents.Create(c.Request.Context(), teamID, userID, h.kind, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Get returns one document
func (h *DocumentHandler) Get(c *gin.Context) {
	teamID, id, ok := h.teamAndID(c)
	if !ok {
		return
	}
	doc, err := h.documents.GetByID(c.Request.Context(), teamID, h.kind, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// Update replaces a draft document's fields and lines
func (h *DocumentHandler) Update(c *gin.Context) {
	teamID, id, ok := h.teamAndID(c)
	if !ok {
		return
	}
	var req appbilling.UpdateDocumentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.documents.Update(c.Request.Context(), teamID, h.kind, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ChangeStatus moves a document to another status
func (h *DocumentHandler) ChangeStatus(c *gin.Context) {
	teamID, id, ok := h.teamAndID(c)
	if !ok {
		return
	}
	var req appbilling.ChangeStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.documents.ChangeStatus(c.Request.Context(), teamID, h.kind, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Delete removes a document and reports the roll-up outcome
func (h *DocumentHandler) Delete(c *gin.Context) {
	teamID, id, ok := h.teamAndID(c)
	if !ok {
		return
	}
	status, err := h.documents.Delete(c.Request.Context(), teamID, h.kind, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"financials": status})
}

// Convert invoices a sales order or bills a purchase order
func (h *DocumentHandler) Convert(c *gin.Context) {
	teamID, userID, ok := h.Caller(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req appbilling.ConvertDocumentRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}
	result, err := h.documents.Convert(c.Request.Context(), teamID, userID, h.kind, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}
