package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/application/financials"
	"github.com/projledger/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// ==================== Financial document DTOs ====================

// LineRequest is one priced line of a document
type LineRequest struct {
	Description string          `json:"description" binding:"required,min=1,max=500"`
	Quantity    decimal.Decimal `json:"quantity" binding:"decimal_gte1"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"decimal_gte0"`
}

// CreateDocumentRequest represents a request to create a sales order, invoice,
// purchase order or vendor bill. CustomerName applies to sales orders and
// invoices, VendorName to purchase orders and vendor bills.
type CreateDocumentRequest struct {
	Number       string          `json:"number" binding:"omitempty,max=50"`
	CustomerName string          `json:"customer_name" binding:"omitempty,max=200"`
	VendorName   string          `json:"vendor_name" binding:"omitempty,max=200"`
	ProjectID    *uuid.UUID      `json:"project_id"`
	IssueDate    *time.Time      `json:"issue_date"`
	DueDate      *time.Time      `json:"due_date"`
	Lines        []LineRequest   `json:"lines" binding:"required,min=1,dive"`
	TaxRate      decimal.Decimal `json:"tax_rate" binding:"tax_rate"`
	Notes        string          `json:"notes" binding:"omitempty,max=2000"`
}

// UpdateDocumentRequest replaces the editable fields and line list of a draft document
type UpdateDocumentRequest struct {
	CustomerName string          `json:"customer_name" binding:"omitempty,max=200"`
	VendorName   string          `json:"vendor_name" binding:"omitempty,max=200"`
	ProjectID    *uuid.UUID      `json:"project_id"`
	IssueDate    *time.Time      `json:"issue_date"`
	DueDate      *time.Time      `json:"due_date"`
	Lines        []LineRequest   `json:"lines" binding:"required,min=1,dive"`
	TaxRate      decimal.Decimal `json:"tax_rate" binding:"tax_rate"`
	Notes        string          `json:"notes" binding:"omitempty,max=2000"`
}

// ChangeStatusRequest represents a request to move a document or expense to another status
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ConvertDocumentRequest represents a request to invoice a sales order or bill a purchase order
type ConvertDocumentRequest struct {
	DueDate *time.Time `json:"due_date"`
}

// DocumentListFilter represents filter options for document lists
type DocumentListFilter struct {
	Search    string `form:"search"`
	Status    string `form:"status"`
	ProjectID string `form:"project_id" binding:"omitempty,uuid"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string `form:"order_by"`
	OrderDir  string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// LineResponse represents a line item in API responses
type LineResponse struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
	Position    int             `json:"position"`
}

// DocumentResponse represents a financial document in API responses
type DocumentResponse struct {
	ID               uuid.UUID       `json:"id"`
	TenantID         uuid.UUID       `json:"tenant_id"`
	Kind             string          `json:"kind"`
	Number           string          `json:"number"`
	CustomerName     string          `json:"customer_name,omitempty"`
	VendorName       string          `json:"vendor_name,omitempty"`
	ProjectID        *uuid.UUID      `json:"project_id,omitempty"`
	SourceDocumentID *uuid.UUID      `json:"source_document_id,omitempty"`
	IssueDate        time.Time       `json:"issue_date"`
	DueDate          *time.Time      `json:"due_date,omitempty"`
	Lines            []LineResponse  `json:"lines"`
	TaxRate          decimal.Decimal `json:"tax_rate"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	TaxAmount        decimal.Decimal `json:"tax_amount"`
	Total            decimal.Decimal `json:"total"`
	Status           string          `json:"status"`
	Notes            string          `json:"notes"`
	CreatedBy        *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Version          int             `json:"version"`
}

// DocumentResult is the response of a document mutation: the saved document
// plus whether the project roll-up succeeded
type DocumentResult struct {
	Document   *DocumentResponse                `json:"document"`
	Financials *financials.RollupStatusResponse `json:"financials"`
}

// ==================== Expense DTOs ====================

// CreateExpenseRequest represents a request to record an expense
type CreateExpenseRequest struct {
	Number      string          `json:"number" binding:"omitempty,max=50"`
	Amount      decimal.Decimal `json:"amount" binding:"decimal_gt0"`
	Category    string          `json:"category" binding:"required"`
	Description string          `json:"description" binding:"omitempty,max=1000"`
	ExpenseDate *time.Time      `json:"expense_date"`
	ProjectID   *uuid.UUID      `json:"project_id"`
}

// UpdateExpenseRequest represents a request to edit an expense
type UpdateExpenseRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"decimal_gt0"`
	Category    string          `json:"category" binding:"required"`
	Description string          `json:"description" binding:"omitempty,max=1000"`
	ExpenseDate *time.Time      `json:"expense_date"`
	ProjectID   *uuid.UUID      `json:"project_id"`
}

// ExpenseListFilter represents filter options for the expense list
type ExpenseListFilter struct {
	Search    string `form:"search"`
	Status    string `form:"status"`
	Category  string `form:"category"`
	ProjectID string `form:"project_id" binding:"omitempty,uuid"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string `form:"order_by"`
	OrderDir  string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID          uuid.UUID       `json:"id"`
	TenantID    uuid.UUID       `json:"tenant_id"`
	Number      string          `json:"number"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	ExpenseDate time.Time       `json:"expense_date"`
	ProjectID   *uuid.UUID      `json:"project_id,omitempty"`
	Status      string          `json:"status"`
	CreatedBy   *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Version     int             `json:"version"`
}

// ExpenseResult is the response of an expense mutation
type ExpenseResult struct {
	Expense    *ExpenseResponse                 `json:"expense"`
	Financials *financials.RollupStatusResponse `json:"financials"`
}

// ==================== Conversions ====================

// ToDocumentResponse converts a domain document to a response
func ToDocumentResponse(d *billing.FinancialDocument) *DocumentResponse {
	lines := make([]LineResponse, len(d.Lines))
	for i, l := range d.Lines {
		lines[i] = LineResponse{
			ID:          l.ID,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Amount:      l.Amount,
			Position:    l.Position,
		}
	}

	resp := &DocumentResponse{
		ID:               d.ID,
		TenantID:         d.TenantID,
		Kind:             d.Kind.String(),
		Number:           d.Number,
		ProjectID:        d.ProjectID,
		SourceDocumentID: d.SourceDocumentID,
		IssueDate:        d.IssueDate,
		DueDate:          d.DueDate,
		Lines:            lines,
		TaxRate:          d.TaxRate,
		Subtotal:         d.Subtotal,
		TaxAmount:        d.TaxAmount,
		Total:            d.Total,
		Status:           d.Status.String(),
		Notes:            d.Notes,
		CreatedBy:        d.CreatedBy,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
		Version:          d.Version,
	}
	if d.Kind.IsCustomerFacing() {
		resp.CustomerName = d.PartyName
	} else {
		resp.VendorName = d.PartyName
	}
	return resp
}

// ToExpenseResponse converts a domain expense to a response
func ToExpenseResponse(e *billing.Expense) *ExpenseResponse {
	return &ExpenseResponse{
		ID:          e.ID,
		TenantID:    e.TenantID,
		Number:      e.Number,
		Amount:      e.Amount,
		Category:    string(e.Category),
		Description: e.Description,
		ExpenseDate: e.ExpenseDate,
		ProjectID:   e.ProjectID,
		Status:      e.Status.String(),
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
		Version:     e.Version,
	}
}

func lineInputs(lines []LineRequest) []billing.LineInput {
	inputs := make([]billing.LineInput, len(lines))
	for i, l := range lines {
		inputs[i] = billing.LineInput{
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		}
	}
	return inputs
}

func partyName(kind billing.DocumentKind, customer, vendor string) string {
	if kind.IsCustomerFacing() {
		return customer
	}
	return vendor
}

func dateOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
