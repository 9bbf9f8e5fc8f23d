package billing

import (
	"github.com/google/uuid"
	"github.com/projledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type constants
const (
	EventTypeDocumentCreated       = "FinancialDocumentCreated"
	EventTypeDocumentStatusChanged = "FinancialDocumentStatusChanged"
	EventTypeDocumentDeleted       = "FinancialDocumentDeleted"
	EventTypeExpenseStatusChanged  = "ExpenseStatusChanged"
)

// DocumentCreatedEvent is raised when a document is created
type DocumentCreatedEvent struct {
	shared.BaseDomainEvent
	Kind      DocumentKind    `json:"kind"`
	ProjectID *uuid.UUID      `json:"project_id,omitempty"`
	Total     decimal.Decimal `json:"total"`
}

// NewDocumentCreatedEvent creates a new DocumentCreatedEvent
func NewDocumentCreatedEvent(d *FinancialDocument) *DocumentCreatedEvent {
	return &DocumentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentCreated, AggregateTypeFinancialDocument, d.ID, d.TenantID),
		Kind:            d.Kind,
		ProjectID:       d.ProjectID,
		Total:           d.Total,
	}
}

// DocumentStatusChangedEvent is raised on every status change
type DocumentStatusChangedEvent struct {
	shared.BaseDomainEvent
	Kind      DocumentKind `json:"kind"`
	Number    string       `json:"number"`
	From      Status       `json:"from"`
	To        Status       `json:"to"`
	ProjectID *uuid.UUID   `json:"project_id,omitempty"`
}

// NewDocumentStatusChangedEvent creates a new DocumentStatusChangedEvent
func NewDocumentStatusChangedEvent(d *FinancialDocument, from Status) *DocumentStatusChangedEvent {
	return &DocumentStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentStatusChanged, AggregateTypeFinancialDocument, d.ID, d.TenantID),
		Kind:            d.Kind,
		Number:          d.Number,
		From:            from,
		To:              d.Status,
		ProjectID:       d.ProjectID,
	}
}

// DocumentDeletedEvent is raised after a hard delete
type DocumentDeletedEvent struct {
	shared.BaseDomainEvent
	Kind      DocumentKind `json:"kind"`
	Number    string       `json:"number"`
	ProjectID *uuid.UUID   `json:"project_id,omitempty"`
}

// NewDocumentDeletedEvent creates a new DocumentDeletedEvent
func NewDocumentDeletedEvent(tenantID, id uuid.UUID, kind DocumentKind, number string, projectID *uuid.UUID) *DocumentDeletedEvent {
	return &DocumentDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentDeleted, AggregateTypeFinancialDocument, id, tenantID),
		Kind:            kind,
		Number:          number,
		ProjectID:       projectID,
	}
}

// ExpenseStatusChangedEvent is raised when an expense moves through its workflow
type ExpenseStatusChangedEvent struct {
	shared.BaseDomainEvent
	From      Status          `json:"from"`
	To        Status          `json:"to"`
	Amount    decimal.Decimal `json:"amount"`
	ProjectID *uuid.UUID      `json:"project_id,omitempty"`
}

// NewExpenseStatusChangedEvent creates a new ExpenseStatusChangedEvent
func NewExpenseStatusChangedEvent(e *Expense, from Status) *ExpenseStatusChangedEvent {
	return &ExpenseStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExpenseStatusChanged, AggregateTypeExpense, e.ID, e.TenantID),
		From:            from,
		To:              e.Status,
		Amount:          e.Amount,
		ProjectID:       e.ProjectID,
	}
}
