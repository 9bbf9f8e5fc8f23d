package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DocumentFilter narrows document list queries
type DocumentFilter struct {
	shared.Filter
	Kind      DocumentKind
	Status    Status
	ProjectID *uuid.UUID
}

// DocumentRepository persists financial documents with their line items
type DocumentRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*FinancialDocument, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter DocumentFilter) ([]FinancialDocument, int64, error)
	// Save inserts or updates the document and replaces its line items.
	// A number collision returns ErrDuplicateNumber.
	Save(ctx context.Context, doc *FinancialDocument) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	ExistsBySource(ctx context.Context, tenantID, sourceID uuid.UUID, kind DocumentKind) (bool, error)
}

// ExpenseFilter narrows expense list queries
type ExpenseFilter struct {
	shared.Filter
	Status    Status
	Category  ExpenseCategory
	ProjectID *uuid.UUID
}

// ExpenseRepository persists expenses
type ExpenseRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Expense, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter ExpenseFilter) ([]Expense, int64, error)
	Save(ctx context.Context, expense *Expense) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// NumberSequence hands out per-tenant, per-kind, per-year document sequence values.
// Next must be atomic: two concurrent callers never receive the same value.
type NumberSequence interface {
	Next(ctx context.Context, tenantID uuid.UUID, kind DocumentKind, year int) (int64, error)
}

// ProjectTotals is the sum of contributing documents per kind for one project
type ProjectTotals map[DocumentKind]decimal.Decimal

// Get returns the total for kind, zero if absent
func (t ProjectTotals) Get(kind DocumentKind) decimal.Decimal {
	if v, ok := t[kind]; ok {
		return v
	}
	return decimal.Zero
}

// TotalsReader aggregates contributing documents for a project.
// Only documents whose status counts toward the roll-up are summed.
type TotalsReader interface {
	SumByProject(ctx context.Context, tenantID, projectID uuid.UUID) (ProjectTotals, error)
}
