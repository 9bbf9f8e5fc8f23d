package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/domain/billing"
	"github.com/projledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ExpenseModel is the persistence model for the Expense aggregate.
type ExpenseModel struct {
	AggregateModel
	TenantID    uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex:idx_expenses_tenant_number,priority:1;index:idx_expenses_rollup,priority:1"`
	CreatedBy   *uuid.UUID              `gorm:"type:uuid"`
	Number      string                  `gorm:"type:varchar(50);not null;uniqueIndex:idx_expenses_tenant_number,priority:2"`
	Amount      decimal.Decimal         `gorm:"type:decimal(18,2);not null"`
	Category    billing.ExpenseCategory `gorm:"type:varchar(20);not null"`
	Description string                  `gorm:"type:text"`
	ExpenseDate time.Time               `gorm:"not null"`
	ProjectID   *uuid.UUID              `gorm:"type:uuid;index:idx_expenses_rollup,priority:2"`
	Status      billing.Status          `gorm:"type:varchar(20);not null;default:'DRAFT'"`
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToDomain converts the persistence model to a domain Expense.
func (m *ExpenseModel) ToDomain() *billing.Expense {
	return &billing.Expense{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: m.ToDomainAggregateRoot(),
			TenantID:          m.TenantID,
			CreatedBy:         m.CreatedBy,
		},
		Number:              m.Number,
		Amount:              m.Amount,
		Category:            m.Category,
		Description:         m.Description,
		ExpenseDate:         m.ExpenseDate,
		ProjectID:           m.ProjectID,
		Status:              m.Status,
	}
}

// ExpenseModelFromDomain creates a persistence model from a domain Expense.
func ExpenseModelFromDomain(e *billing.Expense) *ExpenseModel {
	m := &ExpenseModel{
		Number:      e.Number,
		Amount:      e.Amount,
		Category:    e.Category,
		Description: e.Description,
		ExpenseDate: e.ExpenseDate,
		ProjectID:   e.ProjectID,
		Status:      e.Status,
		TenantID:    e.TenantID,
		CreatedBy:   e.CreatedBy,
	}
	m.FromDomainAggregateRoot(e.BaseAggregateRoot)
	return m
}
