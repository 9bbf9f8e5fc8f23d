package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/domain/billing"
	"github.com/projledger/backend/internal/domain/shared"
	"github.com/projledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormExpenseRepository implements billing.ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// FindByID finds an expense by ID within a team
func (r *GormExpenseRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*billing.Expense, error) {
	var model models.ExpenseModel
	if err := conn(ctx, r.db).Scopes(tenantScope(tenantID)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists expenses matching filter and the total match count
func (r *GormExpenseRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter billing.ExpenseFilter) ([]billing.Expense, int64, error) {
	query := conn(ctx, r.db).Model(&models.ExpenseModel{}).Scopes(tenantScope(tenantID))
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("(LOWER(number) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\')", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ExpenseModel
	if err := query.Scopes(paginate(filter.Filter, ExpenseSortFields, "expense_date")).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	expenses := make([]billing.Expense, len(rows))
	for i := range rows {
		expenses[i] = *rows[i].ToDomain()
	}
	return expenses, total, nil
}

// Save inserts or updates an expense
func (r *GormExpenseRepository) Save(ctx context.Context, expense *billing.Expense) error {
	model := models.ExpenseModelFromDomain(expense)
	err := inTx(ctx, r.db, func(tx *gorm.DB) error {
		return saveVersioned(tx, &models.ExpenseModel{}, model, &model.AggregateModel, model.TenantID)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return billing.ErrDuplicateNumber
	}
	if err == nil {
		expense.Version = model.Version
	}
	return err
}

// Delete removes an expense
func (r *GormExpenseRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := conn(ctx, r.db).Scopes(tenantScope(tenantID)).Delete(&models.ExpenseModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ billing.ExpenseRepository = (*GormExpenseRepository)(nil)
