package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/domain/project"
	"github.com/projledger/backend/internal/domain/shared"
	"github.com/projledger/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormTimesheetRepository implements project.TimesheetRepository using GORM
type GormTimesheetRepository struct {
	db *gorm.DB
}

// NewGormTimesheetRepository creates a new GormTimesheetRepository
func NewGormTimesheetRepository(db *gorm.DB) *GormTimesheetRepository {
	return &GormTimesheetRepository{db: db}
}

// FindByID finds a timesheet entry by ID
func (r *GormTimesheetRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*project.TimesheetEntry, error) {
	var model models.TimesheetEntryModel
	if err := conn(ctx, r.db).Scopes(tenantScope(tenantID)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists timesheet entries matching filter and the total match count
func (r *GormTimesheetRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter project.TimesheetFilter) ([]project.TimesheetEntry, int64, error) {
	query := conn(ctx, r.db).Model(&models.TimesheetEntryModel{}).Scopes(tenantScope(tenantID))
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.From != nil {
		query = query.Where("work_date >= ?", project.WorkDay(*filter.From))
	}
	if filter.To != nil {
		query = query.Where("work_date <= ?", project.WorkDay(*filter.To))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.TimesheetEntryModel
	if err := query.Scopes(paginate(filter.Filter, TimesheetSortFields, "work_date")).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	entries := make([]project.TimesheetEntry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries, total, nil
}

// Save inserts or updates a timesheet entry
func (r *GormTimesheetRepository) Save(ctx context.Context, e *project.TimesheetEntry) error {
	model := models.TimesheetEntryModelFromDomain(e)
	db := conn(ctx, r.db)
	result := db.Model(&models.TimesheetEntryModel{}).
		Where("id = ? AND tenant_id = ?", model.ID, model.TenantID).
		Select("*").
		Omit("id", "created_at", "tenant_id", "created_by", "project_id", "user_id").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return db.Create(model).Error
	}
	return nil
}

// Delete removes a timesheet entry
func (r *GormTimesheetRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := conn(ctx, r.db).Scopes(tenantScope(tenantID)).Delete(&models.TimesheetEntryModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// HoursOnDay sums a user's logged hours on day across all projects
func (r *GormTimesheetRepository) HoursOnDay(ctx context.Context, tenantID, userID uuid.UUID, day time.Time, excludeID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := conn(ctx, r.db).Model(&models.TimesheetEntryModel{}).
		Scopes(tenantScope(tenantID)).
		Where("user_id = ? AND work_date = ? AND id <> ?", userID, project.WorkDay(day), excludeID).
		Select("SUM(hours)").
		Row().Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal.Round(2), nil
}

type timesheetSummaryRow struct {
	TotalHours    decimal.NullDecimal
	BillableHours decimal.NullDecimal
	EntryCount    int64
}

// Summarize totals a project's logged and billable hours
func (r *GormTimesheetRepository) Summarize(ctx context.Context, tenantID, projectID uuid.UUID) (*project.TimesheetSummary, error) {
	var row timesheetSummaryRow
	err := conn(ctx, r.db).Model(&models.TimesheetEntryModel{}).
		Scopes(tenantScope(tenantID)).
		Where("project_id = ?", projectID).
		Select("SUM(hours) AS total_hours, " +
			"SUM(CASE WHEN billable THEN hours ELSE 0 END) AS billable_hours, " +
			"COUNT(*) AS entry_count").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &project.TimesheetSummary{
		ProjectID:     projectID,
		TotalHours:    row.TotalHours.Decimal.Round(2),
		BillableHours: row.BillableHours.Decimal.Round(2),
		EntryCount:    row.EntryCount,
	}, nil
}

var _ project.TimesheetRepository = (*GormTimesheetRepository)(nil)
