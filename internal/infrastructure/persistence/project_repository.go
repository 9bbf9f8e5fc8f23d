package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/domain/project"
	"github.com/projledger/backend/internal/domain/shared"
	"github.com/projledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProjectRepository implements project.Repository using GORM
type GormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository creates a new GormProjectRepository
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

// FindByID finds a project with its member list
func (r *GormProjectRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*project.Project, error) {
	var model models.ProjectModel
	if err := conn(ctx, r.db).
		Scopes(tenantScope(tenantID)).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate loads the project under a row lock. PostgreSQL takes
// SELECT ... FOR UPDATE; SQLite already serializes writers per database.
func (r *GormProjectRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*project.Project, error) {
	db := conn(ctx, r.db)
	query := db.Scopes(tenantScope(tenantID))
	if db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var model models.ProjectModel
	if err := query.First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	if err := db.Where("project_id = ?", id).Order("created_at ASC").Find(&model.Members).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists projects matching filter and the total match count
func (r *GormProjectRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter project.Filter) ([]project.Project, int64, error) {
	db := conn(ctx, r.db)
	query := db.Model(&models.ProjectModel{}).Scopes(tenantScope(tenantID))
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.MemberID != nil {
		query = query.Where("id IN (?)", db.Model(&models.ProjectMemberModel{}).
			Select("project_id").Where("user_id = ?", *filter.MemberID))
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\')", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ProjectModel
	if err := query.
		Scopes(paginate(filter.Filter, ProjectSortFields, "created_at")).
		Preload("Members").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	projects := make([]project.Project, len(rows))
	for i := range rows {
		projects[i] = *rows[i].ToDomain()
	}
	return projects, total, nil
}

// Save inserts or updates the project and replaces its member list.
// The roll-up columns are written only on insert; use UpdateFinancials afterwards.
// A copy loaded before a roll-up or another edit returns shared.ErrConcurrencyConflict.
func (r *GormProjectRepository) Save(ctx context.Context, p *project.Project) error {
	model := models.ProjectModelFromDomain(p)
	err := inTx(ctx, r.db, func(tx *gorm.DB) error {
		err := saveVersioned(tx, &models.ProjectModel{}, model, &model.AggregateModel, model.TenantID, "Members",
			"revenue", "cost", "profit", "committed_revenue", "committed_cost", "financials_updated_at")
		if err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", model.ID).Delete(&models.ProjectMemberModel{}).Error; err != nil {
			return err
		}
		if len(model.Members) > 0 {
			return tx.Create(&model.Members).Error
		}
		return nil
	})
	if err == nil {
		p.Version = model.Version
	}
	return err
}

// UpdateFinancials writes the roll-up columns and the new version
func (r *GormProjectRepository) UpdateFinancials(ctx context.Context, p *project.Project) error {
	f := p.Financials
	result := conn(ctx, r.db).Model(&models.ProjectModel{}).
		Scopes(tenantScope(p.TenantID)).
		Where("id = ?", p.ID).
		Updates(map[string]any{
			"revenue":               f.Revenue,
			"cost":                  f.Cost,
			"profit":                f.Profit,
			"committed_revenue":     f.CommittedRevenue,
			"committed_cost":        f.CommittedCost,
			"financials_updated_at": f.UpdatedAt,
			"version":               p.Version,
			"updated_at":            time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes the project with its members, tasks and timesheets.
// Financial documents and expenses are kept and detached from the project.
func (r *GormProjectRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return inTx(ctx, r.db, func(tx *gorm.DB) error {
		detach := map[string]any{"project_id": nil}
		steps := []func() error{
			func() error {
				return tx.Model(&models.DocumentModel{}).Scopes(tenantScope(tenantID)).Where("project_id = ?", id).Updates(detach).Error
			},
			func() error {
				return tx.Model(&models.ExpenseModel{}).Scopes(tenantScope(tenantID)).Where("project_id = ?", id).Updates(detach).Error
			},
			func() error {
				return tx.Scopes(tenantScope(tenantID)).Where("project_id = ?", id).Delete(&models.TimesheetEntryModel{}).Error
			},
			func() error {
				return tx.Scopes(tenantScope(tenantID)).Where("project_id = ?", id).Delete(&models.TaskModel{}).Error
			},
			func() error {
				return tx.Where("project_id = ?", id).Delete(&models.ProjectMemberModel{}).Error
			},
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return err
			}
		}

		result := tx.Scopes(tenantScope(tenantID)).Delete(&models.ProjectModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Exists reports whether the project exists in the team
func (r *GormProjectRepository) Exists(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.ProjectModel{}).
		Scopes(tenantScope(tenantID)).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

var _ project.Repository = (*GormProjectRepository)(nil)
