package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/domain/project"
	"github.com/projledger/backend/internal/domain/shared"
	"github.com/projledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTaskRepository implements project.TaskRepository using GORM
type GormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository creates a new GormTaskRepository
func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

// FindByID finds a task by ID
func (r *GormTaskRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*project.Task, error) {
	var model models.TaskModel
	if err := conn(ctx, r.db).Scopes(tenantScope(tenantID)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByProject lists a project's tasks. Without an explicit order the
// board order (status, position) is used.
func (r *GormTaskRepository) FindByProject(ctx context.Context, tenantID, projectID uuid.UUID, filter project.TaskFilter) ([]project.Task, int64, error) {
	query := conn(ctx, r.db).Model(&models.TaskModel{}).
		Scopes(tenantScope(tenantID)).
		Where("project_id = ?", projectID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.AssigneeID != nil {
		query = query.Where("assignee_id = ?", *filter.AssigneeID)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(title) LIKE ? ESCAPE '\\'", likePattern(filter.Search))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.OrderBy == "" {
		filter.OrderBy = "position"
		filter.OrderDir = "asc"
		query = query.Order("status ASC")
	}
	var rows []models.TaskModel
	if err := query.Scopes(paginate(filter.Filter, TaskSortFields, "position")).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	tasks := make([]project.Task, len(rows))
	for i := range rows {
		tasks[i] = *rows[i].ToDomain()
	}
	return tasks, total, nil
}

// Save inserts or updates a task
func (r *GormTaskRepository) Save(ctx context.Context, t *project.Task) error {
	model := models.TaskModelFromDomain(t)
	if err := saveVersioned(conn(ctx, r.db), &models.TaskModel{}, model, &model.AggregateModel, model.TenantID, "project_id"); err != nil {
		return err
	}
	t.Version = model.Version
	return nil
}

// Delete removes a task. Timesheet entries referencing it keep their hours.
func (r *GormTaskRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return inTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Model(&models.TimesheetEntryModel{}).
			Scopes(tenantScope(tenantID)).
			Where("task_id = ?", id).
			Update("task_id", nil).Error; err != nil {
			return err
		}
		result := tx.Scopes(tenantScope(tenantID)).Delete(&models.TaskModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// NextPosition returns the position after the last task in a board column
func (r *GormTaskRepository) NextPosition(ctx context.Context, tenantID, projectID uuid.UUID, status project.TaskStatus) (int, error) {
	var last int
	err := conn(ctx, r.db).Model(&models.TaskModel{}).
		Scopes(tenantScope(tenantID)).
		Where("project_id = ? AND status = ?", projectID, status).
		Select("COALESCE(MAX(position), -1)").
		Row().Scan(&last)
	if err != nil {
		return 0, err
	}
	return last + 1, nil
}

var _ project.TaskRepository = (*GormTaskRepository)(nil)
