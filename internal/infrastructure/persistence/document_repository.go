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

// GormDocumentRepository implements billing.DocumentRepository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

func preloadLines(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// FindByID finds a document with its lines
func (r *GormDocumentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*billing.FinancialDocument, error) {
	var model models.DocumentModel
	err := conn(ctx, r.db).
		Scopes(tenantScope(tenantID)).
		Preload("Lines", preloadLines).
		First(&model, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists documents matching filter and the total match count
func (r *GormDocumentRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter billing.DocumentFilter) ([]billing.FinancialDocument, int64, error) {
	query := conn(ctx, r.db).Model(&models.DocumentModel{}).Scopes(tenantScope(tenantID))
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("(LOWER(number) LIKE ? ESCAPE '\\' OR LOWER(party_name) LIKE ? ESCAPE '\\')", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.DocumentModel
	if err := query.
		Scopes(paginate(filter.Filter, DocumentSortFields, "created_at")).
		Preload("Lines", preloadLines).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	docs := make([]billing.FinancialDocument, len(rows))
	for i := range rows {
		docs[i] = *rows[i].ToDomain()
	}
	return docs, total, nil
}

// Save inserts or updates the document and replaces its line items.
// An update against a newer stored version returns shared.ErrConcurrencyConflict.
func (r *GormDocumentRepository) Save(ctx context.Context, doc *billing.FinancialDocument) error {
	model := models.DocumentModelFromDomain(doc)
	err := inTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := saveVersioned(tx, &models.DocumentModel{}, model, &model.AggregateModel, model.TenantID, "kind", "Lines"); err != nil {
			return err
		}

		if err := tx.Where("document_id = ?", model.ID).Delete(&models.DocumentLineModel{}).Error; err != nil {
			return err
		}
		if len(model.Lines) > 0 {
			return tx.Create(&model.Lines).Error
		}
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return r.duplicateCause(ctx, model)
	}
	if err == nil {
		doc.Version = model.Version
	}
	return err
}

// duplicateCause tells a second live conversion of the same order apart from
// a number collision; both surface as a unique violation
func (r *GormDocumentRepository) duplicateCause(ctx context.Context, model *models.DocumentModel) error {
	if model.SourceDocumentID == nil {
		return billing.ErrDuplicateNumber
	}
	var live int64
	err := conn(ctx, r.db).Model(&models.DocumentModel{}).
		Scopes(tenantScope(model.TenantID)).
		Where("source_document_id = ? AND id <> ? AND status <> ?", *model.SourceDocumentID, model.ID, billing.StatusCancelled).
		Count(&live).Error
	if err == nil && live > 0 {
		return billing.ErrAlreadyConverted
	}
	return billing.ErrDuplicateNumber
}

// Delete removes the document and its lines
func (r *GormDocumentRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return inTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&models.DocumentLineModel{}).Error; err != nil {
			return err
		}
		result := tx.Scopes(tenantScope(tenantID)).Delete(&models.DocumentModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// ExistsBySource reports whether a non-cancelled document of kind was created from sourceID
func (r *GormDocumentRepository) ExistsBySource(ctx context.Context, tenantID, sourceID uuid.UUID, kind billing.DocumentKind) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.DocumentModel{}).
		Scopes(tenantScope(tenantID)).
		Where("source_document_id = ? AND kind = ? AND status <> ?", sourceID, kind, billing.StatusCancelled).
		Count(&count).Error
	return count > 0, err
}

var _ billing.DocumentRepository = (*GormDocumentRepository)(nil)
