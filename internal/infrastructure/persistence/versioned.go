package persistence

import (
	"slices"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/domain/shared"
	"github.com/projledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// immutableColumns are never rewritten when an aggregate row is updated
var immutableColumns = []string{"id", "created_at", "tenant_id", "created_by"}

// saveVersioned writes a team-scoped aggregate row. An existing row is updated
// only when it still holds the version the aggregate was loaded at, and the
// stored version is bumped. A missing row is inserted. A row found under
// another version returns shared.ErrConcurrencyConflict.
//
// On success agg.Version holds the stored version. omit lists extra columns
// and associations the update must leave alone.
func saveVersioned(tx *gorm.DB, table, row any, agg *models.AggregateModel, tenantID uuid.UUID, omit ...string) error {
	loaded := agg.Version
	agg.Version = loaded + 1

	result := tx.Model(table).
		Where("id = ? AND tenant_id = ? AND version = ?", agg.ID, tenantID, loaded).
		Select("*").
		Omit(slices.Concat(immutableColumns, omit)...).
		Updates(row)
	if result.Error != nil {
		agg.Version = loaded
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	agg.Version = loaded
	var existing int64
	if err := tx.Model(table).Where("id = ?", agg.ID).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return shared.ErrConcurrencyConflict
	}
	return tx.Omit(clause.Associations).Create(row).Error
}
