package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/domain/billing"
	"gorm.io/gorm"
)

// nextSequenceSQL increments the counter row in a single statement, creating
// it on first use. Concurrent callers serialize on the row.
const nextSequenceSQL = `INSERT INTO number_sequences (tenant_id, kind, year, last_value, updated_at)
VALUES (?, ?, ?, 1, ?)
ON CONFLICT (tenant_id, kind, year)
DO UPDATE SET last_value = number_sequences.last_value + 1, updated_at = excluded.updated_at
RETURNING last_value`

// GormNumberSequence implements billing.NumberSequence with an upserted counter row
type GormNumberSequence struct {
	db *gorm.DB
}

// NewGormNumberSequence creates a new GormNumberSequence
func NewGormNumberSequence(db *gorm.DB) *GormNumberSequence {
	return &GormNumberSequence{db: db}
}

// Next returns the next sequence value for tenant, kind and year
func (s *GormNumberSequence) Next(ctx context.Context, tenantID uuid.UUID, kind billing.DocumentKind, year int) (int64, error) {
	var value int64
	row := conn(ctx, s.db).Raw(nextSequenceSQL, tenantID, string(kind), year, time.Now().UTC()).Row()
	if err := row.Scan(&value); err != nil {
		return 0, fmt.Errorf("next %s sequence: %w", kind, err)
	}
	return value, nil
}

var _ billing.NumberSequence = (*GormNumberSequence)(nil)
