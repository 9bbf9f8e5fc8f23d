package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/domain/billing"
	"github.com/projledger/backend/internal/domain/shared"
	"github.com/projledger/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormTotalsReader implements billing.TotalsReader with SUM ... GROUP BY queries
type GormTotalsReader struct {
	db *gorm.DB
}

// NewGormTotalsReader creates a new GormTotalsReader
func NewGormTotalsReader(db *gorm.DB) *GormTotalsReader {
	return &GormTotalsReader{db: db}
}

type kindTotal struct {
	Kind  billing.DocumentKind
	Total decimal.Decimal
}

// SumByProject sums contributing documents and expenses of a project per kind
func (r *GormTotalsReader) SumByProject(ctx context.Context, tenantID, projectID uuid.UUID) (billing.ProjectTotals, error) {
	db := conn(ctx, r.db)

	var rows []kindTotal
	if err := db.Model(&models.DocumentModel{}).
		Select("kind, COALESCE(SUM(total), 0) AS total").
		Scopes(tenantScope(tenantID)).
		Where("project_id = ? AND status IN ?", projectID, documentRollupStatuses()).
		Group("kind").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	var expenses decimal.Decimal
	if err := db.Model(&models.ExpenseModel{}).
		Select("COALESCE(SUM(amount), 0)").
		Scopes(tenantScope(tenantID)).
		Where("project_id = ? AND status IN ?", projectID, billing.RollupStatuses(billing.KindExpense)).
		Row().Scan(&expenses); err != nil {
		return nil, err
	}

	totals := make(billing.ProjectTotals, len(billing.AllKinds()))
	for _, kind := range billing.AllKinds() {
		totals[kind] = decimal.Zero
	}
	for _, row := range rows {
		totals[row.Kind] = shared.RoundMoney(row.Total)
	}
	totals[billing.KindExpense] = shared.RoundMoney(expenses)
	return totals, nil
}

// documentRollupStatuses is the union of contributing statuses over the line document kinds.
// A stored status is always allowed for its kind, so the union filters exactly.
func documentRollupStatuses() []billing.Status {
	seen := make(map[billing.Status]bool)
	var out []billing.Status
	for _, kind := range billing.LineDocumentKinds {
		for _, s := range billing.RollupStatuses(kind) {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}

var _ billing.TotalsReader = (*GormTotalsReader)(nil)
