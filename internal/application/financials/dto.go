package financials

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/domain/project"
	"github.com/shopspring/decimal"
)

// FinancialsResponse represents a project's roll-up figures in API responses
type FinancialsResponse struct {
	Revenue          decimal.Decimal `json:"revenue"`
	Cost             decimal.Decimal `json:"cost"`
	Profit           decimal.Decimal `json:"profit"`
	CommittedRevenue decimal.Decimal `json:"committed_revenue"`
	CommittedCost    decimal.Decimal `json:"committed_cost"`
	UpdatedAt        *time.Time      `json:"updated_at,omitempty"`
}

// ProjectFinancialsResponse is the financials read model: the persisted
// figures plus the same figures computed from the current documents.
type ProjectFinancialsResponse struct {
	ProjectID uuid.UUID `json:"project_id"`
	FinancialsResponse
	Computed FinancialsResponse `json:"computed"`
	Stale    bool               `json:"stale"`
}

// RollupStatusResponse tells a caller whether its write reached the project figures
type RollupStatusResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ToFinancialsResponse converts domain financials to a response
func ToFinancialsResponse(f project.Financials) FinancialsResponse {
	return FinancialsResponse{
		Revenue:          f.Revenue,
		Cost:             f.Cost,
		Profit:           f.Profit,
		CommittedRevenue: f.CommittedRevenue,
		CommittedCost:    f.CommittedCost,
		UpdatedAt:        f.UpdatedAt,
	}
}

// ToRollupStatusResponse folds one or more roll-up results into a single status.
// Any stale result makes the whole write stale.
func ToRollupStatusResponse(results ...RollupResult) *RollupStatusResponse {
	status := StatusSkipped
	var errs []string
	for _, r := range results {
		switch r.Status {
		case StatusStale:
			status = StatusStale
			if r.Err != nil {
				errs = append(errs, r.Err.Error())
			}
		case StatusUpdated:
			if status == StatusSkipped {
				status = StatusUpdated
			}
		}
	}
	return &RollupStatusResponse{
		Status: string(status),
		Error:  strings.Join(errs, "; "),
	}
}
