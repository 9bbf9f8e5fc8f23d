package financials

import (
	"context"
	"fmt"

	"github.com/projledger/backend/internal/domain/project"
	"github.com/projledger/backend/internal/domain/shared"
	"github.com/projledger/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// StaleFinancialsHandler raises an operational alert when a project's
// figures could not be recomputed
type StaleFinancialsHandler struct {
	logger *zap.Logger
}

// NewStaleFinancialsHandler creates a new handler for ProjectFinancialsStale events
func NewStaleFinancialsHandler(logger *zap.Logger) *StaleFinancialsHandler {
	return &StaleFinancialsHandler{logger: logger.Named("rollup_alert")}
}

// EventTypes returns the event types this handler is interested in
func (h *StaleFinancialsHandler) EventTypes() []string {
	return []string{project.EventTypeFinancialsStale}
}

// Handle logs the alert at error level
func (h *StaleFinancialsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	stale, ok := event.(*project.FinancialsStaleEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	logger.Enrich(ctx, h.logger).Error("ALERT: project financials are stale",
		zap.String("event_id", stale.EventID().String()),
		zap.String("tenant_id", stale.TenantID().String()),
		zap.String("project_id", stale.AggregateID().String()),
		zap.String("trigger_kind", stale.TriggerKind),
		zap.String("reason", stale.Reason),
		zap.Time("occurred_at", stale.OccurredAt()),
	)
	return nil
}

var _ shared.EventHandler = (*StaleFinancialsHandler)(nil)
