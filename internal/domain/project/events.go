package project

import (
	"github.com/google/uuid"
	"github.com/projledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type constants
const (
	EventTypeFinancialsUpdated = "ProjectFinancialsUpdated"
	EventTypeFinancialsStale   = "ProjectFinancialsStale"
)

// FinancialsUpdatedEvent is raised when a roll-up changes a project's figures
type FinancialsUpdatedEvent struct {
	shared.BaseDomainEvent
	Revenue         decimal.Decimal `json:"revenue"`
	Cost            decimal.Decimal `json:"cost"`
	Profit          decimal.Decimal `json:"profit"`
	PreviousRevenue decimal.Decimal `json:"previous_revenue"`
	PreviousCost    decimal.Decimal `json:"previous_cost"`
}

// NewFinancialsUpdatedEvent creates a new FinancialsUpdatedEvent
func NewFinancialsUpdatedEvent(p *Project, previous Financials) *FinancialsUpdatedEvent {
	return &FinancialsUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFinancialsUpdated, AggregateTypeProject, p.ID, p.TenantID),
		Revenue:         p.Financials.Revenue,
		Cost:            p.Financials.Cost,
		Profit:          p.Financials.Profit,
		PreviousRevenue: previous.Revenue,
		PreviousCost:    previous.Cost,
	}
}

// FinancialsStaleEvent is raised when a roll-up fails and the stored figures
// no longer reflect the project's documents. It is the alerting hook.
type FinancialsStaleEvent struct {
	shared.BaseDomainEvent
	TriggerKind string `json:"trigger_kind"`
	Reason      string `json:"reason"`
}

// NewFinancialsStaleEvent creates a new FinancialsStaleEvent
func NewFinancialsStaleEvent(tenantID, projectID uuid.UUID, triggerKind, reason string) *FinancialsStaleEvent {
	return &FinancialsStaleEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFinancialsStale, AggregateTypeProject, projectID, tenantID),
		TriggerKind:     triggerKind,
		Reason:          reason,
	}
}
