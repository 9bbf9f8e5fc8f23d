package financials

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/domain/billing"
	"github.com/projledger/backend/internal/domain/project"
	"github.com/projledger/backend/internal/domain/shared"
	"github.com/projledger/backend/internal/infrastructure/lock"
	"github.com/projledger/backend/internal/infrastructure/logger"
	"github.com/projledger/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Status is the outcome of a project roll-up
type Status string

const (
	// StatusUpdated means the project figures now reflect its documents
	StatusUpdated Status = "UPDATED"
	// StatusStale means the recompute failed and the stored figures may be out of date
	StatusStale Status = "STALE"
	// StatusSkipped means there was no project to recompute
	StatusSkipped Status = "SKIPPED"
)

// ErrLockTimeout is reported when the per-project lock could not be taken in time
var ErrLockTimeout = shared.NewRetryableError("ROLLUP_LOCK_TIMEOUT", "Project financials are being recomputed by another request")

// TriggerManual labels a recompute requested through the API rather than by a document change
const TriggerManual billing.DocumentKind = "MANUAL"

// RollupResult reports what a recompute did. Err is set only when Status is StatusStale.
type RollupResult struct {
	Status     Status
	ProjectID  uuid.UUID
	Kind       billing.DocumentKind
	Financials *project.Financials
	Err        error
}

// IsStale reports whether the project figures may no longer match its documents
func (r RollupResult) IsStale() bool {
	return r.Status == StatusStale
}

// RollupService recomputes a project's revenue, cost and profit from its documents
type RollupService struct {
	projects       project.Repository
	totals         billing.TotalsReader
	tx             shared.Transactor
	locker         ProjectLocker
	metrics        *telemetry.RollupMetrics
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewRollupService creates a new RollupService
func NewRollupService(
	projects project.Repository,
	totals billing.TotalsReader,
	tx shared.Transactor,
	locker ProjectLocker,
	logger *zap.Logger,
) *RollupService {
	return &RollupService{
		projects: projects,
		totals:   totals,
		tx:       tx,
		locker:   locker,
		logger:   logger.Named("rollup"),
		now:      time.Now,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *RollupService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the roll-up instruments
func (s *RollupService) SetMetrics(metrics *telemetry.RollupMetrics) {
	s.metrics = metrics
}

// RecomputeProjectFinancials overwrites the project's figures with a full
// recompute over all contributing document kinds. kind names the document
// kind whose change triggered the run.
//
// It never returns an error: failures are logged, counted, published as a
// ProjectFinancialsStale event and reported as StatusStale in the result.
// ctx must not carry an open transaction. The recompute runs detached from
// ctx cancellation so a caller that goes away after its write committed still
// leaves the project figures in sync; the lock wait budget bounds the call.
func (s *RollupService) RecomputeProjectFinancials(ctx context.Context, tenantID uuid.UUID, projectID *uuid.UUID, kind billing.DocumentKind) RollupResult {
	if projectID == nil || *projectID == uuid.Nil {
		return RollupResult{Status: StatusSkipped, Kind: kind}
	}
	id := *projectID
	start := time.Now()
	ctx = context.WithoutCancel(ctx)

	ctx, span := telemetry.StartServiceSpan(ctx, "rollup", "recompute",
		attribute.String("project_id", id.String()),
		attribute.String("trigger_kind", kind.String()),
	)
	defer span.End()

	result := RollupResult{ProjectID: id, Kind: kind}

	unlock, err := s.locker.Lock(ctx, id)
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			err = fmt.Errorf("%w: %w", ErrLockTimeout, err)
		}
		telemetry.RecordError(span, err)
		return s.stale(ctx, tenantID, result, err, start)
	}
	defer unlock()

	var updated *project.Project
	labels := map[string]string{"operation": "rollup", "trigger_kind": kind.String()}
	telemetry.WithProfilingLabels(ctx, labels, func(ctx context.Context) {
		err = s.recompute(ctx, tenantID, id, &updated)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return s.stale(ctx, tenantID, result, err, start)
	}

	s.publish(ctx, updated.GetDomainEvents()...)
	updated.ClearDomainEvents()

	s.metrics.RecordRun(ctx, tenantID.String(), kind.String(), string(StatusUpdated), time.Since(start))
	logger.Enrich(ctx, s.logger).Debug("project financials recomputed",
		zap.String("project_id", id.String()),
		zap.String("trigger_kind", kind.String()),
		zap.String("revenue", updated.Financials.Revenue.String()),
		zap.String("cost", updated.Financials.Cost.String()),
	)

	financials := updated.Financials
	result.Status = StatusUpdated
	result.Financials = &financials
	return result
}

// recompute overwrites the project's figures inside one transaction, holding
// the row lock while the document totals are summed
func (s *RollupService) recompute(ctx context.Context, tenantID, id uuid.UUID, out **project.Project) error {
	return s.tx.Do(ctx, func(ctx context.Context) error {
		p, err := s.projects.FindByIDForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}
		totals, err := s.totals.SumByProject(ctx, tenantID, id)
		if err != nil {
			return fmt.Errorf("sum project documents: %w", err)
		}
		p.ApplyFinancials(project.ComputeFinancials(totals, s.now()))
		if err := s.projects.UpdateFinancials(ctx, p); err != nil {
			return fmt.Errorf("update project financials: %w", err)
		}
		*out = p
		return nil
	})
}

// RecomputeProjects recomputes every distinct project in ids, e.g. the old and
// the new project of a document that was moved
func (s *RollupService) RecomputeProjects(ctx context.Context, tenantID uuid.UUID, kind billing.DocumentKind, ids ...*uuid.UUID) []RollupResult {
	seen := make(map[uuid.UUID]bool, len(ids))
	results := make([]RollupResult, 0, len(ids))
	for _, id := range ids {
		if id == nil || *id == uuid.Nil || seen[*id] {
			continue
		}
		seen[*id] = true
		results = append(results, s.RecomputeProjectFinancials(ctx, tenantID, id, kind))
	}
	if len(results) == 0 {
		results = append(results, RollupResult{Status: StatusSkipped, Kind: kind})
	}
	return results
}

// GetFinancials returns the stored figures alongside a fresh computation.
// Nothing is written; Stale tells whether the two disagree.
func (s *RollupService) GetFinancials(ctx context.Context, tenantID, projectID uuid.UUID) (*ProjectFinancialsResponse, error) {
	p, err := s.projects.FindByID(ctx, tenantID, projectID)
	if err != nil {
		return nil, err
	}
	totals, err := s.totals.SumByProject(ctx, tenantID, projectID)
	if err != nil {
		return nil, err
	}
	computed := project.ComputeFinancials(totals, s.now())

	return &ProjectFinancialsResponse{
		ProjectID:          p.ID,
		FinancialsResponse: ToFinancialsResponse(p.Financials),
		Computed:           ToFinancialsResponse(computed),
		Stale:              !p.Financials.Equal(computed),
	}, nil
}

func (s *RollupService) stale(ctx context.Context, tenantID uuid.UUID, result RollupResult, err error, start time.Time) RollupResult {
	kind := result.Kind.String()

	logger.Enrich(ctx, s.logger).Error("project financials roll-up failed",
		zap.String("project_id", result.ProjectID.String()),
		zap.String("tenant_id", tenantID.String()),
		zap.String("trigger_kind", kind),
		zap.Error(err),
	)
	s.metrics.RecordFailure(ctx, tenantID.String(), kind)
	s.metrics.RecordRun(ctx, tenantID.String(), kind, string(StatusStale), time.Since(start))
	s.publish(ctx, project.NewFinancialsStaleEvent(tenantID, result.ProjectID, kind, err.Error()))

	result.Status = StatusStale
	result.Err = err
	return result
}

func (s *RollupService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		logger.Enrich(ctx, s.logger).Warn("failed to publish roll-up events", zap.Error(err))
	}
}
