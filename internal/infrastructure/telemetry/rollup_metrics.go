package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names exported for the project financial roll-up.
const (
	MetricRollupFailures = "projledger_rollup_failures_total"
	MetricRollupDuration = "projledger_rollup_duration_seconds"
	MetricRollupRuns     = "projledger_rollup_runs_total"
)

// Attribute keys shared by roll-up metrics.
var (
	AttrTeamID      = attribute.Key("team_id")
	AttrTriggerKind = attribute.Key("trigger_kind")
	AttrOutcome     = attribute.Key("outcome")
)

// RollupDurationBuckets are histogram boundaries in seconds
var RollupDurationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// RollupMetrics records roll-up outcomes. A nil *RollupMetrics is a valid no-op.
type RollupMetrics struct {
	failures metric.Int64Counter
	runs     metric.Int64Counter
	duration metric.Float64Histogram
}

// NewRollupMetrics registers the roll-up instruments on meter
func NewRollupMetrics(meter metric.Meter) (*RollupMetrics, error) {
	failures, err := meter.Int64Counter(MetricRollupFailures,
		metric.WithDescription("Project financial roll-ups that failed and left the read model stale"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create counter %s: %w", MetricRollupFailures, err)
	}
	runs, err := meter.Int64Counter(MetricRollupRuns,
		metric.WithDescription("Project financial roll-ups by outcome"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create counter %s: %w", MetricRollupRuns, err)
	}
	duration, err := meter.Float64Histogram(MetricRollupDuration,
		metric.WithDescription("Time spent recomputing project financials, lock wait included"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(RollupDurationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create histogram %s: %w", MetricRollupDuration, err)
	}
	return &RollupMetrics{failures: failures, runs: runs, duration: duration}, nil
}

// RecordRun records one roll-up attempt
func (m *RollupMetrics) RecordRun(ctx context.Context, teamID, triggerKind, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		AttrTeamID.String(teamID),
		AttrTriggerKind.String(triggerKind),
		AttrOutcome.String(outcome),
	)
	m.runs.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordFailure increments the failure counter
func (m *RollupMetrics) RecordFailure(ctx context.Context, teamID, triggerKind string) {
	if m == nil {
		return
	}
	m.failures.Add(ctx, 1, metric.WithAttributes(
		AttrTeamID.String(teamID),
		AttrTriggerKind.String(triggerKind),
	))
}
