package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestRollupMetrics_RecordFailure(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewRollupMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordFailure(ctx, "team-1", "INVOICE")
	m.RecordFailure(ctx, "team-1", "INVOICE")
	m.RecordRun(ctx, "team-1", "INVOICE", "updated", 20*time.Millisecond)

	metrics := collect(t, reader)

	failures, ok := metrics[MetricRollupFailures].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, failures.DataPoints, 1)
	assert.Equal(t, int64(2), failures.DataPoints[0].Value)

	duration, ok := metrics[MetricRollupDuration].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, duration.DataPoints, 1)
	assert.Equal(t, uint64(1), duration.DataPoints[0].Count)
}

func TestRollupMetrics_NilIsNoop(t *testing.T) {
	var m *RollupMetrics
	assert.NotPanics(t, func() {
		m.RecordFailure(context.Background(), "t", "k")
		m.RecordRun(context.Background(), "t", "k", "stale", time.Second)
	})
}
