package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techsolutions/pos/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func TestSetup_Disabled(t *testing.T) {
	ctx := context.Background()
	p, err := telemetry.Setup(ctx, telemetry.Config{ServiceName: "pos-test"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, p.IsEnabled())
	assert.NotNil(t, p.Meter("test"))
	assert.NoError(t, p.Shutdown(ctx))
}

func TestNewProfiler(t *testing.T) {
	t.Run("disabled is a no-op", func(t *testing.T) {
		p, err := telemetry.NewProfiler(telemetry.ProfilerConfig{}, zap.NewNop())
		require.NoError(t, err)
		assert.False(t, p.IsEnabled())
		assert.NoError(t, p.Stop())
		assert.NoError(t, p.Stop())
	})

	t.Run("missing server address", func(t *testing.T) {
		_, err := telemetry.NewProfiler(telemetry.ProfilerConfig{Enabled: true, ApplicationName: "pos"}, zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("missing application name", func(t *testing.T) {
		_, err := telemetry.NewProfiler(telemetry.ProfilerConfig{Enabled: true, ServerAddress: "http://localhost:4040"}, zap.NewNop())
		assert.Error(t, err)
	})
}

func TestStartServiceSpan(t *testing.T) {
	ctx, span := telemetry.StartServiceSpan(context.Background(), "sale_engine", "commit")
	defer span.End()

	assert.NotNil(t, ctx)
	telemetry.RecordError(span, assert.AnError)
	telemetry.RecordError(nil, assert.AnError)
	// the global provider is a no-op so nothing is sampled
	assert.Empty(t, telemetry.GetTraceID(ctx))
}

func TestSaleMetrics_Noop(t *testing.T) {
	m, err := telemetry.NewSaleMetrics(noop.NewMeterProvider().Meter("test"), zap.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordSaleCommitted(ctx, decimal.NewFromInt(100), 2)
	m.RecordSaleVoided(ctx)
	m.RecordSaleFailed(ctx, "commit", "INSUFFICIENT_STOCK")
	m.RecordDuration(ctx, "commit", 10*time.Millisecond)
	m.RecordLowStock(ctx, "LAP-001")
}

func TestSaleMetrics_NilReceiver(t *testing.T) {
	var m *telemetry.SaleMetrics
	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.RecordSaleCommitted(ctx, decimal.NewFromInt(1), 1)
		m.RecordSaleVoided(ctx)
		m.RecordSaleFailed(ctx, "void", "NOT_FOUND")
		m.RecordDuration(ctx, "void", time.Second)
		m.RecordLowStock(ctx, "X")
	})
}

func TestSaleMetrics_Collected(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := telemetry.NewSaleMetrics(mp.Meter("test"), zap.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordSaleCommitted(ctx, decimal.RequireFromString("1760.00"), 2)
	m.RecordSaleCommitted(ctx, decimal.RequireFromString("275.00"), 1)
	m.RecordSaleVoided(ctx)
	m.RecordSaleFailed(ctx, "commit", "INSUFFICIENT_STOCK")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	got := map[string]metricdata.Metrics{}
	for _, md := range rm.ScopeMetrics[0].Metrics {
		got[md.Name] = md
	}

	committed, ok := got[telemetry.MetricSalesCommitted].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	var committedTotal int64
	for _, dp := range committed.DataPoints {
		committedTotal += dp.Value
	}
	assert.Equal(t, int64(2), committedTotal)

	amount, ok := got[telemetry.MetricSalesAmount].Data.(metricdata.Sum[float64])
	require.True(t, ok)
	require.Len(t, amount.DataPoints, 1)
	assert.InDelta(t, 2035.0, amount.DataPoints[0].Value, 0.001)

	voided, ok := got[telemetry.MetricSalesVoided].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, voided.DataPoints, 1)
	assert.Equal(t, int64(1), voided.DataPoints[0].Value)

	_, ok = got[telemetry.MetricSalesFailed]
	assert.True(t, ok)
}
