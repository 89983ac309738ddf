package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Metric names exported by the sale engine.
const (
	MetricSalesCommitted = "pos_sales_committed_total"
	MetricSalesVoided    = "pos_sales_voided_total"
	MetricSalesFailed    = "pos_sales_failed_total"
	MetricSalesAmount    = "pos_sales_amount"
	MetricSaleDuration   = "pos_sale_operation_duration_seconds"
	MetricLowStockAlerts = "pos_low_stock_alerts_total"
)

// SaleMetrics records sale engine counters and latency.
// A nil *SaleMetrics is valid and records nothing.
type SaleMetrics struct {
	committed metric.Int64Counter
	voided    metric.Int64Counter
	failed    metric.Int64Counter
	amount    metric.Float64Counter
	duration  metric.Float64Histogram
	lowStock  metric.Int64Counter
	logger    *zap.Logger
}

// NewSaleMetrics registers sale instruments on meter.
func NewSaleMetrics(meter metric.Meter, logger *zap.Logger) (*SaleMetrics, error) {
	m := &SaleMetrics{logger: logger}
	var err error

	if m.committed, err = meter.Int64Counter(MetricSalesCommitted,
		metric.WithDescription("Number of sales committed"),
		metric.WithUnit("{sale}")); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", MetricSalesCommitted, err)
	}
	if m.voided, err = meter.Int64Counter(MetricSalesVoided,
		metric.WithDescription("Number of sales voided"),
		metric.WithUnit("{sale}")); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", MetricSalesVoided, err)
	}
	if m.failed, err = meter.Int64Counter(MetricSalesFailed,
		metric.WithDescription("Number of failed sale operations by error kind"),
		metric.WithUnit("{operation}")); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", MetricSalesFailed, err)
	}
	if m.amount, err = meter.Float64Counter(MetricSalesAmount,
		metric.WithDescription("Committed sales amount including tax"),
		metric.WithUnit("{currency}")); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", MetricSalesAmount, err)
	}
	if m.duration, err = meter.Float64Histogram(MetricSaleDuration,
		metric.WithDescription("Sale operation latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5)); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", MetricSaleDuration, err)
	}
	if m.lowStock, err = meter.Int64Counter(MetricLowStockAlerts,
		metric.WithDescription("Products that fell to or below minimum stock after a sale"),
		metric.WithUnit("{alert}")); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", MetricLowStockAlerts, err)
	}

	return m, nil
}

// RecordSaleCommitted counts a committed sale and its total.
func (m *SaleMetrics) RecordSaleCommitted(ctx context.Context, total decimal.Decimal, items int) {
	if m == nil {
		return
	}
	m.committed.Add(ctx, 1, metric.WithAttributes(attribute.Int("items", items)))
	m.amount.Add(ctx, total.InexactFloat64())
}

// RecordSaleVoided counts a voided sale.
func (m *SaleMetrics) RecordSaleVoided(ctx context.Context) {
	if m == nil {
		return
	}
	m.voided.Add(ctx, 1)
}

// RecordSaleFailed counts a failed operation labelled by error kind.
func (m *SaleMetrics) RecordSaleFailed(ctx context.Context, operation, kind string) {
	if m == nil {
		return
	}
	m.failed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("kind", kind),
	))
}

// RecordDuration records the latency of one operation.
func (m *SaleMetrics) RecordDuration(ctx context.Context, operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("operation", operation)))
}

// RecordLowStock counts a low stock alert for a product.
func (m *SaleMetrics) RecordLowStock(ctx context.Context, productCode string) {
	if m == nil {
		return
	}
	m.lowStock.Add(ctx, 1, metric.WithAttributes(attribute.String("product_code", productCode)))
}
