package trade

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/techsolutions/pos/internal/domain/catalog"
	"github.com/techsolutions/pos/internal/domain/shared"
	"github.com/techsolutions/pos/internal/domain/trade"
	"go.uber.org/zap"
)

// LowStockRecorder counts low stock alerts
type LowStockRecorder interface {
	RecordLowStock(ctx context.Context, productCode string)
}

// LowStockAlertHandler handles SaleCompletedEvent and warns about every sold
// product whose stock is now at or below its minimum.
type LowStockAlertHandler struct {
	products catalog.ProductRepository
	recorder LowStockRecorder
	logger   *zap.Logger
}

// NewLowStockAlertHandler creates a LowStockAlertHandler. recorder may be nil.
func NewLowStockAlertHandler(products catalog.ProductRepository, recorder LowStockRecorder, logger *zap.Logger) *LowStockAlertHandler {
	return &LowStockAlertHandler{
		products: products,
		recorder: recorder,
		logger:   logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockAlertHandler) EventTypes() []string {
	return []string{trade.EventTypeSaleCompleted}
}

// Handle checks stock levels of the products sold
func (h *LowStockAlertHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	completed, ok := event.(*trade.SaleCompletedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			trade.EventTypeSaleCompleted, event.EventType())
	}

	seen := make(map[int64]bool, len(completed.Lines))
	for _, line := range completed.Lines {
		if seen[line.ProductID] {
			continue
		}
		seen[line.ProductID] = true

		product, err := h.products.FindByID(ctx, line.ProductID)
		if err != nil {
			h.logger.Warn("Could not load product for low stock check",
				zap.Int64("product_id", line.ProductID),
				zap.Error(err),
			)
			continue
		}
		if !product.IsLowStock() {
			continue
		}

		h.logger.Warn("Product stock at or below minimum",
			zap.Int64("product_id", product.ID),
			zap.String("product_code", product.Code),
			zap.Int("stock", product.Stock),
			zap.Int("min_stock", product.MinStock),
			zap.String("invoice_number", completed.InvoiceNumber),
		)
		if h.recorder != nil {
			h.recorder.RecordLowStock(ctx, product.Code)
		}
	}
	return nil
}

// SaleOutcomeRecorder counts committed and voided sales
type SaleOutcomeRecorder interface {
	RecordSaleCommitted(ctx context.Context, total decimal.Decimal, items int)
	RecordSaleVoided(ctx context.Context)
}

// SaleMetricsHandler feeds sale events into metrics
type SaleMetricsHandler struct {
	recorder SaleOutcomeRecorder
}

// NewSaleMetricsHandler creates a SaleMetricsHandler
func NewSaleMetricsHandler(recorder SaleOutcomeRecorder) *SaleMetricsHandler {
	return &SaleMetricsHandler{recorder: recorder}
}

// EventTypes returns the event types this handler is interested in
func (h *SaleMetricsHandler) EventTypes() []string {
	return []string{trade.EventTypeSaleCompleted, trade.EventTypeSaleVoided}
}

// Handle records the sale outcome
func (h *SaleMetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *trade.SaleCompletedEvent:
		items := 0
		for _, line := range e.Lines {
			items += line.Quantity
		}
		h.recorder.RecordSaleCommitted(ctx, e.Total, items)
	case *trade.SaleVoidedEvent:
		h.recorder.RecordSaleVoided(ctx)
	default:
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
	return nil
}

var (
	_ shared.EventHandler = (*LowStockAlertHandler)(nil)
	_ shared.EventHandler = (*SaleMetricsHandler)(nil)
)
