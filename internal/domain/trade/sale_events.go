package trade

import (
	"github.com/shopspring/decimal"
	"github.com/techsolutions/pos/internal/domain/shared"
)

// Event type constants
const (
	EventTypeSaleCompleted = "SaleCompleted"
	EventTypeSaleVoided    = "SaleVoided"
)

// SaleLineInfo represents line information carried by sale events
type SaleLineInfo struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// SaleCompletedEvent is raised when a sale has been committed
type SaleCompletedEvent struct {
	shared.BaseDomainEvent
	SaleID        int64           `json:"sale_id"`
	InvoiceNumber string          `json:"invoice_number"`
	OperatorID    int64           `json:"operator_id"`
	Total         decimal.Decimal `json:"total"`
	Lines         []SaleLineInfo  `json:"lines"`
}

// NewSaleCompletedEvent creates a new SaleCompletedEvent
func NewSaleCompletedEvent(sale *Sale) *SaleCompletedEvent {
	return &SaleCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCompleted, AggregateTypeSale, sale.ID),
		SaleID:          sale.ID,
		InvoiceNumber:   sale.InvoiceNumber,
		OperatorID:      sale.OperatorID,
		Total:           sale.Total,
		Lines:           lineInfos(sale),
	}
}

// EventType returns the event type name
func (e *SaleCompletedEvent) EventType() string {
	return EventTypeSaleCompleted
}

// SaleVoidedEvent is raised when a completed sale has been voided and its
// stock restored
type SaleVoidedEvent struct {
	shared.BaseDomainEvent
	SaleID        int64           `json:"sale_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Total         decimal.Decimal `json:"total"`
	Lines         []SaleLineInfo  `json:"lines"`
}

// NewSaleVoidedEvent creates a new SaleVoidedEvent
func NewSaleVoidedEvent(sale *Sale) *SaleVoidedEvent {
	return &SaleVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleVoided, AggregateTypeSale, sale.ID),
		SaleID:          sale.ID,
		InvoiceNumber:   sale.InvoiceNumber,
		Total:           sale.Total,
		Lines:           lineInfos(sale),
	}
}

// EventType returns the event type name
func (e *SaleVoidedEvent) EventType() string {
	return EventTypeSaleVoided
}

func lineInfos(sale *Sale) []SaleLineInfo {
	infos := make([]SaleLineInfo, len(sale.Lines))
	for i, line := range sale.Lines {
		infos[i] = SaleLineInfo{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		}
	}
	return infos
}
