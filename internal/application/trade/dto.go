package trade

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/techsolutions/pos/internal/domain/trade"
)

// CommitSaleRequest is a sale built by the caller, not yet persisted.
// InvoiceNumber is optional; when set it is used as is, without retry.
type CommitSaleRequest struct {
	CustomerID    *int64          `json:"customer_id"`
	OperatorID    int64           `json:"operator_id"`
	InvoiceNumber string          `json:"invoice_number,omitempty"`
	Lines         []SaleLineInput `json:"lines" binding:"required,min=1,dive"`
}

// SaleLineInput is one requested line. UnitPrice is the price the caller
// displayed; the engine charges the product's current price regardless.
type SaleLineInput struct {
	ProductID int64            `json:"product_id" binding:"required,gt=0"`
	Quantity  int              `json:"quantity" binding:"required,gt=0"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// CommitResult is returned by a successful commit
type CommitResult struct {
	SaleID        int64           `json:"sale_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	SaleDate      time.Time       `json:"sale_date"`
}

// VoidResult is returned by a successful void
type VoidResult struct {
	SaleID        int64  `json:"sale_id"`
	InvoiceNumber string `json:"invoice_number"`
	RestoredLines int    `json:"restored_lines"`
	RestoredUnits int    `json:"restored_units"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID            int64              `json:"id"`
	InvoiceNumber string             `json:"invoice_number"`
	CustomerID    *int64             `json:"customer_id,omitempty"`
	CustomerName  string             `json:"customer_name,omitempty"`
	OperatorID    int64              `json:"operator_id"`
	OperatorName  string             `json:"operator_name,omitempty"`
	SaleDate      time.Time          `json:"sale_date"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Tax           decimal.Decimal    `json:"tax"`
	Total         decimal.Decimal    `json:"total"`
	Status        string             `json:"status"`
	ItemCount     int                `json:"item_count"`
	Lines         []SaleLineResponse `json:"lines"`
	CreatedAt     time.Time          `json:"created_at"`
}

// SaleLineResponse represents a sale line in API responses
type SaleLineResponse struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	ProductCode string          `json:"product_code,omitempty"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// ToSaleResponse converts a domain Sale to SaleResponse
func ToSaleResponse(s *trade.Sale) SaleResponse {
	lines := make([]SaleLineResponse, len(s.Lines))
	for i, l := range s.Lines {
		lines[i] = SaleLineResponse{
			ID:          l.ID,
			ProductID:   l.ProductID,
			ProductCode: l.ProductCode,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Subtotal:    l.Subtotal,
		}
	}
	return SaleResponse{
		ID:            s.ID,
		InvoiceNumber: s.InvoiceNumber,
		CustomerID:    s.CustomerID,
		CustomerName:  s.CustomerName,
		OperatorID:    s.OperatorID,
		OperatorName:  s.OperatorName,
		SaleDate:      s.SaleDate,
		Subtotal:      s.Subtotal,
		Tax:           s.Tax,
		Total:         s.Total,
		Status:        s.Status.String(),
		ItemCount:     s.ItemCount(),
		Lines:         lines,
		CreatedAt:     s.CreatedAt,
	}
}

// ToSaleResponses converts a slice of domain sales
func ToSaleResponses(sales []trade.Sale) []SaleResponse {
	responses := make([]SaleResponse, len(sales))
	for i := range sales {
		responses[i] = ToSaleResponse(&sales[i])
	}
	return responses
}
