package trade

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/techsolutions/pos/internal/domain/shared"
)

// AggregateTypeSale is the aggregate type name used in events
const AggregateTypeSale = "Sale"

// DefaultTaxRate is applied when no rate is configured
var DefaultTaxRate = decimal.RequireFromString("0.10")

// SaleStatus represents the status of a sale. Values match the persisted
// estado column.
type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "PENDIENTE"
	SaleStatusCompleted SaleStatus = "COMPLETADA"
	SaleStatusCancelled SaleStatus = "CANCELADA"
)

// IsValid checks if the status is a valid SaleStatus
func (s SaleStatus) IsValid() bool {
	switch s {
	case SaleStatusPending, SaleStatusCompleted, SaleStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of SaleStatus
func (s SaleStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s SaleStatus) CanTransitionTo(target SaleStatus) bool {
	switch s {
	case SaleStatusPending:
		return target == SaleStatusCompleted
	case SaleStatusCompleted:
		return target == SaleStatusCancelled
	case SaleStatusCancelled:
		return false // Terminal
	}
	return false
}

// SaleLine is one product/quantity/price entry of a sale.
// UnitPrice is the price charged at the time of sale.
type SaleLine struct {
	ID        int64
	SaleID    int64
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal

	// Hydrated on reads only
	ProductCode string
	ProductName string
}

// NewSaleLine creates a line with its subtotal computed from quantity and price
func NewSaleLine(productID int64, quantity int, unitPrice decimal.Decimal) (SaleLine, error) {
	if productID <= 0 {
		return SaleLine{}, shared.NewDomainError("INVALID_PRODUCT", "Product ID is required")
	}
	if quantity <= 0 {
		return SaleLine{}, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return SaleLine{}, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	price := unitPrice.Round(2)
	return SaleLine{
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: price,
		Subtotal:  price.Mul(decimal.NewFromInt(int64(quantity))).Round(2),
	}, nil
}

// Sale is the aggregate root of a point-of-sale transaction. It owns its lines.
type Sale struct {
	shared.BaseAggregateRoot
	InvoiceNumber string
	CustomerID    *int64
	OperatorID    int64
	SaleDate      time.Time
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	Status        SaleStatus
	Lines         []SaleLine

	// Hydrated on reads only
	CustomerName string
	OperatorName string
}

// NewSale creates a pending, in-memory sale
func NewSale(customerID *int64, operatorID int64) *Sale {
	return &Sale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		OperatorID:        operatorID,
		Subtotal:          decimal.Zero,
		Tax:               decimal.Zero,
		Total:             decimal.Zero,
		Status:            SaleStatusPending,
		Lines:             make([]SaleLine, 0),
	}
}

// AddLine appends a line to a pending sale
func (s *Sale) AddLine(productID int64, quantity int, unitPrice decimal.Decimal) error {
	if s.Status != SaleStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Lines can only be added to a pending sale")
	}
	line, err := NewSaleLine(productID, quantity, unitPrice)
	if err != nil {
		return err
	}
	s.Lines = append(s.Lines, line)
	return nil
}

// CalculateTotals recomputes subtotal, tax and total from the lines.
// Tax is rounded half away from zero to 2 places.
func (s *Sale) CalculateTotals(taxRate decimal.Decimal) {
	subtotal := decimal.Zero
	for _, line := range s.Lines {
		subtotal = subtotal.Add(line.Subtotal)
	}
	s.Subtotal = subtotal.Round(2)
	s.Tax = s.Subtotal.Mul(taxRate).Round(2)
	s.Total = s.Subtotal.Add(s.Tax)
}

// ItemCount returns the total number of units sold
func (s *Sale) ItemCount() int {
	count := 0
	for _, line := range s.Lines {
		count += line.Quantity
	}
	return count
}

// QuantitiesByProduct sums line quantities per product, so a product listed
// on several lines is checked against its stock once.
func (s *Sale) QuantitiesByProduct() map[int64]int {
	result := make(map[int64]int, len(s.Lines))
	for _, line := range s.Lines {
		result[line.ProductID] += line.Quantity
	}
	return result
}

// Complete transitions a pending sale to COMPLETED and records the event.
// The sale must already have its identity and invoice number.
func (s *Sale) Complete() error {
	if len(s.Lines) == 0 {
		return ErrEmptySale
	}
	if !s.Status.CanTransitionTo(SaleStatusCompleted) {
		return shared.NewDomainError("INVALID_STATE", "Only pending sales can be completed")
	}
	s.Status = SaleStatusCompleted
	s.AddDomainEvent(NewSaleCompletedEvent(s))
	return nil
}

// Cancel transitions a completed sale to CANCELLED. Totals are left untouched.
func (s *Sale) Cancel() error {
	if s.Status == SaleStatusCancelled {
		return ErrAlreadyCancelled
	}
	if !s.Status.CanTransitionTo(SaleStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", "Only completed sales can be voided")
	}
	s.Status = SaleStatusCancelled
	s.AddDomainEvent(NewSaleVoidedEvent(s))
	return nil
}

// IsVoidable reports whether the sale can be voided
func (s *Sale) IsVoidable() bool {
	return s.Status == SaleStatusCompleted
}
