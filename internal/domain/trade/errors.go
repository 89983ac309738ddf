package trade

import (
	"fmt"

	"github.com/techsolutions/pos/internal/domain/shared"
)

// Entity names carried by ReferentialError
const (
	EntityCustomer = "customer"
	EntityOperator = "operator"
	EntityProduct  = "product"
)

// Sale engine error kinds. Typed errors below unwrap to one of these so
// callers can match with errors.Is and read details with errors.As.
var (
	ErrReferential             = shared.NewDomainError("REFERENTIAL_ERROR", "Referenced record does not exist or is inactive")
	ErrInsufficientStock       = shared.ErrInsufficientStock
	ErrConcurrentStockConflict = shared.NewDomainError("CONCURRENT_STOCK_CONFLICT", "Stock changed while the sale was being committed")
	ErrIntegrityViolation      = shared.NewDomainError("INTEGRITY_VIOLATION", "Sale data is inconsistent")
	ErrAlreadyCancelled        = shared.NewDomainError("ALREADY_CANCELLED", "Sale is already cancelled")
	ErrUnavailable             = shared.ErrUnavailable
	ErrDuplicateInvoice        = shared.NewDomainError("DUPLICATE_INVOICE", "Invoice number already exists")
	ErrInvoiceNumberExhausted  = shared.NewDomainError("INVOICE_NUMBER_EXHAUSTED", "Could not allocate a unique invoice number")
	ErrEmptySale               = shared.NewDomainError("EMPTY_SALE", "Sale must have at least one line")
)

// ReferentialError reports a missing or inactive customer, operator or product
type ReferentialError struct {
	Entity string
	ID     int64
}

// NewReferentialError creates a ReferentialError
func NewReferentialError(entity string, id int64) *ReferentialError {
	return &ReferentialError{Entity: entity, ID: id}
}

func (e *ReferentialError) Error() string {
	return fmt.Sprintf("%s %d does not exist or is inactive", e.Entity, e.ID)
}

func (e *ReferentialError) Unwrap() error {
	return shared.NewDomainError(ErrReferential.Code, e.Error())
}

// InsufficientStockError reports a line asking for more than is on hand
type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

// NewInsufficientStockError creates an InsufficientStockError
func NewInsufficientStockError(productID int64, requested, available int) *InsufficientStockError {
	return &InsufficientStockError{ProductID: productID, Requested: requested, Available: available}
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error {
	return shared.NewDomainError(ErrInsufficientStock.Code, e.Error())
}

// ConcurrentStockConflictError reports a guarded decrement that matched no
// row. The caller should retry the whole sale.
type ConcurrentStockConflictError struct {
	ProductID int64
}

// NewConcurrentStockConflictError creates a ConcurrentStockConflictError
func NewConcurrentStockConflictError(productID int64) *ConcurrentStockConflictError {
	return &ConcurrentStockConflictError{ProductID: productID}
}

func (e *ConcurrentStockConflictError) Error() string {
	return fmt.Sprintf("stock for product %d changed concurrently", e.ProductID)
}

func (e *ConcurrentStockConflictError) Unwrap() error {
	return shared.NewDomainError(ErrConcurrentStockConflict.Code, e.Error())
}

// IntegrityViolationError reports stored sale data that breaks an invariant,
// such as a completed sale without lines. It is not recoverable by the caller.
type IntegrityViolationError struct {
	SaleID int64
	Reason string
}

// NewIntegrityViolationError creates an IntegrityViolationError
func NewIntegrityViolationError(saleID int64, reason string) *IntegrityViolationError {
	return &IntegrityViolationError{SaleID: saleID, Reason: reason}
}

func (e *IntegrityViolationError) Error() string {
	return fmt.Sprintf("sale %d: %s", e.SaleID, e.Reason)
}

func (e *IntegrityViolationError) Unwrap() error {
	return shared.NewDomainError(ErrIntegrityViolation.Code, e.Error())
}
