package catalog

import (
	"context"

	"github.com/techsolutions/pos/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID, active or not
	FindByID(ctx context.Context, id int64) (*Product, error)

	// FindByCode finds a product by its unique code
	FindByCode(ctx context.Context, code string) (*Product, error)

	// FindActive lists active products ordered by name
	FindActive(ctx context.Context, filter shared.Filter) ([]Product, error)

	// SearchByName lists active products whose name contains term
	SearchByName(ctx context.Context, term string) ([]Product, error)

	// FindLowStock lists active products with stock <= min stock, lowest first
	FindLowStock(ctx context.Context) ([]Product, error)

	// Save creates or updates a product's catalog fields. Stock is written
	// on create only.
	Save(ctx context.Context, product *Product) error

	// Deactivate soft-deletes a product
	Deactivate(ctx context.Context, id int64) error
}

// StockLedger is the guarded stock counter. Implementations must run inside
// the caller's transaction.
type StockLedger interface {
	// DecrementStock subtracts qty only where stock >= qty.
	// Returns trade.ConcurrentStockConflictError when no row matched.
	DecrementStock(ctx context.Context, productID int64, qty int) error

	// RestoreStock adds qty back to an active product without an upper bound.
	// Returns shared.ErrNotFound when the product is missing or inactive.
	RestoreStock(ctx context.Context, productID int64, qty int) error

	// AdjustStock applies a signed manual correction to an active product,
	// only where the result stays >= 0.
	// Returns trade.ConcurrentStockConflictError when no row matched.
	AdjustStock(ctx context.Context, productID int64, delta int) error
}
