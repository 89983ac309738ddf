package partner

import (
	"context"

	"github.com/techsolutions/pos/internal/domain/shared"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// FindByID finds a customer by id, active or not
	FindByID(ctx context.Context, id int64) (*Customer, error)

	// FindActive lists active customers ordered by name
	FindActive(ctx context.Context, filter shared.Filter) ([]Customer, error)

	// SearchByName lists active customers whose name contains term
	SearchByName(ctx context.Context, term string) ([]Customer, error)

	// Save creates or updates a customer
	Save(ctx context.Context, customer *Customer) error

	// Deactivate soft-deletes a customer
	Deactivate(ctx context.Context, id int64) error
}
