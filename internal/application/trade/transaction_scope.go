package trade

import (
	"context"

	"github.com/techsolutions/pos/internal/domain/catalog"
	"github.com/techsolutions/pos/internal/domain/identity"
	"github.com/techsolutions/pos/internal/domain/partner"
	"github.com/techsolutions/pos/internal/domain/trade"
)

// TransactionScope runs a unit of work atomically.
// If fn returns an error or panics, every write made through the repositories
// is rolled back. If fn succeeds, the transaction is committed.
// Implementations return shared.ErrUnavailable when the storage cannot
// start a transaction.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to every repository the sale engine
// touches. All repositories returned share the same underlying transaction.
type TransactionalRepositories interface {
	Customers() partner.CustomerRepository
	Users() identity.UserRepository
	Products() catalog.ProductRepository
	Stock() catalog.StockLedger
	Sales() trade.SaleRepository
}

// NoOpTransactionScope runs the function directly against the given
// repositories without a transaction. Used in tests.
type NoOpTransactionScope struct {
	customers partner.CustomerRepository
	users     identity.UserRepository
	products  catalog.ProductRepository
	stock     catalog.StockLedger
	sales     trade.SaleRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	customers partner.CustomerRepository,
	users identity.UserRepository,
	products catalog.ProductRepository,
	stock catalog.StockLedger,
	sales trade.SaleRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		customers: customers,
		users:     users,
		products:  products,
		stock:     stock,
		sales:     sales,
	}
}

// Execute runs fn without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) Customers() partner.CustomerRepository { return s.customers }
func (s *NoOpTransactionScope) Users() identity.UserRepository        { return s.users }
func (s *NoOpTransactionScope) Products() catalog.ProductRepository   { return s.products }
func (s *NoOpTransactionScope) Stock() catalog.StockLedger            { return s.stock }
func (s *NoOpTransactionScope) Sales() trade.SaleRepository           { return s.sales }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
