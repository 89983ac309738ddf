package persistence

import (
	"context"
	"fmt"

	apptrade "github.com/techsolutions/pos/internal/application/trade"
	"github.com/techsolutions/pos/internal/domain/catalog"
	"github.com/techsolutions/pos/internal/domain/identity"
	"github.com/techsolutions/pos/internal/domain/partner"
	"github.com/techsolutions/pos/internal/domain/shared"
	"github.com/techsolutions/pos/internal/domain/trade"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormSaleTransactionScope implements apptrade.TransactionScope on a GORM
// database. Every repository handed to the callback shares one transaction.
type GormSaleTransactionScope struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormSaleTransactionScope creates a new GormSaleTransactionScope
func NewGormSaleTransactionScope(db *gorm.DB, logger *zap.Logger) *GormSaleTransactionScope {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GormSaleTransactionScope{db: db, logger: logger}
}

// Execute runs fn inside a transaction. The transaction is rolled back when
// fn returns an error or panics, and committed otherwise. Failing to start
// the transaction is reported as shared.ErrUnavailable.
func (s *GormSaleTransactionScope) Execute(ctx context.Context, fn func(repos apptrade.TransactionalRepositories) error) (err error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("Failed to begin transaction", zap.Error(tx.Error))
		return fmt.Errorf("begin transaction: %w", shared.ErrUnavailable)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(newGormTransactionalRepositories(tx)); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			s.logger.Warn("Failed to roll back transaction", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// gormTransactionalRepositories binds every repository to the same tx
type gormTransactionalRepositories struct {
	customers *GormCustomerRepository
	users     *GormUserRepository
	products  *GormProductRepository
	stock     *GormStockLedger
	sales     *GormSaleRepository
}

func newGormTransactionalRepositories(tx *gorm.DB) *gormTransactionalRepositories {
	return &gormTransactionalRepositories{
		customers: NewGormCustomerRepository(tx),
		users:     NewGormUserRepository(tx),
		products:  NewGormProductRepository(tx),
		stock:     NewGormStockLedger(tx),
		sales:     NewGormSaleRepository(tx),
	}
}

func (r *gormTransactionalRepositories) Customers() partner.CustomerRepository { return r.customers }
func (r *gormTransactionalRepositories) Users() identity.UserRepository        { return r.users }
func (r *gormTransactionalRepositories) Products() catalog.ProductRepository   { return r.products }
func (r *gormTransactionalRepositories) Stock() catalog.StockLedger            { return r.stock }
func (r *gormTransactionalRepositories) Sales() trade.SaleRepository           { return r.sales }

var _ apptrade.TransactionScope = (*GormSaleTransactionScope)(nil)
