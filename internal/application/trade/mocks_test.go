package trade

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/techsolutions/pos/internal/domain/catalog"
	"github.com/techsolutions/pos/internal/domain/identity"
	"github.com/techsolutions/pos/internal/domain/partner"
	"github.com/techsolutions/pos/internal/domain/shared"
	"github.com/techsolutions/pos/internal/domain/trade"
)

// MockCustomerRepository is a mock implementation of partner.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id int64) (*partner.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindActive(ctx context.Context, filter shared.Filter) ([]partner.Customer, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) SearchByName(ctx context.Context, term string) ([]partner.Customer, error) {
	args := m.Called(ctx, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

func (m *MockCustomerRepository) Deactivate(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id int64) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id int64) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByCode(ctx context.Context, code string) (*catalog.Product, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindActive(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) SearchByName(ctx context.Context, term string) ([]catalog.Product, error) {
	args := m.Called(ctx, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindLowStock(ctx context.Context) ([]catalog.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) Deactivate(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// MockStockLedger is a mock implementation of catalog.StockLedger
type MockStockLedger struct {
	mock.Mock
}

func (m *MockStockLedger) DecrementStock(ctx context.Context, productID int64, qty int) error {
	return m.Called(ctx, productID, qty).Error(0)
}

func (m *MockStockLedger) RestoreStock(ctx context.Context, productID int64, qty int) error {
	return m.Called(ctx, productID, qty).Error(0)
}

func (m *MockStockLedger) AdjustStock(ctx context.Context, productID int64, delta int) error {
	return m.Called(ctx, productID, delta).Error(0)
}

// MockSaleRepository is a mock implementation of trade.SaleRepository
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) FindByID(ctx context.Context, id int64) (*trade.Sale, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*trade.Sale, error) {
	args := m.Called(ctx, invoiceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindByDateRange(ctx context.Context, start, end time.Time) ([]trade.Sale, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.Sale), args.Error(1)
}

func (m *MockSaleRepository) InsertHeader(ctx context.Context, sale *trade.Sale) error {
	return m.Called(ctx, sale).Error(0)
}

func (m *MockSaleRepository) InsertLines(ctx context.Context, saleID int64, lines []trade.SaleLine) error {
	return m.Called(ctx, saleID, lines).Error(0)
}

func (m *MockSaleRepository) UpdateStatus(ctx context.Context, id int64, from, to trade.SaleStatus) error {
	return m.Called(ctx, id, from, to).Error(0)
}

// MockInvoiceGenerator is a mock implementation of InvoiceNumberGenerator
type MockInvoiceGenerator struct {
	mock.Mock
}

func (m *MockInvoiceGenerator) Next(ctx context.Context, at time.Time) (string, error) {
	args := m.Called(ctx, at)
	return args.String(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockSaleRecorder records engine and event metrics
type MockSaleRecorder struct {
	mock.Mock
}

func (m *MockSaleRecorder) RecordSaleFailed(ctx context.Context, operation, kind string) {
	m.Called(ctx, operation, kind)
}

func (m *MockSaleRecorder) RecordDuration(ctx context.Context, operation string, d time.Duration) {
	m.Called(ctx, operation, d)
}

func (m *MockSaleRecorder) RecordSaleCommitted(ctx context.Context, total decimal.Decimal, items int) {
	m.Called(ctx, total, items)
}

func (m *MockSaleRecorder) RecordSaleVoided(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockSaleRecorder) RecordLowStock(ctx context.Context, productCode string) {
	m.Called(ctx, productCode)
}

// unavailableScope behaves like a scope whose begin failed
type unavailableScope struct{}

func (unavailableScope) Execute(context.Context, func(TransactionalRepositories) error) error {
	return shared.ErrUnavailable
}
