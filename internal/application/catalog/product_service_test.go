package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apptrade "github.com/techsolutions/pos/internal/application/trade"
	"github.com/techsolutions/pos/internal/domain/catalog"
	"github.com/techsolutions/pos/internal/domain/shared"
	"github.com/techsolutions/pos/internal/domain/trade"
)

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
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) SearchByName(ctx context.Context, term string) ([]catalog.Product, error) {
	args := m.Called(ctx, term)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindLowStock(ctx context.Context) ([]catalog.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Deactivate(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
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

func newProductService(repo *MockProductRepository, ledger *MockStockLedger) *ProductService {
	if ledger == nil {
		ledger = new(MockStockLedger)
	}
	return NewProductService(repo, apptrade.NewNoOpTransactionScope(nil, nil, repo, ledger, nil))
}

func newTestProduct(t *testing.T, id int64, code string, stock, minStock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(code, "Producto "+code, decimal.NewFromInt(100), stock, minStock)
	require.NoError(t, err)
	p.ID = id
	return p
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates with default minimum stock", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := newProductService(repo, nil)
		repo.On("FindByCode", ctx, "LAP-002").Return(nil, shared.ErrNotFound)
		repo.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).
			Run(func(args mock.Arguments) { args.Get(1).(*catalog.Product).ID = 11 }).
			Return(nil)

		resp, err := svc.Create(ctx, CreateProductRequest{
			Code:        "lap-002",
			Name:        "Laptop Lenovo",
			Description: "  14 pulgadas ",
			Price:       decimal.RequireFromString("999.999"),
			Stock:       4,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(11), resp.ID)
		assert.Equal(t, "LAP-002", resp.Code)
		assert.Equal(t, "14 pulgadas", resp.Description)
		assert.Equal(t, DefaultMinStock, resp.MinStock)
		assert.True(t, resp.LowStock)
		assert.True(t, resp.Price.Equal(decimal.NewFromInt(1000)))
		repo.AssertExpectations(t)
	})

	t.Run("keeps explicit zero minimum", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := newProductService(repo, nil)
		repo.On("FindByCode", ctx, "TEC-002").Return(nil, shared.ErrNotFound)
		repo.On("Save", ctx, mock.Anything).Return(nil)

		zero := 0
		resp, err := svc.Create(ctx, CreateProductRequest{Code: "TEC-002", Name: "Teclado", Price: decimal.NewFromInt(20), Stock: 3, MinStock: &zero})

		require.NoError(t, err)
		assert.Equal(t, 0, resp.MinStock)
		assert.False(t, resp.LowStock)
	})

	t.Run("rejects duplicate code", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := newProductService(repo, nil)
		repo.On("FindByCode", ctx, "LAP-001").Return(newTestProduct(t, 1, "LAP-001", 10, 5), nil)

		_, err := svc.Create(ctx, CreateProductRequest{Code: "LAP-001", Name: "Otra", Price: decimal.NewFromInt(1)})

		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects negative price before touching storage", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := newProductService(repo, nil)

		_, err := svc.Create(ctx, CreateProductRequest{Code: "X-1", Name: "X", Price: decimal.NewFromInt(-1)})

		require.Error(t, err)
		repo.AssertNotCalled(t, "FindByCode", mock.Anything, mock.Anything)
	})

	t.Run("propagates lookup failure", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := newProductService(repo, nil)
		boom := errors.New("connection reset")
		repo.On("FindByCode", ctx, "X-1").Return(nil, boom)

		_, err := svc.Create(ctx, CreateProductRequest{Code: "X-1", Name: "X", Price: decimal.NewFromInt(1)})

		assert.ErrorIs(t, err, boom)
	})
}

func TestProductService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("changes only the given fields", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := newProductService(repo, nil)
		existing := newTestProduct(t, 3, "MON-001", 25, 5)
		repo.On("FindByID", ctx, int64(3)).Return(existing, nil)
		repo.On("Save", ctx, existing).Return(nil)

		price := decimal.NewFromInt(260)
		minStock := 8
		resp, err := svc.Update(ctx, 3, UpdateProductRequest{Price: &price, MinStock: &minStock})

		require.NoError(t, err)
		assert.Equal(t, "Producto MON-001", resp.Name)
		assert.True(t, resp.Price.Equal(price))
		assert.Equal(t, 8, resp.MinStock)
		assert.Equal(t, 25, resp.Stock)
	})

	t.Run("inactive product is rejected", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := newProductService(repo, nil)
		existing := newTestProduct(t, 3, "MON-001", 25, 5)
		existing.Deactivate()
		repo.On("FindByID", ctx, int64(3)).Return(existing, nil)

		name := "Nuevo"
		_, err := svc.Update(ctx, 3, UpdateProductRequest{Name: &name})

		assert.ErrorIs(t, err, shared.ErrInvalidState)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("missing product", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := newProductService(repo, nil)
		repo.On("FindByID", ctx, int64(99)).Return(nil, shared.ErrNotFound)

		_, err := svc.Update(ctx, 99, UpdateProductRequest{})

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestProductService_Queries(t *testing.T) {
	ctx := context.Background()

	t.Run("list applies defaults and search", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := newProductService(repo, nil)
		want := shared.Filter{Page: 2, PageSize: 50, Search: "lap"}
		repo.On("FindActive", ctx, want).Return([]catalog.Product{*newTestProduct(t, 1, "LAP-001", 10, 5)}, nil)

		list, err := svc.List(ctx, ProductListFilter{Search: " lap ", Page: 2})

		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "LAP-001", list[0].Code)
	})

	t.Run("search requires a term", func(t *testing.T) {
		svc := newProductService(new(MockProductRepository), nil)
		_, err := svc.SearchByName(ctx, "   ")
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("get by code", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := newProductService(repo, nil)
		repo.On("FindByCode", ctx, "lap-001").Return(newTestProduct(t, 1, "LAP-001", 10, 5), nil)

		resp, err := svc.GetByCode(ctx, "lap-001")

		require.NoError(t, err)
		assert.Equal(t, int64(1), resp.ID)
	})

	t.Run("deactivate delegates", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := newProductService(repo, nil)
		repo.On("Deactivate", ctx, int64(4)).Return(shared.ErrNotFound)

		assert.ErrorIs(t, svc.Deactivate(ctx, 4), shared.ErrNotFound)
	})
}

func TestProductService_AdjustStock(t *testing.T) {
	ctx := context.Background()

	t.Run("restock returns the committed stock", func(t *testing.T) {
		repo := new(MockProductRepository)
		ledger := new(MockStockLedger)
		svc := newProductService(repo, ledger)
		repo.On("FindByID", ctx, int64(1)).Return(newTestProduct(t, 1, "LAP-001", 2, 5), nil).Once()
		ledger.On("AdjustStock", ctx, int64(1), 8).Return(nil)
		repo.On("FindByID", ctx, int64(1)).Return(newTestProduct(t, 1, "LAP-001", 10, 5), nil).Once()

		resp, err := svc.AdjustStock(ctx, 1, AdjustStockRequest{Delta: 8})

		require.NoError(t, err)
		assert.Equal(t, 10, resp.Stock)
		assert.False(t, resp.LowStock)
		repo.AssertExpectations(t)
		ledger.AssertExpectations(t)
	})

	t.Run("write-off below zero is insufficient stock", func(t *testing.T) {
		repo := new(MockProductRepository)
		ledger := new(MockStockLedger)
		svc := newProductService(repo, ledger)
		repo.On("FindByID", ctx, int64(1)).Return(newTestProduct(t, 1, "LAP-001", 2, 5), nil)

		_, err := svc.AdjustStock(ctx, 1, AdjustStockRequest{Delta: -5})

		var stockErr *trade.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, 5, stockErr.Requested)
		assert.Equal(t, 2, stockErr.Available)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		ledger.AssertNotCalled(t, "AdjustStock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("zero delta is rejected before storage", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := newProductService(repo, nil)

		_, err := svc.AdjustStock(ctx, 1, AdjustStockRequest{})

		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("inactive product is rejected", func(t *testing.T) {
		repo := new(MockProductRepository)
		ledger := new(MockStockLedger)
		svc := newProductService(repo, ledger)
		inactive := newTestProduct(t, 1, "LAP-001", 2, 5)
		inactive.Deactivate()
		repo.On("FindByID", ctx, int64(1)).Return(inactive, nil)

		_, err := svc.AdjustStock(ctx, 1, AdjustStockRequest{Delta: 3})

		assert.ErrorIs(t, err, shared.ErrInvalidState)
		ledger.AssertNotCalled(t, "AdjustStock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("guard miss surfaces as a stock conflict", func(t *testing.T) {
		repo := new(MockProductRepository)
		ledger := new(MockStockLedger)
		svc := newProductService(repo, ledger)
		repo.On("FindByID", ctx, int64(1)).Return(newTestProduct(t, 1, "LAP-001", 2, 5), nil)
		ledger.On("AdjustStock", ctx, int64(1), -2).Return(trade.NewConcurrentStockConflictError(1))

		_, err := svc.AdjustStock(ctx, 1, AdjustStockRequest{Delta: -2})

		assert.ErrorIs(t, err, trade.ErrConcurrentStockConflict)
	})

	t.Run("missing product", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := newProductService(repo, nil)
		repo.On("FindByID", ctx, int64(99)).Return(nil, shared.ErrNotFound)

		_, err := svc.AdjustStock(ctx, 99, AdjustStockRequest{Delta: 1})

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
