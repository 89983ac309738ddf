package catalog

import (
	"context"
	"errors"
	"strings"

	apptrade "github.com/techsolutions/pos/internal/application/trade"
	"github.com/techsolutions/pos/internal/domain/catalog"
	"github.com/techsolutions/pos/internal/domain/shared"
	"github.com/techsolutions/pos/internal/domain/trade"
)

// DefaultMinStock applies when a product is created without a minimum
const DefaultMinStock = 5

// ProductService handles catalog maintenance. Stock is set on create and
// afterwards moves only through sales, voids and AdjustStock.
type ProductService struct {
	productRepo catalog.ProductRepository
	scope       apptrade.TransactionScope
}

// NewProductService creates a new ProductService. Stock adjustments run in
// scope so they serialize with sale commits.
func NewProductService(productRepo catalog.ProductRepository, scope apptrade.TransactionScope) *ProductService {
	return &ProductService{productRepo: productRepo, scope: scope}
}

// Create creates a new product with a unique code
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	minStock := DefaultMinStock
	if req.MinStock != nil {
		minStock = *req.MinStock
	}

	product, err := catalog.NewProduct(req.Code, req.Name, req.Price, req.Stock, minStock)
	if err != nil {
		return nil, err
	}
	product.Description = strings.TrimSpace(req.Description)

	if _, err := s.productRepo.FindByCode(ctx, product.Code); err == nil {
		return nil, shared.NewDomainError(shared.ErrAlreadyExists.Code, "Product with this code already exists")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID returns a product by id
func (s *ProductService) GetByID(ctx context.Context, id int64) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// GetByCode returns a product by its code, case-insensitively
func (s *ProductService) GetByCode(ctx context.Context, code string) (*ProductResponse, error) {
	product, err := s.productRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List returns active products ordered by name
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, error) {
	f := shared.DefaultFilter()
	f.Search = strings.TrimSpace(filter.Search)
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}

	products, err := s.productRepo.FindActive(ctx, f)
	if err != nil {
		return nil, err
	}
	return ToProductResponses(products), nil
}

// SearchByName returns active products whose name contains term
func (s *ProductService) SearchByName(ctx context.Context, term string) ([]ProductResponse, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Search term is required")
	}
	products, err := s.productRepo.SearchByName(ctx, term)
	if err != nil {
		return nil, err
	}
	return ToProductResponses(products), nil
}

// Update changes name, description, price or minimum stock
func (s *ProductService) Update(ctx context.Context, id int64, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, shared.NewDomainError(shared.ErrInvalidState.Code, "Inactive products cannot be updated")
	}

	name, description, price, minStock := product.Name, product.Description, product.Price, product.MinStock
	if req.Name != nil {
		name = *req.Name
	}
	if req.Description != nil {
		description = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		price = *req.Price
	}
	if req.MinStock != nil {
		minStock = *req.MinStock
	}

	if err := product.Update(name, description, price, minStock); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// AdjustStock applies a restock (positive delta) or a write-off (negative
// delta) and returns the product as committed.
func (s *ProductService) AdjustStock(ctx context.Context, id int64, req AdjustStockRequest) (*ProductResponse, error) {
	if req.Delta == 0 {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Stock adjustment must not be zero")
	}

	var adjusted *catalog.Product
	err := s.scope.Execute(ctx, func(repos apptrade.TransactionalRepositories) error {
		product, err := repos.Products().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !product.Active {
			return shared.NewDomainError(shared.ErrInvalidState.Code, "Inactive products cannot be restocked")
		}
		if product.Stock+req.Delta < 0 {
			return trade.NewInsufficientStockError(id, -req.Delta, product.Stock)
		}

		if err := repos.Stock().AdjustStock(ctx, id, req.Delta); err != nil {
			return err
		}
		adjusted, err = repos.Products().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	response := ToProductResponse(adjusted)
	return &response, nil
}

// Deactivate soft-deletes a product. Past sales keep referencing it.
func (s *ProductService) Deactivate(ctx context.Context, id int64) error {
	return s.productRepo.Deactivate(ctx, id)
}
