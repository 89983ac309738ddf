package catalog

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/techsolutions/pos/internal/domain/catalog"
)

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Code        string          `json:"code" binding:"required,min=1,max=50"`
	Name        string          `json:"name" binding:"required,min=1,max=100"`
	Description string          `json:"description" binding:"max=2000"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Stock       int             `json:"stock" binding:"min=0"`
	MinStock    *int            `json:"min_stock" binding:"omitempty,min=0"`
}

// UpdateProductRequest changes the catalog fields of a product. Stock is
// not editable here; see AdjustStockRequest.
type UpdateProductRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string          `json:"description" binding:"omitempty,max=2000"`
	Price       *decimal.Decimal `json:"price"`
	MinStock    *int             `json:"min_stock" binding:"omitempty,min=0"`
}

// AdjustStockRequest is a signed manual stock correction: positive for a
// restock, negative for a write-off
type AdjustStockRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// ProductListFilter represents filter options for the product list
type ProductListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID          int64           `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	MinStock    int             `json:"min_stock"`
	LowStock    bool            `json:"low_stock"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		MinStock:    p.MinStock,
		LowStock:    p.IsLowStock(),
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
	}
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out
}
