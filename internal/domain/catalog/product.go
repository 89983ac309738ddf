package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/techsolutions/pos/internal/domain/shared"
)

// Product is a sellable catalog item. Stock is the single authoritative
// on-hand counter; it is only mutated through the repository's guarded
// stock operations, never by assigning the field and saving.
type Product struct {
	shared.BaseEntity
	Code        string
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	MinStock    int
	Active      bool
}

// NewProduct creates a new active product
func NewProduct(code, name string, price decimal.Decimal, stock, minStock int) (*Product, error) {
	if err := validateProductCode(code); err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}
	if stock < 0 {
		return nil, shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}
	if minStock < 0 {
		return nil, shared.NewDomainError("INVALID_STOCK", "Minimum stock cannot be negative")
	}

	return &Product{
		BaseEntity: shared.NewBaseEntity(),
		Code:       strings.ToUpper(code),
		Name:       name,
		Price:      price.Round(2),
		Stock:      stock,
		MinStock:   minStock,
		Active:     true,
	}, nil
}

// Update changes the descriptive and pricing data of the product.
// Price changes never touch historical sales, which keep their own snapshot.
func (p *Product) Update(name, description string, price decimal.Decimal, minStock int) error {
	if err := validateProductName(name); err != nil {
		return err
	}
	if err := validatePrice(price); err != nil {
		return err
	}
	if minStock < 0 {
		return shared.NewDomainError("INVALID_STOCK", "Minimum stock cannot be negative")
	}

	p.Name = name
	p.Description = description
	p.Price = price.Round(2)
	p.MinStock = minStock
	return nil
}

// Deactivate soft-deletes the product
func (p *Product) Deactivate() {
	p.Active = false
}

// HasSufficientStock reports whether qty units can be taken from stock
func (p *Product) HasSufficientStock(qty int) bool {
	return p.Stock >= qty
}

// IsLowStock reports whether stock has reached the minimum threshold
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.MinStock
}

func validateProductCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Product code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_CODE", "Product code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateProductName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	return nil
}
