package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/techsolutions/pos/internal/domain/catalog"
	"github.com/techsolutions/pos/internal/domain/shared"
	"github.com/techsolutions/pos/internal/domain/trade"
	"github.com/techsolutions/pos/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// maxSearchResults caps name searches
const maxSearchResults = 50

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id int64) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds a product by its unique code
func (r *GormProductRepository) FindByCode(ctx context.Context, code string) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).Where("codigo = ?", strings.ToUpper(code)).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActive lists active products ordered by name
func (r *GormProductRepository) FindActive(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.ProductModel{}).Where("activo = ?", true)
	if filter.Search != "" {
		term := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(nombre) LIKE ? OR LOWER(codigo) LIKE ?", term, term)
	}
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var productModels []models.ProductModel
	if err := query.Order("nombre ASC").Find(&productModels).Error; err != nil {
		return nil, err
	}
	return toDomainProducts(productModels), nil
}

// SearchByName lists active products whose name contains term
func (r *GormProductRepository) SearchByName(ctx context.Context, term string) ([]catalog.Product, error) {
	var productModels []models.ProductModel
	err := r.db.WithContext(ctx).
		Where("activo = ? AND LOWER(nombre) LIKE ?", true, "%"+strings.ToLower(term)+"%").
		Order("nombre ASC").
		Limit(maxSearchResults).
		Find(&productModels).Error
	if err != nil {
		return nil, err
	}
	return toDomainProducts(productModels), nil
}

// FindLowStock lists active products at or below their minimum stock
func (r *GormProductRepository) FindLowStock(ctx context.Context) ([]catalog.Product, error) {
	var productModels []models.ProductModel
	err := r.db.WithContext(ctx).
		Where("activo = ? AND stock <= stock_minimo", true).
		Order("stock ASC, nombre ASC").
		Find(&productModels).Error
	if err != nil {
		return nil, err
	}
	return toDomainProducts(productModels), nil
}

// Save creates a product, or updates the catalog fields of an existing one.
// Stock is never written on update.
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	model := models.ProductModelFromDomain(product)
	db := r.db.WithContext(ctx)

	if !product.IsPersisted() {
		if err := db.Create(model).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.ErrAlreadyExists
			}
			return err
		}
		product.ID = model.ID
		product.CreatedAt = model.CreatedAt
		return nil
	}

	result := db.Model(&models.ProductModel{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"nombre":       model.Name,
			"descripcion":  model.Description,
			"precio":       model.Price,
			"stock_minimo": model.MinStock,
			"activo":       model.Active,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Deactivate soft-deletes a product
func (r *GormProductRepository) Deactivate(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id = ?", id).
		Update("activo", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func toDomainProducts(productModels []models.ProductModel) []catalog.Product {
	products := make([]catalog.Product, len(productModels))
	for i := range productModels {
		products[i] = *productModels[i].ToDomain()
	}
	return products
}

// GormStockLedger applies predicate-guarded stock mutations. It must be
// built on a transaction handle so the writes commit or roll back together
// with the sale they belong to.
type GormStockLedger struct {
	db *gorm.DB
}

// NewGormStockLedger creates a new GormStockLedger
func NewGormStockLedger(db *gorm.DB) *GormStockLedger {
	return &GormStockLedger{db: db}
}

// DecrementStock subtracts qty from an active product only while enough
// stock remains. No matching row means the stock moved since it was read.
func (l *GormStockLedger) DecrementStock(ctx context.Context, productID int64, qty int) error {
	result := l.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id = ? AND activo = ? AND stock >= ?", productID, true, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return trade.NewConcurrentStockConflictError(productID)
	}
	return nil
}

// RestoreStock adds qty back to an active product
func (l *GormStockLedger) RestoreStock(ctx context.Context, productID int64, qty int) error {
	result := l.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id = ? AND activo = ?", productID, true).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// AdjustStock applies a signed restock or write-off to an active product.
// The guard keeps the column non-negative; no matching row means the
// product is gone or the stock moved below what the correction assumed.
func (l *GormStockLedger) AdjustStock(ctx context.Context, productID int64, delta int) error {
	result := l.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id = ? AND activo = ? AND stock + ? >= 0", productID, true, delta).
		UpdateColumn("stock", gorm.Expr("stock + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return trade.NewConcurrentStockConflictError(productID)
	}
	return nil
}
