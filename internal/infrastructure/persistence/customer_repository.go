package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/techsolutions/pos/internal/domain/partner"
	"github.com/techsolutions/pos/internal/domain/shared"
	"github.com/techsolutions/pos/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id int64) (*partner.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActive lists active customers ordered by name
func (r *GormCustomerRepository) FindActive(ctx context.Context, filter shared.Filter) ([]partner.Customer, error) {
	query := r.db.WithContext(ctx).Model(&models.CustomerModel{}).Where("activo = ?", true)
	if filter.Search != "" {
		term := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(nombre) LIKE ? OR ruc LIKE ?", term, term)
	}
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var customerModels []models.CustomerModel
	if err := query.Order("nombre ASC").Find(&customerModels).Error; err != nil {
		return nil, err
	}
	return toDomainCustomers(customerModels), nil
}

// SearchByName lists active customers whose name contains term
func (r *GormCustomerRepository) SearchByName(ctx context.Context, term string) ([]partner.Customer, error) {
	var customerModels []models.CustomerModel
	err := r.db.WithContext(ctx).
		Where("activo = ? AND LOWER(nombre) LIKE ?", true, "%"+strings.ToLower(term)+"%").
		Order("nombre ASC").
		Limit(maxSearchResults).
		Find(&customerModels).Error
	if err != nil {
		return nil, err
	}
	return toDomainCustomers(customerModels), nil
}

// Save creates or updates a customer
func (r *GormCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	model := models.CustomerModelFromDomain(customer)
	db := r.db.WithContext(ctx)

	if !customer.IsPersisted() {
		if err := db.Create(model).Error; err != nil {
			return err
		}
		customer.ID = model.ID
		customer.CreatedAt = model.CreatedAt
		return nil
	}

	result := db.Model(&models.CustomerModel{}).
		Where("id = ?", customer.ID).
		Updates(map[string]any{
			"nombre":    model.Name,
			"email":     model.Email,
			"telefono":  model.Phone,
			"direccion": model.Address,
			"ruc":       model.TaxID,
			"activo":    model.Active,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Deactivate soft-deletes a customer
func (r *GormCustomerRepository) Deactivate(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).
		Model(&models.CustomerModel{}).
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

func toDomainCustomers(customerModels []models.CustomerModel) []partner.Customer {
	customers := make([]partner.Customer, len(customerModels))
	for i := range customerModels {
		customers[i] = *customerModels[i].ToDomain()
	}
	return customers
}
