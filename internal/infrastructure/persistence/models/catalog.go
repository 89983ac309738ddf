package models

import (
	"github.com/shopspring/decimal"
	"github.com/techsolutions/pos/internal/domain/catalog"
)

// ProductModel is the persistence model for the Product entity
type ProductModel struct {
	BaseModel
	Code        string          `gorm:"column:codigo;type:varchar(50);not null;uniqueIndex"`
	Name        string          `gorm:"column:nombre;type:varchar(100);not null"`
	Description string          `gorm:"column:descripcion;type:text"`
	Price       decimal.Decimal `gorm:"column:precio;type:decimal(10,2);not null"`
	Stock       int             `gorm:"column:stock;not null;check:chk_productos_stock,stock >= 0"`
	MinStock    int             `gorm:"column:stock_minimo;not null"`
	Active      bool            `gorm:"column:activo;not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "productos"
}

// ToDomain converts the persistence model to a domain Product entity
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseEntity:  m.BaseModel.ToDomain(),
		Code:        m.Code,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		Stock:       m.Stock,
		MinStock:    m.MinStock,
		Active:      m.Active,
	}
}

// FromDomain populates the persistence model from a domain Product entity
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.Code = p.Code
	m.Name = p.Name
	m.Description = p.Description
	m.Price = p.Price
	m.Stock = p.Stock
	m.MinStock = p.MinStock
	m.Active = p.Active
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
