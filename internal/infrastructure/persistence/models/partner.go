package models

import "github.com/techsolutions/pos/internal/domain/partner"

// CustomerModel is the persistence model for the Customer entity
type CustomerModel struct {
	BaseModel
	Name    string `gorm:"column:nombre;type:varchar(100);not null"`
	Email   string `gorm:"column:email;type:varchar(100)"`
	Phone   string `gorm:"column:telefono;type:varchar(20)"`
	Address string `gorm:"column:direccion;type:text"`
	TaxID   string `gorm:"column:ruc;type:varchar(20)"`
	Active  bool   `gorm:"column:activo;not null"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "clientes"
}

// ToDomain converts the persistence model to a domain Customer entity
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		Email:      m.Email,
		Phone:      m.Phone,
		Address:    m.Address,
		TaxID:      m.TaxID,
		Active:     m.Active,
	}
}

// FromDomain populates the persistence model from a domain Customer entity
func (m *CustomerModel) FromDomain(c *partner.Customer) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.Name = c.Name
	m.Email = c.Email
	m.Phone = c.Phone
	m.Address = c.Address
	m.TaxID = c.TaxID
	m.Active = c.Active
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer entity
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}
