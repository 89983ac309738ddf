package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/techsolutions/pos/internal/domain/shared"
	"github.com/techsolutions/pos/internal/domain/trade"
)

// SaleModel is the persistence model for the Sale aggregate root header
type SaleModel struct {
	BaseModel
	InvoiceNumber string          `gorm:"column:numero_factura;type:varchar(50);not null;uniqueIndex"`
	CustomerID    *int64          `gorm:"column:cliente_id;index"`
	OperatorID    int64           `gorm:"column:usuario_id;not null;index"`
	SaleDate      Date            `gorm:"column:fecha_venta;type:date;not null;index"`
	Subtotal      decimal.Decimal `gorm:"column:subtotal;type:decimal(10,2);not null"`
	Tax           decimal.Decimal `gorm:"column:impuesto;type:decimal(10,2);not null"`
	Total         decimal.Decimal `gorm:"column:total;type:decimal(10,2);not null"`
	Status        string          `gorm:"column:estado;type:varchar(20);not null;check:chk_ventas_estado,estado IN ('PENDIENTE','COMPLETADA','CANCELADA')"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "ventas"
}

// ToDomain converts the header to a domain Sale without lines
func (m *SaleModel) ToDomain() *trade.Sale {
	return &trade.Sale{
		BaseAggregateRoot: shared.BaseAggregateRoot{BaseEntity: m.BaseModel.ToDomain()},
		InvoiceNumber:     m.InvoiceNumber,
		CustomerID:        m.CustomerID,
		OperatorID:        m.OperatorID,
		SaleDate:          m.SaleDate.In(time.Local),
		Subtotal:          m.Subtotal,
		Tax:               m.Tax,
		Total:             m.Total,
		Status:            trade.SaleStatus(m.Status),
		Lines:             make([]trade.SaleLine, 0),
	}
}

// FromDomain populates the header from a domain Sale
func (m *SaleModel) FromDomain(s *trade.Sale) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.InvoiceNumber = s.InvoiceNumber
	m.CustomerID = s.CustomerID
	m.OperatorID = s.OperatorID
	m.SaleDate = NewDate(s.SaleDate)
	m.Subtotal = s.Subtotal
	m.Tax = s.Tax
	m.Total = s.Total
	m.Status = string(s.Status)
}

// SaleModelFromDomain creates a new header model from a domain Sale
func SaleModelFromDomain(s *trade.Sale) *SaleModel {
	m := &SaleModel{}
	m.FromDomain(s)
	return m
}

// SaleLineModel is the persistence model for a sale line
type SaleLineModel struct {
	ID        int64           `gorm:"column:id;primaryKey;autoIncrement"`
	SaleID    int64           `gorm:"column:venta_id;not null;index"`
	ProductID int64           `gorm:"column:producto_id;not null;index"`
	Quantity  int             `gorm:"column:cantidad;not null"`
	UnitPrice decimal.Decimal `gorm:"column:precio_unitario;type:decimal(10,2);not null"`
	Subtotal  decimal.Decimal `gorm:"column:subtotal;type:decimal(10,2);not null"`
}

// TableName returns the table name for GORM
func (SaleLineModel) TableName() string {
	return "venta_detalles"
}

// ToDomain converts the persistence model to a domain SaleLine
func (m *SaleLineModel) ToDomain() trade.SaleLine {
	return trade.SaleLine{
		ID:        m.ID,
		SaleID:    m.SaleID,
		ProductID: m.ProductID,
		Quantity:  m.Quantity,
		UnitPrice: m.UnitPrice,
		Subtotal:  m.Subtotal,
	}
}

// SaleLineModelFromDomain creates a line model for the given sale
func SaleLineModelFromDomain(saleID int64, l trade.SaleLine) *SaleLineModel {
	return &SaleLineModel{
		ID:        l.ID,
		SaleID:    saleID,
		ProductID: l.ProductID,
		Quantity:  l.Quantity,
		UnitPrice: l.UnitPrice,
		Subtotal:  l.Subtotal,
	}
}

// SaleRow is a sale header joined with its party names
type SaleRow struct {
	SaleModel
	CustomerName *string `gorm:"column:customer_name"`
	OperatorName *string `gorm:"column:operator_name"`
}

// ToDomain converts the row to a domain Sale without lines
func (r *SaleRow) ToDomain() *trade.Sale {
	s := r.SaleModel.ToDomain()
	if r.CustomerName != nil {
		s.CustomerName = *r.CustomerName
	}
	if r.OperatorName != nil {
		s.OperatorName = *r.OperatorName
	}
	return s
}

// SaleLineRow is a sale line joined with its product code and name
type SaleLineRow struct {
	SaleLineModel
	ProductCode *string `gorm:"column:product_code"`
	ProductName *string `gorm:"column:product_name"`
}

// ToDomain converts the row to a domain SaleLine
func (r *SaleLineRow) ToDomain() trade.SaleLine {
	l := r.SaleLineModel.ToDomain()
	if r.ProductCode != nil {
		l.ProductCode = *r.ProductCode
	}
	if r.ProductName != nil {
		l.ProductName = *r.ProductName
	}
	return l
}
