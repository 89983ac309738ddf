package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/techsolutions/pos/internal/domain/shared"
	"github.com/techsolutions/pos/internal/domain/trade"
	"github.com/techsolutions/pos/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// savepointInvoice guards the header insert so a duplicate invoice number
// leaves the enclosing transaction usable for a retry.
const savepointInvoice = "sp_sale_header"

const (
	saleHeaderSelect = "v.*, c.nombre AS customer_name, u.nombre AS operator_name"
	saleLineSelect   = "d.*, p.codigo AS product_code, p.nombre AS product_name"
)

// GormSaleRepository implements SaleRepository using GORM.
// InsertHeader relies on a savepoint and must run inside a transaction.
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByID loads a sale with its lines and party names
func (r *GormSaleRepository) FindByID(ctx context.Context, id int64) (*trade.Sale, error) {
	return r.findOne(ctx, "v.id = ?", id)
}

// FindByInvoiceNumber loads a sale with its lines and party names
func (r *GormSaleRepository) FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*trade.Sale, error) {
	return r.findOne(ctx, "v.numero_factura = ?", invoiceNumber)
}

func (r *GormSaleRepository) findOne(ctx context.Context, cond string, arg any) (*trade.Sale, error) {
	var row models.SaleRow
	err := r.headerQuery(ctx).Where(cond, arg).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	sale := row.ToDomain()
	lines, err := r.loadLines(ctx, []int64{sale.ID})
	if err != nil {
		return nil, err
	}
	sale.Lines = append(sale.Lines, lines[sale.ID]...)
	return sale, nil
}

// FindByDateRange lists sales dated within [start, end] by calendar day,
// newest first
func (r *GormSaleRepository) FindByDateRange(ctx context.Context, start, end time.Time) ([]trade.Sale, error) {
	var rows []models.SaleRow
	err := r.headerQuery(ctx).
		Where("v.fecha_venta >= ? AND v.fecha_venta <= ?", models.NewDate(start), models.NewDate(end)).
		Order("v.fecha_venta DESC, v.id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []trade.Sale{}, nil
	}

	ids := make([]int64, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	lines, err := r.loadLines(ctx, ids)
	if err != nil {
		return nil, err
	}

	sales := make([]trade.Sale, len(rows))
	for i := range rows {
		sale := rows[i].ToDomain()
		sale.Lines = append(sale.Lines, lines[sale.ID]...)
		sales[i] = *sale
	}
	return sales, nil
}

func (r *GormSaleRepository) headerQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("ventas AS v").
		Select(saleHeaderSelect).
		Joins("LEFT JOIN clientes c ON c.id = v.cliente_id").
		Joins("LEFT JOIN usuarios u ON u.id = v.usuario_id")
}

func (r *GormSaleRepository) loadLines(ctx context.Context, saleIDs []int64) (map[int64][]trade.SaleLine, error) {
	var rows []models.SaleLineRow
	err := r.db.WithContext(ctx).
		Table("venta_detalles AS d").
		Select(saleLineSelect).
		Joins("LEFT JOIN productos p ON p.id = d.producto_id").
		Where("d.venta_id IN ?", saleIDs).
		Order("d.venta_id, d.id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	bySale := make(map[int64][]trade.SaleLine, len(saleIDs))
	for i := range rows {
		bySale[rows[i].SaleID] = append(bySale[rows[i].SaleID], rows[i].ToDomain())
	}
	return bySale, nil
}

// InsertHeader inserts the sale header under a savepoint and assigns its ID.
// A duplicate invoice number rolls back to the savepoint and returns
// trade.ErrDuplicateInvoice.
func (r *GormSaleRepository) InsertHeader(ctx context.Context, sale *trade.Sale) error {
	model := models.SaleModelFromDomain(sale)
	model.ID = 0
	db := r.db.WithContext(ctx)

	if err := db.SavePoint(savepointInvoice).Error; err != nil {
		return err
	}
	if err := db.Omit(clause.Associations).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if rbErr := db.RollbackTo(savepointInvoice).Error; rbErr != nil {
				return rbErr
			}
			return trade.ErrDuplicateInvoice
		}
		return err
	}

	sale.ID = model.ID
	sale.CreatedAt = model.CreatedAt
	return nil
}

// InsertLines inserts the lines of a persisted sale and assigns their IDs
func (r *GormSaleRepository) InsertLines(ctx context.Context, saleID int64, lines []trade.SaleLine) error {
	if len(lines) == 0 {
		return nil
	}

	lineModels := make([]*models.SaleLineModel, len(lines))
	for i := range lines {
		lineModels[i] = models.SaleLineModelFromDomain(saleID, lines[i])
		lineModels[i].ID = 0
	}
	if err := r.db.WithContext(ctx).Create(&lineModels).Error; err != nil {
		return err
	}

	for i := range lines {
		lines[i].ID = lineModels[i].ID
		lines[i].SaleID = saleID
	}
	return nil
}

// UpdateStatus moves a sale from one status to another only while it is
// still in the from status
func (r *GormSaleRepository) UpdateStatus(ctx context.Context, id int64, from, to trade.SaleStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.SaleModel{}).
		Where("id = ? AND estado = ?", id, string(from)).
		Update("estado", string(to))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}
