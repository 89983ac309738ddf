package persistence

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/techsolutions/pos/internal/domain/trade"
	"github.com/techsolutions/pos/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSalesReportRepository implements SalesReportRepository using GORM.
// Only completed sales are aggregated.
type GormSalesReportRepository struct {
	db *gorm.DB
}

// NewGormSalesReportRepository creates a new GormSalesReportRepository
func NewGormSalesReportRepository(db *gorm.DB) *GormSalesReportRepository {
	return &GormSalesReportRepository{db: db}
}

// Summarize returns count and sums of completed sales dated within [start, end]
func (r *GormSalesReportRepository) Summarize(ctx context.Context, start, end time.Time) (*trade.SalesSummary, error) {
	var result struct {
		SaleCount int64
		Subtotal  decimal.Decimal
		Tax       decimal.Decimal
		Total     decimal.Decimal
	}

	err := r.completedInRange(ctx, start, end).
		Select(`
			COUNT(*) as sale_count,
			COALESCE(SUM(subtotal), 0) as subtotal,
			COALESCE(SUM(impuesto), 0) as tax,
			COALESCE(SUM(total), 0) as total
		`).
		Scan(&result).Error
	if err != nil {
		return nil, err
	}

	return &trade.SalesSummary{
		Start:     start,
		End:       end,
		SaleCount: result.SaleCount,
		Subtotal:  result.Subtotal.Round(2),
		Tax:       result.Tax.Round(2),
		Total:     result.Total.Round(2),
	}, nil
}

// DailyTotals returns per-day totals of completed sales. Days without sales
// are omitted.
func (r *GormSalesReportRepository) DailyTotals(ctx context.Context, start, end time.Time) ([]trade.DailySales, error) {
	var results []struct {
		Day       models.Date
		SaleCount int64
		Total     decimal.Decimal
	}

	err := r.completedInRange(ctx, start, end).
		Select(`
			fecha_venta as day,
			COUNT(*) as sale_count,
			COALESCE(SUM(total), 0) as total
		`).
		Group("fecha_venta").
		Order("fecha_venta ASC").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	days := make([]trade.DailySales, len(results))
	for i, res := range results {
		days[i] = trade.DailySales{
			Day:       res.Day.In(start.Location()),
			SaleCount: res.SaleCount,
			Total:     res.Total.Round(2),
		}
	}
	return days, nil
}

func (r *GormSalesReportRepository) completedInRange(ctx context.Context, start, end time.Time) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.SaleModel{}).
		Where("estado = ?", string(trade.SaleStatusCompleted)).
		Where("fecha_venta >= ? AND fecha_venta <= ?", models.NewDate(start), models.NewDate(end))
}
