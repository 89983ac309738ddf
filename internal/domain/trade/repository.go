package trade

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SaleRepository defines the interface for sale persistence
type SaleRepository interface {
	// FindByID loads a sale header with its lines
	FindByID(ctx context.Context, id int64) (*Sale, error)

	// FindByInvoiceNumber loads a sale header with its lines
	FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*Sale, error)

	// FindByDateRange lists sales whose sale date falls in [start, end] by
	// calendar day, newest first, with lines and party names
	FindByDateRange(ctx context.Context, start, end time.Time) ([]Sale, error)

	// InsertHeader inserts the sale header and assigns its ID.
	// Returns ErrDuplicateInvoice when the invoice number is taken; the
	// enclosing transaction stays usable in that case.
	InsertHeader(ctx context.Context, sale *Sale) error

	// InsertLines inserts the lines of a persisted sale and assigns their IDs
	InsertLines(ctx context.Context, saleID int64, lines []SaleLine) error

	// UpdateStatus moves a sale from one status to another, only if it is
	// still in the from status. Returns shared.ErrConcurrencyConflict otherwise.
	UpdateStatus(ctx context.Context, id int64, from, to SaleStatus) error
}

// SalesSummary aggregates completed sales over a period
type SalesSummary struct {
	Start     time.Time
	End       time.Time
	SaleCount int64
	Subtotal  decimal.Decimal
	Tax       decimal.Decimal
	Total     decimal.Decimal
}

// DailySales is the total of completed sales for one calendar day
type DailySales struct {
	Day       time.Time
	SaleCount int64
	Total     decimal.Decimal
}

// SalesReportRepository runs read-only aggregates over completed sales
type SalesReportRepository interface {
	Summarize(ctx context.Context, start, end time.Time) (*SalesSummary, error)
	DailyTotals(ctx context.Context, start, end time.Time) ([]DailySales, error)
}
