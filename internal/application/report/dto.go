package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesSummaryResponse aggregates completed sales over a period
type SalesSummaryResponse struct {
	StartDate     string          `json:"start_date"`
	EndDate       string          `json:"end_date"`
	SaleCount     int64           `json:"sale_count"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
}

// DailySalesResponse is one point of the daily sales series
type DailySalesResponse struct {
	Date      string          `json:"date"`
	SaleCount int64           `json:"sale_count"`
	Total     decimal.Decimal `json:"total"`
}

// DateRangeQuery is the query string of date range endpoints
type DateRangeQuery struct {
	StartDate string `form:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string `form:"end_date" binding:"required,datetime=2006-01-02"`
}

// Parse returns the range as local midnights
func (q DateRangeQuery) Parse() (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(dateLayout, q.StartDate, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := time.ParseInLocation(dateLayout, q.EndDate, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// DefaultSalesListDays is the window a sales listing covers when the
// request names no start date
const DefaultSalesListDays = 7

// OpenDateRangeQuery is a date range whose bounds may be omitted
type OpenDateRangeQuery struct {
	StartDate string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date" binding:"omitempty,datetime=2006-01-02"`
}

// Resolve returns the range as local midnights. A missing end is today and
// a missing start is DefaultSalesListDays days back from the end, inclusive.
func (q OpenDateRangeQuery) Resolve(now time.Time) (time.Time, time.Time, error) {
	local := now.In(time.Local)
	end := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.Local)
	if q.EndDate != "" {
		parsed, err := time.ParseInLocation(dateLayout, q.EndDate, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = parsed
	}

	start := end.AddDate(0, 0, -(DefaultSalesListDays - 1))
	if q.StartDate != "" {
		parsed, err := time.ParseInLocation(dateLayout, q.StartDate, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = parsed
	}
	return start, end, nil
}
