package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/techsolutions/pos/internal/domain/shared"
	"github.com/techsolutions/pos/internal/domain/trade"
)

const (
	dateLayout = "2006-01-02"

	// MaxDailySalesDays bounds the dashboard series
	MaxDailySalesDays = 366
)

// ReportService builds sales figures from completed sales only
type ReportService struct {
	reports trade.SalesReportRepository
	now     func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(reports trade.SalesReportRepository) *ReportService {
	return &ReportService{reports: reports, now: time.Now}
}

// SalesSummary returns count, subtotal, tax and total of completed sales
// dated within [start, end]
func (s *ReportService) SalesSummary(ctx context.Context, start, end time.Time) (*SalesSummaryResponse, error) {
	start, end = startOfDay(start), startOfDay(end)
	if end.Before(start) {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Start date must not be after end date")
	}

	summary, err := s.reports.Summarize(ctx, start, end)
	if err != nil {
		return nil, err
	}

	average := decimal.Zero
	if summary.SaleCount > 0 {
		average = summary.Total.Div(decimal.NewFromInt(summary.SaleCount)).Round(2)
	}

	return &SalesSummaryResponse{
		StartDate:     start.Format(dateLayout),
		EndDate:       end.Format(dateLayout),
		SaleCount:     summary.SaleCount,
		Subtotal:      summary.Subtotal,
		Tax:           summary.Tax,
		Total:         summary.Total,
		AverageTicket: average,
	}, nil
}

// DailySales returns one entry per day for the last days days, today
// included, oldest first. Days without completed sales have zero totals.
func (s *ReportService) DailySales(ctx context.Context, days int) ([]DailySalesResponse, error) {
	if days < 1 || days > MaxDailySalesDays {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Days must be between 1 and 366")
	}

	end := startOfDay(s.now())
	start := end.AddDate(0, 0, -(days - 1))

	totals, err := s.reports.DailyTotals(ctx, start, end)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]trade.DailySales, len(totals))
	for _, t := range totals {
		byDay[t.Day.Format(dateLayout)] = t
	}

	series := make([]DailySalesResponse, 0, days)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := day.Format(dateLayout)
		point := DailySalesResponse{Date: key, Total: decimal.Zero}
		if t, ok := byDay[key]; ok {
			point.SaleCount = t.SaleCount
			point.Total = t.Total
		}
		series = append(series, point)
	}
	return series, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
