package handler

import (
	"github.com/gin-gonic/gin"
	reportapp "github.com/techsolutions/pos/internal/application/report"
)

// ReportHandler serves the sales reports
type ReportHandler struct {
	BaseHandler
	reportService *reportapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *reportapp.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// DailySalesQuery selects how many trailing days to report
type DailySalesQuery struct {
	Days int `form:"days" binding:"omitempty,min=1,max=366"`
}

const defaultDailySalesDays = 7

// SalesSummary godoc
// @Summary      Sales summary
// @Description  Count and totals of completed sales within [start_date, end_date]
// @Tags         reports
// @Produce      json
// @Param        start_date query string true "YYYY-MM-DD"
// @Param        end_date query string true "YYYY-MM-DD"
// @Success      200 {object} dto.Response{data=reportapp.SalesSummaryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reports/sales-summary [get]
func (h *ReportHandler) SalesSummary(c *gin.Context) {
	var query reportapp.DateRangeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindingError(c, err)
		return
	}
	start, end, err := query.Parse()
	if err != nil {
		h.BadRequest(c, "Dates must be formatted as YYYY-MM-DD")
		return
	}

	summary, err := h.reportService.SalesSummary(c.Request.Context(), start, end)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// DailySales godoc
// @Summary      Daily sales series
// @Description  One point per day for the trailing days, oldest first
// @Tags         reports
// @Produce      json
// @Param        days query int false "Number of days" default(7)
// @Success      200 {object} dto.Response{data=[]reportapp.DailySalesResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reports/daily-sales [get]
func (h *ReportHandler) DailySales(c *gin.Context) {
	var query DailySalesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindingError(c, err)
		return
	}
	if query.Days == 0 {
		query.Days = defaultDailySalesDays
	}

	series, err := h.reportService.DailySales(c.Request.Context(), query.Days)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, series)
}
