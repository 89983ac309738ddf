package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/techsolutions/pos/internal/application/catalog"
	reportapp "github.com/techsolutions/pos/internal/application/report"
	tradeapp "github.com/techsolutions/pos/internal/application/trade"
	"github.com/techsolutions/pos/internal/interfaces/http/middleware"
)

// SaleHandler exposes the sale engine: checkout, void and sale lookups
type SaleHandler struct {
	BaseHandler
	engine *tradeapp.SaleEngine
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(engine *tradeapp.SaleEngine) *SaleHandler {
	return &SaleHandler{engine: engine}
}

// CommitSaleRequest is the checkout body. The operator is always the
// authenticated user; it is never taken from the body.
type CommitSaleRequest struct {
	CustomerID    *int64                   `json:"customer_id" binding:"omitempty,gt=0"`
	InvoiceNumber string                   `json:"invoice_number" binding:"max=50"`
	Lines         []tradeapp.SaleLineInput `json:"lines" binding:"required,min=1,dive"`
}

// Commit godoc
// @Summary      Commit a sale
// @Description  Validates stock, decrements it and records the sale atomically
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        request body CommitSaleRequest true "Sale lines"
// @Success      201 {object} dto.Response{data=tradeapp.CommitResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales [post]
func (h *SaleHandler) Commit(c *gin.Context) {
	operatorID := middleware.GetOperatorID(c)
	if operatorID == 0 {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CommitSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.engine.CommitSale(c.Request.Context(), tradeapp.CommitSaleRequest{
		CustomerID:    req.CustomerID,
		OperatorID:    operatorID,
		InvoiceNumber: req.InvoiceNumber,
		Lines:         req.Lines,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// Void godoc
// @Summary      Void a sale
// @Description  Cancels a completed sale and returns its units to stock
// @Tags         sales
// @Produce      json
// @Param        id path int true "Sale ID"
// @Success      200 {object} dto.Response{data=tradeapp.VoidResult}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales/{id}/void [post]
func (h *SaleHandler) Void(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	result, err := h.engine.VoidSale(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// GetByID godoc
// @Summary      Get sale by ID
// @Tags         sales
// @Produce      json
// @Param        id path int true "Sale ID"
// @Success      200 {object} dto.Response{data=tradeapp.SaleResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales/{id} [get]
func (h *SaleHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	sale, err := h.engine.GetSale(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tradeapp.ToSaleResponse(sale))
}

// GetByInvoice godoc
// @Summary      Get sale by invoice number
// @Tags         sales
// @Produce      json
// @Param        invoice path string true "Invoice number"
// @Success      200 {object} dto.Response{data=tradeapp.SaleResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales/invoice/{invoice} [get]
func (h *SaleHandler) GetByInvoice(c *gin.Context) {
	sale, err := h.engine.GetSaleByInvoice(c.Request.Context(), c.Param("invoice"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tradeapp.ToSaleResponse(sale))
}

// ListByDateRange godoc
// @Summary      List sales in a date range
// @Description  Sales of every status dated within [start_date, end_date], newest first.
// @Description  end_date defaults to today and start_date to six days before end_date.
// @Tags         sales
// @Produce      json
// @Param        start_date query string false "YYYY-MM-DD"
// @Param        end_date query string false "YYYY-MM-DD"
// @Success      200 {object} dto.Response{data=[]tradeapp.SaleResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales [get]
func (h *SaleHandler) ListByDateRange(c *gin.Context) {
	var query reportapp.OpenDateRangeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindingError(c, err)
		return
	}
	start, end, err := query.Resolve(time.Now())
	if err != nil {
		h.BadRequest(c, "Dates must be formatted as YYYY-MM-DD")
		return
	}

	sales, err := h.engine.FindSalesByDateRange(c.Request.Context(), start, end)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tradeapp.ToSaleResponses(sales))
}

// LowStock godoc
// @Summary      List low-stock products
// @Description  Active products at or below their minimum stock, lowest first
// @Tags         products
// @Produce      json
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductResponse}
// @Security     BearerAuth
// @Router       /products/low-stock [get]
func (h *SaleHandler) LowStock(c *gin.Context) {
	products, err := h.engine.ListLowStock(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, catalogapp.ToProductResponses(products))
}
