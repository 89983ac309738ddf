package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	partnerapp "github.com/techsolutions/pos/internal/application/partner"
)

// CustomerHandler handles the customer registry
type CustomerHandler struct {
	BaseHandler
	customerService *partnerapp.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService *partnerapp.CustomerService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
	}
}

// List godoc
// @Summary      List active customers
// @Tags         customers
// @Produce      json
// @Param        search query string false "Name fragment"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]partnerapp.CustomerResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	var filter partnerapp.CustomerListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	customers, err := h.customerService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, pageSize := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, customers, len(customers), page, pageSize)
}

// Search godoc
// @Summary      Search customers by name
// @Tags         customers
// @Produce      json
// @Param        q query string true "Name fragment"
// @Success      200 {object} dto.Response{data=[]partnerapp.CustomerResponse}
// @Security     BearerAuth
// @Router       /customers/search [get]
func (h *CustomerHandler) Search(c *gin.Context) {
	term := strings.TrimSpace(c.Query("q"))
	if term == "" {
		h.BadRequest(c, "Query parameter q is required")
		return
	}

	customers, err := h.customerService.SearchByName(c.Request.Context(), term)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, customers)
}

// GetByID godoc
// @Summary      Get customer by ID
// @Tags         customers
// @Produce      json
// @Param        id path int true "Customer ID"
// @Success      200 {object} dto.Response{data=partnerapp.CustomerResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /customers/{id} [get]
func (h *CustomerHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	customer, err := h.customerService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, customer)
}

// Create godoc
// @Summary      Register a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        request body partnerapp.CustomerRequest true "Customer"
// @Success      201 {object} dto.Response{data=partnerapp.CustomerResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	var req partnerapp.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	customer, err := h.customerService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, customer)
}

// Update godoc
// @Summary      Update a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id path int true "Customer ID"
// @Param        request body partnerapp.CustomerRequest true "Customer"
// @Success      200 {object} dto.Response{data=partnerapp.CustomerResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /customers/{id} [put]
func (h *CustomerHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req partnerapp.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	customer, err := h.customerService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, customer)
}

// Deactivate godoc
// @Summary      Deactivate a customer
// @Description  Past sales keep their reference; new sales are rejected
// @Tags         customers
// @Param        id path int true "Customer ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /customers/{id} [delete]
func (h *CustomerHandler) Deactivate(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.customerService.Deactivate(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
