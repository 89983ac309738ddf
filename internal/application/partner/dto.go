package partner

import (
	"time"

	"github.com/techsolutions/pos/internal/domain/partner"
)

// CustomerRequest creates or replaces a customer's data
type CustomerRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=100"`
	Email   string `json:"email" binding:"omitempty,email,max=100"`
	Phone   string `json:"phone" binding:"max=20"`
	Address string `json:"address" binding:"max=500"`
	TaxID   string `json:"tax_id" binding:"max=20"`
}

func (r CustomerRequest) contact() partner.CustomerContact {
	return partner.CustomerContact{
		Email:   r.Email,
		Phone:   r.Phone,
		Address: r.Address,
		TaxID:   r.TaxID,
	}
}

// CustomerListFilter represents filter options for the customer list
type CustomerListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	TaxID     string    `json:"tax_id,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// ToCustomerResponse converts a domain Customer to CustomerResponse
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		TaxID:     c.TaxID,
		Active:    c.Active,
		CreatedAt: c.CreatedAt,
	}
}

func toCustomerResponses(customers []partner.Customer) []CustomerResponse {
	out := make([]CustomerResponse, len(customers))
	for i := range customers {
		out[i] = ToCustomerResponse(&customers[i])
	}
	return out
}
