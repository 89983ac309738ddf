package partner

import (
	"regexp"
	"strings"

	"github.com/techsolutions/pos/internal/domain/shared"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Customer is a registered buyer. Sales reference customers by id and a
// sale may have no customer at all.
type Customer struct {
	shared.BaseEntity
	Name    string
	Email   string
	Phone   string
	Address string
	TaxID   string
	Active  bool
}

// CustomerContact holds the optional contact fields of a customer
type CustomerContact struct {
	Email   string
	Phone   string
	Address string
	TaxID   string
}

// NewCustomer creates a new active customer
func NewCustomer(name string, contact CustomerContact) (*Customer, error) {
	c := &Customer{
		BaseEntity: shared.NewBaseEntity(),
		Active:     true,
	}
	if err := c.Update(name, contact); err != nil {
		return nil, err
	}
	return c, nil
}

// Update replaces the customer's name and contact data
func (c *Customer) Update(name string, contact CustomerContact) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 100 characters")
	}
	if contact.Email != "" && !emailRegex.MatchString(contact.Email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	if len(contact.Phone) > 20 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 20 characters")
	}
	if len(contact.TaxID) > 20 {
		return shared.NewDomainError("INVALID_TAX_ID", "Tax ID cannot exceed 20 characters")
	}

	c.Name = name
	c.Email = contact.Email
	c.Phone = contact.Phone
	c.Address = contact.Address
	c.TaxID = contact.TaxID
	return nil
}

// Deactivate soft-deletes the customer
func (c *Customer) Deactivate() {
	c.Active = false
}
