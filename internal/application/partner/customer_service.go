package partner

import (
	"context"
	"strings"

	"github.com/techsolutions/pos/internal/domain/partner"
	"github.com/techsolutions/pos/internal/domain/shared"
)

// CustomerService handles customer maintenance
type CustomerService struct {
	customerRepo partner.CustomerRepository
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo partner.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// Create registers a new active customer
func (s *CustomerService) Create(ctx context.Context, req CustomerRequest) (*CustomerResponse, error) {
	customer, err := partner.NewCustomer(req.Name, req.contact())
	if err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer)
	return &response, nil
}

// Update replaces the name and contact data of an active customer
func (s *CustomerService) Update(ctx context.Context, id int64, req CustomerRequest) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !customer.Active {
		return nil, shared.NewDomainError(shared.ErrInvalidState.Code, "Inactive customers cannot be updated")
	}
	if err := customer.Update(req.Name, req.contact()); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetByID returns a customer, active or not
func (s *CustomerService) GetByID(ctx context.Context, id int64) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer)
	return &response, nil
}

// List returns active customers ordered by name
func (s *CustomerService) List(ctx context.Context, filter CustomerListFilter) ([]CustomerResponse, error) {
	f := shared.DefaultFilter()
	f.Search = strings.TrimSpace(filter.Search)
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}

	customers, err := s.customerRepo.FindActive(ctx, f)
	if err != nil {
		return nil, err
	}
	return toCustomerResponses(customers), nil
}

// SearchByName returns active customers whose name contains term
func (s *CustomerService) SearchByName(ctx context.Context, term string) ([]CustomerResponse, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Search term is required")
	}
	customers, err := s.customerRepo.SearchByName(ctx, term)
	if err != nil {
		return nil, err
	}
	return toCustomerResponses(customers), nil
}

// Deactivate soft-deletes a customer. Past sales keep their reference.
func (s *CustomerService) Deactivate(ctx context.Context, id int64) error {
	return s.customerRepo.Deactivate(ctx, id)
}
