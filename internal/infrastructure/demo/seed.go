package demo

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/techsolutions/pos/internal/domain/catalog"
	"github.com/techsolutions/pos/internal/domain/identity"
	"github.com/techsolutions/pos/internal/domain/partner"
	"go.uber.org/zap"
)

// defaultMinStock matches the column default of productos.stock_minimo
const defaultMinStock = 5

type seedUser struct {
	username    string
	password    string
	displayName string
	level       identity.AccessLevel
}

type seedProduct struct {
	code        string
	name        string
	description string
	price       string
	stock       int
}

var (
	seedUsers = []seedUser{
		{"admin", "admin123", "Administrador Principal", identity.AccessLevelAdministrator},
		{"supervisor", "super123", "Supervisor de Ventas", identity.AccessLevelSupervisor},
		{"operador", "oper123", "Operador de Sistema", identity.AccessLevelOperator},
	}

	seedCustomers = []struct {
		name    string
		contact partner.CustomerContact
	}{
		{"Empresa ABC SA", partner.CustomerContact{Email: "abc@empresa.com", Phone: "123-4567", Address: "Av. Principal 123", TaxID: "12345678901"}},
		{"Comercial XYZ Ltda", partner.CustomerContact{Email: "xyz@comercial.com", Phone: "987-6543", Address: "Calle Secundaria 456", TaxID: "98765432109"}},
	}

	seedProducts = []seedProduct{
		{"LAP-001", "Laptop Dell XPS 13", "Laptop ultradelgada 13 pulgadas", "1500.00", 10},
		{"MON-001", "Monitor Samsung 24\"", "Monitor LED Full HD 24 pulgadas", "250.00", 25},
		{"TEC-001", "Teclado Mecánico RGB", "Teclado mecánico retroiluminado", "120.00", 15},
	}
)

// NewSeededStore returns a store holding the demo operators, customers and
// products
func NewSeededStore(ctx context.Context, logger *zap.Logger) (*Store, error) {
	store := NewStore(logger)
	if err := store.Seed(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// Seed loads the demo data into the store
func (s *Store) Seed(ctx context.Context) error {
	users := s.Users()
	for _, su := range seedUsers {
		user, err := identity.NewUser(su.username, su.displayName, su.password, su.level)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", su.username, err)
		}
		if err := users.Save(ctx, user); err != nil {
			return fmt.Errorf("seed user %s: %w", su.username, err)
		}
	}

	customers := s.Customers()
	for _, sc := range seedCustomers {
		customer, err := partner.NewCustomer(sc.name, sc.contact)
		if err != nil {
			return fmt.Errorf("seed customer %s: %w", sc.name, err)
		}
		if err := customers.Save(ctx, customer); err != nil {
			return fmt.Errorf("seed customer %s: %w", sc.name, err)
		}
	}

	products := s.Products()
	for _, sp := range seedProducts {
		product, err := catalog.NewProduct(sp.code, sp.name, decimal.RequireFromString(sp.price), sp.stock, defaultMinStock)
		if err != nil {
			return fmt.Errorf("seed product %s: %w", sp.code, err)
		}
		product.Description = sp.description
		if err := products.Save(ctx, product); err != nil {
			return fmt.Errorf("seed product %s: %w", sp.code, err)
		}
	}

	s.logger.Info("Demo store seeded",
		zap.Int("users", len(seedUsers)),
		zap.Int("customers", len(seedCustomers)),
		zap.Int("products", len(seedProducts)),
	)
	return nil
}
