// Package demo provides an in-memory store that stands in for the database
// when the service runs in demo mode. It implements the same repositories
// and transaction scope as the persistence package. A transaction works on
// a private copy of the data that replaces the live copy only on success.
package demo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	apptrade "github.com/techsolutions/pos/internal/application/trade"
	"github.com/techsolutions/pos/internal/domain/catalog"
	"github.com/techsolutions/pos/internal/domain/identity"
	"github.com/techsolutions/pos/internal/domain/partner"
	"github.com/techsolutions/pos/internal/domain/shared"
	"github.com/techsolutions/pos/internal/domain/trade"
	"go.uber.org/zap"
)

// state is one consistent snapshot of every table
type state struct {
	products  map[int64]catalog.Product
	customers map[int64]partner.Customer
	users     map[int64]identity.User
	sales     map[int64]trade.Sale
	invoices  map[string]int64
	nextID    map[string]int64
}

func newState() *state {
	return &state{
		products:  make(map[int64]catalog.Product),
		customers: make(map[int64]partner.Customer),
		users:     make(map[int64]identity.User),
		sales:     make(map[int64]trade.Sale),
		invoices:  make(map[string]int64),
		nextID:    make(map[string]int64),
	}
}

func (s *state) clone() *state {
	c := newState()
	for id, p := range s.products {
		c.products[id] = p
	}
	for id, cu := range s.customers {
		c.customers[id] = cu
	}
	for id, u := range s.users {
		c.users[id] = u
	}
	for id, sale := range s.sales {
		c.sales[id] = copySale(sale)
	}
	for inv, id := range s.invoices {
		c.invoices[inv] = id
	}
	for table, id := range s.nextID {
		c.nextID[table] = id
	}
	return c
}

func (s *state) allocate(table string) int64 {
	s.nextID[table]++
	return s.nextID[table]
}

func copySale(sale trade.Sale) trade.Sale {
	out := sale
	out.BaseAggregateRoot = shared.BaseAggregateRoot{BaseEntity: sale.BaseEntity}
	if sale.CustomerID != nil {
		id := *sale.CustomerID
		out.CustomerID = &id
	}
	out.Lines = append([]trade.SaleLine(nil), sale.Lines...)
	return out
}

// Store is the in-memory database. Transactions are serialized.
type Store struct {
	mu     sync.Mutex
	data   *state
	logger *zap.Logger
}

// NewStore returns an empty store
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{data: newState(), logger: logger}
}

// view runs fn against the live data under the store lock
func (s *Store) view(fn func(*state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// Execute runs fn on a copy of the data. The copy becomes the live data when
// fn returns nil; an error or panic leaves the live data untouched.
func (s *Store) Execute(ctx context.Context, fn func(repos apptrade.TransactionalRepositories) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w: %w", shared.ErrUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.data.clone()
	if err := fn(&txRepositories{tx: working}); err != nil {
		s.logger.Debug("Demo transaction discarded", zap.Error(err))
		return err
	}
	s.data = working
	return nil
}

// Products returns a product repository over the live data
func (s *Store) Products() catalog.ProductRepository { return &productRepository{run: s.view} }

// Stock returns a stock ledger over the live data
func (s *Store) Stock() catalog.StockLedger { return &productRepository{run: s.view} }

// Customers returns a customer repository over the live data
func (s *Store) Customers() partner.CustomerRepository { return &customerRepository{run: s.view} }

// Users returns a user repository over the live data
func (s *Store) Users() identity.UserRepository { return &userRepository{run: s.view} }

// Sales returns a sale repository over the live data
func (s *Store) Sales() trade.SaleRepository { return &saleRepository{run: s.view} }

// Reports returns the sales report repository over the live data
func (s *Store) Reports() trade.SalesReportRepository { return &saleRepository{run: s.view} }

// txRepositories binds every repository to one working copy
type txRepositories struct {
	tx *state
}

func (t *txRepositories) run(fn func(*state) error) error { return fn(t.tx) }

func (t *txRepositories) Customers() partner.CustomerRepository { return &customerRepository{run: t.run} }
func (t *txRepositories) Users() identity.UserRepository        { return &userRepository{run: t.run} }
func (t *txRepositories) Products() catalog.ProductRepository   { return &productRepository{run: t.run} }
func (t *txRepositories) Stock() catalog.StockLedger            { return &productRepository{run: t.run} }
func (t *txRepositories) Sales() trade.SaleRepository           { return &saleRepository{run: t.run} }

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func sameDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sortByName[T any](items []T, name func(T) string, id func(T) int64) {
	sort.Slice(items, func(i, j int) bool {
		ni, nj := strings.ToLower(name(items[i])), strings.ToLower(name(items[j]))
		if ni != nj {
			return ni < nj
		}
		return id(items[i]) < id(items[j])
	})
}

var (
	_ apptrade.TransactionScope          = (*Store)(nil)
	_ apptrade.TransactionalRepositories = (*Store)(nil)
	_ apptrade.TransactionalRepositories = (*txRepositories)(nil)
)
