package demo

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/techsolutions/pos/internal/domain/catalog"
	"github.com/techsolutions/pos/internal/domain/identity"
	"github.com/techsolutions/pos/internal/domain/partner"
	"github.com/techsolutions/pos/internal/domain/shared"
	"github.com/techsolutions/pos/internal/domain/trade"
)

const maxSearchResults = 50

// runner executes fn against either the live data or a transaction copy
type runner func(fn func(*state) error) error

type productRepository struct {
	run runner
}

func (r *productRepository) FindByID(_ context.Context, id int64) (*catalog.Product, error) {
	var out *catalog.Product
	err := r.run(func(s *state) error {
		p, ok := s.products[id]
		if !ok {
			return shared.ErrNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

func (r *productRepository) FindByCode(_ context.Context, code string) (*catalog.Product, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	var out *catalog.Product
	err := r.run(func(s *state) error {
		for _, p := range s.products {
			if p.Code == code {
				found := p
				out = &found
				return nil
			}
		}
		return shared.ErrNotFound
	})
	return out, err
}

func (r *productRepository) FindActive(_ context.Context, filter shared.Filter) ([]catalog.Product, error) {
	var out []catalog.Product
	err := r.run(func(s *state) error {
		out = r.collect(s, func(p catalog.Product) bool {
			return filter.Search == "" || containsFold(p.Name, filter.Search) || containsFold(p.Code, filter.Search)
		})
		return nil
	})
	return paginate(out, filter), err
}

func (r *productRepository) SearchByName(_ context.Context, term string) ([]catalog.Product, error) {
	var out []catalog.Product
	err := r.run(func(s *state) error {
		out = r.collect(s, func(p catalog.Product) bool { return containsFold(p.Name, term) })
		return nil
	})
	if len(out) > maxSearchResults {
		out = out[:maxSearchResults]
	}
	return out, err
}

func (r *productRepository) FindLowStock(_ context.Context) ([]catalog.Product, error) {
	var out []catalog.Product
	err := r.run(func(s *state) error {
		out = r.collect(s, func(p catalog.Product) bool { return p.Stock <= p.MinStock })
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Stock < out[j].Stock })
	return out, err
}

// collect returns the active products matching keep, ordered by name
func (r *productRepository) collect(s *state, keep func(catalog.Product) bool) []catalog.Product {
	out := make([]catalog.Product, 0)
	for _, p := range s.products {
		if p.Active && keep(p) {
			out = append(out, p)
		}
	}
	sortByName(out, func(p catalog.Product) string { return p.Name }, func(p catalog.Product) int64 { return p.ID })
	return out
}

func (r *productRepository) Save(_ context.Context, product *catalog.Product) error {
	return r.run(func(s *state) error {
		if !product.IsPersisted() {
			for _, p := range s.products {
				if p.Code == product.Code {
					return shared.ErrAlreadyExists
				}
			}
			product.ID = s.allocate("productos")
			if product.CreatedAt.IsZero() {
				product.CreatedAt = time.Now()
			}
			s.products[product.ID] = *product
			return nil
		}

		existing, ok := s.products[product.ID]
		if !ok {
			return shared.ErrNotFound
		}
		existing.Name = product.Name
		existing.Description = product.Description
		existing.Price = product.Price
		existing.MinStock = product.MinStock
		existing.Active = product.Active
		s.products[product.ID] = existing
		return nil
	})
}

func (r *productRepository) Deactivate(_ context.Context, id int64) error {
	return r.run(func(s *state) error {
		p, ok := s.products[id]
		if !ok {
			return shared.ErrNotFound
		}
		p.Active = false
		s.products[id] = p
		return nil
	})
}

func (r *productRepository) DecrementStock(_ context.Context, productID int64, qty int) error {
	return r.run(func(s *state) error {
		p, ok := s.products[productID]
		if !ok || !p.Active || p.Stock < qty {
			return trade.NewConcurrentStockConflictError(productID)
		}
		p.Stock -= qty
		s.products[productID] = p
		return nil
	})
}

func (r *productRepository) RestoreStock(_ context.Context, productID int64, qty int) error {
	return r.run(func(s *state) error {
		p, ok := s.products[productID]
		if !ok || !p.Active {
			return shared.ErrNotFound
		}
		p.Stock += qty
		s.products[productID] = p
		return nil
	})
}

func (r *productRepository) AdjustStock(_ context.Context, productID int64, delta int) error {
	return r.run(func(s *state) error {
		p, ok := s.products[productID]
		if !ok || !p.Active || p.Stock+delta < 0 {
			return trade.NewConcurrentStockConflictError(productID)
		}
		p.Stock += delta
		s.products[productID] = p
		return nil
	})
}

type customerRepository struct {
	run runner
}

func (r *customerRepository) FindByID(_ context.Context, id int64) (*partner.Customer, error) {
	var out *partner.Customer
	err := r.run(func(s *state) error {
		c, ok := s.customers[id]
		if !ok {
			return shared.ErrNotFound
		}
		out = &c
		return nil
	})
	return out, err
}

func (r *customerRepository) FindActive(_ context.Context, filter shared.Filter) ([]partner.Customer, error) {
	var out []partner.Customer
	err := r.run(func(s *state) error {
		out = r.collect(s, func(c partner.Customer) bool {
			return filter.Search == "" || containsFold(c.Name, filter.Search)
		})
		return nil
	})
	return paginate(out, filter), err
}

func (r *customerRepository) SearchByName(_ context.Context, term string) ([]partner.Customer, error) {
	var out []partner.Customer
	err := r.run(func(s *state) error {
		out = r.collect(s, func(c partner.Customer) bool { return containsFold(c.Name, term) })
		return nil
	})
	if len(out) > maxSearchResults {
		out = out[:maxSearchResults]
	}
	return out, err
}

func (r *customerRepository) collect(s *state, keep func(partner.Customer) bool) []partner.Customer {
	out := make([]partner.Customer, 0)
	for _, c := range s.customers {
		if c.Active && keep(c) {
			out = append(out, c)
		}
	}
	sortByName(out, func(c partner.Customer) string { return c.Name }, func(c partner.Customer) int64 { return c.ID })
	return out
}

func (r *customerRepository) Save(_ context.Context, customer *partner.Customer) error {
	return r.run(func(s *state) error {
		if !customer.IsPersisted() {
			customer.ID = s.allocate("clientes")
			if customer.CreatedAt.IsZero() {
				customer.CreatedAt = time.Now()
			}
		} else if _, ok := s.customers[customer.ID]; !ok {
			return shared.ErrNotFound
		}
		s.customers[customer.ID] = *customer
		return nil
	})
}

func (r *customerRepository) Deactivate(_ context.Context, id int64) error {
	return r.run(func(s *state) error {
		c, ok := s.customers[id]
		if !ok {
			return shared.ErrNotFound
		}
		c.Active = false
		s.customers[id] = c
		return nil
	})
}

type userRepository struct {
	run runner
}

func (r *userRepository) FindByID(_ context.Context, id int64) (*identity.User, error) {
	var out *identity.User
	err := r.run(func(s *state) error {
		u, ok := s.users[id]
		if !ok {
			return shared.ErrNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (r *userRepository) FindByUsername(_ context.Context, username string) (*identity.User, error) {
	var out *identity.User
	err := r.run(func(s *state) error {
		for _, u := range s.users {
			if u.Username == username {
				found := u
				out = &found
				return nil
			}
		}
		return shared.ErrNotFound
	})
	return out, err
}

func (r *userRepository) Save(_ context.Context, user *identity.User) error {
	return r.run(func(s *state) error {
		for _, u := range s.users {
			if u.Username == user.Username && u.ID != user.ID {
				return shared.ErrAlreadyExists
			}
		}
		if !user.IsPersisted() {
			user.ID = s.allocate("usuarios")
			if user.CreatedAt.IsZero() {
				user.CreatedAt = time.Now()
			}
		} else if _, ok := s.users[user.ID]; !ok {
			return shared.ErrNotFound
		}
		s.users[user.ID] = *user
		return nil
	})
}

type saleRepository struct {
	run runner
}

func (r *saleRepository) FindByID(_ context.Context, id int64) (*trade.Sale, error) {
	var out *trade.Sale
	err := r.run(func(s *state) error {
		sale, ok := s.sales[id]
		if !ok {
			return shared.ErrNotFound
		}
		out = hydrate(s, sale)
		return nil
	})
	return out, err
}

func (r *saleRepository) FindByInvoiceNumber(_ context.Context, invoiceNumber string) (*trade.Sale, error) {
	var out *trade.Sale
	err := r.run(func(s *state) error {
		id, ok := s.invoices[invoiceNumber]
		if !ok {
			return shared.ErrNotFound
		}
		out = hydrate(s, s.sales[id])
		return nil
	})
	return out, err
}

func (r *saleRepository) FindByDateRange(_ context.Context, start, end time.Time) ([]trade.Sale, error) {
	from, to := sameDay(start), sameDay(end)
	out := make([]trade.Sale, 0)
	err := r.run(func(s *state) error {
		for _, sale := range s.sales {
			if inRange(sale.SaleDate, from, to) {
				out = append(out, *hydrate(s, sale))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		di, dj := sameDay(out[i].SaleDate), sameDay(out[j].SaleDate)
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return out[i].ID > out[j].ID
	})
	return out, err
}

func (r *saleRepository) InsertHeader(_ context.Context, sale *trade.Sale) error {
	return r.run(func(s *state) error {
		if _, taken := s.invoices[sale.InvoiceNumber]; taken {
			return trade.ErrDuplicateInvoice
		}
		sale.ID = s.allocate("ventas")
		if sale.CreatedAt.IsZero() {
			sale.CreatedAt = time.Now()
		}
		header := copySale(*sale)
		header.Lines = nil
		s.sales[sale.ID] = header
		s.invoices[sale.InvoiceNumber] = sale.ID
		return nil
	})
}

func (r *saleRepository) InsertLines(_ context.Context, saleID int64, lines []trade.SaleLine) error {
	return r.run(func(s *state) error {
		sale, ok := s.sales[saleID]
		if !ok {
			return shared.ErrNotFound
		}
		for i := range lines {
			if _, ok := s.products[lines[i].ProductID]; !ok {
				return trade.NewReferentialError(trade.EntityProduct, lines[i].ProductID)
			}
			lines[i].ID = s.allocate("venta_detalles")
			lines[i].SaleID = saleID
			sale.Lines = append(sale.Lines, lines[i])
		}
		s.sales[saleID] = sale
		return nil
	})
}

func (r *saleRepository) UpdateStatus(_ context.Context, id int64, from, to trade.SaleStatus) error {
	return r.run(func(s *state) error {
		sale, ok := s.sales[id]
		if !ok || sale.Status != from {
			return shared.ErrConcurrencyConflict
		}
		sale.Status = to
		s.sales[id] = sale
		return nil
	})
}

func (r *saleRepository) Summarize(_ context.Context, start, end time.Time) (*trade.SalesSummary, error) {
	summary := &trade.SalesSummary{
		Start:    start,
		End:      end,
		Subtotal: decimal.Zero,
		Tax:      decimal.Zero,
		Total:    decimal.Zero,
	}
	err := r.run(func(s *state) error {
		for _, sale := range completedInRange(s, start, end) {
			summary.SaleCount++
			summary.Subtotal = summary.Subtotal.Add(sale.Subtotal)
			summary.Tax = summary.Tax.Add(sale.Tax)
			summary.Total = summary.Total.Add(sale.Total)
		}
		return nil
	})
	summary.Subtotal = summary.Subtotal.Round(2)
	summary.Tax = summary.Tax.Round(2)
	summary.Total = summary.Total.Round(2)
	return summary, err
}

func (r *saleRepository) DailyTotals(_ context.Context, start, end time.Time) ([]trade.DailySales, error) {
	byDay := make(map[time.Time]*trade.DailySales)
	err := r.run(func(s *state) error {
		for _, sale := range completedInRange(s, start, end) {
			key := sameDay(sale.SaleDate)
			day, ok := byDay[key]
			if !ok {
				y, m, d := key.Date()
				day = &trade.DailySales{Day: time.Date(y, m, d, 0, 0, 0, 0, start.Location()), Total: decimal.Zero}
				byDay[key] = day
			}
			day.SaleCount++
			day.Total = day.Total.Add(sale.Total)
		}
		return nil
	})

	out := make([]trade.DailySales, 0, len(byDay))
	for _, day := range byDay {
		day.Total = day.Total.Round(2)
		out = append(out, *day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, err
}

func completedInRange(s *state, start, end time.Time) []trade.Sale {
	from, to := sameDay(start), sameDay(end)
	out := make([]trade.Sale, 0)
	for _, sale := range s.sales {
		if sale.Status == trade.SaleStatusCompleted && inRange(sale.SaleDate, from, to) {
			out = append(out, sale)
		}
	}
	return out
}

func inRange(t, from, to time.Time) bool {
	day := sameDay(t)
	return !day.Before(from) && !day.After(to)
}

// hydrate returns a copy of sale with party and product names filled in
func hydrate(s *state, sale trade.Sale) *trade.Sale {
	out := copySale(sale)
	if out.CustomerID != nil {
		if c, ok := s.customers[*out.CustomerID]; ok {
			out.CustomerName = c.Name
		}
	}
	if u, ok := s.users[out.OperatorID]; ok {
		out.OperatorName = u.DisplayName
	}
	if out.Lines == nil {
		out.Lines = make([]trade.SaleLine, 0)
	}
	for i := range out.Lines {
		if p, ok := s.products[out.Lines[i].ProductID]; ok {
			out.Lines[i].ProductCode = p.Code
			out.Lines[i].ProductName = p.Name
		}
	}
	return &out
}

func paginate[T any](items []T, filter shared.Filter) []T {
	if filter.PageSize <= 0 {
		return items
	}
	offset := filter.Offset()
	if offset >= len(items) {
		return make([]T, 0)
	}
	end := offset + filter.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

var (
	_ catalog.ProductRepository   = (*productRepository)(nil)
	_ catalog.StockLedger         = (*productRepository)(nil)
	_ partner.CustomerRepository  = (*customerRepository)(nil)
	_ identity.UserRepository     = (*userRepository)(nil)
	_ trade.SaleRepository        = (*saleRepository)(nil)
	_ trade.SalesReportRepository = (*saleRepository)(nil)
)
