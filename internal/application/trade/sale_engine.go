package trade

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/techsolutions/pos/internal/domain/catalog"
	"github.com/techsolutions/pos/internal/domain/shared"
	"github.com/techsolutions/pos/internal/domain/trade"
	"github.com/techsolutions/pos/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DefaultMaxInvoiceAttempts bounds invoice number retries on collision
const DefaultMaxInvoiceAttempts = 5

const (
	opCommit = "commit"
	opVoid   = "void"
)

// EngineConfig holds the process-wide sale settings
type EngineConfig struct {
	TaxRate            decimal.Decimal
	MaxInvoiceAttempts int
}

// DefaultEngineConfig returns a 10% tax rate and 5 invoice attempts
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		TaxRate:            trade.DefaultTaxRate,
		MaxInvoiceAttempts: DefaultMaxInvoiceAttempts,
	}
}

// SaleRecorder receives failure counts and latencies from the engine
type SaleRecorder interface {
	RecordSaleFailed(ctx context.Context, operation, kind string)
	RecordDuration(ctx context.Context, operation string, d time.Duration)
}

// SaleEngine records sales atomically and voids them by restoring stock.
// Concurrency safety comes from the storage layer: every stock mutation is a
// guarded update inside the scope's transaction. The engine holds no locks.
type SaleEngine struct {
	scope     TransactionScope
	invoices  InvoiceNumberGenerator
	config    EngineConfig
	logger    *zap.Logger
	publisher shared.EventPublisher
	recorder  SaleRecorder
	now       func() time.Time
}

// SaleEngineOption configures optional collaborators
type SaleEngineOption func(*SaleEngine)

// WithEventPublisher publishes SaleCompleted and SaleVoided after commit
func WithEventPublisher(publisher shared.EventPublisher) SaleEngineOption {
	return func(e *SaleEngine) {
		e.publisher = publisher
	}
}

// WithSaleRecorder sets the metrics recorder
func WithSaleRecorder(recorder SaleRecorder) SaleEngineOption {
	return func(e *SaleEngine) {
		e.recorder = recorder
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) SaleEngineOption {
	return func(e *SaleEngine) {
		e.now = now
	}
}

// NewSaleEngine creates a SaleEngine
func NewSaleEngine(
	scope TransactionScope,
	invoices InvoiceNumberGenerator,
	config EngineConfig,
	logger *zap.Logger,
	opts ...SaleEngineOption,
) *SaleEngine {
	if config.MaxInvoiceAttempts <= 0 {
		config.MaxInvoiceAttempts = DefaultMaxInvoiceAttempts
	}
	e := &SaleEngine{
		scope:    scope,
		invoices: invoices,
		config:   config,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CommitSale validates and persists a sale, decrements stock and marks the
// sale COMPLETED, all in one transaction.
func (e *SaleEngine) CommitSale(ctx context.Context, req CommitSaleRequest) (*CommitResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale_engine", "commit_sale",
		attribute.Int64("sale.operator_id", req.OperatorID),
		attribute.Int("sale.line_count", len(req.Lines)),
	)
	defer span.End()
	started := e.now()
	defer e.recordDuration(ctx, opCommit, started)

	if err := validateCommitRequest(req); err != nil {
		return nil, e.fail(ctx, span, opCommit, err, zap.Int64("operator_id", req.OperatorID))
	}

	sale := trade.NewSale(req.CustomerID, req.OperatorID)
	sale.InvoiceNumber = strings.TrimSpace(req.InvoiceNumber)

	err := e.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := e.checkParties(ctx, repos, sale); err != nil {
			return err
		}

		products, err := loadProducts(ctx, repos.Products(), req.Lines)
		if err != nil {
			return err
		}

		for _, in := range req.Lines {
			product := products[in.ProductID]
			if in.UnitPrice != nil && !in.UnitPrice.Round(2).Equal(product.Price) {
				e.logger.Warn("Client price differs from catalog price, charging catalog price",
					zap.Int64("product_id", product.ID),
					zap.String("client_price", in.UnitPrice.String()),
					zap.String("charged_price", product.Price.StringFixed(2)),
				)
			}
			if err := sale.AddLine(product.ID, in.Quantity, product.Price); err != nil {
				return err
			}
		}

		if err := checkStock(sale, products); err != nil {
			return err
		}

		now := e.now()
		sale.SaleDate = now
		sale.CalculateTotals(e.config.TaxRate)

		if err := e.insertHeader(ctx, repos.Sales(), sale, now); err != nil {
			return err
		}
		if err := repos.Sales().InsertLines(ctx, sale.ID, sale.Lines); err != nil {
			return err
		}
		for _, line := range sale.Lines {
			if err := repos.Stock().DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}
		if err := repos.Sales().UpdateStatus(ctx, sale.ID, trade.SaleStatusPending, trade.SaleStatusCompleted); err != nil {
			return err
		}
		return sale.Complete()
	})
	if err != nil {
		return nil, e.fail(ctx, span, opCommit, err,
			zap.Int64("operator_id", req.OperatorID),
			zap.Int("line_count", len(req.Lines)),
		)
	}

	span.SetAttributes(
		attribute.Int64("sale.id", sale.ID),
		attribute.String("sale.invoice_number", sale.InvoiceNumber),
	)
	e.logger.Info("Sale committed",
		zap.Int64("sale_id", sale.ID),
		zap.String("invoice_number", sale.InvoiceNumber),
		zap.Int64("operator_id", sale.OperatorID),
		zap.Int("line_count", len(sale.Lines)),
		zap.String("total", sale.Total.StringFixed(2)),
	)
	e.publishEvents(ctx, sale)

	return &CommitResult{
		SaleID:        sale.ID,
		InvoiceNumber: sale.InvoiceNumber,
		Subtotal:      sale.Subtotal,
		Tax:           sale.Tax,
		Total:         sale.Total,
		SaleDate:      sale.SaleDate,
	}, nil
}

// VoidSale cancels a completed sale and restores the stock of every line.
// Either all stock is restored and the sale is CANCELLED, or nothing changes.
func (e *SaleEngine) VoidSale(ctx context.Context, saleID int64) (*VoidResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale_engine", "void_sale",
		attribute.Int64("sale.id", saleID),
	)
	defer span.End()
	started := e.now()
	defer e.recordDuration(ctx, opVoid, started)

	var voided *trade.Sale
	result := &VoidResult{SaleID: saleID}

	err := e.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		sale, err := repos.Sales().FindByID(ctx, saleID)
		if err != nil {
			return err
		}

		switch sale.Status {
		case trade.SaleStatusCompleted:
		case trade.SaleStatusCancelled:
			return trade.ErrAlreadyCancelled
		default:
			return shared.NewDomainError(shared.ErrInvalidState.Code,
				fmt.Sprintf("sale %d is %s and cannot be voided", saleID, sale.Status))
		}

		if len(sale.Lines) == 0 {
			return trade.NewIntegrityViolationError(saleID, "completed sale has no lines")
		}

		// Claim the sale first so a concurrent void blocks here, not after
		// restoring stock.
		if err := repos.Sales().UpdateStatus(ctx, saleID, trade.SaleStatusCompleted, trade.SaleStatusCancelled); err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				return trade.ErrAlreadyCancelled
			}
			return err
		}

		for _, line := range sale.Lines {
			if err := repos.Stock().RestoreStock(ctx, line.ProductID, line.Quantity); err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return trade.NewReferentialError(trade.EntityProduct, line.ProductID)
				}
				return err
			}
			result.RestoredLines++
			result.RestoredUnits += line.Quantity
		}

		if err := sale.Cancel(); err != nil {
			return err
		}
		result.InvoiceNumber = sale.InvoiceNumber
		voided = sale
		return nil
	})
	if err != nil {
		return nil, e.fail(ctx, span, opVoid, err, zap.Int64("sale_id", saleID))
	}

	e.logger.Info("Sale voided",
		zap.Int64("sale_id", saleID),
		zap.String("invoice_number", result.InvoiceNumber),
		zap.Int("restored_units", result.RestoredUnits),
	)
	e.publishEvents(ctx, voided)

	return result, nil
}

// ListLowStock returns active products at or below their minimum stock
func (e *SaleEngine) ListLowStock(ctx context.Context) ([]catalog.Product, error) {
	var products []catalog.Product
	err := e.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		products, err = repos.Products().FindLowStock(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

// FindSalesByDateRange returns sales dated within [start, end] by calendar
// day, newest first, with their lines.
func (e *SaleEngine) FindSalesByDateRange(ctx context.Context, start, end time.Time) ([]trade.Sale, error) {
	if truncateDay(end).Before(truncateDay(start)) {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Start date must not be after end date")
	}

	var sales []trade.Sale
	err := e.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		sales, err = repos.Sales().FindByDateRange(ctx, truncateDay(start), truncateDay(end))
		return err
	})
	if err != nil {
		return nil, err
	}
	return sales, nil
}

// GetSale loads a sale with its lines
func (e *SaleEngine) GetSale(ctx context.Context, saleID int64) (*trade.Sale, error) {
	var sale *trade.Sale
	err := e.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		sale, err = repos.Sales().FindByID(ctx, saleID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// GetSaleByInvoice loads a sale by its invoice number
func (e *SaleEngine) GetSaleByInvoice(ctx context.Context, invoiceNumber string) (*trade.Sale, error) {
	invoiceNumber = strings.TrimSpace(invoiceNumber)
	if invoiceNumber == "" {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Invoice number is required")
	}

	var sale *trade.Sale
	err := e.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		sale, err = repos.Sales().FindByInvoiceNumber(ctx, invoiceNumber)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

func validateCommitRequest(req CommitSaleRequest) error {
	if req.OperatorID <= 0 {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "Operator is required")
	}
	if req.CustomerID != nil && *req.CustomerID <= 0 {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "Customer ID must be positive")
	}
	if len(req.Lines) == 0 {
		return trade.ErrEmptySale
	}
	for i, line := range req.Lines {
		if line.ProductID <= 0 {
			return shared.NewDomainError(shared.ErrInvalidInput.Code, fmt.Sprintf("Line %d: product is required", i+1))
		}
		if line.Quantity <= 0 {
			return shared.NewDomainError(shared.ErrInvalidInput.Code, fmt.Sprintf("Line %d: quantity must be positive", i+1))
		}
	}
	return nil
}

// checkParties verifies the customer (when given) and the operator, in that order
func (e *SaleEngine) checkParties(ctx context.Context, repos TransactionalRepositories, sale *trade.Sale) error {
	if sale.CustomerID != nil {
		customer, err := repos.Customers().FindByID(ctx, *sale.CustomerID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if customer == nil || !customer.Active {
			return trade.NewReferentialError(trade.EntityCustomer, *sale.CustomerID)
		}
	}

	operator, err := repos.Users().FindByID(ctx, sale.OperatorID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	if operator == nil || !operator.Active {
		return trade.NewReferentialError(trade.EntityOperator, sale.OperatorID)
	}
	return nil
}

// loadProducts reads every referenced product once, in line order
func loadProducts(ctx context.Context, repo catalog.ProductRepository, lines []SaleLineInput) (map[int64]*catalog.Product, error) {
	products := make(map[int64]*catalog.Product, len(lines))
	for _, line := range lines {
		if _, ok := products[line.ProductID]; ok {
			continue
		}
		product, err := repo.FindByID(ctx, line.ProductID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if product == nil || !product.Active {
			return nil, trade.NewReferentialError(trade.EntityProduct, line.ProductID)
		}
		products[line.ProductID] = product
	}
	return products, nil
}

// checkStock compares summed quantities per product with the stock read in
// this transaction. Products are checked in first-appearance order.
func checkStock(sale *trade.Sale, products map[int64]*catalog.Product) error {
	requested := sale.QuantitiesByProduct()
	checked := make(map[int64]bool, len(requested))
	for _, line := range sale.Lines {
		if checked[line.ProductID] {
			continue
		}
		checked[line.ProductID] = true
		product := products[line.ProductID]
		if !product.HasSufficientStock(requested[line.ProductID]) {
			return trade.NewInsufficientStockError(line.ProductID, requested[line.ProductID], product.Stock)
		}
	}
	return nil
}

// insertHeader assigns an invoice number and inserts the header. Generated
// numbers are retried on collision up to the configured bound; a caller
// supplied number gets a single attempt.
func (e *SaleEngine) insertHeader(ctx context.Context, sales trade.SaleRepository, sale *trade.Sale, at time.Time) error {
	if sale.InvoiceNumber != "" {
		return sales.InsertHeader(ctx, sale)
	}

	for attempt := 1; attempt <= e.config.MaxInvoiceAttempts; attempt++ {
		number, err := e.invoices.Next(ctx, at)
		if err != nil {
			return fmt.Errorf("failed to generate invoice number: %w", err)
		}
		sale.InvoiceNumber = number

		err = sales.InsertHeader(ctx, sale)
		if err == nil {
			return nil
		}
		if !errors.Is(err, trade.ErrDuplicateInvoice) {
			return err
		}
		e.logger.Warn("Invoice number collision, retrying",
			zap.String("invoice_number", number),
			zap.Int("attempt", attempt),
		)
	}

	sale.InvoiceNumber = ""
	return trade.ErrInvoiceNumberExhausted
}

func (e *SaleEngine) publishEvents(ctx context.Context, sale *trade.Sale) {
	events := sale.GetDomainEvents()
	sale.ClearDomainEvents()
	if e.publisher == nil || len(events) == 0 {
		return
	}
	if err := e.publisher.Publish(ctx, events...); err != nil {
		e.logger.Error("Failed to publish sale events",
			zap.Int64("sale_id", sale.ID),
			zap.Error(err),
		)
	}
}

// fail logs, traces and counts a failed operation and returns err unchanged
func (e *SaleEngine) fail(ctx context.Context, span trace.Span, operation string, err error, fields ...zap.Field) error {
	kind := ErrorKind(err)
	telemetry.RecordError(span, err)
	if e.recorder != nil {
		e.recorder.RecordSaleFailed(ctx, operation, kind)
	}

	fields = append(fields, zap.String("operation", operation), zap.String("kind", kind), zap.Error(err))
	switch {
	case errors.Is(err, trade.ErrIntegrityViolation):
		e.logger.Error("Sale data integrity violation", fields...)
	case errors.Is(err, trade.ErrUnavailable):
		e.logger.Error("Storage unavailable", fields...)
	case isBusinessRejection(err):
		e.logger.Warn("Sale operation rejected", fields...)
	default:
		e.logger.Error("Sale operation failed", fields...)
	}
	return err
}

func (e *SaleEngine) recordDuration(ctx context.Context, operation string, started time.Time) {
	if e.recorder != nil {
		e.recorder.RecordDuration(ctx, operation, e.now().Sub(started))
	}
}

// ErrorKind returns the stable code of a domain error, or INTERNAL_ERROR
func ErrorKind(err error) string {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return "INTERNAL_ERROR"
}

func isBusinessRejection(err error) bool {
	var domainErr *shared.DomainError
	return errors.As(err, &domainErr)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
