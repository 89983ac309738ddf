package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	catalogapp "github.com/techsolutions/pos/internal/application/catalog"
	tradeapp "github.com/techsolutions/pos/internal/application/trade"
	"github.com/techsolutions/pos/internal/domain/identity"
	"github.com/techsolutions/pos/internal/interfaces/http/dto"
)

func (f *apiFixture) stockOf(t *testing.T, productID int64) int {
	t.Helper()
	p, err := f.store.Products().FindByID(context.Background(), productID)
	require.NoError(t, err)
	return p.Stock
}

func TestSaleHandler_Commit(t *testing.T) {
	f := newAPIFixture(t)
	customerID := int64(1)

	w := f.do(t, http.MethodPost, "/sales", f.operatorToken(t), saleBody(&customerID, line(laptopID, 2), line(monitorID, 1)))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var result tradeapp.CommitResult
	decodeData(t, w, &result)
	assert.Positive(t, result.SaleID)
	assert.NotEmpty(t, result.InvoiceNumber)
	assert.True(t, result.Subtotal.Equal(decimal.NewFromInt(3250)), result.Subtotal.String())
	assert.True(t, result.Tax.Equal(decimal.NewFromInt(325)), result.Tax.String())
	assert.True(t, result.Total.Equal(decimal.NewFromInt(3575)), result.Total.String())

	assert.Equal(t, 8, f.stockOf(t, laptopID))
	assert.Equal(t, 24, f.stockOf(t, monitorID))
}

func TestSaleHandler_CommitUsesTokenOperator(t *testing.T) {
	f := newAPIFixture(t)
	body := saleBody(nil, line(laptopID, 1))
	body["operator_id"] = adminID

	w := f.do(t, http.MethodPost, "/sales", f.operatorToken(t), body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var result tradeapp.CommitResult
	decodeData(t, w, &result)

	w = f.do(t, http.MethodGet, fmt.Sprintf("/sales/%d", result.SaleID), f.operatorToken(t), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sale tradeapp.SaleResponse
	decodeData(t, w, &sale)
	assert.Equal(t, operatorID, sale.OperatorID)
	assert.Nil(t, sale.CustomerID)
}

func TestSaleHandler_CommitRejections(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{
			name:       "no lines",
			body:       map[string]any{"lines": []any{}},
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeValidation,
		},
		{
			name:       "zero quantity",
			body:       saleBody(nil, line(laptopID, 0)),
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeValidation,
		},
		{
			name:       "malformed json",
			body:       "not-an-object",
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeInvalidJSON,
		},
		{
			name:       "unknown product",
			body:       saleBody(nil, line(999, 1)),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   dto.ErrCodeReferential,
		},
		{
			name: "unknown customer",
			body: func() any {
				id := int64(77)
				return saleBody(&id, line(laptopID, 1))
			}(),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   dto.ErrCodeReferential,
		},
		{
			name:       "insufficient stock",
			body:       saleBody(nil, line(laptopID, 11)),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   dto.ErrCodeInsufficientStock,
		},
		{
			name:       "split lines exceed stock together",
			body:       saleBody(nil, line(laptopID, 6), line(laptopID, 5)),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   dto.ErrCodeInsufficientStock,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAPIFixture(t)

			w := f.do(t, http.MethodPost, "/sales", f.operatorToken(t), tt.body)

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			resp := decodeResponse(t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, 10, f.stockOf(t, laptopID))
		})
	}
}

func TestSaleHandler_CommitDuplicateInvoice(t *testing.T) {
	f := newAPIFixture(t)
	body := saleBody(nil, line(monitorID, 1))
	body["invoice_number"] = "MANUAL-0001"

	w := f.do(t, http.MethodPost, "/sales", f.operatorToken(t), body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.do(t, http.MethodPost, "/sales", f.operatorToken(t), body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrCodeDuplicateInvoice, decodeResponse(t, w).Error.Code)
	assert.Equal(t, 24, f.stockOf(t, monitorID))
}

func TestSaleHandler_CommitWithoutOperator(t *testing.T) {
	f := newAPIFixture(t)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(`{"lines":[{"product_id":1,"quantity":1}]}`))

	NewSaleHandler(f.engine).Commit(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 10, f.stockOf(t, laptopID))
}

func TestSaleHandler_Void(t *testing.T) {
	f := newAPIFixture(t)
	w := f.do(t, http.MethodPost, "/sales", f.operatorToken(t), saleBody(nil, line(laptopID, 3)))
	require.Equal(t, http.StatusCreated, w.Code)
	var committed tradeapp.CommitResult
	decodeData(t, w, &committed)
	require.Equal(t, 7, f.stockOf(t, laptopID))

	path := fmt.Sprintf("/sales/%d/void", committed.SaleID)
	w = f.do(t, http.MethodPost, path, f.token(t, supervisorID, identity.AccessLevelSupervisor), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var voided tradeapp.VoidResult
	decodeData(t, w, &voided)
	assert.Equal(t, committed.SaleID, voided.SaleID)
	assert.Equal(t, 1, voided.RestoredLines)
	assert.Equal(t, 3, voided.RestoredUnits)
	assert.Equal(t, 10, f.stockOf(t, laptopID))

	t.Run("second void is rejected", func(t *testing.T) {
		w := f.do(t, http.MethodPost, path, f.token(t, supervisorID, identity.AccessLevelSupervisor), nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrCodeAlreadyCancelled, decodeResponse(t, w).Error.Code)
		assert.Equal(t, 10, f.stockOf(t, laptopID))
	})

	t.Run("unknown sale", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/sales/9999/void", f.token(t, supervisorID, identity.AccessLevelSupervisor), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestSaleHandler_Lookups(t *testing.T) {
	f := newAPIFixture(t)
	token := f.operatorToken(t)
	w := f.do(t, http.MethodPost, "/sales", token, saleBody(nil, line(laptopID, 1), line(monitorID, 2)))
	require.Equal(t, http.StatusCreated, w.Code)
	var committed tradeapp.CommitResult
	decodeData(t, w, &committed)

	t.Run("by id", func(t *testing.T) {
		w := f.do(t, http.MethodGet, fmt.Sprintf("/sales/%d", committed.SaleID), token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var sale tradeapp.SaleResponse
		decodeData(t, w, &sale)
		assert.Equal(t, committed.InvoiceNumber, sale.InvoiceNumber)
		assert.Equal(t, "COMPLETADA", sale.Status)
		assert.Len(t, sale.Lines, 2)
	})

	t.Run("by invoice", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/sales/invoice/"+committed.InvoiceNumber, token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var sale tradeapp.SaleResponse
		decodeData(t, w, &sale)
		assert.Equal(t, committed.SaleID, sale.ID)
	})

	t.Run("unknown invoice", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/sales/invoice/NOPE", token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/sales/abc", token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("by date range", func(t *testing.T) {
		today := time.Now().Format("2006-01-02")
		w := f.do(t, http.MethodGet, "/sales?start_date="+today+"&end_date="+today, token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var sales []tradeapp.SaleResponse
		decodeData(t, w, &sales)
		require.Len(t, sales, 1)
		assert.Equal(t, committed.SaleID, sales[0].ID)
	})

	t.Run("omitted range covers the last days", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/sales", token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var sales []tradeapp.SaleResponse
		decodeData(t, w, &sales)
		require.Len(t, sales, 1)
		assert.Equal(t, committed.SaleID, sales[0].ID)
	})

	t.Run("start alone runs to today", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/sales?start_date=2024-01-01", token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var sales []tradeapp.SaleResponse
		decodeData(t, w, &sales)
		assert.Len(t, sales, 1)
	})

	t.Run("end alone ends the window there", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/sales?end_date=2024-01-10", token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var sales []tradeapp.SaleResponse
		decodeData(t, w, &sales)
		assert.Empty(t, sales)
	})

	t.Run("malformed or inverted range", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/sales?start_date=01/01/2024", token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = f.do(t, http.MethodGet, "/sales?start_date=2024-02-01&end_date=2024-01-01", token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSaleHandler_LowStock(t *testing.T) {
	f := newAPIFixture(t)
	token := f.operatorToken(t)

	w := f.do(t, http.MethodGet, "/products/low-stock", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var products []catalogapp.ProductResponse
	decodeData(t, w, &products)
	assert.Empty(t, products)

	w = f.do(t, http.MethodPost, "/sales", token, saleBody(nil, line(laptopID, 6)))
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, http.MethodGet, "/products/low-stock", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &products)
	require.Len(t, products, 1)
	assert.Equal(t, laptopID, products[0].ID)
	assert.Equal(t, 4, products[0].Stock)
	assert.True(t, products[0].LowStock)
}
