package handler

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	catalogapp "github.com/techsolutions/pos/internal/application/catalog"
	"github.com/techsolutions/pos/internal/interfaces/http/dto"
)

func TestProductHandler_List(t *testing.T) {
	f := newAPIFixture(t)
	token := f.operatorToken(t)

	w := f.do(t, http.MethodGet, "/products?page_size=2", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 1, resp.Meta.Page)
	assert.Equal(t, 2, resp.Meta.PageSize)
	assert.Equal(t, 2, resp.Meta.Count)

	var products []catalogapp.ProductResponse
	decodeData(t, w, &products)
	require.Len(t, products, 2)
	assert.Equal(t, "Laptop Dell XPS 13", products[0].Name)

	t.Run("page size above limit", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/products?page_size=500", token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestProductHandler_Lookups(t *testing.T) {
	f := newAPIFixture(t)
	token := f.operatorToken(t)

	w := f.do(t, http.MethodGet, "/products/code/mon-001", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var product catalogapp.ProductResponse
	decodeData(t, w, &product)
	assert.Equal(t, monitorID, product.ID)
	assert.True(t, product.Price.Equal(decimal.NewFromInt(250)))

	w = f.do(t, http.MethodGet, "/products/1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &product)
	assert.Equal(t, "LAP-001", product.Code)

	w = f.do(t, http.MethodGet, "/products/404", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodGet, "/products/search?q=teclado", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var found []catalogapp.ProductResponse
	decodeData(t, w, &found)
	require.Len(t, found, 1)
	assert.Equal(t, "TEC-001", found[0].Code)

	w = f.do(t, http.MethodGet, "/products/search?q=", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductHandler_Create(t *testing.T) {
	f := newAPIFixture(t)
	token := f.operatorToken(t)

	body := map[string]any{"code": "MOU-001", "name": "Mouse Logitech", "price": "25.50", "stock": 40}
	w := f.do(t, http.MethodPost, "/products", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created catalogapp.ProductResponse
	decodeData(t, w, &created)
	assert.Positive(t, created.ID)
	assert.Equal(t, 40, created.Stock)
	assert.Equal(t, catalogapp.DefaultMinStock, created.MinStock)
	assert.True(t, created.Price.Equal(decimal.RequireFromString("25.50")))

	t.Run("duplicate code", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/products", token, body)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrCodeAlreadyExists, decodeResponse(t, w).Error.Code)
	})

	t.Run("negative price", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/products", token, map[string]any{"code": "X-1", "name": "X", "price": "-5"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, decodeResponse(t, w).Error.Code)
	})

	t.Run("missing name", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/products", token, map[string]any{"code": "X-2", "price": "5"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		require.NotEmpty(t, resp.Error.Details)
		assert.Equal(t, "name", resp.Error.Details[0].Field)
	})
}

func TestProductHandler_UpdateAndDeactivate(t *testing.T) {
	f := newAPIFixture(t)
	token := f.operatorToken(t)

	w := f.do(t, http.MethodPut, "/products/2", token, map[string]any{"price": "199.99", "min_stock": 3})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated catalogapp.ProductResponse
	decodeData(t, w, &updated)
	assert.True(t, updated.Price.Equal(decimal.RequireFromString("199.99")))
	assert.Equal(t, 3, updated.MinStock)
	assert.Equal(t, 25, updated.Stock)

	w = f.do(t, http.MethodDelete, "/products/2", token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodPut, "/products/2", token, map[string]any{"price": "10"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidState, decodeResponse(t, w).Error.Code)

	w = f.do(t, http.MethodPost, "/sales", token, saleBody(nil, line(monitorID, 1)))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeReferential, decodeResponse(t, w).Error.Code)
}

func TestProductHandler_AdjustStock(t *testing.T) {
	f := newAPIFixture(t)
	token := f.operatorToken(t)

	w := f.do(t, http.MethodPost, "/products/3/stock", token, map[string]any{"delta": 10})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var product catalogapp.ProductResponse
	decodeData(t, w, &product)
	assert.Equal(t, "TEC-001", product.Code)
	assert.Equal(t, 25, product.Stock)

	w = f.do(t, http.MethodPost, "/products/3/stock", token, map[string]any{"delta": -26})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeInsufficientStock, decodeResponse(t, w).Error.Code)

	w = f.do(t, http.MethodPost, "/products/3/stock", token, map[string]any{"delta": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/products/404/stock", token, map[string]any{"delta": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodGet, "/products/3", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &product)
	assert.Equal(t, 25, product.Stock)
}
