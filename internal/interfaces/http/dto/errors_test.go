package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeUnavailable, http.StatusServiceUnavailable},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeInvalidCredentials, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeReferential, http.StatusUnprocessableEntity},
		{ErrCodeInsufficientStock, http.StatusUnprocessableEntity},
		{ErrCodeStockConflict, http.StatusConflict},
		{ErrCodeAlreadyCancelled, http.StatusConflict},
		{ErrCodeDuplicateInvoice, http.StatusConflict},
		{ErrCodeInvoiceExhausted, http.StatusServiceUnavailable},
		{ErrCodeEmptySale, http.StatusBadRequest},
		{ErrCodeIntegrityViolation, http.StatusInternalServerError},
		{ErrCodeTooLarge, http.StatusRequestEntityTooLarge},
		// Unknown code should return 500
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"NOT_FOUND", ErrCodeNotFound},
		{"INVALID_INPUT", ErrCodeInvalidInput},
		{"INVALID_CREDENTIALS", ErrCodeInvalidCredentials},
		{"REFERENTIAL_ERROR", ErrCodeReferential},
		{"CONCURRENT_STOCK_CONFLICT", ErrCodeStockConflict},
		{"ALREADY_CANCELLED", ErrCodeAlreadyCancelled},
		{"UNAVAILABLE", ErrCodeUnavailable},
		// Field-level codes collapse into validation
		{"INVALID_PRICE", ErrCodeValidation},
		{"INVALID_QUANTITY", ErrCodeValidation},
		// API codes and unknown codes pass through
		{ErrCodeNotFound, ErrCodeNotFound},
		{"CUSTOM_ERROR", "CUSTOM_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestDomainCodesHaveStatus(t *testing.T) {
	for domainCode, apiCode := range DomainErrorCodeMapping {
		_, ok := ErrorCodeHTTPStatus[apiCode]
		assert.True(t, ok, "%s maps to %s which has no HTTP status", domainCode, apiCode)
	}
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "lines", Message: "lines is required"},
	}

	resp := NewValidationErrorResponse("Validation failed", "req-789", details)

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-789", resp.Error.RequestID)
	assert.Len(t, resp.Error.Details, 1)
}

func TestErrorResponseJSON(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Sale not found", "req-test-123")

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, false, raw["success"])
	assert.NotContains(t, raw, "data")

	errInfo := raw["error"].(map[string]any)
	assert.Equal(t, ErrCodeNotFound, errInfo["code"])
	assert.Equal(t, "req-test-123", errInfo["request_id"])
	assert.NotContains(t, errInfo, "details")
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]int{1, 2}, 2, 3, 20)

	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 3, resp.Meta.Page)
	assert.Equal(t, 20, resp.Meta.PageSize)
	assert.Equal(t, 2, resp.Meta.Count)
}
