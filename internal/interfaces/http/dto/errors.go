package dto

import (
	"net/http"
	"strings"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeUnavailable is used when the database or sequence store cannot be reached
	ErrCodeUnavailable = "ERR_UNAVAILABLE"
)

// Validation error codes
const (
	ErrCodeValidation         = "ERR_VALIDATION"
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	ErrCodeValidationFormat   = "ERR_VALIDATION_FORMAT"
	ErrCodeValidationRange    = "ERR_VALIDATION_RANGE"
	ErrCodeValidationLength   = "ERR_VALIDATION_LENGTH"
)

// Authentication error codes
const (
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeTokenExpired       = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "ERR_TOKEN_INVALID"
	ErrCodeTokenRevoked       = "ERR_TOKEN_REVOKED"
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Sale error codes
const (
	// ErrCodeReferential is used when a sale references a missing or inactive record
	ErrCodeReferential = "ERR_REFERENTIAL"
	// ErrCodeInsufficientStock is used when a line asks for more than is on hand
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"
	// ErrCodeStockConflict is used when stock moved between the check and the decrement
	ErrCodeStockConflict = "ERR_STOCK_CONFLICT"
	// ErrCodeAlreadyCancelled is used when voiding a sale twice
	ErrCodeAlreadyCancelled = "ERR_ALREADY_CANCELLED"
	// ErrCodeDuplicateInvoice is used when a caller-supplied invoice number is taken
	ErrCodeDuplicateInvoice = "ERR_DUPLICATE_INVOICE"
	// ErrCodeInvoiceExhausted is used when no free invoice number was found
	ErrCodeInvoiceExhausted = "ERR_INVOICE_EXHAUSTED"
	// ErrCodeEmptySale is used when a sale has no lines
	ErrCodeEmptySale = "ERR_EMPTY_SALE"
	// ErrCodeIntegrityViolation is used when stored sale data is inconsistent
	ErrCodeIntegrityViolation = "ERR_INTEGRITY_VIOLATION"
)

// Business rule error codes
const (
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
)

// Input error codes
const (
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	ErrCodeTooLarge     = "ERR_REQUEST_TOO_LARGE"
	ErrCodeRateLimited  = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:     http.StatusInternalServerError,
	ErrCodeInternal:    http.StatusInternalServerError,
	ErrCodeUnavailable: http.StatusServiceUnavailable,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,
	ErrCodeValidationLength:   http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeTokenRevoked:       http.StatusUnauthorized,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Sale errors
	ErrCodeReferential:        http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock:  http.StatusUnprocessableEntity,
	ErrCodeStockConflict:      http.StatusConflict,
	ErrCodeAlreadyCancelled:   http.StatusConflict,
	ErrCodeDuplicateInvoice:   http.StatusConflict,
	ErrCodeInvoiceExhausted:   http.StatusServiceUnavailable,
	ErrCodeEmptySale:          http.StatusBadRequest,
	ErrCodeIntegrityViolation: http.StatusInternalServerError,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeBusinessRule: http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeTooLarge:     http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:  http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":                 ErrCodeNotFound,
	"ALREADY_EXISTS":            ErrCodeAlreadyExists,
	"INVALID_INPUT":             ErrCodeInvalidInput,
	"INVALID_STATE":             ErrCodeInvalidState,
	"INVALID_CREDENTIALS":       ErrCodeInvalidCredentials,
	"UNAUTHORIZED":              ErrCodeUnauthorized,
	"FORBIDDEN":                 ErrCodeForbidden,
	"CONCURRENCY_CONFLICT":      ErrCodeConcurrencyConflict,
	"UNAVAILABLE":               ErrCodeUnavailable,
	"REFERENTIAL_ERROR":         ErrCodeReferential,
	"INSUFFICIENT_STOCK":        ErrCodeInsufficientStock,
	"CONCURRENT_STOCK_CONFLICT": ErrCodeStockConflict,
	"ALREADY_CANCELLED":         ErrCodeAlreadyCancelled,
	"DUPLICATE_INVOICE":         ErrCodeDuplicateInvoice,
	"INVOICE_NUMBER_EXHAUSTED":  ErrCodeInvoiceExhausted,
	"EMPTY_SALE":                ErrCodeEmptySale,
	"INTEGRITY_VIOLATION":       ErrCodeIntegrityViolation,
	"VALIDATION_ERROR":          ErrCodeValidation,
	"BAD_REQUEST":               ErrCodeBadRequest,
	"INTERNAL_ERROR":            ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Field-level domain codes such as INVALID_PRICE become ERR_VALIDATION;
// codes already in the API format or unknown are returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	if strings.HasPrefix(code, "INVALID_") {
		return ErrCodeValidation
	}
	return code
}
