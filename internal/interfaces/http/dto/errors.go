package dto

import (
	"net/http"
	"strings"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is returned when request binding fails
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodePayloadTooLarge is used when the body exceeds the configured limit
	ErrCodePayloadTooLarge = "ERR_PAYLOAD_TOO_LARGE"
	// ErrCodeRateLimited is used when a client exceeds its request rate
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Ticket rule error codes
const (
	// ErrCodeInvalidState is used when the ticket is paid, closed or locked
	ErrCodeInvalidState        = "ERR_INVALID_STATE"
	ErrCodeInvalidQuantity     = "ERR_INVALID_QUANTITY"
	ErrCodeInvalidAmount       = "ERR_INVALID_AMOUNT"
	ErrCodeInvalidPaymentType  = "ERR_INVALID_PAYMENT_TYPE"
	ErrCodeInvalidDiscountType = "ERR_INVALID_DISCOUNT_TYPE"
	// ErrCodeUnpaidBalance is used when closing a ticket that still has a balance
	ErrCodeUnpaidBalance = "ERR_UNPAID_BALANCE"
	ErrCodeNothingToPay  = "ERR_NOTHING_TO_PAY"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeInvalidQuantity:     http.StatusUnprocessableEntity,
	ErrCodeInvalidAmount:       http.StatusUnprocessableEntity,
	ErrCodeInvalidPaymentType:  http.StatusUnprocessableEntity,
	ErrCodeInvalidDiscountType: http.StatusUnprocessableEntity,
	ErrCodeUnpaidBalance:       http.StatusUnprocessableEntity,
	ErrCodeNothingToPay:        http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Codes outside the map fall back by suffix; anything else is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "_CONFLICT"):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// DomainErrorStatus returns the status for a domain error code. Domain codes
// without a specific mapping are rule violations and map to 422.
func DomainErrorStatus(code string) int {
	normalized := NormalizeErrorCode(code)
	if status, ok := ErrorCodeHTTPStatus[normalized]; ok {
		return status
	}
	if status := GetHTTPStatus(normalized); status != http.StatusInternalServerError {
		return status
	}
	return http.StatusUnprocessableEntity
}

// NormalizeErrorCode converts a bare domain code such as "LINE_NOT_FOUND"
// to the ERR_ prefixed form. Codes already prefixed pass through.
func NormalizeErrorCode(code string) string {
	switch {
	case code == "":
		return ErrCodeUnknown
	case strings.HasPrefix(code, "ERR_"):
		return code
	case code == "VALIDATION_ERROR":
		return ErrCodeValidation
	case code == "INTERNAL_ERROR":
		return ErrCodeInternal
	}
	return "ERR_" + code
}
