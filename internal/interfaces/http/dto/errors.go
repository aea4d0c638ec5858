package dto

import (
	"net/http"
	"strings"
)

// Transport-level error codes. Domain codes pass through unchanged
const (
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeRateLimited        = "RATE_LIMIT_EXCEEDED"
	ErrCodeRequestTooLarge    = "REQUEST_TOO_LARGE"
	ErrCodeTimeout            = "REQUEST_TIMEOUT"
	ErrCodeTokenExpired       = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "INVALID_TOKEN"
	ErrCodeTokenRevoked       = "TOKEN_REVOKED"
	ErrCodeTenantInactive     = "TENANT_INACTIVE"
	ErrCodeInvalidAPIKey      = "INVALID_API_KEY"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// errorCodeHTTPStatus maps error codes to HTTP status codes. Codes missing
// here fall back to the naming rules in GetHTTPStatus
var errorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeRateLimited:        http.StatusTooManyRequests,
	ErrCodeRequestTooLarge:    http.StatusRequestEntityTooLarge,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeTokenRevoked:       http.StatusUnauthorized,
	ErrCodeInvalidAPIKey:      http.StatusUnauthorized,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,

	"ALREADY_EXISTS":             http.StatusConflict,
	"CONCURRENCY_CONFLICT":       http.StatusConflict,
	"INVALID_INPUT":              http.StatusBadRequest,
	"INVALID_STATE":              http.StatusUnprocessableEntity,
	"INSUFFICIENT_STOCK":         http.StatusUnprocessableEntity,
	"PLAN_LIMIT_REACHED":         http.StatusForbidden,
	"FEATURE_NOT_AVAILABLE":      http.StatusForbidden,
	"SUBSCRIPTION_REQUIRED":      http.StatusPaymentRequired,
	"INTEGRATION_ERROR":          http.StatusBadGateway,
	"TENANT_INACTIVE":            http.StatusForbidden,
	"TENANT_CANCELLED":           http.StatusForbidden,
	"ACCOUNT_LOCKED":             http.StatusLocked,
	"ACCOUNT_DISABLED":           http.StatusForbidden,
	"INVALID_RESET_TOKEN":        http.StatusBadRequest,
	"FISCAL_SETTINGS_INCOMPLETE": http.StatusUnprocessableEntity,
	"CUSTOMER_DOCUMENT_REQUIRED": http.StatusUnprocessableEntity,
	"INVALID_PERIOD":             http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status for an error code.
// Unlisted codes follow their names: INVALID_* is 400, *_NOT_FOUND is 404,
// *_IN_USE and *_EXISTS are 409, and any other business rule is 422
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "_IN_USE"), strings.HasSuffix(code, "_EXISTS"):
		return http.StatusConflict
	case code == "":
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}
