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
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeTokenExpired, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{"ALREADY_EXISTS", http.StatusConflict},
		{"CONCURRENCY_CONFLICT", http.StatusConflict},
		{"INVALID_INPUT", http.StatusBadRequest},
		{"INVALID_STATE", http.StatusUnprocessableEntity},
		{"INSUFFICIENT_STOCK", http.StatusUnprocessableEntity},
		{"PLAN_LIMIT_REACHED", http.StatusForbidden},
		{"FEATURE_NOT_AVAILABLE", http.StatusForbidden},
		{"SUBSCRIPTION_REQUIRED", http.StatusPaymentRequired},
		{"INTEGRATION_ERROR", http.StatusBadGateway},
		{"TENANT_INACTIVE", http.StatusForbidden},
		{"ACCOUNT_LOCKED", http.StatusLocked},
		{"FISCAL_SETTINGS_INCOMPLETE", http.StatusUnprocessableEntity},
		// naming rules
		{"INVALID_QUANTITY", http.StatusBadRequest},
		{"ITEM_NOT_FOUND", http.StatusNotFound},
		{"EQUIPMENT_IN_USE", http.StatusConflict},
		{"FLAG_EXISTS", http.StatusConflict},
		{"NO_ITEMS", http.StatusUnprocessableEntity},
		{"", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	tests := []struct {
		name       string
		total      int64
		pageSize   int
		totalPages int
	}{
		{"exact pages", 40, 20, 2},
		{"partial last page", 41, 20, 3},
		{"empty", 0, 20, 0},
		{"zero page size", 10, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NewSuccessResponseWithMeta([]string{}, tt.total, 1, tt.pageSize)
			require.NotNil(t, resp.Meta)
			assert.Equal(t, tt.totalPages, resp.Meta.TotalPages)
			assert.Equal(t, tt.total, resp.Meta.Total)
		})
	}
}

func TestResponseJSONShape(t *testing.T) {
	t.Run("success omits meta", func(t *testing.T) {
		raw, err := json.Marshal(NewSuccessResponse(map[string]int{"n": 1}))
		require.NoError(t, err)
		assert.JSONEq(t, `{"data":{"n":1}}`, string(raw))
	})

	t.Run("error omits empty details", func(t *testing.T) {
		raw, err := json.Marshal(NewErrorResponse("NOT_FOUND", "Booking not found", ""))
		require.NoError(t, err)
		assert.JSONEq(t, `{"error":"Booking not found","code":"NOT_FOUND"}`, string(raw))
	})

	t.Run("validation error carries details", func(t *testing.T) {
		resp := NewValidationErrorResponse("Request validation failed", "req-1", []ValidationDetail{
			{Field: "email", Message: "Invalid email format"},
		})
		raw, err := json.Marshal(resp)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"error": "Request validation failed",
			"code": "VALIDATION_ERROR",
			"details": [{"field": "email", "message": "Invalid email format"}],
			"request_id": "req-1"
		}`, string(raw))
	})
}

func TestListRequestNormalize(t *testing.T) {
	r := ListRequest{}
	r.Normalize()
	assert.Equal(t, 1, r.Page)
	assert.Equal(t, 20, r.PageSize)

	r = ListRequest{Page: 3, PageSize: 50}
	r.Normalize()
	assert.Equal(t, 3, r.Page)
	assert.Equal(t, 50, r.PageSize)
}
