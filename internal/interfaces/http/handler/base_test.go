package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, shared.CodeNotFound},
		{"wrapped domain error", fmt.Errorf("load: %w", shared.ErrInsufficientStock), http.StatusUnprocessableEntity, shared.CodeInsufficientStock},
		{"conflict", shared.ErrConcurrencyConflict, http.StatusConflict, shared.CodeConcurrencyConflict},
		{"named fallback", shared.NewDomainError("EQUIPMENT_INACTIVE", "inactive"), http.StatusUnprocessableEntity, "EQUIPMENT_INACTIVE"},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, "REQUEST_TIMEOUT"},
		{"unknown", errors.New("connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			h := &BaseHandler{}
			h.HandleError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.code, resp.Code)
			if tt.status >= http.StatusInternalServerError {
				assert.NotContains(t, resp.Error, "connection refused")
				assert.Len(t, c.Errors, 1)
			}
		})
	}
}

func TestPaginated_EmptyItems(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Paginated(&BaseHandler{}, c, &shared.Paginated[string]{Page: 1, PageSize: 20})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[],"meta":{"total":0,"page":1,"page_size":20,"total_pages":0}}`, w.Body.String())
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("2026-03-02")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), d)

	d, err = parseDate("2026-03-02T10:30:00-03:00")
	require.NoError(t, err)
	assert.Equal(t, 13, d.UTC().Hour())

	_, err = parseDate("02/03/2026")
	assert.Error(t, err)
}

func TestEndOfDay(t *testing.T) {
	assert.Nil(t, endOfDay(nil))

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	end := endOfDay(&day)
	assert.Equal(t, 2, end.Day())
	assert.Equal(t, 23, end.Hour())
	assert.True(t, end.After(day))

	withTime := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, withTime, *endOfDay(&withTime))
}

func TestBaseHandler_OptionalQueries(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?customer_id=bad&from=2026-01-01&active=false", nil)
	h := &BaseHandler{}

	from, ok := h.optionalDateQuery(c, "from")
	require.True(t, ok)
	require.NotNil(t, from)
	assert.Equal(t, time.January, from.Month())

	missing, ok := h.optionalUUIDQuery(c, "booking_id")
	assert.True(t, ok)
	assert.Nil(t, missing)

	active := optionalBoolQuery(c, "active")
	require.NotNil(t, active)
	assert.False(t, *active)
	assert.Nil(t, optionalBoolQuery(c, "archived"))

	_, ok = h.optionalUUIDQuery(c, "customer_id")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBaseHandler_TenantRequiresPrincipal(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := (&BaseHandler{}).tenant(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
