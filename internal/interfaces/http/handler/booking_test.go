package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	bookingapp "github.com/locaflow/backend/internal/application/booking"
	inventoryapp "github.com/locaflow/backend/internal/application/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bookingForm(customerID, equipmentID uuid.UUID, qty int) map[string]any {
	return map[string]any{
		"customer_id":  customerID.String(),
		"start_date":   "2026-03-02",
		"end_date":     "2026-03-05",
		"delivery_fee": "50.00",
		"items": []map[string]any{
			{"equipment_id": equipmentID.String(), "quantity": qty},
		},
	}
}

func getEquipment(t *testing.T, env *testEnv, id uuid.UUID) inventoryapp.EquipmentDTO {
	t.Helper()
	w := doJSON(t, env.router(), http.MethodGet, "/equipment/"+id.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	e, _ := decodeData[inventoryapp.EquipmentDTO](t, w)
	return e
}

func TestBookingHandler_Create(t *testing.T) {
	env := newTestEnv(t)
	r := env.router()
	customerID := createCustomer(t, r)
	e := createEquipment(t, r, "BET-01", 5)

	w := doJSON(t, r, http.MethodPost, "/bookings", bookingForm(customerID, e.ID, 2))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	b, _ := decodeData[bookingapp.BookingDTO](t, w)

	assert.Equal(t, "PENDING", b.Status)
	assert.Equal(t, "LOC-000001", b.Number)
	assert.Equal(t, 3, b.Days)
	require.Len(t, b.Items, 1)
	assert.True(t, decimal.NewFromInt(300).Equal(b.Items[0].UnitPrice), b.Items[0].UnitPrice.String())
	assert.True(t, decimal.NewFromInt(650).Equal(b.TotalAmount), b.TotalAmount.String())

	// pending bookings hold no stock
	assert.Equal(t, 5, getEquipment(t, env, e.ID).AvailableQuantity)
}

func TestBookingHandler_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	r := env.router()
	customerID := createCustomer(t, r)
	e := createEquipment(t, r, "BET-01", 5)

	tests := []struct {
		name   string
		mutate func(form map[string]any)
		status int
	}{
		{"no items", func(f map[string]any) { f["items"] = []map[string]any{} }, http.StatusBadRequest},
		{"bad start date", func(f map[string]any) { f["start_date"] = "02/03/2026" }, http.StatusBadRequest},
		{"end before start", func(f map[string]any) { f["end_date"] = "2026-03-01" }, http.StatusBadRequest},
		{"unknown customer", func(f map[string]any) { f["customer_id"] = uuid.NewString() }, http.StatusNotFound},
		{"unknown equipment", func(f map[string]any) {
			f["items"] = []map[string]any{{"equipment_id": uuid.NewString(), "quantity": 1}}
		}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := bookingForm(customerID, e.ID, 1)
			tt.mutate(form)
			w := doJSON(t, r, http.MethodPost, "/bookings", form)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestBookingHandler_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	r := env.router()
	customerID := createCustomer(t, r)
	e := createEquipment(t, r, "BET-01", 5)

	w := doJSON(t, r, http.MethodPost, "/bookings", bookingForm(customerID, e.ID, 2))
	require.Equal(t, http.StatusCreated, w.Code)
	b, _ := decodeData[bookingapp.BookingDTO](t, w)
	path := "/bookings/" + b.ID.String()

	w = doJSON(t, r, http.MethodPost, path+"/confirm", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	eq := getEquipment(t, env, e.ID)
	assert.Equal(t, 3, eq.AvailableQuantity)
	assert.Equal(t, 2, eq.ReservedQuantity)

	// a second confirm is outside the state table
	w = doJSON(t, r, http.MethodPost, path+"/confirm", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(t, r, http.MethodPost, path+"/start", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPost, path+"/complete", map[string]any{
		"damaged": map[string]int{e.ID.String(): 1},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	done, _ := decodeData[bookingapp.BookingDTO](t, w)
	assert.Equal(t, "COMPLETED", done.Status)
	assert.Equal(t, 1, done.Items[0].DamagedQuantity)
	assert.Equal(t, 1, done.Items[0].ReturnedQuantity)

	eq = getEquipment(t, env, e.ID)
	assert.Equal(t, 4, eq.AvailableQuantity)
	assert.Equal(t, 0, eq.ReservedQuantity)
	assert.Equal(t, 1, eq.DamagedQuantity)
	assert.Equal(t, 5, eq.TotalQuantity)

	w = doJSON(t, r, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(t, r, http.MethodGet, "/stock/movements?booking_id="+b.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	moves, _ := decodeData[[]inventoryapp.StockMovementDTO](t, w)
	assert.Len(t, moves, 3)
}

func TestBookingHandler_ConfirmWithoutStock(t *testing.T) {
	env := newTestEnv(t)
	r := env.router()
	customerID := createCustomer(t, r)
	e := createEquipment(t, r, "BET-01", 1)

	w := doJSON(t, r, http.MethodPost, "/bookings", bookingForm(customerID, e.ID, 3))
	require.Equal(t, http.StatusCreated, w.Code)
	b, _ := decodeData[bookingapp.BookingDTO](t, w)

	w = doJSON(t, r, http.MethodPost, "/bookings/"+b.ID.String()+"/confirm", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INSUFFICIENT_STOCK", decodeError(t, w).Code)

	// the failed confirm left stock and status untouched
	assert.Equal(t, 1, getEquipment(t, env, e.ID).AvailableQuantity)
	w = doJSON(t, r, http.MethodGet, "/bookings/"+b.ID.String(), nil)
	got, _ := decodeData[bookingapp.BookingDTO](t, w)
	assert.Equal(t, "PENDING", got.Status)
}

func TestBookingHandler_CancelReleasesStock(t *testing.T) {
	env := newTestEnv(t)
	r := env.router()
	customerID := createCustomer(t, r)
	e := createEquipment(t, r, "BET-01", 4)

	w := doJSON(t, r, http.MethodPost, "/bookings", bookingForm(customerID, e.ID, 4))
	require.Equal(t, http.StatusCreated, w.Code)
	b, _ := decodeData[bookingapp.BookingDTO](t, w)
	path := "/bookings/" + b.ID.String()

	require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPost, path+"/confirm", nil).Code)
	assert.Equal(t, 0, getEquipment(t, env, e.ID).AvailableQuantity)

	w = doJSON(t, r, http.MethodPost, path+"/cancel", map[string]any{"reason": "Cliente desistiu"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cancelled, _ := decodeData[bookingapp.BookingDTO](t, w)
	assert.Equal(t, "CANCELLED", cancelled.Status)
	assert.Equal(t, "Cliente desistiu", cancelled.CancelReason)
	assert.Equal(t, 4, getEquipment(t, env, e.ID).AvailableQuantity)

	w = doJSON(t, r, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestBookingHandler_CompleteRejectsBadDamagedKeys(t *testing.T) {
	env := newTestEnv(t)
	w := doJSON(t, env.router(), http.MethodPost, "/bookings/"+uuid.NewString()+"/complete", map[string]any{
		"damaged": map[string]int{"not-a-uuid": 1},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandler_ContractWithoutRenderer(t *testing.T) {
	env := newTestEnv(t)
	w := doJSON(t, env.router(), http.MethodGet, "/bookings/"+uuid.NewString()+"/contract", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestBookingHandler_List(t *testing.T) {
	env := newTestEnv(t)
	r := env.router()
	customerID := createCustomer(t, r)
	e := createEquipment(t, r, "BET-01", 5)
	for range 3 {
		require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/bookings", bookingForm(customerID, e.ID, 1)).Code)
	}

	w := doJSON(t, r, http.MethodGet, "/bookings?status=PENDING&customer_id="+customerID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	items, meta := decodeData[[]bookingapp.BookingDTO](t, w)
	assert.Len(t, items, 3)
	assert.Equal(t, int64(3), meta.Total)

	w = doJSON(t, r, http.MethodGet, "/bookings?status=LOST", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
