package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	start = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	end   = start.Add(72 * time.Hour)
)

func testTerms() Terms {
	return Terms{
		CustomerID:  uuid.New(),
		StartDate:   start,
		EndDate:     end,
		Discount:    decimal.NewFromInt(20),
		DeliveryFee: decimal.NewFromInt(50),
	}
}

func testBooking(t *testing.T) (*Booking, uuid.UUID, uuid.UUID) {
	t.Helper()
	e1, e2 := uuid.New(), uuid.New()
	i1, err := NewItem(e1, "Betoneira", 2, 3, decimal.NewFromInt(150))
	require.NoError(t, err)
	i2, err := NewItem(e2, "Andaime", 10, 3, decimal.NewFromInt(30))
	require.NoError(t, err)
	b, err := NewBooking(uuid.New(), FormatNumber(1), testTerms(), []Item{i1, i2})
	require.NoError(t, err)
	b.ClearDomainEvents()
	return b, e1, e2
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "LOC-000001", FormatNumber(1))
	assert.Equal(t, "LOC-123456", FormatNumber(123456))
}

func TestRentalDays(t *testing.T) {
	tests := []struct {
		hours float64
		want  int
	}{
		{1, 1},
		{24, 1},
		{25, 2},
		{48, 2},
		{72.5, 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RentalDays(start, start.Add(time.Duration(tt.hours*float64(time.Hour)))), "hours=%v", tt.hours)
	}
}

func TestNewBookingTotals(t *testing.T) {
	b, _, _ := testBooking(t)
	assert.Equal(t, StatusPending, b.Status)
	assert.True(t, decimal.NewFromInt(600).Equal(b.Subtotal))
	assert.True(t, decimal.NewFromInt(630).Equal(b.TotalAmount))
	assert.Equal(t, 3, b.Days())
	for _, item := range b.Items {
		assert.Equal(t, b.ID, item.BookingID)
	}
}

func TestNewBookingValidation(t *testing.T) {
	item, err := NewItem(uuid.New(), "X", 1, 1, decimal.NewFromInt(10))
	require.NoError(t, err)

	terms := testTerms()
	terms.EndDate = terms.StartDate
	_, err = NewBooking(uuid.New(), "LOC-000001", terms, []Item{item})
	assert.Equal(t, "INVALID_PERIOD", shared.ErrorCode(err))

	_, err = NewBooking(uuid.New(), "LOC-000001", testTerms(), nil)
	assert.Equal(t, "NO_ITEMS", shared.ErrorCode(err))

	terms = testTerms()
	terms.Discount = decimal.NewFromInt(1000)
	_, err = NewBooking(uuid.New(), "LOC-000001", terms, []Item{item})
	assert.Equal(t, "INVALID_AMOUNT", shared.ErrorCode(err))

	_, err = NewItem(uuid.New(), "X", 0, 1, decimal.NewFromInt(10))
	assert.Error(t, err)
}

func TestBookingStateMachine(t *testing.T) {
	tests := []struct {
		from   Status
		to     Status
		allows bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusInProgress, false},
		{StatusPending, StatusCompleted, false},
		{StatusConfirmed, StatusInProgress, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusCompleted, false},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusCancelled, true},
		{StatusInProgress, StatusConfirmed, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.allows, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestBookingLifecycle(t *testing.T) {
	b, e1, _ := testBooking(t)

	require.NoError(t, b.Confirm())
	assert.NotNil(t, b.ConfirmedAt)
	require.Len(t, b.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeBookingConfirmed, b.GetDomainEvents()[0].EventType())

	err := b.Update(testTerms(), b.Items)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	require.NoError(t, b.Start())
	assert.NotNil(t, b.PickedUpAt)

	err = b.Complete(map[uuid.UUID]int{e1: 3})
	assert.Equal(t, "INVALID_QUANTITY", shared.ErrorCode(err))
	assert.Equal(t, StatusInProgress, b.Status)

	require.NoError(t, b.Complete(map[uuid.UUID]int{e1: 1}))
	assert.Equal(t, StatusCompleted, b.Status)
	assert.Equal(t, 1, b.Items[0].DamagedQuantity)
	assert.Equal(t, 1, b.Items[0].ReturnedQuantity)
	assert.Equal(t, 1, b.Items[0].GoodQuantity())
	assert.Equal(t, 10, b.Items[1].ReturnedQuantity)
	assert.NotNil(t, b.ReturnedAt)

	_, err = b.Cancel("late")
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	assert.Error(t, b.CanDelete())
}

func TestBookingCancel(t *testing.T) {
	pending, _, _ := testBooking(t)
	released, err := pending.Cancel(" cliente desistiu ")
	require.NoError(t, err)
	assert.False(t, released)
	assert.Equal(t, "cliente desistiu", pending.CancelReason)
	assert.NoError(t, pending.CanDelete())

	confirmed, _, _ := testBooking(t)
	require.NoError(t, confirmed.Confirm())
	released, err = confirmed.Cancel("")
	require.NoError(t, err)
	assert.True(t, released)

	started, _, _ := testBooking(t)
	require.NoError(t, started.Confirm())
	require.NoError(t, started.Start())
	released, err = started.Cancel("")
	require.NoError(t, err)
	assert.True(t, released)
}

func TestBookingQuantitiesByEquipment(t *testing.T) {
	e := uuid.New()
	i1, _ := NewItem(e, "A", 2, 1, decimal.NewFromInt(1))
	i2, _ := NewItem(e, "A", 3, 1, decimal.NewFromInt(1))
	b, err := NewBooking(uuid.New(), "LOC-000002", testTerms(), []Item{i1, i2})
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]int{e: 5}, b.QuantitiesByEquipment())
	assert.Equal(t, []uuid.UUID{e}, b.EquipmentIDs())

	require.NoError(t, b.Confirm())
	require.NoError(t, b.Start())
	require.NoError(t, b.Complete(map[uuid.UUID]int{e: 4}))
	assert.Equal(t, 2, b.Items[0].DamagedQuantity)
	assert.Equal(t, 2, b.Items[1].DamagedQuantity)
	assert.Equal(t, 1, b.Items[1].ReturnedQuantity)
}
