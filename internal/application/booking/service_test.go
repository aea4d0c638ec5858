package booking

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/billing"
	"github.com/locaflow/backend/internal/domain/booking"
	"github.com/locaflow/backend/internal/domain/inventory"
	"github.com/locaflow/backend/internal/domain/partner"
	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type bookingFixture struct {
	service   *Service
	bookings  *MockBookingRepository
	customers *MockCustomerFinder
	equipment *MockEquipmentRepository
	movements *MockMovementRepository
	limits    *MockLimitChecker
	tx        *fakeTx
	events    *capturedEvents
}

func newBookingFixture() *bookingFixture {
	f := &bookingFixture{
		bookings:  new(MockBookingRepository),
		customers: new(MockCustomerFinder),
		equipment: new(MockEquipmentRepository),
		movements: new(MockMovementRepository),
		limits:    new(MockLimitChecker),
		tx:        &fakeTx{},
		events:    &capturedEvents{},
	}
	f.service = NewService(f.bookings, f.customers, f.equipment, f.movements, f.tx, f.limits, f.events, zap.NewNop())
	f.service.now = func() time.Time { return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC) }
	return f
}

func createCustomer(t *testing.T, tenantID uuid.UUID) *partner.Customer {
	t.Helper()
	c, err := partner.NewCustomer(tenantID, partner.CustomerProfile{Name: gofakeit.Name(), Document: "52998224725"})
	require.NoError(t, err)
	c.ClearDomainEvents()
	return c
}

func createEquipment(t *testing.T, tenantID uuid.UUID, units int) *inventory.Equipment {
	t.Helper()
	e, err := inventory.NewEquipment(tenantID, "EQ-"+gofakeit.DigitN(5), inventory.EquipmentDetails{Name: "Compactador " + gofakeit.Word()},
		inventory.Pricing{Daily: decimal.NewFromInt(100), Weekly: decimal.NewFromInt(500)})
	require.NoError(t, err)
	_, err = e.Move(inventory.MovementPurchase, units, inventory.MovementRef{})
	require.NoError(t, err)
	e.ClearDomainEvents()
	e.MarkPersisted()
	return e
}

func createBooking(t *testing.T, tenantID uuid.UUID, lines map[*inventory.Equipment]int) *booking.Booking {
	t.Helper()
	start := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	items := make([]booking.Item, 0, len(lines))
	for e, qty := range lines {
		item, err := booking.NewItem(e.ID, e.Name, qty, 3, e.RentalPrice(3))
		require.NoError(t, err)
		items = append(items, item)
	}
	b, err := booking.NewBooking(tenantID, "LOC-000001", booking.Terms{
		CustomerID: uuid.New(), StartDate: start, EndDate: start.Add(72 * time.Hour),
	}, items)
	require.NoError(t, err)
	b.ClearDomainEvents()
	b.MarkPersisted()
	return b
}

func TestService_Create(t *testing.T) {
	tenantID := uuid.New()
	start := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	monthStart := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("prices items for the period", func(t *testing.T) {
		f := newBookingFixture()
		customer := createCustomer(t, tenantID)
		e := createEquipment(t, tenantID, 10)
		f.customers.On("FindByIDForTenant", mock.Anything, tenantID, customer.ID).Return(customer, nil)
		f.bookings.On("CountCreatedSince", mock.Anything, tenantID, monthStart).Return(int64(4), nil)
		f.limits.On("CheckLimit", mock.Anything, tenantID, billing.LimitBookingsPerMonth, int64(4)).Return(nil)
		f.equipment.On("FindByIDsForTenant", mock.Anything, tenantID, []uuid.UUID{e.ID}).Return([]inventory.Equipment{*e}, nil)
		f.bookings.On("NextSequence", mock.Anything, tenantID).Return(int64(7), nil)
		f.bookings.On("Save", mock.Anything, mock.AnythingOfType("*booking.Booking")).Return(nil)

		dto, err := f.service.Create(context.Background(), CreateBookingInput{
			TenantID:    tenantID,
			ActorID:     uuid.New(),
			CustomerID:  customer.ID,
			StartDate:   start,
			EndDate:     start.Add(8*24*time.Hour + time.Hour),
			DeliveryFee: decimal.NewFromInt(80),
			Discount:    decimal.NewFromInt(30),
			Items:       []ItemInput{{EquipmentID: e.ID, Quantity: 2}},
		})
		require.NoError(t, err)
		assert.Equal(t, "LOC-000007", dto.Number)
		assert.Equal(t, "PENDING", dto.Status)
		assert.Equal(t, 9, dto.Days)
		// 9 days = one week (500) + two days (200) per unit
		assert.True(t, dto.Items[0].UnitPrice.Equal(decimal.NewFromInt(700)), dto.Items[0].UnitPrice.String())
		assert.True(t, dto.Subtotal.Equal(decimal.NewFromInt(1400)))
		assert.True(t, dto.TotalAmount.Equal(decimal.NewFromInt(1450)))
		assert.Equal(t, []string{booking.EventTypeBookingCreated}, f.events.types())
	})

	t.Run("monthly limit", func(t *testing.T) {
		f := newBookingFixture()
		customer := createCustomer(t, tenantID)
		f.customers.On("FindByIDForTenant", mock.Anything, tenantID, customer.ID).Return(customer, nil)
		f.bookings.On("CountCreatedSince", mock.Anything, tenantID, monthStart).Return(int64(30), nil)
		f.limits.On("CheckLimit", mock.Anything, tenantID, billing.LimitBookingsPerMonth, int64(30)).Return(shared.ErrPlanLimitReached)

		_, err := f.service.Create(context.Background(), CreateBookingInput{TenantID: tenantID, CustomerID: customer.ID})
		assert.ErrorIs(t, err, shared.ErrPlanLimitReached)
		assert.Zero(t, f.tx.calls)
	})

	t.Run("inactive customer", func(t *testing.T) {
		f := newBookingFixture()
		customer := createCustomer(t, tenantID)
		customer.Deactivate()
		f.customers.On("FindByIDForTenant", mock.Anything, tenantID, customer.ID).Return(customer, nil)

		_, err := f.service.Create(context.Background(), CreateBookingInput{TenantID: tenantID, CustomerID: customer.ID})
		assert.Equal(t, "CUSTOMER_INACTIVE", shared.ErrorCode(err))
	})

	t.Run("unknown equipment", func(t *testing.T) {
		f := newBookingFixture()
		customer := createCustomer(t, tenantID)
		missing := uuid.New()
		f.customers.On("FindByIDForTenant", mock.Anything, tenantID, customer.ID).Return(customer, nil)
		f.bookings.On("CountCreatedSince", mock.Anything, tenantID, monthStart).Return(int64(0), nil)
		f.limits.On("CheckLimit", mock.Anything, tenantID, billing.LimitBookingsPerMonth, int64(0)).Return(nil)
		f.equipment.On("FindByIDsForTenant", mock.Anything, tenantID, []uuid.UUID{missing}).Return([]inventory.Equipment{}, nil)

		_, err := f.service.Create(context.Background(), CreateBookingInput{
			TenantID: tenantID, CustomerID: customer.ID, StartDate: start, EndDate: start.Add(time.Hour),
			Items: []ItemInput{{EquipmentID: missing, Quantity: 1}},
		})
		assert.True(t, shared.IsNotFound(err))
	})
}

func TestService_Confirm(t *testing.T) {
	tenantID := uuid.New()

	t.Run("reserves stock", func(t *testing.T) {
		f := newBookingFixture()
		e := createEquipment(t, tenantID, 5)
		b := createBooking(t, tenantID, map[*inventory.Equipment]int{e: 3})
		f.bookings.On("FindByIDForTenant", mock.Anything, tenantID, b.ID).Return(b, nil)
		f.equipment.On("FindByIDForTenant", mock.Anything, tenantID, e.ID).Return(e, nil)
		f.movements.On("Create", mock.Anything, mock.MatchedBy(func(m *inventory.StockMovement) bool {
			return m.Type == inventory.MovementReservation && m.Quantity == 3 && *m.BookingID == b.ID
		})).Return(nil)
		f.equipment.On("SaveWithLock", mock.Anything, e).Return(nil)
		f.bookings.On("SaveWithLock", mock.Anything, b).Return(nil)

		dto, err := f.service.Confirm(context.Background(), tenantID, b.ID, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, "CONFIRMED", dto.Status)
		assert.NotNil(t, dto.ConfirmedAt)
		assert.Equal(t, 2, e.Stock.Available)
		assert.Equal(t, 3, e.Stock.Reserved)
		assert.Equal(t, []string{booking.EventTypeBookingConfirmed, inventory.EventTypeStockMoved}, f.events.types())
	})

	t.Run("insufficient stock saves nothing", func(t *testing.T) {
		f := newBookingFixture()
		e := createEquipment(t, tenantID, 1)
		b := createBooking(t, tenantID, map[*inventory.Equipment]int{e: 2})
		f.bookings.On("FindByIDForTenant", mock.Anything, tenantID, b.ID).Return(b, nil)
		f.equipment.On("FindByIDForTenant", mock.Anything, tenantID, e.ID).Return(e, nil)

		_, err := f.service.Confirm(context.Background(), tenantID, b.ID, uuid.New())
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.True(t, f.tx.rolledBack)
		f.bookings.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
		f.movements.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.Empty(t, f.events.events)
	})

	t.Run("only pending bookings", func(t *testing.T) {
		f := newBookingFixture()
		e := createEquipment(t, tenantID, 5)
		b := createBooking(t, tenantID, map[*inventory.Equipment]int{e: 1})
		_, err := b.Cancel("")
		require.NoError(t, err)
		f.bookings.On("FindByIDForTenant", mock.Anything, tenantID, b.ID).Return(b, nil)

		_, err = f.service.Confirm(context.Background(), tenantID, b.ID, uuid.New())
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}

func TestService_Complete(t *testing.T) {
	f := newBookingFixture()
	tenantID := uuid.New()
	e := createEquipment(t, tenantID, 5)
	b := createBooking(t, tenantID, map[*inventory.Equipment]int{e: 4})
	_, err := e.Move(inventory.MovementReservation, 4, inventory.MovementRef{})
	require.NoError(t, err)
	require.NoError(t, b.Confirm())
	require.NoError(t, b.Start())
	b.ClearDomainEvents()
	e.ClearDomainEvents()

	f.bookings.On("FindByIDForTenant", mock.Anything, tenantID, b.ID).Return(b, nil)
	f.equipment.On("FindByIDForTenant", mock.Anything, tenantID, e.ID).Return(e, nil).Once()
	f.movements.On("Create", mock.Anything, mock.Anything).Return(nil).Twice()
	f.equipment.On("SaveWithLock", mock.Anything, e).Return(nil).Once()
	f.bookings.On("SaveWithLock", mock.Anything, b).Return(nil)

	dto, err := f.service.Complete(context.Background(), CompleteBookingInput{
		TenantID: tenantID, ID: b.ID, Damaged: map[uuid.UUID]int{e.ID: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", dto.Status)
	assert.Equal(t, 3, dto.Items[0].ReturnedQuantity)
	assert.Equal(t, 1, dto.Items[0].DamagedQuantity)
	assert.Equal(t, inventory.StockLevels{Total: 5, Available: 4, Damaged: 1}, e.Stock)
	f.equipment.AssertExpectations(t)
	f.movements.AssertExpectations(t)
}

func TestService_Cancel(t *testing.T) {
	tenantID := uuid.New()

	t.Run("confirmed releases stock", func(t *testing.T) {
		f := newBookingFixture()
		e := createEquipment(t, tenantID, 5)
		b := createBooking(t, tenantID, map[*inventory.Equipment]int{e: 2})
		_, err := e.Move(inventory.MovementReservation, 2, inventory.MovementRef{})
		require.NoError(t, err)
		require.NoError(t, b.Confirm())
		b.ClearDomainEvents()

		f.bookings.On("FindByIDForTenant", mock.Anything, tenantID, b.ID).Return(b, nil)
		f.equipment.On("FindByIDForTenant", mock.Anything, tenantID, e.ID).Return(e, nil)
		f.movements.On("Create", mock.Anything, mock.MatchedBy(func(m *inventory.StockMovement) bool {
			return m.Type == inventory.MovementRelease && m.Quantity == 2
		})).Return(nil)
		f.equipment.On("SaveWithLock", mock.Anything, e).Return(nil)
		f.bookings.On("SaveWithLock", mock.Anything, b).Return(nil)

		dto, err := f.service.Cancel(context.Background(), tenantID, b.ID, uuid.New(), " Cliente desistiu ")
		require.NoError(t, err)
		assert.Equal(t, "CANCELLED", dto.Status)
		assert.Equal(t, "Cliente desistiu", dto.CancelReason)
		assert.Equal(t, 5, e.Stock.Available)
		assert.Zero(t, e.Stock.Reserved)
	})

	t.Run("pending moves no stock", func(t *testing.T) {
		f := newBookingFixture()
		e := createEquipment(t, tenantID, 5)
		b := createBooking(t, tenantID, map[*inventory.Equipment]int{e: 2})
		f.bookings.On("FindByIDForTenant", mock.Anything, tenantID, b.ID).Return(b, nil)
		f.bookings.On("SaveWithLock", mock.Anything, b).Return(nil)

		_, err := f.service.Cancel(context.Background(), tenantID, b.ID, uuid.New(), "")
		require.NoError(t, err)
		f.equipment.AssertNotCalled(t, "FindByIDForTenant", mock.Anything, mock.Anything, mock.Anything)
		assert.Equal(t, []string{booking.EventTypeBookingCancelled}, f.events.types())
	})
}

func TestService_UpdateAndDelete(t *testing.T) {
	tenantID := uuid.New()
	f := newBookingFixture()
	e := createEquipment(t, tenantID, 5)
	b := createBooking(t, tenantID, map[*inventory.Equipment]int{e: 1})
	_, err := e.Move(inventory.MovementReservation, 1, inventory.MovementRef{})
	require.NoError(t, err)
	require.NoError(t, b.Confirm())
	f.bookings.On("FindByIDForTenant", mock.Anything, tenantID, b.ID).Return(b, nil)

	_, err = f.service.Update(context.Background(), UpdateBookingInput{
		CreateBookingInput: CreateBookingInput{TenantID: tenantID, CustomerID: b.CustomerID},
		ID:                 b.ID,
	})
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	err = f.service.Delete(context.Background(), tenantID, b.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	f.bookings.AssertNotCalled(t, "DeleteForTenant", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_List(t *testing.T) {
	f := newBookingFixture()
	tenantID, customerID := uuid.New(), uuid.New()
	match := mock.MatchedBy(func(filter shared.Filter) bool {
		return filter.Filters["status"] == "CONFIRMED" && filter.Filters["customer_id"] == customerID && filter.Search == "LOC-0001"
	})
	f.bookings.On("FindAllForTenant", mock.Anything, tenantID, match).Return([]booking.Booking{}, nil)
	f.bookings.On("CountForTenant", mock.Anything, tenantID, match).Return(int64(0), nil)

	_, err := f.service.List(context.Background(), tenantID, BookingListFilter{Status: "confirmed", CustomerID: &customerID, Search: "LOC-0001"})
	require.NoError(t, err)

	_, err = f.service.List(context.Background(), tenantID, BookingListFilter{Status: "LOST"})
	assert.Equal(t, shared.CodeInvalidInput, shared.ErrorCode(err))
}
