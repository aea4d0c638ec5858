package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEquipment(t *testing.T) *Equipment {
	t.Helper()
	e, err := NewEquipment(uuid.New(), "bet-400", EquipmentDetails{Name: "Betoneira 400L", Category: "Construção"},
		Pricing{Daily: decimal.NewFromInt(50), Weekly: decimal.NewFromInt(280), Monthly: decimal.NewFromInt(900)})
	require.NoError(t, err)
	e.ClearDomainEvents()
	return e
}

func TestNewEquipment(t *testing.T) {
	tenantID := uuid.New()
	e, err := NewEquipment(tenantID, " and-01 ", EquipmentDetails{Name: "Andaime"}, Pricing{Daily: decimal.NewFromInt(10)})
	require.NoError(t, err)
	assert.Equal(t, "AND-01", e.Code)
	assert.Equal(t, EquipmentStatusActive, e.Status)
	assert.Equal(t, StockLevels{}, e.Stock)
	assert.True(t, e.BelongsTo(tenantID))
	require.Len(t, e.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeEquipmentCreated, e.GetDomainEvents()[0].EventType())

	tests := []struct {
		name    string
		code    string
		details EquipmentDetails
		pricing Pricing
	}{
		{"empty code", "", EquipmentDetails{Name: "X"}, Pricing{Daily: decimal.NewFromInt(1)}},
		{"bad code", "A B", EquipmentDetails{Name: "X"}, Pricing{Daily: decimal.NewFromInt(1)}},
		{"empty name", "A", EquipmentDetails{}, Pricing{Daily: decimal.NewFromInt(1)}},
		{"zero daily", "A", EquipmentDetails{Name: "X"}, Pricing{}},
		{"negative weekly", "A", EquipmentDetails{Name: "X"}, Pricing{Daily: decimal.NewFromInt(1), Weekly: decimal.NewFromInt(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEquipment(tenantID, tt.code, tt.details, tt.pricing)
			assert.Error(t, err)
		})
	}
}

func TestEquipmentMovements(t *testing.T) {
	e := newTestEquipment(t)
	bookingID := uuid.New()

	steps := []struct {
		kind MovementType
		qty  int
		want StockLevels
	}{
		{MovementPurchase, 10, StockLevels{Total: 10, Available: 10}},
		{MovementReservation, 4, StockLevels{Total: 10, Available: 6, Reserved: 4}},
		{MovementReturn, 2, StockLevels{Total: 10, Available: 8, Reserved: 2}},
		{MovementReturnDamaged, 1, StockLevels{Total: 10, Available: 8, Reserved: 1, Damaged: 1}},
		{MovementRelease, 1, StockLevels{Total: 10, Available: 9, Damaged: 1}},
		{MovementMaintenanceIn, 3, StockLevels{Total: 10, Available: 6, Maintenance: 3, Damaged: 1}},
		{MovementMaintenanceOut, 3, StockLevels{Total: 10, Available: 9, Damaged: 1}},
		{MovementDamage, 2, StockLevels{Total: 10, Available: 7, Damaged: 3}},
		{MovementRepair, 1, StockLevels{Total: 10, Available: 8, Damaged: 2}},
		{MovementLoss, 2, StockLevels{Total: 8, Available: 8}},
		{MovementWriteOff, 3, StockLevels{Total: 5, Available: 5}},
	}
	for _, s := range steps {
		before := e.Stock
		m, err := e.Move(s.kind, s.qty, MovementRef{BookingID: &bookingID})
		require.NoError(t, err, s.kind)
		assert.Equal(t, s.want, e.Stock, s.kind)
		assert.True(t, e.Stock.Valid(), s.kind)
		assert.Equal(t, before, m.Before)
		assert.Equal(t, e.Stock, m.After)
		assert.Equal(t, m.After.Total-m.Before.Total, m.Delta)
		assert.Equal(t, &bookingID, m.BookingID)
	}
	assert.Len(t, e.GetDomainEvents(), len(steps))
}

func TestEquipmentMoveRejectsInvalid(t *testing.T) {
	e := newTestEquipment(t)
	_, err := e.Move(MovementPurchase, 2, MovementRef{})
	require.NoError(t, err)

	_, err = e.Move(MovementReservation, 3, MovementRef{})
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.Equal(t, StockLevels{Total: 2, Available: 2}, e.Stock)

	_, err = e.Move(MovementReturn, 1, MovementRef{})
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)

	_, err = e.Move(MovementPurchase, 0, MovementRef{})
	assert.Equal(t, "INVALID_QUANTITY", shared.ErrorCode(err))

	_, err = e.Move(MovementAdjustment, 1, MovementRef{})
	assert.Equal(t, "INVALID_MOVEMENT_TYPE", shared.ErrorCode(err))

	_, err = e.Move(MovementType("BOGUS"), 1, MovementRef{})
	assert.Equal(t, "INVALID_MOVEMENT_TYPE", shared.ErrorCode(err))

	require.NoError(t, e.Deactivate())
	_, err = e.Move(MovementReservation, 1, MovementRef{})
	assert.Equal(t, "EQUIPMENT_INACTIVE", shared.ErrorCode(err))
}

func TestEquipmentAdjustTo(t *testing.T) {
	e := newTestEquipment(t)
	_, err := e.Move(MovementPurchase, 5, MovementRef{})
	require.NoError(t, err)
	_, err = e.Move(MovementReservation, 3, MovementRef{})
	require.NoError(t, err)

	m, err := e.AdjustTo(7, MovementRef{Reason: "contagem"})
	require.NoError(t, err)
	assert.Equal(t, 2, m.Delta)
	assert.Equal(t, 2, m.Quantity)
	assert.Equal(t, StockLevels{Total: 7, Available: 4, Reserved: 3}, e.Stock)

	m, err = e.AdjustTo(3, MovementRef{})
	require.NoError(t, err)
	assert.Equal(t, -4, m.Delta)
	assert.Equal(t, StockLevels{Total: 3, Reserved: 3}, e.Stock)

	_, err = e.AdjustTo(2, MovementRef{})
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	_, err = e.AdjustTo(3, MovementRef{})
	assert.Error(t, err)
	_, err = e.AdjustTo(-1, MovementRef{})
	assert.Error(t, err)
}

func TestEquipmentDeactivateWithReservations(t *testing.T) {
	e := newTestEquipment(t)
	_, _ = e.Move(MovementPurchase, 1, MovementRef{})
	_, _ = e.Move(MovementReservation, 1, MovementRef{})

	assert.Equal(t, "EQUIPMENT_IN_USE", shared.ErrorCode(e.Deactivate()))
	assert.Error(t, e.CanDelete())
	assert.False(t, e.IsBookable(1))

	_, _ = e.Move(MovementRelease, 1, MovementRef{})
	assert.NoError(t, e.CanDelete())
	assert.True(t, e.IsBookable(1))
	require.NoError(t, e.Deactivate())
	assert.False(t, e.IsBookable(1))
	e.Activate()
	assert.True(t, e.IsBookable(1))
}

func TestPricingPriceFor(t *testing.T) {
	p := Pricing{Daily: decimal.NewFromInt(50), Weekly: decimal.NewFromInt(280), Monthly: decimal.NewFromInt(900)}
	tests := []struct {
		days int
		want string
	}{
		{0, "50"},
		{1, "50"},
		{5, "250"},
		{6, "300"},
		{7, "280"},
		{9, "380"},
		{30, "900"},
		{38, "1230"},
	}
	for _, tt := range tests {
		assert.True(t, decimal.RequireFromString(tt.want).Equal(p.PriceFor(tt.days)), "days=%d got %s", tt.days, p.PriceFor(tt.days))
	}

	dailyOnly := Pricing{Daily: decimal.RequireFromString("12.5")}
	assert.Equal(t, "125", dailyOnly.PriceFor(10).String())
}

func TestMovementTypeIsManual(t *testing.T) {
	assert.True(t, MovementPurchase.IsManual())
	assert.True(t, MovementAdjustment.IsManual())
	assert.False(t, MovementReservation.IsManual())
	assert.False(t, MovementReturnDamaged.IsManual())
	assert.False(t, MovementType("X").IsManual())
}
