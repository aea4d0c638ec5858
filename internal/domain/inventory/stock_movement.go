package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/shared"
)

// MovementType is the kind of stock ledger entry
type MovementType string

const (
	MovementPurchase       MovementType = "PURCHASE"
	MovementWriteOff       MovementType = "WRITE_OFF"
	MovementReservation    MovementType = "RESERVATION"
	MovementRelease        MovementType = "RELEASE"
	MovementReturn         MovementType = "RETURN"
	MovementReturnDamaged  MovementType = "RETURN_DAMAGED"
	MovementMaintenanceIn  MovementType = "MAINTENANCE_IN"
	MovementMaintenanceOut MovementType = "MAINTENANCE_OUT"
	MovementDamage         MovementType = "DAMAGE"
	MovementRepair         MovementType = "REPAIR"
	MovementLoss           MovementType = "LOSS"
	MovementAdjustment     MovementType = "ADJUSTMENT"
)

// IsValid returns true if the movement type is known
func (t MovementType) IsValid() bool {
	switch t {
	case MovementPurchase, MovementWriteOff, MovementReservation, MovementRelease,
		MovementReturn, MovementReturnDamaged, MovementMaintenanceIn, MovementMaintenanceOut,
		MovementDamage, MovementRepair, MovementLoss, MovementAdjustment:
		return true
	}
	return false
}

// IsManual reports whether users may register this type directly.
// Booking-driven types are written only by booking transitions
func (t MovementType) IsManual() bool {
	switch t {
	case MovementReservation, MovementRelease, MovementReturn, MovementReturnDamaged:
		return false
	}
	return t.IsValid()
}

// signedDelta is the change in total units caused by a movement
func signedDelta(kind MovementType, quantity int) int {
	switch kind {
	case MovementPurchase:
		return quantity
	case MovementWriteOff, MovementLoss:
		return -quantity
	}
	return 0
}

// MovementRef carries the context of a movement
type MovementRef struct {
	BookingID *uuid.UUID
	Reason    string
	UserID    *uuid.UUID
}

// StockMovement is an immutable ledger entry with the counters before and after
type StockMovement struct {
	shared.BaseEntity
	TenantID    uuid.UUID
	EquipmentID uuid.UUID
	Type        MovementType
	Quantity    int
	Delta       int
	Before      StockLevels
	After       StockLevels
	BookingID   *uuid.UUID
	Reason      string
	CreatedBy   *uuid.UUID
}

func newStockMovement(e *Equipment, kind MovementType, quantity, delta int, before StockLevels, ref MovementRef) *StockMovement {
	return &StockMovement{
		BaseEntity:  shared.NewBaseEntity(),
		TenantID:    e.TenantID,
		EquipmentID: e.ID,
		Type:        kind,
		Quantity:    quantity,
		Delta:       delta,
		Before:      before,
		After:       e.Stock,
		BookingID:   ref.BookingID,
		Reason:      ref.Reason,
		CreatedBy:   ref.UserID,
	}
}

// MovementFilter narrows a ledger query
type MovementFilter struct {
	EquipmentID *uuid.UUID
	BookingID   *uuid.UUID
	Type        MovementType
	From        *time.Time
	To          *time.Time
	Page        int
	PageSize    int
}
