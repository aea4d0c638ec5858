package inventory

import (
	"github.com/locaflow/backend/internal/domain/shared"
)

// StockLevels are the unit counters of one equipment model.
// Total always equals Available + Reserved + Maintenance + Damaged
type StockLevels struct {
	Total       int `json:"total"`
	Available   int `json:"available"`
	Reserved    int `json:"reserved"`
	Maintenance int `json:"maintenance"`
	Damaged     int `json:"damaged"`
}

// Valid reports whether every counter is non-negative and the total adds up
func (s StockLevels) Valid() bool {
	if s.Total < 0 || s.Available < 0 || s.Reserved < 0 || s.Maintenance < 0 || s.Damaged < 0 {
		return false
	}
	return s.Total == s.Available+s.Reserved+s.Maintenance+s.Damaged
}

// Add returns the element-wise sum, used for tenant-wide summaries
func (s StockLevels) Add(o StockLevels) StockLevels {
	return StockLevels{
		Total:       s.Total + o.Total,
		Available:   s.Available + o.Available,
		Reserved:    s.Reserved + o.Reserved,
		Maintenance: s.Maintenance + o.Maintenance,
		Damaged:     s.Damaged + o.Damaged,
	}
}

// apply computes the counters after a movement of quantity units.
// It never mutates s and fails when a counter would go negative
func (s StockLevels) apply(kind MovementType, quantity int) (StockLevels, error) {
	if quantity <= 0 {
		return s, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be greater than zero")
	}
	n := s
	switch kind {
	case MovementPurchase:
		n.Total += quantity
		n.Available += quantity
	case MovementWriteOff:
		n.Total -= quantity
		n.Available -= quantity
	case MovementReservation:
		n.Available -= quantity
		n.Reserved += quantity
	case MovementRelease, MovementReturn:
		n.Reserved -= quantity
		n.Available += quantity
	case MovementReturnDamaged:
		n.Reserved -= quantity
		n.Damaged += quantity
	case MovementMaintenanceIn:
		n.Available -= quantity
		n.Maintenance += quantity
	case MovementMaintenanceOut:
		n.Maintenance -= quantity
		n.Available += quantity
	case MovementDamage:
		n.Available -= quantity
		n.Damaged += quantity
	case MovementRepair:
		n.Damaged -= quantity
		n.Available += quantity
	case MovementLoss:
		n.Damaged -= quantity
		n.Total -= quantity
	default:
		return s, shared.NewDomainErrorf("INVALID_MOVEMENT_TYPE", "Unsupported movement type %q", kind)
	}
	if !n.Valid() {
		return s, shared.NewDomainErrorf(shared.CodeInsufficientStock,
			"Insufficient stock for %s of %d units", kind, quantity)
	}
	return n, nil
}

// adjustTo sets the total to target by changing available units
func (s StockLevels) adjustTo(target int) (StockLevels, int, error) {
	if target < 0 {
		return s, 0, shared.NewDomainError("INVALID_QUANTITY", "Target quantity cannot be negative")
	}
	delta := target - s.Total
	if delta == 0 {
		return s, 0, shared.NewDomainError("INVALID_QUANTITY", "Target quantity equals the current total")
	}
	n := s
	n.Total = target
	n.Available += delta
	if !n.Valid() {
		return s, 0, shared.NewDomainErrorf(shared.CodeInsufficientStock,
			"Cannot adjust to %d units: %d are reserved, in maintenance or damaged",
			target, s.Reserved+s.Maintenance+s.Damaged)
	}
	return n, delta, nil
}
