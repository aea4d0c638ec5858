package inventory

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// EquipmentStatus controls whether an item can be booked
type EquipmentStatus string

const (
	EquipmentStatusActive   EquipmentStatus = "ACTIVE"
	EquipmentStatusInactive EquipmentStatus = "INACTIVE"
)

var codeRegex = regexp.MustCompile(`^[A-Za-z0-9_\-.]+$`)

// EquipmentDetails are the descriptive fields of an equipment model
type EquipmentDetails struct {
	Name         string
	Description  string
	Category     string
	Brand        string
	Model        string
	SerialNumber string
}

// Pricing holds rental prices per period. Weekly and monthly are optional (zero)
type Pricing struct {
	Daily       decimal.Decimal
	Weekly      decimal.Decimal
	Monthly     decimal.Decimal
	Replacement decimal.Decimal
}

func (p Pricing) validate() error {
	if !p.Daily.IsPositive() {
		return shared.NewDomainError("INVALID_PRICE", "Daily price must be greater than zero")
	}
	if p.Weekly.IsNegative() || p.Monthly.IsNegative() || p.Replacement.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Prices cannot be negative")
	}
	return nil
}

// Equipment is a rentable equipment model with a pool of identical units
type Equipment struct {
	shared.TenantAggregateRoot
	Code string
	EquipmentDetails
	Pricing Pricing
	Status  EquipmentStatus
	Stock   StockLevels
}

// NewEquipment creates an active equipment model with no units.
// Units are added through a PURCHASE movement so the ledger stays complete
func NewEquipment(tenantID uuid.UUID, code string, details EquipmentDetails, pricing Pricing) (*Equipment, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Equipment code cannot be empty")
	}
	if len(code) > 50 {
		return nil, shared.NewDomainError("INVALID_CODE", "Equipment code cannot exceed 50 characters")
	}
	if !codeRegex.MatchString(code) {
		return nil, shared.NewDomainError("INVALID_CODE", "Equipment code can only contain letters, numbers, underscores, hyphens, and dots")
	}
	details, err := normalizeDetails(details)
	if err != nil {
		return nil, err
	}
	if err := pricing.validate(); err != nil {
		return nil, err
	}

	e := &Equipment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		EquipmentDetails:    details,
		Pricing:             pricing,
		Status:              EquipmentStatusActive,
	}
	e.AddDomainEvent(NewEquipmentCreatedEvent(e))
	return e, nil
}

func normalizeDetails(d EquipmentDetails) (EquipmentDetails, error) {
	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)
	d.Category = strings.TrimSpace(d.Category)
	d.Brand = strings.TrimSpace(d.Brand)
	d.Model = strings.TrimSpace(d.Model)
	d.SerialNumber = strings.TrimSpace(d.SerialNumber)
	if d.Name == "" {
		return d, shared.NewDomainError("INVALID_NAME", "Equipment name cannot be empty")
	}
	if len(d.Name) > 200 {
		return d, shared.NewDomainError("INVALID_NAME", "Equipment name cannot exceed 200 characters")
	}
	return d, nil
}

// Update replaces the descriptive fields and prices
func (e *Equipment) Update(details EquipmentDetails, pricing Pricing) error {
	details, err := normalizeDetails(details)
	if err != nil {
		return err
	}
	if err := pricing.validate(); err != nil {
		return err
	}
	e.EquipmentDetails = details
	e.Pricing = pricing
	e.Touch()
	e.AddDomainEvent(NewEquipmentUpdatedEvent(e))
	return nil
}

// Activate makes the equipment bookable again
func (e *Equipment) Activate() {
	if e.Status == EquipmentStatusActive {
		return
	}
	e.Status = EquipmentStatusActive
	e.Touch()
}

// Deactivate hides the equipment from new bookings
func (e *Equipment) Deactivate() error {
	if e.Stock.Reserved > 0 {
		return shared.NewDomainError("EQUIPMENT_IN_USE", "Equipment has reserved units and cannot be deactivated")
	}
	if e.Status == EquipmentStatusInactive {
		return nil
	}
	e.Status = EquipmentStatusInactive
	e.Touch()
	return nil
}

// CanDelete reports whether the equipment has no units out with customers
func (e *Equipment) CanDelete() error {
	if e.Stock.Reserved > 0 {
		return shared.NewDomainError("EQUIPMENT_IN_USE", "Equipment has reserved units and cannot be deleted")
	}
	return nil
}

// IsBookable reports whether quantity units can be reserved now
func (e *Equipment) IsBookable(quantity int) bool {
	return e.Status == EquipmentStatusActive && e.Stock.Available >= quantity
}

// Move applies a stock movement and returns the ledger entry to persist
func (e *Equipment) Move(kind MovementType, quantity int, ref MovementRef) (*StockMovement, error) {
	if kind == MovementAdjustment {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Use AdjustTo for adjustments")
	}
	if kind == MovementReservation && e.Status != EquipmentStatusActive {
		return nil, shared.NewDomainErrorf("EQUIPMENT_INACTIVE", "Equipment %s is inactive", e.Code)
	}
	next, err := e.Stock.apply(kind, quantity)
	if err != nil {
		return nil, err
	}
	return e.commit(kind, quantity, signedDelta(kind, quantity), next, ref), nil
}

// AdjustTo sets the total number of units after a physical count
func (e *Equipment) AdjustTo(target int, ref MovementRef) (*StockMovement, error) {
	next, delta, err := e.Stock.adjustTo(target)
	if err != nil {
		return nil, err
	}
	qty := delta
	if qty < 0 {
		qty = -qty
	}
	return e.commit(MovementAdjustment, qty, delta, next, ref), nil
}

func (e *Equipment) commit(kind MovementType, quantity, delta int, next StockLevels, ref MovementRef) *StockMovement {
	before := e.Stock
	e.Stock = next
	e.Touch()
	m := newStockMovement(e, kind, quantity, delta, before, ref)
	e.AddDomainEvent(NewStockMovedEvent(e, m))
	return m
}

// RentalPrice returns the price of one unit for a rental of days days
func (e *Equipment) RentalPrice(days int) decimal.Decimal {
	return e.Pricing.PriceFor(days)
}

// PriceFor returns the cheapest of the period-split price and the plain daily price.
// Months are 30 days and weeks 7 days
func (p Pricing) PriceFor(days int) decimal.Decimal {
	if days < 1 {
		days = 1
	}
	plain := p.Daily.Mul(decimal.NewFromInt(int64(days)))

	remaining := days
	split := decimal.Zero
	if p.Monthly.IsPositive() {
		months := remaining / 30
		split = split.Add(p.Monthly.Mul(decimal.NewFromInt(int64(months))))
		remaining -= months * 30
	}
	if p.Weekly.IsPositive() {
		weeks := remaining / 7
		split = split.Add(p.Weekly.Mul(decimal.NewFromInt(int64(weeks))))
		remaining -= weeks * 7
	}
	split = split.Add(p.Daily.Mul(decimal.NewFromInt(int64(remaining))))

	if split.LessThan(plain) {
		return split.Round(2)
	}
	return plain.Round(2)
}
