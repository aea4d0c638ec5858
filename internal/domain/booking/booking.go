package booking

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of a booking
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can move to target
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusConfirmed || target == StatusCancelled
	case StatusConfirmed:
		return target == StatusInProgress || target == StatusCancelled
	case StatusInProgress:
		return target == StatusCompleted || target == StatusCancelled
	case StatusCompleted, StatusCancelled:
		return false
	}
	return false
}

// HoldsStock reports whether units are reserved while in this status
func (s Status) HoldsStock() bool {
	return s == StatusConfirmed || s == StatusInProgress
}

// IsOpen reports whether the booking is not finished yet
func (s Status) IsOpen() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusInProgress
}

// NumberPrefix starts every booking number
const NumberPrefix = "LOC-"

// FormatNumber renders the per-tenant sequence as LOC-000001
func FormatNumber(seq int64) string {
	return fmt.Sprintf("%s%06d", NumberPrefix, seq)
}

// RentalDays returns ceil(hours/24) between start and end, at least 1
func RentalDays(start, end time.Time) int {
	hours := end.Sub(start).Hours()
	days := int(math.Ceil(hours / 24))
	if days < 1 {
		return 1
	}
	return days
}

// Terms are the editable header fields of a booking
type Terms struct {
	CustomerID      uuid.UUID
	StartDate       time.Time
	EndDate         time.Time
	Discount        decimal.Decimal
	DeliveryFee     decimal.Decimal
	Notes           string
	DeliveryAddress string
}

func (t Terms) validate() error {
	if t.CustomerID == uuid.Nil {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer is required")
	}
	if t.StartDate.IsZero() || t.EndDate.IsZero() {
		return shared.NewDomainError("INVALID_PERIOD", "Start and end dates are required")
	}
	if !t.EndDate.After(t.StartDate) {
		return shared.NewDomainError("INVALID_PERIOD", "End date must be after start date")
	}
	if t.Discount.IsNegative() || t.DeliveryFee.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Discount and delivery fee cannot be negative")
	}
	return nil
}

// Days is the rental length of the terms
func (t Terms) Days() int {
	return RentalDays(t.StartDate, t.EndDate)
}

// Item is one equipment line of a booking
type Item struct {
	ID               uuid.UUID
	BookingID        uuid.UUID
	EquipmentID      uuid.UUID
	EquipmentName    string
	Quantity         int
	Days             int
	UnitPrice        decimal.Decimal
	Subtotal         decimal.Decimal
	ReturnedQuantity int
	DamagedQuantity  int
}

// NewItem creates an item. unitPrice is the price of one unit for the whole period
func NewItem(equipmentID uuid.UUID, equipmentName string, quantity, days int, unitPrice decimal.Decimal) (Item, error) {
	if equipmentID == uuid.Nil {
		return Item{}, shared.NewDomainError("INVALID_EQUIPMENT", "Equipment is required")
	}
	if quantity <= 0 {
		return Item{}, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be greater than zero")
	}
	if days < 1 {
		days = 1
	}
	if unitPrice.IsNegative() {
		return Item{}, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	return Item{
		ID:            uuid.New(),
		EquipmentID:   equipmentID,
		EquipmentName: equipmentName,
		Quantity:      quantity,
		Days:          days,
		UnitPrice:     unitPrice,
		Subtotal:      unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2),
	}, nil
}

// GoodQuantity is the number of units returned in working order
func (i Item) GoodQuantity() int {
	return i.Quantity - i.DamagedQuantity
}

// Booking is a rental of equipment to a customer for a period
type Booking struct {
	shared.TenantAggregateRoot
	Number string
	Terms
	Status       Status
	Items        []Item
	Subtotal     decimal.Decimal
	TotalAmount  decimal.Decimal
	ConfirmedAt  *time.Time
	PickedUpAt   *time.Time
	ReturnedAt   *time.Time
	CancelledAt  *time.Time
	CancelReason string
}

// NewBooking creates a pending booking
func NewBooking(tenantID uuid.UUID, number string, terms Terms, items []Item) (*Booking, error) {
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Booking number is required")
	}
	b := &Booking{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              number,
		Status:              StatusPending,
	}
	if err := b.set(terms, items); err != nil {
		return nil, err
	}
	b.AddDomainEvent(NewBookingCreatedEvent(b))
	return b, nil
}

// Update replaces terms and items. Only pending bookings can be edited
func (b *Booking) Update(terms Terms, items []Item) error {
	if b.Status != StatusPending {
		return shared.NewDomainErrorf(shared.CodeInvalidState, "Cannot edit booking in %s status", b.Status)
	}
	if err := b.set(terms, items); err != nil {
		return err
	}
	b.Touch()
	return nil
}

func (b *Booking) set(terms Terms, items []Item) error {
	if err := terms.validate(); err != nil {
		return err
	}
	if len(items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Booking must have at least one item")
	}
	terms.Notes = strings.TrimSpace(terms.Notes)
	terms.DeliveryAddress = strings.TrimSpace(terms.DeliveryAddress)

	subtotal := decimal.Zero
	for i := range items {
		items[i].BookingID = b.ID
		subtotal = subtotal.Add(items[i].Subtotal)
	}
	total := subtotal.Sub(terms.Discount).Add(terms.DeliveryFee)
	if total.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Discount cannot exceed subtotal plus delivery fee")
	}

	b.Terms = terms
	b.Items = items
	b.Subtotal = subtotal
	b.TotalAmount = total
	return nil
}

func (b *Booking) transition(target Status) error {
	if !b.Status.CanTransitionTo(target) {
		return shared.NewDomainErrorf(shared.CodeInvalidState, "Cannot move booking from %s to %s", b.Status, target)
	}
	b.Status = target
	b.Touch()
	return nil
}

// Confirm moves PENDING to CONFIRMED. The caller reserves the stock
func (b *Booking) Confirm() error {
	if err := b.transition(StatusConfirmed); err != nil {
		return err
	}
	now := time.Now()
	b.ConfirmedAt = &now
	b.AddDomainEvent(NewBookingConfirmedEvent(b))
	return nil
}

// Start records the pickup, CONFIRMED to IN_PROGRESS
func (b *Booking) Start() error {
	if err := b.transition(StatusInProgress); err != nil {
		return err
	}
	now := time.Now()
	b.PickedUpAt = &now
	b.AddDomainEvent(NewBookingStartedEvent(b))
	return nil
}

// Complete records the return. damaged maps equipment id to damaged units;
// every other unit comes back in working order
func (b *Booking) Complete(damaged map[uuid.UUID]int) error {
	if !b.Status.CanTransitionTo(StatusCompleted) {
		return shared.NewDomainErrorf(shared.CodeInvalidState, "Cannot move booking from %s to %s", b.Status, StatusCompleted)
	}
	remaining := make(map[uuid.UUID]int, len(damaged))
	for id, qty := range damaged {
		if qty < 0 {
			return shared.NewDomainError("INVALID_QUANTITY", "Damaged quantity cannot be negative")
		}
		remaining[id] = qty
	}
	for id, qty := range remaining {
		if qty > 0 && b.quantityOf(id) < qty {
			return shared.NewDomainErrorf("INVALID_QUANTITY", "Damaged quantity exceeds booked units for equipment %s", id)
		}
	}
	for i := range b.Items {
		item := &b.Items[i]
		d := min(remaining[item.EquipmentID], item.Quantity)
		remaining[item.EquipmentID] -= d
		item.DamagedQuantity = d
		item.ReturnedQuantity = item.Quantity - d
	}
	if err := b.transition(StatusCompleted); err != nil {
		return err
	}
	now := time.Now()
	b.ReturnedAt = &now
	b.AddDomainEvent(NewBookingCompletedEvent(b))
	return nil
}

func (b *Booking) quantityOf(equipmentID uuid.UUID) int {
	total := 0
	for _, item := range b.Items {
		if item.EquipmentID == equipmentID {
			total += item.Quantity
		}
	}
	return total
}

// Cancel moves the booking to CANCELLED. It returns true when reserved stock must be released
func (b *Booking) Cancel(reason string) (bool, error) {
	held := b.Status.HoldsStock()
	if err := b.transition(StatusCancelled); err != nil {
		return false, err
	}
	now := time.Now()
	b.CancelledAt = &now
	b.CancelReason = strings.TrimSpace(reason)
	b.AddDomainEvent(NewBookingCancelledEvent(b, held))
	return held, nil
}

// CanDelete allows removal of bookings that never held stock or are cancelled
func (b *Booking) CanDelete() error {
	if b.Status != StatusPending && b.Status != StatusCancelled {
		return shared.NewDomainErrorf(shared.CodeInvalidState, "Cannot delete booking in %s status", b.Status)
	}
	return nil
}

// QuantitiesByEquipment sums booked units per equipment
func (b *Booking) QuantitiesByEquipment() map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(b.Items))
	for _, item := range b.Items {
		out[item.EquipmentID] += item.Quantity
	}
	return out
}

// EquipmentIDs returns the distinct equipment in item order
func (b *Booking) EquipmentIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(b.Items))
	ids := make([]uuid.UUID, 0, len(b.Items))
	for _, item := range b.Items {
		if _, ok := seen[item.EquipmentID]; ok {
			continue
		}
		seen[item.EquipmentID] = struct{}{}
		ids = append(ids, item.EquipmentID)
	}
	return ids
}
