package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/booking"
	"github.com/shopspring/decimal"
)

// ItemInput is one requested equipment line
type ItemInput struct {
	EquipmentID uuid.UUID
	Quantity    int
	// UnitPrice overrides the computed rental price of one unit for the period
	UnitPrice *decimal.Decimal
}

// CreateBookingInput opens a pending booking
type CreateBookingInput struct {
	TenantID        uuid.UUID
	ActorID         uuid.UUID
	CustomerID      uuid.UUID
	StartDate       time.Time
	EndDate         time.Time
	Discount        decimal.Decimal
	DeliveryFee     decimal.Decimal
	Notes           string
	DeliveryAddress string
	Items           []ItemInput
}

// UpdateBookingInput replaces terms and items of a pending booking
type UpdateBookingInput struct {
	CreateBookingInput
	ID uuid.UUID
}

// CompleteBookingInput records the return with damaged units per equipment
type CompleteBookingInput struct {
	TenantID uuid.UUID
	ID       uuid.UUID
	ActorID  uuid.UUID
	Damaged  map[uuid.UUID]int
}

// BookingListFilter narrows the booking list
type BookingListFilter struct {
	Page       int
	PageSize   int
	Search     string
	Status     string
	CustomerID *uuid.UUID
	From       *time.Time
	To         *time.Time
}

// BookingItemDTO is the API view of a booking line
type BookingItemDTO struct {
	ID               uuid.UUID       `json:"id"`
	EquipmentID      uuid.UUID       `json:"equipment_id"`
	EquipmentName    string          `json:"equipment_name"`
	Quantity         int             `json:"quantity"`
	Days             int             `json:"days"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	ReturnedQuantity int             `json:"returned_quantity"`
	DamagedQuantity  int             `json:"damaged_quantity"`
}

// BookingDTO is the API view of a booking
type BookingDTO struct {
	ID              uuid.UUID        `json:"id"`
	Number          string           `json:"number"`
	CustomerID      uuid.UUID        `json:"customer_id"`
	Status          string           `json:"status"`
	StartDate       time.Time        `json:"start_date"`
	EndDate         time.Time        `json:"end_date"`
	Days            int              `json:"days"`
	Items           []BookingItemDTO `json:"items"`
	Subtotal        decimal.Decimal  `json:"subtotal"`
	Discount        decimal.Decimal  `json:"discount"`
	DeliveryFee     decimal.Decimal  `json:"delivery_fee"`
	TotalAmount     decimal.Decimal  `json:"total_amount"`
	Notes           string           `json:"notes,omitempty"`
	DeliveryAddress string           `json:"delivery_address,omitempty"`
	ConfirmedAt     *time.Time       `json:"confirmed_at,omitempty"`
	PickedUpAt      *time.Time       `json:"picked_up_at,omitempty"`
	ReturnedAt      *time.Time       `json:"returned_at,omitempty"`
	CancelledAt     *time.Time       `json:"cancelled_at,omitempty"`
	CancelReason    string           `json:"cancel_reason,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// ToBookingDTO converts a booking to its API view
func ToBookingDTO(b *booking.Booking) BookingDTO {
	items := make([]BookingItemDTO, len(b.Items))
	for i, it := range b.Items {
		items[i] = BookingItemDTO{
			ID:               it.ID,
			EquipmentID:      it.EquipmentID,
			EquipmentName:    it.EquipmentName,
			Quantity:         it.Quantity,
			Days:             it.Days,
			UnitPrice:        it.UnitPrice,
			Subtotal:         it.Subtotal,
			ReturnedQuantity: it.ReturnedQuantity,
			DamagedQuantity:  it.DamagedQuantity,
		}
	}
	return BookingDTO{
		ID:              b.ID,
		Number:          b.Number,
		CustomerID:      b.CustomerID,
		Status:          string(b.Status),
		StartDate:       b.StartDate,
		EndDate:         b.EndDate,
		Days:            b.Days(),
		Items:           items,
		Subtotal:        b.Subtotal,
		Discount:        b.Discount,
		DeliveryFee:     b.DeliveryFee,
		TotalAmount:     b.TotalAmount,
		Notes:           b.Notes,
		DeliveryAddress: b.DeliveryAddress,
		ConfirmedAt:     b.ConfirmedAt,
		PickedUpAt:      b.PickedUpAt,
		ReturnedAt:      b.ReturnedAt,
		CancelledAt:     b.CancelledAt,
		CancelReason:    b.CancelReason,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}
