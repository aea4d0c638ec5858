package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeBooking is the aggregate type name for events
const AggregateTypeBooking = "Booking"

const (
	EventTypeBookingCreated   = "BookingCreated"
	EventTypeBookingConfirmed = "BookingConfirmed"
	EventTypeBookingStarted   = "BookingStarted"
	EventTypeBookingCompleted = "BookingCompleted"
	EventTypeBookingCancelled = "BookingCancelled"
)

// BookingCreatedEvent is published when a booking is opened
type BookingCreatedEvent struct {
	shared.BaseDomainEvent
	Number      string          `json:"number"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

func NewBookingCreatedEvent(b *Booking) *BookingCreatedEvent {
	return &BookingCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBookingCreated, AggregateTypeBooking, b.ID, b.TenantID),
		Number:          b.Number,
		CustomerID:      b.CustomerID,
		TotalAmount:     b.TotalAmount,
	}
}

// BookingConfirmedEvent carries what the receivable needs
type BookingConfirmedEvent struct {
	shared.BaseDomainEvent
	Number      string          `json:"number"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	StartDate   time.Time       `json:"start_date"`
}

func NewBookingConfirmedEvent(b *Booking) *BookingConfirmedEvent {
	return &BookingConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBookingConfirmed, AggregateTypeBooking, b.ID, b.TenantID),
		Number:          b.Number,
		CustomerID:      b.CustomerID,
		TotalAmount:     b.TotalAmount,
		StartDate:       b.StartDate,
	}
}

// BookingStartedEvent is published on pickup
type BookingStartedEvent struct {
	shared.BaseDomainEvent
	Number string `json:"number"`
}

func NewBookingStartedEvent(b *Booking) *BookingStartedEvent {
	return &BookingStartedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBookingStarted, AggregateTypeBooking, b.ID, b.TenantID),
		Number:          b.Number,
	}
}

// BookingCompletedEvent is published on return
type BookingCompletedEvent struct {
	shared.BaseDomainEvent
	Number  string `json:"number"`
	Damaged int    `json:"damaged"`
}

func NewBookingCompletedEvent(b *Booking) *BookingCompletedEvent {
	damaged := 0
	for _, item := range b.Items {
		damaged += item.DamagedQuantity
	}
	return &BookingCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBookingCompleted, AggregateTypeBooking, b.ID, b.TenantID),
		Number:          b.Number,
		Damaged:         damaged,
	}
}

// BookingCancelledEvent is published on cancellation
type BookingCancelledEvent struct {
	shared.BaseDomainEvent
	Number        string `json:"number"`
	Reason        string `json:"reason"`
	StockReleased bool   `json:"stock_released"`
}

func NewBookingCancelledEvent(b *Booking, released bool) *BookingCancelledEvent {
	return &BookingCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBookingCancelled, AggregateTypeBooking, b.ID, b.TenantID),
		Number:          b.Number,
		Reason:          b.CancelReason,
		StockReleased:   released,
	}
}
