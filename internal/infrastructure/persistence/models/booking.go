package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/booking"
	"github.com/shopspring/decimal"
)

// BookingModel is the persistence model for the Booking aggregate
type BookingModel struct {
	TenantAggregateModel
	Number          string          `gorm:"type:varchar(20);not null;index"`
	CustomerID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	StartDate       time.Time       `gorm:"not null;index"`
	EndDate         time.Time       `gorm:"not null;index"`
	Status          booking.Status  `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Discount        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	DeliveryFee     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Notes           string          `gorm:"type:text"`
	DeliveryAddress string          `gorm:"type:varchar(500)"`
	ConfirmedAt     *time.Time
	PickedUpAt      *time.Time
	ReturnedAt      *time.Time
	CancelledAt     *time.Time
	CancelReason    string             `gorm:"type:varchar(500)"`
	Items           []BookingItemModel `gorm:"foreignKey:BookingID;references:ID"`
}

// TableName returns the table name for GORM
func (BookingModel) TableName() string {
	return "bookings"
}

// ToDomain converts the persistence model to a domain Booking
func (m *BookingModel) ToDomain() *booking.Booking {
	items := make([]booking.Item, len(m.Items))
	for i := range m.Items {
		items[i] = m.Items[i].ToDomain()
	}
	return &booking.Booking{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Number:              m.Number,
		Terms: booking.Terms{
			CustomerID:      m.CustomerID,
			StartDate:       m.StartDate,
			EndDate:         m.EndDate,
			Discount:        m.Discount,
			DeliveryFee:     m.DeliveryFee,
			Notes:           m.Notes,
			DeliveryAddress: m.DeliveryAddress,
		},
		Status:       m.Status,
		Items:        items,
		Subtotal:     m.Subtotal,
		TotalAmount:  m.TotalAmount,
		ConfirmedAt:  m.ConfirmedAt,
		PickedUpAt:   m.PickedUpAt,
		ReturnedAt:   m.ReturnedAt,
		CancelledAt:  m.CancelledAt,
		CancelReason: m.CancelReason,
	}
}

// BookingModelFromDomain creates a persistence model, items included
func BookingModelFromDomain(b *booking.Booking) *BookingModel {
	m := &BookingModel{
		Number:          b.Number,
		CustomerID:      b.CustomerID,
		StartDate:       b.StartDate,
		EndDate:         b.EndDate,
		Status:          b.Status,
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
	}
	m.FromDomainTenantAggregateRoot(b.TenantAggregateRoot)
	m.Items = make([]BookingItemModel, len(b.Items))
	for i, item := range b.Items {
		m.Items[i] = BookingItemModelFromDomain(b.TenantID, b.ID, item)
	}
	return m
}

// BookingItemModel is one equipment line of a booking
type BookingItemModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	BookingID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	EquipmentID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	EquipmentName    string          `gorm:"type:varchar(200);not null"`
	Quantity         int             `gorm:"not null"`
	Days             int             `gorm:"not null"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Subtotal         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ReturnedQuantity int             `gorm:"not null;default:0"`
	DamagedQuantity  int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (BookingItemModel) TableName() string {
	return "booking_items"
}

// ToDomain converts the item row to a domain Item
func (m *BookingItemModel) ToDomain() booking.Item {
	return booking.Item{
		ID:               m.ID,
		BookingID:        m.BookingID,
		EquipmentID:      m.EquipmentID,
		EquipmentName:    m.EquipmentName,
		Quantity:         m.Quantity,
		Days:             m.Days,
		UnitPrice:        m.UnitPrice,
		Subtotal:         m.Subtotal,
		ReturnedQuantity: m.ReturnedQuantity,
		DamagedQuantity:  m.DamagedQuantity,
	}
}

// BookingItemModelFromDomain creates an item row owned by bookingID
func BookingItemModelFromDomain(tenantID, bookingID uuid.UUID, i booking.Item) BookingItemModel {
	return BookingItemModel{
		ID:               i.ID,
		TenantID:         tenantID,
		BookingID:        bookingID,
		EquipmentID:      i.EquipmentID,
		EquipmentName:    i.EquipmentName,
		Quantity:         i.Quantity,
		Days:             i.Days,
		UnitPrice:        i.UnitPrice,
		Subtotal:         i.Subtotal,
		ReturnedQuantity: i.ReturnedQuantity,
		DamagedQuantity:  i.DamagedQuantity,
	}
}

// BookingSequenceModel holds the last booking number issued per tenant
type BookingSequenceModel struct {
	TenantID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	LastValue int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (BookingSequenceModel) TableName() string {
	return "booking_sequences"
}
