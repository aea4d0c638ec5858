package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// CreateEquipmentInput creates an equipment model with an optional first purchase
type CreateEquipmentInput struct {
	TenantID         uuid.UUID
	ActorID          uuid.UUID
	Code             string
	Name             string
	Description      string
	Category         string
	Brand            string
	Model            string
	SerialNumber     string
	DailyPrice       decimal.Decimal
	WeeklyPrice      decimal.Decimal
	MonthlyPrice     decimal.Decimal
	ReplacementValue decimal.Decimal
	InitialQuantity  int
}

// UpdateEquipmentInput replaces descriptive fields and prices
type UpdateEquipmentInput struct {
	TenantID         uuid.UUID
	ID               uuid.UUID
	ActorID          uuid.UUID
	Name             string
	Description      string
	Category         string
	Brand            string
	Model            string
	SerialNumber     string
	DailyPrice       decimal.Decimal
	WeeklyPrice      decimal.Decimal
	MonthlyPrice     decimal.Decimal
	ReplacementValue decimal.Decimal
	Active           *bool
}

// EquipmentListFilter narrows the equipment list
type EquipmentListFilter struct {
	Page          int
	PageSize      int
	Search        string
	Category      string
	Status        string
	AvailableOnly bool
}

// EquipmentDTO is the API view of an equipment model
type EquipmentDTO struct {
	ID                  uuid.UUID       `json:"id"`
	Code                string          `json:"code"`
	Name                string          `json:"name"`
	Description         string          `json:"description,omitempty"`
	Category            string          `json:"category,omitempty"`
	Brand               string          `json:"brand,omitempty"`
	Model               string          `json:"model,omitempty"`
	SerialNumber        string          `json:"serial_number,omitempty"`
	DailyPrice          decimal.Decimal `json:"daily_price"`
	WeeklyPrice         decimal.Decimal `json:"weekly_price"`
	MonthlyPrice        decimal.Decimal `json:"monthly_price"`
	ReplacementValue    decimal.Decimal `json:"replacement_value"`
	Status              string          `json:"status"`
	TotalQuantity       int             `json:"total_quantity"`
	AvailableQuantity   int             `json:"available_quantity"`
	ReservedQuantity    int             `json:"reserved_quantity"`
	MaintenanceQuantity int             `json:"maintenance_quantity"`
	DamagedQuantity     int             `json:"damaged_quantity"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// PriceQuote is the rental price of one unit for a number of days
type PriceQuote struct {
	EquipmentID uuid.UUID       `json:"equipment_id"`
	Days        int             `json:"days"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	DailyTotal  decimal.Decimal `json:"daily_total"`
}

// RegisterMovementInput is a manual stock movement
type RegisterMovementInput struct {
	TenantID    uuid.UUID
	ActorID     uuid.UUID
	EquipmentID uuid.UUID
	Type        string
	// Quantity is the moved amount, or the counted total for ADJUSTMENT
	Quantity int
	Reason   string
}

// MovementListFilter narrows the ledger query
type MovementListFilter struct {
	Page        int
	PageSize    int
	EquipmentID *uuid.UUID
	BookingID   *uuid.UUID
	Type        string
	From        *time.Time
	To          *time.Time
}

// StockMovementDTO is the API view of a ledger entry
type StockMovementDTO struct {
	ID          uuid.UUID             `json:"id"`
	EquipmentID uuid.UUID             `json:"equipment_id"`
	Type        string                `json:"type"`
	Quantity    int                   `json:"quantity"`
	Delta       int                   `json:"delta"`
	Before      inventory.StockLevels `json:"before"`
	After       inventory.StockLevels `json:"after"`
	BookingID   *uuid.UUID            `json:"booking_id,omitempty"`
	Reason      string                `json:"reason,omitempty"`
	CreatedBy   *uuid.UUID            `json:"created_by,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
}

// LowAvailabilityItem is an equipment model running out of units
type LowAvailabilityItem struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Available int       `json:"available_quantity"`
	Total     int       `json:"total_quantity"`
}

// StockSummary totals the counters of every equipment of the tenant
type StockSummary struct {
	Levels          inventory.StockLevels `json:"levels"`
	ByStatus        map[string]int64      `json:"by_status"`
	LowAvailability []LowAvailabilityItem `json:"low_availability"`
}

func toEquipmentDTO(e *inventory.Equipment) EquipmentDTO {
	return EquipmentDTO{
		ID:                  e.ID,
		Code:                e.Code,
		Name:                e.Name,
		Description:         e.Description,
		Category:            e.Category,
		Brand:               e.Brand,
		Model:               e.Model,
		SerialNumber:        e.SerialNumber,
		DailyPrice:          e.Pricing.Daily,
		WeeklyPrice:         e.Pricing.Weekly,
		MonthlyPrice:        e.Pricing.Monthly,
		ReplacementValue:    e.Pricing.Replacement,
		Status:              string(e.Status),
		TotalQuantity:       e.Stock.Total,
		AvailableQuantity:   e.Stock.Available,
		ReservedQuantity:    e.Stock.Reserved,
		MaintenanceQuantity: e.Stock.Maintenance,
		DamagedQuantity:     e.Stock.Damaged,
		CreatedAt:           e.CreatedAt,
		UpdatedAt:           e.UpdatedAt,
	}
}

func toMovementDTO(m *inventory.StockMovement) StockMovementDTO {
	return StockMovementDTO{
		ID:          m.ID,
		EquipmentID: m.EquipmentID,
		Type:        string(m.Type),
		Quantity:    m.Quantity,
		Delta:       m.Delta,
		Before:      m.Before,
		After:       m.After,
		BookingID:   m.BookingID,
		Reason:      m.Reason,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
	}
}
