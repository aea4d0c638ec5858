package models

import (
	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// StockColumns are the five unit counters
type StockColumns struct {
	TotalQuantity       int `gorm:"not null;default:0"`
	AvailableQuantity   int `gorm:"not null;default:0"`
	ReservedQuantity    int `gorm:"not null;default:0"`
	MaintenanceQuantity int `gorm:"not null;default:0"`
	DamagedQuantity     int `gorm:"not null;default:0"`
}

func stockColumns(s inventory.StockLevels) StockColumns {
	return StockColumns{
		TotalQuantity:       s.Total,
		AvailableQuantity:   s.Available,
		ReservedQuantity:    s.Reserved,
		MaintenanceQuantity: s.Maintenance,
		DamagedQuantity:     s.Damaged,
	}
}

// ToDomain converts the counters to StockLevels
func (c StockColumns) ToDomain() inventory.StockLevels {
	return inventory.StockLevels{
		Total:       c.TotalQuantity,
		Available:   c.AvailableQuantity,
		Reserved:    c.ReservedQuantity,
		Maintenance: c.MaintenanceQuantity,
		Damaged:     c.DamagedQuantity,
	}
}

// EquipmentModel is the persistence model for the Equipment aggregate
type EquipmentModel struct {
	TenantAggregateModel
	Code             string                    `gorm:"type:varchar(50);not null;index"`
	Name             string                    `gorm:"type:varchar(200);not null"`
	Description      string                    `gorm:"type:text"`
	Category         string                    `gorm:"type:varchar(100);index"`
	Brand            string                    `gorm:"type:varchar(100)"`
	Model            string                    `gorm:"type:varchar(100)"`
	SerialNumber     string                    `gorm:"type:varchar(100)"`
	DailyPrice       decimal.Decimal           `gorm:"type:decimal(18,2);not null"`
	WeeklyPrice      decimal.Decimal           `gorm:"type:decimal(18,2);not null;default:0"`
	MonthlyPrice     decimal.Decimal           `gorm:"type:decimal(18,2);not null;default:0"`
	ReplacementValue decimal.Decimal           `gorm:"type:decimal(18,2);not null;default:0"`
	Status           inventory.EquipmentStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	Stock            StockColumns              `gorm:"embedded"`
}

// TableName returns the table name for GORM
func (EquipmentModel) TableName() string {
	return "equipment"
}

// ToDomain converts the persistence model to a domain Equipment
func (m *EquipmentModel) ToDomain() *inventory.Equipment {
	return &inventory.Equipment{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Code:                m.Code,
		EquipmentDetails: inventory.EquipmentDetails{
			Name:         m.Name,
			Description:  m.Description,
			Category:     m.Category,
			Brand:        m.Brand,
			Model:        m.Model,
			SerialNumber: m.SerialNumber,
		},
		Pricing: inventory.Pricing{
			Daily:       m.DailyPrice,
			Weekly:      m.WeeklyPrice,
			Monthly:     m.MonthlyPrice,
			Replacement: m.ReplacementValue,
		},
		Status: m.Status,
		Stock:  m.Stock.ToDomain(),
	}
}

// EquipmentModelFromDomain creates a persistence model from a domain Equipment
func EquipmentModelFromDomain(e *inventory.Equipment) *EquipmentModel {
	m := &EquipmentModel{
		Code:             e.Code,
		Name:             e.Name,
		Description:      e.Description,
		Category:         e.Category,
		Brand:            e.Brand,
		Model:            e.Model,
		SerialNumber:     e.SerialNumber,
		DailyPrice:       e.Pricing.Daily,
		WeeklyPrice:      e.Pricing.Weekly,
		MonthlyPrice:     e.Pricing.Monthly,
		ReplacementValue: e.Pricing.Replacement,
		Status:           e.Status,
		Stock:            stockColumns(e.Stock),
	}
	m.FromDomainTenantAggregateRoot(e.TenantAggregateRoot)
	return m
}

// StockMovementModel is one immutable ledger row
type StockMovementModel struct {
	BaseModel
	TenantID    uuid.UUID              `gorm:"type:uuid;not null;index"`
	EquipmentID uuid.UUID              `gorm:"type:uuid;not null;index"`
	Type        inventory.MovementType `gorm:"type:varchar(20);not null;index"`
	Quantity    int                    `gorm:"not null"`
	Delta       int                    `gorm:"not null"`
	Stock       StockColumns           `gorm:"embedded"`
	BookingID   *uuid.UUID             `gorm:"type:uuid;index"`
	Reason      string                 `gorm:"type:varchar(500)"`
	CreatedBy   *uuid.UUID             `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ToDomain converts the ledger row to a domain movement.
// Only the after-snapshot is stored
func (m *StockMovementModel) ToDomain() *inventory.StockMovement {
	return &inventory.StockMovement{
		BaseEntity:  m.BaseModel.ToDomain(),
		TenantID:    m.TenantID,
		EquipmentID: m.EquipmentID,
		Type:        m.Type,
		Quantity:    m.Quantity,
		Delta:       m.Delta,
		After:       m.Stock.ToDomain(),
		BookingID:   m.BookingID,
		Reason:      m.Reason,
		CreatedBy:   m.CreatedBy,
	}
}

// StockMovementModelFromDomain creates a ledger row from a domain movement
func StockMovementModelFromDomain(s *inventory.StockMovement) *StockMovementModel {
	m := &StockMovementModel{
		TenantID:    s.TenantID,
		EquipmentID: s.EquipmentID,
		Type:        s.Type,
		Quantity:    s.Quantity,
		Delta:       s.Delta,
		Stock:       stockColumns(s.After),
		BookingID:   s.BookingID,
		Reason:      s.Reason,
		CreatedBy:   s.CreatedBy,
	}
	m.FromDomainBaseEntity(s.BaseEntity)
	return m
}
