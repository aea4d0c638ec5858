package inventory

import (
	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/shared"
)

// AggregateTypeEquipment is the aggregate type name for events
const AggregateTypeEquipment = "Equipment"

const (
	EventTypeEquipmentCreated = "EquipmentCreated"
	EventTypeEquipmentUpdated = "EquipmentUpdated"
	EventTypeStockMoved       = "StockMoved"
)

// EquipmentCreatedEvent is published when equipment is registered
type EquipmentCreatedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

func NewEquipmentCreatedEvent(e *Equipment) *EquipmentCreatedEvent {
	return &EquipmentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEquipmentCreated, AggregateTypeEquipment, e.ID, e.TenantID),
		Code:            e.Code,
		Name:            e.Name,
	}
}

// EquipmentUpdatedEvent is published when details or prices change
type EquipmentUpdatedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
}

func NewEquipmentUpdatedEvent(e *Equipment) *EquipmentUpdatedEvent {
	return &EquipmentUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEquipmentUpdated, AggregateTypeEquipment, e.ID, e.TenantID),
		Code:            e.Code,
	}
}

// StockMovedEvent is published for every ledger entry
type StockMovedEvent struct {
	shared.BaseDomainEvent
	MovementID uuid.UUID    `json:"movement_id"`
	Code       string       `json:"code"`
	Type       MovementType `json:"type"`
	Quantity   int          `json:"quantity"`
	After      StockLevels  `json:"after"`
}

func NewStockMovedEvent(e *Equipment, m *StockMovement) *StockMovedEvent {
	ev := &StockMovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockMoved, AggregateTypeEquipment, e.ID, e.TenantID),
		MovementID:      m.ID,
		Code:            e.Code,
		Type:            m.Type,
		Quantity:        m.Quantity,
		After:           m.After,
	}
	if m.CreatedBy != nil {
		ev.WithActor(*m.CreatedBy)
	}
	return ev
}
