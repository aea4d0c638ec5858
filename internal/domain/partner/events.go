package partner

import (
	"github.com/locaflow/backend/internal/domain/shared"
)

// AggregateTypeCustomer is the aggregate type name for events
const AggregateTypeCustomer = "Customer"

const (
	EventTypeCustomerCreated = "CustomerCreated"
	EventTypeCustomerUpdated = "CustomerUpdated"
)

// CustomerCreatedEvent is published when a customer is registered
type CustomerCreatedEvent struct {
	shared.BaseDomainEvent
	Name     string       `json:"name"`
	Document string       `json:"document"`
	Type     CustomerType `json:"type"`
}

func NewCustomerCreatedEvent(c *Customer) *CustomerCreatedEvent {
	return &CustomerCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerCreated, AggregateTypeCustomer, c.ID, c.TenantID),
		Name:            c.Name,
		Document:        c.Document,
		Type:            c.Type,
	}
}

// CustomerUpdatedEvent is published after a profile change
type CustomerUpdatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

func NewCustomerUpdatedEvent(c *Customer) *CustomerUpdatedEvent {
	return &CustomerUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerUpdated, AggregateTypeCustomer, c.ID, c.TenantID),
		Name:            c.Name,
	}
}
