package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent represents something that happened to an aggregate
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
	TenantID() uuid.UUID
}

// ActorAware events know which user triggered them
type ActorAware interface {
	ActorID() uuid.UUID
}

// BaseDomainEvent carries the fields every event has
type BaseDomainEvent struct {
	ID            uuid.UUID `json:"id"`
	Type          string    `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggID         uuid.UUID `json:"aggregate_id"`
	AggType       string    `json:"aggregate_type"`
	TenantIDValue uuid.UUID `json:"tenant_id"`
	Actor         uuid.UUID `json:"actor_id,omitempty"`
}

func (e *BaseDomainEvent) EventID() uuid.UUID     { return e.ID }
func (e *BaseDomainEvent) EventType() string      { return e.Type }
func (e *BaseDomainEvent) OccurredAt() time.Time  { return e.Timestamp }
func (e *BaseDomainEvent) AggregateID() uuid.UUID { return e.AggID }
func (e *BaseDomainEvent) AggregateType() string  { return e.AggType }
func (e *BaseDomainEvent) TenantID() uuid.UUID    { return e.TenantIDValue }
func (e *BaseDomainEvent) ActorID() uuid.UUID     { return e.Actor }

// WithActor sets the user that triggered the event
func (e *BaseDomainEvent) WithActor(userID uuid.UUID) {
	e.Actor = userID
}

// NewBaseDomainEvent creates the common part of an event
func NewBaseDomainEvent(eventType, aggType string, aggID, tenantID uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{
		ID:            uuid.New(),
		Type:          eventType,
		Timestamp:     time.Now(),
		AggID:         aggID,
		AggType:       aggType,
		TenantIDValue: tenantID,
	}
}

// StampActor sets actor on every event that does not carry one yet
func StampActor(events []DomainEvent, actor uuid.UUID) {
	if actor == uuid.Nil {
		return
	}
	for _, e := range events {
		if s, ok := e.(interface {
			ActorAware
			WithActor(uuid.UUID)
		}); ok && s.ActorID() == uuid.Nil {
			s.WithActor(actor)
		}
	}
}
