package audit

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/audit"
	"github.com/locaflow/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Recorder is the write side of the activity log
type Recorder interface {
	Record(ctx context.Context, entry audit.Entry)
}

// EventLogger turns domain events into activity entries
type EventLogger struct {
	recorder Recorder
	logger   *zap.Logger
}

// NewEventLogger creates a subscriber that logs every domain event
func NewEventLogger(recorder Recorder, logger *zap.Logger) *EventLogger {
	return &EventLogger{recorder: recorder, logger: logger}
}

// EventTypes is empty so the logger receives every event
func (h *EventLogger) EventTypes() []string { return nil }

// Name identifies the handler in bus logs and idempotency keys
func (h *EventLogger) Name() string { return "activity-log" }

// Handle records one entry per event
func (h *EventLogger) Handle(ctx context.Context, event shared.DomainEvent) error {
	if event.TenantID() == uuid.Nil {
		return nil
	}
	entry := audit.Entry{
		TenantID:    event.TenantID(),
		Action:      actionFor(event.EventType()),
		EntityType:  event.AggregateType(),
		Description: describe(event.EventType()),
		Metadata:    eventMetadata(event),
	}
	if id := event.AggregateID(); id != uuid.Nil {
		entry.EntityID = &id
	}
	if a, ok := event.(shared.ActorAware); ok {
		if actor := a.ActorID(); actor != uuid.Nil {
			entry.UserID = &actor
		}
	}
	h.recorder.Record(ctx, entry)
	return nil
}

func actionFor(eventType string) audit.Action {
	switch {
	case strings.HasSuffix(eventType, "Created"):
		return audit.ActionCreate
	case strings.HasSuffix(eventType, "Updated"):
		return audit.ActionUpdate
	case strings.HasSuffix(eventType, "Deleted"):
		return audit.ActionDelete
	}
	return audit.ActionStatusChange
}

// describe splits a CamelCase event type into words: "BookingConfirmed" -> "Booking confirmed"
func describe(eventType string) string {
	var b strings.Builder
	for i, r := range eventType {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

var baseEventFields = []string{"id", "type", "timestamp", "aggregate_id", "aggregate_type", "tenant_id", "actor_id"}

func eventMetadata(event shared.DomainEvent) map[string]any {
	raw, err := json.Marshal(event)
	if err != nil {
		return map[string]any{"event_id": event.EventID().String()}
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return map[string]any{"event_id": event.EventID().String()}
	}
	for _, k := range baseEventFields {
		delete(fields, k)
	}
	fields["event_id"] = event.EventID().String()
	return fields
}
