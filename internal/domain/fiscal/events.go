package fiscal

import (
	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeInvoice is the aggregate type name for events
const AggregateTypeInvoice = "Invoice"

const (
	EventTypeInvoiceCreated       = "InvoiceCreated"
	EventTypeInvoiceRejected      = "InvoiceRejected"
	EventTypeInvoiceStatusChanged = "InvoiceStatusChanged"
)

// InvoiceEvent describes an invoice at the time of the event
type InvoiceEvent struct {
	shared.BaseDomainEvent
	Reference string          `json:"reference"`
	Status    Status          `json:"status"`
	Previous  Status          `json:"previous_status,omitempty"`
	Number    string          `json:"number,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
}

func NewInvoiceEvent(eventType string, i *Invoice) *InvoiceEvent {
	return &InvoiceEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeInvoice, i.ID, i.TenantID),
		Reference:       i.Reference,
		Status:          i.Status,
		Number:          i.Number,
		Amount:          i.Amount,
	}
}

func NewInvoiceStatusChangedEvent(i *Invoice, previous Status) *InvoiceEvent {
	ev := NewInvoiceEvent(EventTypeInvoiceStatusChanged, i)
	ev.Previous = previous
	return ev
}
