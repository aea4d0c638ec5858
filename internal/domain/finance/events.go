package finance

import (
	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeTransaction is the aggregate type name for events
const AggregateTypeTransaction = "FinancialTransaction"

const (
	EventTypeTransactionCreated   = "TransactionCreated"
	EventTypeTransactionPaid      = "TransactionPaid"
	EventTypeTransactionCancelled = "TransactionCancelled"
)

// TransactionEvent is shared by the transaction lifecycle events
type TransactionEvent struct {
	shared.BaseDomainEvent
	TxType      TransactionType `json:"transaction_type"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	BookingID   *uuid.UUID      `json:"booking_id,omitempty"`
}

func newTransactionEvent(eventType string, t *Transaction) *TransactionEvent {
	return &TransactionEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeTransaction, t.ID, t.TenantID),
		TxType:          t.Type,
		Description:     t.Description,
		Amount:          t.Amount,
		BookingID:       t.BookingID,
	}
}

func NewTransactionCreatedEvent(t *Transaction) *TransactionEvent {
	return newTransactionEvent(EventTypeTransactionCreated, t)
}

func NewTransactionPaidEvent(t *Transaction) *TransactionEvent {
	return newTransactionEvent(EventTypeTransactionPaid, t)
}

func NewTransactionCancelledEvent(t *Transaction) *TransactionEvent {
	return newTransactionEvent(EventTypeTransactionCancelled, t)
}
