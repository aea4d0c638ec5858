package finance

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TransactionStatus is the settlement state of a transaction
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusPaid      TransactionStatus = "PAID"
	TransactionStatusOverdue   TransactionStatus = "OVERDUE"
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
)

// IsValid returns true for known statuses
func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusPaid, TransactionStatusOverdue, TransactionStatusCancelled:
		return true
	}
	return false
}

// IsOpen reports whether the transaction still awaits payment
func (s TransactionStatus) IsOpen() bool {
	return s == TransactionStatusPending || s == TransactionStatusOverdue
}

// PaymentMethod is how money changed hands
type PaymentMethod string

const (
	PaymentMethodPix          PaymentMethod = "PIX"
	PaymentMethodBoleto       PaymentMethod = "BOLETO"
	PaymentMethodCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentMethodDebitCard    PaymentMethod = "DEBIT_CARD"
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
)

// IsValid returns true for known methods. Empty is accepted as "not informed"
func (m PaymentMethod) IsValid() bool {
	switch m {
	case "", PaymentMethodPix, PaymentMethodBoleto, PaymentMethodCreditCard,
		PaymentMethodDebitCard, PaymentMethodCash, PaymentMethodBankTransfer:
		return true
	}
	return false
}

// TransactionDetails are the user-editable fields
type TransactionDetails struct {
	Description   string
	Amount        decimal.Decimal
	DueDate       time.Time
	PaymentMethod PaymentMethod
	CategoryID    *uuid.UUID
	CustomerID    *uuid.UUID
	Notes         string
}

func (d TransactionDetails) normalize() (TransactionDetails, error) {
	d.Description = strings.TrimSpace(d.Description)
	d.Notes = strings.TrimSpace(d.Notes)
	if d.Description == "" {
		return d, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}
	if len(d.Description) > 255 {
		return d, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 255 characters")
	}
	if !d.Amount.IsPositive() {
		return d, shared.NewDomainError("INVALID_AMOUNT", "Amount must be greater than zero")
	}
	if d.DueDate.IsZero() {
		return d, shared.NewDomainError("INVALID_DUE_DATE", "Due date is required")
	}
	if !d.PaymentMethod.IsValid() {
		return d, shared.NewDomainErrorf("INVALID_PAYMENT_METHOD", "Invalid payment method %q", d.PaymentMethod)
	}
	d.Amount = d.Amount.Round(2)
	return d, nil
}

// Transaction is a receivable or payable
type Transaction struct {
	shared.TenantAggregateRoot
	Type TransactionType
	TransactionDetails
	Status                 TransactionStatus
	PaidAt                 *time.Time
	BookingID              *uuid.UUID
	RecurringTransactionID *uuid.UUID
}

// NewTransaction creates a pending transaction
func NewTransaction(tenantID uuid.UUID, kind TransactionType, details TransactionDetails) (*Transaction, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainErrorf("INVALID_TYPE", "Invalid transaction type %q", kind)
	}
	details, err := details.normalize()
	if err != nil {
		return nil, err
	}
	t := &Transaction{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Type:                kind,
		TransactionDetails:  details,
		Status:              TransactionStatusPending,
	}
	t.AddDomainEvent(NewTransactionCreatedEvent(t))
	return t, nil
}

// NewBookingReceivable creates the income transaction for a confirmed booking
func NewBookingReceivable(tenantID, bookingID, customerID uuid.UUID, number string, amount decimal.Decimal, due time.Time, categoryID *uuid.UUID) (*Transaction, error) {
	t, err := NewTransaction(tenantID, TransactionTypeIncome, TransactionDetails{
		Description: "Locação " + number,
		Amount:      amount,
		DueDate:     due,
		CategoryID:  categoryID,
		CustomerID:  &customerID,
	})
	if err != nil {
		return nil, err
	}
	t.BookingID = &bookingID
	return t, nil
}

// Update edits an open transaction
func (t *Transaction) Update(details TransactionDetails) error {
	if !t.Status.IsOpen() {
		return shared.NewDomainErrorf(shared.CodeInvalidState, "Cannot edit a %s transaction", t.Status)
	}
	details, err := details.normalize()
	if err != nil {
		return err
	}
	t.TransactionDetails = details
	t.Touch()
	return nil
}

// MarkPaid settles the transaction
func (t *Transaction) MarkPaid(paidAt time.Time, method PaymentMethod) error {
	if !t.Status.IsOpen() {
		return shared.NewDomainErrorf(shared.CodeInvalidState, "Cannot pay a %s transaction", t.Status)
	}
	if !method.IsValid() {
		return shared.NewDomainErrorf("INVALID_PAYMENT_METHOD", "Invalid payment method %q", method)
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}
	t.Status = TransactionStatusPaid
	t.PaidAt = &paidAt
	if method != "" {
		t.PaymentMethod = method
	}
	t.Touch()
	t.AddDomainEvent(NewTransactionPaidEvent(t))
	return nil
}

// Cancel voids an open transaction
func (t *Transaction) Cancel() error {
	if !t.Status.IsOpen() {
		return shared.NewDomainErrorf(shared.CodeInvalidState, "Cannot cancel a %s transaction", t.Status)
	}
	t.Status = TransactionStatusCancelled
	t.Touch()
	t.AddDomainEvent(NewTransactionCancelledEvent(t))
	return nil
}

// MarkOverdue flips a pending transaction whose due date is before today.
// It returns true when the status changed
func (t *Transaction) MarkOverdue(today time.Time) bool {
	if t.Status != TransactionStatusPending || !t.DueDate.Before(StartOfDay(today)) {
		return false
	}
	t.Status = TransactionStatusOverdue
	t.Touch()
	return true
}

// StartOfDay truncates t to midnight in its location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// CategoryTotal is the paid amount per category in a period
type CategoryTotal struct {
	CategoryID *uuid.UUID      `json:"category_id"`
	Name       string          `json:"name"`
	Type       TransactionType `json:"type"`
	Total      decimal.Decimal `json:"total"`
}

// Summary is the cash view of a period
type Summary struct {
	PaidIncome        decimal.Decimal `json:"paid_income"`
	PaidExpense       decimal.Decimal `json:"paid_expense"`
	Balance           decimal.Decimal `json:"balance"`
	PendingReceivable decimal.Decimal `json:"pending_receivable"`
	PendingPayable    decimal.Decimal `json:"pending_payable"`
	OverdueCount      int64           `json:"overdue_count"`
	OverdueAmount     decimal.Decimal `json:"overdue_amount"`
	ByCategory        []CategoryTotal `json:"by_category"`
}
