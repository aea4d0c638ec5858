package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// CategoryInput creates or edits a category
type CategoryInput struct {
	Name  string `json:"name" binding:"required,max=100"`
	Type  string `json:"type" binding:"required,oneof=INCOME EXPENSE"`
	Color string `json:"color"`
}

// CategoryDTO is the API view of a category
type CategoryDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Color     string    `json:"color"`
	IsDefault bool      `json:"is_default"`
}

func toCategoryDTO(c *finance.Category) CategoryDTO {
	return CategoryDTO{ID: c.ID, Name: c.Name, Type: string(c.Type), Color: c.Color, IsDefault: c.IsDefault}
}

// TransactionInput creates or edits a transaction
type TransactionInput struct {
	Type          string          `json:"type" binding:"required,oneof=INCOME EXPENSE"`
	Description   string          `json:"description" binding:"required,max=255"`
	Amount        decimal.Decimal `json:"amount"`
	DueDate       time.Time       `json:"due_date" binding:"required"`
	PaymentMethod string          `json:"payment_method"`
	CategoryID    *uuid.UUID      `json:"category_id"`
	CustomerID    *uuid.UUID      `json:"customer_id"`
	BookingID     *uuid.UUID      `json:"booking_id"`
	Notes         string          `json:"notes"`
}

func (in TransactionInput) details() finance.TransactionDetails {
	return finance.TransactionDetails{
		Description:   in.Description,
		Amount:        in.Amount,
		DueDate:       in.DueDate,
		PaymentMethod: finance.PaymentMethod(in.PaymentMethod),
		CategoryID:    in.CategoryID,
		CustomerID:    in.CustomerID,
		Notes:         in.Notes,
	}
}

// PayInput settles a transaction
type PayInput struct {
	PaidAt        *time.Time `json:"paid_at"`
	PaymentMethod string     `json:"payment_method"`
}

// TransactionListFilter narrows the transaction list
type TransactionListFilter struct {
	Page       int
	PageSize   int
	Search     string
	Type       string
	Status     string
	CategoryID *uuid.UUID
	CustomerID *uuid.UUID
	BookingID  *uuid.UUID
	From       *time.Time
	To         *time.Time
}

// TransactionDTO is the API view of a transaction
type TransactionDTO struct {
	ID                     uuid.UUID       `json:"id"`
	Type                   string          `json:"type"`
	Description            string          `json:"description"`
	Amount                 decimal.Decimal `json:"amount"`
	DueDate                time.Time       `json:"due_date"`
	PaidAt                 *time.Time      `json:"paid_at,omitempty"`
	Status                 string          `json:"status"`
	PaymentMethod          string          `json:"payment_method,omitempty"`
	CategoryID             *uuid.UUID      `json:"category_id,omitempty"`
	CustomerID             *uuid.UUID      `json:"customer_id,omitempty"`
	BookingID              *uuid.UUID      `json:"booking_id,omitempty"`
	RecurringTransactionID *uuid.UUID      `json:"recurring_transaction_id,omitempty"`
	Notes                  string          `json:"notes,omitempty"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

func toTransactionDTO(t *finance.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:                     t.ID,
		Type:                   string(t.Type),
		Description:            t.Description,
		Amount:                 t.Amount,
		DueDate:                t.DueDate,
		PaidAt:                 t.PaidAt,
		Status:                 string(t.Status),
		PaymentMethod:          string(t.PaymentMethod),
		CategoryID:             t.CategoryID,
		CustomerID:             t.CustomerID,
		BookingID:              t.BookingID,
		RecurringTransactionID: t.RecurringTransactionID,
		Notes:                  t.Notes,
		CreatedAt:              t.CreatedAt,
		UpdatedAt:              t.UpdatedAt,
	}
}

// RecurringInput creates a recurring series
type RecurringInput struct {
	Type          string          `json:"type" binding:"required,oneof=INCOME EXPENSE"`
	Description   string          `json:"description" binding:"required,max=255"`
	Amount        decimal.Decimal `json:"amount"`
	CategoryID    *uuid.UUID      `json:"category_id"`
	PaymentMethod string          `json:"payment_method"`
	Frequency     string          `json:"frequency" binding:"required,oneof=DAILY WEEKLY MONTHLY YEARLY"`
	Interval      int             `json:"interval"`
	StartDate     time.Time       `json:"start_date" binding:"required"`
	EndDate       *time.Time      `json:"end_date"`
}

func (in RecurringInput) template() finance.RecurringTemplate {
	return finance.RecurringTemplate{
		Type:          finance.TransactionType(in.Type),
		Description:   in.Description,
		Amount:        in.Amount,
		CategoryID:    in.CategoryID,
		PaymentMethod: finance.PaymentMethod(in.PaymentMethod),
	}
}

// RecurringDTO is the API view of a recurring series
type RecurringDTO struct {
	ID              uuid.UUID       `json:"id"`
	Type            string          `json:"type"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	CategoryID      *uuid.UUID      `json:"category_id,omitempty"`
	PaymentMethod   string          `json:"payment_method,omitempty"`
	Frequency       string          `json:"frequency"`
	Interval        int             `json:"interval"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         *time.Time      `json:"end_date,omitempty"`
	NextDueDate     time.Time       `json:"next_due_date"`
	LastGeneratedAt *time.Time      `json:"last_generated_at,omitempty"`
	Occurrences     int             `json:"occurrences"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

func toRecurringDTO(r *finance.RecurringTransaction) RecurringDTO {
	return RecurringDTO{
		ID:              r.ID,
		Type:            string(r.Type),
		Description:     r.Description,
		Amount:          r.Amount,
		CategoryID:      r.CategoryID,
		PaymentMethod:   string(r.PaymentMethod),
		Frequency:       string(r.Frequency),
		Interval:        r.Interval,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		NextDueDate:     r.NextDueDate,
		LastGeneratedAt: r.LastGeneratedAt,
		Occurrences:     r.Occurrences,
		Status:          string(r.Status),
		CreatedAt:       r.CreatedAt,
	}
}
