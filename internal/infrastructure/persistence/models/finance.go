package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// CategoryModel is the persistence model for transaction categories
type CategoryModel struct {
	TenantAggregateModel
	Name      string                  `gorm:"type:varchar(100);not null"`
	Type      finance.TransactionType `gorm:"type:varchar(10);not null;index"`
	Color     string                  `gorm:"type:varchar(7)"`
	IsDefault bool                    `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "transaction_categories"
}

// ToDomain converts the persistence model to a domain Category
func (m *CategoryModel) ToDomain() *finance.Category {
	return &finance.Category{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Name:                m.Name,
		Type:                m.Type,
		Color:               m.Color,
		IsDefault:           m.IsDefault,
	}
}

// CategoryModelFromDomain creates a persistence model from a domain Category
func CategoryModelFromDomain(c *finance.Category) *CategoryModel {
	m := &CategoryModel{
		Name:      c.Name,
		Type:      c.Type,
		Color:     c.Color,
		IsDefault: c.IsDefault,
	}
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	return m
}

// TransactionModel is the persistence model for receivables and payables
type TransactionModel struct {
	TenantAggregateModel
	Type                   finance.TransactionType   `gorm:"type:varchar(10);not null;index"`
	Description            string                    `gorm:"type:varchar(255);not null"`
	Amount                 decimal.Decimal           `gorm:"type:decimal(18,2);not null"`
	DueDate                time.Time                 `gorm:"not null;index"`
	PaymentMethod          finance.PaymentMethod     `gorm:"type:varchar(20);not null"`
	CategoryID             *uuid.UUID                `gorm:"type:uuid;index"`
	CustomerID             *uuid.UUID                `gorm:"type:uuid;index"`
	Notes                  string                    `gorm:"type:text"`
	Status                 finance.TransactionStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	PaidAt                 *time.Time                `gorm:"index"`
	BookingID              *uuid.UUID                `gorm:"type:uuid;index"`
	RecurringTransactionID *uuid.UUID                `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "financial_transactions"
}

// ToDomain converts the persistence model to a domain Transaction
func (m *TransactionModel) ToDomain() *finance.Transaction {
	return &finance.Transaction{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Type:                m.Type,
		TransactionDetails: finance.TransactionDetails{
			Description:   m.Description,
			Amount:        m.Amount,
			DueDate:       m.DueDate,
			PaymentMethod: m.PaymentMethod,
			CategoryID:    m.CategoryID,
			CustomerID:    m.CustomerID,
			Notes:         m.Notes,
		},
		Status:                 m.Status,
		PaidAt:                 m.PaidAt,
		BookingID:              m.BookingID,
		RecurringTransactionID: m.RecurringTransactionID,
	}
}

// TransactionModelFromDomain creates a persistence model from a domain Transaction
func TransactionModelFromDomain(t *finance.Transaction) *TransactionModel {
	m := &TransactionModel{
		Type:                   t.Type,
		Description:            t.Description,
		Amount:                 t.Amount,
		DueDate:                t.DueDate,
		PaymentMethod:          t.PaymentMethod,
		CategoryID:             t.CategoryID,
		CustomerID:             t.CustomerID,
		Notes:                  t.Notes,
		Status:                 t.Status,
		PaidAt:                 t.PaidAt,
		BookingID:              t.BookingID,
		RecurringTransactionID: t.RecurringTransactionID,
	}
	m.FromDomainTenantAggregateRoot(t.TenantAggregateRoot)
	return m
}

// RecurringModel is the persistence model for recurring series
type RecurringModel struct {
	TenantAggregateModel
	Type            finance.TransactionType `gorm:"type:varchar(10);not null"`
	Description     string                  `gorm:"type:varchar(255);not null"`
	Amount          decimal.Decimal         `gorm:"type:decimal(18,2);not null"`
	CategoryID      *uuid.UUID              `gorm:"type:uuid"`
	PaymentMethod   finance.PaymentMethod   `gorm:"type:varchar(20);not null"`
	Frequency       finance.Frequency       `gorm:"type:varchar(20);not null"`
	Interval        int                     `gorm:"column:interval_count;not null;default:1"`
	StartDate       time.Time               `gorm:"not null"`
	EndDate         *time.Time
	Status          finance.RecurringStatus `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	NextDueDate     time.Time               `gorm:"not null;index"`
	LastGeneratedAt *time.Time
	Occurrences     int `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (RecurringModel) TableName() string {
	return "recurring_transactions"
}

// ToDomain converts the persistence model to a domain series
func (m *RecurringModel) ToDomain() *finance.RecurringTransaction {
	return &finance.RecurringTransaction{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		RecurringTemplate: finance.RecurringTemplate{
			Type:          m.Type,
			Description:   m.Description,
			Amount:        m.Amount,
			CategoryID:    m.CategoryID,
			PaymentMethod: m.PaymentMethod,
		},
		Schedule: finance.Schedule{
			Frequency: m.Frequency,
			Interval:  m.Interval,
			StartDate: m.StartDate,
			EndDate:   m.EndDate,
		},
		Status:          m.Status,
		NextDueDate:     m.NextDueDate,
		LastGeneratedAt: m.LastGeneratedAt,
		Occurrences:     m.Occurrences,
	}
}

// RecurringModelFromDomain creates a persistence model from a domain series
func RecurringModelFromDomain(r *finance.RecurringTransaction) *RecurringModel {
	m := &RecurringModel{
		Type:            r.Type,
		Description:     r.Description,
		Amount:          r.Amount,
		CategoryID:      r.CategoryID,
		PaymentMethod:   r.PaymentMethod,
		Frequency:       r.Frequency,
		Interval:        r.Interval,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		Status:          r.Status,
		NextDueDate:     r.NextDueDate,
		LastGeneratedAt: r.LastGeneratedAt,
		Occurrences:     r.Occurrences,
	}
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	return m
}
