package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/fiscal"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for NFS-e invoices
type InvoiceModel struct {
	TenantAggregateModel
	Reference          string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	BookingID          *uuid.UUID      `gorm:"type:uuid;index"`
	CustomerID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status             fiscal.Status   `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	ServiceDescription string          `gorm:"type:text;not null"`
	ServiceCode        string          `gorm:"type:varchar(20)"`
	Amount             decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ISSRate            decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	ISSWithheld        bool            `gorm:"not null;default:false"`
	ISSValue           decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Number             string          `gorm:"type:varchar(50);index"`
	VerificationCode   string          `gorm:"type:varchar(100)"`
	PDFURL             string          `gorm:"column:pdf_url;type:varchar(500)"`
	XMLURL             string          `gorm:"column:xml_url;type:varchar(500)"`
	PDFStorageKey      string          `gorm:"column:pdf_storage_key;type:varchar(500)"`
	XMLStorageKey      string          `gorm:"column:xml_storage_key;type:varchar(500)"`
	ErrorMessage       string          `gorm:"type:text"`
	IssuedAt           *time.Time
	AuthorizedAt       *time.Time
	CancelledAt        *time.Time
	CancelReason       string `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice
func (m *InvoiceModel) ToDomain() *fiscal.Invoice {
	return &fiscal.Invoice{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Reference:           m.Reference,
		BookingID:           m.BookingID,
		CustomerID:          m.CustomerID,
		Status:              m.Status,
		Service: fiscal.Service{
			Description: m.ServiceDescription,
			Code:        m.ServiceCode,
			Amount:      m.Amount,
			ISSRate:     m.ISSRate,
			ISSWithheld: m.ISSWithheld,
		},
		ISSValue:         m.ISSValue,
		Number:           m.Number,
		VerificationCode: m.VerificationCode,
		PDFURL:           m.PDFURL,
		XMLURL:           m.XMLURL,
		PDFStorageKey:    m.PDFStorageKey,
		XMLStorageKey:    m.XMLStorageKey,
		ErrorMessage:     m.ErrorMessage,
		IssuedAt:         m.IssuedAt,
		AuthorizedAt:     m.AuthorizedAt,
		CancelledAt:      m.CancelledAt,
		CancelReason:     m.CancelReason,
	}
}

// InvoiceModelFromDomain creates a persistence model from a domain Invoice
func InvoiceModelFromDomain(inv *fiscal.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		Reference:          inv.Reference,
		BookingID:          inv.BookingID,
		CustomerID:         inv.CustomerID,
		Status:             inv.Status,
		ServiceDescription: inv.Description,
		ServiceCode:        inv.Code,
		Amount:             inv.Amount,
		ISSRate:            inv.ISSRate,
		ISSWithheld:        inv.ISSWithheld,
		ISSValue:           inv.ISSValue,
		Number:             inv.Number,
		VerificationCode:   inv.VerificationCode,
		PDFURL:             inv.PDFURL,
		XMLURL:             inv.XMLURL,
		PDFStorageKey:      inv.PDFStorageKey,
		XMLStorageKey:      inv.XMLStorageKey,
		ErrorMessage:       inv.ErrorMessage,
		IssuedAt:           inv.IssuedAt,
		AuthorizedAt:       inv.AuthorizedAt,
		CancelledAt:        inv.CancelledAt,
		CancelReason:       inv.CancelReason,
	}
	m.FromDomainTenantAggregateRoot(inv.TenantAggregateRoot)
	return m
}
