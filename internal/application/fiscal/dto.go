package fiscal

import (
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/fiscal"
	"github.com/shopspring/decimal"
)

// CreateInvoiceInput opens a draft. With a booking the customer and amount
// come from it; rate and service code default to the tenant fiscal settings
type CreateInvoiceInput struct {
	BookingID   *uuid.UUID       `json:"booking_id"`
	CustomerID  *uuid.UUID       `json:"customer_id"`
	Description string           `json:"description"`
	ServiceCode string           `json:"service_code"`
	Amount      *decimal.Decimal `json:"amount"`
	ISSRate     *decimal.Decimal `json:"iss_rate"`
	ISSWithheld bool             `json:"iss_withheld"`
}

// InvoiceListFilter narrows the invoice list
type InvoiceListFilter struct {
	Page       int
	PageSize   int
	Search     string
	Status     string
	CustomerID *uuid.UUID
	BookingID  *uuid.UUID
	From       *time.Time
	To         *time.Time
}

// InvoiceDTO is the API view of an invoice
type InvoiceDTO struct {
	ID                 uuid.UUID       `json:"id"`
	Reference          string          `json:"reference"`
	BookingID          *uuid.UUID      `json:"booking_id,omitempty"`
	CustomerID         uuid.UUID       `json:"customer_id"`
	Status             string          `json:"status"`
	Number             string          `json:"number,omitempty"`
	VerificationCode   string          `json:"verification_code,omitempty"`
	ServiceDescription string          `json:"service_description"`
	ServiceCode        string          `json:"service_code"`
	Amount             decimal.Decimal `json:"amount"`
	ISSRate            decimal.Decimal `json:"iss_rate"`
	ISSAmount          decimal.Decimal `json:"iss_amount"`
	ISSWithheld        bool            `json:"iss_withheld"`
	HasPDF             bool            `json:"has_pdf"`
	HasXML             bool            `json:"has_xml"`
	ErrorMessage       string          `json:"error_message,omitempty"`
	IssuedAt           *time.Time      `json:"issued_at,omitempty"`
	AuthorizedAt       *time.Time      `json:"authorized_at,omitempty"`
	CancelledAt        *time.Time      `json:"cancelled_at,omitempty"`
	CancelReason       string          `json:"cancel_reason,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

func toInvoiceDTO(i *fiscal.Invoice) InvoiceDTO {
	return InvoiceDTO{
		ID:                 i.ID,
		Reference:          i.Reference,
		BookingID:          i.BookingID,
		CustomerID:         i.CustomerID,
		Status:             string(i.Status),
		Number:             i.Number,
		VerificationCode:   i.VerificationCode,
		ServiceDescription: i.Description,
		ServiceCode:        i.Code,
		Amount:             i.Amount,
		ISSRate:            i.ISSRate,
		ISSAmount:          i.ISSValue,
		ISSWithheld:        i.ISSWithheld,
		HasPDF:             i.PDFURL != "" || i.PDFStorageKey != "",
		HasXML:             i.XMLURL != "" || i.XMLStorageKey != "",
		ErrorMessage:       i.ErrorMessage,
		IssuedAt:           i.IssuedAt,
		AuthorizedAt:       i.AuthorizedAt,
		CancelledAt:        i.CancelledAt,
		CancelReason:       i.CancelReason,
		CreatedAt:          i.CreatedAt,
	}
}

// FileKind selects the invoice file to download
type FileKind string

const (
	FilePDF FileKind = "pdf"
	FileXML FileKind = "xml"
)

// InvoiceFile is a downloaded invoice file. URL is set when the object store
// can link to it directly; otherwise Data carries the bytes
type InvoiceFile struct {
	FileName    string
	ContentType string
	URL         string
	Data        []byte
}
