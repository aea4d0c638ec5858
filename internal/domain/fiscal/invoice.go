package fiscal

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status mirrors the state of the NFS-e at the gateway
type Status string

const (
	StatusDraft      Status = "DRAFT"
	StatusProcessing Status = "PROCESSING"
	StatusAuthorized Status = "AUTHORIZED"
	StatusError      Status = "ERROR"
	StatusCancelled  Status = "CANCELLED"
)

// Gateway status strings returned by Focus NFe
const (
	GatewayProcessing = "processando_autorizacao"
	GatewayAuthorized = "autorizado"
	GatewayError      = "erro_autorizacao"
	GatewayCancelled  = "cancelado"
)

var gatewayStatuses = map[string]Status{
	GatewayProcessing: StatusProcessing,
	GatewayAuthorized: StatusAuthorized,
	GatewayError:      StatusError,
	GatewayCancelled:  StatusCancelled,
}

// MapGatewayStatus converts a gateway status string to the local status
func MapGatewayStatus(s string) (Status, bool) {
	st, ok := gatewayStatuses[strings.ToLower(strings.TrimSpace(s))]
	return st, ok
}

const (
	minCancelReason = 15
	maxCancelReason = 255
)

// Service is the taxable service being invoiced
type Service struct {
	Description string
	Code        string
	Amount      decimal.Decimal
	ISSRate     decimal.Decimal
	ISSWithheld bool
}

func (s Service) normalize() (Service, error) {
	s.Description = strings.TrimSpace(s.Description)
	s.Code = strings.TrimSpace(s.Code)
	if s.Description == "" {
		return s, shared.NewDomainError("INVALID_DESCRIPTION", "Service description cannot be empty")
	}
	if len(s.Description) > 2000 {
		return s, shared.NewDomainError("INVALID_DESCRIPTION", "Service description cannot exceed 2000 characters")
	}
	if !s.Amount.IsPositive() {
		return s, shared.NewDomainError("INVALID_AMOUNT", "Amount must be greater than zero")
	}
	if s.ISSRate.IsNegative() || s.ISSRate.GreaterThan(decimal.NewFromInt(5)) {
		return s, shared.NewDomainError("INVALID_ISS_RATE", "ISS rate must be between 0 and 5 percent")
	}
	s.Amount = s.Amount.Round(2)
	return s, nil
}

// ISSAmount is amount x rate / 100, rounded to cents
func (s Service) ISSAmount() decimal.Decimal {
	return s.Amount.Mul(s.ISSRate).Div(decimal.NewFromInt(100)).Round(2)
}

// GatewayResult is the relevant part of a gateway query response
type GatewayResult struct {
	Status           string
	Number           string
	VerificationCode string
	PDFURL           string
	XMLURL           string
	ErrorMessage     string
}

// Invoice is a municipal service invoice issued through the gateway
type Invoice struct {
	shared.TenantAggregateRoot
	Reference  string
	BookingID  *uuid.UUID
	CustomerID uuid.UUID
	Status     Status
	Service
	ISSValue         decimal.Decimal
	Number           string
	VerificationCode string
	PDFURL           string
	XMLURL           string
	PDFStorageKey    string
	XMLStorageKey    string
	ErrorMessage     string
	IssuedAt         *time.Time
	AuthorizedAt     *time.Time
	CancelledAt      *time.Time
	CancelReason     string
}

// NewReference returns a fresh gateway reference
func NewReference() string {
	return "lf" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NewDraft creates a draft invoice for a customer, optionally tied to a booking
func NewDraft(tenantID, customerID uuid.UUID, bookingID *uuid.UUID, svc Service) (*Invoice, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer is required")
	}
	svc, err := svc.normalize()
	if err != nil {
		return nil, err
	}
	inv := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Reference:           NewReference(),
		BookingID:           bookingID,
		CustomerID:          customerID,
		Status:              StatusDraft,
		Service:             svc,
		ISSValue:            svc.ISSAmount(),
	}
	inv.AddDomainEvent(NewInvoiceEvent(EventTypeInvoiceCreated, inv))
	return inv, nil
}

// CanIssue reports whether the invoice can be sent to the gateway.
// Rejected invoices may be fixed at the source and sent again
func (i *Invoice) CanIssue() error {
	if i.Status != StatusDraft && i.Status != StatusError {
		return shared.NewDomainErrorf(shared.CodeInvalidState, "Cannot issue a %s invoice", i.Status)
	}
	return nil
}

// MarkSubmitted records that the gateway accepted the request for processing
func (i *Invoice) MarkSubmitted(result GatewayResult) error {
	if err := i.CanIssue(); err != nil {
		return err
	}
	now := time.Now()
	i.IssuedAt = &now
	i.ErrorMessage = ""
	if result.Status == "" {
		result.Status = GatewayProcessing
	}
	return i.ApplyGatewayResult(result)
}

// MarkRejected records a synchronous gateway rejection
func (i *Invoice) MarkRejected(message string) {
	i.Status = StatusError
	i.ErrorMessage = strings.TrimSpace(message)
	i.Touch()
	i.AddDomainEvent(NewInvoiceEvent(EventTypeInvoiceRejected, i))
}

// ApplyGatewayResult copies the gateway state onto the invoice
func (i *Invoice) ApplyGatewayResult(r GatewayResult) error {
	status, ok := MapGatewayStatus(r.Status)
	if !ok {
		return shared.NewDomainErrorf(shared.CodeIntegrationError, "Unknown gateway status %q", r.Status)
	}
	prev := i.Status
	i.Status = status
	if r.Number != "" {
		i.Number = r.Number
	}
	if r.VerificationCode != "" {
		i.VerificationCode = r.VerificationCode
	}
	if r.PDFURL != "" {
		i.PDFURL = r.PDFURL
	}
	if r.XMLURL != "" {
		i.XMLURL = r.XMLURL
	}
	now := time.Now()
	switch status {
	case StatusError:
		i.ErrorMessage = r.ErrorMessage
	case StatusAuthorized:
		i.ErrorMessage = ""
		if i.AuthorizedAt == nil {
			i.AuthorizedAt = &now
		}
	case StatusCancelled:
		if i.CancelledAt == nil {
			i.CancelledAt = &now
		}
	}
	i.Touch()
	if prev != status {
		i.AddDomainEvent(NewInvoiceStatusChangedEvent(i, prev))
	}
	return nil
}

// ValidateCancel checks that the invoice can be cancelled with reason
func (i *Invoice) ValidateCancel(reason string) (string, error) {
	if i.Status != StatusAuthorized {
		return "", shared.NewDomainErrorf(shared.CodeInvalidState, "Only authorized invoices can be cancelled, this one is %s", i.Status)
	}
	reason = strings.TrimSpace(reason)
	n := utf8.RuneCountInString(reason)
	if n < minCancelReason || n > maxCancelReason {
		return "", shared.NewDomainErrorf("INVALID_REASON", "Cancel reason must have between %d and %d characters", minCancelReason, maxCancelReason)
	}
	return reason, nil
}

// Cancelled records a confirmed cancellation
func (i *Invoice) Cancelled(reason string, r GatewayResult) error {
	if r.Status == "" {
		r.Status = GatewayCancelled
	}
	i.CancelReason = reason
	return i.ApplyGatewayResult(r)
}

// CanDelete allows removal of invoices that never reached the municipality
func (i *Invoice) CanDelete() error {
	if i.Status != StatusDraft && i.Status != StatusError {
		return shared.NewDomainErrorf(shared.CodeInvalidState, "Cannot delete a %s invoice", i.Status)
	}
	return nil
}

// CanSync reports whether there is gateway state to fetch
func (i *Invoice) CanSync() error {
	if i.Status == StatusDraft {
		return shared.NewDomainError(shared.CodeInvalidState, "Draft invoices were never sent")
	}
	return nil
}
