package fiscal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/billing"
	"github.com/locaflow/backend/internal/domain/booking"
	"github.com/locaflow/backend/internal/domain/fiscal"
	"github.com/locaflow/backend/internal/domain/identity"
	"github.com/locaflow/backend/internal/domain/partner"
	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/locaflow/backend/internal/domain/shared/valueobject"
	"github.com/locaflow/backend/internal/infrastructure/integration"
	"github.com/locaflow/backend/internal/infrastructure/storage"
	"go.uber.org/zap"
)

// DefaultSyncBatch is how many processing invoices one scheduled sync checks per tenant
const DefaultSyncBatch = 50

// Gateway is the NFS-e provider
type Gateway interface {
	Issue(ctx context.Context, ref string, req integration.NFSeRequest) (fiscal.GatewayResult, error)
	Query(ctx context.Context, ref string) (fiscal.GatewayResult, error)
	Cancel(ctx context.Context, ref, justification string) (fiscal.GatewayResult, error)
	Download(ctx context.Context, fileURL string) ([]byte, string, error)
}

// BookingFinder loads the booking an invoice is drafted from
type BookingFinder interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*booking.Booking, error)
}

// CustomerFinder loads the service taker
type CustomerFinder interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error)
}

// TenantFinder loads the service provider and its fiscal settings
type TenantFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*identity.Tenant, error)
}

// FeatureChecker enforces plan features
type FeatureChecker interface {
	RequireFeature(ctx context.Context, tenantID uuid.UUID, feature string) error
}

var (
	ErrFiscalSettingsIncomplete = shared.NewDomainError("FISCAL_SETTINGS_INCOMPLETE", "Municipal registration, service code and ISS rate must be configured")
	ErrProviderDocument         = shared.NewDomainError("FISCAL_SETTINGS_INCOMPLETE", "The company CNPJ is required to issue NFS-e")
	ErrFileNotAvailable         = shared.NewDomainError(shared.CodeNotFound, "The gateway has not published this file yet")
)

// Service drafts, issues and tracks NFS-e
type Service struct {
	invoices  fiscal.InvoiceRepository
	bookings  BookingFinder
	customers CustomerFinder
	tenants   TenantFinder
	features  FeatureChecker
	gateway   Gateway
	storage   storage.ObjectStorage
	events    shared.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a new fiscal service
func NewService(
	invoices fiscal.InvoiceRepository,
	bookings BookingFinder,
	customers CustomerFinder,
	tenants TenantFinder,
	features FeatureChecker,
	gateway Gateway,
	store storage.ObjectStorage,
	events shared.EventPublisher,
	logger *zap.Logger,
) *Service {
	return &Service{
		invoices:  invoices,
		bookings:  bookings,
		customers: customers,
		tenants:   tenants,
		features:  features,
		gateway:   gateway,
		storage:   store,
		events:    events,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateDraft opens a draft invoice from a booking or from free input
func (s *Service) CreateDraft(ctx context.Context, tenantID, actorID uuid.UUID, input CreateInvoiceInput) (*InvoiceDTO, error) {
	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	svc := fiscal.Service{
		Description: input.Description,
		Code:        input.ServiceCode,
		ISSRate:     tenant.Fiscal.ISSRate,
		ISSWithheld: input.ISSWithheld,
	}
	if svc.Code == "" {
		svc.Code = tenant.Fiscal.ServiceCode
	}
	if input.ISSRate != nil {
		svc.ISSRate = *input.ISSRate
	}
	if input.Amount != nil {
		svc.Amount = *input.Amount
	}

	var customerID uuid.UUID
	switch {
	case input.BookingID != nil:
		b, err := s.bookings.FindByIDForTenant(ctx, tenantID, *input.BookingID)
		if err != nil {
			return nil, err
		}
		if b.Status == booking.StatusPending || b.Status == booking.StatusCancelled {
			return nil, shared.NewDomainErrorf(shared.CodeInvalidState, "Cannot invoice a %s booking", b.Status)
		}
		customerID = b.CustomerID
		if input.Amount == nil {
			svc.Amount = b.TotalAmount
		}
		if strings.TrimSpace(svc.Description) == "" {
			svc.Description = fmt.Sprintf("Locação de equipamentos conforme contrato %s, de %s a %s",
				b.Number, b.StartDate.Format("02/01/2006"), b.EndDate.Format("02/01/2006"))
		}
	case input.CustomerID != nil:
		customerID = *input.CustomerID
	default:
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Either a booking or a customer is required")
	}
	if _, err := s.customers.FindByIDForTenant(ctx, tenantID, customerID); err != nil {
		return nil, err
	}

	inv, err := fiscal.NewDraft(tenantID, customerID, input.BookingID, svc)
	if err != nil {
		return nil, err
	}
	inv.SetCreatedBy(actorID)
	if err := s.invoices.Save(ctx, inv); err != nil {
		return nil, err
	}
	s.publish(ctx, actorID, inv)
	dto := toInvoiceDTO(inv)
	return &dto, nil
}

// GetByID returns one invoice
func (s *Service) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*InvoiceDTO, error) {
	inv, err := s.invoices.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	dto := toInvoiceDTO(inv)
	return &dto, nil
}

// List returns a page of invoices, newest first
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, f InvoiceListFilter) (*shared.Paginated[InvoiceDTO], error) {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = min(f.PageSize, 100)
	}
	filter.Search = strings.TrimSpace(f.Search)
	filter.From = f.From
	filter.To = f.To
	if f.Status != "" {
		filter = filter.With("status", strings.ToUpper(f.Status))
	}
	if f.CustomerID != nil {
		filter = filter.With("customer_id", *f.CustomerID)
	}
	if f.BookingID != nil {
		filter = filter.With("booking_id", *f.BookingID)
	}

	invoices, err := s.invoices.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.invoices.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]InvoiceDTO, len(invoices))
	for i := range invoices {
		items[i] = toInvoiceDTO(&invoices[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Issue sends a draft or rejected invoice to the gateway. A validation
// rejection is stored on the invoice as ERROR and is not returned as an error
func (s *Service) Issue(ctx context.Context, tenantID, id, actorID uuid.UUID) (*InvoiceDTO, error) {
	if err := s.features.RequireFeature(ctx, tenantID, billing.FeatureNFSe); err != nil {
		return nil, err
	}
	inv, err := s.invoices.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := inv.CanIssue(); err != nil {
		return nil, err
	}
	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !tenant.Fiscal.IsComplete() {
		return nil, ErrFiscalSettingsIncomplete
	}
	if len(tenant.Document) != 14 {
		return nil, ErrProviderDocument
	}
	customer, err := s.customers.FindByIDForTenant(ctx, tenantID, inv.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer.Document == "" {
		return nil, shared.NewDomainError("CUSTOMER_DOCUMENT_REQUIRED", "The customer needs a CPF or CNPJ")
	}

	result, err := s.gateway.Issue(ctx, inv.Reference, s.buildRequest(tenant, customer, inv))
	switch {
	case err == nil:
		if err := inv.MarkSubmitted(result); err != nil {
			return nil, err
		}
	case isRejection(err):
		inv.MarkRejected(rejectionMessage(err))
		s.logger.Warn("NFS-e rejected by gateway",
			zap.String("invoice_id", inv.ID.String()),
			zap.String("reference", inv.Reference),
			zap.String("message", inv.ErrorMessage),
		)
	default:
		s.logger.Error("Failed to issue NFS-e",
			zap.String("invoice_id", inv.ID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	if err := s.invoices.Save(ctx, inv); err != nil {
		return nil, err
	}
	s.publish(ctx, actorID, inv)
	s.logger.Info("NFS-e submitted",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("status", string(inv.Status)),
	)
	dto := toInvoiceDTO(inv)
	return &dto, nil
}

// Sync copies the gateway state onto the invoice
func (s *Service) Sync(ctx context.Context, tenantID, id uuid.UUID) (*InvoiceDTO, error) {
	inv, err := s.invoices.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.sync(ctx, inv); err != nil {
		return nil, err
	}
	dto := toInvoiceDTO(inv)
	return &dto, nil
}

func (s *Service) sync(ctx context.Context, inv *fiscal.Invoice) error {
	if err := inv.CanSync(); err != nil {
		return err
	}
	result, err := s.gateway.Query(ctx, inv.Reference)
	if err != nil {
		return err
	}
	if err := inv.ApplyGatewayResult(result); err != nil {
		return err
	}
	if err := s.invoices.Save(ctx, inv); err != nil {
		return err
	}
	s.publish(ctx, uuid.Nil, inv)
	return nil
}

// SyncProcessing refreshes the invoices of a tenant still awaiting the municipality
func (s *Service) SyncProcessing(ctx context.Context, tenantID uuid.UUID) (int, error) {
	pending, err := s.invoices.FindByStatus(ctx, tenantID, fiscal.StatusProcessing, DefaultSyncBatch)
	if err != nil {
		return 0, err
	}
	changed := 0
	for i := range pending {
		inv := &pending[i]
		if err := s.sync(ctx, inv); err != nil {
			s.logger.Warn("Failed to sync NFS-e",
				zap.String("invoice_id", inv.ID.String()),
				zap.Error(err),
			)
			continue
		}
		if inv.Status != fiscal.StatusProcessing {
			changed++
		}
	}
	return changed, nil
}

// Cancel asks the municipality to cancel an authorized invoice
func (s *Service) Cancel(ctx context.Context, tenantID, id, actorID uuid.UUID, reason string) (*InvoiceDTO, error) {
	inv, err := s.invoices.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	reason, err = inv.ValidateCancel(reason)
	if err != nil {
		return nil, err
	}
	result, err := s.gateway.Cancel(ctx, inv.Reference, reason)
	if err != nil {
		return nil, err
	}
	if err := inv.Cancelled(reason, result); err != nil {
		return nil, err
	}
	if err := s.invoices.Save(ctx, inv); err != nil {
		return nil, err
	}
	s.publish(ctx, actorID, inv)
	s.logger.Info("NFS-e cancelled", zap.String("invoice_id", inv.ID.String()))
	dto := toInvoiceDTO(inv)
	return &dto, nil
}

// Delete removes an invoice that never reached the municipality
func (s *Service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	inv, err := s.invoices.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := inv.CanDelete(); err != nil {
		return err
	}
	return s.invoices.DeleteForTenant(ctx, tenantID, id)
}

// FileKey is where a downloaded invoice file is cached
func FileKey(tenantID, invoiceID uuid.UUID, kind FileKind) string {
	return fmt.Sprintf("invoices/%s/%s.%s", tenantID, invoiceID, kind)
}

// Download returns the PDF or XML of an invoice. The first download fetches
// the gateway copy and caches it in object storage
func (s *Service) Download(ctx context.Context, tenantID, id uuid.UUID, kind FileKind) (*InvoiceFile, error) {
	if kind != FilePDF && kind != FileXML {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown file kind %q", kind)
	}
	inv, err := s.invoices.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	gatewayURL, storedKey := inv.PDFURL, inv.PDFStorageKey
	contentType := "application/pdf"
	if kind == FileXML {
		gatewayURL, storedKey = inv.XMLURL, inv.XMLStorageKey
		contentType = "application/xml"
	}
	file := &InvoiceFile{
		FileName:    fmt.Sprintf("nfse-%s.%s", firstNonEmpty(inv.Number, inv.Reference), kind),
		ContentType: contentType,
	}

	if storedKey != "" {
		obj, err := s.storage.Get(ctx, storedKey)
		switch {
		case err == nil:
			return s.serve(ctx, file, storedKey, obj.Data)
		case !errors.Is(err, storage.ErrObjectNotFound):
			return nil, err
		}
		s.logger.Warn("Cached invoice file is gone, fetching again", zap.String("key", storedKey))
	}

	if gatewayURL == "" {
		return nil, ErrFileNotAvailable
	}
	data, fetchedType, err := s.gateway.Download(ctx, gatewayURL)
	if err != nil {
		return nil, err
	}
	if fetchedType != "" {
		file.ContentType = fetchedType
	}
	key := FileKey(tenantID, inv.ID, kind)
	if err := s.storage.Put(ctx, key, data, file.ContentType); err != nil {
		return nil, fmt.Errorf("failed to cache invoice file: %w", err)
	}
	if kind == FilePDF {
		inv.PDFStorageKey = key
	} else {
		inv.XMLStorageKey = key
	}
	if err := s.invoices.Save(ctx, inv); err != nil {
		return nil, err
	}
	return s.serve(ctx, file, key, data)
}

func (s *Service) serve(ctx context.Context, file *InvoiceFile, key string, data []byte) (*InvoiceFile, error) {
	url, err := s.storage.DownloadURL(ctx, key)
	if err != nil {
		s.logger.Warn("Failed to sign invoice URL, streaming instead", zap.Error(err))
	}
	file.URL = url
	if url == "" {
		file.Data = data
	}
	return file, nil
}

func (s *Service) buildRequest(tenant *identity.Tenant, customer *partner.Customer, inv *fiscal.Invoice) integration.NFSeRequest {
	return integration.NFSeRequest{
		IssuedAt:       s.now(),
		SimpleNational: tenant.Fiscal.SimpleNational,
		Provider: integration.NFSeProvider{
			CNPJ:                  tenant.Document,
			MunicipalRegistration: tenant.Fiscal.MunicipalRegistration,
			IBGECode:              tenant.Address.IBGECode,
		},
		Taker: integration.NFSeTaker{
			Document: valueobject.OnlyDigits(customer.Document),
			Name:     customer.Name,
			Email:    customer.Email,
			Phone:    firstNonEmpty(customer.Phone, customer.Mobile),
			Address:  customer.Address,
		},
		Service: integration.NFSeService{
			Description: inv.Description,
			ServiceCode: inv.Code,
			Amount:      inv.Amount,
			ISSRate:     inv.ISSRate,
			ISSWithheld: inv.ISSWithheld,
		},
	}
}

func (s *Service) publish(ctx context.Context, actorID uuid.UUID, agg shared.AggregateRoot) {
	shared.StampActor(agg.GetDomainEvents(), actorID)
	if err := shared.PublishAndClear(ctx, s.events, agg); err != nil {
		s.logger.Warn("Failed to publish domain events", zap.Error(err))
	}
}

// isRejection separates invoice validation errors from outages
func isRejection(err error) bool {
	return integration.HasStatus(err, http.StatusBadRequest) || integration.HasStatus(err, http.StatusUnprocessableEntity)
}

func rejectionMessage(err error) string {
	var apiErr *integration.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
