package printing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/booking"
	"github.com/locaflow/backend/internal/domain/identity"
	"github.com/locaflow/backend/internal/domain/inventory"
	"github.com/locaflow/backend/internal/domain/partner"
	"github.com/locaflow/backend/internal/domain/shared/valueobject"
	infra "github.com/locaflow/backend/internal/infrastructure/printing"
	"github.com/locaflow/backend/internal/infrastructure/storage"
	"go.uber.org/zap"
)

const contentTypePDF = "application/pdf"

// BookingFinder loads the booking being printed
type BookingFinder interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*booking.Booking, error)
}

// CustomerFinder loads the lessee
type CustomerFinder interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error)
}

// TenantFinder loads the lessor
type TenantFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*identity.Tenant, error)
}

// EquipmentFinder loads codes and replacement values of the booked items
type EquipmentFinder interface {
	FindByIDsForTenant(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]inventory.Equipment, error)
}

// ContractRenderer turns a contract into HTML
type ContractRenderer interface {
	RenderContract(c *infra.Contract) (string, error)
}

// ContractService generates rental contract PDFs
type ContractService struct {
	bookings  BookingFinder
	customers CustomerFinder
	tenants   TenantFinder
	equipment EquipmentFinder
	templates ContractRenderer
	renderer  infra.PDFRenderer
	storage   storage.ObjectStorage
	timeout   time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewContractService creates a new contract service
func NewContractService(
	bookings BookingFinder,
	customers CustomerFinder,
	tenants TenantFinder,
	equipment EquipmentFinder,
	templates ContractRenderer,
	renderer infra.PDFRenderer,
	store storage.ObjectStorage,
	timeout time.Duration,
	logger *zap.Logger,
) *ContractService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContractService{
		bookings:  bookings,
		customers: customers,
		tenants:   tenants,
		equipment: equipment,
		templates: templates,
		renderer:  renderer,
		storage:   store,
		timeout:   timeout,
		logger:    logger,
		now:       time.Now,
	}
}

// ContractKey is where the contract of a booking is stored
func ContractKey(tenantID, bookingID uuid.UUID) string {
	return fmt.Sprintf("contracts/%s/%s.pdf", tenantID, bookingID)
}

// Generate renders the contract of a booking with its current data and stores it
func (s *ContractService) Generate(ctx context.Context, tenantID, bookingID uuid.UUID) (*ContractDocument, error) {
	b, err := s.bookings.FindByIDForTenant(ctx, tenantID, bookingID)
	if err != nil {
		return nil, err
	}
	contract, err := s.buildContract(ctx, b)
	if err != nil {
		return nil, err
	}

	html, err := s.templates.RenderContract(contract)
	if err != nil {
		return nil, err
	}
	result, err := s.renderer.Render(ctx, &infra.RenderRequest{
		HTML:       html,
		PaperSize:  infra.PaperSizeA4,
		Margins:    infra.DefaultMargins(),
		Title:      "Contrato " + b.Number,
		FooterHTML: infra.ContractFooter,
		Timeout:    s.timeout,
	})
	if err != nil {
		s.logger.Error("Failed to render contract",
			zap.String("booking_id", b.ID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	doc := &ContractDocument{
		FileName:    "contrato-" + b.Number + ".pdf",
		ContentType: contentTypePDF,
		PageCount:   result.PageCount,
	}
	key := ContractKey(tenantID, b.ID)
	if err := s.storage.Put(ctx, key, result.PDFData, contentTypePDF); err != nil {
		return nil, fmt.Errorf("failed to store contract: %w", err)
	}
	url, err := s.storage.DownloadURL(ctx, key)
	if err != nil {
		s.logger.Warn("Failed to sign contract URL, streaming instead", zap.Error(err))
	}
	doc.URL = url
	if doc.Stream() {
		doc.Data = result.PDFData
	}

	s.logger.Info("Contract generated",
		zap.String("booking_id", b.ID.String()),
		zap.String("number", b.Number),
		zap.Int("pages", result.PageCount),
		zap.Duration("render_duration", result.RenderDuration),
	)
	return doc, nil
}

func (s *ContractService) buildContract(ctx context.Context, b *booking.Booking) (*infra.Contract, error) {
	tenant, err := s.tenants.FindByID(ctx, b.TenantID)
	if err != nil {
		return nil, err
	}
	customer, err := s.customers.FindByIDForTenant(ctx, b.TenantID, b.CustomerID)
	if err != nil {
		return nil, err
	}
	found, err := s.equipment.FindByIDsForTenant(ctx, b.TenantID, b.EquipmentIDs())
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*inventory.Equipment, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}

	items := make([]infra.ContractItem, len(b.Items))
	for i, it := range b.Items {
		item := infra.ContractItem{
			Name:      it.EquipmentName,
			Quantity:  it.Quantity,
			Days:      it.Days,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal,
		}
		// equipment deleted after the booking keeps the name stored on the item
		if e, ok := byID[it.EquipmentID]; ok {
			item.Code = e.Code
			item.ReplacementValue = e.Pricing.Replacement
		}
		items[i] = item
	}

	return &infra.Contract{
		Number: b.Number,
		Status: string(b.Status),
		Lessor: infra.ContractParty{
			Name:     tenant.Name,
			Document: formatDocument(tenant.Document),
			Email:    tenant.Email,
			Phone:    tenant.Phone,
			Address:  tenant.Address.String(),
		},
		Lessee: infra.ContractParty{
			Name:      customer.Name,
			TradeName: customer.TradeName,
			Document:  customer.FormattedDocument(),
			Email:     customer.Email,
			Phone:     firstNonEmpty(customer.Mobile, customer.Phone),
			Address:   customer.Address.String(),
		},
		StartDate:       b.StartDate,
		EndDate:         b.EndDate,
		Days:            b.Days(),
		Items:           items,
		Subtotal:        b.Subtotal,
		Discount:        b.Discount,
		DeliveryFee:     b.DeliveryFee,
		Total:           b.TotalAmount,
		DeliveryAddress: b.DeliveryAddress,
		Notes:           b.Notes,
		City:            tenant.Address.City,
		GeneratedAt:     s.now(),
	}, nil
}

func formatDocument(digits string) string {
	doc, err := valueobject.ParseDocument(digits)
	if err != nil {
		return digits
	}
	return doc.Formatted()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
