package fiscal

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/booking"
	"github.com/locaflow/backend/internal/domain/fiscal"
	"github.com/locaflow/backend/internal/domain/identity"
	"github.com/locaflow/backend/internal/domain/partner"
	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/locaflow/backend/internal/infrastructure/integration"
	"github.com/stretchr/testify/mock"
)

// MockInvoiceRepository is a mock implementation of fiscal.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*fiscal.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fiscal.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByReference(ctx context.Context, reference string) (*fiscal.Invoice, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fiscal.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]fiscal.Invoice, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]fiscal.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status fiscal.Status, limit int) ([]fiscal.Invoice, error) {
	args := m.Called(ctx, tenantID, status, limit)
	return args.Get(0).([]fiscal.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *fiscal.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

type MockBookingFinder struct {
	mock.Mock
}

func (m *MockBookingFinder) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*booking.Booking, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

type MockCustomerFinder struct {
	mock.Mock
}

func (m *MockCustomerFinder) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

type MockTenantFinder struct {
	mock.Mock
}

func (m *MockTenantFinder) FindByID(ctx context.Context, id uuid.UUID) (*identity.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Tenant), args.Error(1)
}

type MockFeatureChecker struct {
	mock.Mock
}

func (m *MockFeatureChecker) RequireFeature(ctx context.Context, tenantID uuid.UUID, feature string) error {
	args := m.Called(ctx, tenantID, feature)
	return args.Error(0)
}

// MockGateway is a mock implementation of Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Issue(ctx context.Context, ref string, req integration.NFSeRequest) (fiscal.GatewayResult, error) {
	args := m.Called(ctx, ref, req)
	return args.Get(0).(fiscal.GatewayResult), args.Error(1)
}

func (m *MockGateway) Query(ctx context.Context, ref string) (fiscal.GatewayResult, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(fiscal.GatewayResult), args.Error(1)
}

func (m *MockGateway) Cancel(ctx context.Context, ref, justification string) (fiscal.GatewayResult, error) {
	args := m.Called(ctx, ref, justification)
	return args.Get(0).(fiscal.GatewayResult), args.Error(1)
}

func (m *MockGateway) Download(ctx context.Context, fileURL string) ([]byte, string, error) {
	args := m.Called(ctx, fileURL)
	var data []byte
	if b, ok := args.Get(0).([]byte); ok {
		data = b
	}
	return data, args.String(1), args.Error(2)
}

type capturedEvents struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (c *capturedEvents) Publish(_ context.Context, events ...shared.DomainEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, events...)
	return nil
}

func (c *capturedEvents) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.events))
	for i, e := range c.events {
		out[i] = e.EventType()
	}
	return out
}
