package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/finance"
	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockCategoryRepository is a mock implementation of finance.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Category, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindByName(ctx context.Context, tenantID uuid.UUID, name string, kind finance.TransactionType) (*finance.Category, error) {
	args := m.Called(ctx, tenantID, name, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, kind finance.TransactionType) ([]finance.Category, error) {
	args := m.Called(ctx, tenantID, kind)
	return args.Get(0).([]finance.Category), args.Error(1)
}

func (m *MockCategoryRepository) ExistsByNameAndType(ctx context.Context, tenantID uuid.UUID, name string, kind finance.TransactionType, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, name, kind, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCategoryRepository) IsInUse(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCategoryRepository) Save(ctx context.Context, category *finance.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) SaveBatch(ctx context.Context, categories []*finance.Category) error {
	args := m.Called(ctx, categories)
	return args.Error(0)
}

func (m *MockCategoryRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockTransactionRepository is a mock implementation of finance.TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Transaction, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]finance.Transaction, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]finance.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) FindOpenByBooking(ctx context.Context, tenantID, bookingID uuid.UUID) ([]finance.Transaction, error) {
	args := m.Called(ctx, tenantID, bookingID)
	return args.Get(0).([]finance.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) MarkOverdue(ctx context.Context, tenantID uuid.UUID, day time.Time) (int64, error) {
	args := m.Called(ctx, tenantID, day)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) Summarize(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*finance.Summary, error) {
	args := m.Called(ctx, tenantID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Summary), args.Error(1)
}

func (m *MockTransactionRepository) Save(ctx context.Context, t *finance.Transaction) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTransactionRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockRecurringRepository is a mock implementation of finance.RecurringRepository
type MockRecurringRepository struct {
	mock.Mock
}

func (m *MockRecurringRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.RecurringTransaction, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.RecurringTransaction), args.Error(1)
}

func (m *MockRecurringRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]finance.RecurringTransaction, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]finance.RecurringTransaction), args.Error(1)
}

func (m *MockRecurringRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRecurringRepository) FindDue(ctx context.Context, tenantID uuid.UUID, now time.Time) ([]finance.RecurringTransaction, error) {
	args := m.Called(ctx, tenantID, now)
	return args.Get(0).([]finance.RecurringTransaction), args.Error(1)
}

func (m *MockRecurringRepository) Save(ctx context.Context, rt *finance.RecurringTransaction) error {
	args := m.Called(ctx, rt)
	return args.Error(0)
}

func (m *MockRecurringRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

type fakeTx struct {
	calls int
}

func (f *fakeTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type capturedEvents struct {
	events []shared.DomainEvent
}

func (c *capturedEvents) Publish(_ context.Context, events ...shared.DomainEvent) error {
	c.events = append(c.events, events...)
	return nil
}

func (c *capturedEvents) types() []string {
	out := make([]string, len(c.events))
	for i, e := range c.events {
		out[i] = e.EventType()
	}
	return out
}
