package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/billing"
	"github.com/locaflow/backend/internal/domain/inventory"
	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockEquipmentRepository is a mock implementation of inventory.EquipmentRepository
type MockEquipmentRepository struct {
	mock.Mock
}

func (m *MockEquipmentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Equipment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Equipment), args.Error(1)
}

func (m *MockEquipmentRepository) FindByIDsForTenant(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]inventory.Equipment, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).([]inventory.Equipment), args.Error(1)
}

func (m *MockEquipmentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.Equipment, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]inventory.Equipment), args.Error(1)
}

func (m *MockEquipmentRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEquipmentRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	args := m.Called(ctx, tenantID, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockEquipmentRepository) FindLowAvailability(ctx context.Context, tenantID uuid.UUID, threshold int) ([]inventory.Equipment, error) {
	args := m.Called(ctx, tenantID, threshold)
	return args.Get(0).([]inventory.Equipment), args.Error(1)
}

func (m *MockEquipmentRepository) SumStock(ctx context.Context, tenantID uuid.UUID) (inventory.StockLevels, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(inventory.StockLevels), args.Error(1)
}

func (m *MockEquipmentRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[inventory.EquipmentStatus]int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(map[inventory.EquipmentStatus]int64), args.Error(1)
}

func (m *MockEquipmentRepository) Save(ctx context.Context, equipment *inventory.Equipment) error {
	args := m.Called(ctx, equipment)
	return args.Error(0)
}

func (m *MockEquipmentRepository) SaveWithLock(ctx context.Context, equipment *inventory.Equipment) error {
	args := m.Called(ctx, equipment)
	return args.Error(0)
}

func (m *MockEquipmentRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockStockMovementRepository is a mock implementation of inventory.StockMovementRepository
type MockStockMovementRepository struct {
	mock.Mock
}

func (m *MockStockMovementRepository) Create(ctx context.Context, movement *inventory.StockMovement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockStockMovementRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID, filter inventory.MovementFilter) ([]inventory.StockMovement, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]inventory.StockMovement), args.Get(1).(int64), args.Error(2)
}

// MockBookingChecker is a mock implementation of OpenBookingChecker
type MockBookingChecker struct {
	mock.Mock
}

func (m *MockBookingChecker) HasOpenForEquipment(ctx context.Context, tenantID, equipmentID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, equipmentID)
	return args.Bool(0), args.Error(1)
}

// MockLimitChecker is a mock implementation of LimitChecker
type MockLimitChecker struct {
	mock.Mock
}

func (m *MockLimitChecker) CheckLimit(ctx context.Context, tenantID uuid.UUID, resource billing.LimitedResource, current int64) error {
	args := m.Called(ctx, tenantID, resource, current)
	return args.Error(0)
}

type fakeTx struct {
	calls      int
	rolledBack bool
}

func (f *fakeTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	err := fn(ctx)
	f.rolledBack = err != nil
	return err
}

type capturedEvents struct {
	events []shared.DomainEvent
}

func (c *capturedEvents) Publish(_ context.Context, events ...shared.DomainEvent) error {
	c.events = append(c.events, events...)
	return nil
}
