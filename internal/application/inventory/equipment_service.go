package inventory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/billing"
	"github.com/locaflow/backend/internal/domain/inventory"
	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LimitChecker enforces plan limits before a resource is created
type LimitChecker interface {
	CheckLimit(ctx context.Context, tenantID uuid.UUID, resource billing.LimitedResource, current int64) error
}

// OpenBookingChecker reports whether pending or running bookings reference equipment
type OpenBookingChecker interface {
	HasOpenForEquipment(ctx context.Context, tenantID, equipmentID uuid.UUID) (bool, error)
}

// EquipmentService manages the equipment catalog of a tenant
type EquipmentService struct {
	equipment inventory.EquipmentRepository
	movements inventory.StockMovementRepository
	bookings  OpenBookingChecker
	tx        shared.TransactionManager
	limits    LimitChecker
	events    shared.EventPublisher
	logger    *zap.Logger
}

// NewEquipmentService creates a new equipment service
func NewEquipmentService(
	equipment inventory.EquipmentRepository,
	movements inventory.StockMovementRepository,
	bookings OpenBookingChecker,
	tx shared.TransactionManager,
	limits LimitChecker,
	events shared.EventPublisher,
	logger *zap.Logger,
) *EquipmentService {
	return &EquipmentService{
		equipment: equipment,
		movements: movements,
		bookings:  bookings,
		tx:        tx,
		limits:    limits,
		events:    events,
		logger:    logger,
	}
}

// Create adds an equipment model. A positive initial quantity is booked as a PURCHASE
func (s *EquipmentService) Create(ctx context.Context, input CreateEquipmentInput) (*EquipmentDTO, error) {
	if input.InitialQuantity < 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Initial quantity cannot be negative")
	}
	count, err := s.equipment.CountForTenant(ctx, input.TenantID, shared.DefaultFilter())
	if err != nil {
		return nil, err
	}
	if err := s.limits.CheckLimit(ctx, input.TenantID, billing.LimitEquipment, count); err != nil {
		return nil, err
	}

	code := strings.ToUpper(strings.TrimSpace(input.Code))
	exists, err := s.equipment.ExistsByCode(ctx, input.TenantID, code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainErrorf(shared.CodeAlreadyExists, "Equipment code %s already exists", code)
	}

	details := inventory.EquipmentDetails{
		Name:         input.Name,
		Description:  input.Description,
		Category:     input.Category,
		Brand:        input.Brand,
		Model:        input.Model,
		SerialNumber: input.SerialNumber,
	}
	pricing := pricingOf(input.DailyPrice, input.WeeklyPrice, input.MonthlyPrice, input.ReplacementValue)
	equipment, err := inventory.NewEquipment(input.TenantID, code, details, pricing)
	if err != nil {
		return nil, err
	}
	equipment.SetCreatedBy(input.ActorID)

	var movement *inventory.StockMovement
	if input.InitialQuantity > 0 {
		movement, err = equipment.Move(inventory.MovementPurchase, input.InitialQuantity, inventory.MovementRef{
			Reason: "Initial stock",
			UserID: actorPtr(input.ActorID),
		})
		if err != nil {
			return nil, err
		}
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.equipment.Save(ctx, equipment); err != nil {
			return err
		}
		if movement != nil {
			return s.movements.Create(ctx, movement)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	shared.StampActor(equipment.GetDomainEvents(), input.ActorID)
	s.publish(ctx, equipment)
	s.logger.Info("Equipment created",
		zap.String("equipment_id", equipment.ID.String()),
		zap.String("code", equipment.Code),
		zap.Int("quantity", equipment.Stock.Total),
	)
	dto := toEquipmentDTO(equipment)
	return &dto, nil
}

// GetByID returns one equipment model
func (s *EquipmentService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*EquipmentDTO, error) {
	equipment, err := s.equipment.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	dto := toEquipmentDTO(equipment)
	return &dto, nil
}

// List returns a page of equipment ordered by name
func (s *EquipmentService) List(ctx context.Context, tenantID uuid.UUID, f EquipmentListFilter) (*shared.Paginated[EquipmentDTO], error) {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = min(f.PageSize, 100)
	}
	filter.OrderBy = "name"
	filter.OrderDir = "asc"
	filter.Search = strings.TrimSpace(f.Search)
	if v := strings.TrimSpace(f.Category); v != "" {
		filter = filter.With("category", v)
	}
	if f.Status != "" {
		status := inventory.EquipmentStatus(strings.ToUpper(f.Status))
		if status != inventory.EquipmentStatusActive && status != inventory.EquipmentStatusInactive {
			return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown equipment status %q", f.Status)
		}
		filter = filter.With("status", string(status))
	}
	if f.AvailableOnly {
		filter = filter.With("available", true)
	}

	items, err := s.equipment.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.equipment.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	dtos := make([]EquipmentDTO, len(items))
	for i := range items {
		dtos[i] = toEquipmentDTO(&items[i])
	}
	page := shared.NewPaginated(dtos, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Update replaces descriptive fields and prices and optionally toggles the status
func (s *EquipmentService) Update(ctx context.Context, input UpdateEquipmentInput) (*EquipmentDTO, error) {
	equipment, err := s.equipment.FindByIDForTenant(ctx, input.TenantID, input.ID)
	if err != nil {
		return nil, err
	}
	details := inventory.EquipmentDetails{
		Name:         input.Name,
		Description:  input.Description,
		Category:     input.Category,
		Brand:        input.Brand,
		Model:        input.Model,
		SerialNumber: input.SerialNumber,
	}
	pricing := pricingOf(input.DailyPrice, input.WeeklyPrice, input.MonthlyPrice, input.ReplacementValue)
	if err := equipment.Update(details, pricing); err != nil {
		return nil, err
	}
	if input.Active != nil {
		if *input.Active {
			equipment.Activate()
		} else if err := equipment.Deactivate(); err != nil {
			return nil, err
		}
	}
	if err := s.equipment.SaveWithLock(ctx, equipment); err != nil {
		return nil, err
	}
	shared.StampActor(equipment.GetDomainEvents(), input.ActorID)
	s.publish(ctx, equipment)

	dto := toEquipmentDTO(equipment)
	return &dto, nil
}

// Delete removes an equipment model that has no reserved units and no open bookings
func (s *EquipmentService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	equipment, err := s.equipment.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := equipment.CanDelete(); err != nil {
		return err
	}
	open, err := s.bookings.HasOpenForEquipment(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if open {
		return shared.NewDomainError("EQUIPMENT_IN_USE", "Equipment is part of open bookings and cannot be deleted")
	}
	if err := s.equipment.DeleteForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	s.logger.Info("Equipment deleted",
		zap.String("equipment_id", id.String()),
		zap.String("code", equipment.Code),
	)
	return nil
}

// Price quotes the rental price of one unit for days days
func (s *EquipmentService) Price(ctx context.Context, tenantID, id uuid.UUID, days int) (*PriceQuote, error) {
	if days < 1 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Days must be at least 1")
	}
	equipment, err := s.equipment.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return &PriceQuote{
		EquipmentID: equipment.ID,
		Days:        days,
		UnitPrice:   equipment.RentalPrice(days),
		DailyTotal:  equipment.Pricing.Daily.Mul(decimal.NewFromInt(int64(days))),
	}, nil
}

func (s *EquipmentService) publish(ctx context.Context, agg shared.AggregateRoot) {
	if err := shared.PublishAndClear(ctx, s.events, agg); err != nil {
		s.logger.Warn("Failed to publish domain events", zap.Error(err))
	}
}

func pricingOf(daily, weekly, monthly, replacement decimal.Decimal) inventory.Pricing {
	return inventory.Pricing{Daily: daily, Weekly: weekly, Monthly: monthly, Replacement: replacement}
}

func actorPtr(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
