package inventory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/inventory"
	"github.com/locaflow/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultLowAvailabilityThreshold flags equipment with this many available units or fewer
const DefaultLowAvailabilityThreshold = 2

// StockService records manual stock movements and reports stock levels
type StockService struct {
	equipment inventory.EquipmentRepository
	movements inventory.StockMovementRepository
	tx        shared.TransactionManager
	events    shared.EventPublisher
	logger    *zap.Logger
	threshold int
}

// NewStockService creates a new stock service
func NewStockService(
	equipment inventory.EquipmentRepository,
	movements inventory.StockMovementRepository,
	tx shared.TransactionManager,
	events shared.EventPublisher,
	logger *zap.Logger,
) *StockService {
	return &StockService{
		equipment: equipment,
		movements: movements,
		tx:        tx,
		events:    events,
		logger:    logger,
		threshold: DefaultLowAvailabilityThreshold,
	}
}

// SetLowAvailabilityThreshold overrides the summary threshold
func (s *StockService) SetLowAvailabilityThreshold(n int) {
	if n >= 0 {
		s.threshold = n
	}
}

// RegisterMovement applies a manual movement. Booking-driven types are rejected
func (s *StockService) RegisterMovement(ctx context.Context, input RegisterMovementInput) (*StockMovementDTO, error) {
	kind := inventory.MovementType(strings.ToUpper(strings.TrimSpace(input.Type)))
	if !kind.IsValid() {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown movement type %q", input.Type)
	}
	if !kind.IsManual() {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Movement type %s is managed by bookings", kind)
	}

	var (
		equipment *inventory.Equipment
		movement  *inventory.StockMovement
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		equipment, err = s.equipment.FindByIDForTenant(ctx, input.TenantID, input.EquipmentID)
		if err != nil {
			return err
		}
		ref := inventory.MovementRef{Reason: strings.TrimSpace(input.Reason), UserID: actorPtr(input.ActorID)}
		if kind == inventory.MovementAdjustment {
			movement, err = equipment.AdjustTo(input.Quantity, ref)
		} else {
			movement, err = equipment.Move(kind, input.Quantity, ref)
		}
		if err != nil {
			return err
		}
		if err := s.equipment.SaveWithLock(ctx, equipment); err != nil {
			return err
		}
		return s.movements.Create(ctx, movement)
	})
	if err != nil {
		return nil, err
	}

	shared.StampActor(equipment.GetDomainEvents(), input.ActorID)
	if err := shared.PublishAndClear(ctx, s.events, equipment); err != nil {
		s.logger.Warn("Failed to publish domain events", zap.Error(err))
	}
	s.logger.Info("Stock movement registered",
		zap.String("equipment_id", equipment.ID.String()),
		zap.String("type", string(movement.Type)),
		zap.Int("quantity", movement.Quantity),
		zap.Int("available", equipment.Stock.Available),
	)
	dto := toMovementDTO(movement)
	return &dto, nil
}

// ListMovements returns a page of the ledger, newest first
func (s *StockService) ListMovements(ctx context.Context, tenantID uuid.UUID, f MovementListFilter) (*shared.Paginated[StockMovementDTO], error) {
	filter := inventory.MovementFilter{
		EquipmentID: f.EquipmentID,
		BookingID:   f.BookingID,
		From:        f.From,
		To:          f.To,
		Page:        max(f.Page, 1),
		PageSize:    20,
	}
	if f.PageSize > 0 {
		filter.PageSize = min(f.PageSize, 100)
	}
	if f.Type != "" {
		filter.Type = inventory.MovementType(strings.ToUpper(f.Type))
		if !filter.Type.IsValid() {
			return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown movement type %q", f.Type)
		}
	}

	movements, total, err := s.movements.FindForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]StockMovementDTO, len(movements))
	for i := range movements {
		items[i] = toMovementDTO(&movements[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Summary totals the stock of the tenant and lists equipment running low
func (s *StockService) Summary(ctx context.Context, tenantID uuid.UUID) (*StockSummary, error) {
	levels, err := s.equipment.SumStock(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.equipment.CountByStatus(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	low, err := s.equipment.FindLowAvailability(ctx, tenantID, s.threshold)
	if err != nil {
		return nil, err
	}

	summary := &StockSummary{
		Levels:          levels,
		ByStatus:        make(map[string]int64, len(byStatus)),
		LowAvailability: make([]LowAvailabilityItem, len(low)),
	}
	for status, n := range byStatus {
		summary.ByStatus[string(status)] = n
	}
	for i, e := range low {
		summary.LowAvailability[i] = LowAvailabilityItem{
			ID:        e.ID,
			Code:      e.Code,
			Name:      e.Name,
			Available: e.Stock.Available,
			Total:     e.Stock.Total,
		}
	}
	return summary, nil
}
