package booking

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/billing"
	"github.com/locaflow/backend/internal/domain/booking"
	"github.com/locaflow/backend/internal/domain/inventory"
	"github.com/locaflow/backend/internal/domain/partner"
	"github.com/locaflow/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CustomerFinder loads the customer of a booking
type CustomerFinder interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error)
}

// LimitChecker enforces plan limits before a resource is created
type LimitChecker interface {
	CheckLimit(ctx context.Context, tenantID uuid.UUID, resource billing.LimitedResource, current int64) error
}

// Service runs the booking lifecycle. Every transition that moves stock
// writes the booking, the equipment counters and the ledger in one transaction
type Service struct {
	bookings  booking.Repository
	customers CustomerFinder
	equipment inventory.EquipmentRepository
	movements inventory.StockMovementRepository
	tx        shared.TransactionManager
	limits    LimitChecker
	events    shared.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a new booking service
func NewService(
	bookings booking.Repository,
	customers CustomerFinder,
	equipment inventory.EquipmentRepository,
	movements inventory.StockMovementRepository,
	tx shared.TransactionManager,
	limits LimitChecker,
	events shared.EventPublisher,
	logger *zap.Logger,
) *Service {
	return &Service{
		bookings:  bookings,
		customers: customers,
		equipment: equipment,
		movements: movements,
		tx:        tx,
		limits:    limits,
		events:    events,
		logger:    logger,
		now:       time.Now,
	}
}

// Create opens a pending booking. Prices default to the equipment rental price for the period
func (s *Service) Create(ctx context.Context, input CreateBookingInput) (*BookingDTO, error) {
	customer, err := s.customers.FindByIDForTenant(ctx, input.TenantID, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if err := customer.CanBook(); err != nil {
		return nil, err
	}

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	count, err := s.bookings.CountCreatedSince(ctx, input.TenantID, monthStart)
	if err != nil {
		return nil, err
	}
	if err := s.limits.CheckLimit(ctx, input.TenantID, billing.LimitBookingsPerMonth, count); err != nil {
		return nil, err
	}

	terms := termsOf(input)
	items, err := s.buildItems(ctx, input.TenantID, terms.Days(), input.Items)
	if err != nil {
		return nil, err
	}

	var b *booking.Booking
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		seq, err := s.bookings.NextSequence(ctx, input.TenantID)
		if err != nil {
			return err
		}
		b, err = booking.NewBooking(input.TenantID, booking.FormatNumber(seq), terms, items)
		if err != nil {
			return err
		}
		b.SetCreatedBy(input.ActorID)
		return s.bookings.Save(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, input.ActorID, b)
	s.logger.Info("Booking created",
		zap.String("booking_id", b.ID.String()),
		zap.String("number", b.Number),
		zap.String("total", b.TotalAmount.StringFixed(2)),
	)
	dto := ToBookingDTO(b)
	return &dto, nil
}

// GetByID returns one booking with its items
func (s *Service) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*BookingDTO, error) {
	b, err := s.bookings.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	dto := ToBookingDTO(b)
	return &dto, nil
}

// List returns a page of bookings, newest first
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, f BookingListFilter) (*shared.Paginated[BookingDTO], error) {
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
		status := booking.Status(strings.ToUpper(f.Status))
		if !status.IsValid() {
			return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown booking status %q", f.Status)
		}
		filter = filter.With("status", string(status))
	}
	if f.CustomerID != nil {
		filter = filter.With("customer_id", *f.CustomerID)
	}

	bookings, err := s.bookings.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.bookings.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]BookingDTO, len(bookings))
	for i := range bookings {
		items[i] = ToBookingDTO(&bookings[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Update replaces terms and items of a pending booking
func (s *Service) Update(ctx context.Context, input UpdateBookingInput) (*BookingDTO, error) {
	b, err := s.bookings.FindByIDForTenant(ctx, input.TenantID, input.ID)
	if err != nil {
		return nil, err
	}
	if b.Status != booking.StatusPending {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidState, "Cannot edit booking in %s status", b.Status)
	}
	if b.CustomerID != input.CustomerID {
		customer, err := s.customers.FindByIDForTenant(ctx, input.TenantID, input.CustomerID)
		if err != nil {
			return nil, err
		}
		if err := customer.CanBook(); err != nil {
			return nil, err
		}
	}

	terms := termsOf(input.CreateBookingInput)
	items, err := s.buildItems(ctx, input.TenantID, terms.Days(), input.Items)
	if err != nil {
		return nil, err
	}
	if err := b.Update(terms, items); err != nil {
		return nil, err
	}
	if err := s.bookings.SaveWithLock(ctx, b); err != nil {
		return nil, err
	}
	s.publish(ctx, input.ActorID, b)

	dto := ToBookingDTO(b)
	return &dto, nil
}

// Confirm reserves the stock of every item and confirms the booking
func (s *Service) Confirm(ctx context.Context, tenantID, id, actorID uuid.UUID) (*BookingDTO, error) {
	return s.transition(ctx, tenantID, id, actorID, func(b *booking.Booking) (stockMoves, error) {
		if err := b.Confirm(); err != nil {
			return nil, err
		}
		return movesFor(b, inventory.MovementReservation, func(it booking.Item) int { return it.Quantity }), nil
	})
}

// Start records the pickup
func (s *Service) Start(ctx context.Context, tenantID, id, actorID uuid.UUID) (*BookingDTO, error) {
	return s.transition(ctx, tenantID, id, actorID, func(b *booking.Booking) (stockMoves, error) {
		return nil, b.Start()
	})
}

// Complete returns good units to available and damaged units to damaged
func (s *Service) Complete(ctx context.Context, input CompleteBookingInput) (*BookingDTO, error) {
	return s.transition(ctx, input.TenantID, input.ID, input.ActorID, func(b *booking.Booking) (stockMoves, error) {
		if err := b.Complete(input.Damaged); err != nil {
			return nil, err
		}
		moves := movesFor(b, inventory.MovementReturn, booking.Item.GoodQuantity)
		moves = append(moves, movesFor(b, inventory.MovementReturnDamaged, func(it booking.Item) int { return it.DamagedQuantity })...)
		return moves, nil
	})
}

// Cancel cancels the booking and releases reserved stock
func (s *Service) Cancel(ctx context.Context, tenantID, id, actorID uuid.UUID, reason string) (*BookingDTO, error) {
	return s.transition(ctx, tenantID, id, actorID, func(b *booking.Booking) (stockMoves, error) {
		held, err := b.Cancel(reason)
		if err != nil || !held {
			return nil, err
		}
		return movesFor(b, inventory.MovementRelease, func(it booking.Item) int { return it.Quantity }), nil
	})
}

// Delete removes a pending or cancelled booking
func (s *Service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	b, err := s.bookings.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := b.CanDelete(); err != nil {
		return err
	}
	if err := s.bookings.DeleteForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	s.logger.Info("Booking deleted", zap.String("booking_id", id.String()), zap.String("number", b.Number))
	return nil
}

// stockMove is one ledger entry a transition needs
type stockMove struct {
	equipmentID uuid.UUID
	kind        inventory.MovementType
	quantity    int
}

type stockMoves []stockMove

// movesFor sums qty per equipment in item order and skips zero quantities
func movesFor(b *booking.Booking, kind inventory.MovementType, qty func(booking.Item) int) stockMoves {
	totals := make(map[uuid.UUID]int, len(b.Items))
	for _, it := range b.Items {
		totals[it.EquipmentID] += qty(it)
	}
	moves := make(stockMoves, 0, len(totals))
	for _, id := range b.EquipmentIDs() {
		if n := totals[id]; n > 0 {
			moves = append(moves, stockMove{equipmentID: id, kind: kind, quantity: n})
		}
	}
	return moves
}

// transition loads the booking, applies change and the stock moves it asks
// for, and saves everything in one transaction
func (s *Service) transition(
	ctx context.Context,
	tenantID, id, actorID uuid.UUID,
	change func(b *booking.Booking) (stockMoves, error),
) (*BookingDTO, error) {
	var (
		b       *booking.Booking
		touched []*inventory.Equipment
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		b, err = s.bookings.FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return err
		}
		moves, err := change(b)
		if err != nil {
			return err
		}
		touched, err = s.applyMoves(ctx, b, actorID, moves)
		if err != nil {
			return err
		}
		return s.bookings.SaveWithLock(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, actorID, b)
	for _, e := range touched {
		s.publish(ctx, actorID, e)
	}
	s.logger.Info("Booking status changed",
		zap.String("booking_id", b.ID.String()),
		zap.String("number", b.Number),
		zap.String("status", string(b.Status)),
	)
	dto := ToBookingDTO(b)
	return &dto, nil
}

func (s *Service) applyMoves(ctx context.Context, b *booking.Booking, actorID uuid.UUID, moves stockMoves) ([]*inventory.Equipment, error) {
	if len(moves) == 0 {
		return nil, nil
	}
	loaded := make(map[uuid.UUID]*inventory.Equipment, len(moves))
	order := make([]*inventory.Equipment, 0, len(moves))
	ref := inventory.MovementRef{BookingID: &b.ID, Reason: "Booking " + b.Number}
	if actorID != uuid.Nil {
		ref.UserID = &actorID
	}

	for _, m := range moves {
		e, ok := loaded[m.equipmentID]
		if !ok {
			var err error
			e, err = s.equipment.FindByIDForTenant(ctx, b.TenantID, m.equipmentID)
			if err != nil {
				return nil, err
			}
			loaded[m.equipmentID] = e
			order = append(order, e)
		}
		movement, err := e.Move(m.kind, m.quantity, ref)
		if err != nil {
			return nil, err
		}
		if err := s.movements.Create(ctx, movement); err != nil {
			return nil, err
		}
	}
	for _, e := range order {
		if err := s.equipment.SaveWithLock(ctx, e); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func (s *Service) buildItems(ctx context.Context, tenantID uuid.UUID, days int, inputs []ItemInput) ([]booking.Item, error) {
	if len(inputs) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Booking must have at least one item")
	}
	ids := make([]uuid.UUID, 0, len(inputs))
	for _, in := range inputs {
		ids = append(ids, in.EquipmentID)
	}
	found, err := s.equipment.FindByIDsForTenant(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*inventory.Equipment, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}

	items := make([]booking.Item, 0, len(inputs))
	for _, in := range inputs {
		e, ok := byID[in.EquipmentID]
		if !ok {
			return nil, shared.NewDomainErrorf(shared.CodeNotFound, "Equipment %s not found", in.EquipmentID)
		}
		if e.Status != inventory.EquipmentStatusActive {
			return nil, shared.NewDomainErrorf("EQUIPMENT_INACTIVE", "Equipment %s is inactive", e.Code)
		}
		price := e.RentalPrice(days)
		if in.UnitPrice != nil {
			price = *in.UnitPrice
		}
		item, err := booking.NewItem(e.ID, e.Name, in.Quantity, days, price)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *Service) publish(ctx context.Context, actorID uuid.UUID, agg shared.AggregateRoot) {
	shared.StampActor(agg.GetDomainEvents(), actorID)
	if err := shared.PublishAndClear(ctx, s.events, agg); err != nil {
		s.logger.Warn("Failed to publish domain events", zap.Error(err))
	}
}

func termsOf(input CreateBookingInput) booking.Terms {
	return booking.Terms{
		CustomerID:      input.CustomerID,
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
		Discount:        input.Discount,
		DeliveryFee:     input.DeliveryFee,
		Notes:           input.Notes,
		DeliveryAddress: input.DeliveryAddress,
	}
}
