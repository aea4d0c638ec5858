package finance

import (
	"context"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/booking"
	"github.com/locaflow/backend/internal/domain/finance"
	"github.com/locaflow/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// BookingReceivables keeps one receivable per confirmed booking: it is
// created on confirmation and cancelled with the booking
type BookingReceivables struct {
	transactions finance.TransactionRepository
	categories   finance.CategoryRepository
	events       shared.EventPublisher
	logger       *zap.Logger
}

// NewBookingReceivables creates the booking subscriber
func NewBookingReceivables(transactions finance.TransactionRepository, categories finance.CategoryRepository, events shared.EventPublisher, logger *zap.Logger) *BookingReceivables {
	return &BookingReceivables{transactions: transactions, categories: categories, events: events, logger: logger}
}

// EventTypes lists the booking events that touch receivables
func (h *BookingReceivables) EventTypes() []string {
	return []string{booking.EventTypeBookingConfirmed, booking.EventTypeBookingCancelled}
}

// Name identifies the handler in bus logs and idempotency keys
func (h *BookingReceivables) Name() string { return "booking-receivables" }

// Handle dispatches on the event type
func (h *BookingReceivables) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *booking.BookingConfirmedEvent:
		return h.onConfirmed(ctx, e)
	case *booking.BookingCancelledEvent:
		return h.onCancelled(ctx, e)
	}
	return nil
}

func (h *BookingReceivables) onConfirmed(ctx context.Context, e *booking.BookingConfirmedEvent) error {
	tenantID, bookingID := e.TenantID(), e.AggregateID()
	open, err := h.transactions.FindOpenByBooking(ctx, tenantID, bookingID)
	if err != nil {
		return err
	}
	if len(open) > 0 {
		return nil
	}
	if !e.TotalAmount.IsPositive() {
		h.logger.Debug("Skipping receivable for free booking", zap.String("number", e.Number))
		return nil
	}

	var categoryID *uuid.UUID
	category, err := h.categories.FindByName(ctx, tenantID, finance.RentalCategoryName, finance.TransactionTypeIncome)
	switch {
	case err == nil:
		categoryID = &category.ID
	case !shared.IsNotFound(err):
		return err
	}

	t, err := finance.NewBookingReceivable(tenantID, bookingID, e.CustomerID, e.Number, e.TotalAmount, e.StartDate, categoryID)
	if err != nil {
		return err
	}
	if actor := e.ActorID(); actor != uuid.Nil {
		t.SetCreatedBy(actor)
	}
	if err := h.transactions.Save(ctx, t); err != nil {
		return err
	}
	if err := shared.PublishAndClear(ctx, h.events, t); err != nil {
		h.logger.Warn("Failed to publish domain events", zap.Error(err))
	}
	h.logger.Info("Booking receivable created",
		zap.String("booking_id", bookingID.String()),
		zap.String("transaction_id", t.ID.String()),
		zap.String("amount", t.Amount.StringFixed(2)),
	)
	return nil
}

func (h *BookingReceivables) onCancelled(ctx context.Context, e *booking.BookingCancelledEvent) error {
	open, err := h.transactions.FindOpenByBooking(ctx, e.TenantID(), e.AggregateID())
	if err != nil {
		return err
	}
	for i := range open {
		t := &open[i]
		if err := t.Cancel(); err != nil {
			return err
		}
		if err := h.transactions.Save(ctx, t); err != nil {
			return err
		}
		if err := shared.PublishAndClear(ctx, h.events, t); err != nil {
			h.logger.Warn("Failed to publish domain events", zap.Error(err))
		}
	}
	if len(open) > 0 {
		h.logger.Info("Booking receivables cancelled",
			zap.String("booking_id", e.AggregateID().String()),
			zap.Int("count", len(open)),
		)
	}
	return nil
}

var _ shared.EventHandler = (*BookingReceivables)(nil)
