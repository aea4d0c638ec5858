package finance

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/finance"
	"github.com/locaflow/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// TransactionService manages receivables and payables
type TransactionService struct {
	transactions finance.TransactionRepository
	categories   finance.CategoryRepository
	events       shared.EventPublisher
	logger       *zap.Logger
	now          func() time.Time
}

// NewTransactionService creates a new transaction service
func NewTransactionService(
	transactions finance.TransactionRepository,
	categories finance.CategoryRepository,
	events shared.EventPublisher,
	logger *zap.Logger,
) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		categories:   categories,
		events:       events,
		logger:       logger,
		now:          time.Now,
	}
}

// Create records a pending transaction
func (s *TransactionService) Create(ctx context.Context, tenantID, actorID uuid.UUID, input TransactionInput) (*TransactionDTO, error) {
	kind := finance.TransactionType(strings.ToUpper(input.Type))
	if err := s.checkCategory(ctx, tenantID, input.CategoryID, kind); err != nil {
		return nil, err
	}
	t, err := finance.NewTransaction(tenantID, kind, input.details())
	if err != nil {
		return nil, err
	}
	t.BookingID = input.BookingID
	t.SetCreatedBy(actorID)
	if err := s.transactions.Save(ctx, t); err != nil {
		return nil, err
	}
	s.publish(ctx, actorID, t)
	dto := toTransactionDTO(t)
	return &dto, nil
}

// GetByID returns one transaction
func (s *TransactionService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*TransactionDTO, error) {
	t, err := s.transactions.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	dto := toTransactionDTO(t)
	return &dto, nil
}

// List returns a page of transactions ordered by due date
func (s *TransactionService) List(ctx context.Context, tenantID uuid.UUID, f TransactionListFilter) (*shared.Paginated[TransactionDTO], error) {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = min(f.PageSize, 100)
	}
	filter.OrderBy = "due_date"
	filter.OrderDir = "asc"
	filter.Search = strings.TrimSpace(f.Search)
	filter.From = f.From
	filter.To = f.To
	if f.Type != "" {
		kind := finance.TransactionType(strings.ToUpper(f.Type))
		if !kind.IsValid() {
			return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Invalid transaction type %q", f.Type)
		}
		filter = filter.With("type", string(kind))
	}
	if f.Status != "" {
		status := finance.TransactionStatus(strings.ToUpper(f.Status))
		if !status.IsValid() {
			return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Invalid transaction status %q", f.Status)
		}
		filter = filter.With("status", string(status))
	}
	if f.CategoryID != nil {
		filter = filter.With("category_id", *f.CategoryID)
	}
	if f.CustomerID != nil {
		filter = filter.With("customer_id", *f.CustomerID)
	}
	if f.BookingID != nil {
		filter = filter.With("booking_id", *f.BookingID)
	}

	transactions, err := s.transactions.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.transactions.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]TransactionDTO, len(transactions))
	for i := range transactions {
		items[i] = toTransactionDTO(&transactions[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Update edits an open transaction. The type cannot change
func (s *TransactionService) Update(ctx context.Context, tenantID, id uuid.UUID, input TransactionInput) (*TransactionDTO, error) {
	t, err := s.transactions.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, tenantID, input.CategoryID, t.Type); err != nil {
		return nil, err
	}
	if err := t.Update(input.details()); err != nil {
		return nil, err
	}
	if err := s.transactions.Save(ctx, t); err != nil {
		return nil, err
	}
	dto := toTransactionDTO(t)
	return &dto, nil
}

// Pay marks a transaction as paid. A missing date means now
func (s *TransactionService) Pay(ctx context.Context, tenantID, id, actorID uuid.UUID, input PayInput) (*TransactionDTO, error) {
	t, err := s.transactions.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	paidAt := s.now()
	if input.PaidAt != nil {
		paidAt = *input.PaidAt
	}
	if err := t.MarkPaid(paidAt, finance.PaymentMethod(strings.ToUpper(input.PaymentMethod))); err != nil {
		return nil, err
	}
	if err := s.transactions.Save(ctx, t); err != nil {
		return nil, err
	}
	s.publish(ctx, actorID, t)
	s.logger.Info("Transaction paid",
		zap.String("transaction_id", t.ID.String()),
		zap.String("amount", t.Amount.StringFixed(2)),
	)
	dto := toTransactionDTO(t)
	return &dto, nil
}

// Cancel voids an open transaction
func (s *TransactionService) Cancel(ctx context.Context, tenantID, id, actorID uuid.UUID) (*TransactionDTO, error) {
	t, err := s.transactions.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := t.Cancel(); err != nil {
		return nil, err
	}
	if err := s.transactions.Save(ctx, t); err != nil {
		return nil, err
	}
	s.publish(ctx, actorID, t)
	dto := toTransactionDTO(t)
	return &dto, nil
}

// Delete removes a transaction. Paid transactions stay for the books
func (s *TransactionService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	t, err := s.transactions.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if t.Status == finance.TransactionStatusPaid {
		return shared.NewDomainError(shared.CodeInvalidState, "Paid transactions cannot be deleted")
	}
	return s.transactions.DeleteForTenant(ctx, tenantID, id)
}

// Summary returns the cash view between from and to. Zero bounds default to the current month
func (s *TransactionService) Summary(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*finance.Summary, error) {
	if from.IsZero() || to.IsZero() {
		now := s.now()
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		to = from.AddDate(0, 1, 0).Add(-time.Nanosecond)
	}
	if to.Before(from) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "End date must not be before start date")
	}
	return s.transactions.Summarize(ctx, tenantID, from, to)
}

// MarkOverdue flips pending transactions due before today
func (s *TransactionService) MarkOverdue(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	changed, err := s.transactions.MarkOverdue(ctx, tenantID, finance.StartOfDay(s.now()))
	if err != nil {
		return 0, err
	}
	if changed > 0 {
		s.logger.Info("Transactions marked overdue",
			zap.String("tenant_id", tenantID.String()),
			zap.Int64("count", changed),
		)
	}
	return changed, nil
}

func (s *TransactionService) checkCategory(ctx context.Context, tenantID uuid.UUID, id *uuid.UUID, kind finance.TransactionType) error {
	if id == nil {
		return nil
	}
	category, err := s.categories.FindByIDForTenant(ctx, tenantID, *id)
	if err != nil {
		return err
	}
	if category.Type != kind {
		return shared.NewDomainErrorf("CATEGORY_TYPE_MISMATCH", "Category %q is for %s transactions", category.Name, category.Type)
	}
	return nil
}

func (s *TransactionService) publish(ctx context.Context, actorID uuid.UUID, agg shared.AggregateRoot) {
	shared.StampActor(agg.GetDomainEvents(), actorID)
	if err := shared.PublishAndClear(ctx, s.events, agg); err != nil {
		s.logger.Warn("Failed to publish domain events", zap.Error(err))
	}
}
