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

// RecurringService manages recurring series and generates their transactions
type RecurringService struct {
	recurring    finance.RecurringRepository
	transactions finance.TransactionRepository
	categories   finance.CategoryRepository
	tx           shared.TransactionManager
	events       shared.EventPublisher
	logger       *zap.Logger
	now          func() time.Time
}

// NewRecurringService creates a new recurring service
func NewRecurringService(
	recurring finance.RecurringRepository,
	transactions finance.TransactionRepository,
	categories finance.CategoryRepository,
	tx shared.TransactionManager,
	events shared.EventPublisher,
	logger *zap.Logger,
) *RecurringService {
	return &RecurringService{
		recurring:    recurring,
		transactions: transactions,
		categories:   categories,
		tx:           tx,
		events:       events,
		logger:       logger,
		now:          time.Now,
	}
}

// Create opens an active series. The first due date is the start date
func (s *RecurringService) Create(ctx context.Context, tenantID, actorID uuid.UUID, input RecurringInput) (*RecurringDTO, error) {
	tmpl := input.template()
	tmpl.Type = finance.TransactionType(strings.ToUpper(input.Type))
	if err := s.checkCategory(ctx, tenantID, tmpl.CategoryID, tmpl.Type); err != nil {
		return nil, err
	}
	interval := input.Interval
	if interval == 0 {
		interval = 1
	}
	r, err := finance.NewRecurringTransaction(tenantID, tmpl, finance.Schedule{
		Frequency: finance.Frequency(strings.ToUpper(input.Frequency)),
		Interval:  interval,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
	})
	if err != nil {
		return nil, err
	}
	r.SetCreatedBy(actorID)
	if err := s.recurring.Save(ctx, r); err != nil {
		return nil, err
	}
	s.logger.Info("Recurring transaction created",
		zap.String("recurring_id", r.ID.String()),
		zap.String("frequency", string(r.Frequency)),
	)
	dto := toRecurringDTO(r)
	return &dto, nil
}

// GetByID returns one series
func (s *RecurringService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*RecurringDTO, error) {
	r, err := s.recurring.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	dto := toRecurringDTO(r)
	return &dto, nil
}

// List returns a page of series, optionally of one status
func (s *RecurringService) List(ctx context.Context, tenantID uuid.UUID, page, pageSize int, status string) (*shared.Paginated[RecurringDTO], error) {
	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = min(pageSize, 100)
	}
	filter.OrderBy = "next_due_date"
	filter.OrderDir = "asc"
	if status != "" {
		filter = filter.With("status", strings.ToUpper(status))
	}

	series, err := s.recurring.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.recurring.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]RecurringDTO, len(series))
	for i := range series {
		items[i] = toRecurringDTO(&series[i])
	}
	result := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &result, nil
}

// Update edits the template and end date of a series
func (s *RecurringService) Update(ctx context.Context, tenantID, id uuid.UUID, input RecurringInput) (*RecurringDTO, error) {
	return s.change(ctx, tenantID, id, func(r *finance.RecurringTransaction) error {
		if err := s.checkCategory(ctx, tenantID, input.CategoryID, r.Type); err != nil {
			return err
		}
		return r.Update(input.template(), input.EndDate)
	})
}

// Pause stops generation
func (s *RecurringService) Pause(ctx context.Context, tenantID, id uuid.UUID) (*RecurringDTO, error) {
	return s.change(ctx, tenantID, id, func(r *finance.RecurringTransaction) error { return r.Pause() })
}

// Resume restarts generation from the first future due date
func (s *RecurringService) Resume(ctx context.Context, tenantID, id uuid.UUID) (*RecurringDTO, error) {
	return s.change(ctx, tenantID, id, func(r *finance.RecurringTransaction) error { return r.Resume(s.now()) })
}

// Complete ends the series
func (s *RecurringService) Complete(ctx context.Context, tenantID, id uuid.UUID) (*RecurringDTO, error) {
	return s.change(ctx, tenantID, id, func(r *finance.RecurringTransaction) error { return r.Complete() })
}

// Delete removes the series. Generated transactions are kept
func (s *RecurringService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.recurring.FindByIDForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	return s.recurring.DeleteForTenant(ctx, tenantID, id)
}

// GenerateDue creates the pending transactions of every due series of the
// tenant. Each series is written together with its transaction
func (s *RecurringService) GenerateDue(ctx context.Context, tenantID uuid.UUID) (int, error) {
	now := s.now()
	due, err := s.recurring.FindDue(ctx, tenantID, now)
	if err != nil {
		return 0, err
	}

	generated := 0
	for i := range due {
		r := &due[i]
		var t *finance.Transaction
		err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			var err error
			t, err = r.Generate(now)
			if err != nil {
				return err
			}
			if t != nil {
				if err := s.transactions.Save(ctx, t); err != nil {
					return err
				}
			}
			return s.recurring.Save(ctx, r)
		})
		if err != nil {
			s.logger.Error("Failed to generate recurring transaction",
				zap.String("recurring_id", r.ID.String()),
				zap.Error(err),
			)
			continue
		}
		if t != nil {
			generated++
			if err := shared.PublishAndClear(ctx, s.events, t); err != nil {
				s.logger.Warn("Failed to publish domain events", zap.Error(err))
			}
		}
	}
	if generated > 0 {
		s.logger.Info("Recurring transactions generated",
			zap.String("tenant_id", tenantID.String()),
			zap.Int("count", generated),
		)
	}
	return generated, nil
}

func (s *RecurringService) change(ctx context.Context, tenantID, id uuid.UUID, fn func(r *finance.RecurringTransaction) error) (*RecurringDTO, error) {
	r, err := s.recurring.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := fn(r); err != nil {
		return nil, err
	}
	if err := s.recurring.Save(ctx, r); err != nil {
		return nil, err
	}
	dto := toRecurringDTO(r)
	return &dto, nil
}

func (s *RecurringService) checkCategory(ctx context.Context, tenantID uuid.UUID, id *uuid.UUID, kind finance.TransactionType) error {
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
