package finance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/finance"
	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recurringFixture struct {
	service      *RecurringService
	recurring    *MockRecurringRepository
	transactions *MockTransactionRepository
	categories   *MockCategoryRepository
	tx           *fakeTx
	events       *capturedEvents
	now          time.Time
}

func newRecurringFixture(now time.Time) *recurringFixture {
	f := &recurringFixture{
		recurring:    new(MockRecurringRepository),
		transactions: new(MockTransactionRepository),
		categories:   new(MockCategoryRepository),
		tx:           &fakeTx{},
		events:       &capturedEvents{},
		now:          now,
	}
	f.service = NewRecurringService(f.recurring, f.transactions, f.categories, f.tx, f.events, zap.NewNop())
	f.service.now = func() time.Time { return f.now }
	return f
}

func monthlyRent(t *testing.T, tenantID uuid.UUID, start time.Time, end *time.Time) *finance.RecurringTransaction {
	t.Helper()
	r, err := finance.NewRecurringTransaction(tenantID, finance.RecurringTemplate{
		Type:        finance.TransactionTypeExpense,
		Description: "Aluguel do galpão",
		Amount:      decimal.NewFromInt(3500),
	}, finance.Schedule{Frequency: finance.FrequencyMonthly, Interval: 1, StartDate: start, EndDate: end})
	require.NoError(t, err)
	return r
}

func TestRecurringService_Create(t *testing.T) {
	f := newRecurringFixture(fixedNow)
	tenantID := uuid.New()
	f.recurring.On("Save", mock.Anything, mock.AnythingOfType("*finance.RecurringTransaction")).Return(nil)

	start := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	dto, err := f.service.Create(context.Background(), tenantID, uuid.New(), RecurringInput{
		Type: "expense", Description: "Internet", Amount: decimal.NewFromInt(120), Frequency: "monthly", StartDate: start,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, dto.Interval)
	assert.Equal(t, start, dto.NextDueDate)
	assert.Equal(t, "ACTIVE", dto.Status)

	_, err = f.service.Create(context.Background(), tenantID, uuid.New(), RecurringInput{
		Type: "EXPENSE", Description: "Internet", Amount: decimal.NewFromInt(120), Frequency: "HOURLY", StartDate: start,
	})
	assert.Equal(t, "INVALID_FREQUENCY", shared.ErrorCode(err))
}

func TestRecurringService_GenerateDue(t *testing.T) {
	tenantID := uuid.New()
	now := time.Date(2026, 2, 1, 6, 0, 0, 0, time.UTC)

	t.Run("creates one transaction per due series and clamps month ends", func(t *testing.T) {
		f := newRecurringFixture(now)
		series := monthlyRent(t, tenantID, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), nil)
		f.recurring.On("FindDue", mock.Anything, tenantID, now).Return([]finance.RecurringTransaction{*series}, nil)

		var saved *finance.Transaction
		f.transactions.On("Save", mock.Anything, mock.AnythingOfType("*finance.Transaction")).
			Run(func(args mock.Arguments) { saved = args.Get(1).(*finance.Transaction) }).Return(nil)
		var updated *finance.RecurringTransaction
		f.recurring.On("Save", mock.Anything, mock.AnythingOfType("*finance.RecurringTransaction")).
			Run(func(args mock.Arguments) { updated = args.Get(1).(*finance.RecurringTransaction) }).Return(nil)

		n, err := f.service.GenerateDue(context.Background(), tenantID)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		require.NotNil(t, saved)
		assert.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), saved.DueDate)
		assert.Equal(t, finance.TransactionStatusPending, saved.Status)
		require.NotNil(t, saved.RecurringTransactionID)
		assert.Equal(t, series.ID, *saved.RecurringTransactionID)
		assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), updated.NextDueDate)
		assert.Equal(t, 1, updated.Occurrences)
		assert.Equal(t, 1, f.tx.calls)
		assert.Equal(t, []string{finance.EventTypeTransactionCreated}, f.events.types())
	})

	t.Run("completes a series past its end date", func(t *testing.T) {
		f := newRecurringFixture(now)
		end := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
		series := monthlyRent(t, tenantID, time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC), &end)
		f.recurring.On("FindDue", mock.Anything, tenantID, now).Return([]finance.RecurringTransaction{*series}, nil)
		f.transactions.On("Save", mock.Anything, mock.Anything).Return(nil)
		var updated *finance.RecurringTransaction
		f.recurring.On("Save", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { updated = args.Get(1).(*finance.RecurringTransaction) }).Return(nil)

		n, err := f.service.GenerateDue(context.Background(), tenantID)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, finance.RecurringStatusCompleted, updated.Status)
	})

	t.Run("a failing series does not stop the others", func(t *testing.T) {
		f := newRecurringFixture(now)
		first := monthlyRent(t, tenantID, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), nil)
		second := monthlyRent(t, tenantID, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), nil)
		f.recurring.On("FindDue", mock.Anything, tenantID, now).Return([]finance.RecurringTransaction{*first, *second}, nil)
		f.transactions.On("Save", mock.Anything, mock.MatchedBy(func(tx *finance.Transaction) bool {
			return *tx.RecurringTransactionID == first.ID
		})).Return(errors.New("connection reset"))
		f.transactions.On("Save", mock.Anything, mock.MatchedBy(func(tx *finance.Transaction) bool {
			return *tx.RecurringTransactionID == second.ID
		})).Return(nil)
		f.recurring.On("Save", mock.Anything, mock.Anything).Return(nil)

		n, err := f.service.GenerateDue(context.Background(), tenantID)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		f.recurring.AssertNumberOfCalls(t, "Save", 1)
	})
}

func TestRecurringService_StatusChanges(t *testing.T) {
	tenantID := uuid.New()
	f := newRecurringFixture(time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC))
	series := monthlyRent(t, tenantID, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), nil)
	f.recurring.On("FindByIDForTenant", mock.Anything, tenantID, series.ID).Return(series, nil)
	f.recurring.On("Save", mock.Anything, series).Return(nil)

	dto, err := f.service.Pause(context.Background(), tenantID, series.ID)
	require.NoError(t, err)
	assert.Equal(t, "PAUSED", dto.Status)

	_, err = f.service.Pause(context.Background(), tenantID, series.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	dto, err = f.service.Resume(context.Background(), tenantID, series.ID)
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", dto.Status)
	assert.Equal(t, time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC), dto.NextDueDate)

	dto, err = f.service.Complete(context.Background(), tenantID, series.ID)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", dto.Status)

	_, err = f.service.Update(context.Background(), tenantID, series.ID, RecurringInput{Description: "x", Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}
