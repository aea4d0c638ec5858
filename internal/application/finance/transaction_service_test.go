package finance

import (
	"context"
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

var fixedNow = time.Date(2026, 6, 15, 14, 30, 0, 0, time.UTC)

type transactionFixture struct {
	service      *TransactionService
	transactions *MockTransactionRepository
	categories   *MockCategoryRepository
	events       *capturedEvents
}

func newTransactionFixture() *transactionFixture {
	f := &transactionFixture{
		transactions: new(MockTransactionRepository),
		categories:   new(MockCategoryRepository),
		events:       &capturedEvents{},
	}
	f.service = NewTransactionService(f.transactions, f.categories, f.events, zap.NewNop())
	f.service.now = func() time.Time { return fixedNow }
	return f
}

func pendingTransaction(t *testing.T, tenantID uuid.UUID) *finance.Transaction {
	t.Helper()
	tx, err := finance.NewTransaction(tenantID, finance.TransactionTypeExpense, finance.TransactionDetails{
		Description: "Troca de óleo",
		Amount:      decimal.NewFromInt(250),
		DueDate:     fixedNow.AddDate(0, 0, 5),
	})
	require.NoError(t, err)
	tx.ClearDomainEvents()
	return tx
}

func TestTransactionService_Create(t *testing.T) {
	tenantID, actorID := uuid.New(), uuid.New()

	t.Run("success", func(t *testing.T) {
		f := newTransactionFixture()
		category, _ := finance.NewCategory(tenantID, "Manutenção", finance.TransactionTypeExpense, "")
		f.categories.On("FindByIDForTenant", mock.Anything, tenantID, category.ID).Return(category, nil)
		f.transactions.On("Save", mock.Anything, mock.AnythingOfType("*finance.Transaction")).Return(nil)

		dto, err := f.service.Create(context.Background(), tenantID, actorID, TransactionInput{
			Type:        "expense",
			Description: "Revisão betoneira",
			Amount:      decimal.RequireFromString("189.999"),
			DueDate:     fixedNow,
			CategoryID:  &category.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, "PENDING", dto.Status)
		assert.Equal(t, "EXPENSE", dto.Type)
		assert.Equal(t, "190.00", dto.Amount.StringFixed(2))
		require.Len(t, f.events.events, 1)
		assert.Equal(t, actorID, f.events.events[0].(shared.ActorAware).ActorID())
	})

	t.Run("category of the other type", func(t *testing.T) {
		f := newTransactionFixture()
		category, _ := finance.NewCategory(tenantID, "Frete", finance.TransactionTypeIncome, "")
		f.categories.On("FindByIDForTenant", mock.Anything, tenantID, category.ID).Return(category, nil)

		_, err := f.service.Create(context.Background(), tenantID, actorID, TransactionInput{
			Type: "EXPENSE", Description: "Diesel", Amount: decimal.NewFromInt(10), DueDate: fixedNow, CategoryID: &category.ID,
		})
		assert.Equal(t, "CATEGORY_TYPE_MISMATCH", shared.ErrorCode(err))
	})

	t.Run("non-positive amount", func(t *testing.T) {
		f := newTransactionFixture()
		_, err := f.service.Create(context.Background(), tenantID, actorID, TransactionInput{
			Type: "INCOME", Description: "Multa", Amount: decimal.Zero, DueDate: fixedNow,
		})
		assert.Equal(t, "INVALID_AMOUNT", shared.ErrorCode(err))
	})
}

func TestTransactionService_PayAndCancel(t *testing.T) {
	tenantID := uuid.New()

	t.Run("pay defaults to now", func(t *testing.T) {
		f := newTransactionFixture()
		tx := pendingTransaction(t, tenantID)
		f.transactions.On("FindByIDForTenant", mock.Anything, tenantID, tx.ID).Return(tx, nil)
		f.transactions.On("Save", mock.Anything, tx).Return(nil)

		dto, err := f.service.Pay(context.Background(), tenantID, tx.ID, uuid.New(), PayInput{PaymentMethod: "pix"})
		require.NoError(t, err)
		assert.Equal(t, "PAID", dto.Status)
		assert.Equal(t, "PIX", dto.PaymentMethod)
		require.NotNil(t, dto.PaidAt)
		assert.Equal(t, fixedNow, *dto.PaidAt)
		assert.Equal(t, []string{finance.EventTypeTransactionPaid}, f.events.types())
	})

	t.Run("paid cannot be cancelled or deleted", func(t *testing.T) {
		f := newTransactionFixture()
		tx := pendingTransaction(t, tenantID)
		require.NoError(t, tx.MarkPaid(fixedNow, finance.PaymentMethodCash))
		f.transactions.On("FindByIDForTenant", mock.Anything, tenantID, tx.ID).Return(tx, nil)

		_, err := f.service.Cancel(context.Background(), tenantID, tx.ID, uuid.New())
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		err = f.service.Delete(context.Background(), tenantID, tx.ID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		f.transactions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		f.transactions.AssertNotCalled(t, "DeleteForTenant", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("update of a cancelled transaction", func(t *testing.T) {
		f := newTransactionFixture()
		tx := pendingTransaction(t, tenantID)
		require.NoError(t, tx.Cancel())
		f.transactions.On("FindByIDForTenant", mock.Anything, tenantID, tx.ID).Return(tx, nil)

		_, err := f.service.Update(context.Background(), tenantID, tx.ID, TransactionInput{
			Description: "Outro", Amount: decimal.NewFromInt(1), DueDate: fixedNow,
		})
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}

func TestTransactionService_Summary(t *testing.T) {
	f := newTransactionFixture()
	tenantID := uuid.New()
	from := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond)
	summary := &finance.Summary{PaidIncome: decimal.NewFromInt(1000), PaidExpense: decimal.NewFromInt(400), Balance: decimal.NewFromInt(600)}
	f.transactions.On("Summarize", mock.Anything, tenantID, from, to).Return(summary, nil)

	got, err := f.service.Summary(context.Background(), tenantID, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Same(t, summary, got)

	_, err = f.service.Summary(context.Background(), tenantID, to, from)
	assert.Equal(t, "INVALID_PERIOD", shared.ErrorCode(err))
}

func TestTransactionService_MarkOverdue(t *testing.T) {
	f := newTransactionFixture()
	tenantID := uuid.New()
	f.transactions.On("MarkOverdue", mock.Anything, tenantID, time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)).Return(int64(3), nil)

	n, err := f.service.MarkOverdue(context.Background(), tenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestTransactionService_List(t *testing.T) {
	f := newTransactionFixture()
	tenantID := uuid.New()
	match := mock.MatchedBy(func(filter shared.Filter) bool {
		return filter.Filters["type"] == "INCOME" && filter.Filters["status"] == "OVERDUE" && filter.OrderBy == "due_date"
	})
	f.transactions.On("FindAllForTenant", mock.Anything, tenantID, match).Return([]finance.Transaction{}, nil)
	f.transactions.On("CountForTenant", mock.Anything, tenantID, match).Return(int64(0), nil)

	page, err := f.service.List(context.Background(), tenantID, TransactionListFilter{Type: "income", Status: "overdue"})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	_, err = f.service.List(context.Background(), tenantID, TransactionListFilter{Status: "LATE"})
	assert.Equal(t, shared.CodeInvalidInput, shared.ErrorCode(err))
}
