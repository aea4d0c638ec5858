package handler

import (
	"net/http"
	"testing"
	"time"

	financeapp "github.com/locaflow/backend/internal/application/finance"
	"github.com/locaflow/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transactionForm(kind, amount string, due time.Time) map[string]any {
	return map[string]any{
		"type":        kind,
		"description": "Locação LOC-000001",
		"amount":      amount,
		"due_date":    due.Format(time.RFC3339),
	}
}

func TestFinanceHandler_PayAndDelete(t *testing.T) {
	env := newTestEnv(t)
	r := env.router()

	w := doJSON(t, r, http.MethodPost, "/financial/transactions", transactionForm("INCOME", "500.00", time.Now().AddDate(0, 0, 5)))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tx, _ := decodeData[financeapp.TransactionDTO](t, w)
	assert.Equal(t, "PENDING", tx.Status)

	w = doJSON(t, r, http.MethodPost, "/financial/transactions/"+tx.ID.String()+"/pay", map[string]any{"payment_method": "PIX"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	paid, _ := decodeData[financeapp.TransactionDTO](t, w)
	assert.Equal(t, "PAID", paid.Status)
	assert.Equal(t, "PIX", paid.PaymentMethod)
	assert.NotNil(t, paid.PaidAt)

	// paying twice is outside the state table
	w = doJSON(t, r, http.MethodPost, "/financial/transactions/"+tx.ID.String()+"/pay", map[string]any{"payment_method": "PIX"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/financial/transactions/"+tx.ID.String(), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestFinanceHandler_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	r := env.router()

	w := doJSON(t, r, http.MethodPost, "/financial/transactions", transactionForm("TRANSFER", "10", time.Now()))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/financial/transactions", transactionForm("EXPENSE", "0", time.Now()))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_AMOUNT", decodeError(t, w).Code)
}

func TestFinanceHandler_Summary(t *testing.T) {
	env := newTestEnv(t)
	r := env.router()
	now := time.Now()

	for _, form := range []map[string]any{
		transactionForm("INCOME", "300.00", now),
		transactionForm("EXPENSE", "120.00", now),
	} {
		w := doJSON(t, r, http.MethodPost, "/financial/transactions", form)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		tx, _ := decodeData[financeapp.TransactionDTO](t, w)
		require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPost, "/financial/transactions/"+tx.ID.String()+"/pay", nil).Code)
	}

	w := doJSON(t, r, http.MethodGet, "/financial/summary", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	s, _ := decodeData[finance.Summary](t, w)
	assert.True(t, decimal.NewFromInt(300).Equal(s.PaidIncome), s.PaidIncome.String())
	assert.True(t, decimal.NewFromInt(120).Equal(s.PaidExpense), s.PaidExpense.String())
	assert.True(t, decimal.NewFromInt(180).Equal(s.Balance), s.Balance.String())

	w = doJSON(t, r, http.MethodGet, "/financial/summary?from=2026-03-10&to=2026-03-01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_PERIOD", decodeError(t, w).Code)
}

func TestCategoryHandler(t *testing.T) {
	env := newTestEnv(t)
	r := env.router()

	w := doJSON(t, r, http.MethodPost, "/financial/categories", map[string]any{"name": "Manutenção", "type": "EXPENSE"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/financial/categories", map[string]any{"name": "Manutenção", "type": "EXPENSE"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// the same name is allowed for the other type
	w = doJSON(t, r, http.MethodPost, "/financial/categories", map[string]any{"name": "Manutenção", "type": "INCOME"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodGet, "/financial/categories?type=EXPENSE", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cats, _ := decodeData[[]financeapp.CategoryDTO](t, w)
	require.Len(t, cats, 1)
	assert.Equal(t, "EXPENSE", cats[0].Type)

	w = doJSON(t, r, http.MethodGet, "/financial/categories?type=OTHER", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
