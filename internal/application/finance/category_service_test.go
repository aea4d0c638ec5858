package finance

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/finance"
	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCategoryService_InitializeTenant(t *testing.T) {
	tenantID := uuid.New()

	t.Run("seeds defaults", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		repo.On("FindAllForTenant", mock.Anything, tenantID, finance.TransactionType("")).Return([]finance.Category{}, nil)
		repo.On("SaveBatch", mock.Anything, mock.MatchedBy(func(cs []*finance.Category) bool {
			for _, c := range cs {
				if !c.IsDefault || c.TenantID != tenantID {
					return false
				}
			}
			return len(cs) == 10
		})).Return(nil)

		require.NoError(t, NewCategoryService(repo, zap.NewNop()).InitializeTenant(context.Background(), tenantID, "STARTER"))
		repo.AssertExpectations(t)
	})

	t.Run("keeps existing categories", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		existing, _ := finance.NewCategory(tenantID, "Frete", finance.TransactionTypeIncome, "")
		repo.On("FindAllForTenant", mock.Anything, tenantID, finance.TransactionType("")).Return([]finance.Category{*existing}, nil)

		require.NoError(t, NewCategoryService(repo, zap.NewNop()).InitializeTenant(context.Background(), tenantID, ""))
		repo.AssertNotCalled(t, "SaveBatch", mock.Anything, mock.Anything)
	})
}

func TestCategoryService_Create(t *testing.T) {
	tenantID := uuid.New()

	t.Run("success", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		repo.On("ExistsByNameAndType", mock.Anything, tenantID, "Combustível", finance.TransactionTypeExpense, mock.Anything).Return(false, nil)
		repo.On("Save", mock.Anything, mock.AnythingOfType("*finance.Category")).Return(nil)

		dto, err := NewCategoryService(repo, zap.NewNop()).Create(context.Background(), tenantID, CategoryInput{
			Name: "  Combustível ", Type: "expense", Color: "#f59e0b",
		})
		require.NoError(t, err)
		assert.Equal(t, "Combustível", dto.Name)
		assert.Equal(t, "EXPENSE", dto.Type)
		assert.Equal(t, "#F59E0B", dto.Color)
		assert.False(t, dto.IsDefault)
	})

	t.Run("duplicate name and type", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		repo.On("ExistsByNameAndType", mock.Anything, tenantID, "Frete", finance.TransactionTypeIncome, mock.Anything).Return(true, nil)

		_, err := NewCategoryService(repo, zap.NewNop()).Create(context.Background(), tenantID, CategoryInput{Name: "Frete", Type: "INCOME"})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("invalid color", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		_, err := NewCategoryService(repo, zap.NewNop()).Create(context.Background(), tenantID, CategoryInput{Name: "Frete", Type: "INCOME", Color: "green"})
		assert.Equal(t, "INVALID_COLOR", shared.ErrorCode(err))
	})
}

func TestCategoryService_UpdateExcludesItself(t *testing.T) {
	tenantID := uuid.New()
	repo := new(MockCategoryRepository)
	category, _ := finance.NewCategory(tenantID, "Frete", finance.TransactionTypeIncome, "")
	repo.On("FindByIDForTenant", mock.Anything, tenantID, category.ID).Return(category, nil)
	repo.On("ExistsByNameAndType", mock.Anything, tenantID, "Fretes", finance.TransactionTypeIncome, &category.ID).Return(false, nil)
	repo.On("Save", mock.Anything, category).Return(nil)

	dto, err := NewCategoryService(repo, zap.NewNop()).Update(context.Background(), tenantID, category.ID, CategoryInput{Name: "Fretes", Type: "EXPENSE"})
	require.NoError(t, err)
	assert.Equal(t, "Fretes", dto.Name)
	assert.Equal(t, "INCOME", dto.Type)
}

func TestCategoryService_Delete(t *testing.T) {
	tenantID := uuid.New()
	category, _ := finance.NewCategory(tenantID, "Aluguel", finance.TransactionTypeExpense, "")

	t.Run("in use", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		repo.On("FindByIDForTenant", mock.Anything, tenantID, category.ID).Return(category, nil)
		repo.On("IsInUse", mock.Anything, tenantID, category.ID).Return(true, nil)

		err := NewCategoryService(repo, zap.NewNop()).Delete(context.Background(), tenantID, category.ID)
		assert.Equal(t, "CATEGORY_IN_USE", shared.ErrorCode(err))
		repo.AssertNotCalled(t, "DeleteForTenant", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unused", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		repo.On("FindByIDForTenant", mock.Anything, tenantID, category.ID).Return(category, nil)
		repo.On("IsInUse", mock.Anything, tenantID, category.ID).Return(false, nil)
		repo.On("DeleteForTenant", mock.Anything, tenantID, category.ID).Return(nil)

		require.NoError(t, NewCategoryService(repo, zap.NewNop()).Delete(context.Background(), tenantID, category.ID))
	})
}

func TestCategoryService_ListRejectsUnknownType(t *testing.T) {
	_, err := NewCategoryService(new(MockCategoryRepository), zap.NewNop()).List(context.Background(), uuid.New(), "other")
	assert.Equal(t, shared.CodeInvalidInput, shared.ErrorCode(err))
}
