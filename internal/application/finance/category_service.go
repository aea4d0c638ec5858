package finance

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/finance"
	"github.com/locaflow/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CategoryService manages transaction categories
type CategoryService struct {
	repo   finance.CategoryRepository
	logger *zap.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(repo finance.CategoryRepository, logger *zap.Logger) *CategoryService {
	return &CategoryService{repo: repo, logger: logger}
}

// InitializeTenant seeds the default categories of a new tenant. It is a
// no-op when the tenant already has categories
func (s *CategoryService) InitializeTenant(ctx context.Context, tenantID uuid.UUID, _ string) error {
	existing, err := s.repo.FindAllForTenant(ctx, tenantID, "")
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	defaults := finance.DefaultCategories(tenantID)
	if err := s.repo.SaveBatch(ctx, defaults); err != nil {
		return err
	}
	s.logger.Info("Default categories created",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("count", len(defaults)),
	)
	return nil
}

// List returns the categories of the tenant, optionally of one type
func (s *CategoryService) List(ctx context.Context, tenantID uuid.UUID, kind string) ([]CategoryDTO, error) {
	t := finance.TransactionType(strings.ToUpper(kind))
	if kind != "" && !t.IsValid() {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Invalid transaction type %q", kind)
	}
	categories, err := s.repo.FindAllForTenant(ctx, tenantID, t)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryDTO, len(categories))
	for i := range categories {
		out[i] = toCategoryDTO(&categories[i])
	}
	return out, nil
}

// Create adds a category. (name, type) must be unique in the tenant
func (s *CategoryService) Create(ctx context.Context, tenantID uuid.UUID, input CategoryInput) (*CategoryDTO, error) {
	kind := finance.TransactionType(strings.ToUpper(input.Type))
	category, err := finance.NewCategory(tenantID, input.Name, kind, input.Color)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, tenantID, category.Name, kind, nil); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, category); err != nil {
		return nil, err
	}
	dto := toCategoryDTO(category)
	return &dto, nil
}

// Update renames or recolors a category. The type cannot change
func (s *CategoryService) Update(ctx context.Context, tenantID, id uuid.UUID, input CategoryInput) (*CategoryDTO, error) {
	category, err := s.repo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := category.Update(input.Name, input.Color); err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, tenantID, category.Name, category.Type, &category.ID); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, category); err != nil {
		return nil, err
	}
	dto := toCategoryDTO(category)
	return &dto, nil
}

// Delete removes a category no transaction refers to
func (s *CategoryService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	category, err := s.repo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}
	inUse, err := s.repo.IsInUse(ctx, tenantID, category.ID)
	if err != nil {
		return err
	}
	if inUse {
		return shared.NewDomainError("CATEGORY_IN_USE", "Category has transactions and cannot be deleted")
	}
	return s.repo.DeleteForTenant(ctx, tenantID, id)
}

func (s *CategoryService) ensureUnique(ctx context.Context, tenantID uuid.UUID, name string, kind finance.TransactionType, exclude *uuid.UUID) error {
	exists, err := s.repo.ExistsByNameAndType(ctx, tenantID, name, kind, exclude)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainErrorf(shared.CodeAlreadyExists, "Category %q already exists", name)
	}
	return nil
}
