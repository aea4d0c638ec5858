package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/identity"
	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/locaflow/backend/internal/infrastructure/persistence/models"
	"github.com/locaflow/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormTenantRepository implements identity.TenantRepository using GORM
type GormTenantRepository struct {
	db *gorm.DB
}

// NewGormTenantRepository creates a new GormTenantRepository
func NewGormTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

// FindByID finds a tenant by its ID
func (r *GormTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Tenant, error) {
	var model models.TenantModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindBySlug finds a tenant by its slug
func (r *GormTenantRepository) FindBySlug(ctx context.Context, slug string) (*identity.Tenant, error) {
	var model models.TenantModel
	if err := conn(ctx, r.db).First(&model, "slug = ?", strings.ToLower(slug)).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// ExistsByDocument checks if a tenant with the CNPJ/CPF exists
func (r *GormTenantRepository) ExistsByDocument(ctx context.Context, document string) (bool, error) {
	if document == "" {
		return false, nil
	}
	var count int64
	if err := conn(ctx, r.db).Model(&models.TenantModel{}).
		Where("document = ?", document).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistsBySlug checks if the slug is taken
func (r *GormTenantRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.TenantModel{}).
		Where("slug = ?", strings.ToLower(slug)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindActiveIDs returns the IDs of tenants in TRIAL or ACTIVE status
func (r *GormTenantRepository) FindActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := conn(ctx, r.db).Model(&models.TenantModel{}).
		Where("status IN ?", []identity.TenantStatus{identity.TenantStatusTrial, identity.TenantStatusActive}).
		Order("created_at ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Save creates or updates a tenant
func (r *GormTenantRepository) Save(ctx context.Context, t *identity.Tenant) error {
	return saveAggregate(conn(ctx, r.db), models.TenantModelFromDomain(t), &t.BaseAggregateRoot)
}

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByIDForTenant finds a user by ID within a tenant
func (r *GormUserRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*identity.User, error) {
	var model models.UserModel
	if err := conn(ctx, r.db).Scopes(tenant.Scope(tenantID)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByID finds a user by ID across tenants. Used by token refresh
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var model models.UserModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByEmail finds a user by email across tenants
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	var model models.UserModel
	if err := conn(ctx, r.db).First(&model, "email = ?", normalizeEmail(email)).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists the users of a tenant
func (r *GormUserRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]identity.User, error) {
	query := r.applyFilter(conn(ctx, r.db).Model(&models.UserModel{}).Scopes(tenant.Scope(tenantID)), filter)
	query = applyPage(query, filter, UserSortFields, "name")

	var userModels []models.UserModel
	if err := query.Find(&userModels).Error; err != nil {
		return nil, err
	}
	users := make([]identity.User, len(userModels))
	for i := range userModels {
		users[i] = *userModels[i].ToDomain()
	}
	return users, nil
}

// CountForTenant counts the users of a tenant matching the filter
func (r *GormUserRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(conn(ctx, r.db).Model(&models.UserModel{}).Scopes(tenant.Scope(tenantID)), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByEmail checks if the email is taken on the platform
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.UserModel{}).
		Where("email = ?", normalizeEmail(email)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a user
func (r *GormUserRepository) Save(ctx context.Context, u *identity.User) error {
	return saveAggregate(conn(ctx, r.db), models.UserModelFromDomain(u), &u.BaseAggregateRoot)
}

// DeleteForTenant deletes a user within a tenant
func (r *GormUserRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteResult(conn(ctx, r.db).Scopes(tenant.Scope(tenantID)).Delete(&models.UserModel{}, "id = ?", id))
}

func (r *GormUserRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		op, pattern := likeOp(query), searchPattern(filter.Search)
		query = query.Where("(name "+op+" ? OR email "+op+" ?)", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "role":
			query = query.Where("role = ?", value)
		case "active":
			query = query.Where("active = ?", value)
		}
	}
	return query
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GormPasswordResetRepository implements identity.PasswordResetRepository using GORM
type GormPasswordResetRepository struct {
	db *gorm.DB
}

// NewGormPasswordResetRepository creates a new GormPasswordResetRepository
func NewGormPasswordResetRepository(db *gorm.DB) *GormPasswordResetRepository {
	return &GormPasswordResetRepository{db: db}
}

// FindByHash finds a reset token by the SHA-256 of its secret
func (r *GormPasswordResetRepository) FindByHash(ctx context.Context, tokenHash string) (*identity.PasswordResetToken, error) {
	var model models.PasswordResetTokenModel
	if err := conn(ctx, r.db).First(&model, "token_hash = ?", tokenHash).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Save creates or updates a reset token
func (r *GormPasswordResetRepository) Save(ctx context.Context, token *identity.PasswordResetToken) error {
	return writeError(conn(ctx, r.db).Save(models.PasswordResetTokenModelFromDomain(token)).Error)
}

// InvalidateForUser marks every unused token of the user as used
func (r *GormPasswordResetRepository) InvalidateForUser(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return conn(ctx, r.db).Model(&models.PasswordResetTokenModel{}).
		Where("user_id = ? AND used_at IS NULL", userID).
		Updates(map[string]any{"used_at": at, "updated_at": at}).Error
}

// GormAPIKeyRepository implements identity.APIKeyRepository using GORM
type GormAPIKeyRepository struct {
	db *gorm.DB
}

// NewGormAPIKeyRepository creates a new GormAPIKeyRepository
func NewGormAPIKeyRepository(db *gorm.DB) *GormAPIKeyRepository {
	return &GormAPIKeyRepository{db: db}
}

// FindByIDForTenant finds an API key by ID within a tenant
func (r *GormAPIKeyRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*identity.APIKey, error) {
	var model models.APIKeyModel
	if err := conn(ctx, r.db).Scopes(tenant.Scope(tenantID)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByHash finds an API key by the SHA-256 of its secret
func (r *GormAPIKeyRepository) FindByHash(ctx context.Context, keyHash string) (*identity.APIKey, error) {
	var model models.APIKeyModel
	if err := conn(ctx, r.db).First(&model, "key_hash = ?", keyHash).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists the API keys of a tenant, newest first
func (r *GormAPIKeyRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]identity.APIKey, error) {
	var keyModels []models.APIKeyModel
	if err := conn(ctx, r.db).Scopes(tenant.Scope(tenantID)).
		Order("created_at DESC").
		Find(&keyModels).Error; err != nil {
		return nil, err
	}
	keys := make([]identity.APIKey, len(keyModels))
	for i := range keyModels {
		keys[i] = *keyModels[i].ToDomain()
	}
	return keys, nil
}

// Save creates or updates an API key
func (r *GormAPIKeyRepository) Save(ctx context.Context, key *identity.APIKey) error {
	return saveAggregate(conn(ctx, r.db), models.APIKeyModelFromDomain(key), &key.BaseAggregateRoot)
}

// TouchLastUsed stamps last_used_at without loading or versioning the key
func (r *GormAPIKeyRepository) TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	return conn(ctx, r.db).Model(&models.APIKeyModel{}).
		Where("id = ?", id).
		UpdateColumn("last_used_at", at).Error
}

var (
	_ identity.TenantRepository        = (*GormTenantRepository)(nil)
	_ identity.UserRepository          = (*GormUserRepository)(nil)
	_ identity.PasswordResetRepository = (*GormPasswordResetRepository)(nil)
	_ identity.APIKeyRepository        = (*GormAPIKeyRepository)(nil)
)
