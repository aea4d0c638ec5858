package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/shared"
)

// TenantRepository persists tenants
type TenantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	FindBySlug(ctx context.Context, slug string) (*Tenant, error)
	ExistsByDocument(ctx context.Context, document string) (bool, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	FindActiveIDs(ctx context.Context) ([]uuid.UUID, error)
	Save(ctx context.Context, tenant *Tenant) error
}

// UserRepository persists users. Email is unique across the platform
type UserRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]User, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, user *User) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// PasswordResetRepository persists reset tokens
type PasswordResetRepository interface {
	FindByHash(ctx context.Context, tokenHash string) (*PasswordResetToken, error)
	Save(ctx context.Context, token *PasswordResetToken) error
	// InvalidateForUser marks every unused token of the user as used
	InvalidateForUser(ctx context.Context, userID uuid.UUID, at time.Time) error
}

// APIKeyRepository persists API keys
type APIKeyRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*APIKey, error)
	FindByHash(ctx context.Context, keyHash string) (*APIKey, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]APIKey, error)
	Save(ctx context.Context, key *APIKey) error
	TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error
}
