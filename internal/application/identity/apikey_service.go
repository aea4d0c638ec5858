package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/audit"
	"github.com/locaflow/backend/internal/domain/identity"
	"github.com/locaflow/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrInvalidAPIKey is returned for unknown, revoked and expired keys alike
var ErrInvalidAPIKey = shared.NewDomainError(shared.CodeUnauthorized, "Invalid API key")

// APIKeyService manages machine credentials
type APIKeyService struct {
	keys     identity.APIKeyRepository
	tenants  identity.TenantRepository
	activity ActivityRecorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewAPIKeyService creates a new API key service
func NewAPIKeyService(keys identity.APIKeyRepository, tenants identity.TenantRepository, activity ActivityRecorder, logger *zap.Logger) *APIKeyService {
	return &APIKeyService{
		keys:     keys,
		tenants:  tenants,
		activity: activity,
		logger:   logger,
		now:      time.Now,
	}
}

// Create generates a key. The plaintext is only available in the result
func (s *APIKeyService) Create(ctx context.Context, input CreateAPIKeyInput) (*CreatedAPIKey, error) {
	role := identity.RoleViewer
	if input.Role != "" {
		parsed, ok := identity.ParseRole(input.Role)
		if !ok {
			return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown role %q", input.Role)
		}
		role = parsed
	}

	key, plain, err := identity.NewAPIKey(input.TenantID, input.Name, role, input.ExpiresAt)
	if err != nil {
		return nil, err
	}
	key.SetCreatedBy(input.ActorID)
	if err := s.keys.Save(ctx, key); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, audit.Entry{
		TenantID:    input.TenantID,
		UserID:      &input.ActorID,
		Action:      audit.ActionCreate,
		EntityType:  "ApiKey",
		EntityID:    &key.ID,
		Description: "API key created: " + key.Name,
		Metadata:    map[string]any{"prefix": key.Prefix, "role": string(key.Role)},
	})
	s.logger.Info("API key created",
		zap.String("key_id", key.ID.String()),
		zap.String("prefix", key.Prefix),
	)
	return &CreatedAPIKey{APIKeyDTO: toAPIKeyDTO(key), Key: plain}, nil
}

// List returns every key of the tenant, revoked ones included
func (s *APIKeyService) List(ctx context.Context, tenantID uuid.UUID) ([]APIKeyDTO, error) {
	keys, err := s.keys.FindAllForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]APIKeyDTO, len(keys))
	for i := range keys {
		out[i] = toAPIKeyDTO(&keys[i])
	}
	return out, nil
}

// Revoke disables a key permanently
func (s *APIKeyService) Revoke(ctx context.Context, tenantID, id, actorID uuid.UUID) error {
	key, err := s.keys.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := key.Revoke(); err != nil {
		return err
	}
	if err := s.keys.Save(ctx, key); err != nil {
		return err
	}
	s.activity.Record(ctx, audit.Entry{
		TenantID:    tenantID,
		UserID:      &actorID,
		Action:      audit.ActionStatusChange,
		EntityType:  "ApiKey",
		EntityID:    &key.ID,
		Description: "API key revoked: " + key.Name,
	})
	s.logger.Info("API key revoked", zap.String("key_id", key.ID.String()))
	return nil
}

// Authenticate resolves a plaintext key to its tenant and role
func (s *APIKeyService) Authenticate(ctx context.Context, plain string) (*APIKeyPrincipal, error) {
	if !identity.LooksLikeAPIKey(plain) {
		return nil, ErrInvalidAPIKey
	}
	key, err := s.keys.FindByHash(ctx, identity.HashSecret(plain))
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, ErrInvalidAPIKey
		}
		return nil, err
	}
	now := s.now()
	if !key.IsUsable(now) {
		s.logger.Warn("Rejected unusable API key", zap.String("prefix", key.Prefix))
		return nil, ErrInvalidAPIKey
	}

	tenant, err := s.tenants.FindByID(ctx, key.TenantID)
	if err != nil {
		return nil, err
	}
	if !tenant.CanOperate() {
		return nil, ErrTenantInactive
	}

	if err := s.keys.TouchLastUsed(ctx, key.ID, now); err != nil {
		s.logger.Warn("Failed to update API key last use", zap.Error(err))
	}
	return &APIKeyPrincipal{
		KeyID:    key.ID,
		TenantID: key.TenantID,
		Name:     key.Name,
		Role:     key.Role,
	}, nil
}
