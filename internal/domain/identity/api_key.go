package identity

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/shared"
)

const (
	// APIKeyPrefix marks every key so it can be recognised in an Authorization header
	APIKeyPrefix = "lf_"

	apiKeyRandomLength = 40
	apiKeyDisplayChars = 12
)

// APIKey grants machine access to a tenant with a fixed role
type APIKey struct {
	shared.TenantAggregateRoot
	Name       string
	Prefix     string
	KeyHash    string
	Role       Role
	LastUsedAt *time.Time
	ExpiresAt  *time.Time
	RevokedAt  *time.Time
}

// NewAPIKey generates a key and returns the aggregate plus the plaintext, which is never stored
func NewAPIKey(tenantID uuid.UUID, name string, role Role, expiresAt *time.Time) (*APIKey, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, "", shared.NewDomainError("INVALID_NAME", "API key name cannot be empty")
	}
	if len(name) > 100 {
		return nil, "", shared.NewDomainError("INVALID_NAME", "API key name cannot exceed 100 characters")
	}
	if !role.IsValid() || role == RoleSuperAdmin {
		return nil, "", shared.NewDomainError("INVALID_ROLE", "API keys cannot use this role")
	}
	if expiresAt != nil && !expiresAt.After(time.Now()) {
		return nil, "", shared.NewDomainError("INVALID_EXPIRATION", "Expiration must be in the future")
	}

	plain, err := generateAPIKey()
	if err != nil {
		return nil, "", shared.NewDomainError("KEY_GENERATION_FAILED", "Failed to generate API key")
	}

	k := &APIKey{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Prefix:              plain[:apiKeyDisplayChars],
		KeyHash:             HashSecret(plain),
		Role:                role,
		ExpiresAt:           expiresAt,
	}
	return k, plain, nil
}

// IsUsable reports whether the key is neither revoked nor expired at now
func (k *APIKey) IsUsable(now time.Time) bool {
	if k.RevokedAt != nil {
		return false
	}
	return k.ExpiresAt == nil || now.Before(*k.ExpiresAt)
}

// Revoke disables the key permanently
func (k *APIKey) Revoke() error {
	if k.RevokedAt != nil {
		return shared.NewDomainError("ALREADY_REVOKED", "API key is already revoked")
	}
	now := time.Now()
	k.RevokedAt = &now
	k.Touch()
	return nil
}

// MarkUsed stamps the last use time
func (k *APIKey) MarkUsed(now time.Time) {
	k.LastUsedAt = &now
}

// LooksLikeAPIKey reports whether a bearer token is an API key rather than a JWT
func LooksLikeAPIKey(token string) bool {
	return strings.HasPrefix(token, APIKeyPrefix) && len(token) == len(APIKeyPrefix)+apiKeyRandomLength
}

// HashSecret returns the hex sha256 used to store keys and reset tokens
func HashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

func generateAPIKey() (string, error) {
	token, err := randomToken(apiKeyRandomLength)
	if err != nil {
		return "", err
	}
	return APIKeyPrefix + token, nil
}

// randomToken returns n url-safe characters from crypto/rand
func randomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf)[:n], nil
}
