package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/shared"
)

const (
	// PasswordResetTTL is how long a reset link stays valid
	PasswordResetTTL = time.Hour

	resetTokenLength = 48
)

// PasswordResetToken is a single-use secret mailed to a user
type PasswordResetToken struct {
	shared.BaseEntity
	TenantID  uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
}

// NewPasswordResetToken creates a token for user and returns the plaintext to mail
func NewPasswordResetToken(user *User, now time.Time) (*PasswordResetToken, string, error) {
	plain, err := randomToken(resetTokenLength)
	if err != nil {
		return nil, "", shared.NewDomainError("TOKEN_GENERATION_FAILED", "Failed to generate reset token")
	}
	t := &PasswordResetToken{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   user.TenantID,
		UserID:     user.ID,
		TokenHash:  HashSecret(plain),
		ExpiresAt:  now.Add(PasswordResetTTL),
	}
	return t, plain, nil
}

// ErrResetTokenInvalid is returned for unknown, expired or used tokens alike
var ErrResetTokenInvalid = shared.NewDomainError("INVALID_RESET_TOKEN", "Reset link is invalid or has expired")

// Validate checks the token can still be redeemed at now
func (t *PasswordResetToken) Validate(now time.Time) error {
	if t.UsedAt != nil || !now.Before(t.ExpiresAt) {
		return ErrResetTokenInvalid
	}
	return nil
}

// MarkUsed redeems the token
func (t *PasswordResetToken) MarkUsed(now time.Time) {
	t.UsedAt = &now
	t.UpdatedAt = now
}
