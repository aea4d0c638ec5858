package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "locaflow-test",
	})
}

func newTestSubject() Subject {
	return Subject{
		TenantID: uuid.New(),
		UserID:   uuid.New(),
		Email:    "owner@acme.com.br",
		Role:     "ADMIN",
	}
}

func TestNewJWTService_UsesSecretForRefreshIfNotProvided(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "test-secret"})
	assert.Equal(t, []byte("test-secret"), svc.refreshSecret)
}

func TestIssue(t *testing.T) {
	svc := newTestJWTService()
	sub := newTestSubject()

	pair, err := svc.Issue(sub)
	require.NoError(t, err)

	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEmpty(t, pair.AccessTokenID)
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, pair.AccessTokenID, claims.ID)
	assert.Equal(t, sub.TenantID, claims.TenantUUID())
	assert.Equal(t, sub.UserID, claims.UserUUID())
	assert.Equal(t, "ADMIN", claims.Role)
	assert.Equal(t, "owner@acme.com.br", claims.Email)
	assert.Greater(t, claims.RemainingTTL(), 14*time.Minute)

	refresh, err := svc.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Empty(t, refresh.Role)
	assert.NotEqual(t, claims.ID, refresh.ID)
}

func TestValidate_Errors(t *testing.T) {
	svc := newTestJWTService()
	pair, err := svc.Issue(newTestSubject())
	require.NoError(t, err)

	t.Run("wrong token type", func(t *testing.T) {
		// same secret for both kinds so only the type claim differs
		shared := NewJWTService(config.JWTConfig{Secret: "same-secret", AccessTokenExpiration: time.Minute, RefreshTokenExpiration: time.Hour})
		p, err := shared.Issue(newTestSubject())
		require.NoError(t, err)

		_, err = shared.ValidateAccessToken(p.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidTokenType)
		_, err = shared.ValidateRefreshToken(p.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})

	t.Run("refresh token signed with another secret", func(t *testing.T) {
		_, err := svc.ValidateAccessToken(pair.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateAccessToken("not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other issuer", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{
			Secret:                "test-secret-key-at-least-32-chars",
			AccessTokenExpiration: time.Minute,
			Issuer:                "someone-else",
		})
		p, err := other.Issue(newTestSubject())
		require.NoError(t, err)
		_, err = svc.ValidateAccessToken(p.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		past := newTestJWTService()
		past.now = func() time.Time { return time.Now().Add(-time.Hour) }
		p, err := past.Issue(newTestSubject())
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(p.AccessToken)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("not yet valid", func(t *testing.T) {
		future := newTestJWTService()
		future.now = func() time.Time { return time.Now().Add(time.Hour) }
		p, err := future.Issue(newTestSubject())
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(p.AccessToken)
		assert.ErrorIs(t, err, ErrTokenNotYetValid)
	})
}

func TestClaims_RemainingTTL(t *testing.T) {
	assert.Zero(t, (&Claims{}).RemainingTTL())
	assert.True(t, (&Claims{}).IssuedAtTime().IsZero())
}
