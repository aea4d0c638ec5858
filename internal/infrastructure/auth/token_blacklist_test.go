package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/locaflow/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInMemoryTokenBlacklist_Revoke(t *testing.T) {
	bl := NewInMemoryTokenBlacklist()
	ctx := context.Background()

	require.NoError(t, bl.Revoke(ctx, "jti-1", time.Hour))

	revoked, err := bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = bl.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryTokenBlacklist_Expiry(t *testing.T) {
	bl := NewInMemoryTokenBlacklist()
	ctx := context.Background()

	require.NoError(t, bl.Revoke(ctx, "short", time.Millisecond))
	time.Sleep(10 * time.Millisecond)

	revoked, err := bl.IsRevoked(ctx, "short")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryTokenBlacklist_RevokeUser(t *testing.T) {
	bl := NewInMemoryTokenBlacklist()
	ctx := context.Background()
	issued := time.Now().Add(-time.Hour)

	revoked, err := bl.IsUserRevoked(ctx, "user-1", issued)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, bl.RevokeUser(ctx, "user-1", 24*time.Hour))

	revoked, err = bl.IsUserRevoked(ctx, "user-1", issued)
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = bl.IsUserRevoked(ctx, "user-1", time.Now().Add(2*time.Second))
	require.NoError(t, err)
	assert.False(t, revoked, "tokens issued after the revocation stay valid")

	revoked, err = bl.IsUserRevoked(ctx, "user-2", issued)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func unreachableRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNewTokenBlacklist(t *testing.T) {
	_, ok := NewTokenBlacklist(nil, zap.NewNop()).(*InMemoryTokenBlacklist)
	assert.True(t, ok)

	_, ok = NewTokenBlacklist(unreachableRedis(t), zap.NewNop()).(*FallbackTokenBlacklist)
	assert.True(t, ok)
}

func TestFallbackTokenBlacklist_RedisDown(t *testing.T) {
	core, recorded := observer.New(zapcore.WarnLevel)
	bl := NewTokenBlacklist(unreachableRedis(t), zap.New(core))
	ctx := context.Background()

	require.NoError(t, bl.Revoke(ctx, "jti-1", time.Hour))
	revoked, err := bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	require.NoError(t, bl.RevokeUser(ctx, "user-1", time.Hour))
	revoked, err = bl.IsUserRevoked(ctx, "user-1", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.True(t, revoked)

	assert.NotZero(t, recorded.FilterMessageSnippet("degraded to memory").Len())
}

func TestCookies(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cookies := NewCookies(config.CookieConfig{
		AccessName:  "lf_access",
		RefreshName: "lf_refresh",
		Secure:      true,
		SameSite:    "strict",
	})
	pair := &TokenPair{
		AccessToken:           "access",
		RefreshToken:          "refresh",
		AccessTokenExpiresAt:  time.Now().Add(15 * time.Minute),
		RefreshTokenExpiresAt: time.Now().Add(7 * 24 * time.Hour),
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	cookies.Set(c, pair)

	res := &http.Response{Header: w.Header()}
	got := map[string]*http.Cookie{}
	for _, ck := range res.Cookies() {
		got[ck.Name] = ck
	}
	require.Contains(t, got, "lf_access")
	require.Contains(t, got, "lf_refresh")
	assert.Equal(t, "access", got["lf_access"].Value)
	assert.True(t, got["lf_access"].HttpOnly)
	assert.True(t, got["lf_access"].Secure)
	assert.Equal(t, http.SameSiteStrictMode, got["lf_access"].SameSite)
	assert.Equal(t, "/", got["lf_refresh"].Path)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	cookies.Clear(c)
	for _, ck := range (&http.Response{Header: w.Header()}).Cookies() {
		assert.Empty(t, ck.Value)
		assert.True(t, ck.MaxAge < 0)
	}
}
