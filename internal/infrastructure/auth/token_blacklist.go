package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// TokenBlacklist revokes tokens before they expire
type TokenBlacklist interface {
	// Revoke blacklists one token id for ttl, normally the token's remaining lifetime
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// RevokeUser rejects every token of userID issued before now
	RevokeUser(ctx context.Context, userID string, ttl time.Duration) error
	IsUserRevoked(ctx context.Context, userID string, issuedAt time.Time) (bool, error)
}

const blacklistPrefix = "locaflow:token:blacklist:"

// RedisTokenBlacklist stores revocations in Redis, shared by every instance
type RedisTokenBlacklist struct {
	client redis.UniversalClient
}

// NewRedisTokenBlacklist wraps an existing client
func NewRedisTokenBlacklist(client redis.UniversalClient) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{client: client}
}

func jtiKey(jti string) string     { return blacklistPrefix + "jti:" + jti }
func userKey(userID string) string { return blacklistPrefix + "user:" + userID }

func (b *RedisTokenBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if err := b.client.Set(ctx, jtiKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (b *RedisTokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, jtiKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return n > 0, nil
}

func (b *RedisTokenBlacklist) RevokeUser(ctx context.Context, userID string, ttl time.Duration) error {
	if err := b.client.Set(ctx, userKey(userID), time.Now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke user tokens: %w", err)
	}
	return nil
}

func (b *RedisTokenBlacklist) IsUserRevoked(ctx context.Context, userID string, issuedAt time.Time) (bool, error) {
	raw, err := b.client.Get(ctx, userKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check user revocation: %w", err)
	}
	cutoff, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("failed to parse revocation timestamp: %w", err)
	}
	return issuedAt.Unix() < cutoff, nil
}

// InMemoryTokenBlacklist keeps revocations in process memory. It is only
// correct for a single instance
type InMemoryTokenBlacklist struct {
	mu    sync.Mutex
	jtis  map[string]time.Time // jti -> entry expiry
	users map[string]revocation
}

type revocation struct {
	at      time.Time
	expires time.Time
}

// NewInMemoryTokenBlacklist creates an empty in-memory blacklist
func NewInMemoryTokenBlacklist() *InMemoryTokenBlacklist {
	return &InMemoryTokenBlacklist{
		jtis:  make(map[string]time.Time),
		users: make(map[string]revocation),
	}
}

func (b *InMemoryTokenBlacklist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.jtis[jti] = time.Now().Add(ttl)
	return nil
}

func (b *InMemoryTokenBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	expires, ok := b.jtis[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(expires) {
		delete(b.jtis, jti)
		return false, nil
	}
	return true, nil
}

func (b *InMemoryTokenBlacklist) RevokeUser(_ context.Context, userID string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := time.Now()
	b.users[userID] = revocation{at: now, expires: now.Add(ttl)}
	return nil
}

func (b *InMemoryTokenBlacklist) IsUserRevoked(_ context.Context, userID string, issuedAt time.Time) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.users[userID]
	if !ok {
		return false, nil
	}
	if time.Now().After(r.expires) {
		delete(b.users, userID)
		return false, nil
	}
	// iat has second precision; a session opened in the revocation second survives
	return issuedAt.Unix() < r.at.Unix(), nil
}

// FallbackTokenBlacklist writes to both Redis and memory and answers from
// Redis, switching to memory while Redis is unreachable
type FallbackTokenBlacklist struct {
	primary  TokenBlacklist
	fallback *InMemoryTokenBlacklist
	logger   *zap.Logger
}

// NewTokenBlacklist returns a Redis blacklist with in-memory fallback, or a
// plain in-memory blacklist when client is nil
func NewTokenBlacklist(client *redis.Client, logger *zap.Logger) TokenBlacklist {
	if client == nil {
		logger.Warn("Redis not configured, token blacklist is in-memory only")
		return NewInMemoryTokenBlacklist()
	}
	return &FallbackTokenBlacklist{
		primary:  NewRedisTokenBlacklist(client),
		fallback: NewInMemoryTokenBlacklist(),
		logger:   logger,
	}
}

func (b *FallbackTokenBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	_ = b.fallback.Revoke(ctx, jti, ttl)
	if err := b.primary.Revoke(ctx, jti, ttl); err != nil {
		b.logger.Warn("Token blacklist degraded to memory", zap.Error(err))
	}
	return nil
}

func (b *FallbackTokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	revoked, err := b.primary.IsRevoked(ctx, jti)
	if err != nil {
		b.logger.Warn("Token blacklist lookup degraded to memory", zap.Error(err))
		return b.fallback.IsRevoked(ctx, jti)
	}
	if revoked {
		return true, nil
	}
	// entries written while Redis was down only exist locally
	return b.fallback.IsRevoked(ctx, jti)
}

func (b *FallbackTokenBlacklist) RevokeUser(ctx context.Context, userID string, ttl time.Duration) error {
	_ = b.fallback.RevokeUser(ctx, userID, ttl)
	if err := b.primary.RevokeUser(ctx, userID, ttl); err != nil {
		b.logger.Warn("Token blacklist degraded to memory", zap.Error(err))
	}
	return nil
}

func (b *FallbackTokenBlacklist) IsUserRevoked(ctx context.Context, userID string, issuedAt time.Time) (bool, error) {
	revoked, err := b.primary.IsUserRevoked(ctx, userID, issuedAt)
	if err != nil {
		b.logger.Warn("Token blacklist lookup degraded to memory", zap.Error(err))
		return b.fallback.IsUserRevoked(ctx, userID, issuedAt)
	}
	if revoked {
		return true, nil
	}
	return b.fallback.IsUserRevoked(ctx, userID, issuedAt)
}

var (
	_ TokenBlacklist = (*RedisTokenBlacklist)(nil)
	_ TokenBlacklist = (*InMemoryTokenBlacklist)(nil)
	_ TokenBlacklist = (*FallbackTokenBlacklist)(nil)
)
