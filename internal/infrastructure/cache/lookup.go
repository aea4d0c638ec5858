package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// LookupCache stores serialized lookup results (CEP, CNPJ) by key
type LookupCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RedisLookupCache keeps lookups in Redis
type RedisLookupCache struct {
	client redis.UniversalClient
}

// NewRedisLookupCache wraps an existing client
func NewRedisLookupCache(client redis.UniversalClient) *RedisLookupCache {
	return &RedisLookupCache{client: client}
}

func lookupKey(key string) string { return keyPrefix + "lookup:" + key }

func (c *RedisLookupCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.client.Get(ctx, lookupKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read lookup cache: %w", err)
	}
	return b, true, nil
}

func (c *RedisLookupCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, lookupKey(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write lookup cache: %w", err)
	}
	return nil
}

func (c *RedisLookupCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, lookupKey(key)).Err()
}

// InMemoryLookupCache is the single-instance lookup cache
type InMemoryLookupCache struct {
	store *memoryStore
}

// NewInMemoryLookupCache creates an in-memory cache swept every 10 minutes
func NewInMemoryLookupCache() *InMemoryLookupCache {
	return &InMemoryLookupCache{store: newMemoryStore(10 * time.Minute)}
}

func (c *InMemoryLookupCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, ok := c.store.get(key)
	return b, ok, nil
}

func (c *InMemoryLookupCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.store.set(key, value, ttl)
	return nil
}

func (c *InMemoryLookupCache) Delete(_ context.Context, key string) error {
	c.store.delete(key)
	return nil
}

// Close stops the sweeper
func (c *InMemoryLookupCache) Close() error {
	c.store.close()
	return nil
}

// NewLookupCache returns a Redis cache when client is set, else an in-memory one
func NewLookupCache(client *redis.Client) LookupCache {
	if client == nil {
		return NewInMemoryLookupCache()
	}
	return NewRedisLookupCache(client)
}

// Remember returns the cached value under key or calls load and caches its
// result. Cache failures are logged and never fail the lookup
func Remember[T any](ctx context.Context, c LookupCache, logger *zap.Logger, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if raw, ok, err := c.Get(ctx, key); err != nil {
		logger.Warn("Lookup cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		_ = c.Delete(ctx, key)
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	raw, err := json.Marshal(v)
	if err == nil {
		err = c.Set(ctx, key, raw, ttl)
	}
	if err != nil {
		logger.Warn("Lookup cache write failed", zap.String("key", key), zap.Error(err))
	}
	return v, nil
}

var (
	_ LookupCache = (*RedisLookupCache)(nil)
	_ LookupCache = (*InMemoryLookupCache)(nil)
)
