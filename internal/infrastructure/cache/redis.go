// Package cache holds the Redis-backed caches with their in-memory fallbacks:
// the CEP/CNPJ lookup cache and the webhook idempotency store.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/locaflow/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "locaflow:"

// NewRedisClient connects to Redis. It returns a nil client when no host is
// configured or the server is unreachable, and callers fall back to memory
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *redis.Client {
	if cfg.Host == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 3,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unavailable, using in-memory stores",
			zap.String("addr", cfg.Addr()),
			zap.Error(fmt.Errorf("ping: %w", err)),
		)
		_ = client.Close()
		return nil
	}
	logger.Info("Connected to Redis", zap.String("addr", cfg.Addr()), zap.Int("db", cfg.DB))
	return client
}
