package redis

import (
	"context"
	"time"

	"github.com/campushub/backend/pkg/config"
	"github.com/redis/go-redis/v9"
)

// NewClient returns nil when no address is configured; callers treat that
// as "redis disabled".
func NewClient(cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

// Ping checks connectivity with a short deadline.
func Ping(ctx context.Context, rdb *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return rdb.Ping(ctx).Err()
}
