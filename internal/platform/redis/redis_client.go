// Package redis opens the optional Redis connection shared by the read cache and the token denylist.
package redis

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"blog_backend/internal/platform/config"
)

const pingTimeout = 3 * time.Second

// NewRedisClient connects to Redis and verifies the connection with PING.
// It returns (nil, nil) when Redis is not configured.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled() {
		slog.Info("Redis not configured, running without cache and token denylist")
		return nil, nil
	}

	addr := cfg.Addr()
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 接続確認
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("Redis connection failed", "address", addr, "error", err)
		_ = rdb.Close()
		return nil, err
	}

	slog.Info("Redis connection successful", "address", addr)
	return rdb, nil
}
