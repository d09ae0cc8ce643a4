package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/guttosm/tradesapi/config"
)

// InitRedis creates a client for cfg.Redis and verifies it with PING.
func InitRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Redis.Addr, err)
	}
	return client, nil
}

// redisOpener is overridden in tests.
var redisOpener = InitRedis
