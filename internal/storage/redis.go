package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/guttosm/tradesapi/internal/domain/models"
)

// RedisClient is the subset of *redis.Client the backend needs.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// Compile-time check that *redis.Client satisfies RedisClient.
var _ RedisClient = (*redis.Client)(nil)

// RedisBackend keeps the collection as one JSON document under a single key,
// with no expiry.
type RedisBackend struct {
	client RedisClient
	key    string
}

// NewRedisBackend stores the collection under key.
func NewRedisBackend(client RedisClient, key string) *RedisBackend {
	return &RedisBackend{client: client, key: key}
}

func (b *RedisBackend) Name() string { return "redis" }

func (b *RedisBackend) Read(ctx context.Context) ([]models.Trade, error) {
	data, err := b.client.Get(ctx, b.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: redis key %s", ErrNoCollection, b.key)
		}
		return nil, fmt.Errorf("get %s: %w", b.key, err)
	}
	trades, err := decodeTrades(data)
	if err != nil {
		return nil, fmt.Errorf("redis key %s: %w", b.key, err)
	}
	return trades, nil
}

func (b *RedisBackend) Write(ctx context.Context, trades []models.Trade) error {
	data, err := encodeTrades(trades)
	if err != nil {
		return err
	}
	if err := b.client.Set(ctx, b.key, data, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", b.key, err)
	}
	return nil
}

func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}
