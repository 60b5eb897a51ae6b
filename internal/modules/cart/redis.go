package cart

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisBackend struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisBackend stores cart slots as plain Redis strings. A zero ttl keeps
// them until cleared.
func NewRedisBackend(rdb *redis.Client, ttl time.Duration) Backend {
	return &redisBackend{rdb: rdb, ttl: ttl}
}

func (b *redisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := b.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return raw, err
}

func (b *redisBackend) Set(ctx context.Context, key string, value []byte) error {
	return b.rdb.Set(ctx, key, value, b.ttl).Err()
}

func (b *redisBackend) Del(ctx context.Context, key string) error {
	return b.rdb.Del(ctx, key).Err()
}
