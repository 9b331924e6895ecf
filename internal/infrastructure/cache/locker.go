package cache

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/ArtEnginer/POS/internal/application/ports"
)

var _ ports.Locker = (*RedisLocker)(nil)

// RedisLocker locks distribuidos sobre redislock.
type RedisLocker struct {
	client *redislock.Client
}

// NewRedisLocker construye el locker sobre el cliente Redis.
func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{client: redislock.New(rdb)}
}

// Obtain intenta tomar el lock una sola vez; ocupado → ports.ErrLockNotObtained.
func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (ports.Lock, error) {
	lock, err := l.client.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ports.ErrLockNotObtained
	}
	if err != nil {
		return nil, err
	}
	return lock, nil
}
