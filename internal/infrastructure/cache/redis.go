// Package cache adapta Redis a los puertos Cache y Locker. La caché es advisory: un fallo de red se
// registra y se trata como miss, nunca rompe la petición.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/ArtEnginer/POS/internal/application/ports"
	"github.com/ArtEnginer/POS/pkg/config"
)

var _ ports.Cache = (*RedisCache)(nil)

const scanBatch = 200

// NewClient crea el cliente y verifica la conexión con PING.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// RedisCache implementación de ports.Cache con valores JSON.
type RedisCache struct {
	rdb *redis.Client
}

// NewRedisCache construye el adaptador; con rdb nil se comporta como caché vacía.
func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

// Get decodifica el valor en dest; false si no existe o no se pudo leer.
func (c *RedisCache) Get(ctx context.Context, key string, dest any) bool {
	if c.rdb == nil {
		return false
	}
	val, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("cache get")
		}
		return false
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false
	}
	return true
}

// Set guarda value como JSON con expiración ttl.
func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if c.rdb == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache set")
	}
}

// Del borra las llaves.
func (c *RedisCache) Del(ctx context.Context, keys ...string) {
	if c.rdb == nil || len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("cache del")
	}
}

// DelPattern recorre las llaves con SCAN (no KEYS, que bloquea el servidor) y las borra por lotes.
func (c *RedisCache) DelPattern(ctx context.Context, pattern string) int {
	if c.rdb == nil {
		return 0
	}
	deleted := 0
	iter := c.rdb.Scan(ctx, 0, pattern, scanBatch).Iterator()
	batch := make([]string, 0, scanBatch)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		n, err := c.rdb.Del(ctx, batch...).Result()
		if err != nil {
			log.Warn().Err(err).Str("pattern", pattern).Msg("cache del pattern")
		}
		deleted += int(n)
		batch = batch[:0]
	}
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			flush()
		}
	}
	flush()
	if err := iter.Err(); err != nil {
		log.Warn().Err(err).Str("pattern", pattern).Msg("cache scan")
	}
	return deleted
}

// Exists indica si la llave existe.
func (c *RedisCache) Exists(ctx context.Context, key string) bool {
	if c.rdb == nil {
		return false
	}
	n, err := c.rdb.Exists(ctx, key).Result()
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache exists")
		return false
	}
	return n > 0
}
