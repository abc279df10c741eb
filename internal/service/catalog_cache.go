package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/careacademy/academy-backend/internal/config"
	"github.com/redis/go-redis/v9"
)

// CatalogCache stores rendered public catalog responses.
type CatalogCache interface {
	// Version returns the current catalog generation used in cache keys.
	Version(ctx context.Context) (int64, error)
	// Get decodes the entry at key into dst and reports whether it existed.
	Get(ctx context.Context, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, key string, v interface{}) error
	// Invalidate starts a new generation, orphaning every existing entry.
	Invalidate(ctx context.Context) error
}

type redisCatalogCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCatalogCache creates a CatalogCache backed by Redis.
func NewRedisCatalogCache(rdb *redis.Client, ttl time.Duration) CatalogCache {
	return &redisCatalogCache{rdb: rdb, ttl: ttl}
}

func (c *redisCatalogCache) Version(ctx context.Context) (int64, error) {
	v, err := c.rdb.Get(ctx, config.CacheKey.CatalogVersionKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (c *redisCatalogCache) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *redisCatalogCache) Set(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, data, c.ttl).Err()
}

func (c *redisCatalogCache) Invalidate(ctx context.Context) error {
	return c.rdb.Incr(ctx, config.CacheKey.CatalogVersionKey()).Err()
}
