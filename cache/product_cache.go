// Package cache keeps a read-through Redis copy of catalog products.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"minishop/models"
)

const productKeyPrefix = "minishop:product:"

// ProductLoader fetches a product from the source of truth on a cache miss.
type ProductLoader func(ctx context.Context, publicID string) (*models.Product, error)

// ProductCache serves products from Redis and collapses concurrent misses for
// the same product into one load. Redis failures degrade to the loader.
type ProductCache struct {
	rdb   redis.Cmdable
	ttl   time.Duration
	group singleflight.Group
	log   *slog.Logger
}

func NewProductCache(rdb redis.Cmdable, ttl time.Duration, log *slog.Logger) *ProductCache {
	return &ProductCache{rdb: rdb, ttl: ttl, log: log}
}

// Connect parses a redis:// URL and checks the server answers.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

func ProductKey(publicID string) string {
	return productKeyPrefix + publicID
}

func (c *ProductCache) Get(ctx context.Context, publicID string, load ProductLoader) (*models.Product, error) {
	key := ProductKey(publicID)

	data, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var p models.Product
		if jsonErr := json.Unmarshal(data, &p); jsonErr == nil {
			return &p, nil
		}
	case !errors.Is(err, redis.Nil):
		c.log.Warn("product cache read failed", "key", key, "error", err)
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// shared by every collapsed caller, so one caller going away must not
		// fail the others
		ctx := context.WithoutCancel(ctx)
		p, err := load(ctx, publicID)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(p); err == nil {
			if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
				c.log.Warn("product cache write failed", "key", key, "error", err)
			}
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	p := *v.(*models.Product)
	return &p, nil
}

// Invalidate drops cached copies of the given products.
func (c *ProductCache) Invalidate(ctx context.Context, publicIDs ...string) {
	if len(publicIDs) == 0 {
		return
	}
	keys := make([]string, len(publicIDs))
	for i, id := range publicIDs {
		keys[i] = ProductKey(id)
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("product cache invalidate failed", "keys", keys, "error", err)
	}
}
