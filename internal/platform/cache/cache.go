// Package cache memoizes the COUNT(*) total for a list query for a short
// TTL, so repeated pagination through the same filter doesn't re-run the
// count query on every page. It is opt-in (config.CacheEnabled) and never
// sits on the path of a correctness invariant: a cache miss or a disabled
// cache simply means the count query runs, exactly as if caching were
// absent. Adapted from orchid/pkg/redis.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection settings for the cache.
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

// TotalCountCache memoizes list-query row counts.
type TotalCountCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger ectologger.Logger
}

// NewTotalCountCache connects to Redis and verifies reachability.
func NewTotalCountCache(cfg Config, logger ectologger.Logger) (*TotalCountCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &TotalCountCache{rdb: rdb, ttl: cfg.TTL, logger: logger}, nil
}

// Get returns the cached total for key, if present and fresh.
func (c *TotalCountCache) Get(ctx context.Context, key string) (int64, bool) {
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		return 0, false
	}
	total, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return total, true
}

// Set stores total under key for the configured TTL.
func (c *TotalCountCache) Set(ctx context.Context, key string, total int64) {
	if err := c.rdb.Set(ctx, key, total, c.ttl).Err(); err != nil {
		c.logger.WithContext(ctx).WithError(err).Warn("failed to cache query total count")
	}
}

func (c *TotalCountCache) Close() error {
	return c.rdb.Close()
}
