package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lvs170603/Quantum-Observer/internal/models"
	"github.com/redis/go-redis/v9"
)

// RedisOptions configures RedisCache.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
	Logger   *slog.Logger
}

// RedisCache stores JSON-encoded snapshots in Redis so that several server
// replicas share one view. Redis errors degrade to cache misses.
type RedisCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(ctx context.Context, opts RedisOptions) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
	}
	return NewRedisCacheWithClient(rdb, opts), nil
}

// NewRedisCacheWithClient wraps an existing client.
func NewRedisCacheWithClient(rdb *redis.Client, opts RedisOptions) *RedisCache {
	if opts.Prefix == "" {
		opts.Prefix = "qo:snapshot:"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &RedisCache{rdb: rdb, prefix: opts.Prefix, ttl: opts.TTL, logger: opts.Logger}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*models.Snapshot, bool) {
	data, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("redis get failed", "key", key, "error", err)
		return nil, false
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		c.logger.Warn("discarding undecodable cache entry", "key", key, "error", err)
		return nil, false
	}
	return &snap, true
}

func (c *RedisCache) Set(ctx context.Context, key string, snap *models.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		c.logger.Warn("encode snapshot for cache", "key", key, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("redis set failed", "key", key, "error", err)
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, key string) {
	if err := c.rdb.Del(ctx, c.prefix+key).Err(); err != nil {
		c.logger.Warn("redis del failed", "key", key, "error", err)
	}
}

// Purge deletes every key under the cache prefix.
func (c *RedisCache) Purge(ctx context.Context) {
	iter := c.rdb.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("redis scan failed", "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("redis purge failed", "error", err)
	}
}

// Close releases the Redis connection.
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
