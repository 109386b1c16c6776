package reports

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const cachePrefix = "reports:"

// Cache stores rendered report payloads in Redis. A nil *Cache is valid and
// disables caching.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{client: client, ttl: ttl, logger: logger}
}

// Get unmarshals a cached report into dest, returning false on miss. Cache
// failures are logged and treated as misses.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	if c == nil || c.client == nil {
		return false
	}
	raw, err := c.client.Get(ctx, cachePrefix+key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		c.logger.WarnContext(ctx, "report cache read failed", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.WarnContext(ctx, "report cache decode failed", "key", key, "error", err)
		return false
	}
	return true
}

// Set stores a report payload under key for the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, value any) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.WarnContext(ctx, "report cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, cachePrefix+key, raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "report cache write failed", "key", key, "error", err)
	}
}

// InvalidateReports drops every cached report. Called by the posting engine
// after any ledger mutation.
func (c *Cache) InvalidateReports(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	iter := c.client.Scan(ctx, 0, cachePrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.WarnContext(ctx, "report cache scan failed", "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.WarnContext(ctx, "report cache invalidation failed", "error", err)
	}
}
