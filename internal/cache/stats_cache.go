// Package cache keeps computed complaint statistics in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/complaint-service/internal/domain"
)

const (
	generationKey = "complaints:stats:gen"
	statsKeyFmt   = "complaints:stats:v2:%d"
)

// RedisStatsCache stores the backlog summary under a key derived from a
// generation counter. Invalidate bumps the counter, so a Set computed before
// the bump lands under a key nobody reads anymore.
type RedisStatsCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisStatsCache returns nil when client is nil or ttl is not positive.
// A nil cache never hits and ignores writes.
func NewRedisStatsCache(client redis.Cmdable, ttl time.Duration) *RedisStatsCache {
	if client == nil || ttl <= 0 {
		return nil
	}
	return &RedisStatsCache{client: client, ttl: ttl}
}

// Get returns the cached stats for the current generation, or nil on a miss,
// together with that generation.
func (c *RedisStatsCache) Get(ctx context.Context) (*domain.Stats, int64, error) {
	if c == nil {
		return nil, 0, nil
	}
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, fmt.Errorf("read stats cache generation: %w", err)
	}
	raw, err := c.client.Get(ctx, statsKey(gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, nil
	}
	if err != nil {
		return nil, gen, fmt.Errorf("read stats cache: %w", err)
	}
	var stats domain.Stats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, gen, fmt.Errorf("decode stats cache: %w", err)
	}
	return &stats, gen, nil
}

// Set stores stats computed under generation for the configured TTL.
func (c *RedisStatsCache) Set(ctx context.Context, generation int64, stats domain.Stats) error {
	if c == nil {
		return nil
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode stats cache: %w", err)
	}
	return c.client.Set(ctx, statsKey(generation), raw, c.ttl).Err()
}

// Invalidate starts a new generation.
func (c *RedisStatsCache) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Incr(ctx, generationKey).Err()
}

func statsKey(generation int64) string {
	return fmt.Sprintf(statsKeyFmt, generation)
}
