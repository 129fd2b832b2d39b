package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/domain"
)

func TestNewRedisStatsCacheDisabled(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { _ = client.Close() })

	assert.Nil(t, NewRedisStatsCache(nil, time.Minute))
	assert.Nil(t, NewRedisStatsCache(client, 0))
	assert.NotNil(t, NewRedisStatsCache(client, time.Minute))
}

func TestNilCacheIsNoop(t *testing.T) {
	var c *RedisStatsCache
	ctx := context.Background()

	stats, gen, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Zero(t, gen)
	assert.Nil(t, stats)
	assert.NoError(t, c.Set(ctx, gen, domain.Stats{ActiveCases: 1}))
	assert.NoError(t, c.Invalidate(ctx))
}

func TestStatsKeyPerGeneration(t *testing.T) {
	assert.Equal(t, "complaints:stats:v2:0", statsKey(0))
	assert.NotEqual(t, statsKey(1), statsKey(2))
}

func TestUnreachableRedisSurfacesErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	c := NewRedisStatsCache(client, time.Minute)
	ctx := context.Background()

	stats, _, err := c.Get(ctx)
	assert.Nil(t, stats)
	assert.ErrorContains(t, err, "read stats cache")
	assert.Error(t, c.Set(ctx, 0, domain.Stats{}))
	assert.Error(t, c.Invalidate(ctx))
}
