package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listing struct {
	IDs   []string `json:"ids"`
	Total int64    `json:"total"`
}

func setupRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	c := NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCacheRoundTrip(t *testing.T) {
	c, mr := setupRedis(t)
	ctx := context.Background()

	key := c.Key(ctx, "opportunities", "type=job&page=1")
	assert.Equal(t, "opportunities:v0:type=job&page=1", key)

	var miss listing
	hit, err := c.GetJSON(ctx, key, &miss)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.SetJSON(ctx, key, listing{IDs: []string{"a"}, Total: 1}, time.Minute))

	var got listing
	hit, err = c.GetJSON(ctx, key, &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, int64(1), got.Total)

	mr.FastForward(2 * time.Minute)
	hit, _ = c.GetJSON(ctx, key, &got)
	assert.False(t, hit, "ttl elapsed")
}

func TestRedisCacheInvalidate(t *testing.T) {
	c, _ := setupRedis(t)
	ctx := context.Background()

	before := c.Key(ctx, "opportunities", "all")
	require.NoError(t, c.SetJSON(ctx, before, listing{Total: 3}, time.Minute))

	require.NoError(t, c.Invalidate(ctx, "opportunities"))

	after := c.Key(ctx, "opportunities", "all")
	assert.NotEqual(t, before, after)

	var got listing
	hit, err := c.GetJSON(ctx, after, &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisCacheDegradesWhenDown(t *testing.T) {
	c, mr := setupRedis(t)
	ctx := context.Background()
	mr.Close()

	var got listing
	hit, err := c.GetJSON(ctx, "k", &got)
	assert.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, c.SetJSON(ctx, "k", listing{}, time.Minute))
	assert.Error(t, c.Ping(ctx))
}

func TestNoop(t *testing.T) {
	var c Cache = Noop{}
	hit, err := c.GetJSON(context.Background(), "k", &listing{})
	assert.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "ns:x", c.Key(context.Background(), "ns", "x"))
}
