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

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewRedisCacheWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test:", time.Minute)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestRedisCache_SetNXAndGet(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	stored, err := c.SetNX(ctx, "k", 41)
	require.NoError(t, err)
	assert.True(t, stored)

	stored, err = c.SetNX(ctx, "k", 42)
	require.NoError(t, err)
	assert.False(t, stored)

	var got int
	require.NoError(t, c.Get(ctx, "k", &got))
	assert.Equal(t, 41, got)
	assert.True(t, mr.Exists("test:k"))
	assert.Equal(t, time.Minute, mr.TTL("test:k"))
}

func TestRedisCache_MissAndExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	var got int
	assert.ErrorIs(t, c.Get(ctx, "absent", &got), ErrMiss)

	_, err := c.SetNX(ctx, "short", 1)
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, c.Get(ctx, "short", &got), ErrMiss)
}

func TestRedisCache_SetOverwritesAndDelete(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	_, err := c.SetNX(ctx, "k", 0)
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, "k", 9))

	var got int
	require.NoError(t, c.Get(ctx, "k", &got))
	assert.Equal(t, 9, got)
	assert.Equal(t, time.Minute, mr.TTL("test:k"))

	require.NoError(t, c.Delete(ctx, "k"))
	assert.False(t, mr.Exists("test:k"))
	require.NoError(t, c.Delete(ctx, "k"))
}
