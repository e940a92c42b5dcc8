package idempotency

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/cache"
)

func stores(t *testing.T) map[string]Store {
	mr := miniredis.RunT(t)
	rc := cache.NewRedisCacheWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "idem:", time.Hour)
	t.Cleanup(func() { rc.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(time.Hour),
		"redis":  NewRedisStore(rc),
	}
}

func TestStore_FirstClaimWins(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			id, claimed, err := store.Claim(ctx, "abc")
			require.NoError(t, err)
			assert.True(t, claimed)
			assert.Equal(t, Pending, id)

			id, claimed, err = store.Claim(ctx, "abc")
			require.NoError(t, err)
			assert.False(t, claimed)
			assert.Equal(t, Pending, id)

			require.NoError(t, store.Complete(ctx, "abc", 7))

			id, claimed, err = store.Claim(ctx, "abc")
			require.NoError(t, err)
			assert.False(t, claimed)
			assert.Equal(t, int64(7), id)
		})
	}
}

func TestStore_ReleaseFreesKey(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, claimed, err := store.Claim(ctx, "failed")
			require.NoError(t, err)
			require.True(t, claimed)

			require.NoError(t, store.Release(ctx, "failed"))

			_, claimed, err = store.Claim(ctx, "failed")
			require.NoError(t, err)
			assert.True(t, claimed)
		})
	}
}

func TestStore_ConcurrentClaimsHaveOneWinner(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			var (
				wg      sync.WaitGroup
				mu      sync.Mutex
				winners int
			)
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, claimed, err := store.Claim(context.Background(), "race")
					assert.NoError(t, err)
					if claimed {
						mu.Lock()
						winners++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()
			assert.Equal(t, 1, winners)
		})
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore(time.Minute)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	_, _, err := store.Claim(ctx, "k")
	require.NoError(t, err)
	require.NoError(t, store.Complete(ctx, "k", 1))

	now = now.Add(2 * time.Minute)
	id, claimed, err := store.Claim(ctx, "k")
	require.NoError(t, err)
	assert.True(t, claimed)
	assert.Equal(t, Pending, id)
}

func TestKey(t *testing.T) {
	r := httptest.NewRequest("POST", "/orders", nil)
	r.Header.Set(Header, "  retry-1 ")
	assert.Equal(t, "retry-1", Key(r))
}
