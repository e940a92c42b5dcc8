// Package idempotency remembers which order an Idempotency-Key produced so a
// retried POST /orders replays the original instead of ordering twice.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/cache"
)

const Header = "Idempotency-Key"

func Key(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(Header))
}

// Pending is the order id recorded for a key whose first request has not
// finished yet.
const Pending int64 = 0

// Store claims a key before the order is created, so a concurrent retry with
// the same key never creates a second order.
type Store interface {
	// Claim reserves key for the caller. When the key is already taken it
	// returns the recorded order id, which is Pending while the first request
	// is still running, and claimed=false.
	Claim(ctx context.Context, key string) (orderID int64, claimed bool, err error)
	// Complete records the order a claimed key produced.
	Complete(ctx context.Context, key string, orderID int64) error
	// Release frees a claimed key whose request failed, so it may be retried.
	Release(ctx context.Context, key string) error
}

type memoryEntry struct {
	orderID int64
	expires time.Time
}

type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, entries: make(map[string]memoryEntry), now: time.Now}
}

func (m *MemoryStore) Claim(_ context.Context, key string) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.live(key); ok {
		return e.orderID, false, nil
	}
	m.entries[key] = memoryEntry{orderID: Pending, expires: m.now().Add(m.ttl)}
	return Pending, true, nil
}

func (m *MemoryStore) Complete(_ context.Context, key string, orderID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{orderID: orderID, expires: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

// live drops key if it has expired. Caller holds m.mu.
func (m *MemoryStore) live(key string) (memoryEntry, bool) {
	e, ok := m.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if m.ttl > 0 && !m.now().Before(e.expires) {
		delete(m.entries, key)
		return memoryEntry{}, false
	}
	return e, true
}

type RedisStore struct {
	cache *cache.RedisCache
}

func NewRedisStore(c *cache.RedisCache) *RedisStore {
	return &RedisStore{cache: c}
}

func (s *RedisStore) Claim(ctx context.Context, key string) (int64, bool, error) {
	claimed, err := s.cache.SetNX(ctx, key, Pending)
	if err != nil {
		return 0, false, err
	}
	if claimed {
		return Pending, true, nil
	}

	var id int64
	err = s.cache.Get(ctx, key, &id)
	if errors.Is(err, cache.ErrMiss) {
		return 0, false, fmt.Errorf("idempotency key %q expired while being claimed", key)
	}
	if err != nil {
		return 0, false, err
	}
	return id, false, nil
}

func (s *RedisStore) Complete(ctx context.Context, key string, orderID int64) error {
	return s.cache.Set(ctx, key, orderID)
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	return s.cache.Delete(ctx, key)
}
