package exchange

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryStore keeps pending exchanges in-process. Suitable for
// single-node deployments and tests; the ttlcache mutex makes
// GetAndDelete the same atomic consume the redis store provides.
type MemoryStore struct {
	cache *ttlcache.Cache[string, Entry]
}

func NewMemoryStore(defaultTTL time.Duration) *MemoryStore {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, Entry](defaultTTL),
		ttlcache.WithDisableTouchOnHit[string, Entry](),
	)
	go cache.Start()

	return &MemoryStore{cache: cache}
}

// Stop terminates the background expiry loop.
func (m *MemoryStore) Stop() {
	m.cache.Stop()
}

func (m *MemoryStore) Put(_ context.Context, state string, e Entry, ttl time.Duration) error {
	m.cache.Set(state, e, ttl)
	return nil
}

func (m *MemoryStore) Consume(_ context.Context, state string) (*Entry, error) {
	item, ok := m.cache.GetAndDelete(state)
	if !ok || item == nil || item.IsExpired() {
		return nil, ErrNotFound
	}

	e := item.Value()
	return &e, nil
}
