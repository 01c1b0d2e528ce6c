package provider

import (
	"sync"
	"time"

	"github.com/danielsht/flightclaims/internal/flight"
)

// cacheEntry holds one resolved flight and its expiry instant.
type cacheEntry struct {
	flight    *flight.NormalizedFlight
	expiresAt time.Time
}

// responseCache is the chain's in-process flight cache. Entries are never
// served past expiry; a live hit short-circuits the whole provider chain.
type responseCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	clock   Clock
	entries map[string]cacheEntry
}

func newResponseCache(ttl time.Duration, clock Clock) *responseCache {
	return &responseCache{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns a live cached flight, dropping the entry if it has expired.
func (c *responseCache) Get(key string) (*flight.NormalizedFlight, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.clock.Now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.flight, true
}

// Put stores a flight under the key for one TTL window.
func (c *responseCache) Put(key string, f *flight.NormalizedFlight) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{
		flight:    f,
		expiresAt: c.clock.Now().Add(c.ttl),
	}
}
