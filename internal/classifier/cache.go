package classifier

import (
	"sync"
	"time"

	"moderd/pkg/types"
)

// sweepThreshold bounds how large the cache may grow before put()
// evicts expired entries inline.
const sweepThreshold = 4096

// resultCache memoizes classification verdicts per exact text for a
// bounded TTL. Reported content tends to arrive repeatedly (the same
// review reported by several users), so the cache saves two backend
// calls per duplicate.
type resultCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

type cacheEntry struct {
	result types.Classification
	at     time.Time
}

// newResultCache returns nil when ttl is non-positive; all methods are
// nil-receiver safe so callers need no guard.
func newResultCache(ttl time.Duration) *resultCache {
	if ttl <= 0 {
		return nil
	}
	return &resultCache{ttl: ttl, entries: make(map[string]cacheEntry)}
}

func (c *resultCache) get(text string) (types.Classification, bool) {
	if c == nil {
		return types.Classification{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[text]
	if !ok {
		return types.Classification{}, false
	}
	if time.Since(e.at) > c.ttl {
		delete(c.entries, text)
		return types.Classification{}, false
	}
	return e.result, true
}

func (c *resultCache) put(text string, result types.Classification) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= sweepThreshold {
		now := time.Now()
		for k, e := range c.entries {
			if now.Sub(e.at) > c.ttl {
				delete(c.entries, k)
			}
		}
	}
	c.entries[text] = cacheEntry{result: result, at: time.Now()}
}

func (c *resultCache) len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
