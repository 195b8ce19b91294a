package classify

import "sync"

// cache is the process-wide classification memo. Entries are never replaced
// or expired: an asset's display unit does not change within a session.
type cache struct {
	mu      sync.RWMutex
	entries map[string]bool
}

func newCache() *cache {
	return &cache{
		entries: make(map[string]bool),
	}
}

func (c *cache) get(key string) (bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.entries[key]
	return v, ok
}

// putIfAbsent stores v unless key already has an answer, and returns the stored answer.
func (c *cache) putIfAbsent(key string, v bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[key]; ok {
		return existing
	}
	c.entries[key] = v
	return v
}

func (c *cache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
