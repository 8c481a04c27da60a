package resolve

import (
	"sync"
	"time"
)

// Cache is an expiring name→id store for confirmed resolutions. It keeps
// two independent key spaces: a flat one for top-level resources (boards)
// and a scoped one for children (lists and cards under a board), so that
// a list named "To Do" on one board never collides with another board's
// list of the same name.
//
// Expiry is lazy: there is no background sweep, an expired entry is
// purged by the read that observes it.
type Cache struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	flat   map[string]entry
	scoped map[string]map[string]entry

	hits    int64
	misses  int64
	expired int64
}

type entry struct {
	id       string
	storedAt time.Time
}

// CacheStats is a point-in-time snapshot of cache contents and counters.
type CacheStats struct {
	FlatEntries   int           `json:"flat_entries"`
	Scopes        int           `json:"scopes"`
	ScopedEntries int           `json:"scoped_entries"`
	Hits          int64         `json:"hits"`
	Misses        int64         `json:"misses"`
	Expired       int64         `json:"expired"`
	TTL           time.Duration `json:"ttl"`
}

// NewCache creates a cache whose entries live for ttl.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:    ttl,
		now:    time.Now,
		flat:   make(map[string]entry),
		scoped: make(map[string]map[string]entry),
	}
}

func (c *Cache) valid(e entry) bool {
	return c.now().Sub(e.storedAt) < c.ttl
}

// Get looks up a top-level name. A hit is only reported for a live entry;
// an expired one is purged as a side effect.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := normalizeName(key)
	e, ok := c.flat[k]
	if !ok {
		c.misses++
		return "", false
	}
	if !c.valid(e) {
		delete(c.flat, k)
		c.expired++
		c.misses++
		return "", false
	}
	c.hits++
	return e.id, true
}

// Set stores a confirmed top-level resolution.
func (c *Cache) Set(key, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flat[normalizeName(key)] = entry{id: id, storedAt: c.now()}
}

// GetScoped looks up a child name under a parent scope.
func (c *Cache) GetScoped(scope, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := normalizeName(scope)
	k := normalizeName(key)
	children, ok := c.scoped[s]
	if !ok {
		c.misses++
		return "", false
	}
	e, ok := children[k]
	if !ok {
		c.misses++
		return "", false
	}
	if !c.valid(e) {
		delete(children, k)
		c.expired++
		c.misses++
		return "", false
	}
	c.hits++
	return e.id, true
}

// SetScoped stores a confirmed child resolution under a parent scope.
func (c *Cache) SetScoped(scope, key, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := normalizeName(scope)
	children, ok := c.scoped[s]
	if !ok {
		children = make(map[string]entry)
		c.scoped[s] = children
	}
	children[normalizeName(key)] = entry{id: id, storedAt: c.now()}
}

// InvalidateScope drops every child cached under scope and best-effort
// removes the scope's own top-level mapping, found by reverse value scan.
// Used when a parent's structure is known to have changed (card moved,
// renamed, archived).
func (c *Cache) InvalidateScope(scope string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.scoped, normalizeName(scope))
	for k, e := range c.flat {
		if e.id == scope {
			delete(c.flat, k)
		}
	}
}

// Clear drops everything but keeps the counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flat = make(map[string]entry)
	c.scoped = make(map[string]map[string]entry)
}

// Stats returns a snapshot of cache contents and hit/miss counters.
// Expired-but-unread entries still count as present.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	scopedEntries := 0
	for _, children := range c.scoped {
		scopedEntries += len(children)
	}
	return CacheStats{
		FlatEntries:   len(c.flat),
		Scopes:        len(c.scoped),
		ScopedEntries: scopedEntries,
		Hits:          c.hits,
		Misses:        c.misses,
		Expired:       c.expired,
		TTL:           c.ttl,
	}
}
