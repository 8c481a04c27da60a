package resolve

import (
	"testing"
	"time"
)

// testClock lets cache tests advance time manually.
type testClock struct {
	t time.Time
}

func (c *testClock) now() time.Time { return c.t }

func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCache(ttl time.Duration) (*Cache, *testClock) {
	clock := &testClock{t: time.Unix(1700000000, 0)}
	c := NewCache(ttl)
	c.now = clock.now
	return c, clock
}

func TestCacheGetSet(t *testing.T) {
	c, _ := newTestCache(15 * time.Minute)

	if _, ok := c.Get("Marketing"); ok {
		t.Fatal("Get on empty cache reported a hit")
	}
	c.Set("Marketing", "brd1")
	id, ok := c.Get("Marketing")
	if !ok || id != "brd1" {
		t.Errorf("Get(Marketing) = %q, %v, want brd1, true", id, ok)
	}
}

func TestCacheKeyNormalization(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	c.Set("  MARKETING  ", "brd1")
	if id, ok := c.Get("marketing"); !ok || id != "brd1" {
		t.Errorf("normalized Get = %q, %v, want brd1, true", id, ok)
	}

	c.SetScoped("BRD1", " To Do ", "lst1")
	if id, ok := c.GetScoped("brd1", "to do"); !ok || id != "lst1" {
		t.Errorf("normalized GetScoped = %q, %v, want lst1, true", id, ok)
	}
}

func TestCacheExpiry(t *testing.T) {
	ttl := 15 * time.Minute
	c, clock := newTestCache(ttl)
	c.Set("Marketing", "brd1")

	// Just inside the TTL: hit.
	clock.advance(ttl - time.Second)
	if _, ok := c.Get("Marketing"); !ok {
		t.Error("entry expired before its TTL")
	}

	// Past the TTL: miss, and the entry is purged.
	clock.advance(2 * time.Second)
	if _, ok := c.Get("Marketing"); ok {
		t.Error("expired entry reported as hit")
	}
	stats := c.Stats()
	if stats.FlatEntries != 0 {
		t.Errorf("expired entry not purged: %d flat entries", stats.FlatEntries)
	}
	if stats.Expired != 1 {
		t.Errorf("expired counter = %d, want 1", stats.Expired)
	}
}

func TestCacheScopedExpiry(t *testing.T) {
	ttl := time.Minute
	c, clock := newTestCache(ttl)
	c.SetScoped("brd1", "list:todo", "lst1")

	clock.advance(ttl + time.Second)
	if _, ok := c.GetScoped("brd1", "list:todo"); ok {
		t.Error("expired scoped entry reported as hit")
	}
	if got := c.Stats().ScopedEntries; got != 0 {
		t.Errorf("expired scoped entry not purged: %d entries", got)
	}
}

func TestCacheScopeIsolation(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	c.SetScoped("brd1", "To Do", "lst1")
	c.SetScoped("brd2", "To Do", "lst9")

	if id, _ := c.GetScoped("brd1", "To Do"); id != "lst1" {
		t.Errorf("brd1 scope = %q, want lst1", id)
	}
	if id, _ := c.GetScoped("brd2", "To Do"); id != "lst9" {
		t.Errorf("brd2 scope = %q, want lst9", id)
	}
}

func TestCacheInvalidateScope(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	c.Set("Marketing", "brd1")
	c.Set("Ops", "brd2")
	c.SetScoped("brd1", "To Do", "lst1")
	c.SetScoped("brd2", "To Do", "lst9")

	c.InvalidateScope("brd1")

	if _, ok := c.GetScoped("brd1", "To Do"); ok {
		t.Error("scoped children survived InvalidateScope")
	}
	// Reverse value scan drops the board's own flat mapping.
	if _, ok := c.Get("Marketing"); ok {
		t.Error("flat mapping for invalidated scope survived")
	}
	// Unrelated entries are untouched.
	if _, ok := c.Get("Ops"); !ok {
		t.Error("unrelated flat entry dropped")
	}
	if _, ok := c.GetScoped("brd2", "To Do"); !ok {
		t.Error("unrelated scoped entry dropped")
	}
}

func TestCacheClear(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	c.Set("Marketing", "brd1")
	c.SetScoped("brd1", "To Do", "lst1")
	c.Clear()

	stats := c.Stats()
	if stats.FlatEntries != 0 || stats.ScopedEntries != 0 {
		t.Errorf("Clear left %d flat, %d scoped entries", stats.FlatEntries, stats.ScopedEntries)
	}
}

func TestCacheStatsCounters(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	c.Set("a", "1")
	c.Get("a")
	c.Get("b")
	c.GetScoped("s", "x")

	stats := c.Stats()
	if stats.Hits != 1 {
		t.Errorf("hits = %d, want 1", stats.Hits)
	}
	if stats.Misses != 2 {
		t.Errorf("misses = %d, want 2", stats.Misses)
	}
}
