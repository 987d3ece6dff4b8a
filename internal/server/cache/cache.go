// Package cache holds computed API responses in memory for a short TTL.
//
// Keys start with the catalog generation, so once a new snapshot is
// published no request can be answered from an older one, even before
// the server flushes the cache.
package cache

import (
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is a TTL cache with hit and miss counters.
type Cache struct {
	store  *gocache.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

// Stats is a point-in-time view of the cache.
type Stats struct {
	ItemCount int   `json:"item_count"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
}

// New returns a cache whose entries live for ttl; expired entries are
// swept every cleanup.
func New(ttl, cleanup time.Duration) *Cache {
	return &Cache{store: gocache.New(ttl, cleanup)}
}

// Key joins the generation, route and request parts into one key.
func Key(generation uint64, route string, parts ...string) string {
	return strings.Join(append([]string{strconv.FormatUint(generation, 10), route}, parts...), ":")
}

// Get looks up key and counts the hit or miss.
func (c *Cache) Get(key string) (any, bool) {
	v, ok := c.store.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Set stores value under key for the default TTL.
func (c *Cache) Set(key string, value any) {
	c.store.SetDefault(key, value)
}

// Remember returns the value under key, computing and storing it on a
// miss. Errors are returned and not cached. Concurrent misses may each
// compute the value.
func (c *Cache) Remember(key string, compute func() (any, error)) (any, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		return nil, err
	}
	c.Set(key, v)
	return v, nil
}

// Delete drops key.
func (c *Cache) Delete(key string) {
	c.store.Delete(key)
}

// Clear drops every entry. The counters are kept.
func (c *Cache) Clear() {
	c.store.Flush()
}

// ItemCount returns the number of entries, including expired ones not
// yet swept.
func (c *Cache) ItemCount() int {
	return c.store.ItemCount()
}

// GetStats returns the entry count and counters.
func (c *Cache) GetStats() Stats {
	return Stats{
		ItemCount: c.store.ItemCount(),
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
	}
}
