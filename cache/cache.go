// Package cache provides a small TTL key/value cache shared by the stats
// aggregator and the ingestion pipeline.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// Cache maps string keys to values with a per-key expiry. Expired entries
// are removed lazily on Get and by a periodic sweep so memory stays bounded
// even for keys that are never re-read.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	ticker  *time.Ticker
	done    chan struct{}
}

// New creates a cache. sweepInterval controls the background sweep; an
// interval <= 0 disables it, leaving only lazy expiry on Get.
func New(sweepInterval time.Duration) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		done:    make(chan struct{}),
	}
	if sweepInterval > 0 {
		c.ticker = time.NewTicker(sweepInterval)
		go c.sweepLoop()
	}
	return c
}

// Get returns the value for key if present and not expired. An expired
// entry is removed on the spot.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !time.Now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key with the given TTL, overwriting any existing
// entry.
func (c *Cache) Set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
}

// Clear removes every entry unconditionally.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len reports the number of entries currently held, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stop shuts down the background sweep. Safe to call when the sweep was
// never started.
func (c *Cache) Stop() {
	if c.ticker == nil {
		return
	}
	c.ticker.Stop()
	close(c.done)
}

func (c *Cache) sweepLoop() {
	for {
		select {
		case <-c.ticker.C:
			c.sweep()
		case <-c.done:
			return
		}
	}
}

func (c *Cache) sweep() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}
