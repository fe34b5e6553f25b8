package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSetAndGet(t *testing.T) {
	c := New(0)

	c.Set("k", 42, time.Minute)
	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestSetOverwrites(t *testing.T) {
	c := New(0)

	c.Set("k", "first", time.Minute)
	c.Set("k", "second", time.Minute)

	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "second", v)
}

func TestExpiry(t *testing.T) {
	c := New(0)

	c.Set("k", "v", 30*time.Millisecond)

	v, ok := c.Get("k")
	assert.True(t, ok, "value should be live before the TTL elapses")
	assert.Equal(t, "v", v)

	time.Sleep(40 * time.Millisecond)

	_, ok = c.Get("k")
	assert.False(t, ok, "value should be gone after the TTL elapses")
	assert.Equal(t, 0, c.Len(), "expired entry is removed on Get")
}

func TestClear(t *testing.T) {
	c := New(0)

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Clear()

	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestSweepRemovesExpiredEntriesWithoutReads(t *testing.T) {
	c := New(10 * time.Millisecond)
	defer c.Stop()

	c.Set("stale", "v", 5*time.Millisecond)
	c.Set("live", "v", time.Minute)

	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 1, c.Len(), "sweep should drop only the expired entry")
	_, ok := c.Get("live")
	assert.True(t, ok)
}

func TestSweepDisabled(t *testing.T) {
	c := New(0)

	c.Set("stale", "v", 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	// No sweep runs, so the entry lingers until read.
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("stale")
	assert.False(t, ok)

	// Stop must be safe without a running sweep.
	c.Stop()
}
