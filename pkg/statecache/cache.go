// Package statecache keeps the latest simulation snapshot, computes
// structural diffs between consecutive snapshots, and encodes snapshots for
// network transport.
package statecache

import (
	"sync"
	"time"

	"github.com/solflu/outbreak/pkg/simulation"
)

// Cache holds the current and previous snapshot of one simulation.
type Cache struct {
	mu         sync.Mutex
	ttl        time.Duration
	current    *simulation.Snapshot
	previous   *simulation.Snapshot
	lastUpdate time.Time
}

// New creates a cache whose snapshots are considered fresh for ttl.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Second
	}
	return &Cache{ttl: ttl}
}

// Update stores a new snapshot, rotating the old one into the previous slot.
func (c *Cache) Update(snapshot simulation.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.previous = c.current
	c.current = &snapshot
	c.lastUpdate = time.Now()
}

// Get returns the cached snapshot if it is still fresh.
func (c *Cache) Get() (*simulation.Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil || time.Since(c.lastUpdate) >= c.ttl {
		return nil, false
	}
	return c.current, true
}

// Diff returns the difference between the previous and current snapshot, or
// nil when fewer than two snapshots have been seen.
func (c *Cache) Diff() *Diff {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.previous == nil || c.current == nil {
		return nil
	}
	return computeDiff(c.previous, c.current)
}
