// Package cache holds the process-local validation cache.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/ErlanBelekov/phone-insights/internal/domain"
)

type entry struct {
	result     domain.ValidationResult
	insertedAt time.Time
}

// Memory is a time-bounded validation cache. Entries expire lazily on read;
// Sweep reclaims the memory held by stale entries.
type Memory struct {
	mu      sync.RWMutex
	entries map[domain.CacheKey]entry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		entries: make(map[domain.CacheKey]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns domain.ErrCacheMiss when key is absent or stale.
func (c *Memory) Get(_ context.Context, key domain.CacheKey) (domain.ValidationResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e, ok := c.entries[key]; ok && c.fresh(e) {
		return e.result, nil
	}
	return domain.ValidationResult{}, domain.ErrCacheMiss
}

// Put overwrites any existing entry for key; the last writer wins.
func (c *Memory) Put(_ context.Context, key domain.CacheKey, result domain.ValidationResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{result: result, insertedAt: c.now()}
	return nil
}

// Sweep deletes stale entries and returns how many were removed.
func (c *Memory) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for k, e := range c.entries {
		if !c.fresh(e) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Memory) fresh(e entry) bool {
	return c.now().Sub(e.insertedAt) < c.ttl
}
