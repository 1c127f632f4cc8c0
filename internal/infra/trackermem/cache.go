// Package trackermem holds the live tracker cache: the in-memory map from
// batch id to its telemetry tree and order summary. Entries are never
// evicted; the map grows with the number of distinct batches seen during the
// process lifetime, and a restart clears it for hydration to rebuild.
package trackermem

import (
	"context"
	"sync"

	"github.com/vedant461/Eurekathon-ChainIQ/internal/domain"
)

type Cache struct {
	mu      sync.RWMutex
	entries map[string]*domain.TrackerEntry
	locks   map[string]*sync.Mutex
}

func New() *Cache {
	return &Cache{
		entries: make(map[string]*domain.TrackerEntry),
		locks:   make(map[string]*sync.Mutex),
	}
}

// Get returns a deep-copied snapshot, so readers never alias live state.
func (c *Cache) Get(batchID string) (domain.TrackerEntry, bool) {
	c.mu.RLock()
	entry, ok := c.entries[batchID]
	c.mu.RUnlock()
	if !ok {
		return domain.TrackerEntry{}, false
	}
	return entry.Clone(), true
}

// Put overwrites the entry under the batch lock, so it cannot swap the
// pointer out from under an in-flight Mutate on the same batch.
func (c *Cache) Put(batchID string, entry domain.TrackerEntry) {
	unlock := c.lockBatch(batchID)
	defer unlock()

	stored := entry.Clone()
	c.mu.Lock()
	c.entries[batchID] = &stored
	c.mu.Unlock()
}

// Mutate runs fn against the live entry under that batch's lock. Returns
// false when the batch is not cached. Concurrent mutations of the same batch
// serialize; distinct batches do not contend.
func (c *Cache) Mutate(batchID string, fn func(*domain.TrackerEntry)) bool {
	unlock := c.lockBatch(batchID)
	defer unlock()

	c.mu.RLock()
	entry, ok := c.entries[batchID]
	c.mu.RUnlock()
	if !ok {
		return false
	}
	fn(entry)
	return true
}

// Ensure returns the cached entry or builds one under the batch lock, so two
// concurrent misses for the same batch hydrate once. The builder runs outside
// the map lock; its durable-store I/O never blocks other batches.
func (c *Cache) Ensure(ctx context.Context, batchID string, build func(context.Context) (domain.TrackerEntry, error)) (domain.TrackerEntry, error) {
	unlock := c.lockBatch(batchID)
	defer unlock()

	c.mu.RLock()
	entry, ok := c.entries[batchID]
	c.mu.RUnlock()
	if ok {
		return entry.Clone(), nil
	}

	built, err := build(ctx)
	if err != nil {
		return domain.TrackerEntry{}, err
	}
	stored := built.Clone()
	c.mu.Lock()
	c.entries[batchID] = &stored
	c.mu.Unlock()
	return built, nil
}

// Len reports the number of live entries; growth is unbounded by design.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) lockBatch(batchID string) func() {
	c.mu.Lock()
	l, ok := c.locks[batchID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[batchID] = l
	}
	c.mu.Unlock()
	l.Lock()
	return l.Unlock
}
