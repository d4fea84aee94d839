// Package registry holds the item/tile/entity catalog: the static,
// read-only definition of every id that can appear in a map.
// Entries are resolved once at load time into typed values so the
// simulation never re-parses catalog data per tick.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrLookupMiss is returned when an id has no catalog entry.
var ErrLookupMiss = errors.New("registry: no catalog entry")

// Catalog is a concurrency-safe set of entries keyed by id.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{entries: make(map[string]Entry)}
}

// Register adds an entry. Returns an error if the id is empty or already registered.
func (c *Catalog) Register(e Entry) error {
	if e.ID == "" {
		return errors.New("registry: entry id is empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[e.ID]; exists {
		return fmt.Errorf("registry: entry %q already registered", e.ID)
	}
	c.entries[e.ID] = e
	return nil
}

// MustRegister is like Register but panics on error.
func (c *Catalog) MustRegister(e Entry) {
	if err := c.Register(e); err != nil {
		panic(err)
	}
}

// Lookup returns the entry for id. A miss is never fatal; callers treat it as "no effect".
func (c *Catalog) Lookup(id string) (Entry, bool) {
	if c == nil || id == "" {
		return Entry{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[id]
	return e, ok
}

// Get is Lookup returning ErrLookupMiss for unknown ids.
func (c *Catalog) Get(id string) (Entry, error) {
	e, ok := c.Lookup(id)
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrLookupMiss, id)
	}
	return e, nil
}

// List returns all entries sorted by id.
func (c *Catalog) List() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		result = append(result, e)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// FindPlayer returns the first entry of kind player, by id order.
func (c *Catalog) FindPlayer() (Entry, bool) {
	for _, e := range c.List() {
		if e.Kind == KindPlayer {
			return e, true
		}
	}
	return Entry{}, false
}
