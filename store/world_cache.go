package store

import "sort"

// WorldCache holds authoritative world snapshots keyed by Tick. Entries are
// inserted at most once per tick and never mutated or removed; re-inserting
// at an existing tick is a no-op (determinism guarantees it would be the
// same world anyway).
type WorldCache[W any] struct {
	data map[Tick]W
	keys []Tick // sorted ascending, kept in sync with data
}

// NewWorldCache returns a WorldCache seeded with (0, world0), per the AuthWorlds
// invariant that tick 0 is always present.
func NewWorldCache[W any](world0 W) *WorldCache[W] {
	c := &WorldCache[W]{
		data: map[Tick]W{0: world0},
		keys: []Tick{0},
	}
	return c
}

// Get returns the world stored at t, if any.
func (c *WorldCache[W]) Get(t Tick) (W, bool) {
	w, ok := c.data[t]
	return w, ok
}

// FloorEntry returns the largest tick <= t that is present, and its world.
// This always succeeds because tick 0 is seeded at construction.
func (c *WorldCache[W]) FloorEntry(t Tick) (Tick, W) {
	// keys is sorted ascending; find the rightmost key <= t.
	idx := sort.Search(len(c.keys), func(i int) bool { return c.keys[i] > t })
	idx--
	if idx < 0 {
		idx = 0 // tick 0 is always the floor for any t < 0, which cannot occur in practice
	}
	k := c.keys[idx]
	return k, c.data[k]
}

// InsertDerived stores world at tick t. Idempotent: if t is already
// present the call is a no-op.
func (c *WorldCache[W]) InsertDerived(t Tick, world W) {
	if _, exists := c.data[t]; exists {
		return
	}
	c.data[t] = world
	idx := sort.Search(len(c.keys), func(i int) bool { return c.keys[i] >= t })
	c.keys = append(c.keys, 0)
	copy(c.keys[idx+1:], c.keys[idx:])
	c.keys[idx] = t
}

// MaxKey returns the largest tick present in the cache.
func (c *WorldCache[W]) MaxKey() Tick {
	return c.keys[len(c.keys)-1]
}
