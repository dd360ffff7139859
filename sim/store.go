package sim

import (
	"sort"
	"sync"
	"time"

	"github.com/chimerakang/hotspot-go/apierror"
)

// collection is one in-memory table. T is stored by value behind pointers the
// collection owns; every read hands out a copy so callers cannot mutate the
// store from outside.
type collection[T any] struct {
	mu    sync.RWMutex
	name  string
	items map[int64]*T
	id    func(*T) int64
	// stamp assigns identity and timestamps. On create both id and
	// CreatedAt are set; on update only UpdatedAt moves.
	stamp func(item *T, id int64, now time.Time, create bool)
}

func newCollection[T any](name string, id func(*T) int64, stamp func(*T, int64, time.Time, bool)) *collection[T] {
	return &collection[T]{
		name:  name,
		items: make(map[int64]*T),
		id:    id,
		stamp: stamp,
	}
}

// nextID is the highest existing id plus one. Ids of deleted records are
// reused when the deleted record held the maximum; callers must not treat ids
// as permanently unique.
func (c *collection[T]) nextID() int64 {
	var max int64
	for id := range c.items {
		if id > max {
			max = id
		}
	}
	return max + 1
}

// list returns copies of all records matching filter (nil matches all),
// sorted by id ascending.
func (c *collection[T]) list(filter func(*T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, 0, len(c.items))
	for _, item := range c.items {
		if filter == nil || filter(item) {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return c.id(&out[i]) < c.id(&out[j]) })
	return out
}

func (c *collection[T]) get(id int64) (*T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[id]
	if !ok {
		return nil, apierror.NotFound(c.name, id)
	}
	cp := *item
	return &cp, nil
}

// insert stores item under a fresh id and returns a copy.
func (c *collection[T]) insert(item *T, now time.Time) *T {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID()
	c.stamp(item, id, now, true)
	cp := *item
	c.items[id] = &cp
	out := cp
	return &out
}

// seed stores item under its existing id, for fixtures.
func (c *collection[T]) seed(item *T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *item
	c.items[c.id(&cp)] = &cp
}

// update applies merge to the stored record, moves UpdatedAt, and returns a
// copy. Merge sees the live record and overwrites only the fields it was
// given.
func (c *collection[T]) update(id int64, now time.Time, merge func(*T)) (*T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[id]
	if !ok {
		return nil, apierror.NotFound(c.name, id)
	}
	merge(item)
	c.stamp(item, id, now, false)
	cp := *item
	return &cp, nil
}

// remove hard-deletes the record. Records referencing it through foreign keys
// are left untouched; there is no cascade.
func (c *collection[T]) remove(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[id]; !ok {
		return apierror.NotFound(c.name, id)
	}
	delete(c.items, id)
	return nil
}

func (c *collection[T]) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
