// Package collection provides Collection, an ordered, identity-unique container
// that reports every structural change as added/removed notifications.
package collection

import (
	"errors"
	"fmt"

	"github.com/zjrosen/diagramkit/internal/events"
)

var (
	ErrIndexOutOfRange = errors.New("collection index out of range")
	ErrDuplicate       = errors.New("item already present at another index")
)

// Identifiable is anything with a stable identity.
type Identifiable interface {
	ID() string
}

// Collection is an ordered set of items keyed by ID. Order is authoritative:
// the slice of IDs is the source of truth for indexes, the map only serves lookups.
//
// The Internal variants mutate without notifying; owning entities use them when
// wiring parent/child structure that must not re-enter their own public events.
type Collection[T Identifiable] struct {
	order   []string
	items   map[string]T
	added   *events.Typed[T]
	removed *events.Typed[T]
}

// New creates an empty collection.
func New[T Identifiable]() *Collection[T] {
	return &Collection[T]{
		items:   make(map[string]T),
		added:   events.NewTyped[T](),
		removed: events.NewTyped[T](),
	}
}

// Added is the stream of inserted items.
func (c *Collection[T]) Added() *events.Typed[T] { return c.added }

// Removed is the stream of evicted items.
func (c *Collection[T]) Removed() *events.Typed[T] { return c.removed }

// OnAdded subscribes to insertions.
func (c *Collection[T]) OnAdded(fn func(T)) *events.Subscription { return c.added.Subscribe(fn) }

// OnRemoved subscribes to evictions.
func (c *Collection[T]) OnRemoved(fn func(T)) *events.Subscription { return c.removed.Subscribe(fn) }

// Len returns the number of items.
func (c *Collection[T]) Len() int { return len(c.order) }

// Contains reports whether an item with id is present.
func (c *Collection[T]) Contains(id string) bool {
	_, ok := c.items[id]
	return ok
}

// Get looks an item up by id.
func (c *Collection[T]) Get(id string) (T, bool) {
	item, ok := c.items[id]
	return item, ok
}

// At returns the item at index i.
func (c *Collection[T]) At(i int) (T, error) {
	var zero T
	if i < 0 || i >= len(c.order) {
		return zero, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, len(c.order))
	}
	return c.items[c.order[i]], nil
}

// IndexOf returns the position of id, or -1.
func (c *Collection[T]) IndexOf(id string) int {
	for i, v := range c.order {
		if v == id {
			return i
		}
	}
	return -1
}

// Items returns a copy of the items in order.
func (c *Collection[T]) Items() []T {
	out := make([]T, len(c.order))
	for i, id := range c.order {
		out[i] = c.items[id]
	}
	return out
}

// Add appends item unless one with the same identity exists.
func (c *Collection[T]) Add(item T) bool {
	if !c.insert(len(c.order), item) {
		return false
	}
	c.added.Publish(item)
	return true
}

// AddInternal appends item without notifying.
func (c *Collection[T]) AddInternal(item T) bool {
	return c.insert(len(c.order), item)
}

// AddRange adds each item independently, one notification per inserted item.
func (c *Collection[T]) AddRange(items ...T) int {
	n := 0
	for _, item := range items {
		if c.Add(item) {
			n++
		}
	}
	return n
}

// Insert places item at index i (0 <= i <= Len). An item that is already
// present is left where it is and Insert returns false.
func (c *Collection[T]) Insert(i int, item T) (bool, error) {
	if i < 0 || i > len(c.order) {
		return false, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, len(c.order))
	}
	if !c.insert(i, item) {
		return false, nil
	}
	c.added.Publish(item)
	return true, nil
}

// Remove evicts the item sharing item's identity.
func (c *Collection[T]) Remove(item T) bool {
	return c.RemoveID(item.ID())
}

// RemoveID evicts the item with id.
func (c *Collection[T]) RemoveID(id string) bool {
	old, ok := c.evict(id)
	if !ok {
		return false
	}
	c.removed.Publish(old)
	return true
}

// RemoveInternal evicts without notifying.
func (c *Collection[T]) RemoveInternal(item T) bool {
	_, ok := c.evict(item.ID())
	return ok
}

// RemoveAt evicts the item at index i.
func (c *Collection[T]) RemoveAt(i int) (T, error) {
	var zero T
	if i < 0 || i >= len(c.order) {
		return zero, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, len(c.order))
	}
	old, _ := c.evict(c.order[i])
	c.removed.Publish(old)
	return old, nil
}

// Set replaces the item at index i, notifying removed(old) then added(item).
// Setting an item whose identity already lives at a different index fails.
func (c *Collection[T]) Set(i int, item T) error {
	if i < 0 || i >= len(c.order) {
		return fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, len(c.order))
	}
	if j := c.IndexOf(item.ID()); j >= 0 && j != i {
		return fmt.Errorf("%w: %s at %d", ErrDuplicate, item.ID(), j)
	}
	old := c.items[c.order[i]]
	delete(c.items, c.order[i])
	c.order[i] = item.ID()
	c.items[item.ID()] = item
	c.removed.Publish(old)
	c.added.Publish(item)
	return nil
}

// Clear empties the collection, then notifies one removal per former item.
func (c *Collection[T]) Clear() {
	old := c.Items()
	c.reset()
	for _, item := range old {
		c.removed.Publish(item)
	}
}

// ClearInternal empties the collection without notifying and returns what it held.
func (c *Collection[T]) ClearInternal() []T {
	old := c.Items()
	c.reset()
	return old
}

func (c *Collection[T]) reset() {
	c.order = nil
	c.items = make(map[string]T)
}

func (c *Collection[T]) insert(i int, item T) bool {
	id := item.ID()
	if _, exists := c.items[id]; exists {
		return false
	}
	c.items[id] = item
	c.order = append(c.order, "")
	copy(c.order[i+1:], c.order[i:])
	c.order[i] = id
	return true
}

func (c *Collection[T]) evict(id string) (T, bool) {
	old, ok := c.items[id]
	if !ok {
		return old, false
	}
	delete(c.items, id)
	if i := c.IndexOf(id); i >= 0 {
		c.order = append(c.order[:i], c.order[i+1:]...)
	}
	return old, true
}
