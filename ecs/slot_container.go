package ecs

import (
	"iter"
	"slices"

	"github.com/kamstrup/intmap"
)

const (
	defaultDirectoryCapacity = 64
)

// slot is the directory entry for one id.
type slot struct {
	index   int
	deleted bool
}

// SlotContainer stores records of type T contiguously and addresses them by a
// stable SlotId. Removal only marks a slot as deleted; Cull compacts the
// backing store in one pass and reindexes the survivors.
//
// Pointers returned by Get, TryGet and All point into the backing store and
// are only valid until the next mutating call (Insert, Emplace, Remove, Cull,
// Reserve, Clear). Hold ids, not pointers.
//
// A SlotContainer is not safe for concurrent mutation.
type SlotContainer[T any] struct {
	items     []T
	ids       []SlotId // id stored at each position of items
	slots     *intmap.Map[SlotId, slot]
	nextId    SlotId
	live      int
	needsCull bool
}

// NewSlotContainer creates an empty container.
func NewSlotContainer[T any]() *SlotContainer[T] {
	return &SlotContainer[T]{
		slots: intmap.New[SlotId, slot](defaultDirectoryCapacity),
	}
}

func (c *SlotContainer[T]) directory() *intmap.Map[SlotId, slot] {
	if c.slots == nil {
		c.slots = intmap.New[SlotId, slot](defaultDirectoryCapacity)
	}
	return c.slots
}

// Insert appends value and returns its new id.
func (c *SlotContainer[T]) Insert(value T) SlotId {
	capBefore := cap(c.items)

	id := c.nextId
	c.nextId++

	c.items = append(c.items, value)
	c.ids = append(c.ids, id)
	c.directory().Put(id, slot{index: len(c.items) - 1})
	c.live++

	if cap(c.items) != capBefore {
		c.reindex()
	}
	return id
}

// Emplace appends a zero T, lets init fill it in place and returns its id.
func (c *SlotContainer[T]) Emplace(init func(*T)) SlotId {
	var zero T
	id := c.Insert(zero)
	if init != nil {
		init(&c.items[len(c.items)-1])
	}
	return id
}

// Remove deletes the record and compacts the backing store immediately.
// Removing an id that is already gone is a no-op. Ids that were never issued
// return ErrNotFound.
func (c *SlotContainer[T]) Remove(id SlotId) error {
	return c.remove(id, false)
}

// RemoveDeferred marks the record deleted but leaves it in the backing store
// until the next Cull. The id is invalid as soon as this returns.
func (c *SlotContainer[T]) RemoveDeferred(id SlotId) error {
	return c.remove(id, true)
}

func (c *SlotContainer[T]) remove(id SlotId, deferCull bool) error {
	if id >= c.nextId {
		return notFound(id)
	}

	s, ok := c.slots.Get(id)
	if !ok || s.deleted {
		return nil
	}

	s.deleted = true
	c.slots.Put(id, s)
	c.live--
	c.needsCull = true

	if !deferCull {
		c.Cull()
	}
	return nil
}

// Get returns a pointer to the record for id.
func (c *SlotContainer[T]) Get(id SlotId) (*T, error) {
	if v, ok := c.TryGet(id); ok {
		return v, nil
	}
	return nil, notFound(id)
}

// MustGet is like Get but panics if id is not live.
func (c *SlotContainer[T]) MustGet(id SlotId) *T {
	v, err := c.Get(id)
	if err != nil {
		panic(err)
	}
	return v
}

// TryGet returns a pointer to the record for id, or false if id is not live.
func (c *SlotContainer[T]) TryGet(id SlotId) (*T, bool) {
	s, ok := c.slots.Get(id)
	if !ok || s.deleted {
		return nil, false
	}
	return &c.items[s.index], true
}

// IsValid reports whether id refers to a live record.
func (c *SlotContainer[T]) IsValid(id SlotId) bool {
	s, ok := c.slots.Get(id)
	return ok && !s.deleted
}

// Cull drops every deleted record from the backing store, keeping the
// relative order of the survivors, and reindexes them. Each survivor moves at
// most once.
func (c *SlotContainer[T]) Cull() {
	if !c.needsCull {
		return
	}

	write := 0
	for read, id := range c.ids {
		s, _ := c.slots.Get(id)
		if s.deleted {
			c.slots.Del(id)
			continue
		}
		if write != read {
			c.items[write] = c.items[read]
			c.ids[write] = id
		}
		write++
	}

	// Zero the tail so removed records can be collected.
	clear(c.items[write:])
	c.items = c.items[:write]
	c.ids = c.ids[:write]
	c.needsCull = false

	c.reindex()
}

// reindex walks the backing store in store order and points every directory
// entry at its current position.
func (c *SlotContainer[T]) reindex() {
	for pos, id := range c.ids {
		s, ok := c.slots.Get(id)
		if !ok || s.index == pos {
			continue
		}
		s.index = pos
		c.slots.Put(id, s)
	}
}

// Reserve grows the backing store so it can hold at least n records without
// reallocating.
func (c *SlotContainer[T]) Reserve(n int) {
	if n <= cap(c.items) {
		return
	}
	c.items = slices.Grow(c.items, n-len(c.items))
	c.ids = slices.Grow(c.ids, n-len(c.ids))
	c.reindex()
}

// Clear removes every record. The id counter is kept, so ids issued before
// Clear are never handed out again.
func (c *SlotContainer[T]) Clear() {
	clear(c.items)
	c.items = c.items[:0]
	c.ids = c.ids[:0]
	if c.slots != nil {
		c.slots.Clear()
	}
	c.live = 0
	c.needsCull = false
}

// Size returns the number of live records.
func (c *SlotContainer[T]) Size() int {
	return c.live
}

// Cap returns the capacity of the backing store.
func (c *SlotContainer[T]) Cap() int {
	return cap(c.items)
}

// NextId returns the id the next insertion will receive.
func (c *SlotContainer[T]) NextId() SlotId {
	return c.nextId
}

// NeedsCull reports whether deferred removals are waiting for a Cull.
func (c *SlotContainer[T]) NeedsCull() bool {
	return c.needsCull
}

// Values culls any pending removals and returns the backing store. The slice
// aliases the container and is only valid until the next mutating call.
func (c *SlotContainer[T]) Values() []T {
	c.Cull()
	return c.items
}

// All iterates live records in store order.
func (c *SlotContainer[T]) All() iter.Seq2[SlotId, *T] {
	return func(yield func(SlotId, *T) bool) {
		for pos, id := range c.ids {
			if s, _ := c.slots.Get(id); s.deleted {
				continue
			}
			if !yield(id, &c.items[pos]) {
				return
			}
		}
	}
}

// IndexOf returns the id of the first live record equal to value.
func IndexOf[T comparable](c *SlotContainer[T], value T) (SlotId, bool) {
	for id, item := range c.All() {
		if *item == value {
			return id, true
		}
	}
	return InvalidSlotId, false
}

// RemoveValue removes the first live record equal to value.
func RemoveValue[T comparable](c *SlotContainer[T], value T) bool {
	id, ok := IndexOf(c, value)
	if !ok {
		return false
	}
	return c.Remove(id) == nil
}
