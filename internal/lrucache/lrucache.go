// Package lrucache provides a least-recently-used cache with weighted
// ejection criteria. Unlike a plain LRU it is bounded by an arbitrary
// weight attribute rather than entry count, which makes it suitable for
// limiting the memory held by values of uneven size, such as captured
// step logs. The capacity is maxCount * maxItemWeight: the cache can hold
// maxCount maximal-weight values, or proportionally more lighter ones. An
// entry above maxItemWeight is rejected outright.
package lrucache

import (
	"container/list"
	"errors"
)

var (
	// ErrExceedsMaximumWeight is returned by Insert for a value heavier
	// than the per-item maximum.
	ErrExceedsMaximumWeight = errors.New("value exceeds maximum item weight")

	// ErrNonsenseParameters is returned by New for zero bounds.
	ErrNonsenseParameters = errors.New("maxCount and maxItemWeight must be positive")
)

// Weighted is implemented by cache values to report their own size.
type Weighted interface {
	Weight() int
}

// Bytes is a Weighted byte slice whose weight is its length.
type Bytes []byte

func (b Bytes) Weight() int { return len(b) }

// String is a Weighted string whose weight is its length.
type String string

func (s String) Weight() int { return len(s) }

type item[K comparable, V Weighted] struct {
	key   K
	value V
}

// Cache is a weight-bounded LRU cache. It is not safe for concurrent use;
// callers own the locking.
type Cache[K comparable, V Weighted] struct {
	items         map[K]*list.Element
	order         *list.List // front is most recent
	maxItemWeight  int
	maxTotalWeight int
	currentWeight  int
}

// New builds a cache that accepts values up to maxItemWeight and holds a
// total weight of at most maxCount * maxItemWeight.
func New[K comparable, V Weighted](maxCount, maxItemWeight int) (*Cache[K, V], error) {
	if maxCount <= 0 || maxItemWeight <= 0 {
		return nil, ErrNonsenseParameters
	}
	return &Cache[K, V]{
		items:          make(map[K]*list.Element),
		order:          list.New(),
		maxItemWeight:  maxItemWeight,
		maxTotalWeight: maxCount * maxItemWeight,
	}, nil
}

// WillAccept reports whether the value is light enough to be inserted.
func (c *Cache[K, V]) WillAccept(value V) bool {
	return value.Weight() <= c.maxItemWeight
}

// Insert puts a key-value pair into the cache, ejecting entries from the
// least-recently-used end until the new value fits. Inserting an existing
// key replaces its value and promotes it. Returns ErrExceedsMaximumWeight
// for a value above the per-item bound.
func (c *Cache[K, V]) Insert(key K, value V) error {
	if !c.WillAccept(value) {
		return ErrExceedsMaximumWeight
	}

	elem, exists := c.items[key]
	c.eject(value, elem)

	if exists {
		it := elem.Value.(*item[K, V])
		c.currentWeight = c.currentWeight - it.value.Weight() + value.Weight()
		it.value = value
		c.order.MoveToFront(elem)
		return nil
	}

	c.currentWeight += value.Weight()
	c.items[key] = c.order.PushFront(&item[K, V]{key: key, value: value})
	return nil
}

// eject discards entries from the oldest upward until there is room for
// the incoming value. When the key already exists its current weight is
// excluded from the accounting so an in-place replacement never
// over-ejects.
func (c *Cache[K, V]) eject(value V, existing *list.Element) {
	current := c.currentWeight
	if existing != nil {
		current -= existing.Value.(*item[K, V]).value.Weight()
	}

	for current+value.Weight() > c.maxTotalWeight {
		oldest := c.order.Back()
		if oldest == nil || oldest == existing {
			return
		}
		removed, _ := c.Remove(oldest.Value.(*item[K, V]).key)
		current -= removed.Weight()
	}
}

// Get returns the value for key, if present.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	if elem, ok := c.items[key]; ok {
		return elem.Value.(*item[K, V]).value, true
	}
	var zero V
	return zero, false
}

// Remove deletes the entry for key and returns its value.
func (c *Cache[K, V]) Remove(key K) (V, bool) {
	elem, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}

	it := c.order.Remove(elem).(*item[K, V])
	delete(c.items, key)
	c.currentWeight -= it.value.Weight()
	return it.value, true
}

// Contains reports whether key is present without affecting recency.
func (c *Cache[K, V]) Contains(key K) bool {
	_, ok := c.items[key]
	return ok
}

// Len is the number of entries in the cache.
func (c *Cache[K, V]) Len() int { return len(c.items) }

// IsEmpty reports whether the cache holds no entries.
func (c *Cache[K, V]) IsEmpty() bool { return len(c.items) == 0 }

// Weight is the current total weight of the cache.
func (c *Cache[K, V]) Weight() int { return c.currentWeight }
