/*
Package lru implements a fixed-capacity least-recently-used cache.

Entries live in a slot array allocated once at construction. Recency is a
doubly linked list threaded through the slots by index, so both Get and Set
are O(1) and no entry holds a pointer to another entry.

	cache, err := lru.New[string, []dataset.Candidate](10)
	cache.Set("react", results)
	results, ok := cache.Get("react")

The cache does no locking. Callers that share one across goroutines must
serialize Get and Set themselves (see pkg/resolve).
*/
package lru

import "errors"

// ErrInvalidCapacity is returned by New for a capacity below 1.
var ErrInvalidCapacity = errors.New("lru: capacity must be greater than zero")

const none = -1

type slot[K comparable, V any] struct {
	key   K
	value V
	prev  int
	next  int
}

// Cache maps keys to values and evicts the least recently used key when full.
type Cache[K comparable, V any] struct {
	capacity int
	index    map[K]int
	slots    []slot[K, V]

	// head is the most recently used slot, tail the least.
	head int
	tail int

	hits      int
	misses    int
	evictions int
}

// New creates a cache holding at most capacity entries.
func New[K comparable, V any](capacity int) (*Cache[K, V], error) {
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	return &Cache[K, V]{
		capacity: capacity,
		index:    make(map[K]int, capacity),
		slots:    make([]slot[K, V], 0, capacity),
		head:     none,
		tail:     none,
	}, nil
}

// Get returns the value for key and marks it most recently used.
// The second result is false on a miss.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	i, ok := c.index[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.moveToFront(i)
	return c.slots[i].value, true
}

// Set stores value under key and marks it most recently used.
// Inserting a new key into a full cache first evicts the least recently used key.
func (c *Cache[K, V]) Set(key K, value V) {
	if i, ok := c.index[key]; ok {
		c.slots[i].value = value
		c.moveToFront(i)
		return
	}

	if len(c.slots) < c.capacity {
		c.slots = append(c.slots, slot[K, V]{key: key, value: value, prev: none, next: none})
		i := len(c.slots) - 1
		c.index[key] = i
		c.pushFront(i)
		return
	}

	// Full: recycle the tail slot for the new key.
	i := c.tail
	c.unlink(i)
	delete(c.index, c.slots[i].key)
	c.evictions++

	c.slots[i] = slot[K, V]{key: key, value: value, prev: none, next: none}
	c.index[key] = i
	c.pushFront(i)
}

// Peek returns the value for key without touching its recency.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	if i, ok := c.index[key]; ok {
		return c.slots[i].value, true
	}
	var zero V
	return zero, false
}

// Contains reports whether key is cached, without touching its recency.
func (c *Cache[K, V]) Contains(key K) bool {
	_, ok := c.index[key]
	return ok
}

func (c *Cache[K, V]) Len() int { return len(c.index) }

func (c *Cache[K, V]) Cap() int { return c.capacity }

// Keys returns the cached keys from least to most recently used.
func (c *Cache[K, V]) Keys() []K {
	keys := make([]K, 0, len(c.index))
	for i := c.tail; i != none; i = c.slots[i].prev {
		keys = append(keys, c.slots[i].key)
	}
	return keys
}

// Stats reports occupancy and hit counters.
func (c *Cache[K, V]) Stats() map[string]int {
	return map[string]int{
		"entries":   len(c.index),
		"capacity":  c.capacity,
		"hits":      c.hits,
		"misses":    c.misses,
		"evictions": c.evictions,
	}
}

func (c *Cache[K, V]) moveToFront(i int) {
	if c.head == i {
		return
	}
	c.unlink(i)
	c.pushFront(i)
}

func (c *Cache[K, V]) pushFront(i int) {
	c.slots[i].prev = none
	c.slots[i].next = c.head
	if c.head != none {
		c.slots[c.head].prev = i
	}
	c.head = i
	if c.tail == none {
		c.tail = i
	}
}

func (c *Cache[K, V]) unlink(i int) {
	s := &c.slots[i]
	if s.prev != none {
		c.slots[s.prev].next = s.next
	} else {
		c.head = s.next
	}
	if s.next != none {
		c.slots[s.next].prev = s.prev
	} else {
		c.tail = s.prev
	}
	s.prev, s.next = none, none
}
