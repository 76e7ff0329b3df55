// Package rowcache provides a bounded LRU cache of per-row GPU cell
// records keyed on row identity, active screen, and the selection
// portion overlapping the row.
//
// The recency list is index-linked through a node arena rather than
// per-node heap pointers, so resizing the cache never chases or
// rewrites pointers.
package rowcache

import (
	"sync/atomic"

	"github.com/dshills/glint/internal/renderer/core"
	"github.com/dshills/glint/internal/renderer/grid"
)

// MinCapacity is the floor below which the cache never shrinks.
// Rapid interactive resizes would otherwise churn the whole cache.
const MinCapacity = 64

// Key identifies one row's cached render output. Two rows with equal
// keys have byte-identical foreground records unless marked dirty.
type Key struct {
	// ID is the row's stable identity.
	ID grid.RowID

	// Screen distinguishes primary and alternate screen rows.
	Screen grid.ScreenType

	// Selected is true when any part of the selection overlaps the
	// row; Span is the overlapping column range.
	Selected bool
	Span     grid.Span
}

const nilIdx = -1

// node is one arena slot of the recency list.
type node struct {
	key  Key
	recs []core.Record
	prev int32
	next int32
	used bool
}

// Cache is a bounded least-recently-used row cache. It is not safe
// for concurrent use; the render thread owns it exclusively.
type Cache struct {
	capacity int

	entries map[Key]int32
	nodes   []node
	free    []int32

	// head is most recently used, tail least.
	head int32
	tail int32

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// New creates a cache with the given capacity, clamped to MinCapacity.
func New(capacity int) *Cache {
	if capacity < MinCapacity {
		capacity = MinCapacity
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[Key]int32, capacity),
		head:     nilIdx,
		tail:     nilIdx,
	}
}

// Capacity returns the current capacity.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Len returns the number of cached rows.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Get returns the cached records for the key, if present. A hit moves
// the entry to the most-recently-used position. The returned slice is
// owned by the cache; callers copy, never mutate.
func (c *Cache) Get(key Key) ([]core.Record, bool) {
	idx, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.moveToFront(idx)
	return c.nodes[idx].recs, true
}

// Put stores records for the key at the most-recently-used position,
// overwriting any previous entry for the key and evicting the
// least-recently-used entry if the cache is full. The cache takes
// ownership of the slice.
func (c *Cache) Put(key Key, recs []core.Record) {
	if idx, ok := c.entries[key]; ok {
		c.nodes[idx].recs = recs
		c.moveToFront(idx)
		return
	}

	if len(c.entries) >= c.capacity {
		c.evictTail()
	}

	idx := c.alloc()
	c.nodes[idx] = node{key: key, recs: recs, prev: nilIdx, next: nilIdx, used: true}
	c.entries[key] = idx
	c.pushFront(idx)
}

// Resize changes the capacity, clamped to MinCapacity, evicting
// least-recently-used entries if the cache shrank below its current
// size. It returns the number of evicted entries.
func (c *Cache) Resize(capacity int) int {
	if capacity < MinCapacity {
		capacity = MinCapacity
	}
	c.capacity = capacity

	evicted := 0
	for len(c.entries) > c.capacity {
		c.evictTail()
		evicted++
	}
	return evicted
}

// InvalidateAll drops every entry. Used when glyph geometry goes
// stale (font-size change) and every cached rect is wrong.
func (c *Cache) InvalidateAll() {
	c.entries = make(map[Key]int32, c.capacity)
	c.nodes = c.nodes[:0]
	c.free = c.free[:0]
	c.head = nilIdx
	c.tail = nilIdx
}

// Stats returns cache statistics.
func (c *Cache) Stats() Stats {
	return Stats{
		Size:      len(c.entries),
		Capacity:  c.capacity,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

// Stats holds cache statistics.
type Stats struct {
	Size      int
	Capacity  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// alloc returns a free arena index, growing the arena if needed.
func (c *Cache) alloc() int32 {
	if n := len(c.free); n > 0 {
		idx := c.free[n-1]
		c.free = c.free[:n-1]
		return idx
	}
	c.nodes = append(c.nodes, node{})
	return int32(len(c.nodes) - 1)
}

// pushFront links the node at the most-recently-used position.
func (c *Cache) pushFront(idx int32) {
	c.nodes[idx].prev = nilIdx
	c.nodes[idx].next = c.head
	if c.head != nilIdx {
		c.nodes[c.head].prev = idx
	}
	c.head = idx
	if c.tail == nilIdx {
		c.tail = idx
	}
}

// unlink removes the node from the recency list.
func (c *Cache) unlink(idx int32) {
	n := &c.nodes[idx]
	if n.prev != nilIdx {
		c.nodes[n.prev].next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nilIdx {
		c.nodes[n.next].prev = n.prev
	} else {
		c.tail = n.prev
	}
	n.prev = nilIdx
	n.next = nilIdx
}

// moveToFront marks the node most recently used.
func (c *Cache) moveToFront(idx int32) {
	if c.head == idx {
		return
	}
	c.unlink(idx)
	c.pushFront(idx)
}

// evictTail releases the least-recently-used entry.
func (c *Cache) evictTail() {
	idx := c.tail
	if idx == nilIdx {
		return
	}
	c.unlink(idx)
	delete(c.entries, c.nodes[idx].key)
	c.nodes[idx] = node{prev: nilIdx, next: nilIdx}
	c.free = append(c.free, idx)
	c.evictions.Add(1)
}
