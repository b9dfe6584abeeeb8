// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

package embedding

import (
	"slices"
	"sync"

	"github.com/tomtom215/cartographus-recsys/internal/metrics"
)

// DefaultCacheCapacity is used when NewVectorCache gets a capacity below 1.
const DefaultCacheCapacity = 10000

type cacheEntry struct {
	text   string
	vector []float32
	prev   *cacheEntry
	next   *cacheEntry
}

// VectorCache is a thread-safe least recently used cache of embedding
// vectors keyed by input text. Get, Add and eviction are O(1).
//
// Vectors are copied on the way in and out, so callers may modify them.
type VectorCache struct {
	mu sync.Mutex

	capacity int
	items    map[string]*cacheEntry

	// head.next is the most recently used entry, tail.prev the least.
	head *cacheEntry
	tail *cacheEntry

	hits   int64
	misses int64
}

// NewVectorCache creates a cache holding at most capacity vectors.
func NewVectorCache(capacity int) *VectorCache {
	if capacity < 1 {
		capacity = DefaultCacheCapacity
	}
	c := &VectorCache{
		capacity: capacity,
		items:    make(map[string]*cacheEntry, capacity),
		head:     &cacheEntry{},
		tail:     &cacheEntry{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get returns a copy of the vector cached for text.
func (c *VectorCache) Get(text string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.items[text]
	if !ok {
		c.misses++
		metrics.EmbeddingCacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	c.moveToFront(entry)
	c.hits++
	metrics.EmbeddingCacheLookups.WithLabelValues("hit").Inc()
	return slices.Clone(entry.vector), true
}

// Add stores vector for text, evicting the least recently used entry when
// the cache is full.
func (c *VectorCache) Add(text string, vector []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.items[text]; ok {
		entry.vector = slices.Clone(vector)
		c.moveToFront(entry)
		return
	}

	entry := &cacheEntry{text: text, vector: slices.Clone(vector)}
	c.addToFront(entry)
	c.items[text] = entry

	for len(c.items) > c.capacity {
		c.evictOldest()
	}
}

// Len returns the number of cached vectors.
func (c *VectorCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns hit and miss counts and the current size.
func (c *VectorCache) Stats() (hits, misses int64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, len(c.items)
}

// Clear removes every entry. Statistics are kept.
func (c *VectorCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*cacheEntry, c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
}

// The methods below must be called with c.mu held.

func (c *VectorCache) addToFront(entry *cacheEntry) {
	entry.prev = c.head
	entry.next = c.head.next
	c.head.next.prev = entry
	c.head.next = entry
}

func (c *VectorCache) moveToFront(entry *cacheEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	c.addToFront(entry)
}

func (c *VectorCache) evictOldest() {
	oldest := c.tail.prev
	if oldest == c.head {
		return
	}
	oldest.prev.next = oldest.next
	oldest.next.prev = oldest.prev
	delete(c.items, oldest.text)
}
