// Package cache provides a thread-safe LRU cache bounded by entry count
// and by total value size.
package cache

import (
	"container/list"
	"sync"
)

// Stats contains cache statistics.
type Stats struct {
	Hits       int64
	Misses     int64
	Evictions  int64
	Size       int
	MaxSize    int
	TotalBytes int64
}

// Config contains cache configuration options.
type Config struct {
	// MaxSize is the maximum number of entries (0 = unlimited).
	MaxSize int
	// MaxBytes is the maximum total value size (0 = unlimited).
	MaxBytes int64
}

// DefaultConfig returns a default cache configuration.
func DefaultConfig() Config {
	return Config{
		MaxSize:  100,
		MaxBytes: 64 << 20,
	}
}

type entry[K comparable, V any] struct {
	key   K
	value V
	size  int64
}

// LRU is a least-recently-used cache.
type LRU[K comparable, V any] struct {
	mu        sync.Mutex
	config    Config
	sizeFunc  func(V) int64
	entries   map[K]*list.Element
	evictList *list.List
	bytes     int64
	stats     Stats
}

// New creates a cache. sizeFunc reports the size of a value for the byte
// limit; nil counts every value as zero bytes.
func New[K comparable, V any](config Config, sizeFunc func(V) int64) *LRU[K, V] {
	if config.MaxSize < 0 {
		config.MaxSize = 0
	}
	if sizeFunc == nil {
		sizeFunc = func(V) int64 { return 0 }
	}
	return &LRU[K, V]{
		config:    config,
		sizeFunc:  sizeFunc,
		entries:   make(map[K]*list.Element),
		evictList: list.New(),
	}
}

// Get retrieves a value and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		var zero V
		return zero, false
	}
	c.evictList.MoveToFront(ent)
	c.stats.Hits++
	return ent.Value.(*entry[K, V]).value, true
}

// Put stores a value. A value larger than MaxBytes is not cached, and any
// older value under the same key is dropped.
func (c *LRU[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	size := c.sizeFunc(value)
	if ent, ok := c.entries[key]; ok {
		c.removeElement(ent)
	}
	if c.config.MaxBytes > 0 && size > c.config.MaxBytes {
		return
	}

	ent := c.evictList.PushFront(&entry[K, V]{key: key, value: value, size: size})
	c.entries[key] = ent
	c.bytes += size

	for c.overLimit() {
		c.removeElement(c.evictList.Back())
		c.stats.Evictions++
	}
}

func (c *LRU[K, V]) overLimit() bool {
	if c.config.MaxSize > 0 && c.evictList.Len() > c.config.MaxSize {
		return true
	}
	return c.config.MaxBytes > 0 && c.bytes > c.config.MaxBytes
}

// Remove removes a value.
func (c *LRU[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.entries[key]; ok {
		c.removeElement(ent)
	}
}

// Clear removes all entries.
func (c *LRU[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]*list.Element)
	c.evictList.Init()
	c.bytes = 0
}

// Len returns the number of entries.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

// Stats returns cache statistics.
func (c *LRU[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Size = c.evictList.Len()
	s.MaxSize = c.config.MaxSize
	s.TotalBytes = c.bytes
	return s
}

func (c *LRU[K, V]) removeElement(ent *list.Element) {
	c.evictList.Remove(ent)
	e := ent.Value.(*entry[K, V])
	delete(c.entries, e.key)
	c.bytes -= e.size
}
