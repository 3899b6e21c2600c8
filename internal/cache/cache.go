package cache

import "sync"

// Cache is a generic thread-safe LRU cache with soft limit.
// When the cache exceeds softLimit, the least recently used entries are
// evicted until it is back at three quarters of the limit.
//
// Cache must not be copied after creation (has mutex).
type Cache[K comparable, V any] struct {
	mu        sync.Mutex
	entries   map[K]*lruNode[entry[K, V]]
	order     lruList[entry[K, V]]
	softLimit int
	hits      uint64
	misses    uint64
}

type entry[K comparable, V any] struct {
	key   K
	value V
}

// New creates a new cache with the given soft limit.
// A softLimit of 0 means unlimited.
func New[K comparable, V any](softLimit int) *Cache[K, V] {
	return &Cache[K, V]{
		entries:   make(map[K]*lruNode[entry[K, V]]),
		softLimit: softLimit,
	}
}

// GetOrCreate returns cached value or creates it.
// create is called under lock, so concurrent callers never build the same
// value twice.
func (c *Cache[K, V]) GetOrCreate(key K, create func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	if node, ok := c.entries[key]; ok {
		c.hits++
		c.order.MoveToFront(node)
		return node.value.value
	}
	c.misses++

	value := create()
	c.store(key, value)
	return value
}

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Len:      len(c.entries),
		Capacity: c.softLimit,
		Hits:     c.hits,
		Misses:   c.misses,
	}
}

// store inserts a missing key. Caller must hold c.mu.
func (c *Cache[K, V]) store(key K, value V) {
	c.entries[key] = c.order.PushFront(entry[K, V]{key: key, value: value})

	if c.softLimit > 0 && len(c.entries) > c.softLimit {
		c.evictOldest()
	}
}

// evictOldest drops least recently used entries down to 75% of softLimit.
// Caller must hold c.mu.
func (c *Cache[K, V]) evictOldest() {
	target := c.softLimit * 3 / 4
	if target < 1 {
		target = 1
	}
	for len(c.entries) > target {
		e, ok := c.order.RemoveOldest()
		if !ok {
			return
		}
		delete(c.entries, e.key)
	}
}

// Stats contains cache and pool statistics.
type Stats struct {
	// Len is the current number of entries (idle resources for Pool).
	Len int
	// Capacity is the soft limit (MaxSize for Pool).
	Capacity int
	// Hits counts lookups served from the container.
	Hits uint64
	// Misses counts lookups that had to create a value.
	Misses uint64
	// Evictions counts resources destroyed by Pool trimming (Pool only).
	Evictions uint64
}
