package cache

import (
	"errors"
	"sync"
)

// ErrPoolClosed is returned by Pool.Get after Close.
var ErrPoolClosed = errors.New("cache: pool closed")

// Hooks customize how a Pool creates, matches and destroys resources.
type Hooks[K any, R comparable] interface {
	// Create builds a fresh resource for key.
	Create(key K) (R, error)
	// Match reports whether an idle resource can serve key.
	Match(key K, r R) bool
	// Evict destroys a resource that leaves the pool for good.
	Evict(r R)
}

// Pool is a bounded set of idle reusable resources.
//
// Get removes and returns the oldest idle resource accepted by Hooks.Match,
// or creates a new one. Put returns a resource; putting a resource that is
// already idle is a no-op. Whenever more than MaxSize resources are idle the
// oldest are evicted, so each resource is destroyed at most once.
type Pool[K any, R comparable] struct {
	mu      sync.Mutex
	idle    lruList[R]
	nodes   map[R]*lruNode[R]
	maxSize int
	hooks   Hooks[K, R]
	closed  bool
	stats   Stats
}

// NewPool creates a pool holding at most maxSize idle resources.
// A maxSize below zero is treated as zero.
func NewPool[K any, R comparable](maxSize int, hooks Hooks[K, R]) *Pool[K, R] {
	if maxSize < 0 {
		maxSize = 0
	}
	return &Pool[K, R]{
		nodes:   make(map[R]*lruNode[R]),
		maxSize: maxSize,
		hooks:   hooks,
	}
}

// Get returns an idle resource matching key, or a newly created one.
func (p *Pool[K, R]) Get(key K) (R, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		var zero R
		return zero, ErrPoolClosed
	}
	for node := p.idle.Oldest(); node != nil; node = node.prev {
		if p.hooks.Match(key, node.value) {
			r := node.value
			p.idle.Remove(node)
			delete(p.nodes, r)
			p.stats.Hits++
			p.mu.Unlock()
			return r, nil
		}
	}
	p.stats.Misses++
	p.mu.Unlock()

	// Create outside the lock: device calls can be slow.
	return p.hooks.Create(key)
}

// Put returns r to the pool and trims the oldest idle resources beyond
// MaxSize. After Close, r is evicted immediately.
func (p *Pool[K, R]) Put(r R) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.hooks.Evict(r)
		return
	}
	if _, ok := p.nodes[r]; ok {
		p.mu.Unlock()
		return
	}
	p.nodes[r] = p.idle.PushFront(r)
	evicted := p.trimLocked()
	p.mu.Unlock()

	for _, old := range evicted {
		p.hooks.Evict(old)
	}
}

// EvictAll destroys every idle resource.
func (p *Pool[K, R]) EvictAll() {
	p.mu.Lock()
	evicted := p.drainLocked()
	p.mu.Unlock()

	for _, r := range evicted {
		p.hooks.Evict(r)
	}
}

// Close evicts all idle resources and makes subsequent Puts evict directly.
func (p *Pool[K, R]) Close() {
	p.mu.Lock()
	p.closed = true
	evicted := p.drainLocked()
	p.mu.Unlock()

	for _, r := range evicted {
		p.hooks.Evict(r)
	}
}

// Len returns the number of idle resources.
func (p *Pool[K, R]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.idle.Len()
}

// MaxSize returns the idle capacity.
func (p *Pool[K, R]) MaxSize() int {
	return p.maxSize
}

// Stats returns pool statistics.
func (p *Pool[K, R]) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.stats
	s.Len = p.idle.Len()
	s.Capacity = p.maxSize
	return s
}

// trimLocked unlinks resources beyond maxSize, oldest first.
// Caller must hold p.mu and evict the returned resources after unlocking.
func (p *Pool[K, R]) trimLocked() []R {
	var evicted []R
	for p.idle.Len() > p.maxSize {
		r, ok := p.idle.RemoveOldest()
		if !ok {
			break
		}
		delete(p.nodes, r)
		evicted = append(evicted, r)
	}
	p.stats.Evictions += uint64(len(evicted))
	return evicted
}

func (p *Pool[K, R]) drainLocked() []R {
	evicted := make([]R, 0, p.idle.Len())
	for {
		r, ok := p.idle.RemoveOldest()
		if !ok {
			break
		}
		evicted = append(evicted, r)
	}
	p.nodes = make(map[R]*lruNode[R])
	p.stats.Evictions += uint64(len(evicted))
	return evicted
}
