package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool runs stripes and tasks on a fixed set of goroutines.
//
// Every worker owns a buffered queue. An idle worker steals from the other
// queues before it parks, so one slow stripe does not hold up the rest of
// a pass.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	queues []chan func()

	// closing releases senders blocked on a full queue; stop ends the
	// workers once no sender is left.
	senders sync.RWMutex
	closing chan struct{}
	stop    chan struct{}
	wg      sync.WaitGroup

	running  atomic.Bool
	handoffs atomic.Int64
}

// NewWorkerPool starts a pool of workers goroutines.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	depth := max(4*workers, 8)

	p := &WorkerPool{
		queues:  make([]chan func(), workers),
		closing: make(chan struct{}),
		stop:    make(chan struct{}),
	}
	for i := range p.queues {
		p.queues[i] = make(chan func(), depth)
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := range p.queues {
		go p.loop(i)
	}
	return p
}

func (p *WorkerPool) loop(self int) {
	defer p.wg.Done()
	own := p.queues[self]
	for {
		if fn, ok := p.next(self); ok {
			fn()
			continue
		}
		select {
		case fn := <-own:
			fn()
		case <-p.stop:
			// Work accepted before Close still runs.
			for {
				select {
				case fn := <-own:
					fn()
				default:
					return
				}
			}
		}
	}
}

// next takes an item from the worker's own queue, then from any other.
func (p *WorkerPool) next(self int) (func(), bool) {
	for i := range p.queues {
		q := p.queues[(self+i)%len(p.queues)]
		select {
		case fn := <-q:
			return fn, true
		default:
		}
	}
	return nil, false
}

// shortest returns the index of the least loaded queue.
func (p *WorkerPool) shortest() int {
	best := 0
	for i := 1; i < len(p.queues); i++ {
		if len(p.queues[i]) < len(p.queues[best]) {
			best = i
		}
	}
	return best
}

// InvokeAll runs every item of work and returns once all of them finished.
// Items are dealt round-robin over the queues. Items that cannot be queued
// because the pool is closing run on the calling goroutine.
func (p *WorkerPool) InvokeAll(work []func()) {
	if len(work) == 0 {
		return
	}

	var wg sync.WaitGroup
	wg.Add(len(work))
	for i, fn := range work {
		item := func() {
			defer wg.Done()
			fn()
		}
		if !p.enqueue(p.queues[i%len(p.queues)], item) {
			item()
		}
	}
	wg.Wait()
}

// enqueue sends fn to q, blocking while q is full. It returns false without
// sending once Close has started. A send that succeeds always happens
// before the workers stop, so the item runs.
func (p *WorkerPool) enqueue(q chan func(), fn func()) bool {
	p.senders.RLock()
	defer p.senders.RUnlock()
	if !p.running.Load() {
		return false
	}
	select {
	case q <- fn:
		return true
	case <-p.closing:
		return false
	}
}

// Submit queues fn on the least loaded worker without blocking. When every
// queue is full a goroutine waits for room on fn's behalf; if the pool
// closes first, that goroutine runs fn itself. Returns false for a nil fn
// or a closed pool.
func (p *WorkerPool) Submit(fn func()) bool {
	if fn == nil {
		return false
	}
	p.senders.RLock()
	if !p.running.Load() {
		p.senders.RUnlock()
		return false
	}
	q := p.queues[p.shortest()]
	select {
	case q <- fn:
		p.senders.RUnlock()
		return true
	default:
	}
	p.senders.RUnlock()

	p.handoffs.Add(1)
	go func() {
		if !p.enqueue(q, fn) {
			fn()
		}
	}()
	return true
}

// Close stops accepting work, finishes what is queued and waits for the
// workers to exit. Close is safe to call multiple times.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.closing)
	// Wait out senders that checked running before the swap.
	p.senders.Lock()
	close(p.stop)
	p.senders.Unlock()
	p.wg.Wait()
}

// Workers returns the number of worker goroutines.
func (p *WorkerPool) Workers() int {
	return len(p.queues)
}

// QueuedWork approximates the number of items waiting in the queues.
func (p *WorkerPool) QueuedWork() int {
	n := 0
	for _, q := range p.queues {
		n += len(q)
	}
	return n
}

// Handoffs returns how many submissions found every queue full.
func (p *WorkerPool) Handoffs() int64 {
	return p.handoffs.Load()
}
