package blur

import "sync"

// Dispatcher runs asynchronous blur callbacks.
//
// A host with a single-threaded event loop implements Dispatch by posting fn
// to that loop.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(fn func())

// Dispatch calls f(fn).
func (f DispatcherFunc) Dispatch(fn func()) { f(fn) }

// InlineDispatcher runs callbacks on the worker that finished the blur.
type InlineDispatcher struct{}

// Dispatch runs fn immediately.
func (InlineDispatcher) Dispatch(fn func()) { fn() }

// GoDispatcher runs each callback on a new goroutine. It is the default.
type GoDispatcher struct{}

// Dispatch runs fn on a new goroutine.
func (GoDispatcher) Dispatch(fn func()) { go fn() }

// QueueDispatcher runs callbacks one at a time, in dispatch order, on a
// single goroutine.
type QueueDispatcher struct {
	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	done   chan struct{}
	closed bool
}

// NewQueueDispatcher starts a queue dispatcher. Call Close to stop it.
func NewQueueDispatcher() *QueueDispatcher {
	q := &QueueDispatcher{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go q.run()
	return q
}

// Dispatch queues fn. It never blocks. Callbacks dispatched after Close are
// dropped.
func (q *QueueDispatcher) Dispatch(fn func()) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		Logger().Warn("blur: callback dropped by closed dispatcher")
		return
	}
	q.queue = append(q.queue, fn)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *QueueDispatcher) run() {
	defer close(q.done)
	for {
		q.mu.Lock()
		batch := q.queue
		q.queue = nil
		closed := q.closed
		q.mu.Unlock()

		for _, fn := range batch {
			fn()
		}
		if len(batch) > 0 {
			continue
		}
		if closed {
			return
		}
		<-q.wake
	}
}

// Close runs the callbacks already queued, then stops the goroutine.
// Close is safe to call multiple times.
func (q *QueueDispatcher) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.closed = true
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	<-q.done
}
