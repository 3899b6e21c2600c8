package parallel

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned when submitting to a closed TaskManager.
var ErrClosed = errors.New("parallel: task manager closed")

// State is the lifecycle state of a submitted task.
type State int32

const (
	// StatePending means the task is queued and has not started.
	StatePending State = iota
	// StateRunning means a worker is executing the task.
	StateRunning
	// StateSucceeded means the task finished without error.
	StateSucceeded
	// StateFailed means the task returned an error or panicked.
	StateFailed
	// StateCancelled means the task was cancelled before completing.
	StateCancelled
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s >= StateSucceeded
}

// PanicError carries a panic recovered inside a task.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("parallel: task panicked: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Handle controls a submitted task.
//
// Thread safety: Handle is safe for concurrent use.
type Handle struct {
	state  atomic.Int32
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func newHandle(parent context.Context) *Handle {
	ctx, cancel := context.WithCancel(parent)
	return &Handle{
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Cancel stops the task if it has not completed yet.
// A cancelled task never reaches its completion function.
// Returns true if this call cancelled the task.
func (h *Handle) Cancel() bool {
	for {
		s := h.State()
		if s.Terminal() {
			return false
		}
		if h.state.CompareAndSwap(int32(s), int32(StateCancelled)) {
			h.cancel()
			h.finish()
			return true
		}
	}
}

// Done is closed once the task reaches a terminal state.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// State returns the current lifecycle state.
func (h *Handle) State() State {
	return State(h.state.Load())
}

// Cancelled reports whether the task was cancelled.
func (h *Handle) Cancelled() bool {
	return h.State() == StateCancelled
}

// Wait blocks until the task is terminal or ctx is done.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Handle) finish() {
	h.once.Do(func() { close(h.done) })
}

// transition moves the handle from one state to another.
func (h *Handle) transition(from, to State) bool {
	return h.state.CompareAndSwap(int32(from), int32(to))
}

// DefaultTaskWorkers returns the async pool size for a host with cores
// logical CPUs: 1 on hosts with 3 or fewer, cores/2 otherwise.
func DefaultTaskWorkers(cores int) int {
	if cores <= 3 {
		return 1
	}
	return cores / 2
}

// TaskManager runs asynchronous units of work on a fixed worker pool.
//
// Thread safety: TaskManager is safe for concurrent use.
type TaskManager struct {
	pool *WorkerPool

	mu     sync.Mutex
	live   map[*Handle]struct{}
	closed bool
}

// NewTaskManager creates a manager with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewTaskManager(workers int) *TaskManager {
	return &TaskManager{
		pool: NewWorkerPool(workers),
		live: make(map[*Handle]struct{}),
	}
}

// Submit schedules work and returns immediately.
//
// When work finishes, complete is called on the worker goroutine with the
// result, unless the handle was cancelled first. Cancellation of parent or
// of the handle while work runs also suppresses complete. A panic inside
// work is recovered and reported as a *PanicError.
func Submit[T any](m *TaskManager, parent context.Context, work func(ctx context.Context) (T, error), complete func(T, error)) (*Handle, error) {
	h := newHandle(parent)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		h.cancel()
		return nil, ErrClosed
	}
	m.live[h] = struct{}{}
	m.mu.Unlock()

	run := func() {
		defer m.forget(h)
		if !h.transition(StatePending, StateRunning) {
			return
		}

		result, err := runSafely(h.ctx, work)
		if err != nil && h.ctx.Err() != nil && !isPanic(err) {
			// Cooperative cancellation through the context.
			if h.transition(StateRunning, StateCancelled) {
				h.cancel()
				h.finish()
			}
			return
		}

		final := StateSucceeded
		if err != nil {
			final = StateFailed
		}
		if !h.transition(StateRunning, final) {
			return
		}
		h.cancel()
		complete(result, err)
		h.finish()
	}

	if !m.pool.Submit(run) {
		m.forget(h)
		h.Cancel()
		return nil, ErrClosed
	}
	return h, nil
}

func runSafely[T any](ctx context.Context, work func(context.Context) (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return work(ctx)
}

func isPanic(err error) bool {
	var pe *PanicError
	return errors.As(err, &pe)
}

func (m *TaskManager) forget(h *Handle) {
	m.mu.Lock()
	delete(m.live, h)
	m.mu.Unlock()
}

// Pending returns the number of submitted tasks that have not finished.
func (m *TaskManager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}

// Workers returns the size of the worker pool.
func (m *TaskManager) Workers() int {
	return m.pool.Workers()
}

// Handoffs returns how many submissions waited for queue room.
func (m *TaskManager) Handoffs() int64 {
	return m.pool.Handoffs()
}

// Close cancels every unfinished task and stops the workers.
// Close is safe to call multiple times.
func (m *TaskManager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	handles := make([]*Handle, 0, len(m.live))
	for h := range m.live {
		handles = append(handles, h)
	}
	m.mu.Unlock()

	for _, h := range handles {
		h.Cancel()
	}
	m.pool.Close()
}
