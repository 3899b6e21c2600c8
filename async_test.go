package blur

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// manualDispatcher queues callbacks until the test runs them.
type manualDispatcher struct {
	mu    sync.Mutex
	queue []func()
}

func (d *manualDispatcher) Dispatch(fn func()) {
	d.mu.Lock()
	d.queue = append(d.queue, fn)
	d.mu.Unlock()
}

// drain runs and removes every queued callback; returns how many ran.
func (d *manualDispatcher) drain() int {
	d.mu.Lock()
	q := d.queue
	d.queue = nil
	d.mu.Unlock()
	for _, fn := range q {
		fn()
	}
	return len(q)
}

func waitDone(t *testing.T, h *Handle) {
	t.Helper()
	select {
	case <-h.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for async blur")
	}
}

// =============================================================================
// Delivery Tests
// =============================================================================

func TestAsyncBlur_ForceCopyDeliveredViaDispatcher(t *testing.T) {
	e := newTestEngine(t)
	d := &manualDispatcher{}
	p := newTestProcessor(t, e, WithRadius(3), WithForceCopy(true), WithDispatcher(d))

	src := randomBuffer(t, 32, 32, 21)
	before := src.Clone()

	var got *PixelBuffer
	var failed atomic.Bool
	h, err := p.AsyncBlur(context.Background(), src, Callback{
		OnSuccess: func(b *PixelBuffer) { got = b },
		OnFailed:  func(error) { failed.Store(true) },
	})
	if err != nil {
		t.Fatalf("AsyncBlur() error = %v", err)
	}
	assertSamePixels(t, src, before)

	waitDone(t, h)
	if got != nil {
		t.Fatal("callback ran outside the dispatcher")
	}
	if n := d.drain(); n != 1 {
		t.Fatalf("dispatched %d callbacks, want 1", n)
	}
	if failed.Load() || got == nil {
		t.Fatal("OnSuccess was not delivered")
	}
	if got == src {
		t.Error("force copy result aliases the input")
	}
	assertSamePixels(t, src, before)

	want, err := newTestProcessor(t, e, WithRadius(3), WithForceCopy(true)).Blur(src)
	if err != nil {
		t.Fatal(err)
	}
	assertSamePixels(t, got, want)
}

func TestAsyncBlur_QueueDispatcher(t *testing.T) {
	e := newTestEngine(t)
	q := NewQueueDispatcher()
	defer q.Close()
	p := newTestProcessor(t, e, WithRadius(1), WithMode(Stack), WithDispatcher(q))

	const n = 10
	results := make(chan int, n)
	for i := 0; i < n; i++ {
		_, err := p.AsyncBlur(context.Background(), randomBuffer(t, 8, 8, int64(i)), Callback{
			OnSuccess: func(*PixelBuffer) { results <- i },
			OnFailed:  func(err error) { t.Errorf("OnFailed(%v)", err) },
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	seen := make(map[int]bool)
	for len(seen) < n {
		select {
		case i := <-results:
			seen[i] = true
		case <-time.After(5 * time.Second):
			t.Fatalf("received %d of %d results", len(seen), n)
		}
	}
}

func TestAsyncBlurSurface(t *testing.T) {
	e := newTestEngine(t)
	p := newTestProcessor(t, e, WithRadius(2), WithScheme(GPU), WithDispatcher(InlineDispatcher{}))

	img := uniformBuffer(t, 9, 9, 0xff204060).ToImage()
	done := make(chan *PixelBuffer, 1)
	h, err := p.AsyncBlurSurface(context.Background(), img, Callback{
		OnSuccess: func(b *PixelBuffer) { done <- b },
	})
	if err != nil {
		t.Fatal(err)
	}
	waitDone(t, h)

	got := <-done
	for _, c := range got.Pix() {
		if c != 0xff204060 {
			t.Fatalf("pixel = %08x, want ff204060", c)
		}
	}
}

// =============================================================================
// Failure Tests
// =============================================================================

func TestAsyncBlur_PreconditionsFailAtCallSite(t *testing.T) {
	e := newTestEngine(t)
	var calls atomic.Int32
	cb := Callback{
		OnSuccess: func(*PixelBuffer) { calls.Add(1) },
		OnFailed:  func(error) { calls.Add(1) },
	}

	p := newTestProcessor(t, e, WithScheme(GPU), WithParallel(true))
	if _, err := p.AsyncBlur(context.Background(), uniformBuffer(t, 4, 4, 0), cb); !errors.Is(err, ErrUnsupported) {
		t.Errorf("GPU parallel error = %v, want ErrUnsupported", err)
	}

	p = newTestProcessor(t, e)
	if _, err := p.AsyncBlur(context.Background(), nil, cb); !errors.Is(err, ErrNilBuffer) {
		t.Errorf("nil buffer error = %v, want ErrNilBuffer", err)
	}
	if _, err := p.AsyncBlurSurface(context.Background(), nil, cb); !errors.Is(err, ErrNilBuffer) {
		t.Errorf("nil surface error = %v, want ErrNilBuffer", err)
	}

	time.Sleep(20 * time.Millisecond)
	if calls.Load() != 0 {
		t.Errorf("callbacks ran %d times for rejected submissions", calls.Load())
	}
}

func TestAsyncBlur_FailureDeliveredToOnFailed(t *testing.T) {
	e := newTestEngine(t, WithTaskWorkers(1))

	// Occupy the only task worker.
	release := make(chan struct{})
	blocker := newTestProcessor(t, e, WithRadius(1), WithDispatcher(DispatcherFunc(func(fn func()) {
		<-release
		fn()
	})))
	if _, err := blocker.AsyncBlur(context.Background(), uniformBuffer(t, 2, 2, 0), Callback{}); err != nil {
		t.Fatal(err)
	}

	failed := make(chan error, 1)
	p := newTestProcessor(t, e, WithRadius(1), WithDispatcher(InlineDispatcher{}))
	buf := uniformBuffer(t, 4, 4, 0xffffffff)
	h, err := p.AsyncBlur(context.Background(), buf, Callback{
		OnSuccess: func(*PixelBuffer) { t.Error("OnSuccess on a recycled buffer") },
		OnFailed:  func(err error) { failed <- err },
	})
	if err != nil {
		t.Fatal(err)
	}

	// The buffer is blurred in place, so recycling it before the worker
	// gets to it makes the blur fail.
	buf.Recycle()
	close(release)

	select {
	case err := <-failed:
		if !errors.Is(err, ErrRecycled) {
			t.Errorf("OnFailed(%v), want ErrRecycled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for OnFailed")
	}
	waitDone(t, h)
}

// =============================================================================
// Cancellation Tests
// =============================================================================

func TestAsyncBlur_CancelBeforeStartSuppressesCallbacks(t *testing.T) {
	e := newTestEngine(t, WithTaskWorkers(1))

	release := make(chan struct{})
	blocker := newTestProcessor(t, e, WithRadius(1), WithDispatcher(DispatcherFunc(func(fn func()) {
		<-release
		fn()
	})))
	if _, err := blocker.AsyncBlur(context.Background(), uniformBuffer(t, 2, 2, 0), Callback{}); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	p := newTestProcessor(t, e, WithRadius(2), WithDispatcher(InlineDispatcher{}))
	h, err := p.AsyncBlur(context.Background(), randomBuffer(t, 16, 16, 5), Callback{
		OnSuccess: func(*PixelBuffer) { calls.Add(1) },
		OnFailed:  func(error) { calls.Add(1) },
	})
	if err != nil {
		t.Fatal(err)
	}

	if !h.Cancel() {
		t.Fatal("Cancel() = false on a queued blur")
	}
	if h.Cancel() {
		t.Error("second Cancel() should return false")
	}
	close(release)
	waitDone(t, h)

	// Let the worker pick up the cancelled unit.
	time.Sleep(50 * time.Millisecond)
	if calls.Load() != 0 {
		t.Errorf("callbacks ran %d times after cancel", calls.Load())
	}
	if !h.Cancelled() {
		t.Error("Cancelled() = false")
	}
}

func TestAsyncBlur_ContextCancelSuppressesCallbacks(t *testing.T) {
	e := newTestEngine(t, WithTaskWorkers(1))

	release := make(chan struct{})
	blocker := newTestProcessor(t, e, WithRadius(1), WithDispatcher(DispatcherFunc(func(fn func()) {
		<-release
		fn()
	})))
	if _, err := blocker.AsyncBlur(context.Background(), uniformBuffer(t, 2, 2, 0), Callback{}); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	p := newTestProcessor(t, e, WithRadius(2), WithDispatcher(InlineDispatcher{}))
	h, err := p.AsyncBlur(ctx, randomBuffer(t, 16, 16, 6), Callback{
		OnSuccess: func(*PixelBuffer) { calls.Add(1) },
		OnFailed:  func(error) { calls.Add(1) },
	})
	if err != nil {
		t.Fatal(err)
	}
	cancel()
	close(release)

	waitCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := h.Wait(waitCtx); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)
	if calls.Load() != 0 {
		t.Errorf("callbacks ran %d times after context cancel", calls.Load())
	}
}

func TestAsyncBlur_CancelAfterCompletion(t *testing.T) {
	e := newTestEngine(t)
	delivered := make(chan struct{})
	p := newTestProcessor(t, e, WithRadius(1), WithDispatcher(InlineDispatcher{}))

	h, err := p.AsyncBlur(context.Background(), randomBuffer(t, 4, 4, 1), Callback{
		OnSuccess: func(*PixelBuffer) { close(delivered) },
	})
	if err != nil {
		t.Fatal(err)
	}
	waitDone(t, h)
	<-delivered

	if h.Cancel() {
		t.Error("Cancel() after completion should return false")
	}
	if h.Cancelled() {
		t.Error("completed blur reports Cancelled")
	}
}

func TestAsyncBlur_EngineClosed(t *testing.T) {
	e := NewEngine(WithSoftwareGPU())
	p, err := e.NewProcessor(NewConfig())
	if err != nil {
		t.Fatal(err)
	}
	e.Close()

	if _, err := p.AsyncBlur(context.Background(), uniformBuffer(t, 2, 2, 0), Callback{}); !errors.Is(err, ErrEngineClosed) {
		t.Errorf("AsyncBlur() after Close error = %v, want ErrEngineClosed", err)
	}
}
