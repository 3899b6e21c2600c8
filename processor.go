package blur

import (
	"context"
	"fmt"
	"image"

	"github.com/gogpu/blur/internal/parallel"
)

// Processor blurs buffers with one Config and one Backend.
//
// A blur normalizes the input (copy, translate, downscale), runs the
// backend, then optionally scales the result back to the input size.
//
// Thread safety: Processor is safe for concurrent use. The GPU backend runs
// each concurrent call on its own render context.
type Processor struct {
	engine  *Engine
	cfg     Config
	backend Backend
}

// NewProcessor returns a processor on the default engine.
func NewProcessor(cfg Config) (*Processor, error) {
	return DefaultEngine().NewProcessor(cfg)
}

// MustProcessor is like NewProcessor but panics on an invalid
// configuration.
func MustProcessor(cfg Config) *Processor {
	p, err := NewProcessor(cfg)
	if err != nil {
		panic(err)
	}
	return p
}

// NewProcessor returns a processor using e's resources. The scheme and mode
// of cfg must be known.
func (e *Engine) NewProcessor(cfg Config) (*Processor, error) {
	if cfg.radius < 1 {
		// Zero Config: not built with NewConfig.
		cfg = NewConfig()
	}
	if !cfg.mode.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, cfg.mode)
	}
	backend, err := e.Backend(cfg.scheme)
	if err != nil {
		return nil, err
	}
	return &Processor{engine: e, cfg: cfg, backend: backend}, nil
}

// Config returns the processor's configuration.
func (p *Processor) Config() Config { return p.cfg }

// Backend returns the processor's backend.
func (p *Processor) Backend() Backend { return p.backend }

// Blur blurs buf and returns the result.
//
// A mutable buf without WithForceCopy is blurred in place and returned,
// unless translation or downscaling produce a new buffer.
func (p *Processor) Blur(buf *PixelBuffer) (*PixelBuffer, error) {
	if err := p.check(buf); err != nil {
		return nil, err
	}
	return p.run(context.Background(), p.input(buf), buf.width, buf.height)
}

// BlurSurface blurs a snapshot of a rendered surface. The snapshot is
// copied; img is never modified.
func (p *Processor) BlurSurface(img image.Image) (*PixelBuffer, error) {
	buf, err := FromImage(img)
	if err != nil {
		return nil, err
	}
	return p.Blur(buf)
}

// Callback receives the outcome of an asynchronous blur. Exactly one of the
// functions runs, on the configured Dispatcher, unless the blur is
// cancelled first; then neither runs. Nil functions are skipped.
type Callback struct {
	OnSuccess func(*PixelBuffer)
	OnFailed  func(error)
}

// Handle controls an asynchronous blur.
type Handle struct {
	h *parallel.Handle
}

// Cancel stops the blur if it has not completed. It returns true if the
// call cancelled it; callbacks are then never run.
func (h *Handle) Cancel() bool { return h.h.Cancel() }

// Done is closed when the blur completed or was cancelled. For a completed
// blur the callback has been handed to the Dispatcher by then.
func (h *Handle) Done() <-chan struct{} { return h.h.Done() }

// Cancelled reports whether the blur was cancelled.
func (h *Handle) Cancelled() bool { return h.h.Cancelled() }

// Wait blocks until Done is closed or ctx ends.
func (h *Handle) Wait(ctx context.Context) error { return h.h.Wait(ctx) }

// AsyncBlur blurs buf on the engine's task pool and reports the result
// through cb.
//
// Invalid input fails here, before anything is scheduled. With
// WithForceCopy or an immutable buf, the copy is taken before AsyncBlur
// returns, so buf may be reused immediately. Cancelling ctx cancels the
// blur.
func (p *Processor) AsyncBlur(ctx context.Context, buf *PixelBuffer, cb Callback) (*Handle, error) {
	if err := p.check(buf); err != nil {
		return nil, err
	}
	if p.engine.closed.Load() {
		return nil, ErrEngineClosed
	}
	work := p.input(buf)
	w, h := buf.width, buf.height
	return p.submit(ctx, func(ctx context.Context) (*PixelBuffer, error) {
		return p.run(ctx, work, w, h)
	}, cb)
}

// AsyncBlurSurface is AsyncBlur for a surface snapshot. The snapshot is
// copied before AsyncBlurSurface returns.
func (p *Processor) AsyncBlurSurface(ctx context.Context, img image.Image, cb Callback) (*Handle, error) {
	buf, err := FromImage(img)
	if err != nil {
		return nil, err
	}
	return p.AsyncBlur(ctx, buf, cb)
}

func (p *Processor) submit(ctx context.Context, work func(context.Context) (*PixelBuffer, error), cb Callback) (*Handle, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	dispatcher := p.cfg.dispatcher
	h, err := parallel.Submit(p.engine.tasks, ctx, work, func(out *PixelBuffer, err error) {
		dispatcher.Dispatch(func() {
			if err != nil {
				if cb.OnFailed != nil {
					cb.OnFailed(err)
				}
				return
			}
			if cb.OnSuccess != nil {
				cb.OnSuccess(out)
			}
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngineClosed, err)
	}
	return &Handle{h: h}, nil
}

// check rejects input that can never be blurred.
func (p *Processor) check(buf *PixelBuffer) error {
	if err := buf.validate(); err != nil {
		return err
	}
	if p.cfg.parallel && p.backend.Scheme() == GPU {
		// Fails fast, before any GPU resource exists.
		return p.backend.BlurParallel(buf, p.cfg.mode, p.cfg.radius, 0)
	}
	return nil
}

// input returns the buffer the pipeline may modify.
func (p *Processor) input(buf *PixelBuffer) *PixelBuffer {
	if p.cfg.forceCopy || !buf.mutable {
		return buf.Clone()
	}
	return buf
}

// run is the blur pipeline. work may be modified; w and h are the size of
// the caller's input.
func (p *Processor) run(ctx context.Context, work *PixelBuffer, w, h int) (*PixelBuffer, error) {
	if p.cfg.translateX != 0 || p.cfg.translateY != 0 {
		work = translate(work, p.cfg.translateX, p.cfg.translateY)
	}
	if p.cfg.downsamples() {
		work = downscale(work, p.cfg.sampleFactor)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var err error
	if p.cfg.parallel {
		err = p.backend.BlurParallel(work, p.cfg.mode, p.cfg.radius, p.stripes())
	} else {
		err = p.backend.Blur(work, p.cfg.mode, p.cfg.radius)
	}
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if p.cfg.upscale {
		work = upscale(work, w, h)
	}
	return work, nil
}

func (p *Processor) stripes() int {
	if p.cfg.workers > 0 {
		return p.cfg.workers
	}
	return p.engine.StripeWorkers()
}
