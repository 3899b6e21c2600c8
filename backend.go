package blur

import (
	"fmt"

	"github.com/gogpu/blur/internal/filter"
	"github.com/gogpu/blur/internal/parallel"
)

// Backend executes the core blur of a Processor. Both passes run in place
// on buf.
type Backend interface {
	// Scheme identifies the backend.
	Scheme() Scheme

	// Blur runs both passes on the calling goroutine.
	Blur(buf *PixelBuffer, mode Mode, radius int) error

	// BlurParallel splits each pass into stripes and runs them on the
	// engine's stripe pool, with a barrier between the passes.
	// Backends that cannot split work return ErrUnsupported.
	BlurParallel(buf *PixelBuffer, mode Mode, radius, stripes int) error
}

// Backend returns the backend for scheme.
func (e *Engine) Backend(scheme Scheme) (Backend, error) {
	switch scheme {
	case Portable:
		return &PortableBackend{engine: e}, nil
	case Native:
		return &NativeBackend{engine: e}, nil
	case GPU:
		return &GPUBackend{engine: e}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownScheme, scheme)
	}
}

// applyFunc is the signature shared by filter.Apply and filter.ApplyWide.
type applyFunc func(mode filter.Mode, pix []uint32, width, height, radius int, dir filter.Direction, start, end int)

func blurInline(apply applyFunc, buf *PixelBuffer, mode Mode, radius int) {
	apply(mode.filter(), buf.pix, buf.width, buf.height, radius, filter.Both, 0, 0)
}

func blurStripes(apply applyFunc, pool *parallel.WorkerPool, buf *PixelBuffer, mode Mode, radius, stripes int) {
	m := mode.filter()
	w, h := buf.width, buf.height
	Logger().Debug("blur: stripe split", "mode", mode.String(), "stripes", stripes, "width", w, "height", h)
	parallel.RunPasses(pool, stripes, w, h,
		func(s parallel.Stripe) {
			apply(m, buf.pix, w, h, radius, filter.Horizontal, s.Start, s.End)
		},
		func(s parallel.Stripe) {
			apply(m, buf.pix, w, h, radius, filter.Vertical, s.Start, s.End)
		},
	)
}

// PortableBackend runs the integer kernels one row or column at a time.
type PortableBackend struct {
	engine *Engine
}

// Scheme implements Backend.
func (b *PortableBackend) Scheme() Scheme { return Portable }

// Blur implements Backend.
func (b *PortableBackend) Blur(buf *PixelBuffer, mode Mode, radius int) error {
	if err := buf.validate(); err != nil {
		return err
	}
	blurInline(filter.Apply, buf, mode, radius)
	return nil
}

// BlurParallel implements Backend.
func (b *PortableBackend) BlurParallel(buf *PixelBuffer, mode Mode, radius, stripes int) error {
	if err := buf.validate(); err != nil {
		return err
	}
	if b.engine.closed.Load() {
		return ErrEngineClosed
	}
	blurStripes(filter.Apply, b.engine.stripes, buf, mode, radius, stripes)
	return nil
}

// NativeBackend runs the kernels over eight rows or columns at once. Its
// output is identical to PortableBackend. If the host lacks the vector
// units the lanes target, blurs leave the buffer unchanged.
type NativeBackend struct {
	engine *Engine
}

// Scheme implements Backend.
func (b *NativeBackend) Scheme() Scheme { return Native }

// Blur implements Backend.
func (b *NativeBackend) Blur(buf *PixelBuffer, mode Mode, radius int) error {
	if err := buf.validate(); err != nil {
		return err
	}
	if !b.engine.nativeAvailable() {
		return nil
	}
	blurInline(filter.ApplyWide, buf, mode, radius)
	return nil
}

// BlurParallel implements Backend.
func (b *NativeBackend) BlurParallel(buf *PixelBuffer, mode Mode, radius, stripes int) error {
	if err := buf.validate(); err != nil {
		return err
	}
	if b.engine.closed.Load() {
		return ErrEngineClosed
	}
	if !b.engine.nativeAvailable() {
		return nil
	}
	blurStripes(filter.ApplyWide, b.engine.stripes, buf, mode, radius, stripes)
	return nil
}

// GPUBackend renders the blur with the engine's GPU device. A program that
// fails to compile leaves the buffer unchanged.
type GPUBackend struct {
	engine *Engine
}

// Scheme implements Backend.
func (b *GPUBackend) Scheme() Scheme { return GPU }

// Blur implements Backend.
func (b *GPUBackend) Blur(buf *PixelBuffer, mode Mode, radius int) error {
	if err := buf.validate(); err != nil {
		return err
	}
	g := b.engine.gpuBackend()
	if g == nil {
		return ErrEngineClosed
	}
	if err := g.Blur(buf.pix, buf.width, buf.height, mode.filter(), radius); err != nil {
		return fmt.Errorf("blur: gpu: %w", err)
	}
	return nil
}

// BlurParallel always fails: one image is never split across GPU contexts.
func (b *GPUBackend) BlurParallel(*PixelBuffer, Mode, int, int) error {
	return fmt.Errorf("%w: parallel blur on the %s scheme", ErrUnsupported, GPU)
}
