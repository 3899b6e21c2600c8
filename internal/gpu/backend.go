package gpu

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/blur/internal/cache"
	"github.com/gogpu/blur/internal/filter"
)

// Default pool sizes.
const (
	DefaultTexturePoolSize = 8
	DefaultTargetPoolSize  = 4
)

// Stats reports backend resource usage.
type Stats struct {
	Device       DeviceStats
	Textures     cache.Stats
	Targets      cache.Stats
	Contexts     int
	IdleContexts int
	Blurs        uint64
	Passthroughs uint64
	Links        uint64
}

// Backend runs two-pass blurs on a Device.
//
// Backend owns the texture and render target pools and the render contexts.
// It is safe for concurrent use; each blur runs on its own context.
type Backend struct {
	device   Device
	textures *TexturePool
	targets  *TargetPool
	contexts *contextMap

	blurs        atomic.Uint64
	passthroughs atomic.Uint64
	links        atomic.Uint64
	closed       atomic.Bool
}

// NewBackend creates a backend on device with the given pool sizes.
// Non-positive sizes select the defaults.
func NewBackend(device Device, texturePoolSize, targetPoolSize int) *Backend {
	if texturePoolSize <= 0 {
		texturePoolSize = DefaultTexturePoolSize
	}
	if targetPoolSize <= 0 {
		targetPoolSize = DefaultTargetPoolSize
	}
	return &Backend{
		device:   device,
		textures: NewTexturePool(device, texturePoolSize),
		targets:  NewTargetPool(device, targetPoolSize),
		contexts: newContextMap(device),
	}
}

// Device returns the backend's device.
func (b *Backend) Device() Device { return b.device }

// Acquire returns a render context for the calling goroutine. It must be
// handed back with Release.
func (b *Backend) Acquire() (*RenderContext, error) {
	if b.closed.Load() {
		return nil, ErrReleased
	}
	return b.contexts.acquire()
}

// Release hands c back for reuse.
func (b *Backend) Release(c *RenderContext) {
	b.contexts.release(c)
}

// Blur blurs pix (packed ARGB, width x height) in place.
//
// If the program for mode fails to link, pix is left unchanged and Blur
// returns nil.
func (b *Backend) Blur(pix []uint32, width, height int, mode filter.Mode, radius int) error {
	c, err := b.Acquire()
	if err != nil {
		return err
	}
	defer b.Release(c)
	return b.BlurWith(c, pix, width, height, mode, radius)
}

// BlurWith is Blur on an already acquired context.
func (b *Backend) BlurWith(c *RenderContext, pix []uint32, width, height int, mode filter.Mode, radius int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if len(pix) < width*height {
		return fmt.Errorf("%w: %d pixels for %dx%d", ErrInvalidDimensions, len(pix), width, height)
	}
	if b.closed.Load() {
		return ErrReleased
	}
	if radius < 1 {
		return nil
	}

	before := c.renderer.Links()
	c.renderer.SetMode(mode)
	c.renderer.link()
	b.links.Add(uint64(c.renderer.Links() - before))
	if !c.renderer.Program().Valid() {
		b.passthroughs.Add(1)
		return nil
	}

	src, err := b.textures.Get(width, height)
	if err != nil {
		return fmt.Errorf("gpu: source texture: %w", err)
	}
	defer b.textures.Put(src)
	if err := b.device.Upload(src, pix); err != nil {
		return fmt.Errorf("gpu: upload: %w", err)
	}

	output, err := b.textures.Get(width, height)
	if err != nil {
		return fmt.Errorf("gpu: output texture: %w", err)
	}
	defer b.textures.Put(output)
	c.display.Attach(output)
	defer c.display.Attach(nil)

	drawn, err := c.renderer.Blur(src, c.display, b.textures, b.targets, radius)
	if err != nil {
		return err
	}
	if !drawn {
		b.passthroughs.Add(1)
		return nil
	}
	if err := b.device.Readback(output, pix[:width*height]); err != nil {
		return fmt.Errorf("gpu: readback: %w", err)
	}
	b.blurs.Add(1)
	return nil
}

// Stats returns resource and call counters.
func (b *Backend) Stats() Stats {
	total, idle := b.contexts.len()
	return Stats{
		Device:       b.device.Stats(),
		Textures:     b.textures.Stats(),
		Targets:      b.targets.Stats(),
		Contexts:     total,
		IdleContexts: idle,
		Blurs:        b.blurs.Load(),
		Passthroughs: b.passthroughs.Load(),
		Links:        b.links.Load(),
	}
}

// Close releases idle contexts and empties the pools. Resources still in
// use are deleted when returned. The device itself is not released.
func (b *Backend) Close() {
	if !b.closed.CompareAndSwap(false, true) {
		return
	}
	b.contexts.close()
	b.textures.Close()
	b.targets.Close()
	slogger().Debug("gpu: backend closed", "device", b.device.Name())
}
