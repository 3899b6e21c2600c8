package gpu

import (
	"github.com/gogpu/blur/internal/cache"
)

// Size is a texture size key.
type Size struct {
	Width, Height int
}

// TexturePool reuses textures of an exact size.
type TexturePool struct {
	pool *cache.Pool[Size, *Texture]
}

type textureHooks struct {
	device Device
}

func (h textureHooks) Create(s Size) (*Texture, error) {
	slogger().Debug("gpu: texture pool miss", "width", s.Width, "height", s.Height)
	return h.device.CreateTexture(s.Width, s.Height)
}

func (h textureHooks) Match(s Size, t *Texture) bool {
	return t.Width == s.Width && t.Height == s.Height
}

func (h textureHooks) Evict(t *Texture) {
	slogger().Debug("gpu: texture evicted", "texture", t.String())
	h.device.DeleteTexture(t)
}

// NewTexturePool creates a pool keeping at most maxSize idle textures.
func NewTexturePool(device Device, maxSize int) *TexturePool {
	return &TexturePool{pool: cache.NewPool[Size, *Texture](maxSize, textureHooks{device: device})}
}

// Get returns an idle texture of exactly width x height or creates one.
func (p *TexturePool) Get(width, height int) (*Texture, error) {
	return p.pool.Get(Size{Width: width, Height: height})
}

// Put returns t to the pool.
func (p *TexturePool) Put(t *Texture) {
	if t == nil {
		return
	}
	p.pool.Put(t)
}

// EvictAll deletes every idle texture.
func (p *TexturePool) EvictAll() { p.pool.EvictAll() }

// Close deletes idle textures and deletes later returns immediately.
func (p *TexturePool) Close() { p.pool.Close() }

// Len returns the number of idle textures.
func (p *TexturePool) Len() int { return p.pool.Len() }

// Stats returns pool statistics.
func (p *TexturePool) Stats() cache.Stats { return p.pool.Stats() }

// TargetPool reuses render targets. Any idle target serves any request.
// Display targets are never pooled.
type TargetPool struct {
	pool *cache.Pool[struct{}, *RenderTarget]
}

type targetHooks struct {
	device Device
}

func (h targetHooks) Create(struct{}) (*RenderTarget, error) {
	return h.device.CreateRenderTarget()
}

func (h targetHooks) Match(struct{}, *RenderTarget) bool { return true }

func (h targetHooks) Evict(rt *RenderTarget) {
	h.device.DeleteRenderTarget(rt)
}

// NewTargetPool creates a pool keeping at most maxSize idle render targets.
func NewTargetPool(device Device, maxSize int) *TargetPool {
	return &TargetPool{pool: cache.NewPool[struct{}, *RenderTarget](maxSize, targetHooks{device: device})}
}

// Get returns an idle render target or creates one. The target comes back
// with no texture attached.
func (p *TargetPool) Get() (*RenderTarget, error) {
	rt, err := p.pool.Get(struct{}{})
	if err != nil {
		return nil, err
	}
	rt.texture = nil
	return rt, nil
}

// Put returns rt to the pool, detaching its texture. Display targets are
// ignored.
func (p *TargetPool) Put(rt *RenderTarget) {
	if rt == nil || rt.display {
		return
	}
	rt.texture = nil
	p.pool.Put(rt)
}

// EvictAll deletes every idle render target.
func (p *TargetPool) EvictAll() { p.pool.EvictAll() }

// Close deletes idle targets and deletes later returns immediately.
func (p *TargetPool) Close() { p.pool.Close() }

// Len returns the number of idle render targets.
func (p *TargetPool) Len() int { return p.pool.Len() }

// Stats returns pool statistics.
func (p *TargetPool) Stats() cache.Stats { return p.pool.Stats() }
