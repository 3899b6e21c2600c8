package gpu

import (
	"fmt"
	"math"
	"sync"

	"github.com/gogpu/blur/internal/filter"
)

// SoftwareDevice evaluates blur programs on the CPU.
//
// It mirrors the WGSL program: float weights, clamped texel fetches and
// RGBA8 unorm storage. Programs are still compiled with naga, so a program
// that would not build on a GPU fails here too.
type SoftwareDevice struct {
	mu       sync.Mutex
	nextID   uint32
	textures map[uint32]*Texture
	targets  map[uint32]*RenderTarget
	programs map[uint32]*Program
	released bool
}

// NewSoftwareDevice creates a CPU-backed device.
func NewSoftwareDevice() *SoftwareDevice {
	return &SoftwareDevice{
		textures: make(map[uint32]*Texture),
		targets:  make(map[uint32]*RenderTarget),
		programs: make(map[uint32]*Program),
	}
}

// Name implements Device.
func (d *SoftwareDevice) Name() string { return "software" }

func (d *SoftwareDevice) id() uint32 {
	d.nextID++
	return d.nextID
}

// CreateTexture implements Device.
func (d *SoftwareDevice) CreateTexture(width, height int) (*Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: texture %dx%d", ErrInvalidDimensions, width, height)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return nil, ErrReleased
	}
	t := &Texture{ID: d.id(), Width: width, Height: height, native: make([]uint32, width*height)}
	d.textures[t.ID] = t
	return t, nil
}

// DeleteTexture implements Device.
func (d *SoftwareDevice) DeleteTexture(t *Texture) {
	if t == nil {
		return
	}
	d.mu.Lock()
	delete(d.textures, t.ID)
	d.mu.Unlock()
}

// CreateRenderTarget implements Device.
func (d *SoftwareDevice) CreateRenderTarget() (*RenderTarget, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return nil, ErrReleased
	}
	rt := &RenderTarget{ID: d.id()}
	d.targets[rt.ID] = rt
	return rt, nil
}

// DeleteRenderTarget implements Device.
func (d *SoftwareDevice) DeleteRenderTarget(rt *RenderTarget) {
	if rt == nil {
		return
	}
	d.mu.Lock()
	delete(d.targets, rt.ID)
	d.mu.Unlock()
}

// Upload implements Device.
func (d *SoftwareDevice) Upload(t *Texture, pix []uint32) error {
	texels, err := softwareTexels(t, len(pix))
	if err != nil {
		return err
	}
	copy(texels, pix)
	return nil
}

// Readback implements Device.
func (d *SoftwareDevice) Readback(t *Texture, pix []uint32) error {
	texels, err := softwareTexels(t, len(pix))
	if err != nil {
		return err
	}
	copy(pix, texels)
	return nil
}

func softwareTexels(t *Texture, n int) ([]uint32, error) {
	if t == nil {
		return nil, ErrNoTexture
	}
	texels, ok := t.native.([]uint32)
	if !ok {
		return nil, fmt.Errorf("gpu: %v does not belong to the software device", t)
	}
	if n != len(texels) {
		return nil, fmt.Errorf("%w: %d pixels for %v", ErrInvalidDimensions, n, t)
	}
	return texels, nil
}

// CreateProgram implements Device.
func (d *SoftwareDevice) CreateProgram(mode filter.Mode, source string) (*Program, error) {
	if _, err := CompileSPIRV(source); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return nil, ErrReleased
	}
	p := &Program{ID: d.id(), Mode: mode}
	d.programs[p.ID] = p
	return p, nil
}

// DeleteProgram implements Device.
func (d *SoftwareDevice) DeleteProgram(p *Program) {
	if p == nil {
		return
	}
	d.mu.Lock()
	delete(d.programs, p.ID)
	d.mu.Unlock()
}

// Draw implements Device.
func (d *SoftwareDevice) Draw(p *Program, rt *RenderTarget, src *Texture, pass Pass) error {
	if !p.Valid() {
		return ErrInvalidProgram
	}
	if rt == nil || rt.texture == nil {
		return ErrNoTexture
	}
	dst := rt.texture
	srcTexels, err := softwareTexels(src, src.Width*src.Height)
	if err != nil {
		return err
	}
	dstTexels, err := softwareTexels(dst, dst.Width*dst.Height)
	if err != nil {
		return err
	}

	weights := programWeights(p.Mode, pass.Radius)
	var total float32
	for _, w := range weights {
		total += w
	}
	dx, dy := pass.offset()
	keepAlpha := p.Mode.PreservesAlpha()

	fetch := func(x, y int) [4]float32 {
		x = min(max(x, 0), src.Width-1)
		y = min(max(y, 0), src.Height-1)
		return unpackUnorm(srcTexels[y*src.Width+x])
	}

	for y := 0; y < dst.Height; y++ {
		for x := 0; x < dst.Width; x++ {
			var acc [4]float32
			for k, w := range weights {
				i := k - pass.Radius
				c := fetch(x+dx*i, y+dy*i)
				for ch := range acc {
					acc[ch] += c[ch] * w
				}
			}
			for ch := range acc {
				acc[ch] /= total
			}
			if keepAlpha {
				acc[3] = fetch(x, y)[3]
			}
			dstTexels[y*dst.Width+x] = packUnorm(acc)
		}
	}
	return nil
}

// programWeights evaluates blur_weight of the WGSL program for every tap.
func programWeights(mode filter.Mode, radius int) []float32 {
	weights := make([]float32, 2*radius+1)
	sigma := (float32(radius) + 1) * 0.5
	for k := range weights {
		i := k - radius
		switch mode {
		case filter.Gaussian:
			x := float32(i)
			weights[k] = float32(math.Exp(float64(-(x*x)/(2*sigma*sigma)))) / sigma
		case filter.Stack:
			weights[k] = float32(radius + 1 - max(i, -i))
		default:
			weights[k] = 1
		}
	}
	return weights
}

// unpackUnorm converts packed ARGB to normalized RGBA.
func unpackUnorm(p uint32) [4]float32 {
	return [4]float32{
		float32(p>>16&0xff) / 255,
		float32(p>>8&0xff) / 255,
		float32(p&0xff) / 255,
		float32(p>>24) / 255,
	}
}

// packUnorm converts normalized RGBA to packed ARGB with unorm rounding.
func packUnorm(c [4]float32) uint32 {
	var b [4]uint32
	for i, v := range c {
		v = min(max(v, 0), 1)
		b[i] = uint32(v*255 + 0.5)
	}
	return b[3]<<24 | b[0]<<16 | b[1]<<8 | b[2]
}

// Stats implements Device.
func (d *SoftwareDevice) Stats() DeviceStats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return DeviceStats{
		Textures: len(d.textures),
		Targets:  len(d.targets),
		Programs: len(d.programs),
	}
}

// Release implements Device.
func (d *SoftwareDevice) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return
	}
	d.released = true
	if n := len(d.textures) + len(d.targets) + len(d.programs); n > 0 {
		slogger().Warn("gpu: software device released with live resources", "count", n)
	}
}

var _ Device = (*SoftwareDevice)(nil)
