package gpu

import (
	"fmt"

	"github.com/gogpu/blur/internal/filter"
)

// Device is the GPU abstraction used by the blur backend.
//
// Implementations must be safe for concurrent use; individual resources are
// used by one goroutine at a time.
type Device interface {
	// Name identifies the device for logging.
	Name() string

	// CreateTexture allocates an RGBA8 texture usable as sample source,
	// render attachment and copy source/destination.
	CreateTexture(width, height int) (*Texture, error)
	DeleteTexture(t *Texture)

	// CreateRenderTarget allocates a render target with no texture attached.
	CreateRenderTarget() (*RenderTarget, error)
	DeleteRenderTarget(rt *RenderTarget)

	// Upload copies packed ARGB pixels into t.
	Upload(t *Texture, pix []uint32) error
	// Readback copies t into packed ARGB pixels.
	Readback(t *Texture, pix []uint32) error

	// CreateProgram compiles and links source for mode.
	CreateProgram(mode filter.Mode, source string) (*Program, error)
	DeleteProgram(p *Program)

	// Draw runs one blur pass of p, sampling src and writing the texture
	// attached to rt.
	Draw(p *Program, rt *RenderTarget, src *Texture, pass Pass) error

	// Stats reports live resources.
	Stats() DeviceStats

	// Release frees the device. Resources must be deleted first.
	Release()
}

// DeviceStats counts live device resources.
type DeviceStats struct {
	Textures int
	Targets  int
	Programs int
}

// Texture is a device texture.
type Texture struct {
	ID     uint32
	Width  int
	Height int

	native any
}

func (t *Texture) String() string {
	return fmt.Sprintf("texture#%d(%dx%d)", t.ID, t.Width, t.Height)
}

// RenderTarget is an offscreen frame buffer. Rendering writes into the
// attached texture.
type RenderTarget struct {
	ID uint32

	texture *Texture
	display bool
	native  any
}

// Attach binds t as the color attachment.
func (rt *RenderTarget) Attach(t *Texture) {
	rt.texture = t
}

// Texture returns the attached texture, or nil.
func (rt *RenderTarget) Texture() *Texture {
	return rt.texture
}

// Display reports whether rt is a context's display target.
func (rt *RenderTarget) Display() bool {
	return rt.display
}

// Program is a linked blur program.
type Program struct {
	ID   uint32
	Mode filter.Mode

	native any
}

// Valid reports whether the program linked successfully.
func (p *Program) Valid() bool {
	return p != nil && p.ID != 0
}

// Pass describes one directional blur pass.
type Pass struct {
	Radius int
	Dir    filter.Direction
}

// offset returns the sampling step of the pass.
func (p Pass) offset() (dx, dy int) {
	if p.Dir == filter.Vertical {
		return 0, 1
	}
	return 1, 0
}

// Params packs the pass into the shader uniform layout
// {radius, dir_x, dir_y, _pad} as little-endian i32.
func (p Pass) Params() []byte {
	dx, dy := p.offset()
	buf := make([]byte, 16)
	putI32(buf[0:], int32(p.Radius))
	putI32(buf[4:], int32(dx))
	putI32(buf[8:], int32(dy))
	return buf
}

func putI32(b []byte, v int32) {
	u := uint32(v)
	b[0] = byte(u)
	b[1] = byte(u >> 8)
	b[2] = byte(u >> 16)
	b[3] = byte(u >> 24)
}
