package gpu

import (
	"sync"

	"github.com/gogpu/blur/internal/filter"
)

// countingDevice wraps SoftwareDevice and records resource deletes.
type countingDevice struct {
	*SoftwareDevice

	mu             sync.Mutex
	textureDeletes map[uint32]int
	targetDeletes  map[uint32]int
	programs       int
	draws          int
}

func newCountingDevice() *countingDevice {
	return &countingDevice{
		SoftwareDevice: NewSoftwareDevice(),
		textureDeletes: make(map[uint32]int),
		targetDeletes:  make(map[uint32]int),
	}
}

func (d *countingDevice) DeleteTexture(t *Texture) {
	d.mu.Lock()
	d.textureDeletes[t.ID]++
	d.mu.Unlock()
	d.SoftwareDevice.DeleteTexture(t)
}

func (d *countingDevice) DeleteRenderTarget(rt *RenderTarget) {
	d.mu.Lock()
	d.targetDeletes[rt.ID]++
	d.mu.Unlock()
	d.SoftwareDevice.DeleteRenderTarget(rt)
}

func (d *countingDevice) CreateProgram(mode filter.Mode, source string) (*Program, error) {
	d.mu.Lock()
	d.programs++
	d.mu.Unlock()
	return d.SoftwareDevice.CreateProgram(mode, source)
}

func (d *countingDevice) Draw(p *Program, rt *RenderTarget, src *Texture, pass Pass) error {
	d.mu.Lock()
	d.draws++
	d.mu.Unlock()
	return d.SoftwareDevice.Draw(p, rt, src, pass)
}

// doubleDeletes returns resource ids deleted more than once.
func (d *countingDevice) doubleDeletes() []uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	var ids []uint32
	for id, n := range d.textureDeletes {
		if n > 1 {
			ids = append(ids, id)
		}
	}
	for id, n := range d.targetDeletes {
		if n > 1 {
			ids = append(ids, id)
		}
	}
	return ids
}

func uniformPix(w, h int, c uint32) []uint32 {
	pix := make([]uint32, w*h)
	for i := range pix {
		pix[i] = c
	}
	return pix
}

func gradientPix(w, h int) []uint32 {
	pix := make([]uint32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r := uint32(x * 255 / max(w-1, 1))
			g := uint32(y * 255 / max(h-1, 1))
			pix[y*w+x] = 0xff000000 | r<<16 | g<<8 | uint32((x+y)&0xff)
		}
	}
	return pix
}

var allModes = []filter.Mode{filter.Box, filter.Gaussian, filter.Stack}
