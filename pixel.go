package blur

import (
	"fmt"
	"image"
	"image/color"
	"sync/atomic"

	"github.com/anthonynsimon/bild/clone"
)

// PixelBuffer is a width x height array of packed, non-premultiplied ARGB
// pixels (0xAARRGGBB), row-major.
//
// A mutable buffer may be blurred in place. An immutable buffer is always
// copied first. The engine never frees or recycles a caller's buffer.
type PixelBuffer struct {
	width   int
	height  int
	pix     []uint32
	mutable bool

	recycled atomic.Bool
}

// NewPixelBuffer allocates a transparent, mutable buffer.
func NewPixelBuffer(width, height int) (*PixelBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return &PixelBuffer{
		width:   width,
		height:  height,
		pix:     make([]uint32, width*height),
		mutable: true,
	}, nil
}

// WrapPixels wraps pix without copying. pix must hold at least
// width*height pixels; extra capacity is ignored.
func WrapPixels(pix []uint32, width, height int, mutable bool) (*PixelBuffer, error) {
	if width <= 0 || height <= 0 || len(pix) < width*height {
		return nil, fmt.Errorf("%w: %d pixels for %dx%d", ErrInvalidDimensions, len(pix), width, height)
	}
	return &PixelBuffer{
		width:   width,
		height:  height,
		pix:     pix[:width*height],
		mutable: mutable,
	}, nil
}

// FromImage copies img into a new mutable buffer.
func FromImage(img image.Image) (*PixelBuffer, error) {
	if img == nil {
		return nil, ErrNilBuffer
	}
	b := img.Bounds()
	buf, err := NewPixelBuffer(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}

	if n, ok := img.(*image.NRGBA); ok {
		buf.copyNRGBA(n)
		return buf, nil
	}

	rgba := clone.AsShallowRGBA(img)
	for y := 0; y < buf.height; y++ {
		row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+buf.width*4]
		out := buf.pix[y*buf.width : (y+1)*buf.width]
		for x := range out {
			out[x] = unpremultiply(row[x*4], row[x*4+1], row[x*4+2], row[x*4+3])
		}
	}
	return buf, nil
}

func (p *PixelBuffer) copyNRGBA(n *image.NRGBA) {
	for y := 0; y < p.height; y++ {
		row := n.Pix[y*n.Stride : y*n.Stride+p.width*4]
		out := p.pix[y*p.width : (y+1)*p.width]
		for x := range out {
			out[x] = packARGB(row[x*4+3], row[x*4], row[x*4+1], row[x*4+2])
		}
	}
}

// ToImage copies the buffer into a new *image.NRGBA.
func (p *PixelBuffer) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, p.width, p.height))
	for y := 0; y < p.height; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+p.width*4]
		for x, c := range p.pix[y*p.width : (y+1)*p.width] {
			row[x*4] = uint8(c >> 16)
			row[x*4+1] = uint8(c >> 8)
			row[x*4+2] = uint8(c)
			row[x*4+3] = uint8(c >> 24)
		}
	}
	return img
}

// Width returns the width in pixels.
func (p *PixelBuffer) Width() int { return p.width }

// Height returns the height in pixels.
func (p *PixelBuffer) Height() int { return p.height }

// Bounds returns the buffer rectangle.
func (p *PixelBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.width, p.height)
}

// Pix returns the backing pixels.
func (p *PixelBuffer) Pix() []uint32 { return p.pix }

// Mutable reports whether the buffer may be blurred in place.
func (p *PixelBuffer) Mutable() bool { return p.mutable }

// Clone returns a mutable copy.
func (p *PixelBuffer) Clone() *PixelBuffer {
	pix := make([]uint32, len(p.pix))
	copy(pix, p.pix)
	return &PixelBuffer{width: p.width, height: p.height, pix: pix, mutable: true}
}

// At returns the pixel at (x, y), or 0 outside the buffer.
func (p *PixelBuffer) At(x, y int) uint32 {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return 0
	}
	return p.pix[y*p.width+x]
}

// Set sets the pixel at (x, y). Writes outside the buffer are ignored.
func (p *PixelBuffer) Set(x, y int, c uint32) {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return
	}
	p.pix[y*p.width+x] = c
}

// Fill sets every pixel to c.
func (p *PixelBuffer) Fill(c uint32) {
	for i := range p.pix {
		p.pix[i] = c
	}
}

// Recycle marks the buffer as released and drops its pixels.
// Blurring a recycled buffer fails with ErrRecycled.
func (p *PixelBuffer) Recycle() {
	if p.recycled.Swap(true) {
		return
	}
	p.pix = nil
}

// IsRecycled reports whether Recycle was called.
func (p *PixelBuffer) IsRecycled() bool { return p.recycled.Load() }

// validate checks p can be blurred.
func (p *PixelBuffer) validate() error {
	if p == nil {
		return ErrNilBuffer
	}
	if p.recycled.Load() {
		return ErrRecycled
	}
	if p.width <= 0 || p.height <= 0 || len(p.pix) < p.width*p.height {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, p.width, p.height)
	}
	return nil
}

// ARGB packs 8-bit channels into a pixel.
func ARGB(a, r, g, b uint8) uint32 {
	return packARGB(a, r, g, b)
}

// ColorARGB converts c to a non-premultiplied pixel.
func ColorARGB(c color.Color) uint32 {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return packARGB(n.A, n.R, n.G, n.B)
}

func packARGB(a, r, g, b uint8) uint32 {
	return uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

func unpremultiply(r, g, b, a uint8) uint32 {
	switch a {
	case 0:
		return 0
	case 0xff:
		return packARGB(a, r, g, b)
	}
	return ColorARGB(color.RGBA{R: r, G: g, B: b, A: a})
}
