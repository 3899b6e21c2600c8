package filter

import (
	"fmt"
	"sync"
)

// Mode selects the blur algorithm.
type Mode uint8

const (
	// Box averages a window of 2r+1 samples.
	Box Mode = iota
	// Gaussian weights samples with a normal distribution of sigma (r+1)/2.
	Gaussian
	// Stack weights samples with a triangle of height r+1.
	Stack
)

// String returns the algorithm name.
func (m Mode) String() string {
	switch m {
	case Box:
		return "box"
	case Gaussian:
		return "gaussian"
	case Stack:
		return "stack"
	default:
		return fmt.Sprintf("Mode(%d)", m)
	}
}

// Valid reports whether m is a known algorithm.
func (m Mode) Valid() bool {
	return m <= Stack
}

// PreservesAlpha reports whether the algorithm keeps source alpha.
func (m Mode) PreservesAlpha() bool {
	return m != Box
}

// Direction selects which separable pass an invocation performs.
type Direction uint8

const (
	// Horizontal blurs along rows; the range selects rows.
	Horizontal Direction = iota
	// Vertical blurs along columns; the range selects columns.
	Vertical
	// Both runs the horizontal pass then the vertical pass over the whole image.
	Both
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	case Both:
		return "both"
	default:
		return fmt.Sprintf("Direction(%d)", d)
	}
}

// lineFunc blurs one line of packed pixels from src into dst.
type lineFunc func(src, dst []uint32, radius int)

func lineKernel(mode Mode) lineFunc {
	switch mode {
	case Gaussian:
		return gaussianLine
	case Stack:
		return stackLine
	default:
		return boxLine
	}
}

// Apply runs one pass of mode over pix, a width*height image.
//
// For Horizontal, [start, end) is a row range; for Vertical, a column range.
// Ranges are clamped to the image. Both ignores the range and blurs the
// entire image. A radius below 1 leaves pix untouched.
func Apply(mode Mode, pix []uint32, width, height, radius int, dir Direction, start, end int) {
	if radius < 1 || width <= 0 || height <= 0 || len(pix) < width*height {
		return
	}
	line := lineKernel(mode)

	switch dir {
	case Horizontal:
		start, end = clampRange(start, end, height)
		horizontal(line, pix, width, radius, start, end)
	case Vertical:
		start, end = clampRange(start, end, width)
		vertical(line, pix, width, height, radius, start, end)
	case Both:
		horizontal(line, pix, width, radius, 0, height)
		vertical(line, pix, width, height, radius, 0, width)
	}
}

func horizontal(line lineFunc, pix []uint32, width, radius, y0, y1 int) {
	if y0 >= y1 {
		return
	}
	src := getLine(width)
	defer putLine(src)

	for y := y0; y < y1; y++ {
		row := pix[y*width : (y+1)*width]
		copy(*src, row)
		line(*src, row, radius)
	}
}

func vertical(line lineFunc, pix []uint32, width, height, radius, x0, x1 int) {
	if x0 >= x1 {
		return
	}
	src := getLine(height)
	defer putLine(src)
	dst := getLine(height)
	defer putLine(dst)

	s, d := *src, *dst
	for x := x0; x < x1; x++ {
		for y := 0; y < height; y++ {
			s[y] = pix[y*width+x]
		}
		line(s, d, radius)
		for y := 0; y < height; y++ {
			pix[y*width+x] = d[y]
		}
	}
}

func clampRange(start, end, n int) (int, int) {
	start = clampInt(start, 0, n)
	end = clampInt(end, 0, n)
	return start, end
}

// clampInt clamps v to [lo, hi].
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// linePool recycles per-pass scratch lines.
var linePool = sync.Pool{
	New: func() any {
		buf := make([]uint32, 0, 1024)
		return &buf
	},
}

// getLine returns a scratch line of length n.
func getLine(n int) *[]uint32 {
	bufPtr := linePool.Get().(*[]uint32)
	if cap(*bufPtr) < n {
		*bufPtr = make([]uint32, n)
	}
	*bufPtr = (*bufPtr)[:n]
	return bufPtr
}

func putLine(buf *[]uint32) {
	linePool.Put(buf)
}

// Channel helpers for packed ARGB.

func alpha(p uint32) int { return int(p >> 24) }
func red(p uint32) int   { return int(p >> 16 & 0xff) }
func green(p uint32) int { return int(p >> 8 & 0xff) }
func blue(p uint32) int  { return int(p & 0xff) }

func pack(a, r, g, b int) uint32 {
	return uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}
