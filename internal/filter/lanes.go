package filter

import (
	"math"
	"sync"

	"github.com/gogpu/blur/internal/wide"
)

// laneLine is one position of eight interleaved lines.
type laneLine = [wide.Lanes]uint32

// laneFunc blurs eight lines at once; lane l of every element belongs to line l.
type laneFunc func(src, dst []laneLine, radius int)

func laneKernel(mode Mode) laneFunc {
	switch mode {
	case Gaussian:
		return gaussianLanes
	case Stack:
		return stackLanes
	default:
		return boxLanes
	}
}

// ApplyWide is Apply with the wide kernels: groups of eight rows or columns
// are blurred together, the remainder falls back to the scalar kernels.
// Its output is byte-identical to Apply.
func ApplyWide(mode Mode, pix []uint32, width, height, radius int, dir Direction, start, end int) {
	if radius < 1 || width <= 0 || height <= 0 || len(pix) < width*height {
		return
	}
	if !LanesFit(mode, radius) {
		Apply(mode, pix, width, height, radius, dir, start, end)
		return
	}
	switch dir {
	case Horizontal:
		start, end = clampRange(start, end, height)
		horizontalWide(mode, pix, width, radius, start, end)
	case Vertical:
		start, end = clampRange(start, end, width)
		verticalWide(mode, pix, width, height, radius, start, end)
	case Both:
		horizontalWide(mode, pix, width, radius, 0, height)
		verticalWide(mode, pix, width, height, radius, 0, width)
	}
}

// LanesFit reports whether the running sums of mode at radius fit the
// int32 lanes. Larger radii run on the scalar kernels.
func LanesFit(mode Mode, radius int) bool {
	r := int64(radius)
	switch mode {
	case Stack:
		return r < 1<<16 && 255*(r+1)*(r+1) <= math.MaxInt32
	case Box:
		return r < 1<<32 && 255*(2*r+1) <= math.MaxInt32
	default:
		// Gaussian weights sum to FixedOne.
		return true
	}
}

func horizontalWide(mode Mode, pix []uint32, width, radius, y0, y1 int) {
	if y0 >= y1 {
		return
	}
	lanes := laneKernel(mode)
	src := getLanes(width)
	defer putLanes(src)
	dst := getLanes(width)
	defer putLanes(dst)

	s, d := *src, *dst
	y := y0
	for ; y+wide.Lanes <= y1; y += wide.Lanes {
		for l := 0; l < wide.Lanes; l++ {
			row := pix[(y+l)*width:]
			for x := 0; x < width; x++ {
				s[x][l] = row[x]
			}
		}
		lanes(s, d, radius)
		for l := 0; l < wide.Lanes; l++ {
			row := pix[(y+l)*width:]
			for x := 0; x < width; x++ {
				row[x] = d[x][l]
			}
		}
	}
	horizontal(lineKernel(mode), pix, width, radius, y, y1)
}

func verticalWide(mode Mode, pix []uint32, width, height, radius, x0, x1 int) {
	if x0 >= x1 {
		return
	}
	lanes := laneKernel(mode)
	src := getLanes(height)
	defer putLanes(src)
	dst := getLanes(height)
	defer putLanes(dst)

	s, d := *src, *dst
	x := x0
	for ; x+wide.Lanes <= x1; x += wide.Lanes {
		for y := 0; y < height; y++ {
			copy(s[y][:], pix[y*width+x:])
		}
		lanes(s, d, radius)
		for y := 0; y < height; y++ {
			copy(pix[y*width+x:y*width+x+wide.Lanes], d[y][:])
		}
	}
	vertical(lineKernel(mode), pix, width, height, radius, x, x1)
}

func boxLanes(src, dst []laneLine, radius int) {
	n := len(src)
	last := n - 1
	lut := BoxLUT(radius)
	window := int32(2*radius + 1)

	var sum, in, out wide.ARGB8
	tail := min(radius, last)
	in.Load(&src[0])
	sum.MulAdd(&in, int32(radius+1))
	for i := 1; i <= tail; i++ {
		in.Load(&src[i])
		sum.Add(&in)
	}
	in.Load(&src[last])
	sum.MulAdd(&in, int32(radius-tail))

	var avg wide.ARGB8
	for x := 0; x < n; x++ {
		if lut != nil {
			avg.A = sum.A.Lookup(lut)
			avg.R = sum.R.Lookup(lut)
			avg.G = sum.G.Lookup(lut)
			avg.B = sum.B.Lookup(lut)
		} else {
			avg.A = sum.A.DivScalar(window)
			avg.R = sum.R.DivScalar(window)
			avg.G = sum.G.DivScalar(window)
			avg.B = sum.B.DivScalar(window)
		}
		avg.Store(&dst[x])

		in.Load(&src[min(x+radius+1, last)])
		out.Load(&src[max(x-radius, 0)])
		sum.Add(&in)
		sum.Sub(&out)
	}
}

func gaussianLanes(src, dst []laneLine, radius int) {
	n := len(src)
	last := n - 1
	weights := GaussianWeights(radius)

	var acc, p, origin wide.ARGB8
	for x := 0; x < n; x++ {
		acc = wide.ARGB8{}
		for k, w := range weights {
			p.Load(&src[clampInt(x+k-radius, 0, last)])
			acc.MulAdd(&p, w)
		}
		origin.Load(&src[x])
		acc.A = origin.A
		acc.R = acc.R.ShrRound(16)
		acc.G = acc.G.ShrRound(16)
		acc.B = acc.B.ShrRound(16)
		acc.Store(&dst[x])
	}
}

func stackLanes(src, dst []laneLine, radius int) {
	n := len(src)
	last := n - 1
	size := 2*radius + 1
	div := int32(StackDivisor(radius))

	ring := getLanes(size)
	defer putLanes(ring)
	stack := *ring

	var sum, in, out, p wide.ARGB8
	for i := -radius; i <= radius; i++ {
		stack[i+radius] = src[clampInt(i, 0, last)]
		p.Load(&stack[i+radius])
		sum.MulAdd(&p, int32(radius+1-absInt(i)))
		if i > 0 {
			in.Add(&p)
		} else {
			out.Add(&p)
		}
	}

	var res, origin wide.ARGB8
	sp := radius
	for x := 0; x < n; x++ {
		origin.Load(&src[x])
		res.A = origin.A
		res.R = sum.R.DivScalar(div)
		res.G = sum.G.DivScalar(div)
		res.B = sum.B.DivScalar(div)
		res.Store(&dst[x])

		sum.Sub(&out)

		slot := sp + radius + 1
		if slot >= size {
			slot -= size
		}
		p.Load(&stack[slot])
		out.Sub(&p)

		stack[slot] = src[min(x+radius+1, last)]
		p.Load(&stack[slot])
		in.Add(&p)
		sum.Add(&in)

		sp++
		if sp == size {
			sp = 0
		}
		p.Load(&stack[sp])
		out.Add(&p)
		in.Sub(&p)
	}
}

var lanePool = sync.Pool{
	New: func() any {
		buf := make([]laneLine, 0, 512)
		return &buf
	},
}

func getLanes(n int) *[]laneLine {
	bufPtr := lanePool.Get().(*[]laneLine)
	if cap(*bufPtr) < n {
		*bufPtr = make([]laneLine, n)
	}
	*bufPtr = (*bufPtr)[:n]
	return bufPtr
}

func putLanes(buf *[]laneLine) {
	lanePool.Put(buf)
}
