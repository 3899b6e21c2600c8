package filter

// stackLine applies the stack blur: a triangle of weights r+1-|i| carried
// as three running sums (total, outgoing half, incoming half) over a ring
// of the 2r+1 samples in the window. Alpha is kept from the source pixel.
func stackLine(src, dst []uint32, radius int) {
	n := len(src)
	if n == 0 {
		return
	}
	last := n - 1
	size := 2*radius + 1
	div := StackDivisor(radius)

	ring := getLine(size)
	defer putLine(ring)
	stack := *ring

	var sumR, sumG, sumB int
	var inR, inG, inB int
	var outR, outG, outB int

	for i := -radius; i <= radius; i++ {
		p := src[clampInt(i, 0, last)]
		stack[i+radius] = p
		w := radius + 1 - absInt(i)
		sumR += w * red(p)
		sumG += w * green(p)
		sumB += w * blue(p)
		if i > 0 {
			inR += red(p)
			inG += green(p)
			inB += blue(p)
		} else {
			outR += red(p)
			outG += green(p)
			outB += blue(p)
		}
	}

	sp := radius
	for x := 0; x < n; x++ {
		dst[x] = src[x]&0xff000000 | pack(0, sumR/div, sumG/div, sumB/div)

		sumR -= outR
		sumG -= outG
		sumB -= outB

		// The slot holding sample x-r is refilled with sample x+r+1.
		slot := sp + radius + 1
		if slot >= size {
			slot -= size
		}
		old := stack[slot]
		outR -= red(old)
		outG -= green(old)
		outB -= blue(old)

		p := src[min(x+radius+1, last)]
		stack[slot] = p
		inR += red(p)
		inG += green(p)
		inB += blue(p)

		sumR += inR
		sumG += inG
		sumB += inB

		sp++
		if sp == size {
			sp = 0
		}
		cur := stack[sp]
		outR += red(cur)
		outG += green(cur)
		outB += blue(cur)
		inR -= red(cur)
		inG -= green(cur)
		inB -= blue(cur)
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
