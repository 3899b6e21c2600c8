package filter

// boxLine averages a sliding window of 2r+1 samples over all four channels.
// Samples past either end repeat the edge pixel.
func boxLine(src, dst []uint32, radius int) {
	n := len(src)
	if n == 0 {
		return
	}
	last := n - 1
	lut := BoxLUT(radius)
	window := 2*radius + 1

	var sa, sr, sg, sb int
	add := func(p uint32, k int) {
		sa += k * alpha(p)
		sr += k * red(p)
		sg += k * green(p)
		sb += k * blue(p)
	}
	// Window at x=0: r+1 copies of the first pixel, then src[1..r] with the
	// last pixel repeated past the end.
	tail := min(radius, last)
	add(src[0], radius+1)
	for i := 1; i <= tail; i++ {
		add(src[i], 1)
	}
	add(src[last], radius-tail)

	for x := 0; x < n; x++ {
		if lut != nil {
			dst[x] = uint32(lut[sa])<<24 | uint32(lut[sr])<<16 | uint32(lut[sg])<<8 | uint32(lut[sb])
		} else {
			dst[x] = pack(sa/window, sr/window, sg/window, sb/window)
		}

		in := src[min(x+radius+1, last)]
		out := src[max(x-radius, 0)]
		sa += alpha(in) - alpha(out)
		sr += red(in) - red(out)
		sg += green(in) - green(out)
		sb += blue(in) - blue(out)
	}
}
