package filter

// gaussianLine convolves the colour channels with fixed-point Gaussian
// weights and keeps each pixel's alpha. Samples past either end repeat the
// edge pixel.
func gaussianLine(src, dst []uint32, radius int) {
	n := len(src)
	if n == 0 {
		return
	}
	last := n - 1
	weights := GaussianWeights(radius)

	for x := 0; x < n; x++ {
		var ar, ag, ab int
		for k, w := range weights {
			p := src[clampInt(x+k-radius, 0, last)]
			wi := int(w)
			ar += wi * red(p)
			ag += wi * green(p)
			ab += wi * blue(p)
		}
		dst[x] = src[x]&0xff000000 |
			uint32((ar+FixedOne/2)>>16)<<16 |
			uint32((ag+FixedOne/2)>>16)<<8 |
			uint32((ab+FixedOne/2)>>16)
	}
}
