package filter

import (
	"cmp"
	"math"
	"slices"

	"github.com/gogpu/blur/internal/cache"
)

// FixedOne is the fixed-point scale of Gaussian weights.
const FixedOne = 1 << 16

// Kernel tables are keyed by radius. Typical callers use a handful of radii.
var (
	gaussianCache = cache.New[int, []int32](64)
	boxCache      = cache.New[int, []uint8](64)
)

// CacheStats returns the statistics of the Gaussian weight and box lookup
// table caches.
func CacheStats() (gaussian, box cache.Stats) {
	return gaussianCache.Stats(), boxCache.Stats()
}

// Sigma returns the Gaussian standard deviation used for radius.
func Sigma(radius int) float64 {
	return float64(radius+1) / 2
}

// GaussianWeights returns the 2r+1 fixed-point Gaussian weights for radius.
// The weights are symmetric and sum to exactly FixedOne.
//
// For radius <= 0, returns [FixedOne] (identity).
// The returned slice is shared and must not be modified.
func GaussianWeights(radius int) []int32 {
	if radius <= 0 {
		return []int32{FixedOne}
	}
	return gaussianCache.GetOrCreate(radius, func() []int32 {
		return gaussianWeights(radius)
	})
}

func gaussianWeights(radius int) []int32 {
	sigma := Sigma(radius)
	twoSigmaSq := 2 * sigma * sigma

	// Only one half is computed; tap i and -i share a weight.
	exact := make([]float64, radius+1)
	sum := 0.0
	for i := range exact {
		x := float64(i)
		exact[i] = math.Exp(-(x * x) / twoSigmaSq)
		if i == 0 {
			sum += exact[i]
		} else {
			sum += 2 * exact[i]
		}
	}

	half := make([]int32, radius+1)
	frac := make([]float64, radius+1)
	total := int32(0)
	for i, v := range exact {
		scaled := v / sum * FixedOne
		half[i] = int32(math.Floor(scaled))
		frac[i] = scaled - float64(half[i])
		if i == 0 {
			total += half[i]
		} else {
			total += 2 * half[i]
		}
	}

	// Largest remainder: the residue goes out in symmetric pairs, an odd
	// unit to the centre. Ties favour the inner pair so the shape stays
	// monotone.
	residue := FixedOne - total
	if residue%2 != 0 {
		half[0]++
		residue--
	}
	pairs := make([]int, radius)
	for i := range pairs {
		pairs[i] = i + 1
	}
	slices.SortStableFunc(pairs, func(a, b int) int {
		return cmp.Compare(frac[b], frac[a])
	})
	n := min(int(residue/2), radius)
	for _, i := range pairs[:n] {
		half[i]++
	}
	if n > 0 && half[1] > half[0] {
		// The first pair outranked an unrounded centre of equal floor.
		half[0] += 2
		half[pairs[n-1]]--
	}

	weights := make([]int32, 2*radius+1)
	for i, w := range half {
		weights[radius+i] = w
		weights[radius-i] = w
	}
	return weights
}

// MaxLUTWindow is the largest box window (2r+1) served by a division
// table. Wider windows divide directly.
const MaxLUTWindow = 1024

// BoxLUT returns the division table for a box window of radius:
// lut[s] == s / (2r+1) for every reachable sum s of 2r+1 bytes.
// Returns nil when the window exceeds MaxLUTWindow.
// The returned slice is shared and must not be modified.
func BoxLUT(radius int) []uint8 {
	if radius < 0 {
		radius = 0
	}
	window := 2*radius + 1
	if window > MaxLUTWindow {
		return nil
	}
	return boxCache.GetOrCreate(radius, func() []uint8 {
		lut := make([]uint8, 256*window)
		for i := range lut {
			lut[i] = uint8(i / window)
		}
		return lut
	})
}

// StackDivisor returns the sum of the triangle weights for radius, (r+1)^2.
func StackDivisor(radius int) int {
	return (radius + 1) * (radius + 1)
}
