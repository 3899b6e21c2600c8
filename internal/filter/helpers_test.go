package filter

import (
	"math/rand"
	"testing"
)

// Test helper functions shared across filter tests.

var allModes = []Mode{Box, Gaussian, Stack}

// uniformImage returns a w*h image filled with c.
func uniformImage(w, h int, c uint32) []uint32 {
	pix := make([]uint32, w*h)
	for i := range pix {
		pix[i] = c
	}
	return pix
}

// randomImage returns a w*h image of pseudo-random pixels.
func randomImage(w, h int, seed int64) []uint32 {
	rng := rand.New(rand.NewSource(seed))
	pix := make([]uint32, w*h)
	for i := range pix {
		pix[i] = rng.Uint32()
	}
	return pix
}

// checkerboard returns a w*h image of alternating black and white cells.
func checkerboard(w, h int) []uint32 {
	pix := make([]uint32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				pix[y*w+x] = 0xFFFFFFFF
			} else {
				pix[y*w+x] = 0xFF000000
			}
		}
	}
	return pix
}

func clonePix(pix []uint32) []uint32 {
	return append([]uint32(nil), pix...)
}

// assertEqualPix fails the test at the first differing pixel.
func assertEqualPix(t *testing.T, got, want []uint32, w int) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length %d, want %d", len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("pixel (%d,%d) = %08x, want %08x", i%w, i/w, got[i], want[i])
		}
	}
}
