package filter

import "testing"

func TestGaussianWeights(t *testing.T) {
	for _, radius := range []int{1, 2, 3, 7, 25, 50, 100, 200, 1000} {
		weights := GaussianWeights(radius)
		if len(weights) != 2*radius+1 {
			t.Fatalf("r=%d: len %d, want %d", radius, len(weights), 2*radius+1)
		}

		var sum int32
		for i, w := range weights {
			if w < 0 {
				t.Errorf("r=%d: negative weight %d at %d", radius, w, i)
			}
			sum += w
		}
		if sum != FixedOne {
			t.Errorf("r=%d: weights sum to %d, want %d", radius, sum, FixedOne)
		}

		if weights[radius] < weights[radius+1] {
			t.Errorf("r=%d: centre %d below neighbour %d", radius, weights[radius], weights[radius+1])
		}
		for i := 1; i <= radius; i++ {
			if weights[radius-i] != weights[radius+i] {
				t.Errorf("r=%d: asymmetric at %d", radius, i)
			}
			if weights[radius+i] > weights[radius+i-1] {
				t.Errorf("r=%d: weights increase away from centre at %d", radius, i)
			}
		}
	}
}

func TestGaussianWeightsIdentity(t *testing.T) {
	w := GaussianWeights(0)
	if len(w) != 1 || w[0] != FixedOne {
		t.Errorf("GaussianWeights(0) = %v, want [%d]", w, FixedOne)
	}
}

func TestGaussianWeightsCached(t *testing.T) {
	a := GaussianWeights(9)
	b := GaussianWeights(9)
	if &a[0] != &b[0] {
		t.Error("expected cached weights to be shared")
	}
}

func TestCacheStats(t *testing.T) {
	g0, b0 := CacheStats()
	GaussianWeights(13)
	GaussianWeights(13)
	BoxLUT(13)
	g1, b1 := CacheStats()

	if g1.Hits+g1.Misses != g0.Hits+g0.Misses+2 {
		t.Errorf("Gaussian lookups = %d, want %d", g1.Hits+g1.Misses, g0.Hits+g0.Misses+2)
	}
	if g1.Hits == g0.Hits {
		t.Error("second GaussianWeights(13) was not a hit")
	}
	if b1.Hits+b1.Misses != b0.Hits+b0.Misses+1 {
		t.Errorf("box lookups = %d, want %d", b1.Hits+b1.Misses, b0.Hits+b0.Misses+1)
	}
	if g1.Capacity != 64 || b1.Capacity != 64 {
		t.Errorf("capacity = %d, %d, want 64", g1.Capacity, b1.Capacity)
	}
}

func TestBoxLUT(t *testing.T) {
	for _, radius := range []int{0, 1, 4} {
		window := 2*radius + 1
		lut := BoxLUT(radius)
		if len(lut) != 256*window {
			t.Fatalf("r=%d: len %d, want %d", radius, len(lut), 256*window)
		}
		for v := 0; v < 256; v++ {
			if int(lut[v*window]) != v {
				t.Errorf("r=%d: lut[%d] = %d, want %d", radius, v*window, lut[v*window], v)
			}
		}
	}
}

func TestBoxLUTWideWindowDivides(t *testing.T) {
	radius := MaxLUTWindow / 2
	if lut := BoxLUT(radius); lut != nil {
		t.Errorf("BoxLUT(%d) has %d entries, want nil above MaxLUTWindow", radius, len(lut))
	}
	if lut := BoxLUT(MaxLUTWindow/2 - 1); lut == nil {
		t.Error("BoxLUT at MaxLUTWindow returned nil")
	}
	if lut := BoxLUT(10_000_000); lut != nil {
		t.Error("BoxLUT built a table for a huge radius")
	}
}

func TestSigma(t *testing.T) {
	if got := Sigma(3); got != 2 {
		t.Errorf("Sigma(3) = %v, want 2", got)
	}
}

func TestStackDivisor(t *testing.T) {
	for _, radius := range []int{1, 2, 9} {
		sum := 0
		for i := -radius; i <= radius; i++ {
			sum += radius + 1 - absInt(i)
		}
		if got := StackDivisor(radius); got != sum {
			t.Errorf("StackDivisor(%d) = %d, want %d", radius, got, sum)
		}
	}
}
