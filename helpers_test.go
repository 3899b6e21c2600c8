package blur

import (
	"math/rand"
	"testing"
)

// newTestEngine returns an engine closed at the end of the test.
// The GPU scheme always uses the software device.
func newTestEngine(t *testing.T, opts ...EngineOption) *Engine {
	t.Helper()
	opts = append([]EngineOption{WithSoftwareGPU(), WithNativeProbe(func() bool { return true })}, opts...)
	e := NewEngine(opts...)
	t.Cleanup(e.Close)
	return e
}

func newTestProcessor(t *testing.T, e *Engine, opts ...Option) *Processor {
	t.Helper()
	p, err := e.NewProcessor(NewConfig(opts...))
	if err != nil {
		t.Fatalf("NewProcessor() error = %v", err)
	}
	return p
}

func uniformBuffer(t *testing.T, w, h int, c uint32) *PixelBuffer {
	t.Helper()
	buf, err := NewPixelBuffer(w, h)
	if err != nil {
		t.Fatal(err)
	}
	buf.Fill(c)
	return buf
}

func randomBuffer(t *testing.T, w, h int, seed int64) *PixelBuffer {
	t.Helper()
	buf, err := NewPixelBuffer(w, h)
	if err != nil {
		t.Fatal(err)
	}
	rng := rand.New(rand.NewSource(seed))
	for i := range buf.pix {
		buf.pix[i] = rng.Uint32()
	}
	return buf
}

func checkerBuffer(t *testing.T, w, h int) *PixelBuffer {
	t.Helper()
	buf, err := NewPixelBuffer(w, h)
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				buf.Set(x, y, 0xffffffff)
			} else {
				buf.Set(x, y, 0xff000000)
			}
		}
	}
	return buf
}

// assertSamePixels fails at the first differing pixel.
func assertSamePixels(t *testing.T, got, want *PixelBuffer) {
	t.Helper()
	if got.width != want.width || got.height != want.height {
		t.Fatalf("size %dx%d, want %dx%d", got.width, got.height, want.width, want.height)
	}
	for i := range want.pix {
		if got.pix[i] != want.pix[i] {
			t.Fatalf("pixel (%d,%d) = %08x, want %08x", i%want.width, i/want.width, got.pix[i], want.pix[i])
		}
	}
}

// maxChannelDiff returns the largest per-channel difference of two
// same-sized buffers.
func maxChannelDiff(a, b *PixelBuffer) int {
	worst := 0
	for i := range a.pix {
		for shift := 0; shift < 32; shift += 8 {
			ca := int(a.pix[i] >> shift & 0xff)
			cb := int(b.pix[i] >> shift & 0xff)
			worst = max(worst, ca-cb, cb-ca)
		}
	}
	return worst
}

var (
	allModes   = []Mode{Box, Gaussian, Stack}
	allSchemes = []Scheme{Portable, Native, GPU}
)
