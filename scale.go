package blur

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// sampledSize returns the size of a w x h buffer downscaled by factor.
// Both dimensions stay at least 1.
func sampledSize(w, h int, factor float64) (int, int) {
	sw := int(math.Round(float64(w) / factor))
	sh := int(math.Round(float64(h) / factor))
	return max(sw, 1), max(sh, 1)
}

// downscale returns src shrunk by factor. A factor of 1 or a size that does
// not change returns src.
func downscale(src *PixelBuffer, factor float64) *PixelBuffer {
	w, h := sampledSize(src.width, src.height, factor)
	if w == src.width && h == src.height {
		return src
	}
	return resample(src, w, h, draw.ApproxBiLinear)
}

// upscale returns src stretched to w x h.
func upscale(src *PixelBuffer, w, h int) *PixelBuffer {
	if w == src.width && h == src.height {
		return src
	}
	return resample(src, w, h, draw.CatmullRom)
}

func resample(src *PixelBuffer, w, h int, scaler draw.Scaler) *PixelBuffer {
	in := src.ToImage()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	scaler.Scale(out, out.Bounds(), in, in.Bounds(), draw.Src, nil)

	dst := &PixelBuffer{width: w, height: h, pix: make([]uint32, w*h), mutable: true}
	dst.copyNRGBA(out)
	return dst
}
