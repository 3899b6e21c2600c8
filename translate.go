package blur

// translate returns a new buffer where pixel (x, y) is src(x+dx, y+dy).
// Samples outside src are transparent.
func translate(src *PixelBuffer, dx, dy int) *PixelBuffer {
	dst := &PixelBuffer{
		width:   src.width,
		height:  src.height,
		pix:     make([]uint32, len(src.pix)),
		mutable: true,
	}
	w, h := src.width, src.height

	// Destination columns [x0, x1) map inside the source.
	x0, x1 := max(0, -dx), min(w, w-dx)
	if x0 >= x1 {
		return dst
	}
	for y := 0; y < h; y++ {
		sy := y + dy
		if sy < 0 || sy >= h {
			continue
		}
		copy(dst.pix[y*w+x0:y*w+x1], src.pix[sy*w+x0+dx:sy*w+x1+dx])
	}
	return dst
}
