package wide

// ARGB8 holds 8 ARGB pixels in Structure-of-Arrays layout.
// Channel values are in [0, 255].
type ARGB8 struct {
	A, R, G, B I32x8
}

// Load unpacks 8 packed 0xAARRGGBB pixels.
func (p *ARGB8) Load(px *[Lanes]uint32) {
	for i, c := range px {
		p.A[i] = int32(c >> 24)
		p.R[i] = int32(c >> 16 & 0xff)
		p.G[i] = int32(c >> 8 & 0xff)
		p.B[i] = int32(c & 0xff)
	}
}

// Store packs the channels into 8 0xAARRGGBB pixels.
// Channel values are truncated to 8 bits.
func (p *ARGB8) Store(px *[Lanes]uint32) {
	for i := range px {
		px[i] = uint32(p.A[i]&0xff)<<24 |
			uint32(p.R[i]&0xff)<<16 |
			uint32(p.G[i]&0xff)<<8 |
			uint32(p.B[i]&0xff)
	}
}

// Add accumulates other into p channel by channel.
func (p *ARGB8) Add(other *ARGB8) {
	p.A = p.A.Add(other.A)
	p.R = p.R.Add(other.R)
	p.G = p.G.Add(other.G)
	p.B = p.B.Add(other.B)
}

// Sub subtracts other from p channel by channel.
func (p *ARGB8) Sub(other *ARGB8) {
	p.A = p.A.Sub(other.A)
	p.R = p.R.Sub(other.R)
	p.G = p.G.Sub(other.G)
	p.B = p.B.Sub(other.B)
}

// MulAdd accumulates other*w into p channel by channel.
func (p *ARGB8) MulAdd(other *ARGB8, w int32) {
	p.A = p.A.MulAdd(other.A, w)
	p.R = p.R.MulAdd(other.R, w)
	p.G = p.G.MulAdd(other.G, w)
	p.B = p.B.MulAdd(other.B, w)
}
