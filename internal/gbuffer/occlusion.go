package gbuffer

// Default occlusion-ID buffer resolution; the buffer is independent of the
// screen size and sampled by normalized coordinates.
const (
	OcclusionWidth  = 256
	OcclusionHeight = 144
)

// OcclusionBuffer is a four-channel unsigned integer attachment holding a
// packed object identifier per texel. Debug visualization only.
type OcclusionBuffer struct {
	Width  int
	Height int
	Pix    []uint8 // RGBA interleaved, len = W*H*4
}

func NewOcclusionBuffer(w, h int) *OcclusionBuffer {
	return &OcclusionBuffer{Width: w, Height: h, Pix: make([]uint8, w*h*4)}
}

// DecodeOcclusion sums the channels modulo 256 and normalizes to [0,1).
func DecodeOcclusion(r, g, b, a uint8) float64 {
	sum := (uint32(r) + uint32(g) + uint32(b) + uint32(a)) % 256
	return float64(sum) / 256
}

// PackOcclusionID spreads id over four channels so that DecodeOcclusion
// recovers id/256.
func PackOcclusionID(id uint8) [4]uint8 {
	q := id / 4
	return [4]uint8{q, q, q, q + id%4}
}

// Set stores a packed id at texel (x, y).
func (o *OcclusionBuffer) Set(x, y int, id uint8) {
	p := PackOcclusionID(id)
	i := (y*o.Width + x) * 4
	copy(o.Pix[i:i+4], p[:])
}

// SampleUV decodes the texel nearest to normalized coordinates (u, v).
func (o *OcclusionBuffer) SampleUV(u, v float64) float64 {
	if o == nil || o.Width == 0 || o.Height == 0 {
		return 0
	}
	x := int(u * float64(o.Width))
	y := int(v * float64(o.Height))
	x = min(max(x, 0), o.Width-1)
	y = min(max(y, 0), o.Height-1)
	i := (y*o.Width + x) * 4
	return DecodeOcclusion(o.Pix[i], o.Pix[i+1], o.Pix[i+2], o.Pix[i+3])
}
