package gbuffer

import (
	"errors"
	"fmt"

	"deferred-renderer/internal/mathutil"
)

// ErrSizeMismatch is returned when attachments that must share a
// resolution do not.
var ErrSizeMismatch = errors.New("gbuffer: attachment size mismatch")

// Vec3Buffer is a three-channel float attachment stored as flat
// interleaved float32 slices for cache locality (len = W*H*3).
type Vec3Buffer struct {
	Width  int
	Height int
	Pix    []float32
}

func NewVec3Buffer(w, h int) *Vec3Buffer {
	return &Vec3Buffer{Width: w, Height: h, Pix: make([]float32, w*h*3)}
}

func (b *Vec3Buffer) At(i int) mathutil.Vec3 {
	o := i * 3
	return mathutil.Vec3{float64(b.Pix[o]), float64(b.Pix[o+1]), float64(b.Pix[o+2])}
}

func (b *Vec3Buffer) Set(i int, v mathutil.Vec3) {
	o := i * 3
	b.Pix[o] = float32(v[0])
	b.Pix[o+1] = float32(v[1])
	b.Pix[o+2] = float32(v[2])
}

// Clear zeroes every texel.
func (b *Vec3Buffer) Clear() {
	clear(b.Pix)
}

// ScalarBuffer is a single-channel float attachment (len = W*H).
type ScalarBuffer struct {
	Width  int
	Height int
	Pix    []float32
}

func NewScalarBuffer(w, h int) *ScalarBuffer {
	return &ScalarBuffer{Width: w, Height: h, Pix: make([]float32, w*h)}
}

func (b *ScalarBuffer) At(i int) float64     { return float64(b.Pix[i]) }
func (b *ScalarBuffer) Set(i int, v float64) { b.Pix[i] = float32(v) }

// LumaBuffer holds integer-encoded luminance (see hdr.EncodeLuma); negative
// values are the "no data" sentinel.
type LumaBuffer struct {
	Width  int
	Height int
	Pix    []int32
}

func NewLumaBuffer(w, h int) *LumaBuffer {
	return &LumaBuffer{Width: w, Height: h, Pix: make([]int32, w*h)}
}

// CopyFrom copies src into b; sizes must match.
func (b *LumaBuffer) CopyFrom(src *LumaBuffer) error {
	if b.Width != src.Width || b.Height != src.Height {
		return fmt.Errorf("gbuffer: copy luma %dx%d into %dx%d: %w",
			src.Width, src.Height, b.Width, b.Height, ErrSizeMismatch)
	}
	copy(b.Pix, src.Pix)
	return nil
}
