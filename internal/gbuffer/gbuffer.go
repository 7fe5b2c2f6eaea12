// Package gbuffer defines the per-pixel attachments exchanged between the
// deferred passes: the geometry buffer written by the external geometry
// pass, the float lighting/scene attachments, the integer luma buffer and
// the occlusion-ID buffer.
package gbuffer

import (
	"fmt"

	"deferred-renderer/internal/mathutil"
)

// GBuffer is the five-channel geometry buffer. It is populated once per
// frame by the geometry pass and read-only afterwards.
//
// Normals may be non-unit; consumers renormalize. Pixels not covered by any
// geometry carry a zero normal.
type GBuffer struct {
	Width     int
	Height    int
	Position  *Vec3Buffer
	Normal    *Vec3Buffer
	Albedo    *Vec3Buffer
	Roughness *ScalarBuffer
	Metallic  *ScalarBuffer
}

// New allocates a cleared G-buffer (every pixel uncovered).
func New(w, h int) *GBuffer {
	return &GBuffer{
		Width:     w,
		Height:    h,
		Position:  NewVec3Buffer(w, h),
		Normal:    NewVec3Buffer(w, h),
		Albedo:    NewVec3Buffer(w, h),
		Roughness: NewScalarBuffer(w, h),
		Metallic:  NewScalarBuffer(w, h),
	}
}

// Len returns the pixel count.
func (g *GBuffer) Len() int { return g.Width * g.Height }

// Covered reports whether pixel i was written by the geometry pass.
func (g *GBuffer) Covered(i int) bool {
	o := i * 3
	n := g.Normal.Pix
	return n[o] != 0 || n[o+1] != 0 || n[o+2] != 0
}

// Texel is one decoded G-buffer sample.
type Texel struct {
	Position  mathutil.Vec3
	Normal    mathutil.Vec3
	Albedo    mathutil.Vec3
	Roughness float64
	Metallic  float64
}

// Load reads pixel i.
func (g *GBuffer) Load(i int) Texel {
	return Texel{
		Position:  g.Position.At(i),
		Normal:    g.Normal.At(i),
		Albedo:    g.Albedo.At(i),
		Roughness: g.Roughness.At(i),
		Metallic:  g.Metallic.At(i),
	}
}

// Store writes pixel i.
func (g *GBuffer) Store(i int, t Texel) {
	g.Position.Set(i, t.Position)
	g.Normal.Set(i, t.Normal)
	g.Albedo.Set(i, t.Albedo)
	g.Roughness.Set(i, t.Roughness)
	g.Metallic.Set(i, t.Metallic)
}

// Validate checks that every channel is allocated at the G-buffer size.
func (g *GBuffer) Validate() error {
	if g.Position == nil || g.Normal == nil || g.Albedo == nil || g.Roughness == nil || g.Metallic == nil {
		return fmt.Errorf("gbuffer: missing channel: %w", ErrSizeMismatch)
	}
	n := g.Width * g.Height
	checks := []struct {
		name      string
		got, want int
	}{
		{"position", len(g.Position.Pix), n * 3},
		{"normal", len(g.Normal.Pix), n * 3},
		{"albedo", len(g.Albedo.Pix), n * 3},
		{"roughness", len(g.Roughness.Pix), n},
		{"metallic", len(g.Metallic.Pix), n},
	}
	for _, c := range checks {
		if c.got != c.want {
			return fmt.Errorf("gbuffer: %s has %d values, want %d: %w", c.name, c.got, c.want, ErrSizeMismatch)
		}
	}
	return nil
}
