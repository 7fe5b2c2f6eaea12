package pipeline

import (
	"context"

	"deferred-renderer/internal/hdr"
	"deferred-renderer/internal/mathutil"
	"deferred-renderer/internal/parallel"
)

// LightPixel shades G-buffer pixel i and applies the debug protocol to the
// split result. Uncovered pixels get no light.
func LightPixel(f *Frame, i int) Shading {
	if !f.GBuffer.Covered(i) {
		return Shading{}
	}
	s := Shade(f.GBuffer.Load(i), f.Params.ViewPos, f.Lights, f.Sun, f.Env)
	switch f.Params.Debug {
	case DebugDiffuseOnly:
		s.Specular = mathutil.Vec3{}
	case DebugSpecularOnly:
		s.Diffuse = mathutil.Vec3{}
	default:
	}
	return s
}

// Lighting writes HDR-encoded diffuse and specular for every pixel,
// clamped to what the attachments can hold.
func Lighting(ctx context.Context, f *Frame) error {
	w := f.Params.Width
	return parallel.ForRows(ctx, f.Params.Height, f.Workers, func(y int) {
		for x := 0; x < w; x++ {
			i := y*w + x
			s := LightPixel(f, i)
			f.Diffuse.Set(i, hdr.EncodeVec(hdr.ClampRadiance(s.Diffuse)))
			f.Specular.Set(i, hdr.EncodeVec(hdr.ClampRadiance(s.Specular)))
		}
	})
}
