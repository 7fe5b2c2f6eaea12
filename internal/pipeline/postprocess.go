package pipeline

import (
	"context"
	"math"

	"deferred-renderer/internal/gbuffer"
	"deferred-renderer/internal/hdr"
	"deferred-renderer/internal/mathutil"
	"deferred-renderer/internal/parallel"
)

// Vignette falloff starts at a quarter of the way to the corner.
const (
	vignetteInner = 0.25
	vignetteOuter = 1.0
)

// Vignette returns the darkening factor at normalized screen position
// (u, v); the distance to center is 1 at the corners. The center is
// always 1.
func Vignette(u, v, opacity float64) float64 {
	du, dv := u-0.5, v-0.5
	d := math.Sqrt(du*du+dv*dv) / math.Sqrt(0.5)
	return 1 - opacity*mathutil.Smoothstep(vignetteInner, vignetteOuter, d)
}

// PostInput is everything the post-process pass reads for one pixel.
type PostInput struct {
	Scene     mathutil.Vec3
	Diffuse   mathutil.Vec3 // encoded
	Specular  mathutil.Vec3 // encoded
	Texel     gbuffer.Texel
	Covered   bool
	Occlusion float64
	Vignette  float64
}

// PostPixel selects the primary output for one pixel and derives the
// post-vignette luma. Exactly one debug branch runs.
func PostPixel(in PostInput, p FrameParams) (mathutil.Vec3, int32) {
	luma := hdr.LumaSentinel
	if in.Covered {
		if depth := p.ViewDepth(in.Texel.Position); depth >= p.Near && depth <= p.Far {
			luma = hdr.EncodeLuma(in.Scene.Scale(in.Vignette))
		}
	}

	var out mathutil.Vec3
	switch p.Debug {
	case DebugDisabled:
		out = in.Scene.Scale(p.Exposure * in.Vignette)
	case DebugPosition:
		out = in.Texel.Position
	case DebugNormal:
		if in.Covered {
			out = in.Texel.Normal.Normalize().Scale(0.5).Add(mathutil.Splat(0.5))
		}
	case DebugAlbedo:
		out = in.Texel.Albedo
	case DebugRoughness:
		out = mathutil.Splat(in.Texel.Roughness)
	case DebugMetallic:
		out = mathutil.Splat(in.Texel.Metallic)
	case DebugDiffuseOnly:
		out = hdr.DecodeVec(in.Diffuse)
	case DebugSpecularOnly:
		out = hdr.DecodeVec(in.Specular)
	case DebugOcclusion:
		out = mathutil.Splat(in.Occlusion)
	case DebugNoPostProcessing:
		out = in.Scene
	default:
		out = in.Scene
	}
	return out, luma
}

// PostProcess applies exposure and vignette, or the selected debug view,
// and writes the post-vignette luma side output.
func PostProcess(ctx context.Context, f *Frame) error {
	p := f.Params
	w, h := float64(p.Width), float64(p.Height)
	return parallel.ForRows(ctx, p.Height, f.Workers, func(y int) {
		v := (float64(y) + 0.5) / h
		for x := 0; x < p.Width; x++ {
			i := y*p.Width + x
			u := (float64(x) + 0.5) / w
			out, luma := PostPixel(PostInput{
				Scene:     f.Scene.At(i),
				Diffuse:   f.Diffuse.At(i),
				Specular:  f.Specular.At(i),
				Texel:     f.GBuffer.Load(i),
				Covered:   f.GBuffer.Covered(i),
				Occlusion: f.Occlusion.SampleUV(u, v),
				Vignette:  Vignette(u, v, p.Vignette),
			}, p)
			f.Output.Set(i, out)
			f.PostLuma.Pix[i] = luma
		}
	})
}
