package pipeline

import (
	"context"

	"deferred-renderer/internal/hdr"
	"deferred-renderer/internal/mathutil"
	"deferred-renderer/internal/parallel"
)

// ResolvePixel sums the decoded lighting pair. Luma is taken from the
// diffuse term only so specular highlights do not drive exposure.
func ResolvePixel(diffuse, specular mathutil.Vec3, covered bool, mode DebugMode) (mathutil.Vec3, int32) {
	d := hdr.DecodeVec(diffuse)
	scene := d.Add(hdr.DecodeVec(specular))
	if !covered {
		return scene, hdr.LumaSentinel
	}
	switch mode {
	case DebugSpecularOnly:
		return scene, hdr.LumaSentinel
	default:
		return scene, hdr.EncodeLuma(d)
	}
}

// ResolveScene fills scene color and the metering luma buffer.
func ResolveScene(ctx context.Context, f *Frame) error {
	w := f.Params.Width
	return parallel.ForRows(ctx, f.Params.Height, f.Workers, func(y int) {
		for x := 0; x < w; x++ {
			i := y*w + x
			scene, luma := ResolvePixel(f.Diffuse.At(i), f.Specular.At(i), f.GBuffer.Covered(i), f.Params.Debug)
			f.Scene.Set(i, scene)
			f.Luma.Pix[i] = luma
		}
	})
}
