package pipeline

import (
	"context"

	"deferred-renderer/internal/parallel"
)

// SkyDome writes scattered sky radiance into scene color wherever the
// G-buffer is empty. Covered pixels are left untouched.
func SkyDome(ctx context.Context, f *Frame) error {
	if f.Sky == nil {
		return ctx.Err()
	}
	atmo := *f.Sky
	p := f.Params
	sun := p.Sun.Normalize()
	return parallel.ForRows(ctx, p.Height, f.Workers, func(y int) {
		for x := 0; x < p.Width; x++ {
			i := y*p.Width + x
			if f.GBuffer.Covered(i) {
				continue
			}
			f.Scene.Set(i, atmo.Scatter(p.CameraRay(x, y), sun).RGB())
		}
	})
}
