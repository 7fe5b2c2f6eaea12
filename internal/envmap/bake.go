package envmap

import (
	"context"
	"fmt"
	"image"
	"time"

	"deferred-renderer/internal/hdr"
	"deferred-renderer/internal/logging"
	"deferred-renderer/internal/mathutil"
	"deferred-renderer/internal/parallel"
	"deferred-renderer/internal/sky"
)

// Source yields linear radiance arriving from a direction.
type Source func(dir mathutil.Vec3) mathutil.Vec3

// BakeOptions controls map resolutions and sample counts.
type BakeOptions struct {
	Width             int // radiance level 0 width; height is half
	Levels            int
	Samples           int // GGX samples per prefiltered texel
	IrradianceWidth   int
	IrradianceSamples int
	LUTSize           int
	LUTSamples        int
	Workers           int
}

func DefaultBakeOptions() BakeOptions {
	return BakeOptions{
		Width:             128,
		Levels:            5,
		Samples:           64,
		IrradianceWidth:   32,
		IrradianceSamples: 256,
		LUTSize:           32,
		LUTSamples:        128,
	}
}

func (o BakeOptions) validate() error {
	switch {
	case o.Width < 4:
		return fmt.Errorf("envmap: width %d too small", o.Width)
	case o.Levels < 1:
		return fmt.Errorf("envmap: need at least one radiance level, got %d", o.Levels)
	case o.IrradianceWidth < 2:
		return fmt.Errorf("envmap: irradiance width %d too small", o.IrradianceWidth)
	case o.Samples < 1 || o.IrradianceSamples < 1 || o.LUTSamples < 1:
		return fmt.Errorf("envmap: sample counts must be positive")
	case o.LUTSize < 2:
		return fmt.Errorf("envmap: LUT size %d too small", o.LUTSize)
	}
	return nil
}

// Bake builds the full map set from a radiance source. Level 0 is the
// source itself; level k is prefiltered for roughness k/(Levels-1).
func Bake(ctx context.Context, src Source, opts BakeOptions) (*Maps, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	log := logging.Logger()
	start := time.Now()

	base := NewMap(opts.Width, opts.Width/2)
	if err := base.Fill(ctx, opts.Workers, src); err != nil {
		return nil, err
	}
	maps := &Maps{Radiance: []*Map{base}}

	for level := 1; level < opts.Levels; level++ {
		w := max(opts.Width>>level, 4)
		roughness := float64(level) / float64(opts.Levels-1)
		m := NewMap(w, w/2)
		if err := m.Fill(ctx, opts.Workers, func(n mathutil.Vec3) mathutil.Vec3 {
			return prefilter(base, n, roughness, opts.Samples)
		}); err != nil {
			return nil, fmt.Errorf("envmap: radiance level %d: %w", level, err)
		}
		maps.Radiance = append(maps.Radiance, m)
	}

	maps.Irradiance = NewMap(opts.IrradianceWidth, opts.IrradianceWidth/2)
	if err := maps.Irradiance.Fill(ctx, opts.Workers, func(n mathutil.Vec3) mathutil.Vec3 {
		return convolveIrradiance(base, n, opts.IrradianceSamples)
	}); err != nil {
		return nil, fmt.Errorf("envmap: irradiance: %w", err)
	}

	lut, err := BakeLUT(ctx, opts.LUTSize, opts.LUTSamples, opts.Workers)
	if err != nil {
		return nil, err
	}
	maps.BRDF = lut

	log.Info("envmap baked",
		"width", opts.Width, "levels", opts.Levels,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return maps, nil
}

// BakeLUT integrates the split-sum BRDF table.
func BakeLUT(ctx context.Context, size, samples, workers int) (*LUT, error) {
	lut := NewLUT(size)
	err := parallel.ForRows(ctx, size, workers, func(y int) {
		roughness := (float64(y) + 0.5) / float64(size)
		for x := 0; x < size; x++ {
			nv := (float64(x) + 0.5) / float64(size)
			s, b := integrateBRDF(nv, roughness, samples)
			lut.set(x, y, s, b)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("envmap: brdf lut: %w", err)
	}
	return lut, nil
}

// prefilter assumes N = V = R.
func prefilter(src *Map, n mathutil.Vec3, roughness float64, samples int) mathutil.Vec3 {
	var sum mathutil.Vec3
	var weight float64
	for i := 0; i < samples; i++ {
		u1, u2 := hammersley(i, samples)
		h := importanceGGX(u1, u2, n, roughness)
		l := h.Scale(2 * n.Dot(h)).Sub(n)
		if nl := n.Dot(l); nl > 0 {
			sum = sum.Add(src.Sample(l).Scale(nl))
			weight += nl
		}
	}
	if weight == 0 {
		return src.Sample(n)
	}
	return sum.Scale(1 / weight)
}

// convolveIrradiance stores E/π so a constant environment L maps to L.
func convolveIrradiance(src *Map, n mathutil.Vec3, samples int) mathutil.Vec3 {
	var sum mathutil.Vec3
	for i := 0; i < samples; i++ {
		u1, u2 := hammersley(i, samples)
		sum = sum.Add(src.Sample(cosineHemisphere(u1, u2, n)))
	}
	return sum.Scale(1 / float64(samples))
}

// FromSky adapts the Perez model as a bake source for a fixed sun.
func FromSky(model sky.Model, sun mathutil.Vec3) Source {
	return func(dir mathutil.Vec3) mathutil.Vec3 {
		return model.Radiance(dir, sun)
	}
}

// FromMap samples an existing map, e.g. one decoded from an image.
func FromMap(m *Map) Source {
	return m.Sample
}

// FromImage linearizes an 8-bit equirectangular image and scales it by
// intensity.
func FromImage(img *image.NRGBA, intensity float64) *Map {
	b := img.Bounds()
	m := NewMap(b.Dx(), b.Dy())
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			i := img.PixOffset(b.Min.X+x, b.Min.Y+y)
			m.Set(x, y, mathutil.Vec3{
				hdr.SRGBToLinear(img.Pix[i]),
				hdr.SRGBToLinear(img.Pix[i+1]),
				hdr.SRGBToLinear(img.Pix[i+2]),
			}.Scale(intensity))
		}
	}
	return m
}
