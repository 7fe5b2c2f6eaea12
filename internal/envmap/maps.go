package envmap

import "deferred-renderer/internal/mathutil"

// Maps is the full image-based lighting set. A nil *Maps contributes no
// ambient light.
type Maps struct {
	Irradiance *Map
	// Radiance holds prefiltered levels, level 0 sharpest.
	Radiance []*Map
	BRDF     *LUT
}

// MaxLevel is the highest radiance mip index.
func (m *Maps) MaxLevel() float64 {
	if m == nil || len(m.Radiance) == 0 {
		return 0
	}
	return float64(len(m.Radiance) - 1)
}

// SampleIrradiance returns cosine-weighted mean radiance around n.
func (m *Maps) SampleIrradiance(n mathutil.Vec3) mathutil.Vec3 {
	if m == nil {
		return mathutil.Vec3{}
	}
	return m.Irradiance.Sample(n)
}

// SampleRadiance picks lod = roughness·MaxLevel and blends the two
// neighbouring levels.
func (m *Maps) SampleRadiance(dir mathutil.Vec3, roughness float64) mathutil.Vec3 {
	if m == nil || len(m.Radiance) == 0 {
		return mathutil.Vec3{}
	}
	lod := mathutil.Saturate(roughness) * m.MaxLevel()
	lo := int(lod)
	hi := min(lo+1, len(m.Radiance)-1)
	c := m.Radiance[lo].Sample(dir)
	if hi == lo {
		return c
	}
	return c.Lerp(m.Radiance[hi].Sample(dir), lod-float64(lo))
}

// SampleBRDF returns the split-sum scale and bias.
func (m *Maps) SampleBRDF(nv, roughness float64) (scale, bias float64) {
	if m == nil {
		return 0, 0
	}
	return m.BRDF.Sample(nv, roughness)
}
