package pipeline

import (
	"math"

	"deferred-renderer/internal/mathutil"
)

// DielectricF0 is the normal-incidence reflectance of non-metals.
const DielectricF0 = 0.04

// MinRoughness is the smallest roughness evaluated with the GGX lobe.
// Smoother surfaces are shaded as mirrors.
const MinRoughness = 0.045

// mirrorCos is the cosine of the cone around the reflection vector inside
// which a mirror picks up a light's radiance.
const mirrorCos = 0.9999

// specularEpsilon guards the Cook-Torrance denominator at grazing angles.
const specularEpsilon = 1e-4

// DistributionGGX is the Trowbridge-Reitz normal distribution with α = r².
func DistributionGGX(nh, roughness float64) float64 {
	a := roughness * roughness
	a2 := a * a
	d := nh*nh*(a2-1) + 1
	return a2 / (math.Pi * d * d)
}

// GeometrySchlickGGX uses the direct-lighting remap k = (r+1)²/8.
func GeometrySchlickGGX(nv, roughness float64) float64 {
	r := roughness + 1
	k := r * r / 8
	return nv / (nv*(1-k) + k)
}

func GeometrySmith(nv, nl, roughness float64) float64 {
	return GeometrySchlickGGX(nv, roughness) * GeometrySchlickGGX(nl, roughness)
}

// FresnelSchlick evaluates F0 + (1-F0)(1-cosθ)^5.
func FresnelSchlick(cosTheta float64, f0 mathutil.Vec3) mathutil.Vec3 {
	t := math.Pow(mathutil.Saturate(1-cosTheta), 5)
	return f0.Add(mathutil.Splat(1).Sub(f0).Scale(t))
}

// FresnelSchlickRoughness damps the grazing boost on rough surfaces; used
// for the ambient term where no single half vector exists.
func FresnelSchlickRoughness(cosTheta float64, f0 mathutil.Vec3, roughness float64) mathutil.Vec3 {
	t := math.Pow(mathutil.Saturate(1-cosTheta), 5)
	g := mathutil.Splat(1 - roughness)
	top := mathutil.Vec3{
		math.Max(g[0], f0[0]),
		math.Max(g[1], f0[1]),
		math.Max(g[2], f0[2]),
	}
	return f0.Add(top.Sub(f0).Scale(t))
}

// BaseReflectance interpolates F0 between the dielectric constant and
// albedo by metallic.
func BaseReflectance(albedo mathutil.Vec3, metallic float64) mathutil.Vec3 {
	return mathutil.Splat(DielectricF0).Lerp(albedo, metallic)
}
