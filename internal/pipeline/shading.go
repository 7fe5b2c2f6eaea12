package pipeline

import (
	"math"

	"deferred-renderer/internal/envmap"
	"deferred-renderer/internal/gbuffer"
	"deferred-renderer/internal/mathutil"
)

// Shading is one pixel's lighting split into its diffuse and specular
// parts, in absolute (decoded) radiance.
type Shading struct {
	Diffuse  mathutil.Vec3
	Specular mathutil.Vec3
}

func (s Shading) add(o Shading) Shading {
	return Shading{s.Diffuse.Add(o.Diffuse), s.Specular.Add(o.Specular)}
}

// surface is a G-buffer texel prepared for shading.
type surface struct {
	n, v      mathutil.Vec3
	nv        float64
	albedo    mathutil.Vec3
	f0        mathutil.Vec3
	roughness float64
	metallic  float64
	// mirror surfaces reflect F·radiance along the reflection vector only
	mirror bool
}

func newSurface(t gbuffer.Texel, viewPos mathutil.Vec3) surface {
	n := t.Normal.Normalize()
	v := viewPos.Sub(t.Position).Normalize()
	metallic := mathutil.Saturate(t.Metallic)
	return surface{
		n:         n,
		v:         v,
		nv:        math.Max(n.Dot(v), 0),
		albedo:    t.Albedo,
		f0:        BaseReflectance(t.Albedo, metallic),
		roughness: mathutil.Clamp(t.Roughness, MinRoughness, 1),
		metallic:  metallic,
		mirror:    t.Roughness < MinRoughness,
	}
}

// direct is the Cook-Torrance response to light arriving from l with the
// given radiance.
func (s surface) direct(l, radiance mathutil.Vec3) Shading {
	nl := s.n.Dot(l)
	if nl <= 0 {
		return Shading{}
	}
	h := s.v.Add(l).Normalize()
	f := FresnelSchlick(math.Max(h.Dot(s.v), 0), s.f0)
	kd := mathutil.Splat(1).Sub(f).Scale(1 - s.metallic)
	diffuse := kd.Mul(s.albedo).Scale(1 / math.Pi).Mul(radiance).Scale(nl)

	if s.mirror {
		var spec mathutil.Vec3
		if s.v.Scale(-1).Reflect(s.n).Dot(l) >= mirrorCos {
			spec = f.Mul(radiance)
		}
		return Shading{Diffuse: diffuse, Specular: spec}
	}

	d := DistributionGGX(math.Max(s.n.Dot(h), 0), s.roughness)
	g := GeometrySmith(s.nv, nl, s.roughness)
	spec := f.Scale(d * g / (4*s.nv*nl + specularEpsilon))

	return Shading{
		Diffuse:  diffuse,
		Specular: spec.Mul(radiance).Scale(nl),
	}
}

func (s surface) ambient(env *envmap.Maps) Shading {
	if env == nil {
		return Shading{}
	}
	f := FresnelSchlickRoughness(s.nv, s.f0, s.roughness)
	kd := mathutil.Splat(1).Sub(f).Scale(1 - s.metallic)
	diffuse := env.SampleIrradiance(s.n).Mul(s.albedo).Mul(kd)

	r := s.v.Scale(-1).Reflect(s.n)
	scale, bias := env.SampleBRDF(s.nv, s.roughness)
	specular := env.SampleRadiance(r, s.roughness).Mul(f.Scale(scale).Add(mathutil.Splat(bias)))
	return Shading{Diffuse: diffuse, Specular: specular}
}

func (s surface) point(pos mathutil.Vec3, light Light) Shading {
	toLight := light.Position.Sub(pos)
	dist2 := toLight.Dot(toLight)
	if dist2 == 0 {
		return Shading{}
	}
	return s.direct(toLight.Normalize(), light.Color.Scale(1/dist2))
}

// PointLight returns one point light's contribution.
func PointLight(t gbuffer.Texel, viewPos mathutil.Vec3, light Light) Shading {
	return newSurface(t, viewPos).point(t.Position, light)
}

// Shade evaluates every light plus image-based lighting for one texel.
// Contributions are summed in slice order.
func Shade(t gbuffer.Texel, viewPos mathutil.Vec3, lights []Light, sun DirectionalLight, env *envmap.Maps) Shading {
	s := newSurface(t, viewPos)
	var out Shading
	for _, light := range lights {
		out = out.add(s.point(t.Position, light))
	}
	if sun.Enabled() {
		out = out.add(s.direct(sun.Direction.Scale(-1).Normalize(), sun.Color))
	}
	return out.add(s.ambient(env))
}
