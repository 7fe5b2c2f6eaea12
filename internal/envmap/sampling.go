package envmap

import (
	"math"
	"math/bits"

	"deferred-renderer/internal/mathutil"
)

// hammersley returns the i-th point of an n-point low-discrepancy set.
func hammersley(i, n int) (float64, float64) {
	return float64(i) / float64(n), float64(bits.Reverse32(uint32(i))) / (1 << 32)
}

// basis builds an orthonormal tangent frame around n.
func basis(n mathutil.Vec3) (t, b mathutil.Vec3) {
	up := mathutil.Vec3{0, 0, 1}
	if math.Abs(n[2]) >= 0.999 {
		up = mathutil.Vec3{1, 0, 0}
	}
	t = up.Cross(n).Normalize()
	b = n.Cross(t)
	return t, b
}

func toWorld(local, n mathutil.Vec3) mathutil.Vec3 {
	t, b := basis(n)
	return t.Scale(local[0]).Add(b.Scale(local[1])).Add(n.Scale(local[2])).Normalize()
}

// importanceGGX samples a half vector around n from the GGX distribution.
func importanceGGX(u1, u2 float64, n mathutil.Vec3, roughness float64) mathutil.Vec3 {
	a := roughness * roughness
	phi := 2 * math.Pi * u1
	cosT := math.Sqrt((1 - u2) / (1 + (a*a-1)*u2))
	sinT := math.Sqrt(math.Max(0, 1-cosT*cosT))
	return toWorld(mathutil.Vec3{math.Cos(phi) * sinT, math.Sin(phi) * sinT, cosT}, n)
}

// cosineHemisphere samples a direction around n with pdf cosθ/π.
func cosineHemisphere(u1, u2 float64, n mathutil.Vec3) mathutil.Vec3 {
	phi := 2 * math.Pi * u1
	sinT := math.Sqrt(u2)
	cosT := math.Sqrt(1 - u2)
	return toWorld(mathutil.Vec3{math.Cos(phi) * sinT, math.Sin(phi) * sinT, cosT}, n)
}

// smithIBL is the Smith-Schlick geometry term with the image-based k = α/2.
func smithIBL(nv, nl, roughness float64) float64 {
	k := roughness * roughness / 2
	return (nv / (nv*(1-k) + k)) * (nl / (nl*(1-k) + k))
}

// integrateBRDF computes one split-sum table entry.
func integrateBRDF(nv, roughness float64, samples int) (scale, bias float64) {
	v := mathutil.Vec3{math.Sqrt(1 - nv*nv), 0, nv}
	n := mathutil.Vec3{0, 0, 1}
	for i := 0; i < samples; i++ {
		u1, u2 := hammersley(i, samples)
		h := importanceGGX(u1, u2, n, roughness)
		vh := v.Dot(h)
		l := h.Scale(2 * vh).Sub(v)
		nl := math.Max(l[2], 0)
		nh := math.Max(h[2], 0)
		vh = math.Max(vh, 0)
		if nl <= 0 || nh <= 0 {
			continue
		}
		gVis := smithIBL(nv, nl, roughness) * vh / (nh * nv)
		fc := math.Pow(1-vh, 5)
		scale += (1 - fc) * gVis
		bias += fc * gVis
	}
	return scale / float64(samples), bias / float64(samples)
}
