package sky

import (
	"math"

	"deferred-renderer/internal/hdr"
	"deferred-renderer/internal/mathutil"
)

// MieG is the Henyey-Greenstein asymmetry used for the sun glow.
const MieG = -0.990

// Atmosphere is a single-scattering Rayleigh+Mie shell around a planet
// centered at the origin. The camera sits on the +Y axis.
type Atmosphere struct {
	InnerRadius  float64
	OuterRadius  float64
	CameraHeight float64

	Kr, Km float64 // Rayleigh and Mie scattering constants
	ESun   float64 // sun brightness
	// Wavelength of the red, green and blue channels in micrometres.
	Wavelength mathutil.Vec3
	// ScaleDepth is the fraction of the shell where average density is found.
	ScaleDepth float64
	Samples    int
	Intensity  float64
}

// DefaultAtmosphere returns an earth-like shell with the camera just above
// the ground.
func DefaultAtmosphere() Atmosphere {
	return Atmosphere{
		InnerRadius:  10.0,
		OuterRadius:  10.25,
		CameraHeight: 10.0 + 1e-3,
		Kr:           0.0025,
		Km:           0.0010,
		ESun:         20,
		Wavelength:   mathutil.Vec3{0.650, 0.570, 0.475},
		ScaleDepth:   0.25,
		Samples:      3,
		Intensity:    1,
	}
}

// vacuum is returned for rays that never enter the shell.
var vacuum = mathutil.Vec4{0, 0, 0, 1}

// raySphere returns both intersection distances of a ray with a sphere
// around the origin. The discriminant is clamped to zero so tangent and
// missing rays collapse to the closest approach.
func raySphere(origin, dir mathutil.Vec3, radius float64) (near, far float64, hit bool) {
	b := origin.Dot(dir)
	c := origin.Dot(origin) - radius*radius
	disc := b*b - c
	hit = disc >= 0
	disc = math.Max(disc, 0)
	s := math.Sqrt(disc)
	return -b - s, -b + s, hit
}

func (a Atmosphere) scale(cos float64) float64 {
	x := 1 - cos
	return a.ScaleDepth * math.Exp(-0.00287+x*(0.459+x*(3.83+x*(-6.80+x*5.25))))
}

// Scatter integrates in-scattered light along dir with the sun in
// direction sun. Alpha is always 1.
func (a Atmosphere) Scatter(dir, sun mathutil.Vec3) mathutil.Vec4 {
	d := dir.Normalize()
	if d.IsZero() {
		return vacuum
	}
	s := sun.Normalize()
	origin := mathutil.Vec3{0, a.CameraHeight, 0}

	t0, t1, _ := raySphere(origin, d, a.OuterRadius)
	if t0 < 0 && t1 < 0 {
		return vacuum
	}
	start := math.Max(t0, 0)
	end := t1
	if g0, _, hit := raySphere(origin, d, a.InnerRadius); hit && g0 > start {
		end = math.Min(end, g0)
	}
	if end <= start {
		return vacuum
	}

	samples := a.Samples
	if samples < 1 {
		samples = 1
	}
	shell := a.OuterRadius - a.InnerRadius
	scale := 1 / shell
	scaleOverDepth := scale / a.ScaleDepth

	startPoint := origin.Add(d.Scale(start))
	startHeight := startPoint.Len()
	startDepth := math.Exp(scaleOverDepth * (a.InnerRadius - startHeight))
	startOffset := startDepth * a.scale(d.Dot(startPoint)/startHeight)

	sampleLength := (end - start) / float64(samples)
	scaledLength := sampleLength * scale
	invWave := mathutil.Vec3{
		1 / math.Pow(a.Wavelength[0], 4),
		1 / math.Pow(a.Wavelength[1], 4),
		1 / math.Pow(a.Wavelength[2], 4),
	}
	kr4pi := a.Kr * 4 * math.Pi
	km4pi := a.Km * 4 * math.Pi

	var front mathutil.Vec3
	p := startPoint.Add(d.Scale(sampleLength * 0.5))
	for i := 0; i < samples; i++ {
		h := p.Len()
		depth := math.Exp(scaleOverDepth * (a.InnerRadius - h))
		lightAngle := s.Dot(p) / h
		cameraAngle := d.Dot(p) / h
		scatter := startOffset + depth*(a.scale(lightAngle)-a.scale(cameraAngle))
		att := invWave.Scale(kr4pi).Add(mathutil.Splat(km4pi)).Scale(-scatter).Exp()
		front = front.Add(att.Scale(depth * scaledLength))
		p = p.Add(d.Scale(sampleLength))
	}

	rayleigh := front.Mul(invWave).Scale(a.Kr * a.ESun)
	mie := front.Scale(a.Km * a.ESun)

	cos := s.Dot(d.Scale(-1))
	color := rayleigh.Scale(rayleighPhase(cos)).Add(mie.Scale(miePhase(cos, MieG)))
	if a.Intensity > 0 {
		color = color.Scale(a.Intensity)
	}
	return hdr.ClampRadiance(color).WithAlpha(1)
}

func rayleighPhase(cos float64) float64 {
	return 0.75 * (1 + cos*cos)
}

// miePhase is the Cornette-Shanks form of Henyey-Greenstein.
func miePhase(cos, g float64) float64 {
	g2 := g * g
	denom := math.Pow(math.Max(1+g2-2*g*cos, 1e-6), 1.5)
	return 1.5 * ((1 - g2) / (2 + g2)) * (1 + cos*cos) / denom
}
