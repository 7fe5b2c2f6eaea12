package sky

import (
	"math"

	"deferred-renderer/internal/mathutil"
)

// Model is the Perez sky used as the image-based lighting source.
type Model struct {
	// Reference is the linear RGB radiance of the zenith sky.
	Reference mathutil.Vec3
	Turbidity float64
	// Cloudiness blends clear (0) toward fully overcast (1).
	Cloudiness float64
	// Intensity scales the final radiance.
	Intensity float64
}

// DefaultModel returns a clear mid-morning sky.
func DefaultModel() Model {
	return Model{
		Reference: mathutil.Vec3{0.25, 0.45, 1.0},
		Turbidity: DefaultTurbidity,
		Intensity: 1,
	}
}

// Radiance returns linear RGB sky radiance seen along view with the sun at
// sun. The reference color's chromaticity and luminance are each scaled by
// their Perez ratio and converted back to RGB.
func (m Model) Radiance(view, sun mathutil.Vec3) mathutil.Vec3 {
	x, y, Y := XYZToxyY(RGBToXYZ(m.Reference))
	theta, gamma, thetaSun := angles(view, sun)

	cx := x * Ratio(theta, gamma, thetaSun, ChromaXCoeffs(m.Turbidity))
	cy := y * Ratio(theta, gamma, thetaSun, ChromaYCoeffs(m.Turbidity))
	cY := Y * Ratio(theta, gamma, thetaSun, LuminanceCoeffs(m.Turbidity))

	if m.Cloudiness > 0 {
		oY := OvercastLuminance(view, sun, Y)
		w := mathutil.Saturate(m.Cloudiness)
		cx = mathutil.Mix(cx, x, w)
		cy = mathutil.Mix(cy, y, w)
		cY = mathutil.Mix(cY, oY, w)
	}

	rgb := XYZToRGB(XyYToXYZ(cx, cy, cY))
	return rgb.Scale(m.intensity()).Clamp(0, math.MaxFloat32)
}

func (m Model) intensity() float64 {
	if m.Intensity <= 0 {
		return 1
	}
	return m.Intensity
}

// OvercastLuminance is the fully diffuse fallback: zenith luminance falls
// off with the cosine of the sun's zenith angle, and the sky brightens
// toward the zenith following the CIE overcast gradient (1+2cosθ)/3.
func OvercastLuminance(view, sun mathutil.Vec3, zenithY float64) float64 {
	v := view.Normalize()
	s := sun.Normalize()
	zenith := zenithY * math.Max(s[1], 0)
	cosTheta := mathutil.Clamp(v[1], horizonCos, 1)
	return zenith * (1 + 2*cosTheta) / 3
}

// SunDirection places the sun from the orchestrator's push constants:
// rotation in turns around the up axis, transit in [0,1] from horizon to
// zenith (negative transit puts the sun below the horizon).
func SunDirection(rotation, transit float64) mathutil.Vec3 {
	elevation := transit * math.Pi / 2
	d := mathutil.RotZ(elevation).MulVec3(mathutil.Vec3{1, 0, 0})
	return mathutil.RotY(rotation * 2 * math.Pi).MulVec3(d).Normalize()
}

// Color is the clear-sky Perez color for a reference zenith color.
func Color(view, sun, reference mathutil.Vec3, turbidity float64) mathutil.Vec3 {
	return Model{Reference: reference, Turbidity: turbidity, Intensity: 1}.Radiance(view, sun)
}
