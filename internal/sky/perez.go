// Package sky implements the two analytic atmosphere models: the Perez
// luminance/chromaticity model that drives image-based lighting, and the
// single-scattering Rayleigh+Mie integrator that draws the visible sky dome.
package sky

import (
	"math"

	"deferred-renderer/internal/mathutil"
)

// Coeffs are the five Perez distribution parameters A..E.
type Coeffs struct {
	A, B, C, D, E float64
}

// coeffLine is a base value plus a per-unit-turbidity slope.
type coeffLine struct{ slope, base float64 }

func (l coeffLine) at(t float64) float64 { return l.slope*t + l.base }

// Preetham et al. turbidity tables for luminance Y and chromaticity x, y.
var (
	tableY = [5]coeffLine{{0.1787, -1.4630}, {-0.3554, 0.4275}, {-0.0227, 5.3251}, {0.1206, -2.5771}, {-0.0670, 0.3703}}
	tablex = [5]coeffLine{{-0.0193, -0.2592}, {-0.0665, 0.0008}, {-0.0004, 0.2125}, {-0.0641, -0.8989}, {-0.0033, 0.0452}}
	tabley = [5]coeffLine{{-0.0167, -0.2608}, {-0.0950, 0.0092}, {-0.0079, 0.2102}, {-0.0441, -1.6537}, {-0.0109, 0.0529}}
)

// Turbidity bounds where the fitted tables stay positive.
const (
	MinTurbidity     = 2.0
	MaxTurbidity     = 10.0
	DefaultTurbidity = 2.5
)

func coeffsFor(table [5]coeffLine, turbidity float64) Coeffs {
	t := mathutil.Clamp(turbidity, MinTurbidity, MaxTurbidity)
	return Coeffs{table[0].at(t), table[1].at(t), table[2].at(t), table[3].at(t), table[4].at(t)}
}

// LuminanceCoeffs returns the Y distribution for a turbidity.
func LuminanceCoeffs(turbidity float64) Coeffs { return coeffsFor(tableY, turbidity) }

// ChromaXCoeffs returns the x-chromaticity distribution for a turbidity.
func ChromaXCoeffs(turbidity float64) Coeffs { return coeffsFor(tablex, turbidity) }

// ChromaYCoeffs returns the y-chromaticity distribution for a turbidity.
func ChromaYCoeffs(turbidity float64) Coeffs { return coeffsFor(tabley, turbidity) }

// Perez evaluates (1 + A·e^(B/cosθ)) · (1 + C·e^(D·γ) + E·cos²γ).
// theta is the zenith angle of the view direction, gamma the angle between
// the view and the sun.
func Perez(theta, gamma float64, c Coeffs) float64 {
	cosG := math.Cos(gamma)
	return (1 + c.A*math.Exp(c.B/math.Cos(theta))) * (1 + c.C*math.Exp(c.D*gamma) + c.E*cosG*cosG)
}

// Ratio normalizes the distribution to the zenith: perez(θ,γ)/perez(0,θsun).
func Ratio(theta, gamma, thetaSun float64, c Coeffs) float64 {
	return Perez(theta, gamma, c) / Perez(0, thetaSun, c)
}

// horizonCos keeps 1/cosθ finite; directions below it reuse the horizon value.
const horizonCos = 0.01

func angles(view, sun mathutil.Vec3) (theta, gamma, thetaSun float64) {
	v := view.Normalize()
	s := sun.Normalize()
	theta = math.Acos(mathutil.Clamp(v[1], horizonCos, 1))
	gamma = math.Acos(mathutil.Clamp(v.Dot(s), -1, 1))
	thetaSun = math.Acos(mathutil.Clamp(s[1], -1, 1))
	return theta, gamma, thetaSun
}
