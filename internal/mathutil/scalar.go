package mathutil

import "math"

func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Saturate clamps x to [0, 1].
func Saturate(x float64) float64 {
	return Clamp(x, 0, 1)
}

// Mix is GLSL mix(): a*(1-t) + b*t.
func Mix(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Smoothstep is GLSL smoothstep(): Hermite interpolation of x between the edges.
// Returns 0 below edge0 and 1 above edge1.
func Smoothstep(edge0, edge1, x float64) float64 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := Saturate((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

// NearlyEqual compares with an absolute tolerance.
func NearlyEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}
