// Package envmap holds the prefiltered environment maps sampled by the
// lighting pass: an irradiance map, a mip chain of GGX-prefiltered radiance
// and the split-sum BRDF lookup table.
package envmap

import (
	"math"

	"deferred-renderer/internal/mathutil"
)

// DirToUV maps a unit direction to equirectangular coordinates.
// u = atan2(z, x)/2π + ½ and v = acos(y)/π, so v = 0 is straight up.
func DirToUV(d mathutil.Vec3) (u, v float64) {
	u = math.Atan2(d[2], d[0])/(2*math.Pi) + 0.5
	v = math.Acos(mathutil.Clamp(d[1], -1, 1)) / math.Pi
	return u, v
}

// UVToDir is the inverse of DirToUV.
func UVToDir(u, v float64) mathutil.Vec3 {
	phi := (u - 0.5) * 2 * math.Pi
	theta := v * math.Pi
	st := math.Sin(theta)
	return mathutil.Vec3{st * math.Cos(phi), math.Cos(theta), st * math.Sin(phi)}
}
