package hdr

import "deferred-renderer/internal/mathutil"

// LumaScale is the fixed-point factor of the integer luma attachment.
const LumaScale = 1000.0

// LumaSentinel marks a pixel excluded from exposure metering.
const LumaSentinel int32 = -1

// LumaWeights are the Rec.709 relative luminance weights.
var LumaWeights = mathutil.Vec3{0.2126, 0.7152, 0.0722}

// Luminance returns the relative luminance of a linear color.
func Luminance(c mathutil.Vec3) float64 {
	return c.Dot(LumaWeights)
}

// EncodeLuma truncates luminance·LumaScale to an integer. Negative
// luminance clamps to zero so it can never collide with the sentinel.
func EncodeLuma(c mathutil.Vec3) int32 {
	l := Luminance(c) * LumaScale
	if l <= 0 || l != l {
		return 0
	}
	if l >= 2147483647 {
		return 2147483647
	}
	return int32(l)
}

// DecodeLuma returns the luminance and false for the sentinel (or any
// other negative value).
func DecodeLuma(v int32) (float64, bool) {
	if v < 0 {
		return 0, false
	}
	return float64(v) / LumaScale, true
}
