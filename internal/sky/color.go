package sky

import "deferred-renderer/internal/mathutil"

// Linear Rec.709 / sRGB primaries, D65 white.
var (
	rgbToXYZ = mathutil.Mat3{
		0.4124564, 0.3575761, 0.1804375,
		0.2126729, 0.7151522, 0.0721750,
		0.0193339, 0.1191920, 0.9503041,
	}
	xyzToRGB = mathutil.Mat3{
		3.2404542, -1.5371385, -0.4985314,
		-0.9692660, 1.8760108, 0.0415560,
		0.0556434, -0.2040259, 1.0572252,
	}
)

func RGBToXYZ(c mathutil.Vec3) mathutil.Vec3 { return rgbToXYZ.MulVec3(c) }

func XYZToRGB(c mathutil.Vec3) mathutil.Vec3 { return xyzToRGB.MulVec3(c) }

// XYZToxyY returns chromaticity (x, y) and luminance Y. Black maps to the
// D65 white point with zero luminance.
func XYZToxyY(c mathutil.Vec3) (x, y, Y float64) {
	sum := c[0] + c[1] + c[2]
	if sum <= 0 {
		return 0.3127, 0.3290, 0
	}
	return c[0] / sum, c[1] / sum, c[1]
}

// XyYToXYZ is the inverse of XYZToxyY.
func XyYToXYZ(x, y, Y float64) mathutil.Vec3 {
	if y <= 0 {
		return mathutil.Vec3{}
	}
	return mathutil.Vec3{x * Y / y, Y, (1 - x - y) * Y / y}
}
