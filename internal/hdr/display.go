package hdr

import "math"

// Gamma is the display transfer exponent used when quantizing to 8 bits.
const Gamma = 2.2

// Precomputed 8-bit sRGB-to-linear lookup table.
var srgbToLinear [256]float64

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = math.Pow(float64(i)/255.0, Gamma)
	}
}

// SRGBToLinear decodes an 8-bit display value.
func SRGBToLinear(c uint8) float64 {
	return srgbToLinear[c]
}

// LinearToSRGB encodes a linear value in [0,1] for display.
func LinearToSRGB(x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	return math.Pow(x, 1/Gamma)
}

// ACESTonemap applies the ACES filmic fit to a linear value.
func ACESTonemap(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}

// Quantize converts a display-encoded value to 8 bits with rounding.
func Quantize(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
