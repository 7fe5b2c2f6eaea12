package mathutil

// Vec4 is a 4-component vector, used for RGBA colors with alpha.
type Vec4 [4]float64

// RGB drops the alpha component.
func (v Vec4) RGB() Vec3 {
	return Vec3{v[0], v[1], v[2]}
}

// WithAlpha extends an RGB color.
func (v Vec3) WithAlpha(a float64) Vec4 {
	return Vec4{v[0], v[1], v[2], a}
}
