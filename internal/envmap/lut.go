package envmap

import (
	"math"

	"deferred-renderer/internal/mathutil"
)

// LUT is the split-sum BRDF table indexed by (N·V, roughness). Each texel
// holds the Fresnel scale and bias applied to F0.
type LUT struct {
	Size int
	Pix  []float32
}

func NewLUT(size int) *LUT {
	return &LUT{Size: size, Pix: make([]float32, size*size*2)}
}

func (l *LUT) at(x, y int) (float64, float64) {
	i := (y*l.Size + x) * 2
	return float64(l.Pix[i]), float64(l.Pix[i+1])
}

func (l *LUT) set(x, y int, scale, bias float64) {
	i := (y*l.Size + x) * 2
	l.Pix[i] = float32(scale)
	l.Pix[i+1] = float32(bias)
}

// Sample filters bilinearly with clamped coordinates. A nil table falls
// back to the analytic approximation.
func (l *LUT) Sample(nv, roughness float64) (scale, bias float64) {
	if l == nil || l.Size == 0 {
		return ApproxBRDF(nv, roughness)
	}
	last := float64(l.Size - 1)
	fx := mathutil.Clamp(nv*float64(l.Size)-0.5, 0, last)
	fy := mathutil.Clamp(roughness*float64(l.Size)-0.5, 0, last)
	x0, y0 := int(fx), int(fy)
	x1, y1 := min(x0+1, l.Size-1), min(y0+1, l.Size-1)
	dx, dy := fx-float64(x0), fy-float64(y0)

	s00, b00 := l.at(x0, y0)
	s10, b10 := l.at(x1, y0)
	s01, b01 := l.at(x0, y1)
	s11, b11 := l.at(x1, y1)
	scale = mathutil.Mix(mathutil.Mix(s00, s10, dx), mathutil.Mix(s01, s11, dx), dy)
	bias = mathutil.Mix(mathutil.Mix(b00, b10, dx), mathutil.Mix(b01, b11, dx), dy)
	return scale, bias
}

// ApproxBRDF is Karis' analytic fit of the split-sum table.
func ApproxBRDF(nv, roughness float64) (scale, bias float64) {
	r0 := roughness*-1 + 1
	r1 := roughness*-0.0275 + 0.0425
	r2 := roughness*-0.572 + 1.04
	r3 := roughness*0.022 - 0.04
	a004 := math.Min(r0*r0, math.Exp2(-9.28*nv))*r0 + r1
	return -1.04*a004 + r2, 1.04*a004 + r3
}
