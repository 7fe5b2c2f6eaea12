package envmap

import (
	"context"
	"fmt"

	"deferred-renderer/internal/mathutil"
	"deferred-renderer/internal/parallel"
)

// Map is a linear RGB equirectangular image stored as float32 triples.
type Map struct {
	Width, Height int
	Pix           []float32
}

// NewMap allocates a black map.
func NewMap(width, height int) *Map {
	return &Map{Width: width, Height: height, Pix: make([]float32, width*height*3)}
}

func (m *Map) At(x, y int) mathutil.Vec3 {
	i := (y*m.Width + x) * 3
	return mathutil.Vec3{float64(m.Pix[i]), float64(m.Pix[i+1]), float64(m.Pix[i+2])}
}

func (m *Map) Set(x, y int, c mathutil.Vec3) {
	i := (y*m.Width + x) * 3
	m.Pix[i] = float32(c[0])
	m.Pix[i+1] = float32(c[1])
	m.Pix[i+2] = float32(c[2])
}

// TexelDir returns the direction through the center of texel (x, y).
func (m *Map) TexelDir(x, y int) mathutil.Vec3 {
	return UVToDir((float64(x)+0.5)/float64(m.Width), (float64(y)+0.5)/float64(m.Height))
}

// SampleUV filters bilinearly, wrapping u and clamping v. A nil map is black.
func (m *Map) SampleUV(u, v float64) mathutil.Vec3 {
	if m == nil || m.Width == 0 || m.Height == 0 {
		return mathutil.Vec3{}
	}
	fx := u*float64(m.Width) - 0.5
	fy := mathutil.Clamp(v*float64(m.Height)-0.5, 0, float64(m.Height-1))

	x0f := floor(fx)
	y0 := int(fy)
	dx := fx - x0f
	dy := fy - float64(y0)

	x0 := wrap(int(x0f), m.Width)
	x1 := wrap(int(x0f)+1, m.Width)
	y1 := min(y0+1, m.Height-1)

	c00 := m.At(x0, y0)
	c10 := m.At(x1, y0)
	c01 := m.At(x0, y1)
	c11 := m.At(x1, y1)
	top := c00.Lerp(c10, dx)
	bottom := c01.Lerp(c11, dx)
	return top.Lerp(bottom, dy)
}

// Sample looks up the map along a world direction.
func (m *Map) Sample(dir mathutil.Vec3) mathutil.Vec3 {
	u, v := DirToUV(dir.Normalize())
	return m.SampleUV(u, v)
}

// Fill evaluates fn at every texel center direction.
func (m *Map) Fill(ctx context.Context, workers int, fn func(dir mathutil.Vec3) mathutil.Vec3) error {
	err := parallel.ForRows(ctx, m.Height, workers, func(y int) {
		for x := 0; x < m.Width; x++ {
			m.Set(x, y, fn(m.TexelDir(x, y)))
		}
	})
	if err != nil {
		return fmt.Errorf("envmap: fill %dx%d: %w", m.Width, m.Height, err)
	}
	return nil
}

func floor(x float64) float64 {
	i := float64(int(x))
	if x < i {
		i--
	}
	return i
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
