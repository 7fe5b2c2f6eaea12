package envmap

import (
	"context"
	"math"
	"testing"

	"deferred-renderer/internal/mathutil"
)

func TestDirUVRoundTrip(t *testing.T) {
	dirs := []mathutil.Vec3{
		{1, 0, 0}, {0, 0, 1}, {-1, 0, 0}, {0.3, 0.8, -0.2}, {0.1, -0.9, 0.4},
	}
	for _, d := range dirs {
		d = d.Normalize()
		u, v := DirToUV(d)
		if u < 0 || u > 1 || v < 0 || v > 1 {
			t.Errorf("DirToUV(%v) out of range: %v %v", d, u, v)
		}
		if got := UVToDir(u, v); got.Sub(d).Len() > 1e-9 {
			t.Errorf("round trip %v: got %v", d, got)
		}
	}
	if _, v := DirToUV(mathutil.Vec3{0, 1, 0}); v != 0 {
		t.Errorf("up should map to v=0, got %v", v)
	}
}

func TestSampleUVWrapsHorizontally(t *testing.T) {
	m := NewMap(4, 2)
	for y := 0; y < 2; y++ {
		m.Set(0, y, mathutil.Vec3{1, 0, 0})
		m.Set(3, y, mathutil.Vec3{0, 0, 1})
	}
	got := m.SampleUV(0, 0.5)
	want := mathutil.Vec3{0.5, 0, 0.5}
	if got.Sub(want).Len() > 1e-6 {
		t.Errorf("seam sample: expected %v, got %v", want, got)
	}
}

func TestNilMapsAreBlack(t *testing.T) {
	var m *Maps
	if got := m.SampleIrradiance(mathutil.Vec3{0, 1, 0}); !got.IsZero() {
		t.Errorf("nil irradiance: got %v", got)
	}
	if got := m.SampleRadiance(mathutil.Vec3{0, 1, 0}, 0.5); !got.IsZero() {
		t.Errorf("nil radiance: got %v", got)
	}
	if s, b := m.SampleBRDF(0.5, 0.5); s != 0 || b != 0 {
		t.Errorf("nil brdf: got %v %v", s, b)
	}
}

func TestSampleRadianceBlendsLevels(t *testing.T) {
	lo, hi := NewMap(8, 4), NewMap(4, 2)
	ctx := context.Background()
	_ = lo.Fill(ctx, 1, func(mathutil.Vec3) mathutil.Vec3 { return mathutil.Splat(1) })
	_ = hi.Fill(ctx, 1, func(mathutil.Vec3) mathutil.Vec3 { return mathutil.Splat(3) })
	m := &Maps{Radiance: []*Map{lo, hi}}

	tests := []struct {
		roughness, want float64
	}{
		{0, 1}, {0.5, 2}, {1, 3}, {2, 3},
	}
	for _, tt := range tests {
		got := m.SampleRadiance(mathutil.Vec3{0, 0, 1}, tt.roughness)
		if math.Abs(got[0]-tt.want) > 1e-6 {
			t.Errorf("roughness %v: expected %v, got %v", tt.roughness, tt.want, got[0])
		}
	}
}

func TestBakeConstantEnvironment(t *testing.T) {
	opts := BakeOptions{
		Width: 16, Levels: 3, Samples: 16,
		IrradianceWidth: 8, IrradianceSamples: 32,
		LUTSize: 8, LUTSamples: 32, Workers: 2,
	}
	L := mathutil.Vec3{0.5, 1, 2}
	maps, err := Bake(context.Background(), func(mathutil.Vec3) mathutil.Vec3 { return L }, opts)
	if err != nil {
		t.Fatalf("Bake: %v", err)
	}
	if len(maps.Radiance) != 3 || maps.MaxLevel() != 2 {
		t.Fatalf("expected 3 radiance levels, got %d", len(maps.Radiance))
	}
	dirs := []mathutil.Vec3{{0, 1, 0}, {1, 0, 0}, {0.2, -0.7, 0.5}}
	for _, d := range dirs {
		if got := maps.SampleIrradiance(d); got.Sub(L).Len() > 1e-4 {
			t.Errorf("irradiance along %v: expected %v, got %v", d, L, got)
		}
		for _, r := range []float64{0, 0.3, 1} {
			if got := maps.SampleRadiance(d, r); got.Sub(L).Len() > 1e-4 {
				t.Errorf("radiance along %v r=%v: expected %v, got %v", d, r, L, got)
			}
		}
	}
}

func TestBakeRejectsBadOptions(t *testing.T) {
	opts := DefaultBakeOptions()
	opts.Levels = 0
	if _, err := Bake(context.Background(), func(mathutil.Vec3) mathutil.Vec3 { return mathutil.Vec3{} }, opts); err == nil {
		t.Fatal("expected error for zero levels")
	}
}

func TestBakeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	opts := DefaultBakeOptions()
	opts.Workers = 1
	if _, err := Bake(ctx, func(mathutil.Vec3) mathutil.Vec3 { return mathutil.Vec3{} }, opts); err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestBRDFIntegration(t *testing.T) {
	s, b := integrateBRDF(1, 0.05, 256)
	if sum := s + b; sum < 0.95 || sum > 1.0001 {
		t.Errorf("smooth head-on scale+bias: expected ~1, got %v", sum)
	}

	lut, err := BakeLUT(context.Background(), 8, 64, 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, nv := range []float64{0.1, 0.5, 0.9} {
		for _, r := range []float64{0.1, 0.5, 0.9} {
			s, b := lut.Sample(nv, r)
			if s < 0 || b < 0 || s+b > 1.05 {
				t.Errorf("lut(%v,%v) = %v,%v outside [0,1]", nv, r, s, b)
			}
		}
	}
}

func TestApproxBRDFFallback(t *testing.T) {
	var lut *LUT
	s, b := lut.Sample(0.7, 0.4)
	as, ab := ApproxBRDF(0.7, 0.4)
	if s != as || b != ab {
		t.Errorf("nil LUT should use the analytic fit")
	}
}
