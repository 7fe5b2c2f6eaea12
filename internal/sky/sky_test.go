package sky

import (
	"math"
	"testing"

	"deferred-renderer/internal/mathutil"
)

func TestPerezRatioAtZenith(t *testing.T) {
	for _, turbidity := range []float64{2, 2.5, 4, 7, 10} {
		for _, thetaSun := range []float64{0, 0.3, 0.9, 1.4} {
			for name, c := range map[string]Coeffs{
				"Y": LuminanceCoeffs(turbidity),
				"x": ChromaXCoeffs(turbidity),
				"y": ChromaYCoeffs(turbidity),
			} {
				if got := Ratio(0, thetaSun, thetaSun, c); got != 1 {
					t.Errorf("%s T=%v θs=%v: expected 1, got %v", name, turbidity, thetaSun, got)
				}
			}
		}
	}
}

func TestZenithColorMatchesReference(t *testing.T) {
	ref := mathutil.Vec3{0.3, 0.5, 0.9}
	sun := SunDirection(0.2, 0.5)
	got := Color(mathutil.Vec3{0, 1, 0}, sun, ref, 3)
	for i := range got {
		if math.Abs(got[i]-ref[i]) > 1e-4 {
			t.Fatalf("zenith color: expected %v, got %v", ref, got)
		}
	}
}

func TestRadianceBelowHorizonIsFinite(t *testing.T) {
	m := DefaultModel()
	got := m.Radiance(mathutil.Vec3{0.3, -1, 0.2}, SunDirection(0, 0.4))
	for _, c := range got {
		if math.IsNaN(c) || math.IsInf(c, 0) || c < 0 {
			t.Fatalf("below-horizon radiance not finite: %v", got)
		}
	}
}

func TestOvercastBlend(t *testing.T) {
	sun := SunDirection(0, 1)
	up := mathutil.Vec3{0, 1, 0}
	if got := OvercastLuminance(up, sun, 2); math.Abs(got-2) > 1e-9 {
		t.Errorf("overcast zenith with sun overhead: expected 2, got %v", got)
	}
	if got := OvercastLuminance(up, mathutil.Vec3{0, -1, 0}, 2); got != 0 {
		t.Errorf("overcast with sun below horizon: expected 0, got %v", got)
	}

	m := DefaultModel()
	m.Cloudiness = 1
	horizon := m.Radiance(mathutil.Vec3{1, 0.01, 0}, sun)
	zenith := m.Radiance(up, sun)
	if horizon[1] >= zenith[1] {
		t.Errorf("overcast sky should brighten toward zenith: horizon %v zenith %v", horizon, zenith)
	}
}

func TestSunDirection(t *testing.T) {
	tests := []struct {
		rotation, transit float64
		want              mathutil.Vec3
	}{
		{0, 1, mathutil.Vec3{0, 1, 0}},
		{0, 0, mathutil.Vec3{1, 0, 0}},
		{0.25, 0, mathutil.Vec3{0, 0, -1}},
	}
	for _, tt := range tests {
		got := SunDirection(tt.rotation, tt.transit)
		if got.Sub(tt.want).Len() > 1e-9 {
			t.Errorf("SunDirection(%v, %v): expected %v, got %v", tt.rotation, tt.transit, tt.want, got)
		}
	}
}

func TestScatterOuterShellMiss(t *testing.T) {
	a := DefaultAtmosphere()
	a.CameraHeight = 20
	got := a.Scatter(mathutil.Vec3{0, 1, 0}, SunDirection(0, 0.5))
	if got != (mathutil.Vec4{0, 0, 0, 1}) {
		t.Errorf("ray leaving the shell behind: expected (0,0,0,1), got %v", got)
	}

	// from space, a ray passing beside the shell also sees vacuum
	got = a.Scatter(mathutil.Vec3{1, 0, 0}, SunDirection(0, 0.5))
	if got != (mathutil.Vec4{0, 0, 0, 1}) {
		t.Errorf("ray missing the shell: expected (0,0,0,1), got %v", got)
	}
}

func TestScatterBlueZenith(t *testing.T) {
	a := DefaultAtmosphere()
	got := a.Scatter(mathutil.Vec3{0, 1, 0}, SunDirection(0, 2.0/3.0))
	if got[3] != 1 {
		t.Fatalf("alpha: expected 1, got %v", got[3])
	}
	if !(got[2] > got[1] && got[1] > got[0] && got[0] > 0) {
		t.Errorf("zenith sky should be blue-dominant, got %v", got)
	}
}

func TestScatterGroundHitIsFinite(t *testing.T) {
	a := DefaultAtmosphere()
	got := a.Scatter(mathutil.Vec3{0, -1, 0}, SunDirection(0, 0.1))
	for _, c := range got {
		if math.IsNaN(c) || math.IsInf(c, 0) || c < 0 {
			t.Fatalf("ground ray produced %v", got)
		}
	}
}
