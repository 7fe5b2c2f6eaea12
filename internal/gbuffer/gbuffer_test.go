package gbuffer

import (
	"errors"
	"testing"

	"deferred-renderer/internal/mathutil"
)

func TestDecodeOcclusion(t *testing.T) {
	if got := DecodeOcclusion(1, 2, 3, 4); got != 0.0390625 {
		t.Errorf("DecodeOcclusion(1,2,3,4): expected 0.0390625, got %v", got)
	}
	// wraps modulo 256
	if got := DecodeOcclusion(255, 1, 0, 0); got != 0 {
		t.Errorf("DecodeOcclusion(255,1,0,0): expected 0, got %v", got)
	}
}

func TestPackOcclusionID(t *testing.T) {
	for id := 0; id < 256; id++ {
		p := PackOcclusionID(uint8(id))
		want := float64(id) / 256
		if got := DecodeOcclusion(p[0], p[1], p[2], p[3]); got != want {
			t.Fatalf("id %d: expected %v, got %v", id, want, got)
		}
	}
}

func TestOcclusionSampleUV(t *testing.T) {
	o := NewOcclusionBuffer(4, 2)
	o.Set(3, 1, 40)
	if got := o.SampleUV(0.99, 0.99); got != 40.0/256 {
		t.Errorf("SampleUV corner: expected %v, got %v", 40.0/256, got)
	}
	if got := o.SampleUV(1.5, -3); got != 0 {
		t.Errorf("SampleUV clamps: expected 0 at (3,0), got %v", got)
	}
	var nilBuf *OcclusionBuffer
	if got := nilBuf.SampleUV(0.5, 0.5); got != 0 {
		t.Errorf("nil buffer should decode to 0, got %v", got)
	}
}

func TestGBufferCoveredAndLoad(t *testing.T) {
	g := New(2, 1)
	if g.Covered(0) || g.Covered(1) {
		t.Fatalf("fresh G-buffer should be uncovered")
	}
	tex := Texel{
		Position:  mathutil.Vec3{1, 2, 3},
		Normal:    mathutil.Vec3{0, 2, 0},
		Albedo:    mathutil.Vec3{0.5, 0.25, 0.125},
		Roughness: 0.5,
		Metallic:  1,
	}
	g.Store(1, tex)
	if !g.Covered(1) {
		t.Errorf("pixel 1 should be covered")
	}
	if got := g.Load(1); got != tex {
		t.Errorf("Load: expected %+v, got %+v", tex, got)
	}
}

func TestGBufferValidate(t *testing.T) {
	g := New(3, 3)
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate: unexpected error %v", err)
	}
	g.Metallic = NewScalarBuffer(2, 2)
	if err := g.Validate(); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("Validate: expected ErrSizeMismatch, got %v", err)
	}
	g.Albedo = nil
	if err := g.Validate(); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("Validate nil channel: expected ErrSizeMismatch, got %v", err)
	}
}

func TestLumaCopyFrom(t *testing.T) {
	a := NewLumaBuffer(2, 2)
	b := NewLumaBuffer(2, 2)
	b.Pix[3] = -1
	if err := a.CopyFrom(b); err != nil || a.Pix[3] != -1 {
		t.Errorf("CopyFrom: err=%v pix=%v", err, a.Pix)
	}
	if err := a.CopyFrom(NewLumaBuffer(1, 1)); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("CopyFrom size mismatch: expected ErrSizeMismatch, got %v", err)
	}
}
