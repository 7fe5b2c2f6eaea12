package exposure

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"deferred-renderer/internal/gbuffer"
	"deferred-renderer/internal/hdr"
)

func TestTargetExposure(t *testing.T) {
	// EV100 = log2(0.125·100/12.5) = 0
	if got, want := TargetExposure(0.125, 0), 1/1.2; math.Abs(got-want) > 1e-12 {
		t.Errorf("TargetExposure(0.125): expected %v, got %v", want, got)
	}
	// one stop of compensation halves the exposure
	if got, want := TargetExposure(0.125, 1), 1/2.4; math.Abs(got-want) > 1e-12 {
		t.Errorf("with +1 EV: expected %v, got %v", want, got)
	}
}

func TestExposureMonotonic(t *testing.T) {
	s := DefaultSettings()
	prevRaw, prevClamped := math.Inf(1), math.Inf(1)
	for l := 0.0; l < 200; l = l*1.7 + 0.001 {
		raw := TargetExposure(l, s.Compensation)
		clamped := s.Target(l)
		if raw > prevRaw || clamped > prevClamped {
			t.Fatalf("exposure increased at L=%v: raw %v (prev %v), clamped %v (prev %v)",
				l, raw, prevRaw, clamped, prevClamped)
		}
		if clamped < s.Min || clamped > s.Max {
			t.Fatalf("clamped exposure %v outside [%v,%v]", clamped, s.Min, s.Max)
		}
		prevRaw, prevClamped = raw, clamped
	}
}

func TestMeterMonotonic(t *testing.T) {
	for _, method := range []Method{MethodHistogram, MethodLogAverage} {
		m := DefaultMeter()
		m.Method = method
		prev := math.Inf(1)
		for scale := int32(1); scale < 5000; scale *= 3 {
			luma := []int32{10 * scale, 50 * scale, 200 * scale, hdr.LumaSentinel, 90 * scale}
			res, ok := m.Measure(luma)
			if !ok {
				t.Fatalf("%v: no metering", method)
			}
			e := DefaultSettings().Target(res.Average)
			if e > prev {
				t.Fatalf("%v: brighter scene raised exposure: %v > %v", method, e, prev)
			}
			prev = e
		}
	}
}

func TestHistogramPercentiles(t *testing.T) {
	luma := make([]int32, 100)
	for i := range luma {
		luma[i] = 2000 // L = 2 → bin 50
	}
	res, ok := DefaultMeter().Measure(luma)
	if !ok {
		t.Fatal("expected metering")
	}
	if res.Histogram.Bins[50] != 100 {
		t.Fatalf("expected all samples in bin 50, got %v", res.Histogram.Bins[45:55])
	}
	if math.Abs(res.LowBin-50.6) > 1e-9 || math.Abs(res.HighBin-50.9) > 1e-9 {
		t.Errorf("percentile bins: expected 50.6/50.9, got %v/%v", res.LowBin, res.HighBin)
	}
	if want := BinLuminance(50.75); math.Abs(res.Average-want) > 1e-9 {
		t.Errorf("average: expected %v, got %v", want, res.Average)
	}
}

func TestSentinelsIgnored(t *testing.T) {
	for _, method := range []Method{MethodHistogram, MethodLogAverage} {
		m := DefaultMeter()
		m.Method = method
		if _, ok := m.Measure([]int32{-1, -1, -1}); ok {
			t.Errorf("%v: all-sentinel buffer should yield no data", method)
		}
		a, _ := m.Measure([]int32{500, 2000})
		b, _ := m.Measure([]int32{-1, 500, -1, 2000, -1})
		if a.Average != b.Average || a.Samples != b.Samples {
			t.Errorf("%v: sentinels changed metering: %+v vs %+v", method, a, b)
		}
	}
}

func TestLogAverage(t *testing.T) {
	m := DefaultMeter()
	m.Method = MethodLogAverage
	res, ok := m.Measure([]int32{1000, 4000})
	if !ok || math.Abs(res.Average-2) > 1e-12 {
		t.Errorf("geometric mean of 1 and 4: expected 2, got %v (ok=%v)", res.Average, ok)
	}
	// zero luminance clamps to MinLuminance instead of collapsing the mean
	res, _ = m.Measure([]int32{0, 1000})
	if want := math.Sqrt(m.MinLuminance); math.Abs(res.Average-want) > 1e-12 {
		t.Errorf("clamped zero: expected %v, got %v", want, res.Average)
	}
}

func TestControllerKeepsExposureWithoutData(t *testing.T) {
	c := NewController(DefaultSettings())
	before := c.Exposure()
	if got := c.Update(Metering{}, false, time.Second); got != before {
		t.Errorf("no data: expected %v, got %v", before, got)
	}
}

func TestControllerAdaptation(t *testing.T) {
	s := DefaultSettings()
	s.AdaptSpeed = 0
	c := NewController(s)
	m := Metering{Average: 0.125}
	if got, want := c.Update(m, true, time.Second), s.Target(0.125); got != want {
		t.Errorf("instant adaptation: expected %v, got %v", want, got)
	}

	s.AdaptSpeed = 1
	c = NewController(s)
	start := c.Exposure()
	target := s.Target(10)
	got := c.Update(Metering{Average: 10}, true, time.Second)
	want := start + (target-start)*(1-math.Exp(-1))
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("smoothed adaptation: expected %v, got %v", want, got)
	}
	if c.Last().Average != 10 {
		t.Errorf("Last: expected the applied metering")
	}
}

func TestReadbackOneFrameLag(t *testing.T) {
	m := DefaultMeter()
	m.Method = MethodLogAverage
	r := NewReadback(2, m)
	defer r.Close()

	if _, ok := r.Latest(); ok {
		t.Fatal("no frame submitted yet")
	}
	luma := gbuffer.NewLumaBuffer(4, 4)
	for i := range luma.Pix {
		luma.Pix[i] = 1000
	}
	if err := r.Submit(context.Background(), 0, luma); err != nil {
		t.Fatal(err)
	}
	// the caller's buffer is free once Submit returns
	for i := range luma.Pix {
		luma.Pix[i] = 8000
	}
	r.Wait()
	res, ok := r.Latest()
	if !ok || res.Frame != 0 || math.Abs(res.Metering.Average-1) > 1e-12 {
		t.Fatalf("frame 0 result: %+v ok=%v", res, ok)
	}

	if err := r.Submit(context.Background(), 1, luma); err != nil {
		t.Fatal(err)
	}
	r.Wait()
	res, _ = r.Latest()
	if res.Frame != 1 || math.Abs(res.Metering.Average-8) > 1e-12 {
		t.Fatalf("frame 1 result: %+v", res)
	}
}

func TestReadbackConcurrentReaders(t *testing.T) {
	m := DefaultMeter()
	m.Method = MethodLogAverage
	r := NewReadback(3, m)
	const frames = 60
	luma := gbuffer.NewLumaBuffer(16, 16)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	errs := make(chan string, 8)
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ctx.Err() == nil {
				res, ok := r.Latest()
				if !ok {
					continue
				}
				want := float64(1000+10*int(res.Frame)) / hdr.LumaScale
				if math.Abs(res.Metering.Average-want) > 1e-9 {
					select {
					case errs <- "torn metering result":
					default:
					}
					return
				}
			}
		}()
	}

	for f := uint64(0); f < frames; f++ {
		for i := range luma.Pix {
			luma.Pix[i] = int32(1000 + 10*f)
		}
		if err := r.Submit(context.Background(), f, luma); err != nil {
			t.Fatal(err)
		}
	}
	r.Wait()
	cancel()
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}

	res, _ := r.Latest()
	if res.Frame != frames-1 {
		t.Errorf("latest frame: expected %d, got %d", frames-1, res.Frame)
	}
}

func TestParseMethod(t *testing.T) {
	if m, err := ParseMethod("logavg"); err != nil || m != MethodLogAverage {
		t.Errorf("logavg: %v %v", m, err)
	}
	if m, err := ParseMethod(""); err != nil || m != MethodHistogram {
		t.Errorf("default: %v %v", m, err)
	}
	if _, err := ParseMethod("median"); err == nil {
		t.Error("expected error")
	}
}
