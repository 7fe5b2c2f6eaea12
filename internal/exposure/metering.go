// Package exposure turns the luma attachment of completed frames into the
// exposure scalar used by the next frame's post-process pass.
package exposure

import (
	"fmt"
	"math"
	"strings"

	"deferred-renderer/internal/hdr"
)

// Method selects the metering reduction.
type Method int

const (
	// MethodHistogram averages the 60th and 90th percentile of a log2
	// luminance histogram.
	MethodHistogram Method = iota
	// MethodLogAverage takes the geometric mean of clamped luminance.
	MethodLogAverage
)

func (m Method) String() string {
	switch m {
	case MethodHistogram:
		return "histogram"
	case MethodLogAverage:
		return "logavg"
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}

func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "histogram":
		return MethodHistogram, nil
	case "logavg", "log-average", "logaverage":
		return MethodLogAverage, nil
	}
	return 0, fmt.Errorf("exposure: unknown metering method %q", s)
}

// Histogram layout: bin = (log2 L + 10)·4.6, so 128 bins cover roughly
// 2^-10 to 2^17.8.
const (
	HistogramBins = 128
	binsPerStop   = 4.6
	minLog2       = -10.0
)

// Histogram counts metered pixels per log2 luminance bin.
type Histogram struct {
	Bins  [HistogramBins]uint32
	Count uint64
}

// BinFor returns the bin index of a luminance value.
func BinFor(l float64) int {
	if l <= 0 {
		return 0
	}
	b := int((math.Log2(l) - minLog2) * binsPerStop)
	return min(max(b, 0), HistogramBins-1)
}

// BinLuminance converts a fractional bin position back to luminance.
func BinLuminance(bin float64) float64 {
	return math.Exp2(bin/binsPerStop + minLog2)
}

// Add meters one encoded luma value. Sentinels are skipped.
func (h *Histogram) Add(v int32) {
	l, ok := hdr.DecodeLuma(v)
	if !ok {
		return
	}
	h.Bins[BinFor(l)]++
	h.Count++
}

// Percentile returns the fractional bin at which the running count first
// reaches frac of all samples, interpolated through that bin.
func (h *Histogram) Percentile(frac float64) (float64, bool) {
	if h.Count == 0 {
		return 0, false
	}
	threshold := frac * float64(h.Count)
	var counted float64
	for i, b := range h.Bins {
		if b == 0 {
			continue
		}
		begin := counted
		counted += float64(b)
		if counted >= threshold {
			depth := math.Max(threshold-begin, 0) / float64(b)
			return float64(i) + depth, true
		}
	}
	return HistogramBins - 1, true
}

// Metering is the reduced result for one frame.
type Metering struct {
	Method  Method
	Average float64 // metered scene luminance
	Samples int
	// Histogram percentile positions, only for MethodHistogram.
	LowBin, HighBin float64
	Histogram       Histogram
}

// Meter configures the reduction.
type Meter struct {
	Method         Method
	LowPercentile  float64
	HighPercentile float64
	// Log-average clamps each sample to [MinLuminance, MaxLuminance].
	MinLuminance float64
	MaxLuminance float64
}

func DefaultMeter() Meter {
	return Meter{
		Method:         MethodHistogram,
		LowPercentile:  0.6,
		HighPercentile: 0.9,
		MinLuminance:   1e-4,
		MaxLuminance:   1e4,
	}
}

// Measure reduces a luma buffer. ok is false when every pixel is a
// sentinel.
func (m Meter) Measure(luma []int32) (Metering, bool) {
	switch m.Method {
	case MethodLogAverage:
		return m.logAverage(luma)
	default:
		return m.histogram(luma)
	}
}

func (m Meter) histogram(luma []int32) (Metering, bool) {
	res := Metering{Method: MethodHistogram}
	for _, v := range luma {
		res.Histogram.Add(v)
	}
	res.Samples = int(res.Histogram.Count)
	low, ok := res.Histogram.Percentile(m.LowPercentile)
	if !ok {
		return res, false
	}
	high, _ := res.Histogram.Percentile(m.HighPercentile)
	res.LowBin, res.HighBin = low, high
	res.Average = BinLuminance((low + high) / 2)
	return res, true
}

func (m Meter) logAverage(luma []int32) (Metering, bool) {
	res := Metering{Method: MethodLogAverage}
	lo, hi := m.MinLuminance, m.MaxLuminance
	if lo <= 0 {
		lo = 1e-4
	}
	if hi < lo {
		hi = lo
	}
	var sum float64
	for _, v := range luma {
		l, ok := hdr.DecodeLuma(v)
		if !ok {
			continue
		}
		sum += math.Log(math.Min(math.Max(l, lo), hi))
		res.Samples++
	}
	if res.Samples == 0 {
		return res, false
	}
	res.Average = math.Exp(sum / float64(res.Samples))
	return res, true
}
