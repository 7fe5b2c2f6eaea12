package output

import (
	"fmt"
	"image"

	"github.com/gogpu/gg"

	"deferred-renderer/internal/exposure"
)

// HistogramChart draws the luma histogram of a metering result: one bar
// per bin scaled to the fullest bin, with the low and high percentile
// positions as vertical markers.
func HistogramChart(m exposure.Metering, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("output: histogram chart %dx%d", width, height)
	}
	dc := gg.NewContext(width, height)
	defer dc.Close()
	dc.ClearWithColor(gg.RGB(0.1, 0.1, 0.12))

	var peak uint32
	for _, b := range m.Histogram.Bins {
		peak = max(peak, b)
	}
	binW := float64(width) / exposure.HistogramBins

	if peak > 0 {
		dc.SetRGB(0.75, 0.75, 0.8)
		for i, b := range m.Histogram.Bins {
			if b == 0 {
				continue
			}
			bh := float64(b) / float64(peak) * float64(height-2)
			dc.DrawRectangle(float64(i)*binW, float64(height)-bh, binW, bh)
		}
		if err := dc.Fill(); err != nil {
			return nil, fmt.Errorf("output: histogram bars: %w", err)
		}
	}

	if m.Method == exposure.MethodHistogram && m.Samples > 0 {
		dc.SetLineWidth(1.5)
		for _, marker := range []struct {
			bin     float64
			r, g, b float64
		}{
			{m.LowBin, 0.2, 0.8, 0.3},
			{m.HighBin, 0.9, 0.3, 0.2},
		} {
			x := marker.bin * binW
			dc.SetRGB(marker.r, marker.g, marker.b)
			dc.DrawLine(x, 0, x, float64(height))
			if err := dc.Stroke(); err != nil {
				return nil, fmt.Errorf("output: histogram marker: %w", err)
			}
		}
	}

	if err := dc.FlushGPU(); err != nil {
		return nil, fmt.Errorf("output: histogram chart: %w", err)
	}
	return dc.Image(), nil
}
