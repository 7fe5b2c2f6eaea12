// Package output converts linear float attachments into 8-bit images and
// writes them to disk.
package output

import (
	"image"
	"math"

	"deferred-renderer/internal/envmap"
	"deferred-renderer/internal/gbuffer"
	"deferred-renderer/internal/hdr"
)

// ToNRGBA encodes a linear output attachment for display. Exposure is
// already applied by the post-process pass; aces adds the filmic curve
// before the sRGB transfer.
func ToNRGBA(buf *gbuffer.Vec3Buffer, aces bool) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, buf.Width, buf.Height))
	for i := 0; i < buf.Width*buf.Height; i++ {
		c := buf.At(i)
		o := i * 4
		for ch := 0; ch < 3; ch++ {
			v := c[ch]
			if aces {
				v = hdr.ACESTonemap(v)
			}
			img.Pix[o+ch] = hdr.Quantize(hdr.LinearToSRGB(v))
		}
		img.Pix[o+3] = 255
	}
	return img
}

// MapToNRGBA previews an environment map, scaled by exposure and tonemapped.
func MapToNRGBA(m *envmap.Map, exposure float64) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			c := m.At(x, y).Scale(exposure)
			o := img.PixOffset(x, y)
			for ch := 0; ch < 3; ch++ {
				img.Pix[o+ch] = hdr.Quantize(hdr.LinearToSRGB(hdr.ACESTonemap(c[ch])))
			}
			img.Pix[o+3] = 255
		}
	}
	return img
}

// LUTToNRGBA writes scale to red and bias to green, NdotV along x and
// roughness down y.
func LUTToNRGBA(l *envmap.LUT) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, l.Size, l.Size))
	for y := 0; y < l.Size; y++ {
		for x := 0; x < l.Size; x++ {
			i := (y*l.Size + x) * 2
			o := img.PixOffset(x, y)
			img.Pix[o] = hdr.Quantize(float64(l.Pix[i]))
			img.Pix[o+1] = hdr.Quantize(float64(l.Pix[i+1]))
			img.Pix[o+3] = 255
		}
	}
	return img
}

// LumaToNRGBA shows the integer luma attachment as grey levels relative
// to peak; sentinel pixels are magenta.
func LumaToNRGBA(buf *gbuffer.LumaBuffer, peak float64) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, buf.Width, buf.Height))
	if peak <= 0 {
		peak = 1
	}
	for i, v := range buf.Pix {
		o := i * 4
		l, ok := hdr.DecodeLuma(v)
		if !ok {
			img.Pix[o], img.Pix[o+1], img.Pix[o+2], img.Pix[o+3] = 255, 0, 255, 255
			continue
		}
		g := hdr.Quantize(math.Min(l/peak, 1))
		img.Pix[o], img.Pix[o+1], img.Pix[o+2], img.Pix[o+3] = g, g, g, 255
	}
	return img
}
