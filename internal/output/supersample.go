package output

import (
	"image"

	"golang.org/x/image/draw"
)

// Downsample filters a supersampled frame down to width×height with
// CatmullRom. Frames from ToNRGBA are opaque, so color is scaled directly
// without an alpha round trip.
func Downsample(img *image.NRGBA, width, height int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() <= width && b.Dy() <= height {
		return img
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
