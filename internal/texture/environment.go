package texture

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"deferred-renderer/internal/envmap"
	"deferred-renderer/internal/logging"
)

// Resample scales img to width×width/2, the 2:1 equirectangular layout.
// width <= 0 keeps the source width.
func Resample(img *image.NRGBA, width int) *image.NRGBA {
	b := img.Bounds()
	if width <= 0 {
		width = b.Dx()
	}
	height := max(width/2, 1)
	if b.Dx() == width && b.Dy() == height {
		return img
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Environment resolves name, resamples it to width and returns a linear
// map scaled by intensity, ready to be baked.
func Environment(r Resolver, name string, width int, intensity float64) (*envmap.Map, error) {
	img, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("texture: %q is empty", name)
	}
	src := img.Bounds()
	m := envmap.FromImage(Resample(img, width), intensity)
	logging.Logger().Info("environment image loaded",
		"name", name, "source", fmt.Sprintf("%dx%d", src.Dx(), src.Dy()),
		"size", fmt.Sprintf("%dx%d", m.Width, m.Height))
	return m, nil
}
