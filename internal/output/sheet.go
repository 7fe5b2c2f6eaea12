package output

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gg"
)

// SheetGap is the border in pixels around and between contact sheet tiles.
const SheetGap = 4

var sheetBackground = gg.RGBA{R: 0.08, G: 0.08, B: 0.08, A: 1}

// ContactSheet tiles images row-major into a grid with cols columns. Tiles
// are placed at the size of the first image; views are identified by
// position (same order as the input).
func ContactSheet(tiles []image.Image, cols int) (image.Image, error) {
	if len(tiles) == 0 {
		return nil, errors.New("output: contact sheet needs at least one tile")
	}
	if cols <= 0 {
		cols = len(tiles)
	}
	cols = min(cols, len(tiles))
	rows := (len(tiles) + cols - 1) / cols

	tb := tiles[0].Bounds()
	tw, th := tb.Dx(), tb.Dy()
	w := cols*tw + (cols+1)*SheetGap
	h := rows*th + (rows+1)*SheetGap

	dc := gg.NewContext(w, h)
	defer dc.Close()
	dc.ClearWithColor(sheetBackground)

	for i, tile := range tiles {
		x := SheetGap + (i%cols)*(tw+SheetGap)
		y := SheetGap + (i/cols)*(th+SheetGap)
		dc.DrawImage(gg.ImageBufFromImage(tile), float64(x), float64(y))
	}
	if err := dc.FlushGPU(); err != nil {
		return nil, fmt.Errorf("output: contact sheet: %w", err)
	}
	return dc.Image(), nil
}
