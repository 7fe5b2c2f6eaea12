package texture

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ftrvxmtrx/tga"
)

func writePNG(t *testing.T, path string, w, h int, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestLoadImageFormats(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i], src.Pix[i+1], src.Pix[i+2], src.Pix[i+3] = 200, 100, 50, 255
	}
	encoders := map[string]func(io.Writer, image.Image) error{
		"env.png": png.Encode,
		"env.tga": tga.Encode,
		"env.jpg": func(w io.Writer, m image.Image) error { return jpeg.Encode(w, m, &jpeg.Options{Quality: 95}) },
	}
	dir := t.TempDir()
	for name, encode := range encoders {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			f, err := os.Create(path)
			if err != nil {
				t.Fatal(err)
			}
			if err := encode(f, src); err != nil {
				t.Fatal(err)
			}
			f.Close()

			img, err := LoadImage(path)
			if err != nil {
				t.Fatalf("LoadImage: %v", err)
			}
			if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 8 {
				t.Fatalf("size: expected 8x8, got %v", b)
			}
			for c, want := range []uint8{200, 100, 50, 255} {
				if d := int(img.Pix[c]) - int(want); d < -4 || d > 4 {
					t.Errorf("channel %d: expected ~%d, got %d", c, want, img.Pix[c])
				}
			}
		})
	}
}

func TestLoadImageRejectsUnknownExtension(t *testing.T) {
	if _, err := LoadImage("sky.hdr"); err == nil {
		t.Fatal("expected error for .hdr")
	}
}

func TestIndexAndCache(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "nested", "Studio.png"), 8, 4, color.NRGBA{255, 0, 0, 255})
	// not an image format we decode
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)

	idx := BuildIndex(dir)
	if idx.Len() != 1 {
		t.Fatalf("Len: expected 1, got %d", idx.Len())
	}
	if _, ok := idx.ResolvePath(`envs\studio.jpg`); !ok {
		t.Fatal("ResolvePath should ignore prefix, case and extension")
	}

	c := NewCache(idx)
	a, err := c.Resolve("studio")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	b, _ := c.Resolve("STUDIO")
	if a != b {
		t.Error("second Resolve should return the cached image")
	}
	if a.Pix[0] != 255 || a.Pix[1] != 0 {
		t.Errorf("unexpected pixel %v", a.Pix[:4])
	}
	if _, err := c.Resolve("missing"); err == nil {
		t.Error("expected error for unknown name")
	}
}

func TestBuildIndexMissingDir(t *testing.T) {
	if n := BuildIndex(filepath.Join(t.TempDir(), "nope")).Len(); n != 0 {
		t.Errorf("expected empty index, got %d", n)
	}
}

func TestEnvironment(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "white.png"), 16, 16, color.NRGBA{255, 255, 255, 255})

	m, err := Environment(NewCache(BuildIndex(dir)), "white", 8, 2)
	if err != nil {
		t.Fatalf("Environment: %v", err)
	}
	if m.Width != 8 || m.Height != 4 {
		t.Fatalf("size: expected 8x4, got %dx%d", m.Width, m.Height)
	}
	for i, v := range m.Pix {
		if v < 1.99 || v > 2.01 {
			t.Fatalf("texel %d: expected 2, got %v", i, v)
		}
	}
}

func TestResampleKeepsMatchingSize(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	if Resample(img, 4) != img {
		t.Error("Resample should return the input when the size already matches")
	}
	if got := Resample(img, 0).Bounds(); got.Dx() != 4 || got.Dy() != 2 {
		t.Errorf("width 0 keeps source width, got %v", got)
	}
}
