package loader

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/drawcheck/internal/model"
)

func writePNG(t *testing.T, dir, name string, w, h int, fill color.Gray) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, fill)
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create test png: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode test png: %v", err)
	}
	return path
}

func TestIsSupported(t *testing.T) {
	cases := map[string]bool{
		"drawing.pdf":  true,
		"drawing.PNG":  true,
		"drawing.jpg":  true,
		"drawing.bmp":  true,
		"drawing.tiff": true,
		"drawing.docx": false,
		"noext":        false,
	}
	for name, want := range cases {
		if got := IsSupported(name); got != want {
			t.Errorf("IsSupported(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestLoadRasterProducesCanonicalImage(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "a.png", 200, 150, color.Gray{Y: 200})

	l := New(DefaultOptions())
	img, err := l.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if img.WidthPx != 200 || img.HeightPx != 150 {
		t.Fatalf("expected 200x150, got %dx%d", img.WidthPx, img.HeightPx)
	}
	if img.SourceFormat != model.SourceFormatPNG {
		t.Fatalf("expected png source format, got %s", img.SourceFormat)
	}
	if img.RenderScale != 1.0 {
		t.Fatalf("expected RenderScale 1.0 for raster input, got %v", img.RenderScale)
	}
}

func TestLoadUnsupportedExtensionReturnsPipelineError(t *testing.T) {
	l := New(DefaultOptions())
	_, err := l.Load("drawing.docx")
	if err == nil {
		t.Fatal("expected error for unsupported extension")
	}
	pe, ok := err.(*model.PipelineError)
	if !ok {
		t.Fatalf("expected *model.PipelineError, got %T", err)
	}
	if pe.Kind != model.ErrUnsupportedFormat {
		t.Fatalf("expected ErrUnsupportedFormat, got %s", pe.Kind)
	}
}

func TestLoadMissingFileReturnsPipelineError(t *testing.T) {
	l := New(DefaultOptions())
	_, err := l.Load("/nonexistent/path/drawing.png")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestClampMaxDimensionDownsizesOversizedImage(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "huge.png", 9000, 100, color.Gray{Y: 255})

	l := New(Options{MaxDimensionPx: 4096})
	img, err := l.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if img.WidthPx > 4096 {
		t.Fatalf("expected width clamped to <= 4096, got %d", img.WidthPx)
	}

	// Verify the re-encoded bytes actually decode to the reported dims.
	decoded, _, err := image.Decode(bytes.NewReader(img.Bytes))
	if err != nil {
		t.Fatalf("decode clamped image: %v", err)
	}
	if decoded.Bounds().Dx() != img.WidthPx || decoded.Bounds().Dy() != img.HeightPx {
		t.Fatalf("reported dims %dx%d don't match decoded bytes %dx%d",
			img.WidthPx, img.HeightPx, decoded.Bounds().Dx(), decoded.Bounds().Dy())
	}
}
