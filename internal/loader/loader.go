// Package loader turns an input file (PDF or raster image) into the
// canonical model.Image every downstream stage operates against: a
// decoded, format-normalized, DPI-adaptive raster plus its pixel bounds.
// Grounded in pogo's internal/utils image loading (format registration,
// ImageProcessingError) and internal/pdf (pdfcpu-based extraction),
// generalized from OCR preprocessing to the canonical-image contract of
// spec.md §4.1.
package loader

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/MeKo-Tech/drawcheck/internal/model"
)

// SupportedExtensions lists file extensions Load accepts.
var SupportedExtensions = []string{".pdf", ".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff"}

// IsSupported reports whether path has a recognized extension.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// Options controls the loader's adaptive-upscaling and PDF-rendering
// behavior (spec.md §4.1).
type Options struct {
	// MaxDimensionPx caps the canonical image's longer side after any
	// adaptive upscaling (spec.md §4.1: "clamp max dimension to 4096").
	MaxDimensionPx int
}

// DefaultOptions returns spec.md's §4.1 defaults.
func DefaultOptions() Options {
	return Options{MaxDimensionPx: 4096}
}

// Loader produces canonical model.Image values from PDF or raster input
// files.
type Loader struct {
	opts Options
}

// New constructs a Loader with the given options.
func New(opts Options) *Loader {
	if opts.MaxDimensionPx <= 0 {
		opts.MaxDimensionPx = DefaultOptions().MaxDimensionPx
	}
	return &Loader{opts: opts}
}

// Load decodes path into a canonical model.Image: PDFs are rendered via
// the pdfcpu-backed path (pdf.go), rasters are decoded directly. Either
// way the result is run through the small-text detector and adaptive
// upscaler (upscale.go) before being returned.
func (l *Loader) Load(path string) (*model.Image, error) {
	if !IsSupported(path) {
		return nil, model.NewPipelineError("loader", model.ErrUnsupportedFormat,
			fmt.Errorf("unsupported extension: %s", filepath.Ext(path)))
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".pdf" {
		return l.loadPDF(path)
	}
	return l.loadRaster(path)
}

func (l *Loader) loadRaster(path string) (*model.Image, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: user-provided drawing path is expected
	if err != nil {
		return nil, model.NewPipelineError("loader", model.ErrImageDecode, err)
	}
	decoded, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, model.NewPipelineError("loader", model.ErrImageDecode, err)
	}

	img := &model.Image{
		Bytes:        data,
		WidthPx:      decoded.Bounds().Dx(),
		HeightPx:     decoded.Bounds().Dy(),
		SourceFormat: sourceFormatFor(format),
		RenderScale:  1.0,
	}
	return l.applyAdaptiveUpscale(img, decoded)
}

func sourceFormatFor(format string) model.SourceFormat {
	switch format {
	case "png":
		return model.SourceFormatPNG
	case "jpeg":
		return model.SourceFormatJPEG
	case "bmp":
		return model.SourceFormatBMP
	case "tiff":
		return model.SourceFormatTIFF
	default:
		return model.SourceFormatPNG
	}
}
