// Package model defines the core data entities shared across the
// comparison pipeline: images, OCR text regions, dimensions, bill of
// materials rows, GD&T callouts, machine states, comparison items, and
// adversarial review findings.
package model

// SourceFormat identifies how an Image was produced.
type SourceFormat string

const (
	SourceFormatPDF SourceFormat = "pdf"
	SourceFormatPNG SourceFormat = "png"
	SourceFormatJPEG SourceFormat = "jpeg"
	SourceFormatBMP SourceFormat = "bmp"
	SourceFormatTIFF SourceFormat = "tiff"
)

// Image is the immutable canonical raster produced by the Loader. All
// downstream coordinate math is performed against WidthPx/HeightPx; no
// stage is permitted to re-measure the image.
type Image struct {
	Bytes        []byte
	WidthPx      int
	HeightPx     int
	SourceFormat SourceFormat
	RenderScale  float64 // scale applied relative to PDF user-space units, or 1.0 for raster input

	// SmallTextDetected records whether the loader's connected-component
	// analysis triggered adaptive upscaling (see Loader.Load).
	SmallTextDetected bool
	TargetDPI         int
}

// Bounds reports the canonical pixel bounds used for all percentage to
// pixel conversions.
func (img *Image) Bounds() (width, height int) {
	if img == nil {
		return 0, 0
	}
	return img.WidthPx, img.HeightPx
}

// Point is a pixel coordinate pair.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned pixel rectangle.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether r is fully inside the image bounds.
func (r Rect) Contains(width, height int) bool {
	return r.X >= 0 && r.Y >= 0 && r.X+r.W <= float64(width) && r.Y+r.H <= float64(height)
}

// Clamp returns r adjusted to satisfy the region-bounds invariant
// (spec.md §3 invariant 6): non-negative origin, contained within
// width/height, and at least 10px on each side where the image permits it.
func (r Rect) Clamp(width, height int) Rect {
	out := r
	if out.X < 0 {
		out.X = 0
	}
	if out.Y < 0 {
		out.Y = 0
	}
	if out.X > float64(width) {
		out.X = float64(width)
	}
	if out.Y > float64(height) {
		out.Y = float64(height)
	}
	maxW := float64(width) - out.X
	maxH := float64(height) - out.Y
	if out.W > maxW {
		out.W = maxW
	}
	if out.H > maxH {
		out.H = maxH
	}
	const minSide = 10
	if out.W < minSide && maxW >= minSide {
		out.W = minSide
	}
	if out.H < minSide && maxH >= minSide {
		out.H = minSide
	}
	if out.W < 0 {
		out.W = 0
	}
	if out.H < 0 {
		out.H = 0
	}
	return out
}

// PctToPx converts a percentage coordinate (0-100) to a pixel coordinate
// against the given dimension, rounding to the nearest integer.
func PctToPx(pct float64, dim int) int {
	return int(pct/100.0*float64(dim) + 0.5)
}

// PxToPct converts a pixel coordinate to a percentage (0-100) against the
// given dimension.
func PxToPct(px int, dim int) float64 {
	if dim == 0 {
		return 0
	}
	return float64(px) / float64(dim) * 100.0
}

// ClampCoord clamps a pixel coordinate into [0, dim).
func ClampCoord(v, dim int) int {
	if v < 0 {
		return 0
	}
	if dim > 0 && v >= dim {
		return dim - 1
	}
	return v
}
