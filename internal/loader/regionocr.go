package loader

import (
	"image"
	"image/color"
)

// ClaheEqualize exposes the tiled contrast-limited histogram
// equalization used by Preprocess to other stages that need the same
// local-contrast treatment without the full OCR-preprocessing variant —
// specifically Ingestor Phase E's region-OCR crop handling (spec.md
// §4.3 Phase E: "apply CLAHE + Otsu threshold").
func ClaheEqualize(img *image.Gray, clipLimit float64, tiles int) *image.Gray {
	return claheEqualize(img, clipLimit, tiles)
}

// OtsuThreshold binarizes img by Otsu's method: it picks the gray-level
// threshold that minimizes intra-class variance between foreground and
// background pixel populations, the global-threshold counterpart to
// Preprocess's local adaptiveThreshold.
func OtsuThreshold(img *image.Gray) *image.Gray {
	var hist [256]int
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			hist[img.GrayAt(x, y).Y]++
		}
	}

	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return img
	}

	var sumAll float64
	for i, c := range hist {
		sumAll += float64(i * c)
	}

	var sumB, wB float64
	var bestThresh int
	var bestVar float64

	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t * hist[t])
		mB := sumB / wB
		mF := (sumAll - sumB) / wF
		betweenVar := wB * wF * (mB - mF) * (mB - mF)
		if betweenVar > bestVar {
			bestVar = betweenVar
			bestThresh = t
		}
	}

	out := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if int(img.GrayAt(x, y).Y) > bestThresh {
				out.SetGray(x, y, color.Gray{Y: 255})
			} else {
				out.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}
	return out
}
