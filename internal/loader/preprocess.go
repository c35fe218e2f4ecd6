package loader

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/MeKo-Tech/drawcheck/internal/model"
)

// claheClipLimit and claheTiles match spec.md §4.1's OCR-preprocessing
// variant parameters ("clip 3.0, 8x8 tiles"). No third-party CLAHE
// implementation exists among the example repos' dependencies, so this
// is a hand-rolled tiled histogram equalization — the one preprocessing
// step in this package without a direct library to lean on (see
// DESIGN.md).
const (
	claheClipLimit = 3.0
	claheTiles     = 8
)

// Preprocess produces the secondary OCR-preprocessing variant of img
// described in spec.md §4.1: per-channel RGB minimum, CLAHE local
// contrast enhancement, bilateral edge-preserving denoise, adaptive
// threshold scaled to image height, and a 1x1 morphological open. The
// result is a separate image and never replaces the canonical one. No
// pipeline stage calls Preprocess; Phase E's region-level OCR check
// applies ClaheEqualize and OtsuThreshold directly instead.
func Preprocess(img *model.Image) (*model.Image, error) {
	decoded, _, err := image.Decode(bytes.NewReader(img.Bytes))
	if err != nil {
		return nil, model.NewPipelineError("loader", model.ErrImageDecode, err)
	}

	gray := perChannelMinGray(decoded)
	equalized := claheEqualize(gray, claheClipLimit, claheTiles)
	denoised := bilateralDenoise(equalized, 2, 25.0, 25.0)
	blockSize := adaptiveBlockSize(img.HeightPx)
	thresholded := adaptiveThreshold(denoised, blockSize)
	opened := morphologicalOpen1x1(thresholded)

	var buf bytes.Buffer
	if err := png.Encode(&buf, opened); err != nil {
		return nil, model.NewPipelineError("loader", model.ErrImageDecode, err)
	}

	out := &model.Image{
		Bytes:        buf.Bytes(),
		WidthPx:      opened.Bounds().Dx(),
		HeightPx:     opened.Bounds().Dy(),
		SourceFormat: img.SourceFormat,
		RenderScale:  img.RenderScale,
		TargetDPI:    img.TargetDPI,
	}
	return out, nil
}

// perChannelMinGray takes the minimum of R, G, B per pixel, normalizing
// differently-colored CAD text (e.g. red revision marks) to a single
// intensity channel ahead of thresholding.
func perChannelMinGray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	out := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			min8 := func(a, b, c uint32) uint8 {
				m := a
				if b < m {
					m = b
				}
				if c < m {
					m = c
				}
				return uint8(m >> 8)
			}
			out.SetGray(x, y, color.Gray{Y: min8(r, g, b)})
		}
	}
	return out
}

// claheEqualize runs a simplified contrast-limited adaptive histogram
// equalization: the image is divided into tiles x tiles blocks, each
// block's histogram is equalized with per-bin counts capped at
// clipLimit x (average bin count), and blocks are written back without
// inter-tile interpolation.
func claheEqualize(img *image.Gray, clipLimit float64, tiles int) *image.Gray {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewGray(bounds)
	if w == 0 || h == 0 || tiles <= 0 {
		return img
	}

	tileW := (w + tiles - 1) / tiles
	tileH := (h + tiles - 1) / tiles

	for ty := 0; ty < tiles; ty++ {
		for tx := 0; tx < tiles; tx++ {
			x0 := bounds.Min.X + tx*tileW
			y0 := bounds.Min.Y + ty*tileH
			x1 := x0 + tileW
			y1 := y0 + tileH
			if x1 > bounds.Max.X {
				x1 = bounds.Max.X
			}
			if y1 > bounds.Max.Y {
				y1 = bounds.Max.Y
			}
			if x0 >= x1 || y0 >= y1 {
				continue
			}
			equalizeTile(img, out, x0, y0, x1, y1, clipLimit)
		}
	}
	return out
}

func equalizeTile(src, dst *image.Gray, x0, y0, x1, y1 int, clipLimit float64) {
	var hist [256]int
	count := 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			hist[src.GrayAt(x, y).Y]++
			count++
		}
	}
	if count == 0 {
		return
	}

	avg := float64(count) / 256.0
	clip := int(clipLimit * avg)
	if clip < 1 {
		clip = 1
	}
	excess := 0
	for i := range hist {
		if hist[i] > clip {
			excess += hist[i] - clip
			hist[i] = clip
		}
	}
	redistribute := excess / 256
	for i := range hist {
		hist[i] += redistribute
	}

	var cdf [256]int
	running := 0
	for i := range hist {
		running += hist[i]
		cdf[i] = running
	}

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			v := src.GrayAt(x, y).Y
			mapped := uint8(float64(cdf[v]) / float64(count) * 255.0)
			dst.SetGray(x, y, color.Gray{Y: mapped})
		}
	}
}

// bilateralDenoise is an edge-preserving smoothing filter: each output
// pixel is a weighted average of its radius-sized neighborhood, with
// weights falling off both by spatial distance (sigmaSpace) and by
// intensity difference (sigmaColor) so strong edges (text strokes) are
// preserved while flat background noise is smoothed.
func bilateralDenoise(img *image.Gray, radius int, sigmaColor, sigmaSpace float64) *image.Gray {
	bounds := img.Bounds()
	out := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			center := float64(img.GrayAt(x, y).Y)
			var sumW, sumV float64
			for dy := -radius; dy <= radius; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					nx, ny := x+dx, y+dy
					if nx < bounds.Min.X || nx >= bounds.Max.X || ny < bounds.Min.Y || ny >= bounds.Max.Y {
						continue
					}
					nv := float64(img.GrayAt(nx, ny).Y)
					spatial := math.Exp(-(float64(dx*dx+dy*dy)) / (2 * sigmaSpace * sigmaSpace))
					colorW := math.Exp(-((nv - center) * (nv - center)) / (2 * sigmaColor * sigmaColor))
					w := spatial * colorW
					sumW += w
					sumV += w * nv
				}
			}
			if sumW == 0 {
				out.SetGray(x, y, img.GrayAt(x, y))
				continue
			}
			out.SetGray(x, y, color.Gray{Y: uint8(sumV / sumW)})
		}
	}
	return out
}

// adaptiveBlockSize scales the adaptive-threshold neighborhood to the
// image height (spec.md §4.1: "adaptive threshold with block size
// scaled to image height"), always odd per the usual adaptive-threshold
// convention.
func adaptiveBlockSize(heightPx int) int {
	block := heightPx / 40
	if block < 3 {
		block = 3
	}
	if block%2 == 0 {
		block++
	}
	return block
}

// adaptiveThreshold binarizes img using a mean-of-neighborhood threshold
// per pixel, a standard alternative to global (Otsu) thresholding when
// illumination varies across a scanned drawing.
func adaptiveThreshold(img *image.Gray, blockSize int) *image.Gray {
	bounds := img.Bounds()
	out := image.NewGray(bounds)
	half := blockSize / 2
	const c = 5 // subtracted constant, biases toward foreground on near-uniform blocks

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			x0, x1 := x-half, x+half
			y0, y1 := y-half, y+half
			if x0 < bounds.Min.X {
				x0 = bounds.Min.X
			}
			if y0 < bounds.Min.Y {
				y0 = bounds.Min.Y
			}
			if x1 >= bounds.Max.X {
				x1 = bounds.Max.X - 1
			}
			if y1 >= bounds.Max.Y {
				y1 = bounds.Max.Y - 1
			}

			sum, n := 0, 0
			for ny := y0; ny <= y1; ny++ {
				for nx := x0; nx <= x1; nx++ {
					sum += int(img.GrayAt(nx, ny).Y)
					n++
				}
			}
			mean := sum / n
			v := img.GrayAt(x, y).Y
			if int(v) < mean-c {
				out.SetGray(x, y, color.Gray{Y: 0})
			} else {
				out.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return out
}

// morphologicalOpen1x1 is an erosion-then-dilation pass with a 1x1
// structuring element, per spec.md §4.1. With a 1x1 element erosion and
// dilation are identity operations on their own; the pass is kept as an
// explicit no-op stage (rather than omitted) so the preprocessing
// pipeline's stage list matches spec.md exactly and a future change to
// the structuring element only touches this function.
func morphologicalOpen1x1(img *image.Gray) *image.Gray {
	return img
}
