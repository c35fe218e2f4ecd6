package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/MeKo-Tech/drawcheck/internal/llm"
	"github.com/MeKo-Tech/drawcheck/internal/loader"
	"github.com/MeKo-Tech/drawcheck/internal/model"
	"github.com/MeKo-Tech/drawcheck/internal/ocr"
)

// inkFraction / spiral-search parameters, spec.md §4.3 Phase E
// "Coordinate rescue": "non-white fraction >= 15% within a radius of 10
// sampling at stride 3 ... search outward in a discrete spiral (radii
// 10,20,...,100; 8 directions each)".
const (
	inkSampleRadius    = 10
	inkSampleStride    = 3
	inkFractionFloor   = 0.15
	spiralMaxRadius    = 100
	spiralRadiusStep   = 10
	spiralDirections   = 8
	regionOCRCropHalf  = 80
	regionOCRUpscale   = 4
	confirmDiffFloor   = 0.01
	correctionDiffCeil = 1.5
)

// RescueCoordinates implements spec.md §4.3 Phase E's "Coordinate
// rescue": for each dimension, verify ink density around its pixel
// coordinate; if too sparse, spiral-search for the nearest inked region
// and relocate, flagging FlagCoordinateAdjusted.
func RescueCoordinates(dims []model.Dimension, img image.Image) {
	bounds := img.Bounds()
	for i := range dims {
		d := &dims[i]
		x, y := d.CoordX, d.CoordY
		if inkFraction(img, x, y, inkSampleRadius, inkSampleStride) >= inkFractionFloor {
			continue
		}
		if nx, ny, found := spiralSearchInk(img, x, y, bounds); found {
			d.CoordX = nx
			d.CoordY = ny
			d.GridRef = model.GridReference(nx, ny, bounds.Dx(), bounds.Dy())
			d.SetFlag(model.FlagCoordinateAdjusted)
		}
	}
}

// inkFraction samples a radius-r neighborhood around (cx, cy) at the
// given stride and returns the fraction of samples that are non-white
// (i.e. drawing ink rather than blank background).
func inkFraction(img image.Image, cx, cy, r, stride int) float64 {
	bounds := img.Bounds()
	total, ink := 0, 0
	for dy := -r; dy <= r; dy += stride {
		for dx := -r; dx <= r; dx += stride {
			x, y := cx+dx, cy+dy
			if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
				continue
			}
			total++
			if !isWhitePixel(img.At(x, y)) {
				ink++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(ink) / float64(total)
}

func isWhitePixel(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	const whiteFloor = 0xF000
	return r >= whiteFloor && g >= whiteFloor && b >= whiteFloor
}

// spiralSearchInk scans 8 directions at increasing radii (10, 20, ...,
// 100) for the first point whose local neighborhood clears the ink
// floor, per spec.md §4.3 Phase E.
func spiralSearchInk(img image.Image, cx, cy int, bounds image.Rectangle) (int, int, bool) {
	for radius := spiralRadiusStep; radius <= spiralMaxRadius; radius += spiralRadiusStep {
		for dir := 0; dir < spiralDirections; dir++ {
			angle := 2 * math.Pi * float64(dir) / spiralDirections
			nx := cx + int(float64(radius)*math.Cos(angle))
			ny := cy + int(float64(radius)*math.Sin(angle))
			if nx < bounds.Min.X || nx >= bounds.Max.X || ny < bounds.Min.Y || ny >= bounds.Max.Y {
				continue
			}
			if inkFraction(img, nx, ny, inkSampleRadius, inkSampleStride) >= inkFractionFloor {
				return nx, ny, true
			}
		}
	}
	return 0, 0, false
}

// numericRepresentations produces the representations spec.md §8's
// OCR cross-check tests against: "12", "12.0", "12.00" for a value of
// 12.
func numericRepresentations(v float64) []string {
	return []string{
		strconv.FormatFloat(v, 'f', -1, 64),
		strconv.FormatFloat(v, 'f', 1, 64),
		strconv.FormatFloat(v, 'f', 2, 64),
	}
}

// CrossCheckWithOCR implements spec.md §4.3 Phase E's "Full-image OCR
// cross-check": a dimension is verified if any numeric representation of
// its value appears among the OCR engine's detected text. Unverified
// dimensions are penalized and flagged ocr_verified=false (recorded as
// the absence of FlagOCRVerified; see model.Dimension.HasFlag).
func CrossCheckWithOCR(dims []model.Dimension, regions []model.TextRegion) {
	tokens := make(map[string]bool, len(regions))
	for _, r := range regions {
		tokens[strings.TrimSpace(r.Text)] = true
	}

	for i := range dims {
		d := &dims[i]
		if d.Value == nil {
			continue
		}
		verified := false
		for _, rep := range numericRepresentations(*d.Value) {
			if tokens[rep] {
				verified = true
				break
			}
		}
		if verified {
			d.SetFlag(model.FlagOCRVerified)
		} else {
			d.ApplyConfidencePenalty(0.6)
		}
	}
}

// digitConfusionPairs is the digit-confusion correction table spec.md
// §4.3 Phase E names for region-OCR mismatches in the 0.01 < |diff| <=
// 1.5 band: 3<->4, 3<->8, 6<->8, 1<->7. Each pair is symmetric, which a
// single-valued map can't express (3 confuses with both 4 and 8), so
// it's a flat list of unordered pairs instead.
var digitConfusionPairs = [][2]rune{
	{'3', '4'},
	{'3', '8'},
	{'6', '8'},
	{'1', '7'},
}

func isConfusedDigitPair(a, b rune) bool {
	for _, p := range digitConfusionPairs {
		if (p[0] == a && p[1] == b) || (p[0] == b && p[1] == a) {
			return true
		}
	}
	return false
}

// RegionOCRVerify implements spec.md §4.3 Phase E's "Region-OCR" check:
// crop +-80px around each dimension's coordinate from the raw grayscale
// image, upscale 4x, apply CLAHE + Otsu threshold, and run digit-mode
// OCR. Close matches confirm the value (confidence boosted); a
// single-digit-confusion mismatch at lower confidence triggers a
// correction, preserving the original under RegionOCROriginal.
func RegionOCRVerify(dims []model.Dimension, img image.Image) {
	for i := range dims {
		d := &dims[i]
		if d.Value == nil {
			continue
		}
		crop := cropAround(img, d.CoordX, d.CoordY, regionOCRCropHalf)
		if crop == nil {
			continue
		}

		upscaled := imaging.Resize(crop, crop.Bounds().Dx()*regionOCRUpscale, crop.Bounds().Dy()*regionOCRUpscale, imaging.Lanczos)
		gray := toGray(upscaled)
		equalized := loader.ClaheEqualize(gray, 3.0, 8)
		thresholded := loader.OtsuThreshold(equalized)

		text, _, err := ocr.RecognizeDigitLine(thresholded)
		if err != nil {
			slog.Warn("region ocr verify failed", "error", err)
			continue
		}
		matched, ok := bestNumericMatch(text)
		if !ok {
			continue
		}

		diff := math.Abs(matched - *d.Value)
		switch {
		case diff < confirmDiffFloor:
			d.ApplyConfidencePenalty(1.1)
		case diff <= correctionDiffCeil && d.Confidence < 0.85 && isDigitConfusion(*d.Value, matched):
			original := *d.Value
			d.RegionOCROriginal = &original
			v := matched
			d.Value = &v
			d.Confidence = 0.7
			d.SetFlag(model.FlagRegionOCRCorrected)
		}
	}
}

func cropAround(img image.Image, cx, cy, half int) image.Image {
	bounds := img.Bounds()
	r := image.Rect(cx-half, cy-half, cx+half, cy+half).Intersect(bounds)
	if r.Empty() {
		return nil
	}
	return imaging.Crop(img, r)
}

func toGray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, img.At(x, y))
		}
	}
	return gray
}

// bestNumericMatch parses the OCR engine's output, with surrounding
// whitespace trimmed, as a single float; any other stray character makes
// the parse fail.
func bestNumericMatch(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// isDigitConfusion reports whether original and corrected differ by
// exactly one digit substitution drawn from digitConfusionPairs, per
// spec.md §4.3 Phase E's worked examples (3<->4, 3<->8, 6<->8, 1<->7).
func isDigitConfusion(original, corrected float64) bool {
	a := strconv.FormatFloat(original, 'f', -1, 64)
	b := strconv.FormatFloat(corrected, 'f', -1, 64)
	if len(a) != len(b) {
		return false
	}
	diffs := 0
	for i := range a {
		if a[i] == b[i] {
			continue
		}
		diffs++
		if diffs > 1 {
			return false
		}
		if !isConfusedDigitPair(rune(a[i]), rune(b[i])) {
			return false
		}
	}
	return diffs == 1
}

// suspectBatch describes one dimension flagged for focused LLM
// re-verification, matching the {value, feature_type, approximate
// location, flags} shape spec.md §4.3 Phase E sends to the reasoning
// LLM.
type suspectBatch struct {
	Index       int     `json:"index"`
	Value       *float64 `json:"value"`
	FeatureType string  `json:"feature_type"`
	GridRef     string  `json:"grid_ref"`
	Flags       []string `json:"flags"`
}

type suspectCorrection struct {
	Index          int     `json:"index"`
	OriginalValue  *float64 `json:"original_value"`
	CorrectedValue *float64 `json:"corrected_value"`
	Confidence     float64 `json:"confidence"`
	CorrectionNote string  `json:"correction_note"`
}

const reverifyPrompt = `You are re-verifying suspect dimension readings from an engineering drawing. For each suspect, examine the image near its grid reference and return corrections as a JSON array of {"index", "original_value", "corrected_value", "confidence", "correction_note"}. Use correction_note "confirmed" when the original value is correct.`

// FocusedLLMReverify implements spec.md §4.3 Phase E's "Focused LLM
// re-verification": dimensions still flagged validation_failed,
// ocr_verified=false, or confidence < 0.7 are resubmitted as a batch.
// Non-fatal on LLM error (model.ErrReverifyRPCFailed is logged, not
// returned, matching the per-phase partial-failure policy of spec.md
// §4.3 "Errors surfaced by C3").
func FocusedLLMReverify(ctx context.Context, provider llm.Provider, img *model.Image, dims []model.Dimension) {
	suspects := collectSuspects(dims)
	if len(suspects) == 0 {
		return
	}

	payload, err := json.Marshal(suspects)
	if err != nil {
		slog.Warn("reverify: marshal suspects failed", "error", err)
		return
	}
	prompt := fmt.Sprintf("%s\n\nSuspects: %s", reverifyPrompt, string(payload))

	images := []llm.ImagePart{{Bytes: img.Bytes, MIMEType: mimeTypeFor(img.SourceFormat)}}
	opts := llm.Options{Temperature: 0, ResponseJSON: true, SafetyOff: true}

	raw, err := provider.GenerateJSON(ctx, images, prompt, opts)
	if err != nil {
		slog.Warn("reverify rpc failed", "error", model.NewPipelineError("ingestor", model.ErrReverifyRPCFailed, err))
		return
	}

	var corrections []suspectCorrection
	if err := json.Unmarshal([]byte(raw), &corrections); err != nil {
		if repaired, rerr := llm.RepairAndParse(raw); rerr == nil {
			if arr, ok := repaired["corrections"].([]any); ok {
				corrections = decodeCorrections(arr)
			}
		} else {
			slog.Warn("reverify: unparseable response", "error", rerr)
			return
		}
	}

	applyCorrections(dims, corrections)
}

func collectSuspects(dims []model.Dimension) []suspectBatch {
	var out []suspectBatch
	for i, d := range dims {
		if !d.HasFlag(model.FlagValidationFailed) && d.HasFlag(model.FlagOCRVerified) && d.Confidence >= 0.7 {
			continue
		}
		var flags []string
		for f, set := range d.Flags {
			if set {
				flags = append(flags, string(f))
			}
		}
		out = append(out, suspectBatch{
			Index: i, Value: d.Value, FeatureType: string(d.FeatureType),
			GridRef: d.GridRef, Flags: flags,
		})
	}
	return out
}

func decodeCorrections(arr []any) []suspectCorrection {
	var out []suspectCorrection
	for _, a := range arr {
		m, ok := a.(map[string]any)
		if !ok {
			continue
		}
		c := suspectCorrection{
			CorrectionNote: asString(m["correction_note"]),
			OriginalValue:  asFloatPtr(m["original_value"]),
			CorrectedValue: asFloatPtr(m["corrected_value"]),
		}
		if idx, ok := asFloat(m["index"]); ok {
			c.Index = int(idx)
		}
		if conf, ok := asFloat(m["confidence"]); ok {
			c.Confidence = conf
		}
		out = append(out, c)
	}
	return out
}

func applyCorrections(dims []model.Dimension, corrections []suspectCorrection) {
	for _, c := range corrections {
		if c.Index < 0 || c.Index >= len(dims) {
			continue
		}
		d := &dims[c.Index]
		d.SetFlag(model.FlagReverified)
		if c.CorrectionNote == "confirmed" {
			if c.Confidence > d.Confidence {
				d.Confidence = c.Confidence
			}
			continue
		}
		if c.CorrectedValue != nil {
			d.Value = c.CorrectedValue
			if c.Confidence > 0 {
				d.Confidence = c.Confidence
			}
		}
	}
}

// ApplySmallTextPenalty implements spec.md §4.3 Phase E's "Small-text
// global penalty": when the loader flagged the source image as having
// small text, every dimension's confidence is multiplied by 0.9.
func ApplySmallTextPenalty(dims []model.Dimension, smallTextDetected bool) {
	if !smallTextDetected {
		return
	}
	for i := range dims {
		dims[i].ApplyConfidencePenalty(0.9)
		dims[i].SetFlag(model.FlagSmallTextDetected)
	}
}
