package ingest

import (
	"context"
	"time"

	"github.com/MeKo-Tech/drawcheck/internal/llm"
	"github.com/MeKo-Tech/drawcheck/internal/model"
)

// visionTemperature and visionAttemptTimeout match spec.md §4.3 Phase A:
// "Temperature 0.1 ... A request timeout of 600s applies to each
// attempt."
const (
	visionTemperature    = 0.1
	visionAttemptTimeout = 600 * time.Second
)

// extractionPrompt is the JSON-extraction instruction sent to the vision
// LLM. It demands the key set spec.md §4.3 Phase A names and spells out
// the digit-level disambiguation and letter-preservation rules the
// response is expected to honor; normalization is re-applied
// deterministically downstream in Phases B/C regardless of how well the
// model followed these instructions.
const extractionPrompt = `You are extracting a structured machine state from an engineering drawing image.

Return JSON with exactly these top-level keys: "dimensions", "part_list", "zones", "gdt_callouts", "title_block", "raw_text".

Each entry in "dimensions" must have: value, unit ("mm" or "in"), coordinates (object with "x" and "y" as percentages 0-100 of image width/height), feature_type (one of linear, diameter, radius, angular, thread, chamfer, depth, thickness), tolerance_class (string or null), upper_tol, lower_tol, item_number (string or null), zone (string or null).

Each entry in "part_list" must have: item_number, description, material, quantity, weight, unit.
Each entry in "gdt_callouts" must have: symbol, value, datum, coordinates {x, y} as percentages.
Each entry in "zones" must have: name.
"title_block" is a flat object of key/value strings found in the drawing's title block.
"raw_text" is the full OCR-equivalent text you can read from the drawing, concatenated.

Digit-level disambiguation: distinguish curved digits from angular ones (3 vs 8, 6 vs 8), flat-top vs curved-top digits (7 vs 1), and loop counts (8 has two loops, 0/6/9 have one). Preserve letters exactly as printed in tolerance classes, datums, materials, and descriptions — do not "correct" them into digits.`

// VisionExtract calls the vision LLM with image and extractionPrompt,
// retrying on rate-limit errors per spec.md §4.3 Phase A's retry policy,
// then repairs and parses the JSON response into a rawExtraction.
// Non-rate-limit and post-repair-unparseable failures are fatal for this
// drawing (model.ErrVisionRPCExhausted / model.ErrResponseUnparseable).
func VisionExtract(ctx context.Context, provider llm.Provider, img *model.Image) (*rawExtraction, error) {
	opts := llm.Options{
		Temperature:    visionTemperature,
		ResponseJSON:   true,
		SafetyOff:      true,
		TimeoutSeconds: int(visionAttemptTimeout.Seconds()),
	}
	images := []llm.ImagePart{{Bytes: img.Bytes, MIMEType: mimeTypeFor(img.SourceFormat)}}

	raw, err := llm.GenerateJSONWithRetry(ctx, provider, images, extractionPrompt, opts)
	if err != nil {
		return nil, errVisionExhausted(err)
	}

	parsed, err := llm.RepairAndParse(raw)
	if err != nil {
		return nil, errResponseUnparseable(err)
	}

	return parseRawExtraction(parsed), nil
}

func mimeTypeFor(f model.SourceFormat) string {
	switch f {
	case model.SourceFormatJPEG:
		return "image/jpeg"
	case model.SourceFormatBMP:
		return "image/bmp"
	case model.SourceFormatTIFF:
		return "image/tiff"
	default:
		return "image/png"
	}
}
