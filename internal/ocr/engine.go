// Package ocr implements the OCR Engine (C2): two independent text
// detectors whose results are concatenated, classified by regex, and
// greedily merged into grouped regions.
package ocr

import (
	"context"

	"github.com/MeKo-Tech/drawcheck/internal/model"
)

// Engine detects text regions in an image. Best-effort: an error from
// one detector yields an empty region list rather than aborting the
// pipeline (spec.md §4.2 "Failure semantics").
type Engine interface {
	Detect(ctx context.Context, img *model.Image) ([]model.TextRegion, error)
}

// Options configures a Detect invocation, mirroring the external RPC
// contracts in spec.md §6 items 4-5.
type Options struct {
	MinSizePx     int
	TextThreshold float64
	LowTextThresh float64
	MinConfidence float64
}

// DefaultOptions matches the spec.md §6 documented defaults.
func DefaultOptions() Options {
	return Options{MinSizePx: 3, TextThreshold: 0.7, LowTextThresh: 0.4, MinConfidence: 0.7}
}
