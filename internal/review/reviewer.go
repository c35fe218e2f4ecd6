// Package review implements the Adversarial Reviewer (spec.md §4.5,
// component C5): an independent three-round multi-model critique of the
// two raw drawing images, followed by deduplication and OCR-anchored
// region refinement. It never returns an error past its own boundary —
// provider failures degrade the result, they don't abort the caller.
package review

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/MeKo-Tech/drawcheck/internal/llm"
	"github.com/MeKo-Tech/drawcheck/internal/model"
)

// rulesPrompt is shared across all three rounds: section-view naming,
// the digit/letter disambiguation table, digit-count preservation, and
// worked examples of forbidden confusions, per spec.md §4.5 step 1.
const rulesPrompt = `You are comparing a master engineering drawing against a revised check drawing, looking only at the raw images (no pre-extracted data).

Rules:
- Reference locations by the printed section/view name shown on the drawing (e.g. "SECTION A-A", "DETAIL B"), not by pixel coordinates.
- Never confuse visually similar digits: 3 vs 8, 6 vs 8, 7 vs 1, 0 vs 8 vs 6. Preserve the exact digit count of every value; do not add or drop trailing zeros.
- Never confuse two different features that happen to have close values (e.g. a 22mm bore on one feature and a 23mm boss on another are NOT the same value changing).
- Report three categories: "missing_dimensions" (present in master, absent from check), "missing_tolerances" (tolerance present in master, absent in check), "modified_values" (same feature, value changed).
- Deduplicate: do not report the same (value, location) pair more than once within a category.

Return JSON: {"missing_dimensions": [...], "missing_tolerances": [...], "modified_values": [...], "summary": "..."}. Each finding: {"master_value", "check_value", "type", "location", "description", "master_region": {"x","y","w","h"}, "check_region": {"x","y","w","h"}} with regions as percentages (0-100) of image width/height.`

// Reviewer wires the two adversarial model endpoints (spec.md §4.5:
// Round 2 must be "a different model family" from Rounds 1/3).
type Reviewer struct {
	ProviderA llm.Provider // Reviewer-A: initial (round 1) and merge (round 3)
	ProviderB llm.Provider // Reviewer-B: audit (round 2)
}

// New constructs a Reviewer.
func New(providerA, providerB llm.Provider) *Reviewer {
	return &Reviewer{ProviderA: providerA, ProviderB: providerB}
}

// Review runs the three-round protocol and returns a deduplicated
// ReviewResult. It never returns an error: a round that fails degrades
// the result (round 2 falls back to a sentinel note; round 3 falls back
// to round 1's result), and if every round fails an empty ReviewResult
// with a diagnostic summary is returned, per spec.md §4.5 "Errors".
func (rv *Reviewer) Review(ctx context.Context, master, check *model.Image) *model.ReviewResult {
	round1, err1 := rv.runRound(ctx, rv.ProviderA, initialPrompt(), master, check)
	if err1 != nil {
		slog.Warn("adversarial review: round 1 (initial) failed", "error", err1)
	}

	round2Text, err2 := rv.runRoundRaw(ctx, rv.ProviderB, auditPrompt(round1Text(round1, err1)), master, check)
	if err2 != nil {
		slog.Warn("adversarial review: round 2 (audit) failed, continuing with sentinel", "error", err2)
		round2Text = "ROUND_2_AUDIT_UNAVAILABLE"
	}

	round3, err3 := rv.runRound(ctx, rv.ProviderA, mergePrompt(round1Text(round1, err1), round2Text), master, check)
	merged := round3
	if err3 != nil {
		slog.Warn("adversarial review: round 3 (merge) failed, falling back to round 1", "error", err3)
		merged = round1
	}

	if merged == nil {
		return &model.ReviewResult{Summary: "adversarial review: all rounds failed to produce parseable output"}
	}

	return Dedup(merged)
}

func initialPrompt() string {
	return rulesPrompt + "\n\nThis is round 1: produce your own independent findings from the two images."
}

func auditPrompt(round1Raw string) string {
	return rulesPrompt + "\n\nThis is round 2 (audit): you are a different reviewer auditing round 1's findings below. Produce your OWN findings from scratch by examining the images yourself; you may agree, correct false positives, or add missed items.\n\nRound 1 findings:\n" + round1Raw
}

func mergePrompt(round1Raw, round2Raw string) string {
	return rulesPrompt + `

This is round 3 (merge). You produced round 1; round 2 is an independent audit. Merge them into a final result:
(a) eliminate false positives by re-checking the check image directly,
(b) catch subtle digit-level modifications either round may have missed,
(c) never confuse nearby but distinct values on different features,
(d) deduplicate across both rounds,
(e) ensure every location references a printed section/view name,
(f) emit final regions as percentages.

Round 1:
` + round1Raw + `

Round 2 (audit):
` + round2Raw
}

// round1Payload is the shape round1Text renders: round 1's full findings
// plus its summary, so later rounds see what round 1 actually saw.
type round1Payload struct {
	Summary  string                `json:"summary"`
	Findings []model.ReviewFinding `json:"findings"`
}

// round1Text renders round 1's structured findings for inclusion in
// later prompts, so round 2's audit and round 3's merge see the same raw
// material round 1 saw, not a one-line summary of it; a failed round 1
// still gets a sentinel so round 2/3 prompts stay well formed.
func round1Text(result *model.ReviewResult, err error) string {
	if err != nil || result == nil {
		return "ROUND_1_INITIAL_UNAVAILABLE"
	}
	encoded, marshalErr := json.Marshal(round1Payload{Summary: result.Summary, Findings: result.AllFindings()})
	if marshalErr != nil {
		return result.Summary
	}
	return string(encoded)
}

func (rv *Reviewer) runRound(ctx context.Context, provider llm.Provider, prompt string, master, check *model.Image) (*model.ReviewResult, error) {
	raw, err := rv.runRoundRaw(ctx, provider, prompt, master, check)
	if err != nil {
		return nil, err
	}
	parsed, err := llm.RepairAndParse(raw)
	if err != nil {
		return nil, err
	}
	rawResult := parseRawReviewResult(parsed)
	return &model.ReviewResult{
		MissingDimensions: toFindings(model.CategoryMissingDimension, rawResult.MissingDimensions),
		MissingTolerances: toFindings(model.CategoryMissingTolerance, rawResult.MissingTolerances),
		ModifiedValues:    toFindings(model.CategoryModifiedValue, rawResult.ModifiedValues),
		Summary:           rawResult.Summary,
	}, nil
}

func (rv *Reviewer) runRoundRaw(ctx context.Context, provider llm.Provider, prompt string, master, check *model.Image) (string, error) {
	images := []llm.ImagePart{
		{Bytes: master.Bytes, MIMEType: mimeTypeFor(master.SourceFormat)},
		{Bytes: check.Bytes, MIMEType: mimeTypeFor(check.SourceFormat)},
	}
	opts := llm.Options{Temperature: 0.1, ResponseJSON: true, SafetyOff: true}
	return provider.GenerateJSON(ctx, images, prompt, opts)
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
