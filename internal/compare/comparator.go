package compare

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/drawcheck/internal/model"
)

// LLMMatcher is the Phase 2 fallback contract: given unmatched master and
// check dimensions, return candidate matches with a confidence score.
// Implemented against internal/llm.Provider by the pipeline layer; kept
// as an interface here so the Comparator has no RPC dependency of its
// own.
type LLMMatcher interface {
	MatchDimensions(ctx context.Context, master, check []model.Dimension) ([]LLMMatchCandidate, error)
}

// LLMMatchCandidate is one proposed pairing from the LLM fallback.
type LLMMatchCandidate struct {
	MasterIndex int
	CheckIndex  int
	Confidence  float64
	Reasoning   string
}

// llmMatchMinConfidence is the acceptance threshold for Phase 2 matches
// (spec.md §4.4 Phase 2: "Accept matches with confidence >= 0.5").
const llmMatchMinConfidence = 0.5

// Result is the Comparator's output (spec.md §4.4 Contract).
type Result struct {
	Comparisons    []model.ComparisonItem
	Summary        model.Summary
	BOMMismatches  int
}

// Compare runs the full six-phase Comparator over a master/check
// MachineState pair. llmMatcher may be nil, in which case all Phase-1
// leftovers become status=missing without an LLM fallback attempt.
func Compare(ctx context.Context, master, check model.MachineState, llmMatcher LLMMatcher) (*Result, error) {
	matches, unmatchedMaster, unmatchedCheck := DeterministicMatch(master.Dimensions, check.Dimensions)

	if llmMatcher != nil && len(unmatchedMaster) > 0 {
		candidates, err := llmMatcher.MatchDimensions(ctx,
			selectDims(master.Dimensions, unmatchedMaster), selectDims(check.Dimensions, unmatchedCheck))
		if err == nil {
			matches, unmatchedMaster, unmatchedCheck = applyLLMCandidates(
				matches, unmatchedMaster, unmatchedCheck, candidates)
		}
		// A Phase-2 RPC error is non-fatal: remaining master dims simply
		// surface as status=missing (spec.md §4.4 Phase 2).
	}

	items := make([]model.ComparisonItem, 0, len(matches)+len(unmatchedMaster))
	balloon := 1
	for _, mp := range matches {
		item := buildMatchedItem(balloon, master.Dimensions[mp.MasterIndex], check.Dimensions[mp.CheckIndex])
		items = append(items, item)
		balloon++
	}
	for _, mi := range unmatchedMaster {
		items = append(items, buildMissingItem(balloon, master.Dimensions[mi]))
		balloon++
	}

	gdtItems := DiffGDT(master.GDTCallouts, check.GDTCallouts)
	for i := range gdtItems {
		gdtItems[i].BalloonNumber = balloon
		balloon++
	}
	items = append(items, gdtItems...)

	bomItems, bomMismatches := DiffBOM(master.PartList, check.PartList, balloon)
	items = append(items, bomItems...)

	sort.Slice(items, func(i, j int) bool { return items[i].BalloonNumber < items[j].BalloonNumber })

	summary := buildSummary(items, len(gdtItems), bomMismatches, len(master.Dimensions), len(check.Dimensions))

	return &Result{Comparisons: items, Summary: summary, BOMMismatches: bomMismatches}, nil
}

func selectDims(dims []model.Dimension, idx []int) []model.Dimension {
	out := make([]model.Dimension, len(idx))
	for i, d := range idx {
		out[i] = dims[d]
	}
	return out
}

// applyLLMCandidates accepts Phase-2 matches at or above the confidence
// threshold and removes the paired indices from the unmatched sets.
func applyLLMCandidates(matches []MatchPair, unmatchedMaster, unmatchedCheck []int,
	candidates []LLMMatchCandidate,
) ([]MatchPair, []int, []int) {
	// candidates index into the *filtered* unmatched slices passed to the
	// LLM, so map them back to original dimension indices first.
	acceptedMaster := make(map[int]bool)
	acceptedCheck := make(map[int]bool)
	for _, c := range candidates {
		if c.Confidence < llmMatchMinConfidence {
			continue
		}
		if c.MasterIndex < 0 || c.MasterIndex >= len(unmatchedMaster) {
			continue
		}
		if c.CheckIndex < 0 || c.CheckIndex >= len(unmatchedCheck) {
			continue
		}
		mi := unmatchedMaster[c.MasterIndex]
		ci := unmatchedCheck[c.CheckIndex]
		if acceptedMaster[mi] || acceptedCheck[ci] {
			continue
		}
		acceptedMaster[mi] = true
		acceptedCheck[ci] = true
		matches = append(matches, MatchPair{MasterIndex: mi, CheckIndex: ci, Score: -1})
	}

	var remMaster, remCheck []int
	for _, mi := range unmatchedMaster {
		if !acceptedMaster[mi] {
			remMaster = append(remMaster, mi)
		}
	}
	for _, ci := range unmatchedCheck {
		if !acceptedCheck[ci] {
			remCheck = append(remCheck, ci)
		}
	}
	return matches, remMaster, remCheck
}

func buildMatchedItem(balloon int, master, check model.Dimension) model.ComparisonItem {
	item := model.ComparisonItem{
		BalloonNumber:        balloon,
		FeatureDescription:   string(master.FeatureType),
		MasterNominal:        master.Value,
		MasterUpperTol:       master.UpperTol,
		MasterLowerTol:       master.LowerTol,
		MasterToleranceClass: master.ToleranceClass,
		CheckActual:          check.Value,
		Zone:                 master.Zone,
		MasterCoordX:         master.CoordX,
		MasterCoordY:         master.CoordY,
		CheckCoordX:          check.CoordX,
		CheckCoordY:          check.CoordY,
	}

	if master.Value != nil && check.Value != nil {
		in := ToleranceInputs{Nominal: *master.Value, Actual: *check.Value, UpperTol: master.UpperTol, LowerTol: master.LowerTol}
		dev, status := ClassifyTolerance(in)
		item.Deviation = &dev
		item.Status = status
	} else {
		item.Status = model.StatusPending
	}

	ApplyOverlays(&item, master, check)
	return item
}

func buildMissingItem(balloon int, master model.Dimension) model.ComparisonItem {
	desc := string(master.FeatureType)
	if master.Value != nil {
		desc = formatValueDescription(master)
	}
	return model.ComparisonItem{
		BalloonNumber:        balloon,
		FeatureDescription:   desc,
		MasterNominal:        master.Value,
		MasterUpperTol:       master.UpperTol,
		MasterLowerTol:       master.LowerTol,
		MasterToleranceClass: master.ToleranceClass,
		Status:               model.StatusMissing,
		Zone:                  master.Zone,
		MasterCoordX:          master.CoordX,
		MasterCoordY:          master.CoordY,
		Notes:                 "found in master but missing from check drawing",
	}
}

func formatValueDescription(d model.Dimension) string {
	if d.Value == nil {
		return string(d.FeatureType)
	}
	return formatFloat(*d.Value) + " " + string(d.Unit) + " " + string(d.FeatureType)
}

// formatFloat renders a dimension value with at least one decimal place,
// matching engineering-drawing convention (e.g. "30.0", not "30").
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func buildSummary(items []model.ComparisonItem, gdtIssues, bomMismatches, masterCount, checkCount int) model.Summary {
	s := model.Summary{Status: "ok"}
	matchedTotal := 0
	for _, it := range items {
		if it.Zone == "BOM" || it.Zone == "GDT" {
			continue
		}
		s.Total++
		switch it.Status {
		case model.StatusPass:
			s.Pass++
			matchedTotal++
		case model.StatusFail:
			s.Fail++
			matchedTotal++
		case model.StatusWarning:
			s.Warning++
			matchedTotal++
		case model.StatusDeviation:
			s.Deviation++
			matchedTotal++
		case model.StatusMissing:
			s.Missing++
		}
	}
	s.GDTIssues = gdtIssues
	s.BOMMismatches = bomMismatches

	denom := matchedTotal
	if denom < 1 {
		denom = 1
	}
	raw := float64(s.Pass+s.Deviation) / float64(denom) * 100
	s.Score = roundTo1Decimal(raw)

	s.DimensionCountMismatch = SanityCheckExtraction(masterCount, checkCount)

	return s
}

func roundTo1Decimal(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
