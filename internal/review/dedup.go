package review

import (
	"fmt"
	"strings"

	"github.com/MeKo-Tech/drawcheck/internal/metrics"
	"github.com/MeKo-Tech/drawcheck/internal/model"
)

// Dedup implements spec.md §4.5's three deduplication passes over a
// merged ReviewResult.
func Dedup(result *model.ReviewResult) *model.ReviewResult {
	missingDims := collapseByValueLocation(result.MissingDimensions)
	missingTols := collapseByValueLocation(result.MissingTolerances)
	modified := collapseByValueLocation(result.ModifiedValues)

	metrics.RecordDedupRemoved("missing_dimension", len(result.MissingDimensions)-len(missingDims))
	metrics.RecordDedupRemoved("missing_tolerance", len(result.MissingTolerances)-len(missingTols))
	metrics.RecordDedupRemoved("modified_value", len(result.ModifiedValues)-len(modified))

	beforeCrossCategory := len(missingDims)
	missingDims = removeCrossCategoryDuplicates(missingDims, modified)
	metrics.RecordDedupRemoved("missing_dimension", beforeCrossCategory-len(missingDims))

	out := &model.ReviewResult{
		MissingDimensions: missingDims,
		MissingTolerances: missingTols,
		ModifiedValues:    modified,
	}
	out.Summary = recomputeSummary(out)
	return out
}

// dedupKey is the case-folded (value, location) pair spec.md §4.5 and
// §8's dedup law key every pass on.
func dedupKey(value, location string) string {
	return strings.ToLower(value) + "\x00" + strings.ToLower(location)
}

// collapseByValueLocation implements pass 1: within one category,
// collapse findings sharing a case-folded (master_value, location) key,
// keeping the first occurrence.
func collapseByValueLocation(findings []model.ReviewFinding) []model.ReviewFinding {
	seen := make(map[string]bool, len(findings))
	out := make([]model.ReviewFinding, 0, len(findings))
	for _, f := range findings {
		key := dedupKey(f.MasterValue, f.Location)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f)
	}
	return out
}

// removeCrossCategoryDuplicates implements pass 2: a missing_dimension
// whose (value, location) also appears in modified_values (keyed by
// master_value, location) is redundant — the value didn't go missing,
// it changed.
func removeCrossCategoryDuplicates(missingDims, modified []model.ReviewFinding) []model.ReviewFinding {
	modifiedKeys := make(map[string]bool, len(modified))
	for _, m := range modified {
		modifiedKeys[dedupKey(m.MasterValue, m.Location)] = true
	}

	out := make([]model.ReviewFinding, 0, len(missingDims))
	for _, f := range missingDims {
		if modifiedKeys[dedupKey(f.MasterValue, f.Location)] {
			continue
		}
		out = append(out, f)
	}
	return out
}

// recomputeSummary implements pass 3: the summary string is derived from
// the post-dedup counts, never carried over from a pre-dedup round.
func recomputeSummary(result *model.ReviewResult) string {
	return fmt.Sprintf("%d missing dimension(s), %d missing tolerance(s), %d modified value(s)",
		len(result.MissingDimensions), len(result.MissingTolerances), len(result.ModifiedValues))
}
