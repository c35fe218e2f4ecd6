package review

import (
	"testing"

	"github.com/MeKo-Tech/drawcheck/internal/model"
)

func TestDedupCollapsesDuplicatesWithinCategory(t *testing.T) {
	result := &model.ReviewResult{
		MissingDimensions: []model.ReviewFinding{
			{MasterValue: "25.0", Location: "SECTION A-A"},
			{MasterValue: "25.0", Location: "section a-a"}, // case-folded duplicate
			{MasterValue: "30.0", Location: "SECTION B-B"},
		},
	}
	out := Dedup(result)
	if len(out.MissingDimensions) != 2 {
		t.Fatalf("expected 2 deduplicated findings, got %d: %+v", len(out.MissingDimensions), out.MissingDimensions)
	}
}

func TestDedupRemovesCrossCategoryDuplicates(t *testing.T) {
	result := &model.ReviewResult{
		MissingDimensions: []model.ReviewFinding{
			{MasterValue: "25.0", Location: "SECTION A-A"},
		},
		ModifiedValues: []model.ReviewFinding{
			{MasterValue: "25.0", Location: "SECTION A-A", CheckValue: "26.0"},
		},
	}
	out := Dedup(result)
	if len(out.MissingDimensions) != 0 {
		t.Errorf("expected missing_dimension removed when also present as modified_value, got %+v", out.MissingDimensions)
	}
	if len(out.ModifiedValues) != 1 {
		t.Errorf("expected modified_values untouched, got %+v", out.ModifiedValues)
	}
}

func TestDedupRecomputesSummaryFromPostDedupCounts(t *testing.T) {
	result := &model.ReviewResult{
		MissingDimensions: []model.ReviewFinding{
			{MasterValue: "1", Location: "A"},
			{MasterValue: "1", Location: "A"},
		},
		Summary: "stale summary from a prior round",
	}
	out := Dedup(result)
	if out.Summary == result.Summary {
		t.Error("expected summary to be recomputed, not carried over")
	}
}
