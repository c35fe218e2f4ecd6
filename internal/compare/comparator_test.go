package compare

import (
	"context"
	"testing"

	"github.com/MeKo-Tech/drawcheck/internal/model"
)

func TestCompareS2ToleranceDeviation(t *testing.T) {
	master := model.MachineState{Dimensions: []model.Dimension{
		{FeatureType: model.FeatureDiameter, Value: f(25.0), CoordX: 340, CoordY: 550, ToleranceClass: "H7"},
	}}
	check := model.MachineState{Dimensions: []model.Dimension{
		{FeatureType: model.FeatureDiameter, Value: f(26.0), CoordX: 345, CoordY: 555, ToleranceClass: "H7"},
	}}

	result, err := Compare(context.Background(), master, check, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Comparisons) != 1 {
		t.Fatalf("got %d comparisons, want 1", len(result.Comparisons))
	}
	item := result.Comparisons[0]
	if item.Status != model.StatusWarning {
		t.Fatalf("got status %s, want warning", item.Status)
	}
	if item.BalloonNumber != 1 {
		t.Fatalf("got balloon %d, want 1", item.BalloonNumber)
	}
}

func TestCompareMissingDimensionNoLLMFallback(t *testing.T) {
	master := model.MachineState{Dimensions: []model.Dimension{
		{FeatureType: model.FeatureLinear, Value: f(30.0), CoordX: 100, CoordY: 100},
	}}
	check := model.MachineState{}

	result, err := Compare(context.Background(), master, check, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Comparisons) != 1 {
		t.Fatalf("got %d comparisons, want 1", len(result.Comparisons))
	}
	if result.Comparisons[0].Status != model.StatusMissing {
		t.Fatalf("got status %s, want missing", result.Comparisons[0].Status)
	}
	if result.Summary.Missing != 1 {
		t.Fatalf("got summary.Missing=%d, want 1", result.Summary.Missing)
	}
}

func TestCompareBalloonNumbersAreSortedAndUnique(t *testing.T) {
	master := model.MachineState{
		Dimensions: []model.Dimension{
			{FeatureType: model.FeatureLinear, Value: f(30.0), CoordX: 100, CoordY: 100},
			{FeatureType: model.FeatureDiameter, Value: f(25.0), CoordX: 340, CoordY: 550},
		},
		GDTCallouts: []model.GDTCallout{
			{Symbol: "flatness", GridRef: "B3"},
		},
		PartList: []model.PartListItem{
			{ItemNumber: "1", Description: "Housing"},
		},
	}
	check := model.MachineState{
		Dimensions: []model.Dimension{
			{FeatureType: model.FeatureLinear, Value: f(30.0), CoordX: 102, CoordY: 101},
			{FeatureType: model.FeatureDiameter, Value: f(25.0), CoordX: 341, CoordY: 551},
		},
		PartList: []model.PartListItem{
			{ItemNumber: "1", Description: "Housing"},
		},
	}

	result, err := Compare(context.Background(), master, check, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := map[int]bool{}
	prev := 0
	for _, item := range result.Comparisons {
		if seen[item.BalloonNumber] {
			t.Fatalf("duplicate balloon number %d", item.BalloonNumber)
		}
		seen[item.BalloonNumber] = true
		if item.BalloonNumber < prev {
			t.Fatalf("balloon numbers not sorted ascending: %d after %d", item.BalloonNumber, prev)
		}
		prev = item.BalloonNumber
	}
	if result.BOMMismatches != 0 {
		t.Fatalf("expected no BOM mismatches for identical single-item BOM, got %d", result.BOMMismatches)
	}
}

func TestCompareScoreComputation(t *testing.T) {
	master := model.MachineState{Dimensions: []model.Dimension{
		{FeatureType: model.FeatureLinear, Value: f(10.0), CoordX: 10, CoordY: 10},
		{FeatureType: model.FeatureLinear, Value: f(20.0), CoordX: 200, CoordY: 200},
	}}
	check := model.MachineState{Dimensions: []model.Dimension{
		{FeatureType: model.FeatureLinear, Value: f(10.0), CoordX: 10, CoordY: 10},
		{FeatureType: model.FeatureLinear, Value: f(20.0), CoordX: 200, CoordY: 200},
	}}

	result, err := Compare(context.Background(), master, check, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Summary.Score != 100.0 {
		t.Fatalf("got score %v, want 100.0 for two identical matched dimensions", result.Summary.Score)
	}
}

type stubLLMMatcher struct {
	candidates []LLMMatchCandidate
}

func (s stubLLMMatcher) MatchDimensions(ctx context.Context, master, check []model.Dimension) ([]LLMMatchCandidate, error) {
	return s.candidates, nil
}

func TestCompareLLMFallbackAcceptsHighConfidenceMatch(t *testing.T) {
	master := model.MachineState{Dimensions: []model.Dimension{
		{FeatureType: model.FeatureThread, Value: f(8.0), CoordX: 900, CoordY: 900},
	}}
	check := model.MachineState{Dimensions: []model.Dimension{
		{FeatureType: model.FeatureChamfer, Value: f(100.0), CoordX: 10, CoordY: 10},
	}}

	llm := stubLLMMatcher{candidates: []LLMMatchCandidate{
		{MasterIndex: 0, CheckIndex: 0, Confidence: 0.9, Reasoning: "same thread callout, relocated"},
	}}

	result, err := Compare(context.Background(), master, check, llm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Comparisons) != 1 {
		t.Fatalf("got %d comparisons, want 1", len(result.Comparisons))
	}
	if result.Summary.Missing != 0 {
		t.Fatalf("expected LLM fallback match to avoid a missing status, got %d missing", result.Summary.Missing)
	}
}
