package compare

import (
	"testing"

	"github.com/MeKo-Tech/drawcheck/internal/model"
)

func f(v float64) *float64 { return &v }

func TestDeterministicMatchDeterminism(t *testing.T) {
	master := []model.Dimension{
		{FeatureType: model.FeatureDiameter, Value: f(25.0), CoordX: 340, CoordY: 550, ToleranceClass: "H7"},
		{FeatureType: model.FeatureLinear, Value: f(30.0), CoordX: 100, CoordY: 100},
	}
	check := []model.Dimension{
		{FeatureType: model.FeatureDiameter, Value: f(26.0), CoordX: 345, CoordY: 555, ToleranceClass: "H7"},
		{FeatureType: model.FeatureLinear, Value: f(30.0), CoordX: 105, CoordY: 102},
	}

	m1, um1, uc1 := DeterministicMatch(master, check)
	m2, um2, uc2 := DeterministicMatch(master, check)

	if len(m1) != len(m2) || len(um1) != len(um2) || len(uc1) != len(uc2) {
		t.Fatalf("non-deterministic result lengths")
	}
	for i := range m1 {
		if m1[i] != m2[i] {
			t.Fatalf("non-deterministic match at %d: %+v vs %+v", i, m1[i], m2[i])
		}
	}
}

func TestDeterministicMatchCustomizedValueStillMatches(t *testing.T) {
	master := []model.Dimension{
		{FeatureType: model.FeatureDiameter, Value: f(25.0), CoordX: 340, CoordY: 550, ToleranceClass: "H7"},
	}
	check := []model.Dimension{
		{FeatureType: model.FeatureDiameter, Value: f(26.0), CoordX: 345, CoordY: 555, ToleranceClass: "H7"},
	}
	matches, unmatchedMaster, unmatchedCheck := DeterministicMatch(master, check)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match despite value customization, got %d", len(matches))
	}
	if len(unmatchedMaster) != 0 || len(unmatchedCheck) != 0 {
		t.Fatalf("expected no unmatched dims")
	}
}

func TestDeterministicMatchMissingDimension(t *testing.T) {
	master := []model.Dimension{
		{FeatureType: model.FeatureLinear, Value: f(30.0), CoordX: 100, CoordY: 100},
	}
	var check []model.Dimension
	matches, unmatchedMaster, _ := DeterministicMatch(master, check)
	if len(matches) != 0 {
		t.Fatalf("expected no matches")
	}
	if len(unmatchedMaster) != 1 {
		t.Fatalf("expected 1 unmatched master dim")
	}
}

func TestScorePairBelowFloorRejected(t *testing.T) {
	m := model.Dimension{FeatureType: model.FeatureLinear, CoordX: 0, CoordY: 0}
	c := model.Dimension{FeatureType: model.FeatureAngular, CoordX: 5000, CoordY: 5000}
	if scorePair(m, c) >= MinMatchScore {
		t.Fatal("expected score below floor for unrelated dimensions")
	}
}
