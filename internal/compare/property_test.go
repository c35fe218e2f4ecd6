package compare

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/MeKo-Tech/drawcheck/internal/model"
)

// validStatuses is the closed set of statuses buildMatchedItem/buildMissingItem
// ever assign, per spec.md §3 invariant "every ComparisonItem has exactly one
// status drawn from the fixed enum".
var validStatuses = map[model.Status]bool{
	model.StatusPass:      true,
	model.StatusWarning:   true,
	model.StatusFail:      true,
	model.StatusDeviation: true,
	model.StatusMissing:   true,
	model.StatusNotFound:  true,
	model.StatusPending:   true,
}

// genDimension generates a random dimension with a plausible nominal value,
// coordinates, and tolerance class, leaving the comparator's match/classify
// logic free to exercise every branch across many runs.
func genDimension() gopter.Gen {
	return gopter.CombineGens(
		gen.OneConstOf(model.FeatureLinear, model.FeatureDiameter, model.FeatureRadius, model.FeatureAngular),
		gen.Float64Range(0.1, 500.0),
		gen.IntRange(0, 2000),
		gen.IntRange(0, 2000),
		gen.OneConstOf("", "H7", "g6", "k6"),
	).Map(func(vals []interface{}) model.Dimension {
		feature, _ := vals[0].(model.FeatureType)
		value, _ := vals[1].(float64)
		x, _ := vals[2].(int)
		y, _ := vals[3].(int)
		tol, _ := vals[4].(string)
		return model.Dimension{
			FeatureType:    feature,
			Value:          &value,
			Unit:           model.UnitMM,
			CoordX:         x,
			CoordY:         y,
			ToleranceClass: tol,
		}
	})
}

func genDimensions(n int) gopter.Gen {
	return gen.SliceOfN(n, genDimension())
}

// TestCompare_EveryComparisonItemHasAValidStatus verifies the comparator
// never emits a status outside the fixed enum, across random master/check
// dimension sets (spec.md §3 invariant).
func TestCompare_EveryComparisonItemHasAValidStatus(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("every comparison item has a status from the fixed enum", prop.ForAll(
		func(master, check []model.Dimension) bool {
			result, err := Compare(context.Background(), model.MachineState{Dimensions: master}, model.MachineState{Dimensions: check}, nil)
			if err != nil {
				return false
			}
			for _, item := range result.Comparisons {
				if !validStatuses[item.Status] {
					return false
				}
			}
			return true
		},
		genDimensions(5),
		genDimensions(5),
	))

	properties.TestingRun(t)
}

// TestCompare_BalloonNumbersAreUniqueAndPositive verifies the balloon
// numbering invariant (spec.md §3 invariant 1) holds for arbitrary input.
func TestCompare_BalloonNumbersAreUniqueAndPositive(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("balloon numbers are unique and positive", prop.ForAll(
		func(master, check []model.Dimension) bool {
			result, err := Compare(context.Background(), model.MachineState{Dimensions: master}, model.MachineState{Dimensions: check}, nil)
			if err != nil {
				return false
			}
			seen := make(map[int]bool, len(result.Comparisons))
			for _, item := range result.Comparisons {
				if item.BalloonNumber < 1 {
					return false
				}
				if seen[item.BalloonNumber] {
					return false
				}
				seen[item.BalloonNumber] = true
			}
			return true
		},
		genDimensions(6),
		genDimensions(6),
	))

	properties.TestingRun(t)
}

// TestDeterministicMatch_RepeatedRunsAgree verifies DeterministicMatch is a
// pure function of its inputs: running it twice on the same dimension sets
// always yields identical match/unmatched partitions (spec.md §4.4 Phase 1
// "deterministic" requirement), strengthening the example-based
// TestDeterministicMatchDeterminism with randomly generated inputs.
func TestDeterministicMatch_RepeatedRunsAgree(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("DeterministicMatch is repeatable", prop.ForAll(
		func(master, check []model.Dimension) bool {
			m1, um1, uc1 := DeterministicMatch(master, check)
			m2, um2, uc2 := DeterministicMatch(master, check)

			if len(m1) != len(m2) || len(um1) != len(um2) || len(uc1) != len(uc2) {
				return false
			}
			for i := range m1 {
				if m1[i] != m2[i] {
					return false
				}
			}
			for i := range um1 {
				if um1[i] != um2[i] {
					return false
				}
			}
			for i := range uc1 {
				if uc1[i] != uc2[i] {
					return false
				}
			}
			return true
		},
		genDimensions(8),
		genDimensions(8),
	))

	properties.TestingRun(t)
}
