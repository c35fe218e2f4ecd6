// Package compare implements the Comparator (C4): matching master and
// check dimensions, classifying each pair's tolerance status, and
// diffing GD&T callouts and BOM rows, per spec.md §4.4.
package compare

import (
	"fmt"
	"math"

	"github.com/MeKo-Tech/drawcheck/internal/model"
)

// ToleranceInputs bundles the four values needed to classify a single
// matched pair (spec.md §4.4 Phase 3).
type ToleranceInputs struct {
	Nominal  float64
	UpperTol *float64
	LowerTol *float64
	Actual   float64
}

// ClassifyTolerance computes the deviation and status for a matched
// dimension pair per the decision table in spec.md §4.4 Phase 3.
func ClassifyTolerance(in ToleranceInputs) (deviation float64, status model.Status) {
	deviation = in.Actual - in.Nominal

	if in.Nominal == 0 {
		return deviation, model.StatusPending
	}

	hasTol := in.UpperTol != nil && in.LowerTol != nil
	absDev := math.Abs(deviation)

	if !hasTol {
		ratio := absDev / math.Abs(in.Nominal)
		switch {
		case absDev < 0.001 || ratio < 0.01:
			return deviation, model.StatusPass
		case ratio < 0.05:
			return deviation, model.StatusWarning
		default:
			return deviation, model.StatusDeviation
		}
	}

	upper, lower := *in.UpperTol, *in.LowerTol
	if deviation >= lower && deviation <= upper {
		return deviation, model.StatusPass
	}
	maxTol := math.Max(math.Abs(upper), math.Abs(lower))
	if absDev <= 1.2*maxTol {
		return deviation, model.StatusWarning
	}
	if absDev/math.Abs(in.Nominal) > 0.10 {
		return deviation, model.StatusDeviation
	}
	return deviation, model.StatusFail
}

// upgradeIfMoreSevere returns the more severe of the two statuses. Order
// from least to most severe: pass < warning < deviation < fail < missing.
var severityRank = map[model.Status]int{
	model.StatusPass:      0,
	model.StatusWarning:   1,
	model.StatusDeviation: 2,
	model.StatusFail:      3,
	model.StatusMissing:   4,
	model.StatusNotFound:  4,
	model.StatusPending:   0,
}

func upgradeIfMoreSevere(cur, candidate model.Status) model.Status {
	if severityRank[candidate] > severityRank[cur] {
		return candidate
	}
	return cur
}

// atLeastWarning upgrades status to at least "warning" severity.
func atLeastWarning(cur model.Status) model.Status {
	return upgradeIfMoreSevere(cur, model.StatusWarning)
}

// ApplyOverlays implements the Phase 3 overlays: value comparison
// (decimal-place errors and value modifications), tolerance comparison
// (missing/changed tolerances), and tolerance-class change detection.
// It mutates item in place.
func ApplyOverlays(item *model.ComparisonItem, master model.Dimension, check model.Dimension) {
	if master.Value != nil && check.Value != nil {
		applyValueComparison(item, *master.Value, *check.Value)
	}
	applyToleranceComparison(item, master, check)
	applyToleranceClassChange(item, master, check)
}

func applyValueComparison(item *model.ComparisonItem, masterVal, checkVal float64) {
	if masterVal == 0 || checkVal == 0 {
		return
	}
	ratio := math.Abs(checkVal) / math.Abs(masterVal)
	if ratio >= 10 || ratio <= 0.1 {
		item.Status = model.StatusFail
		item.Notes = appendNote(item.Notes,
			fmt.Sprintf("Possible decimal-place error: master=%v, check=%v", masterVal, checkVal))
		return
	}
	if masterVal != checkVal {
		item.Notes = appendNote(item.Notes,
			fmt.Sprintf("Value modified: master=%v, check=%v", masterVal, checkVal))
	}
}

func applyToleranceComparison(item *model.ComparisonItem, master, check model.Dimension) {
	masterHasTol := master.UpperTol != nil && master.LowerTol != nil
	checkHasTol := check.UpperTol != nil && check.LowerTol != nil

	if masterHasTol && !checkHasTol {
		item.Status = model.StatusFail
		item.Notes = appendNote(item.Notes, "Tolerance class changed: tolerance dropped in check drawing")
		item.ReviewReason = "missing_tolerance"
		item.RequiresManualReview = true
		return
	}
	if masterHasTol && checkHasTol {
		if *master.UpperTol != *check.UpperTol || *master.LowerTol != *check.LowerTol {
			item.Status = atLeastWarning(item.Status)
			item.Notes = appendNote(item.Notes,
				fmt.Sprintf("Tolerance values changed: master=[%v,%v] check=[%v,%v]",
					*master.LowerTol, *master.UpperTol, *check.LowerTol, *check.UpperTol))
		}
	}
}

func applyToleranceClassChange(item *model.ComparisonItem, master, check model.Dimension) {
	if master.ToleranceClass == "" || check.ToleranceClass == "" {
		return
	}
	if master.ToleranceClass == check.ToleranceClass {
		return
	}
	item.Status = atLeastWarning(item.Status)
	item.RequiresManualReview = true
	if equalFold(master.ToleranceClass, check.ToleranceClass) {
		item.ReviewReason = fmt.Sprintf(
			"Tolerance class changed: %s -> %s (case difference — verify hole/shaft distinction)",
			master.ToleranceClass, check.ToleranceClass)
	} else {
		item.ReviewReason = fmt.Sprintf("Tolerance class changed: %s -> %s", master.ToleranceClass, check.ToleranceClass)
	}
	item.Notes = appendNote(item.Notes, item.ReviewReason)
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "; " + note
}
