package compare

import (
	"fmt"

	"github.com/MeKo-Tech/drawcheck/internal/model"
)

// DiffBOM implements spec.md §4.4 Phase 5: index check parts by
// item_number; for each master part produce a missing entry (absent from
// check) or a fail entry (fields differ) — parts that match produce no
// entry — plus a warning entry for any check part absent from master. BOM items
// are appended with zone="BOM" and balloon numbers continuing from
// startBalloon (spec.md §3 invariant 1).
func DiffBOM(master, check []model.PartListItem, startBalloon int) (items []model.ComparisonItem, mismatches int) {
	checkIndex := make(map[string]model.PartListItem, len(check))
	for _, c := range check {
		checkIndex[c.ItemNumber] = c
	}
	masterNumbers := make(map[string]bool, len(master))
	for _, m := range master {
		masterNumbers[m.ItemNumber] = true
	}

	next := startBalloon
	for _, m := range master {
		c, ok := checkIndex[m.ItemNumber]
		if !ok {
			items = append(items, model.ComparisonItem{
				BalloonNumber:      next,
				FeatureDescription: fmt.Sprintf("BOM item %s (%s)", m.ItemNumber, m.Description),
				Status:             model.StatusMissing,
				Zone:               "BOM",
				Notes:              "part present in master BOM but missing from check BOM",
			})
			mismatches++
			next++
			continue
		}
		diffs := bomFieldDiffs(m, c)
		if len(diffs) > 0 {
			items = append(items, model.ComparisonItem{
				BalloonNumber:      next,
				FeatureDescription: fmt.Sprintf("BOM item %s (%s)", m.ItemNumber, m.Description),
				Status:             model.StatusFail,
				Zone:               "BOM",
				Notes:              joinDiffs(diffs),
			})
			mismatches++
			next++
		}
	}

	for _, c := range check {
		if masterNumbers[c.ItemNumber] {
			continue
		}
		items = append(items, model.ComparisonItem{
			BalloonNumber:      next,
			FeatureDescription: fmt.Sprintf("BOM item %s (%s)", c.ItemNumber, c.Description),
			Status:             model.StatusWarning,
			Zone:               "BOM",
			Notes:              "part present in check BOM but not in master BOM",
		})
		mismatches++
		next++
	}

	return items, mismatches
}

func bomFieldDiffs(m, c model.PartListItem) []string {
	var diffs []string
	if m.Description != c.Description {
		diffs = append(diffs, fmt.Sprintf("description: %q -> %q", m.Description, c.Description))
	}
	if m.Material != c.Material {
		diffs = append(diffs, fmt.Sprintf("material: %q -> %q", m.Material, c.Material))
	}
	if m.Quantity != c.Quantity {
		diffs = append(diffs, fmt.Sprintf("quantity: %d -> %d", m.Quantity, c.Quantity))
	}
	return diffs
}

func joinDiffs(diffs []string) string {
	out := ""
	for i, d := range diffs {
		if i > 0 {
			out += "; "
		}
		out += d
	}
	return out
}
