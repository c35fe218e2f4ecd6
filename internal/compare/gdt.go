package compare

import "github.com/MeKo-Tech/drawcheck/internal/model"

// gdtKey indexes a GD&T callout by grid reference and symbol, per
// spec.md §4.4 Phase 4.
type gdtKey struct {
	GridRef string
	Symbol  string
}

var symbolSwapPairs = map[string]string{
	"parallelism":     "perpendicularity",
	"perpendicularity": "parallelism",
}

// DiffGDT implements spec.md §4.4 Phase 4: index check callouts by
// (grid_ref, symbol), then for each master callout detect either a
// symbol_mismatch (parallelism<->perpendicularity swap at the same
// location, classified fail) or a plain absence (missing_dimension,
// warning).
func DiffGDT(master, check []model.GDTCallout) []model.ComparisonItem {
	checkIndex := make(map[gdtKey]model.GDTCallout, len(check))
	checkBySpot := make(map[string][]model.GDTCallout)
	for _, c := range check {
		checkIndex[gdtKey{GridRef: c.GridRef, Symbol: c.Symbol}] = c
		checkBySpot[c.GridRef] = append(checkBySpot[c.GridRef], c)
	}

	var out []model.ComparisonItem
	for _, m := range master {
		key := gdtKey{GridRef: m.GridRef, Symbol: m.Symbol}
		if _, ok := checkIndex[key]; ok {
			continue
		}
		if swapped, ok := symbolSwapPairs[m.Symbol]; ok {
			if _, hasSwap := checkIndex[gdtKey{GridRef: m.GridRef, Symbol: swapped}]; hasSwap {
				out = append(out, model.ComparisonItem{
					FeatureDescription: "GD&T " + m.Symbol + " at " + m.GridRef,
					Status:             model.StatusFail,
					Zone:               "GDT",
					Notes:              "symbol_mismatch: " + m.Symbol + " replaced by " + swapped,
					MasterCoordX:       m.CoordX,
					MasterCoordY:       m.CoordY,
				})
				continue
			}
		}
		out = append(out, model.ComparisonItem{
			FeatureDescription: "GD&T " + m.Symbol + " at " + m.GridRef,
			Status:             model.StatusWarning,
			Zone:               "GDT",
			Notes:              "missing_dimension: GD&T callout absent from check drawing",
			MasterCoordX:       m.CoordX,
			MasterCoordY:       m.CoordY,
		})
	}
	return out
}
