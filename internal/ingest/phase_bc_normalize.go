package ingest

import (
	"fmt"

	"github.com/MeKo-Tech/drawcheck/internal/model"
)

// pendingDimension is a model.Dimension that has been through Phase B/C
// normalization but not yet Phase D spatial binding: its coordinates are
// still the percentages the vision LLM reported, since model.Dimension
// itself is pixel-only (spec.md §3 invariant 3).
type pendingDimension struct {
	Dim        model.Dimension
	XPct, YPct float64
}

// buildDimensions runs Phase B (text-field normalization) and Phase C
// (numeric normalization & validation) over each raw dimension,
// producing the pendingDimension list Phase D will spatially bind.
func buildDimensions(raws []rawDimension) []pendingDimension {
	dims := make([]pendingDimension, 0, len(raws))
	for _, r := range raws {
		dims = append(dims, buildDimension(r))
	}
	return dims
}

func buildDimension(r rawDimension) pendingDimension {
	d := model.Dimension{
		Unit:           model.Unit(r.Unit),
		FeatureType:    model.FeatureType(r.FeatureType),
		ToleranceClass: NormalizeText(r.ToleranceClass, FieldToleranceClass),
		UpperTol:       r.UpperTol,
		LowerTol:       r.LowerTol,
		ItemNumber:     r.ItemNumber,
		Zone:           r.Zone,
		Confidence:     1.0,
		Flags:          map[model.DimensionFlag]bool{},
		Extras:         r.Extras,
	}

	valueStr := numericSourceString(r.Value)
	result := NormalizeDimensionValue(valueStr)
	if result.OK {
		v := result.Value
		d.Value = &v
		d.ApplyConfidencePenalty(result.ConfidenceFactor)
		if result.ValidationFailed {
			d.SetFlag(model.FlagValidationFailed)
		}
		for _, f := range result.Flags {
			d.SetFlag(f)
		}
	}

	return pendingDimension{Dim: d, XPct: r.XPct, YPct: r.YPct}
}

// numericSourceString renders whatever JSON-decoded type the vision LLM
// returned for "value" (number or string) as the string
// NormalizeDimensionValue expects.
func numericSourceString(v any) string {
	switch n := v.(type) {
	case string:
		return n
	case float64:
		return fmt.Sprintf("%v", n)
	case int:
		return fmt.Sprintf("%d", n)
	default:
		return ""
	}
}
