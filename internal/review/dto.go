package review

import "github.com/MeKo-Tech/drawcheck/internal/model"

// rawFinding mirrors the JSON shape a review round emits for one
// discrepancy, before region percentages are attached to model.Rect.
type rawFinding struct {
	Category    string
	MasterValue string
	CheckValue  string
	Type        string
	Location    string
	Description string
	MasterRegionPct *pctRect
	CheckRegionPct  *pctRect
}

// pctRect is a percentage-space rectangle as reported by a review round
// (spec.md §4.5: "percentage-based master_region/check_region").
type pctRect struct {
	X, Y, W, H float64
}

// rawReviewResult is the parsed shape of a single round's JSON response.
type rawReviewResult struct {
	MissingDimensions []rawFinding
	MissingTolerances []rawFinding
	ModifiedValues    []rawFinding
	Summary           string
}

func parseRawReviewResult(data map[string]any) rawReviewResult {
	return rawReviewResult{
		MissingDimensions: parseFindingList(asSlice(data["missing_dimensions"])),
		MissingTolerances: parseFindingList(asSlice(data["missing_tolerances"])),
		ModifiedValues:    parseFindingList(asSlice(data["modified_values"])),
		Summary:           asString(data["summary"]),
	}
}

func parseFindingList(items []any) []rawFinding {
	out := make([]rawFinding, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, rawFinding{
			MasterValue:     asString(m["master_value"]),
			CheckValue:      asString(m["check_value"]),
			Type:            asString(m["type"]),
			Location:        asString(m["location"]),
			Description:     asString(m["description"]),
			MasterRegionPct: parsePctRect(asMap(m["master_region"])),
			CheckRegionPct:  parsePctRect(asMap(m["check_region"])),
		})
	}
	return out
}

func parsePctRect(m map[string]any) *pctRect {
	if m == nil {
		return nil
	}
	return &pctRect{
		X: asFloat(m["x"]), Y: asFloat(m["y"]),
		W: asFloat(m["w"]), H: asFloat(m["h"]),
	}
}

// toFindings converts one category's raw findings into model.ReviewFinding,
// stamping category and leaving regions in percentage space (refine.go /
// scale.go convert to pixels later).
func toFindings(category model.FindingCategory, raws []rawFinding) []model.ReviewFinding {
	out := make([]model.ReviewFinding, len(raws))
	for i, r := range raws {
		out[i] = model.ReviewFinding{
			Category:    category,
			MasterValue: r.MasterValue,
			CheckValue:  r.CheckValue,
			Type:        r.Type,
			Location:    r.Location,
			Description: r.Description,
			MasterRegion: pctToRect(r.MasterRegionPct),
			CheckRegion:  pctToRect(r.CheckRegionPct),
		}
	}
	return out
}

func pctToRect(p *pctRect) *model.Rect {
	if p == nil {
		return nil
	}
	return &model.Rect{X: p.X, Y: p.Y, W: p.W, H: p.H}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	default:
		return 0
	}
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}
