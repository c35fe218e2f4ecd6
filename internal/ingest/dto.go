package ingest

import "github.com/MeKo-Tech/drawcheck/internal/model"

// rawDimension mirrors the vision LLM's per-dimension JSON object before
// Phase B/C normalization and Phase D spatial binding run: coordinates
// are still percentages and value is still whatever string/number the
// model emitted (spec.md §4.3 Phase A prompt contract).
type rawDimension struct {
	Value          any
	Unit           string
	XPct, YPct     float64
	FeatureType    string
	ToleranceClass string
	UpperTol       *float64
	LowerTol       *float64
	ItemNumber     string
	Zone           string
	Extras         map[string]any
}

type rawGDTCallout struct {
	Symbol     string
	Value      *float64
	Datum      string
	XPct, YPct float64
}

type rawZone struct {
	Name string
}

// rawExtraction is the parsed (but not yet normalized/bound) shape of
// Phase A's repaired JSON response: the direct translation of the
// "dimensions", "part_list", "zones", "gdt_callouts", "title_block",
// "raw_text" keys the extraction prompt demands.
type rawExtraction struct {
	Dimensions  []rawDimension
	PartList    []model.PartListItem
	Zones       []rawZone
	GDTCallouts []rawGDTCallout
	TitleBlock  map[string]string
	RawText     string
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

func asFloatPtr(v any) *float64 {
	f, ok := asFloat(v)
	if !ok {
		return nil
	}
	return &f
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

// parseRawExtraction converts the generic map produced by
// llm.RepairAndParse into a rawExtraction, tolerating missing or
// mistyped keys (the LLM's schema drifts; unrecognized keys are kept in
// each dimension's Extras side-band per spec.md §9 "dynamic dicts ->
// tagged structs").
func parseRawExtraction(data map[string]any) *rawExtraction {
	out := &rawExtraction{TitleBlock: map[string]string{}}

	for _, d := range asSlice(data["dimensions"]) {
		m := asMap(d)
		if m == nil {
			continue
		}
		out.Dimensions = append(out.Dimensions, parseRawDimension(m))
	}

	for _, p := range asSlice(data["part_list"]) {
		m := asMap(p)
		if m == nil {
			continue
		}
		item := model.PartListItem{
			ItemNumber:  asString(m["item_number"]),
			Description: asString(m["description"]),
			Material:    asString(m["material"]),
			Unit:        asString(m["unit"]),
		}
		if q, ok := asFloat(m["quantity"]); ok {
			item.Quantity = int(q)
		}
		item.Weight = asFloatPtr(m["weight"])
		out.PartList = append(out.PartList, item)
	}

	for _, z := range asSlice(data["zones"]) {
		m := asMap(z)
		if m == nil {
			continue
		}
		out.Zones = append(out.Zones, rawZone{Name: asString(m["name"])})
	}

	for _, g := range asSlice(data["gdt_callouts"]) {
		m := asMap(g)
		if m == nil {
			continue
		}
		callout := rawGDTCallout{
			Symbol: asString(m["symbol"]),
			Datum:  asString(m["datum"]),
			Value:  asFloatPtr(m["value"]),
		}
		callout.XPct, _ = asFloat(coordComponent(m, "x"))
		callout.YPct, _ = asFloat(coordComponent(m, "y"))
		out.GDTCallouts = append(out.GDTCallouts, callout)
	}

	if tb := asMap(data["title_block"]); tb != nil {
		for k, v := range tb {
			out.TitleBlock[k] = asString(v)
		}
	}

	out.RawText = asString(data["raw_text"])
	return out
}

func parseRawDimension(m map[string]any) rawDimension {
	d := rawDimension{
		Value:          m["value"],
		Unit:           asString(m["unit"]),
		FeatureType:    asString(m["feature_type"]),
		ToleranceClass: asString(m["tolerance_class"]),
		ItemNumber:     asString(m["item_number"]),
		Zone:           asString(m["zone"]),
		UpperTol:       asFloatPtr(m["upper_tol"]),
		LowerTol:       asFloatPtr(m["lower_tol"]),
		Extras:         map[string]any{},
	}
	d.XPct, _ = asFloat(coordComponent(m, "x"))
	d.YPct, _ = asFloat(coordComponent(m, "y"))

	known := map[string]bool{
		"value": true, "unit": true, "feature_type": true, "tolerance_class": true,
		"item_number": true, "zone": true, "upper_tol": true, "lower_tol": true,
		"coordinates": true, "x": true, "y": true,
	}
	for k, v := range m {
		if !known[k] {
			d.Extras[k] = v
		}
	}
	return d
}

// coordComponent reads a coordinate axis from either a nested
// {"coordinates": {"x": .., "y": ..}} object or flat "x"/"y" keys, since
// vision LLM responses are not guaranteed to nest consistently.
func coordComponent(m map[string]any, axis string) any {
	if coords := asMap(m["coordinates"]); coords != nil {
		if v, ok := coords[axis]; ok {
			return v
		}
	}
	return m[axis]
}
