package ingest

import "testing"

func TestParseRawExtractionBasicShape(t *testing.T) {
	data := map[string]any{
		"dimensions": []any{
			map[string]any{
				"value":           "25.0",
				"unit":            "mm",
				"feature_type":    "diameter",
				"tolerance_class": "H7",
				"item_number":     "1",
				"zone":            "A",
				"coordinates":     map[string]any{"x": 50.0, "y": 60.0},
			},
		},
		"part_list": []any{
			map[string]any{
				"item_number": "1", "description": "Shaft", "material": "Steel",
				"quantity": 2.0, "weight": 1.5, "unit": "kg",
			},
		},
		"zones": []any{map[string]any{"name": "A"}},
		"gdt_callouts": []any{
			map[string]any{"symbol": "⊥", "datum": "A", "coordinates": map[string]any{"x": 10.0, "y": 20.0}},
		},
		"title_block": map[string]any{"drawn_by": "J.Doe"},
		"raw_text":    "hello",
	}

	out := parseRawExtraction(data)
	if len(out.Dimensions) != 1 {
		t.Fatalf("expected 1 dimension, got %d", len(out.Dimensions))
	}
	d := out.Dimensions[0]
	if d.FeatureType != "diameter" || d.ToleranceClass != "H7" || d.ItemNumber != "1" {
		t.Errorf("unexpected dimension fields: %+v", d)
	}
	if d.XPct != 50.0 || d.YPct != 60.0 {
		t.Errorf("expected coordinates (50,60), got (%v,%v)", d.XPct, d.YPct)
	}

	if len(out.PartList) != 1 || out.PartList[0].Quantity != 2 {
		t.Fatalf("unexpected part list: %+v", out.PartList)
	}
	if len(out.GDTCallouts) != 1 || out.GDTCallouts[0].Symbol != "⊥" {
		t.Fatalf("unexpected gdt callouts: %+v", out.GDTCallouts)
	}
	if out.TitleBlock["drawn_by"] != "J.Doe" {
		t.Errorf("expected title block to carry drawn_by, got %+v", out.TitleBlock)
	}
	if out.RawText != "hello" {
		t.Errorf("expected raw_text to carry through, got %q", out.RawText)
	}
}

func TestParseRawDimensionPreservesUnknownKeysInExtras(t *testing.T) {
	m := map[string]any{
		"value": 1.0, "surprise_field": "unanticipated",
	}
	d := parseRawDimension(m)
	if d.Extras["surprise_field"] != "unanticipated" {
		t.Errorf("expected unknown key preserved in Extras, got %+v", d.Extras)
	}
	if _, ok := d.Extras["value"]; ok {
		t.Error("known key 'value' should not appear in Extras")
	}
}

func TestCoordComponentFallsBackToFlatKeys(t *testing.T) {
	m := map[string]any{"x": 5.0, "y": 10.0}
	if v := coordComponent(m, "x"); v != 5.0 {
		t.Errorf("expected flat x fallback to work, got %v", v)
	}
}
