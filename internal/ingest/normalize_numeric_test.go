package ingest

import "testing"

func TestNormalizeDimensionValueExamples(t *testing.T) {
	cases := map[string]float64{
		"4 79":   4.79,
		"O.5":    0.5,
		"l2.5":   12.5,
		"1/2":    0.5,
		"1 1/2":  1.5,
	}
	for in, want := range cases {
		res := NormalizeDimensionValue(in)
		if !res.OK {
			t.Fatalf("%q: expected OK", in)
		}
		if res.Value != want {
			t.Fatalf("%q: got %v want %v", in, res.Value, want)
		}
	}
}

func TestNormalizeDimensionValueExcessDecimalsFlagged(t *testing.T) {
	res := NormalizeDimensionValue("12.34567")
	if !res.OK {
		t.Fatal("expected parseable value")
	}
	if !res.ValidationFailed {
		t.Fatal("expected validation_failed flag for >3 decimal places")
	}
	if res.ConfidenceFactor >= 1.0 {
		t.Fatal("expected confidence penalty applied")
	}
}

func TestNormalizeDimensionValueUnlikelyRange(t *testing.T) {
	res := NormalizeDimensionValue("20000")
	if !res.OK {
		t.Fatal("expected parseable value")
	}
	found := false
	for _, f := range res.Flags {
		if f == "unlikely_dimension_range" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected unlikely_dimension_range flag")
	}
}

func TestNormalizeDimensionValueIdempotent(t *testing.T) {
	first := NormalizeDimensionValue("4 79")
	again := NormalizeDimensionValue("4.79")
	if first.Value != again.Value {
		t.Fatalf("normalization not idempotent: %v vs %v", first.Value, again.Value)
	}
}
