package ingest

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/MeKo-Tech/drawcheck/internal/model"
)

func blankWhiteImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img
}

func fillBlackSquare(img *image.RGBA, cx, cy, half int) {
	r := image.Rect(cx-half, cy-half, cx+half, cy+half).Intersect(img.Bounds())
	draw.Draw(img, r, image.NewUniform(color.Black), image.Point{}, draw.Src)
}

func TestIsWhitePixel(t *testing.T) {
	if !isWhitePixel(color.White) {
		t.Error("expected white to be classified white")
	}
	if isWhitePixel(color.Black) {
		t.Error("expected black to not be classified white")
	}
}

func TestInkFractionDetectsDarkNeighborhood(t *testing.T) {
	img := blankWhiteImage(200, 200)
	if f := inkFraction(img, 100, 100, inkSampleRadius, inkSampleStride); f != 0 {
		t.Errorf("expected 0 ink fraction on blank image, got %v", f)
	}
	fillBlackSquare(img, 100, 100, 20)
	if f := inkFraction(img, 100, 100, inkSampleRadius, inkSampleStride); f <= 0 {
		t.Errorf("expected positive ink fraction near a dark square, got %v", f)
	}
}

func TestSpiralSearchInkFindsNearestDarkRegion(t *testing.T) {
	img := blankWhiteImage(300, 300)
	fillBlackSquare(img, 150, 190, 15)
	nx, ny, found := spiralSearchInk(img, 150, 150, img.Bounds())
	if !found {
		t.Fatal("expected spiral search to find the dark region")
	}
	if nx < 0 || nx >= 300 || ny < 0 || ny >= 300 {
		t.Errorf("expected in-bounds result, got (%d,%d)", nx, ny)
	}
}

func TestSpiralSearchInkReturnsFalseWhenNoneFound(t *testing.T) {
	img := blankWhiteImage(300, 300)
	_, _, found := spiralSearchInk(img, 150, 150, img.Bounds())
	if found {
		t.Error("expected no ink found on an entirely blank image")
	}
}

func TestRescueCoordinatesRelocatesSparseDimension(t *testing.T) {
	img := blankWhiteImage(300, 300)
	fillBlackSquare(img, 150, 190, 15)
	dims := []model.Dimension{{CoordX: 150, CoordY: 150}}
	RescueCoordinates(dims, img)
	if !dims[0].HasFlag(model.FlagCoordinateAdjusted) {
		t.Error("expected coordinate_adjusted flag after relocation")
	}
	if dims[0].CoordX == 150 && dims[0].CoordY == 150 {
		t.Error("expected coordinates to move away from the sparse origin")
	}
}

func TestNumericRepresentations(t *testing.T) {
	reps := numericRepresentations(12)
	want := map[string]bool{"12": true, "12.0": true, "12.00": true}
	for _, r := range reps {
		if !want[r] {
			t.Errorf("unexpected representation %q", r)
		}
	}
}

func TestCrossCheckWithOCRSetsVerifiedFlagOnMatch(t *testing.T) {
	v := 25.0
	dims := []model.Dimension{{Value: &v, Confidence: 1.0}}
	regions := []model.TextRegion{{Text: "25.0"}}
	CrossCheckWithOCR(dims, regions)
	if !dims[0].HasFlag(model.FlagOCRVerified) {
		t.Error("expected ocr_verified flag when a matching token is present")
	}
}

func TestCrossCheckWithOCRPenalizesOnNoMatch(t *testing.T) {
	v := 25.0
	dims := []model.Dimension{{Value: &v, Confidence: 1.0}}
	CrossCheckWithOCR(dims, nil)
	if dims[0].HasFlag(model.FlagOCRVerified) {
		t.Error("expected no ocr_verified flag without a matching token")
	}
	if dims[0].Confidence != 0.6 {
		t.Errorf("expected confidence penalized to 0.6, got %v", dims[0].Confidence)
	}
}

func TestIsConfusedDigitPair(t *testing.T) {
	pairs := [][2]rune{{'3', '4'}, {'4', '3'}, {'3', '8'}, {'6', '8'}, {'1', '7'}, {'7', '1'}}
	for _, p := range pairs {
		if !isConfusedDigitPair(p[0], p[1]) {
			t.Errorf("expected %c/%c to be a confused pair", p[0], p[1])
		}
	}
	if isConfusedDigitPair('2', '5') {
		t.Error("expected unrelated digits to not be a confused pair")
	}
}

func TestIsDigitConfusionSingleSubstitution(t *testing.T) {
	if !isDigitConfusion(34, 84) {
		t.Error("expected 34->84 (3<->8) to be a digit confusion")
	}
	if !isDigitConfusion(13, 14) {
		t.Error("expected 13->14 (3<->4) to be a digit confusion")
	}
	if isDigitConfusion(34, 84.5) {
		t.Error("expected differing digit counts to not be a confusion")
	}
	if isDigitConfusion(12, 99) {
		t.Error("expected a two-digit change to not be a single confusion")
	}
}

func TestBestNumericMatch(t *testing.T) {
	if v, ok := bestNumericMatch(" 12.5 "); !ok || v != 12.5 {
		t.Errorf("expected 12.5 parsed, got (%v, %v)", v, ok)
	}
	if _, ok := bestNumericMatch(""); ok {
		t.Error("expected empty string to not parse")
	}
	if _, ok := bestNumericMatch("abc"); ok {
		t.Error("expected non-numeric text to not parse")
	}
}

func TestCollectSuspectsIncludesLowConfidenceAndExcludesClean(t *testing.T) {
	v := 1.0
	clean := model.Dimension{Value: &v, Confidence: 0.9, Flags: map[model.DimensionFlag]bool{model.FlagOCRVerified: true}}
	suspect := model.Dimension{Value: &v, Confidence: 0.5}
	suspects := collectSuspects([]model.Dimension{clean, suspect})
	if len(suspects) != 1 || suspects[0].Index != 1 {
		t.Fatalf("expected exactly the low-confidence suspect, got %+v", suspects)
	}
}

func TestApplyCorrectionsConfirmsAndCorrects(t *testing.T) {
	orig := 1.0
	corrected := 2.0
	dims := []model.Dimension{{Value: &orig, Confidence: 0.5}, {Value: &orig, Confidence: 0.5}}
	corrections := []suspectCorrection{
		{Index: 0, CorrectionNote: "confirmed", Confidence: 0.9},
		{Index: 1, CorrectedValue: &corrected, Confidence: 0.8},
	}
	applyCorrections(dims, corrections)
	if dims[0].Confidence != 0.9 || dims[0].Value != &orig {
		t.Errorf("expected confirm to raise confidence and keep value, got %+v", dims[0])
	}
	if dims[1].Value == nil || *dims[1].Value != 2.0 {
		t.Errorf("expected correction to replace value, got %+v", dims[1].Value)
	}
	if !dims[0].HasFlag(model.FlagReverified) || !dims[1].HasFlag(model.FlagReverified) {
		t.Error("expected both dimensions flagged reverified")
	}
}

func TestApplySmallTextPenalty(t *testing.T) {
	dims := []model.Dimension{{Confidence: 1.0}, {Confidence: 0.5}}
	ApplySmallTextPenalty(dims, true)
	for _, d := range dims {
		if !d.HasFlag(model.FlagSmallTextDetected) {
			t.Error("expected small_text_detected flag set on every dimension")
		}
	}
	if dims[0].Confidence != 0.9 {
		t.Errorf("expected 1.0*0.9=0.9, got %v", dims[0].Confidence)
	}

	untouched := []model.Dimension{{Confidence: 1.0}}
	ApplySmallTextPenalty(untouched, false)
	if untouched[0].Confidence != 1.0 || untouched[0].HasFlag(model.FlagSmallTextDetected) {
		t.Error("expected no change when smallTextDetected is false")
	}
}
