package loader

import (
	"image"
	"image/color"
	"testing"
)

func TestClassifyDPIBand(t *testing.T) {
	cases := []struct {
		p10       float64
		wantLabel string
		wantDPI   int
	}{
		{p10: 5, wantLabel: "very_small", wantDPI: 450},
		{p10: 10, wantLabel: "small", wantDPI: 400},
		{p10: 18, wantLabel: "moderate", wantDPI: 350},
		{p10: 30, wantLabel: "", wantDPI: defaultTargetDPI},
	}
	for _, c := range cases {
		label, dpi := classifyDPIBand(c.p10)
		if label != c.wantLabel || dpi != c.wantDPI {
			t.Errorf("classifyDPIBand(%v) = (%q, %d), want (%q, %d)",
				c.p10, label, dpi, c.wantLabel, c.wantDPI)
		}
	}
}

func TestEstimateP10CharHeightBlankImageReturnsDefault(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	got := estimateP10CharHeight(img)
	if got != defaultAssumedCharHeight {
		t.Fatalf("expected default char height %v for blank image, got %v", defaultAssumedCharHeight, got)
	}
}

func TestEstimateP10CharHeightDetectsDarkComponents(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	// Draw a small dark square component (5px tall) representing a glyph.
	for y := 10; y < 15; y++ {
		for x := 10; x < 14; x++ {
			img.SetGray(x, y, color.Gray{Y: 0})
		}
	}
	got := estimateP10CharHeight(img)
	if got <= 0 || got >= float64(img.Bounds().Dy())/4 {
		t.Fatalf("expected a plausible component height, got %v", got)
	}
}

func TestToBinaryMaskThresholdsDarkAndLight(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 1))
	img.SetGray(0, 0, color.Gray{Y: 0})
	img.SetGray(1, 0, color.Gray{Y: 255})

	mask := toBinaryMask(img)
	if !mask[0] {
		t.Error("expected dark pixel to be foreground (true)")
	}
	if mask[1] {
		t.Error("expected light pixel to be background (false)")
	}
}
