package ocr

import (
	"image"
	"image/color"
	"testing"

	"github.com/MeKo-Tech/drawcheck/internal/mempool"
)

func TestPreprocessForCNNProducesNormalizedNCHWTensor(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			src.Set(x, y, color.White)
		}
	}

	tensor, scaleX, scaleY := preprocessForCNN(src, 64, 32)

	wantLen := 3 * 64 * 32
	if len(tensor.Data) != wantLen {
		t.Fatalf("expected tensor of length %d, got %d", wantLen, len(tensor.Data))
	}
	if got := tensor.Shape; len(got) != 4 || got[0] != 1 || got[1] != 3 || got[2] != 64 || got[3] != 32 {
		t.Fatalf("unexpected tensor shape: %v", got)
	}
	if scaleX != 200.0/32.0 || scaleY != 100.0/64.0 {
		t.Fatalf("unexpected scale factors: x=%v y=%v", scaleX, scaleY)
	}
	// A pure white source normalizes to ~1.0 in every channel.
	for _, v := range tensor.Data {
		if v < 0.9 || v > 1.1 {
			t.Fatalf("expected near-1.0 normalized value for white input, got %v", v)
		}
	}

	mempool.PutFloat32(tensor.Data)
}

func TestPreprocessForCNNDefaultsTargetDimensions(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 50, 50))
	tensor, _, _ := preprocessForCNN(src, 0, 0)

	if len(tensor.Data) != 3*960*960 {
		t.Fatalf("expected default 960x960 tensor, got length %d", len(tensor.Data))
	}
	mempool.PutFloat32(tensor.Data)
}
