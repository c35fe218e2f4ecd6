package ocr

import (
	"context"
	"errors"
	"testing"

	"github.com/MeKo-Tech/drawcheck/internal/model"
)

type fakeEngine struct {
	regions []model.TextRegion
	err     error
}

func (f fakeEngine) Detect(ctx context.Context, img *model.Image) ([]model.TextRegion, error) {
	return f.regions, f.err
}

func TestCompositeEngineConcatenatesBothDetectors(t *testing.T) {
	trad := fakeEngine{regions: []model.TextRegion{region("30.0", model.TextTypeDimension, 10, 10)}}
	cnn := fakeEngine{regions: []model.TextRegion{region("30.0", model.TextTypeDimension, 10.2, 10.1)}}
	e := NewCompositeEngine(trad, cnn, true)

	regions, err := e.Detect(context.Background(), &model.Image{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(regions) != 2 {
		t.Fatalf("expected 2 concatenated (duplicate-kept) regions, got %d", len(regions))
	}
}

func TestCompositeEngineCNNDisabled(t *testing.T) {
	trad := fakeEngine{regions: []model.TextRegion{region("30.0", model.TextTypeDimension, 10, 10)}}
	cnn := fakeEngine{regions: []model.TextRegion{region("30.0", model.TextTypeDimension, 10, 10)}}
	e := NewCompositeEngine(trad, cnn, false)

	regions, err := e.Detect(context.Background(), &model.Image{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(regions) != 1 {
		t.Fatalf("expected 1 region with CNN disabled, got %d", len(regions))
	}
}

func TestCompositeEngineDetectorFailureYieldsEmptyNotError(t *testing.T) {
	trad := fakeEngine{err: errors.New("tesseract init failed")}
	cnn := fakeEngine{regions: []model.TextRegion{region("H7", model.TextTypeToleranceClass, 50, 50)}}
	e := NewCompositeEngine(trad, cnn, true)

	regions, err := e.Detect(context.Background(), &model.Image{})
	if err != nil {
		t.Fatalf("a single detector failure must not fail the whole Detect call, got %v", err)
	}
	if len(regions) != 1 {
		t.Fatalf("expected 1 surviving region, got %d", len(regions))
	}
}
