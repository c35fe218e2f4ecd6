package ocr

import (
	"testing"

	"github.com/MeKo-Tech/drawcheck/internal/model"
)

func region(text string, typ model.TextRegionType, cx, cy float64) model.TextRegion {
	return model.TextRegion{Text: text, Type: typ, Confidence: 0.9, CenterPctX: cx, CenterPctY: cy}
}

func TestGroupRegionsMergesClosePairs(t *testing.T) {
	regions := []model.TextRegion{
		region("Ø", model.TextTypeDiameter, 50.0, 50.0),
		region("12.5", model.TextTypeDimension, 51.0, 50.5),
	}
	grouped := GroupRegions(regions)
	if len(grouped) != 1 {
		t.Fatalf("expected 1 merged group, got %d", len(grouped))
	}
	if grouped[0].Type != model.TextTypeDiameter {
		t.Fatalf("expected merged region to inherit diameter anchor type, got %s", grouped[0].Type)
	}
}

func TestGroupRegionsLeavesFarApartSeparate(t *testing.T) {
	regions := []model.TextRegion{
		region("30.0", model.TextTypeDimension, 10.0, 10.0),
		region("H7", model.TextTypeToleranceClass, 90.0, 90.0),
	}
	grouped := GroupRegions(regions)
	if len(grouped) != 2 {
		t.Fatalf("expected 2 separate regions, got %d", len(grouped))
	}
}

func TestSortRegionsTopToBottomLeftToRight(t *testing.T) {
	regions := []model.TextRegion{
		region("c", model.TextTypeText, 50.0, 80.0),
		region("a", model.TextTypeText, 10.0, 10.0),
		region("b", model.TextTypeText, 90.0, 10.0),
	}
	SortRegions(regions)
	if regions[0].Text != "a" || regions[1].Text != "b" || regions[2].Text != "c" {
		t.Fatalf("unexpected order: %v", regions)
	}
}
