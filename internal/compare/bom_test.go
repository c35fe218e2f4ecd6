package compare

import (
	"testing"

	"github.com/MeKo-Tech/drawcheck/internal/model"
)

func TestDiffBOMMissingItem(t *testing.T) {
	// S5: master has items 1,2,3; check has 1,2.
	master := []model.PartListItem{
		{ItemNumber: "1", Description: "Housing", Material: "steel", Quantity: 1},
		{ItemNumber: "2", Description: "Bolt", Material: "steel", Quantity: 4},
		{ItemNumber: "3", Description: "Gasket", Material: "rubber", Quantity: 1},
	}
	check := []model.PartListItem{
		{ItemNumber: "1", Description: "Housing", Material: "steel", Quantity: 1},
		{ItemNumber: "2", Description: "Bolt", Material: "steel", Quantity: 4},
	}

	items, mismatches := DiffBOM(master, check, 10)
	if mismatches != 1 {
		t.Fatalf("got %d mismatches, want 1", mismatches)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	item := items[0]
	if item.Status != model.StatusMissing {
		t.Fatalf("got status %s, want missing", item.Status)
	}
	if item.Zone != "BOM" {
		t.Fatalf("got zone %q, want BOM", item.Zone)
	}
	if item.BalloonNumber <= 0 {
		t.Fatalf("expected balloon number continuing from dimension balloons, got %d", item.BalloonNumber)
	}
}

func TestDiffBOMFieldMismatch(t *testing.T) {
	master := []model.PartListItem{
		{ItemNumber: "1", Description: "Housing", Material: "steel", Quantity: 1},
	}
	check := []model.PartListItem{
		{ItemNumber: "1", Description: "Housing", Material: "aluminum", Quantity: 1},
	}
	items, mismatches := DiffBOM(master, check, 1)
	if mismatches != 1 || len(items) != 1 {
		t.Fatalf("expected 1 mismatch item, got %d/%d", mismatches, len(items))
	}
	if items[0].Status != model.StatusFail {
		t.Fatalf("got status %s, want fail", items[0].Status)
	}
}

func TestDiffBOMExtraCheckItemWarning(t *testing.T) {
	master := []model.PartListItem{
		{ItemNumber: "1", Description: "Housing", Material: "steel", Quantity: 1},
	}
	check := []model.PartListItem{
		{ItemNumber: "1", Description: "Housing", Material: "steel", Quantity: 1},
		{ItemNumber: "2", Description: "Extra bracket", Material: "steel", Quantity: 1},
	}
	items, mismatches := DiffBOM(master, check, 1)
	if mismatches != 1 || len(items) != 1 {
		t.Fatalf("expected 1 mismatch item, got %d/%d", mismatches, len(items))
	}
	if items[0].Status != model.StatusWarning {
		t.Fatalf("got status %s, want warning", items[0].Status)
	}
}

func TestDiffBOMNoMismatchesIdentical(t *testing.T) {
	parts := []model.PartListItem{
		{ItemNumber: "1", Description: "Housing", Material: "steel", Quantity: 1},
	}
	items, mismatches := DiffBOM(parts, parts, 1)
	if mismatches != 0 || len(items) != 0 {
		t.Fatalf("expected no mismatches for identical BOMs, got %d/%d", mismatches, len(items))
	}
}

func TestDiffBOMBalloonNumbersIncrementSequentially(t *testing.T) {
	master := []model.PartListItem{
		{ItemNumber: "1", Description: "A"},
		{ItemNumber: "2", Description: "B"},
	}
	var check []model.PartListItem
	items, mismatches := DiffBOM(master, check, 5)
	if mismatches != 2 {
		t.Fatalf("got %d mismatches, want 2", mismatches)
	}
	if items[0].BalloonNumber != 5 || items[1].BalloonNumber != 6 {
		t.Fatalf("expected sequential balloon numbers starting at 5, got %d, %d",
			items[0].BalloonNumber, items[1].BalloonNumber)
	}
}
