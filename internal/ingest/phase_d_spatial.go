package ingest

import (
	"github.com/MeKo-Tech/drawcheck/internal/model"
)

// bindSpatial implements spec.md §4.3 Phase D: percentage->pixel
// conversion against the canonical image size, grid-reference
// computation, and BOM entity-registry binding. GD&T callouts go
// through the same coordinate/grid treatment; zones are enriched with a
// grid span separately (enrichZoneSpans).
func bindSpatial(pending []pendingDimension, gdts []rawGDTCallout, partList []model.PartListItem, width, height int) ([]model.Dimension, []model.GDTCallout) {
	registry := buildEntityRegistry(partList)

	dims := make([]model.Dimension, 0, len(pending))
	for _, p := range pending {
		d := p.Dim
		d.CoordX = model.ClampCoord(model.PctToPx(p.XPct, width), width)
		d.CoordY = model.ClampCoord(model.PctToPx(p.YPct, height), height)
		d.GridRef = model.GridReference(d.CoordX, d.CoordY, width, height)
		bindEntity(&d, registry)
		dims = append(dims, d)
	}

	callouts := make([]model.GDTCallout, 0, len(gdts))
	for _, g := range gdts {
		x := model.ClampCoord(model.PctToPx(g.XPct, width), width)
		y := model.ClampCoord(model.PctToPx(g.YPct, height), height)
		callouts = append(callouts, model.GDTCallout{
			Symbol:  g.Symbol,
			Value:   g.Value,
			Datum:   NormalizeText(g.Datum, FieldDatum),
			GridRef: model.GridReference(x, y, width, height),
			CoordX:  x,
			CoordY:  y,
		})
	}

	return dims, callouts
}

// buildEntityRegistry indexes the BOM by item_number for Phase D's
// binding lookup.
func buildEntityRegistry(partList []model.PartListItem) map[string]model.PartListItem {
	registry := make(map[string]model.PartListItem, len(partList))
	for _, p := range partList {
		registry[p.ItemNumber] = p
	}
	return registry
}

// bindEntity sets a Dimension's Binding and, when verified,
// EntityDescription, per spec.md §3 invariant 5 and §4.3 Phase D.
func bindEntity(d *model.Dimension, registry map[string]model.PartListItem) {
	if d.ItemNumber == "" {
		d.Binding = model.BindingUnbound
		return
	}
	if part, ok := registry[d.ItemNumber]; ok {
		d.Binding = model.BindingVerified
		d.EntityDescription = part.Description
		return
	}
	d.Binding = model.BindingUnverified
}

// enrichZoneSpans computes a grid span ("startRef-endRef") for each named
// zone by taking the bounding grid cells of every dimension assigned to
// it (GD&T callouts carry no zone field in the extraction schema, so
// only dimensions contribute). Zones with no bound dimensions get a span
// of the full grid, since there is no other geometric signal for an
// empty zone.
func enrichZoneSpans(names []rawZone, dims []model.Dimension, width, height int) []model.Zone {
	zones := make([]model.Zone, 0, len(names))
	for _, z := range names {
		startRef, endRef := zoneSpan(z.Name, dims, width, height)
		zones = append(zones, model.Zone{Name: z.Name, StartRef: startRef, EndRef: endRef})
	}
	return zones
}

func zoneSpan(name string, dims []model.Dimension, width, height int) (string, string) {
	minX, minY := width, height
	maxX, maxY := 0, 0
	found := false

	for _, d := range dims {
		if d.Zone != name {
			continue
		}
		found = true
		if d.CoordX < minX {
			minX = d.CoordX
		}
		if d.CoordY < minY {
			minY = d.CoordY
		}
		if d.CoordX > maxX {
			maxX = d.CoordX
		}
		if d.CoordY > maxY {
			maxY = d.CoordY
		}
	}

	if !found {
		return model.GridReference(0, 0, width, height), model.GridReference(width-1, height-1, width, height)
	}
	return model.GridReference(minX, minY, width, height), model.GridReference(maxX, maxY, width, height)
}
