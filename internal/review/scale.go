package review

import "github.com/MeKo-Tech/drawcheck/internal/model"

// scalePctRectToPixels implements spec.md §4.5's "Region scaling
// (output)": a percentage rect is converted to pixels against an
// image's size, then clamped to stay within bounds with a 10px floor on
// each side (model.Rect.Clamp already implements that floor/shrink
// behavior for pixel-space rects).
func scalePctRectToPixels(pct *model.Rect, width, height int) *model.Rect {
	if pct == nil {
		return nil
	}
	px := model.Rect{
		X: pct.X / 100.0 * float64(width),
		Y: pct.Y / 100.0 * float64(height),
		W: pct.W / 100.0 * float64(width),
		H: pct.H / 100.0 * float64(height),
	}
	clamped := px.Clamp(width, height)
	return &clamped
}

// ScaleRegions converts every finding's regions in result from percentage
// space to clamped pixel space against their respective image sizes.
// Call once, after refinement, per spec.md §4.5's ordering ("region
// refinement" happens after the LLM rounds, then output scaling).
func ScaleRegions(result *model.ReviewResult, masterWidth, masterHeight, checkWidth, checkHeight int) {
	for _, findings := range [][]model.ReviewFinding{result.MissingDimensions, result.MissingTolerances, result.ModifiedValues} {
		for i := range findings {
			findings[i].MasterRegion = scalePctRectToPixels(findings[i].MasterRegion, masterWidth, masterHeight)
			findings[i].CheckRegion = scalePctRectToPixels(findings[i].CheckRegion, checkWidth, checkHeight)
		}
	}
}
