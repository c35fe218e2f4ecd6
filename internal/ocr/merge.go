package ocr

import (
	"math"

	"github.com/MeKo-Tech/drawcheck/internal/model"
)

// mergeThresholdPct is the maximum per-axis center-offset, as a
// percentage of image dimension, for two regions to join during the
// greedy grouped_regions merge (spec.md §4.2).
const mergeThresholdPct = 3.0

// anchorTypes takes priority when inheriting a merged group's position:
// "position from any dimension/diameter anchor in the group" (spec.md
// §4.2).
var anchorTypes = map[model.TextRegionType]bool{
	model.TextTypeDimension: true,
	model.TextTypeDiameter:  true,
}

// SortRegions orders regions top-to-bottom then left-to-right, per
// spec.md §4.2's output post-processing step.
func SortRegions(regions []model.TextRegion) {
	// Insertion sort: the input lists here are small (per-drawing OCR
	// output), and a stable simple sort keeps tie-break order explicit.
	for i := 1; i < len(regions); i++ {
		j := i
		for j > 0 && regionLess(regions[j], regions[j-1]) {
			regions[j], regions[j-1] = regions[j-1], regions[j]
			j--
		}
	}
}

func regionLess(a, b model.TextRegion) bool {
	if a.CenterPctY != b.CenterPctY {
		return a.CenterPctY < b.CenterPctY
	}
	return a.CenterPctX < b.CenterPctX
}

// GroupRegions implements the grouped_regions greedy merge: two regions
// join if both center offsets are within mergeThresholdPct of image
// dimensions. The merged region's text is the concatenation in scan
// order; its position is inherited from a dimension/diameter anchor in
// the group if one exists, else the first region's position.
func GroupRegions(regions []model.TextRegion) []model.TextRegion {
	if len(regions) == 0 {
		return nil
	}
	sorted := make([]model.TextRegion, len(regions))
	copy(sorted, regions)
	SortRegions(sorted)

	used := make([]bool, len(sorted))
	var groups [][]model.TextRegion

	for i := range sorted {
		if used[i] {
			continue
		}
		group := []model.TextRegion{sorted[i]}
		used[i] = true
		for j := i + 1; j < len(sorted); j++ {
			if used[j] {
				continue
			}
			if closeEnough(sorted[i], sorted[j]) {
				group = append(group, sorted[j])
				used[j] = true
			}
		}
		groups = append(groups, group)
	}

	merged := make([]model.TextRegion, 0, len(groups))
	for _, g := range groups {
		merged = append(merged, mergeGroup(g))
	}
	return merged
}

func closeEnough(a, b model.TextRegion) bool {
	return math.Abs(a.CenterPctX-b.CenterPctX) <= mergeThresholdPct &&
		math.Abs(a.CenterPctY-b.CenterPctY) <= mergeThresholdPct
}

func mergeGroup(group []model.TextRegion) model.TextRegion {
	if len(group) == 1 {
		return group[0]
	}

	anchor := group[0]
	for _, r := range group {
		if anchorTypes[r.Type] {
			anchor = r
			break
		}
	}

	text := ""
	confSum := 0.0
	for _, r := range group {
		if text != "" {
			text += " "
		}
		text += r.Text
		confSum += r.Confidence
	}

	merged := anchor
	merged.Text = text
	merged.Confidence = confSum / float64(len(group))
	merged.Type = Classify(text)
	return merged
}
