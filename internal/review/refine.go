package review

import (
	"math"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/drawcheck/internal/model"
)

// strippedSymbols are removed when building the "stripped form" search
// variant, per spec.md §4.5 step 1.
var strippedSymbols = []string{"±", "Ø", "°"}

// searchVariants builds the candidate text forms spec.md §4.5's region
// refinement tries to match against cached OCR text: the literal value,
// three decimal-precision renderings, an integer form when the value is
// a whole number, and a symbol-stripped form.
func searchVariants(value string) []string {
	variants := []string{value}

	stripped := value
	for _, sym := range strippedSymbols {
		stripped = strings.ReplaceAll(stripped, sym, "")
	}
	stripped = strings.TrimSpace(stripped)
	if stripped != value {
		variants = append(variants, stripped)
	}

	if f, err := strconv.ParseFloat(strings.TrimSpace(stripped), 64); err == nil {
		variants = append(variants,
			strconv.FormatFloat(f, 'f', 1, 64),
			strconv.FormatFloat(f, 'f', 2, 64),
			strconv.FormatFloat(f, 'f', 3, 64),
		)
		if f == math.Trunc(f) {
			variants = append(variants, strconv.FormatFloat(f, 'f', 0, 64))
		}
	}

	return variants
}

// matchesAnyVariant reports whether text contains any of variants, case
// sensitive per spec.md's literal "contains a variant" wording.
func matchesAnyVariant(text string, variants []string) bool {
	for _, v := range variants {
		if v != "" && strings.Contains(text, v) {
			return true
		}
	}
	return false
}

// proximityBonus implements spec.md §4.5 step 3:
// max(0, 0.3 * (1 - distance_pct / 30)), in percentage space.
func proximityBonus(distancePct float64) float64 {
	bonus := 0.3 * (1 - distancePct/30)
	if bonus < 0 {
		return 0
	}
	return bonus
}

func pctDistance(ax, ay, bx, by float64) float64 {
	return math.Hypot(ax-bx, ay-by)
}

// bestMatchingRegion scans regions for the highest-scoring candidate per
// spec.md §4.5 step 2-3: text must contain a search variant, and the
// score is confidence + proximityBonus(distance to the LLM-proposed
// region's center).
func bestMatchingRegion(value string, proposedCenterX, proposedCenterY float64, regions []model.TextRegion) (model.TextRegion, bool) {
	variants := searchVariants(value)
	bestScore := -1.0
	var best model.TextRegion
	found := false

	for _, r := range regions {
		if !matchesAnyVariant(r.Text, variants) {
			continue
		}
		dist := pctDistance(proposedCenterX, proposedCenterY, r.CenterPctX, r.CenterPctY)
		score := r.Confidence + proximityBonus(dist)
		if score > bestScore {
			bestScore = score
			best = r
			found = true
		}
	}
	return best, found
}

// refineOneSide refines a single finding's region (master or check side)
// against that image's cached TextRegion list, per spec.md §4.5 step 4.
// Returns the refined pixel rect and the detection method that produced
// it (model.DetectionNone if no OCR match was found, in which case the
// LLM-proposed region survives unscaled until scale.go converts it).
func refineOneSide(value string, proposed *model.Rect, width, height int, regions []model.TextRegion) (*model.Rect, model.DetectionMethod) {
	if proposed == nil {
		return nil, model.DetectionNone
	}
	centerX := proposed.X + proposed.W/2
	centerY := proposed.Y + proposed.H/2

	match, found := bestMatchingRegion(value, centerX, centerY, regions)
	if !found {
		return proposed, model.DetectionNone
	}

	bbox := match.BBox()
	refined := model.Rect{
		X: model.PxToPct(int(bbox.X), width),
		Y: model.PxToPct(int(bbox.Y), height),
		W: model.PxToPct(int(bbox.W), width),
		H: model.PxToPct(int(bbox.H), height),
	}
	return &refined, match.Source
}

// RefineRegions implements spec.md §4.5's OCR-anchored region refinement
// pass: each finding's master_region/check_region is replaced with the
// matching OCR region's bounding box (converted back to percentage
// space, since regions stay in percentage space until scale.go's final
// output conversion), and detection_method / coordinate_confidence are
// recorded.
func RefineRegions(result *model.ReviewResult, masterRegions, checkRegions []model.TextRegion, masterWidth, masterHeight, checkWidth, checkHeight int) {
	for _, findings := range [][]model.ReviewFinding{result.MissingDimensions, result.MissingTolerances, result.ModifiedValues} {
		for i := range findings {
			f := &findings[i]
			value := f.MasterValue
			if value == "" {
				value = f.CheckValue
			}

			masterRegion, masterMethod := refineOneSide(value, f.MasterRegion, masterWidth, masterHeight, masterRegions)
			checkRegion, checkMethod := refineOneSide(value, f.CheckRegion, checkWidth, checkHeight, checkRegions)

			f.MasterRegion = masterRegion
			f.CheckRegion = checkRegion
			f.DetectionMethod = dominantMethod(masterMethod, checkMethod)
			f.CoordinateConfidence = (model.DetectionConfidence(masterMethod) + model.DetectionConfidence(checkMethod)) / 2
		}
	}
}

// dominantMethod picks the higher-confidence of the two sides' detection
// methods to represent the finding as a whole.
func dominantMethod(a, b model.DetectionMethod) model.DetectionMethod {
	if model.DetectionConfidence(a) >= model.DetectionConfidence(b) {
		return a
	}
	return b
}
