package ocr

import (
	"regexp"
	"strings"

	"github.com/MeKo-Tech/drawcheck/internal/model"
)

// classification rules, applied in order (spec.md §4.2). Purely
// regex/heuristic on the text string — no ML.
var (
	dimensionRe      = regexp.MustCompile(`^[+-]?\d+\.?\d*\s*(mm|in|cm|m)?$`)
	toleranceRe      = regexp.MustCompile(`^[+-]\d+\.?\d*$`)
	diameterPrefixRe = regexp.MustCompile(`(?i)^dia`)
	radiusRe         = regexp.MustCompile(`^R\d+\.?\d*$`)
	threadRe         = regexp.MustCompile(`^M\d+|UN[CF]`)
	toleranceClassRe = regexp.MustCompile(`^[A-Za-z]{1,2}\d{1,2}$`)
	sectionLabelRe   = regexp.MustCompile(`^[A-Z]-[A-Z]$`)
)

const diameterSymbols = "Ø⌀φ"

// Classify assigns a TextRegionType to a raw OCR string per the
// heuristic table in spec.md §4.2.
func Classify(text string) model.TextRegionType {
	trimmed := strings.TrimSpace(text)

	switch {
	case strings.ContainsAny(trimmed, diameterSymbols), diameterPrefixRe.MatchString(trimmed):
		return model.TextTypeDiameter
	case radiusRe.MatchString(trimmed):
		return model.TextTypeRadius
	case strings.Contains(trimmed, "°") || strings.HasSuffix(trimmed, "deg"):
		return model.TextTypeAngular
	case threadRe.MatchString(trimmed):
		return model.TextTypeThread
	case toleranceClassRe.MatchString(trimmed):
		return model.TextTypeToleranceClass
	case sectionLabelRe.MatchString(trimmed):
		return model.TextTypeSectionLabel
	case toleranceRe.MatchString(trimmed):
		return model.TextTypeTolerance
	case dimensionRe.MatchString(trimmed):
		return model.TextTypeDimension
	default:
		return model.TextTypeText
	}
}
