package ingest

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/drawcheck/internal/model"
)

// numericLetterFixes is the letter->digit translation table applied only
// inside numeric contexts, per spec.md §4.3 Phase C step 1.
var numericLetterFixes = map[rune]rune{
	'O': '0', 'o': '0',
	'l': '1', 'I': '1',
	'b': '6',
	'B': '8',
	'S': '5', 's': '5',
	'Z': '2', 'z': '2',
}

var (
	spaceDecimalRe = regexp.MustCompile(`^(\d+)\s+(\d+)$`)
	mixedFractionRe = regexp.MustCompile(`^(\d+)\s+(\d+)\s*/\s*(\d+)$`)
	simpleFractionRe = regexp.MustCompile(`^(\d+)\s*/\s*(\d+)$`)
	decimalPlacesRe = regexp.MustCompile(`\.(\d+)$`)
	allowedNumericCharsRe = regexp.MustCompile(`^[0-9OoIlBbSsZz.\-+/ ]+$`)
	alternatingRunsRe = regexp.MustCompile(`[A-Za-z]\d[A-Za-z]\d`)
)

// NumericResult is the outcome of normalizing a single raw dimension
// value string.
type NumericResult struct {
	Value             float64
	OK                bool
	ValidationFailed  bool
	ConfidenceFactor  float64 // multiplied into the dimension's running confidence
	Flags             []model.DimensionFlag
}

// NormalizeDimensionValue implements spec.md §4.3 Phase C: value parsing,
// letter/digit disambiguation in numeric contexts, pattern validation, and
// font-specific flagging. It accepts fractions, mixed numbers, and plain
// decimal strings (with space-as-decimal repair).
func NormalizeDimensionValue(raw string) NumericResult {
	res := NumericResult{ConfidenceFactor: 1.0}
	s := strings.TrimSpace(raw)
	if s == "" {
		return res
	}

	original := s
	fixed := applyNumericLetterFixes(s)

	// Mixed fraction: "1 1/2"
	if m := mixedFractionRe.FindStringSubmatch(fixed); m != nil {
		whole, _ := strconv.ParseFloat(m[1], 64)
		num, _ := strconv.ParseFloat(m[2], 64)
		den, _ := strconv.ParseFloat(m[3], 64)
		if den != 0 {
			res.Value = whole + num/den
			res.OK = true
		}
	} else if m := simpleFractionRe.FindStringSubmatch(fixed); m != nil {
		num, _ := strconv.ParseFloat(m[1], 64)
		den, _ := strconv.ParseFloat(m[2], 64)
		if den != 0 {
			res.Value = num / den
			res.OK = true
		}
	} else if m := spaceDecimalRe.FindStringSubmatch(fixed); m != nil {
		// Space-as-decimal: "4 79" -> "4.79"
		v, err := strconv.ParseFloat(m[1]+"."+m[2], 64)
		if err == nil {
			res.Value = v
			res.OK = true
		}
	} else if v, err := strconv.ParseFloat(fixed, 64); err == nil {
		res.Value = v
		res.OK = true
	}

	if !res.OK {
		return res
	}

	res.Flags = append(res.Flags, model.FlagValueNormalized)

	// Pattern validation (step 2): unexpected letters, >3 decimals, or
	// alternating letter/digit runs each flag validation_failed and
	// multiply confidence by 0.3.
	failed := false
	if !allowedNumericCharsRe.MatchString(original) {
		failed = true
	}
	if dm := decimalPlacesRe.FindStringSubmatch(fixed); dm != nil && len(dm[1]) > 3 {
		failed = true
	}
	if alternatingRunsRe.MatchString(original) {
		failed = true
	}
	if failed {
		res.ValidationFailed = true
		res.ConfidenceFactor *= 0.3
	}

	// Font-specific flags (step 3): each multiplies confidence by 0.8.
	if original != fixed {
		res.Flags = append(res.Flags, model.FlagPossibleLetterContam)
		res.ConfidenceFactor *= 0.8
	}
	if isLargeBareInteger(fixed) {
		res.Flags = append(res.Flags, model.FlagPossibleMissingDecimal)
		res.ConfidenceFactor *= 0.8
	}
	if res.Value < 0.001 || res.Value > 10000 {
		res.Flags = append(res.Flags, model.FlagUnlikelyDimensionRange)
		res.ConfidenceFactor *= 0.8
	}

	return res
}

func applyNumericLetterFixes(s string) string {
	var b strings.Builder
	for _, r := range s {
		if repl, ok := numericLetterFixes[r]; ok {
			b.WriteRune(repl)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

var bareIntegerRe = regexp.MustCompile(`^\d+$`)

func isLargeBareInteger(s string) bool {
	if !bareIntegerRe.MatchString(s) {
		return false
	}
	v, err := strconv.ParseFloat(s, 64)
	return err == nil && v >= 100
}
