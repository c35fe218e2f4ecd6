package ingest

import (
	"regexp"
	"strings"
)

// TextField identifies which string field is being normalized, since the
// correction rules differ per field (spec.md §4.3 Phase B).
type TextField string

const (
	FieldToleranceClass TextField = "tolerance_class"
	FieldDatum          TextField = "datum"
	FieldDescription    TextField = "description"
	FieldMaterial       TextField = "material"
	FieldRevision       TextField = "revision"
)

// datumDigitToLetter is the fixed single-letter digit->letter map applied
// to datum fields and single-character revisions.
var datumDigitToLetter = map[byte]byte{
	'4': 'A',
	'8': 'B',
	'0': 'D',
	'6': 'G',
	'1': 'I',
	'5': 'S',
	'2': 'Z',
	'9': 'g',
}

var toleranceClassLeadingFixRe = regexp.MustCompile(`^([0-9])([A-Za-z].*)$`)

// NormalizeText applies the context-aware letter/digit corrector to a
// single string field, per its declared field kind. It is a pure
// function: the same (field, input) always yields the same output
// (spec.md §8 normalization idempotence).
func NormalizeText(s string, field TextField) string {
	switch field {
	case FieldToleranceClass:
		return normalizeToleranceClass(s)
	case FieldDatum:
		return normalizeDatum(s)
	case FieldDescription, FieldMaterial:
		return normalizeWord(s)
	case FieldRevision:
		if len(s) == 1 {
			return normalizeDatum(s)
		}
		return s
	default:
		return s
	}
}

// normalizeToleranceClass preserves letters and corrects clearly-misread
// leading digits: 6->G, 5->S, 1T->IT.
func normalizeToleranceClass(s string) string {
	if s == "1T" {
		return "IT"
	}
	if m := toleranceClassLeadingFixRe.FindStringSubmatch(s); m != nil {
		lead := m[1][0]
		rest := m[2]
		switch lead {
		case '6':
			return "G" + rest
		case '5':
			return "S" + rest
		}
	}
	return s
}

// normalizeDatum applies the fixed digit->letter map to a single-letter
// datum reference.
func normalizeDatum(s string) string {
	if len(s) != 1 {
		return s
	}
	if repl, ok := datumDigitToLetter[s[0]]; ok {
		return string(repl)
	}
	return s
}

// normalizeWord applies contextual letter/digit fixes inside a word that
// legitimately mixes letters and digits (description/material fields):
// 0 between letters -> O; 1 between uppercase -> I; leading 8 before
// letters -> B; internal 6 between letters -> G. Known alphanumeric part
// codes such as "316L" are left untouched because the digit runs there
// are not sandwiched between letters.
func normalizeWord(s string) string {
	runes := []rune(s)
	out := make([]rune, len(runes))
	copy(out, runes)
	for i, r := range runes {
		switch r {
		case '0':
			if isLetterNeighbor(runes, i) {
				out[i] = 'O'
			}
		case '1':
			if isUpperNeighbor(runes, i) {
				out[i] = 'I'
			}
		case '8':
			if i == 0 && i+1 < len(runes) && isLetter(runes[i+1]) {
				out[i] = 'B'
			}
		case '6':
			if isLetterNeighbor(runes, i) {
				out[i] = 'G'
			}
		}
	}
	return string(out)
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isUpper(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

// isLetterNeighbor reports whether position i sits inside a
// letters-with-an-embedded-digit word: preceded by a letter, and either
// at the end of the word or followed by another letter (as opposed to a
// digit, which marks a genuine numeric suffix like the "316" in "316L").
func isLetterNeighbor(runes []rune, i int) bool {
	if i == 0 || !isLetter(runes[i-1]) {
		return false
	}
	return i+1 >= len(runes) || isLetter(runes[i+1])
}

func isUpperNeighbor(runes []rune, i int) bool {
	if i == 0 || !isUpper(runes[i-1]) {
		return false
	}
	return i+1 >= len(runes) || isLetter(runes[i+1])
}

// trailingAlphaDigitRe recognizes preserved trailing digit+letter
// sequences such as "316L". normalizeWord does not consult it: it leaves
// such sequences unchanged because their digits are not sandwiched
// between letters.
var trailingAlphaDigitRe = regexp.MustCompile(`\d+[A-Z]$`)

func hasPreservedSuffix(s string) bool {
	return trailingAlphaDigitRe.MatchString(strings.ToUpper(s))
}
