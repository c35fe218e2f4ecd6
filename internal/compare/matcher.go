package compare

import (
	"math"
	"strings"

	"github.com/MeKo-Tech/drawcheck/internal/model"
)

// MinMatchScore is the minimum accepted deterministic-match score
// (spec.md §9 Open Question: "the 2-point floor is empirical"). Kept as
// a named constant rather than hardcoded at call sites.
const MinMatchScore = 2

// MatchPair is a single master<->check dimension pairing produced by the
// deterministic matcher.
type MatchPair struct {
	MasterIndex int
	CheckIndex  int
	Score       int
}

// DeterministicMatch implements spec.md §4.4 Phase 1: for each master
// dimension, scan unused check dimensions and pick the highest-scoring
// match with score >= MinMatchScore. Ties are broken by first-scanned.
// Matching the same inputs twice always yields identical output
// (spec.md §8 property 5).
func DeterministicMatch(master, check []model.Dimension) (matches []MatchPair, unmatchedMaster, unmatchedCheck []int) {
	used := make([]bool, len(check))

	for mi := range master {
		bestScore := -1
		bestCI := -1
		for ci := range check {
			if used[ci] {
				continue
			}
			score := scorePair(master[mi], check[ci])
			if score > bestScore {
				bestScore = score
				bestCI = ci
			}
		}
		if bestCI >= 0 && bestScore >= MinMatchScore {
			used[bestCI] = true
			matches = append(matches, MatchPair{MasterIndex: mi, CheckIndex: bestCI, Score: bestScore})
		} else {
			unmatchedMaster = append(unmatchedMaster, mi)
		}
	}
	for ci := range check {
		if !used[ci] {
			unmatchedCheck = append(unmatchedCheck, ci)
		}
	}
	return matches, unmatchedMaster, unmatchedCheck
}

// scorePair computes the deterministic match score between a master and
// check dimension, per the factor table in spec.md §4.4 Phase 1. Value
// differences never reduce the score — customization across drawings is
// expected, by design.
func scorePair(m, c model.Dimension) int {
	score := 0

	if m.FeatureType == c.FeatureType {
		score += 6
	} else if strings.Contains(string(m.FeatureType), string(c.FeatureType)) ||
		strings.Contains(string(c.FeatureType), string(m.FeatureType)) {
		score += 4
	}

	if m.Zone != "" && m.Zone == c.Zone {
		score += 3
	}
	if m.ItemNumber != "" && m.ItemNumber == c.ItemNumber {
		score += 3
	}

	if m.Value != nil && c.Value != nil && *m.Value != 0 {
		ratio := math.Abs((*c.Value - *m.Value) / *m.Value)
		switch {
		case ratio < 0.01:
			score += 3
		case ratio < 0.10:
			score += 2
		case ratio < 0.30:
			score += 1
		}
	}

	dist := math.Hypot(float64(m.CoordX-c.CoordX), float64(m.CoordY-c.CoordY))
	switch {
	case dist < 100:
		score += 3
	case dist < 250:
		score += 2
	case dist < 400:
		score += 1
	}

	if m.ToleranceClass != "" && c.ToleranceClass != "" {
		if m.ToleranceClass == c.ToleranceClass {
			score += 2
		} else if equalFold(m.ToleranceClass, c.ToleranceClass) {
			score += 1
		}
	}

	if m.Unit != "" && m.Unit == c.Unit {
		score += 1
	}

	if explicitlyFalse(c, model.FlagOCRVerified) {
		score = deductFloored(score, 2)
	}
	if c.HasFlag(model.FlagValidationFailed) {
		score = deductFloored(score, 2)
	}

	return score
}

// explicitlyFalse reports whether a check dimension carries
// ocr_verified=false, i.e. the OCR cross-check ran and failed (as
// opposed to never having run at all).
func explicitlyFalse(d model.Dimension, f model.DimensionFlag) bool {
	if d.Flags == nil {
		return false
	}
	v, present := d.Flags[f]
	return present && !v
}

func deductFloored(score, penalty int) int {
	score -= penalty
	if score < 0 {
		return 0
	}
	return score
}
