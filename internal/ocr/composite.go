package ocr

import (
	"context"
	"log/slog"

	"github.com/MeKo-Tech/drawcheck/internal/model"
)

// CompositeEngine runs the traditional and CNN detectors and
// concatenates their results, per spec.md §4.2: "duplicate positions
// kept — downstream resolves them by bounding box proximity". Each
// detector's failure is logged and treated as an empty result; the
// combined list is the union of what succeeded (spec.md §4.2 "Failure
// semantics").
type CompositeEngine struct {
	Traditional Engine
	CNN         Engine
	UseCNN      bool

	// ConsensusThreshold is ocr_consensus_threshold (spec.md §6): the
	// minimum number of nearby detections (within mergeThresholdPct of
	// each other) required before a region is kept. A value <= 1
	// disables consensus filtering entirely, keeping every detection
	// from every engine as before.
	ConsensusThreshold int
}

// NewCompositeEngine builds a CompositeEngine. cnn may be nil (or
// useCNN false) to disable the CNN pass, matching the USE_CNN_OCR
// feature flag (spec.md §6). Consensus filtering defaults to disabled;
// set ConsensusThreshold on the returned engine to enable it.
func NewCompositeEngine(traditional, cnn Engine, useCNN bool) *CompositeEngine {
	return &CompositeEngine{Traditional: traditional, CNN: cnn, UseCNN: useCNN}
}

func (e *CompositeEngine) Detect(ctx context.Context, img *model.Image) ([]model.TextRegion, error) {
	var all []model.TextRegion

	if e.Traditional != nil {
		regions, err := e.Traditional.Detect(ctx, img)
		if err != nil {
			slog.Warn("traditional ocr engine failed, continuing with empty result", "error", err)
		} else {
			all = append(all, regions...)
		}
	}

	if e.UseCNN && e.CNN != nil {
		regions, err := e.CNN.Detect(ctx, img)
		if err != nil {
			slog.Warn("cnn ocr engine failed, continuing with empty result", "error", err)
		} else {
			all = append(all, regions...)
		}
	}

	SortRegions(all)

	if e.ConsensusThreshold > 1 {
		all = filterByConsensus(all, e.ConsensusThreshold)
	}

	return all, nil
}

// filterByConsensus groups detections by bounding-box proximity (the
// same closeEnough test GroupRegions uses) and drops any group with
// fewer than threshold members, then collapses each surviving group
// into a single region. This is the bounding-box-proximity resolution
// spec.md §4.2 defers to "downstream", gated by ocr_consensus_threshold
// so a lone traditional-engine hit on a faint mark doesn't survive into
// the comparison stage unless enough detections agree it's real.
func filterByConsensus(regions []model.TextRegion, threshold int) []model.TextRegion {
	used := make([]bool, len(regions))
	var kept []model.TextRegion

	for i := range regions {
		if used[i] {
			continue
		}
		group := []model.TextRegion{regions[i]}
		used[i] = true
		for j := i + 1; j < len(regions); j++ {
			if used[j] {
				continue
			}
			if closeEnough(regions[i], regions[j]) {
				group = append(group, regions[j])
				used[j] = true
			}
		}
		if len(group) >= threshold {
			kept = append(kept, mergeGroup(group))
		}
	}

	SortRegions(kept)
	return kept
}
