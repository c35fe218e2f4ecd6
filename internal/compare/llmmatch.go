package compare

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MeKo-Tech/drawcheck/internal/llm"
	"github.com/MeKo-Tech/drawcheck/internal/model"
)

// matchPrompt implements spec.md §4.4 Phase 2's instruction: "a matching
// prompt that emphasizes feature type and position over value".
const matchPrompt = `You are matching dimensions between a master engineering drawing and a revised check drawing. Both lists below are dimensions that could not be matched deterministically. Match by feature_type and grid position, not by value (values are expected to change between revisions).

Return a JSON array of objects: {"master_index", "check_index", "confidence", "reasoning"}, where master_index/check_index are 0-based positions into the lists below. Only include pairs you believe correspond to the same physical feature.

Master dimensions:
%s

Check dimensions:
%s`

// llmCandidate mirrors the wire shape of one LLM match proposal.
type llmCandidate struct {
	MasterIndex int     `json:"master_index"`
	CheckIndex  int     `json:"check_index"`
	Confidence  float64 `json:"confidence"`
	Reasoning   string  `json:"reasoning"`
}

// matchSummary is the trimmed per-dimension view sent to the LLM:
// feature type and grid position only, per the prompt's "not by value"
// instruction.
type matchSummary struct {
	Index       int    `json:"index"`
	FeatureType string `json:"feature_type"`
	GridRef     string `json:"grid_ref"`
	Zone        string `json:"zone"`
}

// ProviderMatcher adapts an llm.Provider to the Comparator's LLMMatcher
// contract (spec.md §4.4 Phase 2). Kept in internal/compare, not
// internal/llm, so the Comparator's only dependency on the RPC layer is
// this one adapter the pipeline wires in.
type ProviderMatcher struct {
	Provider llm.Provider
}

// NewProviderMatcher constructs a ProviderMatcher.
func NewProviderMatcher(provider llm.Provider) *ProviderMatcher {
	return &ProviderMatcher{Provider: provider}
}

// MatchDimensions implements LLMMatcher.
func (m *ProviderMatcher) MatchDimensions(ctx context.Context, master, check []model.Dimension) ([]LLMMatchCandidate, error) {
	masterJSON, err := json.Marshal(summarize(master))
	if err != nil {
		return nil, fmt.Errorf("compare: marshal master summaries: %w", err)
	}
	checkJSON, err := json.Marshal(summarize(check))
	if err != nil {
		return nil, fmt.Errorf("compare: marshal check summaries: %w", err)
	}

	prompt := fmt.Sprintf(matchPrompt, string(masterJSON), string(checkJSON))
	opts := llm.Options{Temperature: 0, ResponseJSON: true, SafetyOff: true}

	raw, err := m.Provider.GenerateJSON(ctx, nil, prompt, opts)
	if err != nil {
		return nil, fmt.Errorf("compare: match rpc failed: %w", err)
	}

	candidates, err := decodeCandidates(raw)
	if err != nil {
		return nil, fmt.Errorf("compare: match response unparseable: %w", err)
	}
	return candidates, nil
}

func summarize(dims []model.Dimension) []matchSummary {
	out := make([]matchSummary, len(dims))
	for i, d := range dims {
		out[i] = matchSummary{Index: i, FeatureType: string(d.FeatureType), GridRef: d.GridRef, Zone: d.Zone}
	}
	return out
}

// decodeCandidates parses a top-level JSON array first, then falls back
// to llm.RepairAndParse's object-shaped recovery for a response wrapped
// in {"matches": [...]}.
func decodeCandidates(raw string) ([]LLMMatchCandidate, error) {
	var arr []llmCandidate
	if err := json.Unmarshal([]byte(raw), &arr); err == nil {
		return toLLMMatchCandidates(arr), nil
	}

	repaired, err := llm.RepairAndParse(raw)
	if err != nil {
		return nil, err
	}
	matches, ok := repaired["matches"].([]any)
	if !ok {
		return nil, fmt.Errorf("no \"matches\" array in repaired response")
	}
	return toLLMMatchCandidates(decodeRawCandidates(matches)), nil
}

func toLLMMatchCandidates(raw []llmCandidate) []LLMMatchCandidate {
	out := make([]LLMMatchCandidate, len(raw))
	for i, c := range raw {
		out[i] = LLMMatchCandidate{
			MasterIndex: c.MasterIndex, CheckIndex: c.CheckIndex,
			Confidence: c.Confidence, Reasoning: c.Reasoning,
		}
	}
	return out
}

func decodeRawCandidates(arr []any) []llmCandidate {
	var out []llmCandidate
	for _, a := range arr {
		m, ok := a.(map[string]any)
		if !ok {
			continue
		}
		var c llmCandidate
		if v, ok := m["master_index"].(float64); ok {
			c.MasterIndex = int(v)
		}
		if v, ok := m["check_index"].(float64); ok {
			c.CheckIndex = int(v)
		}
		if v, ok := m["confidence"].(float64); ok {
			c.Confidence = v
		}
		if v, ok := m["reasoning"].(string); ok {
			c.Reasoning = v
		}
		out = append(out, c)
	}
	return out
}
