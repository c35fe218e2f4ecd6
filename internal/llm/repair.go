package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	trailingCommaRe = regexp.MustCompile(`,\s*([\]}])`)
	unquotedNoneRe  = regexp.MustCompile(`\bNone\b`)
)

// RepairAndParse implements spec.md §4.3 Phase A's response-parsing
// contract: strict JSON first, then a repair pass, then balanced-brace
// object recovery, then a shallow merge if the top level is a list.
func RepairAndParse(raw string) (map[string]any, error) {
	if obj, ok := tryStrictParse(raw); ok {
		return obj, nil
	}

	repaired := raw
	repaired = trimToBraces(repaired)
	repaired = trailingCommaRe.ReplaceAllString(repaired, "$1")
	repaired = unquotedNoneRe.ReplaceAllString(repaired, "null")

	if obj, ok := tryStrictParse(repaired); ok {
		return obj, nil
	}

	recovered, err := recoverDimensionsObjects(raw)
	if err != nil {
		return nil, fmt.Errorf("llm: response unparseable after repair: %w", err)
	}
	return recovered, nil
}

// tryStrictParse parses s as either a JSON object or a JSON array of
// objects (shallow-merged per spec.md §4.3 Phase A's final rule).
func tryStrictParse(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err == nil {
		return obj, true
	}

	var list []map[string]any
	if err := json.Unmarshal([]byte(s), &list); err == nil && len(list) > 0 {
		return shallowMerge(list), true
	}

	return nil, false
}

// shallowMerge concatenates list-valued fields across objects and keeps
// the first object's value for any other field, per "a top-level result
// of size >= 2, shallow-merge into one object (list fields concatenated)".
func shallowMerge(objs []map[string]any) map[string]any {
	merged := make(map[string]any)
	for _, obj := range objs {
		for k, v := range obj {
			if existing, ok := merged[k]; ok {
				if existingList, isList := existing.([]any); isList {
					if newList, isNewList := v.([]any); isNewList {
						merged[k] = append(existingList, newList...)
						continue
					}
				}
				continue
			}
			merged[k] = v
		}
	}
	return merged
}

// trimToBraces trims raw to the substring between the first '{' and the
// last '}', inclusive.
func trimToBraces(raw string) string {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end < 0 || end < start {
		return raw
	}
	return raw[start : end+1]
}

// recoverDimensionsObjects implements the last-resort recovery step:
// locate the "dimensions" key, then balanced-brace-scan the array that
// follows, keeping any object with either a "value" or "coordinates"
// field.
func recoverDimensionsObjects(raw string) (map[string]any, error) {
	idx := strings.Index(raw, `"dimensions"`)
	if idx < 0 {
		return nil, fmt.Errorf("no \"dimensions\" key found in response")
	}
	arrayStart := strings.IndexByte(raw[idx:], '[')
	if arrayStart < 0 {
		return nil, fmt.Errorf("no array found after \"dimensions\" key")
	}
	body := raw[idx+arrayStart:]

	var recovered []any
	depth := 0
	objStart := -1
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '{':
			if depth == 0 {
				objStart = i
			}
			depth++
		case '}':
			depth--
			if depth == 0 && objStart >= 0 {
				candidate := body[objStart : i+1]
				var obj map[string]any
				if err := json.Unmarshal([]byte(candidate), &obj); err == nil {
					if _, hasValue := obj["value"]; hasValue {
						recovered = append(recovered, obj)
					} else if _, hasCoords := obj["coordinates"]; hasCoords {
						recovered = append(recovered, obj)
					}
				}
				objStart = -1
			}
		case ']':
			if depth == 0 && objStart < 0 {
				goto done
			}
		}
	}
done:
	if len(recovered) == 0 {
		return nil, fmt.Errorf("no recoverable dimension objects found")
	}
	return map[string]any{"dimensions": recovered}, nil
}
