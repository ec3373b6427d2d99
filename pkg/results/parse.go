package results

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/superactdev/superact/pkg/workflow"
	"github.com/tidwall/gjson"
)

// OrderedResult is one entry of the final results array, in original
// caller order. Steps the engine never reported get StatusUnknown.
type OrderedResult struct {
	Index      int            `json:"index"`
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Kind       string         `json:"kind"`
	Status     string         `json:"status"`
	Conclusion string         `json:"conclusion,omitempty"`
	Outputs    map[string]any `json:"outputs,omitempty"`
}

// StatusUnknown marks a step absent from the raw artifact.
const StatusUnknown = "unknown"

// BuildOrdered correlates the raw engine artifact back to the caller's
// step order. The artifact is read with gjson, which tolerates the
// loosely-JSON text the engine's state dump produces; text that cannot
// be read at all simply yields no per-step entries, and every step comes
// back with StatusUnknown rather than failing.
func BuildOrdered(raw []byte, corr workflow.CorrelationMap, steps []workflow.CanonicalStep) []OrderedResult {
	byID := make(map[string]gjson.Result)
	parsed := gjson.ParseBytes(raw)
	if parsed.IsObject() {
		parsed.ForEach(func(key, value gjson.Result) bool {
			byID[key.String()] = value
			return true
		})
	}

	ordered := make([]OrderedResult, 0, len(steps))
	for _, step := range steps {
		index := step.OriginalIndex
		if idx, ok := corr[step.ID]; ok {
			index = idx
		}

		kind := "run"
		if step.Spec.Uses != "" {
			kind = step.Spec.Uses
		}

		r := OrderedResult{
			Index:  index,
			ID:     step.ID,
			Name:   step.DisplayName,
			Kind:   kind,
			Status: StatusUnknown,
		}

		if entry, ok := byID[step.ID]; ok {
			if outcome := entry.Get("outcome"); outcome.Exists() {
				r.Status = outcome.String()
			}
			if conclusion := entry.Get("conclusion"); conclusion.Exists() {
				r.Conclusion = conclusion.String()
			}
			if outputs := entry.Get("outputs"); outputs.IsObject() {
				r.Outputs = make(map[string]any)
				outputs.ForEach(func(key, value gjson.Result) bool {
					r.Outputs[key.String()] = value.Value()
					return true
				})
			}
		}
		ordered = append(ordered, r)
	}

	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })
	return ordered
}

// Marshal renders the ordered results as the final JSON array string.
func Marshal(ordered []OrderedResult) (string, error) {
	data, err := json.Marshal(ordered)
	if err != nil {
		return "", fmt.Errorf("marshal ordered results: %w", err)
	}
	return string(data), nil
}

// Run performs a full parse over the three backing files and returns the
// final JSON array string. cmd/superact-parse wraps it; tests use it as
// an in-process parser.
func Run(resultsPath, mapPath, stepsPath string) (string, error) {
	raw, err := os.ReadFile(resultsPath)
	if err != nil {
		return "", fmt.Errorf("read raw results: %w", err)
	}
	corr, err := workflow.ReadMap(mapPath)
	if err != nil {
		return "", err
	}
	steps, err := workflow.ReadSteps(stepsPath)
	if err != nil {
		return "", err
	}
	return Marshal(BuildOrdered(raw, corr, steps))
}
