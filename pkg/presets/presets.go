// Package presets loads the two step-list sources: the curated preset
// catalog on disk and the caller-supplied custom list.
package presets

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/superactdev/superact/pkg/output"
	"github.com/superactdev/superact/pkg/schema"
)

// DefaultDir is where the container image ships its preset catalog.
const DefaultDir = "/presets"

// Loader resolves preset names against a catalog directory.
type Loader struct {
	Dir string
}

// NewLoader returns a loader over dir, falling back to DefaultDir.
func NewLoader(dir string) *Loader {
	if dir == "" {
		dir = DefaultDir
	}
	return &Loader{Dir: dir}
}

// LoadPresets resolves a YAML sequence of preset names to their catalog
// files and concatenates their steps in request order. A malformed names
// document is fatal; an unresolved name or a malformed catalog file is a
// warning and the preset is skipped.
func (l *Loader) LoadPresets(namesYAML string) ([]schema.StepSpec, error) {
	names, err := schema.LoadNames(namesYAML)
	if err != nil {
		return nil, fmt.Errorf("input 'presets' must be a YAML sequence: %w", err)
	}
	if len(names) == 0 {
		return nil, nil
	}
	output.Debugf("Processing presets: %v", names)

	var steps []schema.StepSpec
	for _, name := range names {
		file := filepath.Join(l.Dir, name+".json")
		data, err := os.ReadFile(file)
		if err != nil {
			output.Warningf("Preset file not found for requested preset: %s (expected at %s)", name, file)
			continue
		}
		output.Debugf("Loading preset %q from %s", name, file)

		var presetSteps []schema.StepSpec
		if err := json.Unmarshal(data, &presetSteps); err != nil {
			if json.Valid(data) {
				output.Warningf("Preset file %s does not contain a JSON list.", file)
			} else {
				output.Warningf("Failed to decode JSON from preset file %s: %v", file, err)
			}
			continue
		}
		steps = append(steps, presetSteps...)
	}
	return steps, nil
}

// LoadCustom parses the caller-declared step list. A malformed top-level
// structure is fatal.
func LoadCustom(listYAML string) ([]schema.StepSpec, error) {
	steps, err := schema.LoadListString(listYAML)
	if err != nil {
		return nil, fmt.Errorf("input 'action_list' must be a YAML sequence: %w", err)
	}
	if len(steps) > 0 {
		output.Debugf("Adding %d custom actions from action_list.", len(steps))
	}
	return steps, nil
}
