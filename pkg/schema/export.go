package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// StepList is the document shape callers submit: an ordered YAML/JSON
// sequence of step specs.
type StepList []StepSpec

// GenerateJSONSchema produces a JSON Schema Draft 2020-12 document for a
// step list from the Go StepSpec struct using invopop/jsonschema.
func GenerateJSONSchema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = false

	s := r.Reflect(&StepList{})
	s.ID = "https://github.com/superactdev/superact/schemas/steplist-v0.json"
	s.Title = "Superact Step List v0"
	s.Description = "Schema for superact action_list and preset documents (Draft 2020-12)"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return data, nil
}
