package workflow

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WriteDocument serializes the workflow document as YAML. A failure here
// is fatal for the run — the engine cannot be launched without it.
func WriteDocument(doc *Document, path string) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal workflow document: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write workflow document: %w", err)
	}
	return nil
}

// WriteSteps persists the canonical step list as YAML for the parser
// process.
func WriteSteps(steps []CanonicalStep, path string) error {
	data, err := yaml.Marshal(steps)
	if err != nil {
		return fmt.Errorf("marshal canonical steps: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write canonical steps: %w", err)
	}
	return nil
}

// ReadSteps loads a canonical step list written by WriteSteps.
func ReadSteps(path string) ([]CanonicalStep, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read canonical steps: %w", err)
	}
	var steps []CanonicalStep
	if err := yaml.Unmarshal(data, &steps); err != nil {
		return nil, fmt.Errorf("decode canonical steps: %w", err)
	}
	return steps, nil
}

// WriteMap persists the correlation map as a JSON object.
func WriteMap(m CorrelationMap, path string) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal correlation map: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write correlation map: %w", err)
	}
	return nil
}

// ReadMap loads a correlation map written by WriteMap.
func ReadMap(path string) (CorrelationMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read correlation map: %w", err)
	}
	var m CorrelationMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode correlation map: %w", err)
	}
	return m, nil
}
