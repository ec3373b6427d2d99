// Package schema defines the Go struct types for step specifications
// and provides strict YAML parsing.
package schema

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// StepKind discriminates the two step variants.
type StepKind string

const (
	// KindUses references a reusable action.
	KindUses StepKind = "uses"
	// KindRun is an inline shell script.
	KindRun StepKind = "run"
	// KindInvalid marks a spec with neither uses nor run.
	KindInvalid StepKind = "invalid"
)

// DefaultShell is used for run steps that don't declare one.
const DefaultShell = "bash"

// StepSpec is one caller-requested unit of work. Exactly one of Uses or
// Run must be set; With is only meaningful with Uses, Shell and
// WorkingDirectory only with Run.
type StepSpec struct {
	Uses             string         `yaml:"uses,omitempty"              json:"uses,omitempty"`
	Run              string         `yaml:"run,omitempty"               json:"run,omitempty"`
	Name             string         `yaml:"name,omitempty"              json:"name,omitempty"`
	With             map[string]any `yaml:"with,omitempty"              json:"with,omitempty"`
	Shell            string         `yaml:"shell,omitempty"             json:"shell,omitempty"`
	WorkingDirectory string         `yaml:"working-directory,omitempty" json:"working-directory,omitempty"`
	When             string         `yaml:"when,omitempty"              json:"when,omitempty"`
}

// Kind reports which variant this spec is. A spec carrying both uses and
// run is classified as uses; domain validation rejects it separately.
func (s *StepSpec) Kind() StepKind {
	switch {
	case s.Uses != "":
		return KindUses
	case s.Run != "":
		return KindRun
	default:
		return KindInvalid
	}
}

// EffectiveShell returns the shell for a run step, defaulting to bash.
func (s *StepSpec) EffectiveShell() string {
	if s.Shell != "" {
		return s.Shell
	}
	return DefaultShell
}

// LoadList parses a YAML sequence of step specs with strict unknown-field
// rejection (yaml.v3 KnownFields). A non-sequence top level is an error.
func LoadList(r io.Reader) ([]StepSpec, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var specs []StepSpec
	if err := dec.Decode(&specs); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode step list: %w", err)
	}
	return specs, nil
}

// LoadListString parses a YAML sequence of step specs from a string.
func LoadListString(s string) ([]StepSpec, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	return LoadList(strings.NewReader(s))
}

// LoadNames parses a YAML sequence of plain preset names.
func LoadNames(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	dec := yaml.NewDecoder(strings.NewReader(s))
	dec.KnownFields(true)

	var names []string
	if err := dec.Decode(&names); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode preset names: %w", err)
	}
	return names, nil
}

// LoadVars parses a YAML mapping of variables for when: guards. Values
// keep their native YAML types so guards can compare booleans and
// numbers directly.
func LoadVars(s string) (map[string]any, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	dec := yaml.NewDecoder(strings.NewReader(s))
	dec.KnownFields(true)

	var vars map[string]any
	if err := dec.Decode(&vars); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode vars: %w", err)
	}
	return vars, nil
}
