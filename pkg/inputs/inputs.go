// Package inputs reads the run configuration from the environment-style
// INPUT_* keys an action runner provides, with CLI flags layered on top
// by the command.
package inputs

import (
	"fmt"
	"os"
	"strings"
)

// Default values for optional inputs.
const (
	DefaultRunnerOS = "ubuntu-latest"
)

// Config is the resolved run configuration.
type Config struct {
	PresetsYAML       string // YAML sequence of preset names
	ActionListYAML    string // YAML sequence of step specs
	VarsYAML          string // YAML mapping feeding when: guards
	RunnerOS          string
	ResultsOutputFile string // workspace-relative, optional
	DisplayResults    bool
	Workspace         string
	PresetsDir        string // catalog override, empty = built-in default
	EngineBinary      string // engine override, empty = "act"
	ParserBinary      string // parser override, empty = "superact-parse"
}

// FromEnv builds a Config from the process environment.
func FromEnv() *Config {
	return &Config{
		PresetsYAML:       os.Getenv("INPUT_PRESETS"),
		ActionListYAML:    os.Getenv("INPUT_ACTION_LIST"),
		VarsYAML:          os.Getenv("INPUT_VARS"),
		RunnerOS:          envOr("INPUT_RUNNER_OS", DefaultRunnerOS),
		ResultsOutputFile: os.Getenv("INPUT_RESULTS_OUTPUT_FILE"),
		DisplayResults:    parseBool(envOr("INPUT_DISPLAY_RESULTS", "true")),
		Workspace:         envOr("GITHUB_WORKSPACE", "."),
		PresetsDir:        os.Getenv("SUPERACT_PRESETS_DIR"),
		EngineBinary:      os.Getenv("SUPERACT_ENGINE"),
		ParserBinary:      os.Getenv("SUPERACT_PARSER"),
	}
}

// Validate enforces the one hard input constraint: at least one step
// source must be provided.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.PresetsYAML) == "" && strings.TrimSpace(c.ActionListYAML) == "" {
		return fmt.Errorf("at least one of 'presets' or 'action_list' inputs must be provided")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBool(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "true")
}
