package inputs

import "testing"

func clearInputEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"INPUT_PRESETS", "INPUT_ACTION_LIST", "INPUT_VARS",
		"INPUT_RUNNER_OS", "INPUT_RESULTS_OUTPUT_FILE",
		"INPUT_DISPLAY_RESULTS", "GITHUB_WORKSPACE",
		"SUPERACT_PRESETS_DIR", "SUPERACT_ENGINE", "SUPERACT_PARSER",
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearInputEnv(t)
	c := FromEnv()
	if c.RunnerOS != DefaultRunnerOS {
		t.Errorf("expected default runner os, got %q", c.RunnerOS)
	}
	if !c.DisplayResults {
		t.Error("display should default to true")
	}
	if c.Workspace != "." {
		t.Errorf("expected workspace '.', got %q", c.Workspace)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	clearInputEnv(t)
	t.Setenv("INPUT_RUNNER_OS", "ubuntu-22.04")
	t.Setenv("INPUT_DISPLAY_RESULTS", "false")
	t.Setenv("GITHUB_WORKSPACE", "/work")
	t.Setenv("INPUT_ACTION_LIST", "- run: echo hi")

	c := FromEnv()
	if c.RunnerOS != "ubuntu-22.04" {
		t.Errorf("runner os override lost: %q", c.RunnerOS)
	}
	if c.DisplayResults {
		t.Error("display override lost")
	}
	if c.Workspace != "/work" {
		t.Errorf("workspace override lost: %q", c.Workspace)
	}
}

func TestValidateRequiresOneSource(t *testing.T) {
	c := &Config{}
	if err := c.Validate(); err == nil {
		t.Fatal("expected error with no step sources")
	}
	c.PresetsYAML = "[lint]"
	if err := c.Validate(); err != nil {
		t.Errorf("presets alone should satisfy: %v", err)
	}
	c = &Config{ActionListYAML: "- run: echo hi"}
	if err := c.Validate(); err != nil {
		t.Errorf("action list alone should satisfy: %v", err)
	}
}

func TestValidateWhitespaceOnlyIsEmpty(t *testing.T) {
	c := &Config{PresetsYAML: "   \n", ActionListYAML: "\t"}
	if err := c.Validate(); err == nil {
		t.Fatal("whitespace-only inputs must not count as provided")
	}
}

func TestParseBool(t *testing.T) {
	if !parseBool("TRUE") || !parseBool(" true ") {
		t.Error("case/space insensitive true failed")
	}
	if parseBool("yes") || parseBool("1") || parseBool("") {
		t.Error("only 'true' should parse as true")
	}
}
