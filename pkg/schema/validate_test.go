package schema

import (
	"strings"
	"testing"
)

// TestValidateBothUsesAndRun checks that a step carrying both variants is rejected.
func TestValidateBothUsesAndRun(t *testing.T) {
	specs := []StepSpec{
		{Uses: "actions/checkout@v4", Run: "echo hi"},
	}
	errs := ValidateDomain(specs)
	if len(errs) == 0 {
		t.Fatal("expected error for step with both uses and run")
	}
}

// TestValidateNeitherUsesNorRun checks that an empty variant is rejected.
func TestValidateNeitherUsesNorRun(t *testing.T) {
	specs := []StepSpec{
		{Name: "just a label"},
	}
	errs := ValidateDomain(specs)
	if len(errs) == 0 {
		t.Fatal("expected error for step with neither uses nor run")
	}
	found := false
	for _, e := range errs {
		if strings.Contains(e.Error(), "uses") && strings.Contains(e.Error(), "run") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected uses/run error, got: %v", errs)
	}
}

// TestValidateWithOnRunStep ensures 'with' is rejected on run steps.
func TestValidateWithOnRunStep(t *testing.T) {
	specs := []StepSpec{
		{Run: "echo hi", With: map[string]any{"key": "value"}},
	}
	errs := ValidateDomain(specs)
	if len(errs) == 0 {
		t.Fatal("expected error for with on run step")
	}
}

// TestValidateShellOnUsesStep ensures 'shell' is rejected on uses steps.
func TestValidateShellOnUsesStep(t *testing.T) {
	specs := []StepSpec{
		{Uses: "actions/checkout@v4", Shell: "bash"},
	}
	errs := ValidateDomain(specs)
	if len(errs) == 0 {
		t.Fatal("expected error for shell on uses step")
	}
}

// TestValidateBadWhenExpression checks that when: guards must compile.
func TestValidateBadWhenExpression(t *testing.T) {
	specs := []StepSpec{
		{Run: "echo hi", When: "env ==="},
	}
	errs := ValidateDomain(specs)
	if len(errs) == 0 {
		t.Fatal("expected error for invalid when expression")
	}
	found := false
	for _, e := range errs {
		if strings.Contains(e.Error(), "when") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected when error, got: %v", errs)
	}
}

// TestValidateValidList confirms a well-formed list passes all phases.
func TestValidateValidList(t *testing.T) {
	input := `
- uses: actions/checkout@v4
  with:
    fetch-depth: 1
- name: Say hello
  run: echo hello
  working-directory: sub/dir
  when: env == "prod"
`
	specs, errs := ValidateListString(input)
	if len(errs) > 0 {
		t.Fatalf("expected no errors, got: %v", errs)
	}
	if len(specs) != 2 {
		t.Errorf("expected 2 specs, got %d", len(specs))
	}
}

// TestValidateStructuralFailure confirms malformed YAML stops at phase 1.
func TestValidateStructuralFailure(t *testing.T) {
	_, errs := ValidateListString("- run: [unclosed")
	if len(errs) == 0 {
		t.Fatal("expected structural error")
	}
	if errs[0].Phase != "structural" {
		t.Errorf("expected structural phase, got %s", errs[0].Phase)
	}
}

func TestHasErrors(t *testing.T) {
	warnOnly := []*ValidationError{{Severity: "warning"}}
	if HasErrors(warnOnly) {
		t.Error("warnings alone should not count as errors")
	}
	withErr := append(warnOnly, &ValidationError{Severity: "error"})
	if !HasErrors(withErr) {
		t.Error("expected HasErrors true")
	}
}
