package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// ValidationError represents a single validation error with location context.
type ValidationError struct {
	Phase    string `json:"phase"` // structural, semantic, domain
	Path     string `json:"path"`  // JSON-path-like location (e.g., "steps[0].with")
	Message  string `json:"message"`
	Severity string `json:"severity"` // error, warning
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Phase, e.Path, e.Message)
}

// ValidateListString performs the full 3-phase validation pipeline on a
// YAML-encoded step list.
// Phase 1: Structural (strict YAML decode)
// Phase 2: Semantic (JSON Schema validation)
// Phase 3: Domain (custom Go rules)
func ValidateListString(input string) ([]StepSpec, []*ValidationError) {
	specs, err := LoadListString(input)
	if err != nil {
		return nil, []*ValidationError{{
			Phase:    "structural",
			Message:  err.Error(),
			Severity: "error",
		}}
	}

	var allErrors []*ValidationError
	allErrors = append(allErrors, validateSemantic(specs)...)
	allErrors = append(allErrors, ValidateDomain(specs)...)
	if len(allErrors) > 0 {
		return specs, allErrors
	}
	return specs, nil
}

// validateSemantic validates the step list against the generated JSON Schema.
func validateSemantic(specs []StepSpec) []*ValidationError {
	if len(specs) == 0 {
		return nil
	}
	data, err := json.Marshal(specs)
	if err != nil {
		return []*ValidationError{{
			Phase:    "semantic",
			Message:  fmt.Sprintf("marshal for schema validation: %v", err),
			Severity: "error",
		}}
	}

	schemaJSON, err := GenerateJSONSchema()
	if err != nil {
		return []*ValidationError{{
			Phase:    "semantic",
			Message:  fmt.Sprintf("generate schema: %v", err),
			Severity: "error",
		}}
	}

	var schemaDoc interface{}
	if err := json.Unmarshal(schemaJSON, &schemaDoc); err != nil {
		return []*ValidationError{{
			Phase:    "semantic",
			Message:  fmt.Sprintf("unmarshal schema: %v", err),
			Severity: "error",
		}}
	}

	c := sjsonschema.NewCompiler()
	if err := c.AddResource("steplist-v0.json", schemaDoc); err != nil {
		return []*ValidationError{{
			Phase:    "semantic",
			Message:  fmt.Sprintf("add schema resource: %v", err),
			Severity: "error",
		}}
	}
	sch, err := c.Compile("steplist-v0.json")
	if err != nil {
		return []*ValidationError{{
			Phase:    "semantic",
			Message:  fmt.Sprintf("compile schema: %v", err),
			Severity: "error",
		}}
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return []*ValidationError{{
			Phase:    "semantic",
			Message:  fmt.Sprintf("unmarshal document: %v", err),
			Severity: "error",
		}}
	}

	if err := sch.Validate(doc); err != nil {
		var errs []*ValidationError
		if ve, ok := err.(*sjsonschema.ValidationError); ok {
			for _, cause := range flattenValidationErrors(ve) {
				instancePath := strings.Join(cause.InstanceLocation, "/")
				errs = append(errs, &ValidationError{
					Phase:    "semantic",
					Path:     instancePath,
					Message:  fmt.Sprintf("%v", cause.ErrorKind),
					Severity: "error",
				})
			}
		} else {
			errs = append(errs, &ValidationError{
				Phase:    "semantic",
				Message:  err.Error(),
				Severity: "error",
			})
		}
		return errs
	}
	return nil
}

// flattenValidationErrors recursively collects all leaf validation errors.
func flattenValidationErrors(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var flat []*sjsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, flattenValidationErrors(cause)...)
	}
	return flat
}

// ValidateDomain performs Phase 3 domain-level validation on a step list.
// Returns a slice of errors; empty means valid.
func ValidateDomain(specs []StepSpec) []*ValidationError {
	var errs []*ValidationError

	for i, s := range specs {
		loc := fmt.Sprintf("steps[%d]", i)

		if s.Uses != "" && s.Run != "" {
			errs = append(errs, &ValidationError{
				Phase:    "domain",
				Path:     loc,
				Message:  "step must contain exactly one of 'uses' or 'run', not both",
				Severity: "error",
			})
		}
		if s.Uses == "" && s.Run == "" {
			errs = append(errs, &ValidationError{
				Phase:    "domain",
				Path:     loc,
				Message:  "step must contain 'uses' or 'run'",
				Severity: "error",
			})
		}
		if s.Run != "" && len(s.With) > 0 {
			errs = append(errs, &ValidationError{
				Phase:    "domain",
				Path:     loc + ".with",
				Message:  "'with' is only valid on uses steps",
				Severity: "error",
			})
		}
		if s.Uses != "" && s.Shell != "" {
			errs = append(errs, &ValidationError{
				Phase:    "domain",
				Path:     loc + ".shell",
				Message:  "'shell' is only valid on run steps",
				Severity: "error",
			})
		}
		if s.Uses != "" && s.WorkingDirectory != "" {
			errs = append(errs, &ValidationError{
				Phase:    "domain",
				Path:     loc + ".working-directory",
				Message:  "'working-directory' is only valid on run steps",
				Severity: "error",
			})
		}
		if s.When != "" {
			if _, err := expr.Compile(s.When, expr.AsBool()); err != nil {
				errs = append(errs, &ValidationError{
					Phase:    "domain",
					Path:     loc + ".when",
					Message:  fmt.Sprintf("invalid when expression: %v", err),
					Severity: "error",
				})
			}
		}
	}
	return errs
}

// HasErrors reports whether any entry has severity error (not warning).
func HasErrors(errs []*ValidationError) bool {
	for _, e := range errs {
		if e.Severity != "warning" {
			return true
		}
	}
	return false
}
