// Package workflow turns ordered step specs into a canonical step list
// with deterministic synthetic identifiers, and renders that list as a
// runnable workflow document plus an id→index correlation map.
package workflow

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/superactdev/superact/pkg/schema"
)

// CanonicalStep is a step spec augmented with its synthetic id, cleaned
// display name, and position in the merged order.
type CanonicalStep struct {
	ID            string          `yaml:"id"             json:"id"`
	DisplayName   string          `yaml:"display_name"   json:"display_name"`
	OriginalIndex int             `yaml:"original_index" json:"original_index"`
	Spec          schema.StepSpec `yaml:"spec"           json:"spec"`
}

// CorrelationMap maps a synthetic step id to its original index. It is
// internal plumbing for result correlation and never reaches the caller.
type CorrelationMap map[string]int

// Merge concatenates preset steps and custom steps (presets first,
// preserving both orders exactly), drops steps whose when: guard is
// false, and assigns each survivor a zero-based index and synthetic id.
// An empty result, a spec with neither uses nor run, or a failing guard
// evaluation aborts the whole run.
func Merge(presetSteps, customSteps []schema.StepSpec, vars map[string]any) ([]CanonicalStep, error) {
	merged := make([]schema.StepSpec, 0, len(presetSteps)+len(customSteps))
	merged = append(merged, presetSteps...)
	merged = append(merged, customSteps...)

	// Validate every spec before filtering so an invalid step aborts the
	// run even when its guard would have dropped it.
	for i, spec := range merged {
		if spec.Uses != "" && spec.Run != "" {
			return nil, fmt.Errorf("invalid step definition at index %d: must contain exactly one of 'uses' or 'run', not both", i)
		}
		if spec.Kind() == schema.KindInvalid {
			return nil, fmt.Errorf("invalid step definition at index %d: must contain 'uses' or 'run'", i)
		}
	}

	var steps []CanonicalStep
	for _, spec := range merged {
		if spec.When != "" {
			keep, err := evalWhen(spec.When, vars)
			if err != nil {
				return nil, err
			}
			if !keep {
				continue
			}
		}
		i := len(steps)
		steps = append(steps, CanonicalStep{
			ID:            StepID(i, spec),
			DisplayName:   displayName(i, spec),
			OriginalIndex: i,
			Spec:          spec,
		})
	}

	if len(steps) == 0 {
		return nil, fmt.Errorf("no actions found after processing presets and action_list")
	}
	return steps, nil
}

// StepID derives the synthetic identifier for a step at the given index.
// The index guarantees uniqueness; the token makes the id readable.
func StepID(index int, spec schema.StepSpec) string {
	if spec.Uses != "" {
		token := strings.SplitN(spec.Uses, "@", 2)[0]
		token = strings.ReplaceAll(token, "/", "-")
		return fmt.Sprintf("action_%d_%s", index, token)
	}
	return fmt.Sprintf("action_%d_run", index)
}

// displayName cleans the caller-supplied name (whitespace collapsed) or
// generates a label when none was given.
func displayName(index int, spec schema.StepSpec) string {
	name := spec.Name
	if name == "" {
		if spec.Uses != "" {
			name = "Run " + spec.Uses
		} else {
			name = fmt.Sprintf("Run script %d", index)
		}
	}
	return strings.Join(strings.Fields(name), " ")
}

// evalWhen evaluates a when: guard against the input variable environment.
func evalWhen(guard string, vars map[string]any) (bool, error) {
	env := vars
	if env == nil {
		env = map[string]any{}
	}
	program, err := expr.Compile(guard, expr.Env(env), expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return false, fmt.Errorf("compile when guard %q: %w", guard, err)
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("eval when guard %q: %w", guard, err)
	}
	result, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("when guard %q did not return bool (got %T)", guard, out)
	}
	return result, nil
}
