package workflow

import (
	"fmt"
)

const (
	// DocumentName labels the generated workflow.
	DocumentName = "Dynamic Workflow Execution"
	// JobName is the single job the engine is asked to run.
	JobName = "dynamic_job"
	// CollectStepID identifies the trailing results-collection step.
	CollectStepID = "collect_results_step"
)

// Document is the generated runnable workflow in the engine's dialect.
type Document struct {
	Name string         `yaml:"name"`
	On   Trigger        `yaml:"on"`
	Jobs map[string]Job `yaml:"jobs"`
}

// Trigger carries the event trigger the engine requires. The push event
// is declared with a null body.
type Trigger struct {
	Push *struct{} `yaml:"push"`
}

// Job is the single workflow job holding the rendered steps.
type Job struct {
	RunsOn string  `yaml:"runs-on"`
	Steps  []Entry `yaml:"steps"`
}

// Entry is one rendered workflow step.
type Entry struct {
	Name             string         `yaml:"name"`
	ID               string         `yaml:"id"`
	If               string         `yaml:"if,omitempty"`
	Uses             string         `yaml:"uses,omitempty"`
	With             map[string]any `yaml:"with,omitempty"`
	Shell            string         `yaml:"shell,omitempty"`
	WorkingDirectory string         `yaml:"working-directory,omitempty"`
	Run              string         `yaml:"run,omitempty"`
}

// Build renders the canonical steps as a workflow document and produces
// the id→index correlation map. Each entry's name embeds the synthetic
// id as a second, human-visible correlation channel that survives a lost
// map file. The trailing collection step always runs and dumps the
// engine's per-step state to resultsPath.
func Build(steps []CanonicalStep, runnerOS, resultsPath string) (*Document, CorrelationMap) {
	corr := make(CorrelationMap, len(steps))
	entries := make([]Entry, 0, len(steps)+1)

	for _, step := range steps {
		corr[step.ID] = step.OriginalIndex

		entry := Entry{
			Name: fmt.Sprintf("%s (%s)", step.DisplayName, step.ID),
			ID:   step.ID,
		}
		if step.Spec.Uses != "" {
			entry.Uses = step.Spec.Uses
			entry.With = step.Spec.With
		} else {
			entry.Shell = step.Spec.EffectiveShell()
			entry.WorkingDirectory = step.Spec.WorkingDirectory
			entry.Run = step.Spec.Run
		}
		entries = append(entries, entry)
	}

	entries = append(entries, collectEntry(resultsPath))

	doc := &Document{
		Name: DocumentName,
		On:   Trigger{},
		Jobs: map[string]Job{
			JobName: {
				RunsOn: runnerOS,
				Steps:  entries,
			},
		},
	}
	return doc, corr
}

// collectEntry builds the terminal step that serializes the engine's
// internal step-state object. The dump is JSON-like but not guaranteed
// valid JSON; the correlation stage is defensive about it.
func collectEntry(resultsPath string) Entry {
	run := fmt.Sprintf("echo 'Writing raw results to %s...' >&2\n", resultsPath) +
		"# Subsequent processing parses this potentially non-standard JSON\n" +
		fmt.Sprintf("printf '%%s\\n' \"${{ toJSON(steps) }}\" > \"%s\"\n", resultsPath) +
		"echo 'Raw results written.' >&2"

	return Entry{
		Name:  "Collect Results",
		ID:    CollectStepID,
		If:    "always()",
		Shell: "bash",
		Run:   run,
	}
}
