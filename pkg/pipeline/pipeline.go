// Package pipeline drives one full run: load the step sources, merge
// and assign ids, build the workflow document, invoke the engine,
// correlate results, and emit the caller-visible outputs.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/superactdev/superact/pkg/inputs"
	"github.com/superactdev/superact/pkg/output"
	"github.com/superactdev/superact/pkg/presets"
	"github.com/superactdev/superact/pkg/results"
	"github.com/superactdev/superact/pkg/runctx"
	"github.com/superactdev/superact/pkg/runner"
	"github.com/superactdev/superact/pkg/schema"
	"github.com/superactdev/superact/pkg/workflow"
)

// Pipeline wires the run configuration to the two external process
// capabilities. Engine and Parser are interfaces so tests inject fakes.
type Pipeline struct {
	Config *inputs.Config
	Engine runner.Engine
	Parser results.Parser
	RunDir string    // base for the run-scoped directory; empty = system temp
	Stdout io.Writer // result display sink; defaults to os.Stdout
}

// Outcome is what a completed pipeline hands back. Degraded marks a
// best-effort run: the engine exited non-zero but correlation was still
// attempted so partial per-step results survive.
type Outcome struct {
	RunID       string
	ResultsJSON string
	EngineExit  int
	Degraded    bool
}

// Run executes the whole pipeline. Errors returned here are fatal
// configuration or setup failures; once the engine has been launched
// the pipeline always completes with a (possibly empty) result.
func (p *Pipeline) Run(ctx context.Context) (*Outcome, error) {
	cfg := p.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	vars, err := schema.LoadVars(cfg.VarsYAML)
	if err != nil {
		return nil, fmt.Errorf("input 'vars' must be a YAML mapping: %w", err)
	}

	presetSteps, err := presets.NewLoader(cfg.PresetsDir).LoadPresets(cfg.PresetsYAML)
	if err != nil {
		return nil, err
	}
	customSteps, err := presets.LoadCustom(cfg.ActionListYAML)
	if err != nil {
		return nil, err
	}

	steps, err := workflow.Merge(presetSteps, customSteps, vars)
	if err != nil {
		return nil, err
	}
	output.Debugf("Total merged actions: %d", len(steps))

	rc, err := p.newRunContext(cfg.Workspace)
	if err != nil {
		return nil, err
	}

	trace, err := runner.NewTraceWriter(rc.TracePath(), rc.RunID)
	if err != nil {
		return nil, err
	}
	defer trace.Close()
	trace.Event("steps_merged", map[string]any{"count": len(steps)})

	if err := workflow.WriteSteps(steps, rc.StepsPath()); err != nil {
		return nil, err
	}
	doc, corr := workflow.Build(steps, cfg.RunnerOS, rc.ResultsPath())
	if err := workflow.WriteDocument(doc, rc.WorkflowPath()); err != nil {
		return nil, err
	}
	if err := workflow.WriteMap(corr, rc.MapPath()); err != nil {
		return nil, err
	}
	output.Debugf("Generated workflow document at %s", rc.WorkflowPath())
	trace.Event("workflow_written", map[string]any{"entries": len(steps) + 1})

	output.Group("Running act...")
	exit, err := p.Engine.Execute(ctx, rc.WorkflowPath(), runner.Options{
		RunnerOS:  cfg.RunnerOS,
		Workspace: cfg.Workspace,
		Job:       workflow.JobName,
	})
	output.EndGroup()
	if err != nil {
		return nil, fmt.Errorf("failed to execute engine: %w", err)
	}
	degraded := exit != 0
	if degraded {
		output.Warningf("engine exited with code %d. Attempting to process results anyway.", exit)
	}
	trace.Event("engine_finished", map[string]any{"exit": exit})

	correlator := &results.Correlator{Parser: p.Parser}
	resultsJSON := correlator.Process(ctx, rc.ResultsPath(), rc.MapPath(), rc.StepsPath())
	trace.Event("results_correlated", map[string]any{"bytes": len(resultsJSON)})

	p.emit(cfg, resultsJSON)

	return &Outcome{
		RunID:       rc.RunID,
		ResultsJSON: resultsJSON,
		EngineExit:  exit,
		Degraded:    degraded,
	}, nil
}

// emit writes the three caller-visible outputs. Failures here are
// warnings: the result has already been computed and the caller still
// gets it through the remaining channels.
func (p *Pipeline) emit(cfg *inputs.Config, resultsJSON string) {
	if err := output.SetOutput("results", resultsJSON); err != nil {
		output.Warningf("Failed to set action output: %v", err)
	}

	if cfg.DisplayResults {
		stdout := p.Stdout
		if stdout == nil {
			stdout = os.Stdout
		}
		output.Display(stdout, resultsJSON)
	} else {
		output.Debugf("Result display is disabled by the 'display_results' input.")
	}

	if err := output.SaveResults(resultsJSON, cfg.ResultsOutputFile, cfg.Workspace); err != nil {
		output.Warningf("Failed to save results to %s: %v", cfg.ResultsOutputFile, err)
	}
}

func (p *Pipeline) newRunContext(workspace string) (*runctx.RunContext, error) {
	if p.RunDir != "" {
		return runctx.NewInDir(workspace, p.RunDir)
	}
	return runctx.New(workspace)
}
