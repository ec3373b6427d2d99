package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/superactdev/superact/pkg/inputs"
	"github.com/superactdev/superact/pkg/output"
	"github.com/superactdev/superact/pkg/results"
	"github.com/superactdev/superact/pkg/runner"
)

// fakeEngine stands in for act. It optionally writes a raw step-state
// artifact next to the workflow document, the way the collection step
// would, and reports a fixed exit code.
type fakeEngine struct {
	exitCode int
	artifact string // raw results content; empty = write nothing
	gotPath  string
	gotOpts  runner.Options
}

func (e *fakeEngine) Execute(_ context.Context, workflowPath string, opts runner.Options) (int, error) {
	e.gotPath = workflowPath
	e.gotOpts = opts
	if e.artifact != "" {
		resultsPath := filepath.Join(filepath.Dir(workflowPath), "results.json")
		if err := os.WriteFile(resultsPath, []byte(e.artifact), 0644); err != nil {
			return 0, err
		}
	}
	return e.exitCode, nil
}

// inProcessParser runs the correlation directly instead of spawning the
// parser binary.
type inProcessParser struct{}

func (inProcessParser) Correlate(_ context.Context, resultsPath, mapPath, stepsPath string) (*results.ParseResult, error) {
	out, err := results.Run(resultsPath, mapPath, stepsPath)
	if err != nil {
		return &results.ParseResult{Stderr: []byte(err.Error()), ExitCode: 1}, nil
	}
	return &results.ParseResult{Stdout: []byte(out)}, nil
}

func quietStderr(t *testing.T) *bytes.Buffer {
	t.Helper()
	t.Setenv("GITHUB_OUTPUT", "")
	var buf bytes.Buffer
	old := output.Stderr
	output.Stderr = &buf
	t.Cleanup(func() { output.Stderr = old })
	return &buf
}

func TestRunSingleInlineStep(t *testing.T) {
	quietStderr(t)
	engine := &fakeEngine{artifact: `{"action_0_run": {"outcome": "success", "conclusion": "success"}}`}
	p := &Pipeline{
		Config: &inputs.Config{
			ActionListYAML: "- run: echo hi",
			RunnerOS:       "ubuntu-latest",
			Workspace:      t.TempDir(),
		},
		Engine: engine,
		Parser: inProcessParser{},
		RunDir: t.TempDir(),
	}

	outcome, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if outcome.Degraded {
		t.Error("clean run should not be degraded")
	}
	if engine.gotOpts.Job != "dynamic_job" {
		t.Errorf("engine invoked with wrong job: %q", engine.gotOpts.Job)
	}

	var entries []map[string]any
	if err := json.Unmarshal([]byte(outcome.ResultsJSON), &entries); err != nil {
		t.Fatalf("results not a JSON array: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0]["id"] != "action_0_run" || entries[0]["index"] != float64(0) {
		t.Errorf("unexpected entry: %v", entries[0])
	}
	if entries[0]["status"] != "success" {
		t.Errorf("status not carried through: %v", entries[0])
	}
}

func TestRunWritesAllArtifacts(t *testing.T) {
	quietStderr(t)
	runDir := t.TempDir()
	p := &Pipeline{
		Config: &inputs.Config{
			ActionListYAML: "- uses: actions/checkout@v4\n- run: echo done",
			RunnerOS:       "ubuntu-latest",
			Workspace:      t.TempDir(),
		},
		Engine: &fakeEngine{},
		Parser: inProcessParser{},
		RunDir: runDir,
	}
	outcome, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	dir := filepath.Join(runDir, "superact-"+outcome.RunID)
	for _, name := range []string{"merged_steps.yaml", "dynamic_workflow.yml", "id_index_map.json", "trace.jsonl"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("artifact %s missing: %v", name, err)
		}
	}

	doc, err := os.ReadFile(filepath.Join(dir, "dynamic_workflow.yml"))
	if err != nil {
		t.Fatalf("read workflow: %v", err)
	}
	if !strings.Contains(string(doc), "collect_results_step") {
		t.Error("workflow missing the collection step")
	}
	if !strings.Contains(string(doc), "always()") {
		t.Error("collection step must run unconditionally")
	}
}

func TestRunNoStepSourcesFailsBeforeWriting(t *testing.T) {
	quietStderr(t)
	runDir := t.TempDir()
	p := &Pipeline{
		Config: &inputs.Config{RunnerOS: "ubuntu-latest", Workspace: t.TempDir()},
		Engine: &fakeEngine{},
		Parser: inProcessParser{},
		RunDir: runDir,
	}
	if _, err := p.Run(context.Background()); err == nil {
		t.Fatal("expected a fatal error with no step sources")
	}

	entries, err := os.ReadDir(runDir)
	if err != nil {
		t.Fatalf("read run dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("fatal input error must abort before any file is written, found %d entries", len(entries))
	}
}

func TestRunInvalidStepIsFatal(t *testing.T) {
	quietStderr(t)
	p := &Pipeline{
		Config: &inputs.Config{
			ActionListYAML: "- uses: actions/checkout@v4\n  run: echo both",
			RunnerOS:       "ubuntu-latest",
			Workspace:      t.TempDir(),
		},
		Engine: &fakeEngine{},
		Parser: inProcessParser{},
		RunDir: t.TempDir(),
	}
	if _, err := p.Run(context.Background()); err == nil {
		t.Fatal("a step with both uses and run must abort the run")
	}
}

func TestRunDegradedOnEngineFailure(t *testing.T) {
	stderr := quietStderr(t)
	// Engine fails and never writes the artifact. Correlation falls back
	// to the empty array instead of failing the pipeline.
	p := &Pipeline{
		Config: &inputs.Config{
			ActionListYAML: "- run: exit 1",
			RunnerOS:       "ubuntu-latest",
			Workspace:      t.TempDir(),
		},
		Engine: &fakeEngine{exitCode: 2},
		Parser: inProcessParser{},
		RunDir: t.TempDir(),
	}
	outcome, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("degraded run must still complete: %v", err)
	}
	if !outcome.Degraded || outcome.EngineExit != 2 {
		t.Errorf("expected degraded outcome with exit 2, got %+v", outcome)
	}
	if outcome.ResultsJSON != results.EmptyResult {
		t.Errorf("expected empty array fallback, got %q", outcome.ResultsJSON)
	}
	if !strings.Contains(stderr.String(), "::warning::") {
		t.Error("degraded run should emit a warning")
	}
}

func TestRunSavesResultsFile(t *testing.T) {
	quietStderr(t)
	workspace := t.TempDir()
	p := &Pipeline{
		Config: &inputs.Config{
			ActionListYAML:    "- run: echo hi",
			RunnerOS:          "ubuntu-latest",
			Workspace:         workspace,
			ResultsOutputFile: "out/results.json",
		},
		Engine: &fakeEngine{artifact: `{"action_0_run": {"outcome": "success"}}`},
		Parser: inProcessParser{},
		RunDir: t.TempDir(),
	}
	outcome, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	saved, err := os.ReadFile(filepath.Join(workspace, "out", "results.json"))
	if err != nil {
		t.Fatalf("saved results missing: %v", err)
	}
	if string(saved) != outcome.ResultsJSON {
		t.Error("saved file must match the primary result")
	}
}

func TestRunRejectsTraversalOutputFile(t *testing.T) {
	stderr := quietStderr(t)
	base := t.TempDir()
	workspace := filepath.Join(base, "ws")
	if err := os.MkdirAll(workspace, 0755); err != nil {
		t.Fatal(err)
	}
	p := &Pipeline{
		Config: &inputs.Config{
			ActionListYAML:    "- run: echo hi",
			RunnerOS:          "ubuntu-latest",
			Workspace:         workspace,
			ResultsOutputFile: "../escape.json",
		},
		Engine: &fakeEngine{artifact: `{"action_0_run": {"outcome": "success"}}`},
		Parser: inProcessParser{},
		RunDir: t.TempDir(),
	}

	outcome, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("traversal rejection must not fail the run: %v", err)
	}
	if outcome.ResultsJSON == results.EmptyResult {
		t.Error("primary result must still be produced")
	}
	if _, err := os.Stat(filepath.Join(base, "escape.json")); !os.IsNotExist(err) {
		t.Error("file escaped the workspace")
	}
	if !strings.Contains(stderr.String(), "::error::") {
		t.Error("expected a logged error for the rejected path")
	}
}

func TestRunDisplayToggle(t *testing.T) {
	quietStderr(t)
	var shown bytes.Buffer
	p := &Pipeline{
		Config: &inputs.Config{
			ActionListYAML: "- run: echo hi",
			RunnerOS:       "ubuntu-latest",
			Workspace:      t.TempDir(),
			DisplayResults: true,
		},
		Engine: &fakeEngine{artifact: `{"action_0_run": {"outcome": "success"}}`},
		Parser: inProcessParser{},
		RunDir: t.TempDir(),
		Stdout: &shown,
	}
	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if shown.Len() == 0 {
		t.Error("display enabled but nothing written")
	}

	shown.Reset()
	p.Config.DisplayResults = false
	p.RunDir = t.TempDir()
	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if shown.Len() != 0 {
		t.Error("display disabled but output written")
	}
}

func TestRunWhenGuardFiltersSteps(t *testing.T) {
	quietStderr(t)
	engine := &fakeEngine{artifact: `{"action_0_run": {"outcome": "success"}}`}
	p := &Pipeline{
		Config: &inputs.Config{
			ActionListYAML: "- run: echo always\n- run: echo never\n  when: enabled\n",
			VarsYAML:       "enabled: false",
			RunnerOS:       "ubuntu-latest",
			Workspace:      t.TempDir(),
		},
		Engine: engine,
		Parser: inProcessParser{},
		RunDir: t.TempDir(),
	}
	outcome, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	var entries []map[string]any
	if err := json.Unmarshal([]byte(outcome.ResultsJSON), &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("guarded step should have been dropped, got %d entries", len(entries))
	}
}
