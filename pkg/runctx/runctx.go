// Package runctx carries the per-run identifier and the generated
// artifact paths through the pipeline. Every invocation gets its own
// directory, so concurrent runs and parallel tests never share files.
package runctx

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// GenerateRunID creates a run ID in format YYYYMMDDTHHmmss-xxxxxxxx.
func GenerateRunID() string {
	ts := time.Now().Format("20060102T150405")
	return fmt.Sprintf("%s-%.8s", ts, uuid.NewString())
}

// RunContext holds the run ID, the workspace root, and the directory the
// intermediate artifacts live in for the duration of one invocation.
type RunContext struct {
	RunID     string
	Workspace string
	Dir       string
}

// New creates a run context with a fresh directory under the system temp
// root.
func New(workspace string) (*RunContext, error) {
	return NewInDir(workspace, os.TempDir())
}

// NewInDir creates a run context rooted at baseDir. Tests pass a
// t.TempDir here for isolation.
func NewInDir(workspace, baseDir string) (*RunContext, error) {
	runID := GenerateRunID()
	dir := filepath.Join(baseDir, "superact-"+runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create run directory: %w", err)
	}
	return &RunContext{
		RunID:     runID,
		Workspace: workspace,
		Dir:       dir,
	}, nil
}

// StepsPath is the persisted canonical step list (YAML).
func (c *RunContext) StepsPath() string {
	return filepath.Join(c.Dir, "merged_steps.yaml")
}

// WorkflowPath is the generated workflow document.
func (c *RunContext) WorkflowPath() string {
	return filepath.Join(c.Dir, "dynamic_workflow.yml")
}

// MapPath is the id→index correlation map (JSON).
func (c *RunContext) MapPath() string {
	return filepath.Join(c.Dir, "id_index_map.json")
}

// ResultsPath is the raw results artifact the engine's collection step
// writes. This system never writes it directly.
func (c *RunContext) ResultsPath() string {
	return filepath.Join(c.Dir, "results.json")
}

// TracePath is the JSONL pipeline event trace.
func (c *RunContext) TracePath() string {
	return filepath.Join(c.Dir, "trace.jsonl")
}

// Cleanup removes the run directory and everything in it.
func (c *RunContext) Cleanup() error {
	return os.RemoveAll(c.Dir)
}
