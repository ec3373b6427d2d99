// Package runner launches the external workflow engine against a
// generated document and records pipeline events.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// DefaultArchitecture pins the container architecture for reproducible
// runs regardless of host.
const DefaultArchitecture = "linux/amd64"

// Options configure one engine invocation.
type Options struct {
	RunnerOS  string // platform label the workflow's job targets
	Workspace string // directory bound into the engine's containers
	Job       string // job id inside the generated document
}

// Engine runs a generated workflow document to completion and reports
// the process exit status. A non-zero status is data, not an error:
// the pipeline downgrades to best-effort rather than aborting.
type Engine interface {
	Execute(ctx context.Context, workflowPath string, opts Options) (int, error)
}

// ActEngine invokes the act binary as a subprocess, streaming its output
// live.
type ActEngine struct {
	Binary string    // defaults to "act"
	Stdout io.Writer // defaults to os.Stdout
	Stderr io.Writer // defaults to os.Stderr
}

// BuildArgs assembles the act command line for a workflow run.
func (e *ActEngine) BuildArgs(workflowPath string, opts Options) []string {
	return []string{
		"push",
		"-P", opts.RunnerOS + "=-self-hosted",
		"--workflows", workflowPath,
		"--job", opts.Job,
		"--bind",
		"--directory", opts.Workspace,
		"--container-architecture", DefaultArchitecture,
	}
}

// Execute runs the engine and blocks until it terminates. Output is
// streamed, not buffered — this is the dominant latency of the whole
// pipeline and may run arbitrarily long. Failure to launch the binary at
// all is an error; a non-zero exit from a launched run is returned as
// the status.
func (e *ActEngine) Execute(ctx context.Context, workflowPath string, opts Options) (int, error) {
	binary := e.Binary
	if binary == "" {
		binary = "act"
	}
	stdout := e.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := e.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	cmd := exec.CommandContext(ctx, binary, e.BuildArgs(workflowPath, opts)...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), nil
		}
		return 0, fmt.Errorf("execute %s: %w", binary, err)
	}
	return 0, nil
}
