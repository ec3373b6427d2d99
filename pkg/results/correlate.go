// Package results turns the engine's raw step-state artifact back into a
// results array ordered by the caller's original step positions. The
// engine's output format is not contractually well-formed, so every
// boundary crossing re-validates: the external parser tolerates
// malformed engine output, and its own output is gated through a local
// JSON validity check before anything reaches the caller.
package results

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/superactdev/superact/pkg/output"
)

// EmptyResult is the universal, contractually stable fallback for every
// correlation failure mode.
const EmptyResult = "[]"

// ParseResult holds the buffered output of one parser invocation.
type ParseResult struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Parser runs the external result-parsing process over the three backing
// files and returns its buffered output.
type Parser interface {
	Correlate(ctx context.Context, resultsPath, mapPath, stepsPath string) (*ParseResult, error)
}

// ExecParser invokes the superact-parse binary as a subprocess. Output
// is fully buffered, not streamed, because it must be validated as a
// whole before use.
type ExecParser struct {
	Binary string // defaults to "superact-parse"
}

// Correlate runs the parser with the three file paths as arguments.
func (p *ExecParser) Correlate(ctx context.Context, resultsPath, mapPath, stepsPath string) (*ParseResult, error) {
	binary := p.Binary
	if binary == "" {
		binary = "superact-parse"
	}

	cmd := exec.CommandContext(ctx, binary, resultsPath, mapPath, stepsPath)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return nil, fmt.Errorf("execute parser %q: %w", binary, err)
		}
	}
	return &ParseResult{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: exitCode,
	}, nil
}

// Correlator reconstructs the caller-ordered results array.
type Correlator struct {
	Parser Parser
}

// Process returns the final results JSON array string. All three backing
// files must exist; if any is missing the correlator short-circuits to
// the empty array with a warning per missing file — it never attempts
// partial correlation. The parser's output is gated through a JSON
// validity check, and every failure mode falls back to EmptyResult.
func (c *Correlator) Process(ctx context.Context, resultsPath, mapPath, stepsPath string) string {
	missing := missingFiles(resultsPath, mapPath, stepsPath)
	if len(missing) > 0 {
		output.Warningf("One or more required files for results processing not found. Setting empty results.")
		for _, path := range missing {
			output.Warningf("Missing: %s", path)
		}
		return EmptyResult
	}

	output.Debugf("Processing results using parser process...")
	pr, err := c.Parser.Correlate(ctx, resultsPath, mapPath, stepsPath)
	if err != nil {
		output.Errorf("Error running result parser: %v", err)
		return EmptyResult
	}
	if pr.ExitCode != 0 {
		output.Errorf("Result parser failed with exit code %d.", pr.ExitCode)
		fmt.Fprintf(output.Stderr, "Parser stdout:\n%s\n", pr.Stdout)
		fmt.Fprintf(output.Stderr, "Parser stderr:\n%s\n", pr.Stderr)
		return EmptyResult
	}
	if len(pr.Stderr) > 0 {
		output.Debugf("Parser stderr:\n%s", pr.Stderr)
	}

	candidate := strings.TrimSpace(string(pr.Stdout))
	if !json.Valid([]byte(candidate)) {
		output.Errorf("Constructed results JSON is INVALID after parser processing. Falling back to empty array.")
		fmt.Fprintf(output.Stderr, "Invalid JSON received: %s\n", candidate)
		return EmptyResult
	}
	output.Debugf("Successfully processed results.")
	return candidate
}

// missingFiles returns the subset of paths that don't exist as regular
// files, in argument order.
func missingFiles(paths ...string) []string {
	var missing []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			missing = append(missing, path)
		}
	}
	return missing
}
