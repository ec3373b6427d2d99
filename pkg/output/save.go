package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SaveResults writes the results JSON to outputFile under workspace.
// Absolute paths and paths containing parent-directory segments are
// rejected with a logged error; the run continues without saving.
// An empty outputFile is a no-op.
func SaveResults(resultsJSON, outputFile, workspace string) error {
	if outputFile == "" {
		return nil
	}

	if filepath.IsAbs(outputFile) || containsDotDot(outputFile) {
		Errorf("'results_output_file' must be a relative path within the workspace and cannot contain '..'.")
		return nil
	}

	target := filepath.Join(workspace, outputFile)
	Debugf("Saving results to file: %s", target)

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("create results directory: %w", err)
	}
	if err := os.WriteFile(target, []byte(resultsJSON), 0644); err != nil {
		return fmt.Errorf("write results file: %w", err)
	}
	fmt.Fprintf(Stderr, "Results saved to %s\n", outputFile)
	return nil
}

// containsDotDot checks path segments, not substrings, so a file named
// "a..b.json" is still accepted.
func containsDotDot(path string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}
