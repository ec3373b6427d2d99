// Package output handles the caller-visible surfaces of a run: workflow
// command diagnostics on stderr, the GITHUB_OUTPUT key/value channel,
// styled result display, and the optional results file under the
// workspace.
package output

import (
	"fmt"
	"io"
	"os"
)

// Stderr is the diagnostic sink. Tests swap it to capture output.
var Stderr io.Writer = os.Stderr

// Warningf emits a ::warning:: workflow command.
func Warningf(format string, args ...any) {
	fmt.Fprintf(Stderr, "::warning::"+format+"\n", args...)
}

// Errorf emits an ::error:: workflow command.
func Errorf(format string, args ...any) {
	fmt.Fprintf(Stderr, "::error::"+format+"\n", args...)
}

// Debugf emits a ::debug:: workflow command when runner debugging is on.
func Debugf(format string, args ...any) {
	if os.Getenv("RUNNER_DEBUG") != "1" {
		return
	}
	fmt.Fprintf(Stderr, "::debug::"+format+"\n", args...)
}

// Group opens a collapsible log group.
func Group(title string) {
	fmt.Fprintf(Stderr, "::group::%s\n", title)
}

// EndGroup closes the current log group.
func EndGroup() {
	fmt.Fprintln(Stderr, "::endgroup::")
}
