package output

import (
	"fmt"
	"os"

	"github.com/google/uuid"
)

// SetOutput appends a key/value pair to the GITHUB_OUTPUT file using the
// heredoc form, so multiline values survive the single-line channel. The
// delimiter is randomized per write so a value can never terminate its
// own heredoc.
func SetOutput(name, value string) error {
	path := os.Getenv("GITHUB_OUTPUT")
	if path == "" {
		Warningf("GITHUB_OUTPUT environment variable not set. Cannot set action output.")
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open output file %s: %w", path, err)
	}
	defer f.Close()

	delim := "superact_" + uuid.NewString()
	if _, err := fmt.Fprintf(f, "%s<<%s\n%s\n%s\n", name, delim, value, delim); err != nil {
		return fmt.Errorf("write output %q: %w", name, err)
	}
	return nil
}
