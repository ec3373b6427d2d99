package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	passedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// displayEntry is the subset of a result entry the summary lines need.
type displayEntry struct {
	Index  int    `json:"index"`
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Display writes the collected results to w: a styled per-step summary
// followed by the pretty-printed JSON. A string that fails to parse is
// written raw — the display channel never rejects content the pipeline
// already accepted.
func Display(w io.Writer, resultsJSON string) {
	Group("Superact Collected Results (JSON)")
	defer EndGroup()

	var entries []displayEntry
	if err := json.Unmarshal([]byte(resultsJSON), &entries); err == nil {
		fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Results (%d steps)", len(entries))))
		for _, e := range entries {
			mark := statusMark(e.Status)
			fmt.Fprintf(w, "%s #%d %s %s\n", mark, e.Index, e.Name, mutedStyle.Render("("+e.ID+")"))
		}
	}

	var parsed any
	if err := json.Unmarshal([]byte(resultsJSON), &parsed); err != nil {
		fmt.Fprintln(w, resultsJSON)
		return
	}
	pretty, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		fmt.Fprintln(w, resultsJSON)
		return
	}
	fmt.Fprintln(w, string(pretty))
}

func statusMark(status string) string {
	switch status {
	case "success":
		return passedStyle.Render("✓")
	case "failure", "cancelled":
		return failedStyle.Render("✗")
	default:
		return mutedStyle.Render("·")
	}
}
