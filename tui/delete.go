package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"nodesweep/deleter"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// DeletionPrinter returns an OnComplete callback for the deleter that
// prints one line per settled path. Safe for concurrent callers only
// insofar as w serializes writes, which os.Stdout does per call.
func DeletionPrinter(w io.Writer, total int) func(path string, completed int, err error) {
	return func(path string, completed int, err error) {
		if err != nil {
			fmt.Fprintf(w, "%s (%d/%d) %s: %v\n",
				failStyle.Render("failed"), completed, total, CollapseHome(path), err)
			return
		}
		fmt.Fprintf(w, "%s (%d/%d) %s\n",
			okStyle.Render("removed"), completed, total, CollapseHome(path))
	}
}

// PrintDeletionSummary writes the final removed/failed line.
func PrintDeletionSummary(w io.Writer, sum deleter.Summary, freedBytes int64) {
	fmt.Fprintf(w, "\nremoved: %d, failed: %d, freed: %s\n",
		sum.Removed, sum.Failed, humanize.Bytes(uint64(freedBytes)))
	for _, f := range sum.Failures {
		fmt.Fprintf(w, "  %s %s: %s\n", failStyle.Render("!"), CollapseHome(f.Path), f.Error)
	}
}
