package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"nodesweep/scanner"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	sizeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Align(lipgloss.Right)
	pathStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	totalStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
)

// CollapseHome shortens paths under the user's home directory to ~/...
func CollapseHome(p string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if after, ok := strings.CutPrefix(p, home); ok {
		return "~" + after
	}
	return p
}

func formatSize(item *scanner.NodeModuleInfo) string {
	if item.SizeUnknown {
		return "?"
	}
	return humanize.Bytes(uint64(item.Size))
}

// RenderTable renders the sorted results plus a totals line. The caller
// sorts; this only draws.
func RenderTable(items []*scanner.NodeModuleInfo, totalBytes int64) string {
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("SIZE", "LAST MODIFIED", "PATH").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			if col == 0 {
				return sizeStyle.Padding(0, 1)
			}
			return pathStyle.Padding(0, 1)
		})

	for _, item := range items {
		modified := ""
		if !item.LastModifiedAt.IsZero() {
			modified = humanize.Time(item.LastModifiedAt)
		}
		tbl.Row(formatSize(item), modified, CollapseHome(item.Path))
	}

	total := totalStyle.Render(fmt.Sprintf("%d node_modules, %s total",
		len(items), humanize.Bytes(uint64(totalBytes))))
	return tbl.Render() + "\n" + total + "\n"
}
