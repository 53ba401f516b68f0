// Package tui owns everything that touches the terminal: the scan progress
// display, the results table, the confirmation prompt and the JSON report.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"nodesweep/scanner"
)

var (
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	countStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

type scanDoneMsg struct{}

type scanModel struct {
	spin spinner.Model

	dirs      int
	matches   int
	sized     int
	sizedPath string
	sizing    bool
	done      bool
}

func newScanModel() scanModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle
	return scanModel{spin: sp}
}

func (m scanModel) Init() tea.Cmd {
	return m.spin.Tick
}

func (m scanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case scanner.Progress:
		m.dirs = msg.DirsScanned
		m.matches = msg.Matches
		if msg.SizedCount > 0 {
			m.sizing = true
			m.sized = msg.SizedCount
			m.sizedPath = msg.SizedPath
		}
		return m, nil

	case scanDoneMsg:
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		// The scan itself runs to completion; ctrl+c only tears down the
		// display.
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m scanModel) View() string {
	if m.done {
		return ""
	}

	status := fmt.Sprintf("scanned %s directories, found %s",
		humanize.Comma(int64(m.dirs)),
		countStyle.Render(fmt.Sprintf("%d node_modules", m.matches)))
	if m.sizing {
		status = fmt.Sprintf("sizing %d/%d: %s", m.sized, m.matches, CollapseHome(m.sizedPath))
	}
	return fmt.Sprintf("%s %s\n", m.spin.View(), statusStyle.Render(status))
}

// ShowScanProgress renders a spinner-driven status line until the scanner
// finishes. It blocks; the caller collects results on its own goroutine.
func ShowScanProgress(s *scanner.Scanner) error {
	p := tea.NewProgram(newScanModel())

	go func() {
		for ev := range s.Progress() {
			p.Send(ev)
		}
		p.Send(scanDoneMsg{})
	}()

	_, err := p.Run()
	return err
}
