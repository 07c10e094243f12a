// Package app wires together a Session, its history store, and the
// presenter into a runnable Bubble Tea program, following the teacher's
// own Start/Main split.
package app

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"bite/internal/history"
	"bite/internal/presenter"
	"bite/internal/session"
	"bite/internal/system"
)

const (
	defaultRows = 24
	defaultCols = 80
)

// Start runs the TUI program and returns any error.
func Start() error {
	hist, err := history.Open()
	if err != nil {
		system.Logger.Warn("could not open history store", "err", err)
	}
	if hist != nil {
		defer hist.Close()
	}

	var sink session.HistorySink
	if hist != nil {
		sink = hist
	}
	sess := session.New(defaultRows, defaultCols, sink)

	if _, err := tea.NewProgram(presenter.New(sess), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run(); err != nil {
		return err
	}
	return nil
}

// Main is a helper to use as entry-point from cmd.
func Main() {
	if err := Start(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
