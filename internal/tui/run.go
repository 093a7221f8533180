package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mysqlx-shell/core/mysqlx"
)

// Run drives the REPL's Bubble Tea program to completion (the teacher's
// main.go does the equivalent tea.NewProgram(...).Run() for its own model).
func Run(session *mysqlx.Session) error {
	p := tea.NewProgram(New(session), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: run: %w", err)
	}
	return nil
}
