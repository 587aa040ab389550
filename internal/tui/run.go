package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"auditor/internal/session"
)

type Options struct {
	Context context.Context
	Backend Backend
	Session session.Options
	// Locale drives date display in the history screens.
	Locale string
}

func Run(opts Options) error {
	if opts.Backend == nil {
		return fmt.Errorf("tui backend is required")
	}

	m := newModel(opts)
	progOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		progOpts = append(progOpts, tea.WithContext(opts.Context))
	}
	_, err := tea.NewProgram(m, progOpts...).Run()
	return err
}
