package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rashed-dev/relic/internal/shared"
	"github.com/rashed-dev/relic/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for browsing the collection.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.resources == nil {
		return fmt.Errorf("%w: resource store not initialized", shared.ErrMissingConfig)
	}
	if r.sessions == nil {
		return fmt.Errorf("%w: identity provider not configured", shared.ErrMissingConfig)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/relic-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, r.resources, r.sessions)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
