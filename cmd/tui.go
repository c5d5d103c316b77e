package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/rolodex/internal/notify"
	"github.com/desertthunder/rolodex/internal/shared"
	"github.com/desertthunder/rolodex/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI against the configured server.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, shared.ParseLogLevel(r.config.Log.Level))
	r.SetLogger(fileLogger)

	client, err := r.apiClient()
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, client, notify.Match(r.config.UI.Locale), fileLogger)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
