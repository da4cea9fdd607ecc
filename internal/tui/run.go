package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/tvremote/internal/event"
)

// Run starts the full-screen remote and blocks until the user quits or
// ctx is cancelled. Any running scan is stopped on exit.
func Run(ctx context.Context, r Remote, h *Haptics) error {
	events := make(chan event.Event, 64)
	unsubscribe := r.Subscribe(func(_ context.Context, e event.Event) {
		select {
		case events <- e:
		default:
		}
	})
	defer unsubscribe()
	defer r.StopDiscovery()

	model := NewModel(ctx, r, events, h.Pulses())
	model.Width = TerminalWidth()

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("terminal remote failed: %w", err)
	}
	return nil
}
