package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"igsaved/pkg/exporter"
)

// Outcome is how the run shown by the TUI ended
type Outcome struct {
	Summary *exporter.Summary
	// Err is the run's fatal error, if any
	Err error
}

// Run shows the progress of an export until its event channel closes. When
// the program stops early the run is cancelled and its remaining events are
// drained, so the returned summary is always the run's own.
func Run(events <-chan exporter.Event, cancel context.CancelFunc, opts ...tea.ProgramOption) (Outcome, error) {
	model := NewModel(events, cancel)
	if len(opts) == 0 {
		opts = []tea.ProgramOption{tea.WithAltScreen()}
	}

	final, uiErr := tea.NewProgram(model, opts...).Run()
	if m, ok := final.(*Model); ok && m != nil {
		model = m
	}

	if !model.Finished() || model.Summary() == nil {
		if cancel != nil {
			cancel()
		}
		for ev := range events {
			if ev.Kind == exporter.EventFinished {
				model.handleEvent(ev)
			}
		}
	}

	return Outcome{Summary: model.Summary(), Err: model.Err()}, uiErr
}
