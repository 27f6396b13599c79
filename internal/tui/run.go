package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/sorting-hat/internal/reveal"
	"github.com/Veraticus/sorting-hat/internal/session"
	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the sorting TUI for sess until the user quits or ctx is done.
func Run(ctx context.Context, sess *session.Session, opts ...Option) error {
	if sess == nil {
		return fmt.Errorf("session is required")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	var root tea.Model = newModel(cfg, sess)
	if cfg.Frames != nil {
		root = recordingModel{inner: root, frames: cfg.Frames}
	}

	p := tea.NewProgram(root,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	// Timer callbacks run off the event loop, so they post messages
	// instead of touching the model.
	sess.OnChange(func(st reveal.State) {
		p.Send(revealStepMsg{state: st})
	})
	sess.OnComplete(func(r session.Result) {
		p.Send(sortingCompleteMsg{result: r})
	})

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
