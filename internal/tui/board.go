package tui

import (
	"context"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/warrenleitner/moti-do-sub001/internal/config"
	"github.com/warrenleitner/moti-do-sub001/internal/engine"
	"github.com/warrenleitner/moti-do-sub001/internal/scoring"
)

// RunBoard runs the interactive board until the user quits. When loader is
// non-nil, edits to its config file re-score the board live.
func RunBoard(ctx context.Context, svc *engine.Service, loader *config.Loader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newBoardModel(ctx, svc, time.Now)
	p := tea.NewProgram(m, tea.WithOutput(out))

	if loader != nil {
		err := loader.Watch(ctx, func(_ *scoring.Config, err error) {
			p.Send(configChangedMsg{err: err})
		})
		if err != nil {
			return err
		}
	}

	_, err := p.Run()
	return err
}
