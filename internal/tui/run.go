package tui

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Makepad-fr/cardboard/internal/dashboard"
	"github.com/Makepad-fr/cardboard/internal/watch"
)

type Options struct {
	// WatchPath, when set, is watched and every section reloads when it
	// changes on disk.
	WatchPath string
	AltScreen bool
	Input     io.Reader
	Output    io.Writer
	Log       *zap.Logger
}

// Run starts the dashboard and blocks until the user quits or ctx is done.
func Run(ctx context.Context, dash *dashboard.Dashboard, opt Options) error {
	log := opt.Log
	if log == nil {
		log = zap.NewNop()
	}
	popts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opt.AltScreen {
		popts = append(popts, tea.WithAltScreen())
	}
	if opt.Input != nil {
		popts = append(popts, tea.WithInput(opt.Input))
	}
	if opt.Output != nil {
		popts = append(popts, tea.WithOutput(opt.Output))
	}
	p := tea.NewProgram(New(ctx, dash, log), popts...)

	wctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if opt.WatchPath != "" {
		w := watch.New(opt.WatchPath, log)
		go func() {
			if err := w.Run(wctx, func() { p.Send(externalChangeMsg{}) }); err != nil {
				log.Warn("file watch stopped", zap.Error(err))
			}
		}()
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
