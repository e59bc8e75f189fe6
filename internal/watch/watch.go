// Package watch reports changes to a single file, such as the data file being
// edited by another process.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce groups the burst of events a single save produces.
const DefaultDebounce = 150 * time.Millisecond

type Watcher struct {
	path     string
	debounce time.Duration
	log      *zap.Logger
}

func New(path string, log *zap.Logger) *Watcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{path: filepath.Clean(path), debounce: DefaultDebounce, log: log}
}

// WithDebounce returns a copy using d as the quiet period.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	c := *w
	c.debounce = d
	return &c
}

// Run calls fn once per burst of changes to the file until ctx is done.
// The parent directory is watched so that atomic replace-by-rename is seen.
func (w *Watcher) Run(ctx context.Context, fn func()) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("new watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.log.Debug("watching", zap.String("path", w.path))

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			w.log.Debug("file event", zap.String("op", ev.Op.String()))
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))
		case <-timer.C:
			fn()
		}
	}
}
