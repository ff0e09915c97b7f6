// Package watch rebuilds the site when the project or its sources change.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/cogumbreiro/coqdoc-jekyll/internal/logger"
)

// DefaultDebounce groups the bursts of events editors produce on save.
const DefaultDebounce = 300 * time.Millisecond

// InputsFunc lists the files to watch. It is called again after every
// rebuild so edits to the project descriptor take effect.
type InputsFunc func() ([]string, error)

// BuildFunc rebuilds the site.
type BuildFunc func(ctx context.Context) error

// Watcher triggers rebuilds on file changes.
type Watcher struct {
	inputs   InputsFunc
	build    BuildFunc
	debounce time.Duration

	watched map[string]bool // absolute file paths
	dirs    map[string]bool // directories registered with fsnotify
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a rebuild.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// New creates a Watcher.
func New(inputs InputsFunc, build BuildFunc, opts ...Option) *Watcher {
	w := &Watcher{
		inputs:   inputs,
		build:    build,
		debounce: DefaultDebounce,
		watched:  make(map[string]bool),
		dirs:     make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run blocks until ctx is done. Build failures are logged and watching
// continues; failures of the watcher itself are returned.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	if err := w.refresh(fw); err != nil {
		return err
	}
	logger.Info("watching for changes", "files", len(w.watched))

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.relevant(ev) {
				logger.Debug("change detected", "file", ev.Name, "op", ev.Op.String())
				timer.Reset(w.debounce)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)

		case <-timer.C:
			if err := w.build(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Error("rebuild failed", "error", err)
			} else {
				logger.Info("rebuilt")
			}
			if err := w.refresh(fw); err != nil {
				logger.Error("refresh watch list", "error", err)
			}
		}
	}
}

// refresh re-reads the input list and registers any new directories.
// Directories are watched rather than files so that editors replacing a
// file by rename are still noticed.
func (w *Watcher) refresh(fw *fsnotify.Watcher) error {
	files, err := w.inputs()
	if err != nil {
		return err
	}

	w.watched = make(map[string]bool, len(files))
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		w.watched[abs] = true

		dir := filepath.Dir(abs)
		if w.dirs[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		w.dirs[dir] = true
	}
	return nil
}

// relevant reports whether ev changes the content of a watched file.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	return w.watched[abs]
}
