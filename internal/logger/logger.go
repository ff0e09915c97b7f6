// Package logger is the process-wide structured logger for coqdoc-jekyll.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
)

// Options configures the logger.
type Options struct {
	Debug  bool      // Log debug messages (per-file stats, rule hits)
	Quiet  bool      // Only log errors; wins over Debug
	JSON   bool      // Emit JSON records instead of text
	Output io.Writer // Destination (default: stderr)
}

var (
	mu      sync.RWMutex
	current *slog.Logger
	level   = new(slog.LevelVar)
)

func init() {
	Init(Options{})
}

// Init replaces the logger.
func Init(opts Options) {
	switch {
	case opts.Quiet:
		level.Set(slog.LevelError)
	case opts.Debug:
		level.Set(slog.LevelDebug)
	default:
		level.Set(slog.LevelInfo)
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}

	mu.Lock()
	current = slog.New(handler)
	mu.Unlock()
}

func get() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Enabled reports whether messages at l are emitted.
func Enabled(l slog.Level) bool {
	return get().Enabled(context.Background(), l)
}

func Debug(msg string, args ...any) { get().Debug(msg, args...) }

func Info(msg string, args ...any) { get().Info(msg, args...) }

func Warn(msg string, args ...any) { get().Warn(msg, args...) }

func Error(msg string, args ...any) { get().Error(msg, args...) }

// With returns a logger that adds args to every record, e.g. the file being
// processed.
func With(args ...any) *slog.Logger {
	return get().With(args...)
}
