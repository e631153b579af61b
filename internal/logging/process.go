package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/userbook/internal/filex"
)

// Options selects where and how the process log is written.
type Options struct {
	// Path of the append-only log file. Empty means stderr.
	Path string
	// Level is one of debug, info, warn, error.
	Level string
	// Format is text or json.
	Format string
}

var (
	mu      sync.RWMutex
	current Logger = NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	initOnce sync.Once
	initErr  error
)

// ErrAlreadyInitialized is returned by Init on every call after the first.
var ErrAlreadyInitialized = errors.New("logging already initialized")

// Init opens the process log and makes it the logger returned by L.
// Only the first call has an effect. The file handle stays open for the
// life of the process.
func Init(opts Options) error {
	called := false
	initOnce.Do(func() {
		called = true
		var l Logger
		l, initErr = newProcessLogger(opts)
		if initErr == nil {
			mu.Lock()
			current = l
			mu.Unlock()
		}
	})
	if !called {
		return ErrAlreadyInitialized
	}
	return initErr
}

// L returns the process logger. Before Init it discards everything.
func L() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Replace swaps the process logger and returns a func restoring the old one.
func Replace(l Logger) (restore func()) {
	mu.Lock()
	prev := current
	current = l
	mu.Unlock()
	return func() {
		mu.Lock()
		current = prev
		mu.Unlock()
	}
}

func newProcessLogger(opts Options) (Logger, error) {
	w, err := openLogWriter(opts.Path)
	if err != nil {
		return nil, err
	}
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	h, err := newHandler(w, opts.Format, lvl)
	if err != nil {
		return nil, err
	}
	return NewSlogLogger(slog.New(h)).With("run_id", uuid.NewString()), nil
}

func openLogWriter(path string) (io.Writer, error) {
	if path == "" {
		return os.Stderr, nil
	}
	if err := filex.EnsureParentDir(path); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

func newHandler(w io.Writer, format string, lvl slog.Level) (slog.Handler, error) {
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.NewTextHandler(w, opts), nil
	case "json":
		return slog.NewJSONHandler(w, opts), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

// ParseLevel maps a level name to a slog.Level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}
