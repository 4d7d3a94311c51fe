// Package logging builds the process-wide *slog.Logger.
//
// Output always goes to stdout. When a file is configured it is written too,
// through gopkg.in/natefinch/lumberjack.v2, which rotates it by size so a
// long-running server can't fill the disk.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options mirrors the LOG_* configuration keys.
type Options struct {
	Level  string // debug | info | warn | error
	Format string // text | json
	File   string // optional path; empty disables file output
}

// Rotation limits for the log file.
const (
	maxSizeMB  = 50
	maxBackups = 5
	maxAgeDays = 28
)

// New returns the logger and a closer for the log file (a no-op without one).
func New(opts Options) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	var (
		w      io.Writer = os.Stdout
		closer io.Closer = nopCloser{}
	)
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("logging: creating log directory: %w", err)
		}
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
			Compress:   true,
		}
		w = io.MultiWriter(os.Stdout, rotator)
		closer = rotator
	}

	return slog.New(newHandler(w, opts.Format, level)), closer, nil
}

// ParseLevel maps a LOG_LEVEL value to a slog.Level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("logging: unknown level %q", s)
	}
}

func newHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	hopts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, hopts)
	}
	return slog.NewTextHandler(w, hopts)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
