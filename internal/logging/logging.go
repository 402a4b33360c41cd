// Package logging sets up the process-wide structured logger once at
// startup. Like the rest of this supervisor's global state (bus bindings,
// the panic hook), it is never reinitialized.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Init configures zerolog's global logger: a console writer to stderr,
// best-effort duplicated to a file under dir named after the current run.
// If dir can't be created, logging falls back to stderr only, matching
// the "switched to fallback logging method" behavior of file-logger setups
// that can't get a writable directory.
func Init(dir string, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}

	writer := io.Writer(console)
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err == nil {
			name := fmt.Sprintf("%s.log", time.Now().UTC().Format("20060102T150405Z"))
			if f, err := os.Create(filepath.Join(dir, name)); err == nil {
				writer = zerolog.MultiLevelWriter(console, f)
			}
		}
	}

	logger := zerolog.New(writer).With().Timestamp().Logger()
	globalLogger = logger
	return logger
}

// globalLogger is the logger most recently configured by Init, so the
// panic hook can log without every call site threading a logger through.
var globalLogger = zerolog.Nop()

// Global returns the logger configured by the most recent call to Init (or
// a no-op logger if Init was never called).
func Global() zerolog.Logger { return globalLogger }
