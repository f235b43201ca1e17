package logger

import (
	"log/slog"
	"os"
)

// Setup installs the process logger. Logs go to stderr so they never
// interleave with answer text on stdout; without --debug only warnings and
// errors surface.
func Setup(debug bool) {
	opts := &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}
	if debug {
		opts.Level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))
}
