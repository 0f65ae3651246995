package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// New builds the service logger. When file is empty the logger writes
// to stderr; otherwise it writes to a size-rotated file. The returned
// close func releases the file writer and is a no-op for stderr.
func New(level, file string) (*slog.Logger, func() error, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, nil, err
	}

	var out io.Writer = os.Stderr
	closeFn := func() error { return nil }

	if file != "" {
		writer, err := NewRotatingWriter(RotationConfig{File: file})
		if err != nil {
			return nil, nil, err
		}
		out = writer
		closeFn = writer.Close
	}

	base := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: lvl})
	return slog.New(NewRedactingHandler(base)), closeFn, nil
}

func parseLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", level)
	}
}
