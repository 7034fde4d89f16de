package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"chainmeet/backend/internal/config"
)

// Cleanup closes any log sinks New opened.
type Cleanup func() error

// New builds the process logger. Output always goes to stdout; when a log
// file is configured it is appended to as a second sink.
func New(cfg config.LoggingConfig) (*slog.Logger, Cleanup, error) {
	handlerOptions := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: true,
	}

	writers := []io.Writer{os.Stdout}
	var file *os.File
	if cfg.File != "" {
		if dir := filepath.Dir(cfg.File); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, err
			}
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, err
		}
		file = f
		writers = append(writers, file)
	}

	sink := io.MultiWriter(writers...)
	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(sink, handlerOptions)
	} else {
		handler = slog.NewTextHandler(sink, handlerOptions)
	}

	logger := slog.New(handler).With("service", "chainmeet-backend")
	cleanup := func() error {
		if file != nil {
			return file.Close()
		}
		return nil
	}
	return logger, cleanup, nil
}

func parseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
