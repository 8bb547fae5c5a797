package logging

import (
	"io"
	"log/slog"
	"os"

	"surveysphere/internal/config"

	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the process logger. Local runs get a text handler, everything else JSON.
// When cfg.File is set, records are also written to a size-rotated file.
func New(env string, cfg config.LogConfig) *slog.Logger {
	return slog.New(newHandler(os.Stdout, env, cfg))
}

func newHandler(stdout io.Writer, env string, cfg config.LogConfig) slog.Handler {
	w := stdout
	if cfg.File != "" {
		w = io.MultiWriter(stdout, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxAge:     cfg.MaxAgeDays,
			MaxBackups: cfg.MaxBackups,
			Compress:   cfg.Compress,
		})
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	if env == "local" {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
