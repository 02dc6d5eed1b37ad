package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/golang-cz/devslog"

	"github.com/altomedia/gallery-bridge/internal/types"
)

// Setup creates a new logger based on configuration
func Setup(cfg *types.Config) *slog.Logger {
	var level slog.Level
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.Logging.IncludeCaller,
	}

	var out io.Writer = os.Stdout
	if cfg.Logging.Output == "file" && cfg.Logging.FilePath != "" {
		file, err := os.OpenFile(cfg.Logging.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			slog.Warn("failed to open log file, falling back to stdout",
				"path", cfg.Logging.FilePath,
				"error", err,
			)
		} else {
			out = file
		}
	}

	var handler slog.Handler
	switch cfg.Logging.Format {
	case "json":
		handler = slog.NewJSONHandler(out, opts)
	case "dev":
		handler = devslog.NewHandler(out, &devslog.Options{
			HandlerOptions:    opts,
			MaxSlicePrintSize: 10,
			SortKeys:          true,
		})
	default:
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler)
}
