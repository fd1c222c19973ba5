package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"

	logFileName = "menuhub.log"
)

// SetupLogger writes to stdout and, when the directory is writable, to a log file in logPath.
func SetupLogger(env, logPath string) *slog.Logger {
	var out io.Writer = os.Stdout
	if logPath != "" {
		f, err := os.OpenFile(filepath.Join(logPath, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			out = io.MultiWriter(os.Stdout, f)
		}
	}

	var handler slog.Handler
	switch env {
	case envLocal:
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug})
	case envDev:
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug})
	case envProd:
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo})
	default:
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo})
	}

	return slog.New(handler)
}

// SetupTelegramHandler duplicates records at or above level to the admin chat.
func SetupTelegramHandler(log *slog.Logger, notifier Notifier, level slog.Level) *slog.Logger {
	return slog.New(NewTelegramHandler(log.Handler(), notifier, level))
}
