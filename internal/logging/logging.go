// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Init builds the logger: text to stderr, optionally teed into a rotating
// file so long-running kiosk sessions keep a bounded trail. The returned
// logger is also installed as slog's default.
func Init(level, filePath string) *slog.Logger {
	var w io.Writer = os.Stderr
	if filePath != "" {
		w = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   filePath,
			MaxSize:    20, // megabytes
			MaxBackups: 5,
			MaxAge:     14, // days
		})
	}
	log := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLevel(level)}))
	slog.SetDefault(log)
	return log
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
