package config

import (
	"github.com/gookit/slog"
	"github.com/gookit/slog/handler"
)

// _Logger is the minimal logging interface used across the application.
// Kept as an interface so the implementation can be swapped.
type _Logger interface {
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Logger is the global logger instance. It works at info level even when
// InitLogger was never called.
var Logger _Logger = NewLogger("info")

// InitLogger replaces the global logger with one at the configured level.
func InitLogger(cfg LoggingConfig) {
	level := cfg.Level
	if level == "" {
		level = "info"
	}
	Logger = NewLogger(level)
}

// NewLogger builds a gookit/slog based logger for the given level name.
func NewLogger(level string) _Logger {
	logLevel := slog.LevelByName(level)

	var levels slog.Levels
	for _, lv := range slog.AllLevels {
		if lv <= logLevel {
			levels = append(levels, lv)
		}
	}

	h := handler.NewConsoleHandler(levels)
	formatter := slog.NewJSONFormatter(func(f *slog.JSONFormatter) {
		f.Fields = []string{
			slog.FieldKeyDatetime,
			slog.FieldKeyLevel,
			slog.FieldKeyMessage,
		}
		f.Aliases = slog.StringMap{
			slog.FieldKeyDatetime: "datetime",
			slog.FieldKeyLevel:    "level",
			slog.FieldKeyMessage:  "message",
		}
		f.TimeFormat = "2006-01-02T15:04:05"
	})
	h.SetFormatter(formatter)

	return slog.NewWithHandlers(h)
}
