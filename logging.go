package statestore

import (
	"context"
	"log/slog"
	"time"
)

// LogEvent describes one store operation for logging.
type LogEvent struct {
	Op        string
	Store     string
	Key       string
	Attribute string
	Handled   bool
	Duration  time.Duration
	Err       error
}

// Logger records store events.
type Logger interface {
	Log(LogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(LogEvent)

// Log implements Logger.
func (f LoggerFunc) Log(event LogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) Log(LogEvent) {}

// WithLogger attaches a logger to the store. A nil logger disables logging.
func WithLogger(logger Logger) Option {
	return func(cfg *storeConfig) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}

// SlogLogger adapts a *slog.Logger. Failures log at Error, everything else
// at Debug.
func SlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		return noopLogger{}
	}
	return LoggerFunc(func(event LogEvent) {
		attrs := []slog.Attr{
			slog.String("op", event.Op),
			slog.String("store", event.Store),
			slog.String("key", event.Key),
			slog.Duration("duration", event.Duration),
		}
		if event.Attribute != "" {
			attrs = append(attrs, slog.String("attribute", event.Attribute))
		}
		if event.Handled {
			attrs = append(attrs, slog.Bool("handled", true))
		}
		if event.Err != nil {
			attrs = append(attrs, slog.Any("error", event.Err))
			logger.LogAttrs(context.Background(), slog.LevelError, "statestore "+event.Op+" failed", attrs...)
			return
		}
		logger.LogAttrs(context.Background(), slog.LevelDebug, "statestore "+event.Op, attrs...)
	})
}
