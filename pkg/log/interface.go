// Package log provides structured logging for normalization runs.
//
// The library packages never log; they return structured errors and
// report reconciliation diffs through pkg/errors.Warn. Programs such as
// the dbnorm CLI call SetupLogger once, which installs a JSON slog
// handler as the process default and a zerolog sink for those warnings.
//
// Example usage:
//
//	logger := log.Default().With(log.EngineKey, "postgres")
//	logger.Info("normalized observation",
//	    log.ObservationIDKey, "obs-1",
//	    log.DiffCountKey, 2,
//	)

package log

import (
	"context"
	"log/slog"
)

// Logger is the structured logging interface used by the CLI.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)

	// Error logs an error-level message. An error passed as the first
	// field is logged under ErrAttrKey so that its stacktrace and kind
	// are expanded.
	Error(msg string, fields ...any)

	// With returns a Logger that adds fields to every record.
	With(fields ...any) Logger

	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

type slogLogger struct {
	l *slog.Logger
}

// New returns a Logger backed by l.
func New(l *slog.Logger) Logger {
	return &slogLogger{l: l}
}

// Default returns a Logger backed by the current slog default.
func Default() Logger {
	return New(slog.Default())
}

func (s *slogLogger) Debug(msg string, fields ...any) { s.l.Debug(msg, fields...) }
func (s *slogLogger) Info(msg string, fields ...any)  { s.l.Info(msg, fields...) }
func (s *slogLogger) Warn(msg string, fields ...any)  { s.l.Warn(msg, fields...) }

func (s *slogLogger) Error(msg string, fields ...any) {
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			fields = append([]any{ErrAttr(err)}, fields[1:]...)
		}
	}
	s.l.Error(msg, fields...)
}

func (s *slogLogger) With(fields ...any) Logger {
	return &slogLogger{l: s.l.With(fields...)}
}

func (s *slogLogger) Enabled(ctx context.Context, level Level) bool {
	return s.l.Enabled(ctx, slog.Level(level))
}
