package log

import (
	"io"
	"log/slog"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ssyssy/ottertune/pkg/errors"
)

// SetupLogger installs a JSON slog logger writing to w as the process
// default and routes pkg/errors warnings (reconciliation diffs) to a
// zerolog logger on the same writer.
func SetupLogger(w io.Writer, loglevel string) error {
	level, err := ParseLevel(loglevel)
	if err != nil {
		return err
	}
	ops := slog.HandlerOptions{
		AddSource: level <= slog.LevelDebug,
		Level:     level,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.LevelKey:
				attr.Key = "severity"
			case slog.MessageKey:
				attr.Key = "message"
			}
			return attr
		},
	}
	handler := slog.NewJSONHandler(w, &ops)
	slog.SetDefault(slog.New(WrapByErrFmtHandler(handler)))

	zl := zerolog.New(w).Level(toZerologLevel(level)).With().Timestamp().Logger()
	errors.SetZerologWarnFunc(ZerologWarnFunc(zl))
	return nil
}

// ZerologWarnFunc returns a pkg/errors warning sink that logs through zl.
// Warnings implementing zerolog.LogObjectMarshaler are embedded as fields.
func ZerologWarnFunc(zl zerolog.Logger) func(error) {
	return func(w error) {
		ev := zl.Warn()
		if m, ok := w.(zerolog.LogObjectMarshaler); ok {
			ev = ev.EmbedObject(m)
		}
		ev.Msg(w.Error())
	}
}

// ParseLevel converts "debug", "info", "warn" or "error" (any case) to a
// slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "info", "":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, errors.Newf("invalid log level: %s", level)
	}
}

func toZerologLevel(level slog.Level) zerolog.Level {
	switch {
	case level <= slog.LevelDebug:
		return zerolog.DebugLevel
	case level <= slog.LevelInfo:
		return zerolog.InfoLevel
	case level <= slog.LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}
