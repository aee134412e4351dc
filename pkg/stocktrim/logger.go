package stocktrim

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Level is a logging verbosity level. Trace sits below Debug and is used for
// full response bodies.
type Level int8

const (
	LevelTrace Level = iota - 1
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the lower-case level name.
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseLevel parses a level name, defaulting to LevelInfo.
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return LevelTrace
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger interface for logging.
type Logger interface {
	Trace(msg string, fields map[string]interface{})
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})

	// Enabled reports whether records at level are emitted. Callers use it
	// to skip body parsing that only verbose levels need.
	Enabled(level Level) bool
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Trace(string, map[string]interface{}) {}
func (NopLogger) Debug(string, map[string]interface{}) {}
func (NopLogger) Info(string, map[string]interface{})  {}
func (NopLogger) Warn(string, map[string]interface{})  {}
func (NopLogger) Error(string, map[string]interface{}) {}
func (NopLogger) Enabled(Level) bool                   { return false }

// ZerologLogger adapts a zerolog.Logger to Logger.
type ZerologLogger struct {
	zlog zerolog.Logger
}

var _ Logger = (*ZerologLogger)(nil)

// NewZerologLogger wraps an existing zerolog logger. Its configured level
// decides what Enabled reports.
func NewZerologLogger(zlog zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{zlog: zlog}
}

// NewLogger creates a zerolog-backed logger writing to out. If pretty is
// true, output is formatted for human readability.
func NewLogger(out io.Writer, level Level, pretty bool) *ZerologLogger {
	if pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	zlog := zerolog.New(out).With().Timestamp().Logger().Level(toZerologLevel(level))

	return &ZerologLogger{zlog: zlog}
}

func (l *ZerologLogger) Trace(msg string, fields map[string]interface{}) {
	l.zlog.Trace().Fields(fields).Msg(msg)
}

func (l *ZerologLogger) Debug(msg string, fields map[string]interface{}) {
	l.zlog.Debug().Fields(fields).Msg(msg)
}

func (l *ZerologLogger) Info(msg string, fields map[string]interface{}) {
	l.zlog.Info().Fields(fields).Msg(msg)
}

func (l *ZerologLogger) Warn(msg string, fields map[string]interface{}) {
	l.zlog.Warn().Fields(fields).Msg(msg)
}

func (l *ZerologLogger) Error(msg string, fields map[string]interface{}) {
	l.zlog.Error().Fields(fields).Msg(msg)
}

// Enabled implements Logger.
func (l *ZerologLogger) Enabled(level Level) bool {
	zl := toZerologLevel(level)

	return zl >= l.zlog.GetLevel() && zl >= zerolog.GlobalLevel()
}

func toZerologLevel(level Level) zerolog.Level {
	switch level {
	case LevelTrace:
		return zerolog.TraceLevel
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
