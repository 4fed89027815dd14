package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogLevel is the minimum severity a logger emits.
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "INFO"
	}
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case DebugLevel:
		return slog.LevelDebug
	case WarnLevel:
		return slog.LevelWarn
	case ErrorLevel:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLogLevel maps a config string to a LogLevel, defaulting to info.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Logger emits structured JSON log records via slog. Field chaining
// returns derived loggers; a Logger itself is immutable and safe to share.
type Logger struct {
	s *slog.Logger
}

// NewLogger creates a JSON logger writing to out (stdout when nil) that
// drops records below level.
func NewLogger(level LogLevel, out io.Writer) *Logger {
	if out == nil {
		out = os.Stdout
	}
	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level.slogLevel()})
	return &Logger{s: slog.New(handler)}
}

// NopLogger returns a logger that discards everything, for tests.
func NopLogger() *Logger {
	return NewLogger(ErrorLevel, io.Discard)
}

// Named returns a derived logger tagged with a component name.
func (l *Logger) Named(component string) *Logger {
	return &Logger{s: l.s.With("component", component)}
}

// WithField returns a derived logger carrying an extra field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{s: l.s.With(key, value)}
}

// WithFields returns a derived logger carrying several extra fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{s: l.s.With(args...)}
}

// WithError returns a derived logger carrying the error message.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return l.WithField("error", err.Error())
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.s.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...interface{})  { l.s.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.s.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...interface{}) { l.s.Error(msg, args...) }
