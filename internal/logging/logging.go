// Package logging provides a leveled printf-style logger on top of log/slog.
package logging

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"sync"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

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

func (l Level) slog() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelError + 4
	}
}

// ParseLevel parses a log level string. Unknown strings mean info.
func ParseLevel(s string) Level {
	switch s {
	case "debug", "DEBUG":
		return LevelDebug
	case "info", "INFO":
		return LevelInfo
	case "warn", "WARN", "warning", "WARNING":
		return LevelWarn
	case "error", "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// sink is the shared, swappable destination for a logger and its children.
type sink struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// Logger is a leveled logger. Children made with With share the level
// and the output of their parent.
type Logger struct {
	level *slog.LevelVar
	out   *sink
	sl    *slog.Logger
}

// New creates a logger writing text records to stderr.
func New(level Level) *Logger {
	lv := new(slog.LevelVar)
	lv.Set(level.slog())
	out := &sink{w: os.Stderr}
	h := slog.NewTextHandler(out, &slog.HandlerOptions{Level: lv})
	return &Logger{level: lv, out: out, sl: slog.New(h)}
}

// With returns a child logger tagging every record with component.
func (l *Logger) With(component string) *Logger {
	return &Logger{level: l.level, out: l.out, sl: l.sl.With("component", component)}
}

// SetOutput sets the log output destination.
func (l *Logger) SetOutput(w io.Writer) {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	l.out.w = w
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.level.Set(level.slog())
}

// StdLogger adapts the logger for APIs that want a *log.Logger, such as
// http.Server.ErrorLog.
func (l *Logger) StdLogger(level Level) *log.Logger {
	return slog.NewLogLogger(l.sl.Handler(), level.slog())
}

func (l *Logger) log(level Level, format string, args ...any) {
	ctx := context.Background()
	lvl := level.slog()
	if !l.sl.Enabled(ctx, lvl) {
		return
	}
	l.sl.Log(ctx, lvl, fmt.Sprintf(format, args...))
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...any) {
	l.log(LevelDebug, format, args...)
}

// Info logs an info message.
func (l *Logger) Info(format string, args ...any) {
	l.log(LevelInfo, format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...any) {
	l.log(LevelWarn, format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...any) {
	l.log(LevelError, format, args...)
}

// Discard returns a logger that discards all output.
func Discard() *Logger {
	l := New(LevelError + 1) // Higher than any level
	l.SetOutput(io.Discard)
	return l
}
