package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Log levels supported by the logger
const (
	LevelDebug    = "DEBUG"
	LevelInfo     = "INFO"
	LevelWarn     = "WARN"
	LevelError    = "ERROR"
	LevelCritical = "CRITICAL"
)

// SlogLevelCritical sits above slog.LevelError and is reserved for errors
// that end the run.
const SlogLevelCritical = slog.Level(12)

// FileName is the name of the log file inside the log directory.
const FileName = "1cst.log"

// Options describes how a Logger is built. It is filled once at startup
// from the loaded configuration and passed to NewLogger.
type Options struct {
	// Dir is the directory that receives FileName. Empty disables the file sink.
	Dir string
	// Level is the minimum level for both sinks (DEBUG, INFO, WARN, ERROR).
	Level string
	// Rotation bounds the size and count of log files.
	Rotation RotationConfig
	// Console receives human-readable lines. Nil disables the console sink.
	Console io.Writer
	// Color enables level colouring on the console sink.
	Color bool
}

// Logger provides structured logging to a rotating JSON file and the console.
// It is safe for concurrent use.
type Logger struct {
	logger *slog.Logger
	writer *RotatingWriter
}

// NewLogger creates a Logger from opts. When opts.Dir is set, JSON lines are
// appended to {Dir}/1cst.log and rotated according to opts.Rotation.
func NewLogger(opts Options) (*Logger, error) {
	level := parseLevel(opts.Level)

	var handlers []slog.Handler
	var writer *RotatingWriter

	if opts.Dir != "" {
		rw, err := NewRotatingWriter(filepath.Join(opts.Dir, FileName), opts.Rotation)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		writer = rw
		handlers = append(handlers, slog.NewJSONHandler(rw, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: replaceLevel,
		}))
	}

	if opts.Console != nil {
		handlers = append(handlers, newConsoleHandler(opts.Console, level, opts.Color))
	}

	var handler slog.Handler
	switch len(handlers) {
	case 0:
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level, ReplaceAttr: replaceLevel})
	case 1:
		handler = handlers[0]
	default:
		handler = &fanoutHandler{handlers: handlers}
	}

	return &Logger{
		logger: slog.New(handler),
		writer: writer,
	}, nil
}

// replaceLevel renders SlogLevelCritical as CRITICAL instead of ERROR+4.
func replaceLevel(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey && len(groups) == 0 {
		if lvl, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(levelName(lvl))
		}
	}
	return a
}

func levelName(lvl slog.Level) string {
	if lvl >= SlogLevelCritical {
		return LevelCritical
	}
	return lvl.String()
}

// parseLevel converts a string log level to slog.Level.
// Defaults to INFO if the level string is not recognized.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a new Logger with arbitrary key-value attributes.
// Keys and values are provided as alternating arguments.
func (l *Logger) With(args ...any) *Logger {
	if len(args) == 0 {
		return l
	}
	return &Logger{
		logger: l.logger.With(args...),
		writer: l.writer,
	}
}

// WithCluster returns a child Logger tagged with the cluster identifier.
func (l *Logger) WithCluster(clusterID string) *Logger {
	return l.With("cluster", clusterID)
}

// Debug logs a message at DEBUG level with optional key-value pairs.
func (l *Logger) Debug(msg string, args ...any) {
	l.log(slog.LevelDebug, msg, args...)
}

// Info logs a message at INFO level with optional key-value pairs.
func (l *Logger) Info(msg string, args ...any) {
	l.log(slog.LevelInfo, msg, args...)
}

// Warn logs a message at WARN level with optional key-value pairs.
func (l *Logger) Warn(msg string, args ...any) {
	l.log(slog.LevelWarn, msg, args...)
}

// Error logs a message at ERROR level with optional key-value pairs.
func (l *Logger) Error(msg string, args ...any) {
	l.log(slog.LevelError, msg, args...)
}

// Critical logs a message at CRITICAL level with optional key-value pairs.
func (l *Logger) Critical(msg string, args ...any) {
	l.log(SlogLevelCritical, msg, args...)
}

func (l *Logger) log(level slog.Level, msg string, args ...any) {
	l.logger.Log(context.Background(), level, msg, args...)
}

// Close flushes and closes the log file.
// If the logger was created without a log directory this is a no-op.
func (l *Logger) Close() error {
	if l.writer == nil {
		return nil
	}
	return l.writer.Close()
}

// FilePath returns the path of the active log file, or "" without a file sink.
func (l *Logger) FilePath() string {
	if l.writer == nil {
		return ""
	}
	return l.writer.FilePath()
}

// NopLogger returns a Logger that discards all log output.
// Useful for testing or when logging is disabled.
func NopLogger() *Logger {
	return &Logger{
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
}
