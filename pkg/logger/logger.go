// Package logger provides structured logging for Anima.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"go.opentelemetry.io/otel/trace"
)

// Level represents logging levels.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	default:
		return "unknown"
	}
}

// ParseLevel parses a level string, defaulting to info.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Config holds logger configuration.
type Config struct {
	Level  Level
	Format string // "json" or "text"
	Output string // "stdout", "stderr", or file path
}

// Logger is the interface for structured logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)

	With(args ...any) Logger
	WithContext(ctx context.Context) context.Context

	SetLevel(level Level)
	GetLevel() Level

	// Close releases any resources held by the logger (e.g. file handles).
	Close() error
}

// SlogLogger is a Logger implementation backed by log/slog.
type SlogLogger struct {
	logger *slog.Logger
	level  *slog.LevelVar
	closer io.Closer // file handle when logging to a file
}

var (
	globalMu sync.RWMutex
	global   Logger = New(&Config{Level: InfoLevel, Format: "text", Output: "stdout"})
)

// New creates a new Logger with the given configuration.
func New(cfg *Config) Logger {
	if cfg == nil {
		cfg = &Config{
			Level:  InfoLevel,
			Format: "json",
			Output: "stdout",
		}
	}

	levelVar := &slog.LevelVar{}
	levelVar.Set(slogLevel(cfg.Level))

	opts := &slog.HandlerOptions{
		Level:       levelVar,
		AddSource:   true,
		ReplaceAttr: replaceAttr,
	}

	writer, closer := getWriter(cfg.Output)

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(writer, opts)
	} else {
		handler = slog.NewJSONHandler(writer, opts)
	}

	return &SlogLogger{
		logger: slog.New(handler),
		level:  levelVar,
		closer: closer,
	}
}

// getWriter returns the writer for the given output specification. The closer
// is nil for outputs that don't need explicit closing (stdout/stderr).
func getWriter(output string) (io.Writer, io.Closer) {
	switch output {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			// Fall back to stdout rather than failing startup.
			return os.Stdout, nil
		}
		return f, f
	}
}

func slogLevel(l Level) slog.Level {
	switch l {
	case DebugLevel:
		return slog.LevelDebug
	case InfoLevel:
		return slog.LevelInfo
	case WarnLevel:
		return slog.LevelWarn
	case ErrorLevel:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func fromSlogLevel(l slog.Level) Level {
	switch {
	case l <= slog.LevelDebug:
		return DebugLevel
	case l <= slog.LevelInfo:
		return InfoLevel
	case l <= slog.LevelWarn:
		return WarnLevel
	default:
		return ErrorLevel
	}
}

// replaceAttr renames "msg" to "message" for consistency with log collectors.
func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.MessageKey {
		return slog.Attr{Key: "message", Value: a.Value}
	}
	return a
}

// Debug logs a debug message.
func (l *SlogLogger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

// Info logs an info message.
func (l *SlogLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

// Warn logs a warning message.
func (l *SlogLogger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

// Error logs an error message.
func (l *SlogLogger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

// DebugContext logs a debug message enriched with trace context.
func (l *SlogLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.logger.DebugContext(ctx, msg, appendTraceContextFields(ctx, args...)...)
}

// InfoContext logs an info message enriched with trace context.
func (l *SlogLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.logger.InfoContext(ctx, msg, appendTraceContextFields(ctx, args...)...)
}

// WarnContext logs a warning message enriched with trace context.
func (l *SlogLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.logger.WarnContext(ctx, msg, appendTraceContextFields(ctx, args...)...)
}

// ErrorContext logs an error message enriched with trace context.
func (l *SlogLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.logger.ErrorContext(ctx, msg, appendTraceContextFields(ctx, args...)...)
}

// With returns a new Logger with the given attributes attached.
func (l *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{
		logger: l.logger.With(args...),
		level:  l.level,
		closer: nil, // derived loggers don't own the closer
	}
}

// WithContext returns a context carrying this logger.
func (l *SlogLogger) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// SetLevel dynamically changes the logging level.
func (l *SlogLogger) SetLevel(level Level) {
	l.level.Set(slogLevel(level))
}

// GetLevel returns the current logging level.
func (l *SlogLogger) GetLevel() Level {
	return fromSlogLevel(l.level.Level())
}

// Close releases resources held by the logger. This matters when logging to a
// file so buffered data reaches disk.
func (l *SlogLogger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

type loggerKey struct{}

// FromContext extracts a Logger from context, falling back to the global one.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey{}).(Logger); ok {
		return l
	}
	return Global()
}

// Global returns the global logger.
func Global() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return global
}

// SetGlobal replaces the global logger.
func SetGlobal(l Logger) {
	if l == nil {
		return
	}
	globalMu.Lock()
	global = l
	globalMu.Unlock()
}

// SetLevel sets the level of the global logger.
func SetLevel(level Level) {
	Global().SetLevel(level)
}

// Convenience functions for the global logger.

func Debug(msg string, args ...any) {
	Global().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	Global().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	Global().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	Global().Error(msg, args...)
}

func DebugContext(ctx context.Context, msg string, args ...any) {
	Global().DebugContext(ctx, msg, args...)
}

func InfoContext(ctx context.Context, msg string, args ...any) {
	Global().InfoContext(ctx, msg, args...)
}

func WarnContext(ctx context.Context, msg string, args ...any) {
	Global().WarnContext(ctx, msg, args...)
}

func ErrorContext(ctx context.Context, msg string, args ...any) {
	Global().ErrorContext(ctx, msg, args...)
}

func appendTraceContextFields(ctx context.Context, args ...any) []any {
	if ctx == nil {
		return args
	}
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return args
	}
	return append(args,
		"trace_id", spanCtx.TraceID().String(),
		"span_id", spanCtx.SpanID().String(),
	)
}
