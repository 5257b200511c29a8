package core

import (
	"fmt"
	"log"
	"strings"
)

// Logger interface for structured logging
// Implementations can provide custom logging behavior (e.g., integration with logrus, zap, etc.)
type Logger interface {
	// Debug logs a debug message with optional fields
	Debug(msg string, fields ...Field)

	// Info logs an info message with optional fields
	Info(msg string, fields ...Field)

	// Warn logs a warning message with optional fields
	Warn(msg string, fields ...Field)

	// Error logs an error message with optional fields
	Error(msg string, fields ...Field)
}

// Field represents a key-value pair for structured logging
type Field struct {
	Key   string
	Value any
}

// F creates a new Field with the given key and value
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// DefaultLogger is a simple logger implementation using the standard log package
type DefaultLogger struct{}

// NewDefaultLogger creates a new DefaultLogger
func NewDefaultLogger() *DefaultLogger {
	return &DefaultLogger{}
}

// Debug logs a debug message
func (l *DefaultLogger) Debug(msg string, fields ...Field) {
	l.log("DEBUG", msg, fields...)
}

// Info logs an info message
func (l *DefaultLogger) Info(msg string, fields ...Field) {
	l.log("INFO", msg, fields...)
}

// Warn logs a warning message
func (l *DefaultLogger) Warn(msg string, fields ...Field) {
	l.log("WARN", msg, fields...)
}

// Error logs an error message
func (l *DefaultLogger) Error(msg string, fields ...Field) {
	l.log("ERROR", msg, fields...)
}

func (l *DefaultLogger) log(level, msg string, fields ...Field) {
	log.Println(formatLine(level, msg, fields))
}

func formatLine(level, msg string, fields []Field) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", level, msg)
	if len(fields) > 0 {
		b.WriteString(" {")
		for i, f := range fields {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s: %v", f.Key, f.Value)
		}
		b.WriteString("}")
	}
	return b.String()
}

// NoOpLogger is a logger that discards all log messages
// Useful for tests or when logging is not desired
type NoOpLogger struct{}

// NewNoOpLogger creates a new NoOpLogger
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (l *NoOpLogger) Debug(msg string, fields ...Field) {}
func (l *NoOpLogger) Info(msg string, fields ...Field)  {}
func (l *NoOpLogger) Warn(msg string, fields ...Field)  {}
func (l *NoOpLogger) Error(msg string, fields ...Field) {}

// =============================================================================
// Level filtering
// =============================================================================

// Level is a minimum log level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel parses "debug", "info", "warn" or "error". The empty string
// means info.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// LevelLogger drops messages below a minimum level before passing them on.
type LevelLogger struct {
	next Logger
	min  Level
}

// NewLevelLogger wraps next so that only messages at min or above reach it.
func NewLevelLogger(next Logger, min Level) *LevelLogger {
	if next == nil {
		next = NewNoOpLogger()
	}
	return &LevelLogger{next: next, min: min}
}

func (l *LevelLogger) Debug(msg string, fields ...Field) {
	if l.min <= LevelDebug {
		l.next.Debug(msg, fields...)
	}
}

func (l *LevelLogger) Info(msg string, fields ...Field) {
	if l.min <= LevelInfo {
		l.next.Info(msg, fields...)
	}
}

func (l *LevelLogger) Warn(msg string, fields ...Field) {
	if l.min <= LevelWarn {
		l.next.Warn(msg, fields...)
	}
}

func (l *LevelLogger) Error(msg string, fields ...Field) {
	l.next.Error(msg, fields...)
}
