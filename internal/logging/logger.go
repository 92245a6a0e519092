// Package logging provides the leveled logger used across the engine and
// its adapters. Verbosity comes from the LOG_LEVEL environment variable.
package logging

import (
	"log"
	"os"
	"strings"
)

// Level is a logging verbosity level.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// ParseLevel maps a level name to a Level, defaulting to info.
func ParseLevel(name string) Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "ERROR":
		return LevelError
	case "WARN":
		return LevelWarn
	case "DEBUG":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// Logger writes leveled, component-tagged log lines.
type Logger struct {
	level     Level
	component string
}

// New creates a logger for a component at the given level.
func New(component string, level Level) *Logger {
	return &Logger{level: level, component: component}
}

// NewFromEnv creates a logger whose level is read from LOG_LEVEL.
func NewFromEnv(component string) *Logger {
	return New(component, ParseLevel(os.Getenv("LOG_LEVEL")))
}

// Level returns the logger's verbosity level.
func (l *Logger) Level() Level {
	return l.level
}

func (l *Logger) printf(tag, format string, args ...any) {
	log.Printf("["+tag+"] ["+l.component+"] "+format, args...)
}

// Error logs error messages.
func (l *Logger) Error(format string, args ...any) {
	if l.level >= LevelError {
		l.printf("ERROR", format, args...)
	}
}

// Warn logs warning messages.
func (l *Logger) Warn(format string, args ...any) {
	if l.level >= LevelWarn {
		l.printf("WARN", format, args...)
	}
}

// Info logs info messages.
func (l *Logger) Info(format string, args ...any) {
	if l.level >= LevelInfo {
		l.printf("INFO", format, args...)
	}
}

// Debug logs debug messages.
func (l *Logger) Debug(format string, args ...any) {
	if l.level >= LevelDebug {
		l.printf("DEBUG", format, args...)
	}
}
