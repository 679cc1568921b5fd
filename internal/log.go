package internal

import (
	"log"
	"os"
)

// LogLevel orders logging verbosity.
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
	LogLevelTrace
)

// Logger provides leveled logging over the standard log package. A
// component tag, when set, is printed after the level prefix so adapter
// output stays attributable.
type Logger struct {
	level LogLevel
	tag   string
}

// NewLogger creates a logger with the specified level.
func NewLogger(level LogLevel) *Logger {
	return &Logger{level: level}
}

// NewDefaultLogger creates a logger with its level taken from the
// LOG_LEVEL environment variable, defaulting to INFO.
func NewDefaultLogger() *Logger {
	level := LogLevelInfo
	switch os.Getenv("LOG_LEVEL") {
	case "ERROR":
		level = LogLevelError
	case "WARN":
		level = LogLevelWarn
	case "INFO":
		level = LogLevelInfo
	case "DEBUG":
		level = LogLevelDebug
	case "TRACE":
		level = LogLevelTrace
	}
	return &Logger{level: level}
}

// Component returns a logger that prefixes every line with the tag.
func (l *Logger) Component(tag string) *Logger {
	return &Logger{level: l.level, tag: "[" + tag + "] "}
}

// Error logs error messages.
func (l *Logger) Error(format string, args ...interface{}) {
	l.emit(LogLevelError, "[ERROR] ", format, args...)
}

// Warn logs warning messages.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.emit(LogLevelWarn, "[WARN] ", format, args...)
}

// Info logs info messages.
func (l *Logger) Info(format string, args ...interface{}) {
	l.emit(LogLevelInfo, "[INFO] ", format, args...)
}

// Debug logs debug messages.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.emit(LogLevelDebug, "[DEBUG] ", format, args...)
}

// Trace logs very verbose diagnostic messages.
func (l *Logger) Trace(format string, args ...interface{}) {
	l.emit(LogLevelTrace, "[TRACE] ", format, args...)
}

func (l *Logger) emit(level LogLevel, prefix, format string, args ...interface{}) {
	if l.level < level {
		return
	}
	log.Printf(prefix+l.tag+format, args...)
}
