// internal/utils/logger.go

package utils

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Logger defines the interface for logging throughout the application.
type Logger interface {
	Debug(msg string)
	Debugf(format string, args ...interface{})
	Info(msg string)
	Infof(format string, args ...interface{})
	Warn(msg string)
	Warnf(format string, args ...interface{})
	Error(msg string)
	Errorf(format string, args ...interface{})
	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
}

// LogLevel represents the severity of a log message.
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

var (
	defaultLevel   = InfoLevel
	defaultLevelMu sync.RWMutex
)

const maxFieldValueLen = 256

// SetDefaultLevel sets the minimum level for loggers created afterwards.
func SetDefaultLevel(level LogLevel) {
	defaultLevelMu.Lock()
	defaultLevel = level
	defaultLevelMu.Unlock()
}

// ParseLogLevel maps a level name to its LogLevel
func ParseLogLevel(name string) (LogLevel, bool) {
	switch strings.ToLower(name) {
	case "debug":
		return DebugLevel, true
	case "info":
		return InfoLevel, true
	case "warn", "warning":
		return WarnLevel, true
	case "error":
		return ErrorLevel, true
	}
	return InfoLevel, false
}

// SimpleLogger provides a basic leveled logger implementation.
type SimpleLogger struct {
	level  LogLevel
	fields map[string]interface{}
	mu     sync.RWMutex
}

// NewLogger creates a new logger at the configured default level.
func NewLogger() Logger {
	defaultLevelMu.RLock()
	level := defaultLevel
	defaultLevelMu.RUnlock()
	return NewLoggerWithLevel(level)
}

// NewLoggerWithLevel creates a logger with the specified log level.
func NewLoggerWithLevel(level LogLevel) Logger {
	return &SimpleLogger{
		level:  level,
		fields: make(map[string]interface{}),
	}
}

// NewComponentLogger creates a logger tagged with a component name.
func NewComponentLogger(component string) Logger {
	return NewLogger().WithField("component", component)
}

func (l *SimpleLogger) Debug(msg string) { l.log(DebugLevel, msg) }

func (l *SimpleLogger) Debugf(format string, args ...interface{}) {
	l.log(DebugLevel, fmt.Sprintf(format, args...))
}

func (l *SimpleLogger) Info(msg string) { l.log(InfoLevel, msg) }

func (l *SimpleLogger) Infof(format string, args ...interface{}) {
	l.log(InfoLevel, fmt.Sprintf(format, args...))
}

func (l *SimpleLogger) Warn(msg string) { l.log(WarnLevel, msg) }

func (l *SimpleLogger) Warnf(format string, args ...interface{}) {
	l.log(WarnLevel, fmt.Sprintf(format, args...))
}

func (l *SimpleLogger) Error(msg string) { l.log(ErrorLevel, msg) }

func (l *SimpleLogger) Errorf(format string, args ...interface{}) {
	l.log(ErrorLevel, fmt.Sprintf(format, args...))
}

func (l *SimpleLogger) WithField(key string, value interface{}) Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

func (l *SimpleLogger) WithFields(fields map[string]interface{}) Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()

	newFields := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}

	return &SimpleLogger{
		level:  l.level,
		fields: newFields,
	}
}

// log formats and outputs a log message if it meets the minimum level.
func (l *SimpleLogger) log(level LogLevel, msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if level < l.level {
		return
	}

	levelStr := [...]string{"DEBUG", "INFO", "WARN", "ERROR"}[level]
	timestamp := time.Now().Format("2006-01-02 15:04:05")

	output := fmt.Sprintf("[%s] [%s] %s", timestamp, levelStr, msg)

	if len(l.fields) > 0 {
		output += " fields=" + formatFields(l.fields)
	}

	fmt.Println(output)
}

// formatFields converts fields map to a string representation. Values are
// truncated so a page body or blob dump cannot flood a log line.
func formatFields(fields map[string]interface{}) string {
	parts := make([]string, 0, len(fields))
	for k, v := range fields {
		parts = append(parts, fmt.Sprintf("%s=%s", k, TruncateString(fmt.Sprint(v), maxFieldValueLen)))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
