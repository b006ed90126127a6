// internal/logging/logger.go

package logging

import (
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Level is a log verbosity threshold
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a level name to a Level, defaulting to info
func ParseLevel(level string) Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// Logger is a leveled logger over the standard library log package
type Logger struct {
	mu    sync.Mutex
	level Level

	debugLogger *log.Logger
	infoLogger  *log.Logger
	warnLogger  *log.Logger
	errorLogger *log.Logger
	fatalLogger *log.Logger
}

// New creates a new Logger writing to stderr
func New(level string) *Logger {
	return NewWithWriter(level, os.Stderr)
}

// NewWithWriter creates a new Logger writing all levels to w
func NewWithWriter(level string, w io.Writer) *Logger {
	flags := log.Ldate | log.Ltime
	return &Logger{
		level:       ParseLevel(level),
		debugLogger: log.New(w, "DEBUG: ", flags),
		infoLogger:  log.New(w, "INFO: ", flags),
		warnLogger:  log.New(w, "WARN: ", flags),
		errorLogger: log.New(w, "ERROR: ", flags),
		fatalLogger: log.New(w, "FATAL: ", flags),
	}
}

// NewDiscard creates a Logger that drops everything
func NewDiscard() *Logger {
	return NewWithWriter("error", io.Discard)
}

// SetOutput redirects every level to w, e.g. through a progress bar
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, lg := range []*log.Logger{l.debugLogger, l.infoLogger, l.warnLogger, l.errorLogger, l.fatalLogger} {
		lg.SetOutput(w)
	}
}

// Enabled reports whether messages at level would be written
func (l *Logger) Enabled(level Level) bool {
	return level >= l.level
}

func (l *Logger) Debug(format string, v ...any) {
	if !l.Enabled(LevelDebug) {
		return
	}
	l.debugLogger.Printf(format, v...)
}

func (l *Logger) Info(format string, v ...any) {
	if !l.Enabled(LevelInfo) {
		return
	}
	l.infoLogger.Printf(format, v...)
}

func (l *Logger) Warn(format string, v ...any) {
	if !l.Enabled(LevelWarn) {
		return
	}
	l.warnLogger.Printf(format, v...)
}

func (l *Logger) Error(format string, v ...any) {
	l.errorLogger.Printf(format, v...)
}

// Fatal logs and exits with status 1
func (l *Logger) Fatal(format string, v ...any) {
	l.fatalLogger.Fatalf(format, v...)
}
