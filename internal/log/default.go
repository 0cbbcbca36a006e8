package log

import (
	"io"
	"os"
	"sync/atomic"
)

var defaultLogger atomic.Pointer[Logger]

func init() {
	defaultLogger.Store(NewText(os.Stderr))
}

// Default returns the default logger.
func Default() *Logger {
	return defaultLogger.Load()
}

// SetDefault replaces the default logger.
func SetDefault(l *Logger) {
	defaultLogger.Store(l)
}

// Discard returns a logger that writes nothing.
func Discard() *Logger {
	l := NewText(io.Discard)
	l.SetLevel(LevelFatal + 1)
	return l
}

// Debug level message on the default logger.
func Debug(t any, msg string, v ...any) {
	Default().log(t, msg, LevelDebug, v...)
}

// Info level message on the default logger.
func Info(t any, msg string, v ...any) {
	Default().log(t, msg, LevelInfo, v...)
}

// Warn level message on the default logger.
func Warn(t any, msg string, v ...any) {
	Default().log(t, msg, LevelWarn, v...)
}

// Error level message on the default logger.
func Error(t any, msg string, v ...any) {
	Default().log(t, msg, LevelError, v...)
}
