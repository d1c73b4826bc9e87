// Package logger provides structured logging for the grooming engine.
// Every rule outcome should be traceable through Event.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Logger provides leveled logging with game-event context.
type Logger struct {
	infoLogger  *log.Logger
	warnLogger  *log.Logger
	errorLogger *log.Logger
}

// NewLogger creates a logger writing info and warnings to stdout, errors to stderr.
func NewLogger() *Logger {
	return newLogger(os.Stdout, os.Stderr, log.Ldate|log.Ltime|log.Lshortfile)
}

// NewLoggerTo creates a logger writing every level to w.
func NewLoggerTo(w io.Writer) *Logger {
	return newLogger(w, w, log.Ltime)
}

// Discard returns a logger that drops everything. Used by tests and the TUI.
func Discard() *Logger {
	return NewLoggerTo(io.Discard)
}

func newLogger(out, errOut io.Writer, flags int) *Logger {
	return &Logger{
		infoLogger:  log.New(out, "[GROOM-INFO] ", flags),
		warnLogger:  log.New(out, "[GROOM-WARN] ", flags),
		errorLogger: log.New(errOut, "[GROOM-ERROR] ", flags),
	}
}

// Info logs informational messages. Extra args format msg.
func (l *Logger) Info(msg string, args ...any) {
	l.infoLogger.Output(2, format(msg, args))
}

// Warn logs warning messages.
func (l *Logger) Warn(msg string, args ...any) {
	l.warnLogger.Output(2, format(msg, args))
}

// Error logs error messages.
func (l *Logger) Error(msg string, args ...any) {
	l.errorLogger.Output(2, format(msg, args))
}

// Event logs a game event raised by an actor.
func (l *Logger) Event(eventType string, actorID string, details string) {
	l.infoLogger.Output(2, fmt.Sprintf("[EVENT:%s] Actor:%s | %s", eventType, actorID, details))
}

func format(msg string, args []any) string {
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}
