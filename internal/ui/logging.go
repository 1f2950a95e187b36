package ui

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

type Logger struct {
	Debug bool
	l     *log.Logger
}

func NewLogger(debug bool) *Logger {
	return NewLoggerTo(os.Stderr, debug)
}

func NewLoggerTo(w io.Writer, debug bool) *Logger {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}

	return &Logger{
		Debug: debug,
		l: log.NewWithOptions(w, log.Options{
			Level:           level,
			ReportTimestamp: true,
			TimeFormat:      time.TimeOnly,
		}),
	}
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *Logger {
	return NewLoggerTo(io.Discard, false)
}

// With returns a child logger whose lines carry the given component prefix.
func (l *Logger) With(component string) *Logger {
	return &Logger{Debug: l.Debug, l: l.l.WithPrefix(component)}
}

func (l *Logger) Debugf(format string, args ...any) {
	l.l.Debugf(format, args...)
}

func (l *Logger) Infof(format string, args ...any) {
	l.l.Infof(format, args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.l.Warnf(format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.l.Errorf(format, args...)
}
