package gltfview

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// DefaultLogger writes leveled, timestamped lines through charmbracelet/log.
// Debug output is dropped unless enabled.
type DefaultLogger struct {
	mu    sync.Mutex
	debug bool
	out   *log.Logger
}

func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	return NewDefaultLoggerTo(os.Stderr, prefix, debug)
}

func NewDefaultLoggerTo(w io.Writer, prefix string, debug bool) *DefaultLogger {
	out := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          prefix,
	})
	l := &DefaultLogger{out: out}
	l.SetDebug(debug)
	return l
}

func (l *DefaultLogger) DebugEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debug
}

func (l *DefaultLogger) SetDebug(enabled bool) {
	l.mu.Lock()
	l.debug = enabled
	if enabled {
		l.out.SetLevel(log.DebugLevel)
	} else {
		l.out.SetLevel(log.InfoLevel)
	}
	l.mu.Unlock()
}

func (l *DefaultLogger) Debugf(format string, args ...any) {
	if !l.DebugEnabled() {
		return
	}
	l.out.Debugf(format, args...)
}

func (l *DefaultLogger) Infof(format string, args ...any) {
	l.out.Infof(format, args...)
}

func (l *DefaultLogger) Warnf(format string, args ...any) {
	l.out.Warnf(format, args...)
}

func (l *DefaultLogger) Errorf(format string, args ...any) {
	l.out.Errorf(format, args...)
}

// Nop logger

type nopLogger struct{}

func NewNopLogger() Logger                             { return &nopLogger{} }
func (n *nopLogger) DebugEnabled() bool                { return false }
func (n *nopLogger) SetDebug(enabled bool)             {}
func (n *nopLogger) Debugf(format string, args ...any) {}
func (n *nopLogger) Infof(format string, args ...any)  {}
func (n *nopLogger) Warnf(format string, args ...any)  {}
func (n *nopLogger) Errorf(format string, args ...any) {}
