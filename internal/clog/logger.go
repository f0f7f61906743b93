package clog

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"
)

// Logger writes diagnostics for one sshgate process.
type Logger struct {
	mu     sync.Mutex
	stderr io.Writer // warn and error; nil discards
	trace  io.Writer // every level once tracing is on; nil discards
	tag    string    // "sshgate[pid]", tells concurrent sessions apart in the trace
	now    func() time.Time
}

// NewLogger returns a Logger that reports warnings and errors to stderr
// and does not trace.
func NewLogger(stderr io.Writer) *Logger {
	return &Logger{
		stderr: stderr,
		tag:    "sshgate[" + strconv.Itoa(os.Getpid()) + "]",
		now:    time.Now,
	}
}

// EnableTrace sends every message, debug included, to w as well.
func (l *Logger) EnableTrace(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.trace = w
}

// Tracing reports whether debug messages are being kept.
func (l *Logger) Tracing() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.trace != nil
}

// Debug traces a step of the decision.
func (l *Logger) Debug(format string, args ...any) {
	l.emit(LevelDebug, format, args...)
}

// Warn reports a degraded but completed session.
func (l *Logger) Warn(format string, args ...any) {
	l.emit(LevelWarn, format, args...)
}

// Error reports a failure the remote user will notice.
func (l *Logger) Error(format string, args ...any) {
	l.emit(LevelError, format, args...)
}

// Close closes the trace writer if it is a Closer and stops tracing.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.trace.(io.Closer)
	l.trace = nil
	if !ok {
		return nil
	}
	return c.Close()
}

func (l *Logger) emit(level Level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level == LevelDebug && l.trace == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)

	if l.trace != nil {
		ts := l.now().Format(time.RFC3339Nano)
		_, _ = fmt.Fprintf(l.trace, "%s %s %s: %s\n", ts, l.tag, level, msg)
	}
	if l.stderr != nil && level >= LevelWarn {
		_, _ = fmt.Fprintf(l.stderr, "[%s] %s\n", level, msg)
	}
}

// OpenTraceFile opens path for appending, creating it if needed. Several
// sessions may append to the same file.
func OpenTraceFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open debug log: %w", err)
	}
	return f, nil
}
