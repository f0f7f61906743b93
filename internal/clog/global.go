package clog

import "os"

// std is the process-wide logger used by the package-level functions.
var std = NewLogger(os.Stderr)

// Configure turns on tracing to the file at path.
func Configure(path string) error {
	f, err := OpenTraceFile(path)
	if err != nil {
		return err
	}
	std.EnableTrace(f)
	return nil
}

// Debug traces a step of the decision on the process-wide logger.
func Debug(format string, args ...any) {
	std.Debug(format, args...)
}

// Warn reports a degraded but completed session on the process-wide logger.
func Warn(format string, args ...any) {
	std.Warn(format, args...)
}

// Error reports a failure on the process-wide logger.
func Error(format string, args ...any) {
	std.Error(format, args...)
}

// Close closes the debug file, if one was configured.
func Close() error {
	return std.Close()
}

// ReplaceGlobal installs l as the process-wide logger and returns the one
// it replaced, so tests can capture output and restore it afterwards.
func ReplaceGlobal(l *Logger) *Logger {
	old := std
	std = l
	return old
}
