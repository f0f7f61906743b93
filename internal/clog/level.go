// Package clog writes sshgate's operational diagnostics. These are separate
// from the audit log (internal/audit), which records what sessions asked
// for and got, and from the messages meant for the remote user
// (internal/term).
//
// Diagnostics have two destinations. Warnings and errors go to the
// session's stderr, which the remote user sees, as "[LEVEL] message". When
// --debug is given and the policy names a debug_log, every message,
// including the resolution and matching trace, is also appended to that
// file with a timestamp and the process id.
package clog

import "fmt"

// Level is the severity of a message.
type Level int

const (
	// LevelDebug traces resolution and matching. It is only written to the
	// debug file.
	LevelDebug Level = iota
	// LevelWarn reports a condition that degraded but did not stop the
	// session, such as an unwritable audit log.
	LevelWarn
	// LevelError reports a failure that changed what the session got, such
	// as a command that could not be started.
	LevelError
)

var levelNames = [...]string{
	LevelDebug: "DEBUG",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

func (l Level) String() string {
	if l >= 0 && int(l) < len(levelNames) {
		return levelNames[l]
	}
	return fmt.Sprintf("Level(%d)", int(l))
}
