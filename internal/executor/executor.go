// Package executor runs an approved command line on behalf of the remote
// user. The command inherits the session's standard streams and the caller
// waits for it to finish.
package executor

import (
	"context"
	"io"
	"os"
)

// Runner executes a command line and waits for it to complete.
//
// The returned exit code is the command's own status. A non-nil error means
// the command could not be started or interpreted at all, in which case the
// exit code is -1.
type Runner interface {
	Run(ctx context.Context, command string) (int, error)
}

// Stdio holds the streams given to the command.
type Stdio struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// InheritStdio returns the process's own standard streams, so the command
// behaves as if the remote user had invoked it directly.
func InheritStdio() Stdio {
	return Stdio{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// DefaultShell is the shell used to interpret command lines.
const DefaultShell = "/bin/sh"
