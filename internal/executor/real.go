package executor

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// ShellRunner runs command lines with an external POSIX shell as
// `shell -c command`.
type ShellRunner struct {
	// Shell is the shell binary; DefaultShell when empty.
	Shell string

	// Stdio are the streams handed to the shell.
	Stdio Stdio

	// Env is the shell's environment; nil inherits the current process's.
	Env []string
}

// NewShellRunner creates a ShellRunner for shell that inherits the
// process's standard streams.
func NewShellRunner(shell string) *ShellRunner {
	return &ShellRunner{Shell: shell, Stdio: InheritStdio()}
}

// Run runs command and waits for it.
func (r *ShellRunner) Run(ctx context.Context, command string) (int, error) {
	shell := r.Shell
	if shell == "" {
		shell = DefaultShell
	}

	cmd := exec.CommandContext(ctx, shell, "-c", command)
	cmd.Stdin = r.Stdio.Stdin
	cmd.Stdout = r.Stdio.Stdout
	cmd.Stderr = r.Stdio.Stderr
	cmd.Env = r.Env

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	// The command ran but returned non-zero (or was killed by a signal)
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}

	// The shell itself could not be started
	return -1, fmt.Errorf("run %s: %w", shell, err)
}
