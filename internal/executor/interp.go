package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// InterpRunner runs command lines with the embedded mvdan.cc/sh POSIX
// interpreter instead of an external shell. External programs named by the
// command are still executed as child processes.
type InterpRunner struct {
	// Stdio are the streams handed to the interpreter.
	Stdio Stdio

	// Env is the interpreter's environment; nil uses the current process's.
	Env []string

	// Dir is the working directory; empty uses the current directory.
	Dir string
}

// NewInterpRunner creates an InterpRunner that inherits the process's
// standard streams and environment.
func NewInterpRunner() *InterpRunner {
	return &InterpRunner{Stdio: InheritStdio()}
}

// Run parses and interprets command, waiting for any programs it starts.
func (r *InterpRunner) Run(ctx context.Context, command string) (int, error) {
	file, err := syntax.NewParser().Parse(strings.NewReader(command), "")
	if err != nil {
		return -1, fmt.Errorf("parse command: %w", err)
	}

	env := r.Env
	if env == nil {
		env = os.Environ()
	}

	opts := []interp.RunnerOption{
		interp.StdIO(r.Stdio.Stdin, r.Stdio.Stdout, r.Stdio.Stderr),
		interp.Env(expand.ListEnviron(env...)),
	}
	if r.Dir != "" {
		opts = append(opts, interp.Dir(r.Dir))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return -1, fmt.Errorf("create interpreter: %w", err)
	}

	err = runner.Run(ctx, file)
	if err == nil {
		return 0, nil
	}

	var status interp.ExitStatus
	if errors.As(err, &status) {
		return int(status), nil
	}
	return -1, fmt.Errorf("interpret command: %w", err)
}
