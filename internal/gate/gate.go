// Package gate decides what a forced-command SSH session may run.
//
// A session is evaluated once: the requested command is split on
// whitespace, its first token is resolved against the search path, and the
// resolved path is compared with the policy's allowlist in order. The first
// matching entry wins. A match runs the resolved path with either the
// entry's forced arguments or the user's own; no match is a denial. A
// session with no command runs the policy's default command, if any.
//
// Every outcome except the no-op is written to the audit log, and the
// attempt itself is logged before the decision is acted on.
package gate

import (
	"context"
	"fmt"
	"io"

	"github.com/xdg/sshgate/internal/audit"
	"github.com/xdg/sshgate/internal/clog"
	"github.com/xdg/sshgate/internal/executor"
	"github.com/xdg/sshgate/internal/pathutil"
)

// Authorizer evaluates a session and carries out the decision.
type Authorizer struct {
	policy   Policy
	resolver Resolver
	runner   executor.Runner
	audit    *audit.Logger
	out      io.Writer
}

// Options configures an Authorizer.
type Options struct {
	// Policy is the allowlist and default command.
	Policy Policy

	// Resolver resolves the requested executable token.
	Resolver Resolver

	// Runner runs approved commands.
	Runner executor.Runner

	// Audit receives one record per event; nil disables auditing.
	Audit *audit.Logger

	// Out receives the denial notice; nil discards it.
	Out io.Writer
}

// New creates an Authorizer.
func New(opts Options) *Authorizer {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	return &Authorizer{
		policy:   opts.Policy,
		resolver: opts.Resolver,
		runner:   opts.Runner,
		audit:    opts.Audit,
		out:      out,
	}
}

// PathResolver resolves tokens against pathEnv the way which(1) does.
func PathResolver(pathEnv string) Resolver {
	return ResolverFunc(func(token string) string {
		return pathutil.LookPath(token, pathEnv)
	})
}

// Authorize evaluates s, runs whatever it is allowed to run, and records
// the outcome. It never fails: denial, unresolvable commands and child
// failures are all ordinary outcomes.
func (a *Authorizer) Authorize(ctx context.Context, s Session) Decision {
	if s.Command != "" {
		a.record(a.audit.LogAttempted(s.User, s.Client, s.Command))
	}

	d := Decide(a.policy, s, a.resolver)

	switch d.Outcome {
	case NoCommandNoDefault:
		clog.Debug("no command requested and no default configured")

	case ExecutedDefault:
		a.run(ctx, d.Command)
		a.record(a.audit.LogExecutedDefault(s.User, s.Client, d.Command))

	case Executed:
		clog.Debug("%q resolved to %q, matched allowed_commands[%d]", d.Request.Executable, d.Request.ResolvedPath, d.Entry)
		a.run(ctx, d.Command)
		a.record(a.audit.LogExecuted(s.User, s.Client, d.Command))

	case Denied:
		if d.Malformed {
			clog.Debug("blank command line denied")
		} else {
			clog.Debug("%q resolved to %q, no allowlist match", d.Request.Executable, d.Request.ResolvedPath)
		}
		a.record(a.audit.LogDenied(s.User, s.Client, s.Command))
		_, _ = fmt.Fprintln(a.out, a.policy.DenyMessage)
	}

	return d
}

// run executes command. The child's exit status is not propagated.
func (a *Authorizer) run(ctx context.Context, command string) {
	code, err := a.runner.Run(ctx, command)
	if err != nil {
		clog.Error("could not run command: %v", err)
		return
	}
	clog.Debug("command exited with status %d", code)
}

// record reports audit write failures without changing the decision.
func (a *Authorizer) record(err error) {
	if err != nil {
		clog.Warn("audit log: %v", err)
	}
}
