package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xdg/sshgate/internal/audit"
	"github.com/xdg/sshgate/internal/clog"
	"github.com/xdg/sshgate/internal/config"
	"github.com/xdg/sshgate/internal/executor"
	"github.com/xdg/sshgate/internal/gate"
	"github.com/xdg/sshgate/internal/term"
)

// Environment variables set by sshd for a forced-command session.
const (
	envOriginalCommand = "SSH_ORIGINAL_COMMAND"
	envUser            = "USER"
	envClient          = "SSH_CLIENT"
	envPath            = "PATH"
)

// newRunner selects the executor for the policy's shell setting. Tests
// replace it.
var newRunner = runnerForShell

// runGate loads the policy named by args[0] and authorizes the current
// session against it. Every authorization outcome exits 0.
func runGate(cmd *cobra.Command, args []string) error {
	path := args[0]

	cfg, err := config.Load(path)
	if err != nil {
		if checkFlag {
			term.Errorln(err.Error())
			return NewExitCodeError(1)
		}
		return configError(err)
	}

	if checkFlag {
		printSummary(term.Stdout(), path, cfg)
		return nil
	}

	configureLogging(cfg)
	defer func() { _ = clog.Close() }()

	for _, w := range config.Warnings(cfg) {
		clog.Debug("policy: %s", w)
	}

	logger, closeAudit := openAudit(cfg)
	defer closeAudit()

	session := sessionFromEnv(lookupEnv)
	pathEnv, _ := lookupEnv(envPath)

	auth := gate.New(gate.Options{
		Policy:   gate.PolicyFromConfig(cfg),
		Resolver: gate.PathResolver(pathEnv),
		Runner:   newRunner(cfg.Shell),
		Audit:    logger,
		Out:      term.Stdout(),
	})

	d := auth.Authorize(cmd.Context(), session)
	clog.Debug("session for %q: %s", session.User, d.Outcome)
	return nil
}

// sessionFromEnv builds a Session from the sshd environment. An empty
// SSH_ORIGINAL_COMMAND is the same as none.
func sessionFromEnv(lookup func(string) (string, bool)) gate.Session {
	command, _ := lookup(envOriginalCommand)
	user, _ := lookup(envUser)
	client, _ := lookup(envClient)
	return gate.Session{
		Command: command,
		User:    user,
		Client:  audit.ClientAddress(client),
	}
}

// configureLogging points the operational log at debug_log when --debug
// is given. Failures are reported and otherwise ignored.
func configureLogging(cfg *config.Config) {
	if !debugFlag {
		return
	}
	if cfg.DebugLog == "" {
		clog.Warn("--debug has no effect without debug_log in the policy")
		return
	}
	if err := clog.Configure(cfg.DebugLog); err != nil {
		clog.Warn("debug log: %v", err)
	}
}

// openAudit opens the audit sink. A sink that cannot be opened disables
// auditing for this session rather than refusing it.
func openAudit(cfg *config.Config) (*audit.Logger, func()) {
	sink, err := audit.OpenSink(audit.SinkOptions{
		Path:       cfg.LogFile,
		MaxSizeMB:  cfg.LogRotate.MaxSizeMB,
		MaxBackups: cfg.LogRotate.MaxBackups,
		MaxAgeDays: cfg.LogRotate.MaxAgeDays,
		Compress:   cfg.LogRotate.Compress,
	})
	if err != nil {
		clog.Warn("audit log disabled: %v", err)
		return nil, func() {}
	}
	if sink == nil {
		return nil, func() {}
	}
	return audit.NewLogger(sink), func() {
		if err := sink.Close(); err != nil {
			clog.Warn("close audit log: %v", err)
		}
	}
}

// runnerForShell maps the shell setting to a Runner. Validation has
// already rejected anything else.
func runnerForShell(shell string) executor.Runner {
	switch shell {
	case config.ShellBuiltin:
		return executor.NewInterpRunner()
	case "", config.ShellDefault:
		return executor.NewShellRunner(executor.DefaultShell)
	default:
		return executor.NewShellRunner(shell)
	}
}
