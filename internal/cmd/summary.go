package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/xdg/sshgate/internal/clog"
	"github.com/xdg/sshgate/internal/config"
	"github.com/xdg/sshgate/internal/executor"
	"github.com/xdg/sshgate/internal/gate"
)

// printSummary writes the --check report for cfg. Policy warnings go to
// the operational log.
func printSummary(w io.Writer, path string, cfg *config.Config) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	p := gate.PolicyFromConfig(cfg)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "config:\t%s (ok)\n", abs)
	fmt.Fprintf(tw, "default_command:\t%s\n", orNone(p.DefaultCommand))
	fmt.Fprintf(tw, "shell:\t%s\n", shellName(cfg.Shell))
	fmt.Fprintf(tw, "audit log:\t%s\n", auditDescription(cfg))
	fmt.Fprintf(tw, "deny_message:\t%s\n", p.DenyMessage)
	_ = tw.Flush()

	if len(p.Allowed) == 0 {
		fmt.Fprintln(w, "allowed_commands: (none, every command is denied)")
	} else {
		fmt.Fprintln(w, "allowed_commands:")
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for i, e := range p.Allowed {
			fmt.Fprintf(tw, "  [%d]\t%s\t%s\n", i, e.Executable, argumentsDescription(e))
		}
		_ = tw.Flush()
	}

	for _, warning := range config.Warnings(cfg) {
		clog.Warn("%s", warning)
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// shellName describes the shell setting.
func shellName(shell string) string {
	switch shell {
	case config.ShellBuiltin:
		return "builtin interpreter"
	case "", config.ShellDefault:
		return executor.DefaultShell
	default:
		return shell
	}
}

func auditDescription(cfg *config.Config) string {
	if cfg.LogFile == "" {
		return "(disabled)"
	}
	r := cfg.LogRotate
	if !r.Enabled() {
		return cfg.LogFile
	}
	desc := fmt.Sprintf("%s (rotate at %d MB", cfg.LogFile, r.MaxSizeMB)
	if r.MaxBackups > 0 {
		desc += fmt.Sprintf(", keep %d", r.MaxBackups)
	}
	if r.MaxAgeDays > 0 {
		desc += fmt.Sprintf(", max %d days", r.MaxAgeDays)
	}
	if r.Compress {
		desc += ", compressed"
	}
	return desc + ")"
}

func argumentsDescription(e gate.Entry) string {
	switch {
	case !e.Forced():
		return "user arguments"
	case len(e.ForceArguments) == 0:
		return "forced: no arguments"
	default:
		return "forced: " + strings.Join(e.ForceArguments, " ")
	}
}
