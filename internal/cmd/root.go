// Package cmd implements the sshgate command line.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/xdg/sshgate/internal/version"
)

var (
	debugFlag bool
	checkFlag bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sshgate CONFIG_FILE",
	Short: "Forced-command gatekeeper for SSH logins",
	Long: `sshgate restricts an SSH account to an allowlist of commands.

Install it as the forced command of an authorized_keys entry or a Match
block, pointing at a policy file:

  command="/usr/local/bin/sshgate /etc/sshgate.yaml" ssh-ed25519 AAAA...

The requested command is resolved against PATH and compared with the
policy's allowed_commands. Matching commands run, optionally with arguments
forced by the policy; everything else is denied. Every attempt is written
to the audit log.`,
	Version:       version.String(),
	Args:          requireConfigFile,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runGate,
}

func init() {
	rootCmd.Flags().BoolVar(&debugFlag, "debug", false, "write debug output to the policy's debug_log")
	rootCmd.Flags().BoolVar(&checkFlag, "check", false, "validate CONFIG_FILE, print a summary, and exit")
}

// requireConfigFile rejects an invocation without a config file. Extra
// arguments are ignored.
func requireConfigFile(_ *cobra.Command, args []string) error {
	if len(args) == 0 {
		return usageError()
	}
	return nil
}

// lookupEnv reads the session environment. Tests replace it.
var lookupEnv = os.LookupEnv

// Execute runs the root command and returns any error.
func Execute() error {
	return rootCmd.Execute()
}
