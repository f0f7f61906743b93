// Package config provides the policy file types for sshgate. A policy file
// names the commands a forced-command SSH login may run, the command to run
// when none was requested, and where audit lines go.
package config

// Config represents a sshgate policy file.
//
// The file is YAML, or the original JSON format. Both decoders read the
// same keys.
type Config struct {
	// DefaultCommand is run through the shell when the session requested no
	// command. Empty means no default.
	DefaultCommand string `yaml:"default_command,omitempty" json:"default_command,omitempty"`

	// AllowedCommands is matched in order; the first entry whose executable
	// equals the resolved path wins.
	AllowedCommands []CommandOption `yaml:"allowed_commands,omitempty" json:"allowed_commands,omitempty"`

	// LogFile is the audit log path. Empty disables audit logging.
	LogFile string `yaml:"log_file,omitempty" json:"log_file,omitempty"`

	// LogRotate enables size-based rotation of LogFile.
	LogRotate RotateConfig `yaml:"log_rotate,omitempty" json:"log_rotate,omitempty"`

	// Shell selects how approved commands are run: "" or "sh" for /bin/sh,
	// an absolute path to another POSIX shell, or "builtin" for the embedded
	// interpreter.
	Shell string `yaml:"shell,omitempty" json:"shell,omitempty"`

	// DenyMessage replaces the notice printed when a command is denied.
	DenyMessage string `yaml:"deny_message,omitempty" json:"deny_message,omitempty"`

	// DebugLog receives operational debug output when --debug is given.
	DebugLog string `yaml:"debug_log,omitempty" json:"debug_log,omitempty"`
}

// CommandOption is a single allowlist entry.
type CommandOption struct {
	// Executable is compared byte-for-byte against the resolved path of the
	// requested command.
	Executable string `yaml:"executable" json:"executable"`

	// ForceArguments replaces the user's arguments when non-nil. An explicit
	// empty list forces no arguments; a missing or null key passes the
	// user's arguments through.
	ForceArguments []string `yaml:"force_arguments,omitempty" json:"force_arguments,omitempty"`
}

// Forced reports whether the entry overrides the user's arguments.
func (c CommandOption) Forced() bool {
	return c.ForceArguments != nil
}

// RotateConfig contains audit log rotation settings. Rotation is enabled
// when MaxSizeMB is positive.
type RotateConfig struct {
	MaxSizeMB  int  `yaml:"max_size_mb,omitempty" json:"max_size_mb,omitempty"`
	MaxBackups int  `yaml:"max_backups,omitempty" json:"max_backups,omitempty"`
	MaxAgeDays int  `yaml:"max_age_days,omitempty" json:"max_age_days,omitempty"`
	Compress   bool `yaml:"compress,omitempty" json:"compress,omitempty"`
}

// Enabled reports whether rotation is configured.
func (r RotateConfig) Enabled() bool {
	return r.MaxSizeMB > 0
}

// Shell values with special meaning.
const (
	ShellDefault = "sh"
	ShellBuiltin = "builtin"
)

// DefaultDenyMessage is printed when a command is denied and no
// deny_message is configured.
const DefaultDenyMessage = "Access denied"
