package config

import (
	"fmt"
	"path/filepath"
)

// Validate checks a parsed Config for values that can never work. It
// validates:
//   - allowed_commands is present, though it may be an empty list
//   - Every allowed_commands entry names an executable
//   - Shell is empty, "sh", "builtin", or an absolute path
//   - log_rotate values are non-negative
//   - log_rotate is only set together with log_file
//
// Returns nil if the config is valid, or an error with a clear message
// indicating which field is invalid.
func Validate(cfg *Config) error {
	if cfg.AllowedCommands == nil {
		return fmt.Errorf("allowed_commands: required, use [] to allow nothing")
	}
	for i, opt := range cfg.AllowedCommands {
		if opt.Executable == "" {
			return fmt.Errorf("allowed_commands[%d].executable: must not be empty", i)
		}
	}

	if err := validateShell(cfg.Shell); err != nil {
		return err
	}

	r := cfg.LogRotate
	if r.MaxSizeMB < 0 {
		return fmt.Errorf("log_rotate.max_size_mb: must be non-negative, got %d", r.MaxSizeMB)
	}
	if r.MaxBackups < 0 {
		return fmt.Errorf("log_rotate.max_backups: must be non-negative, got %d", r.MaxBackups)
	}
	if r.MaxAgeDays < 0 {
		return fmt.Errorf("log_rotate.max_age_days: must be non-negative, got %d", r.MaxAgeDays)
	}
	if r.Enabled() && cfg.LogFile == "" {
		return fmt.Errorf("log_rotate: requires log_file to be set")
	}

	return nil
}

// Warnings returns human-readable notes about entries that are valid but
// unlikely to do what the administrator meant.
func Warnings(cfg *Config) []string {
	var warnings []string
	seen := make(map[string]int, len(cfg.AllowedCommands))
	for i, opt := range cfg.AllowedCommands {
		if !filepath.IsAbs(opt.Executable) {
			warnings = append(warnings, fmt.Sprintf(
				"allowed_commands[%d].executable: %q is not an absolute path and will only match a relative request", i, opt.Executable))
		}
		if first, ok := seen[opt.Executable]; ok {
			warnings = append(warnings, fmt.Sprintf(
				"allowed_commands[%d].executable: %q is shadowed by allowed_commands[%d]", i, opt.Executable, first))
			continue
		}
		seen[opt.Executable] = i
	}
	return warnings
}

func validateShell(shell string) error {
	switch shell {
	case "", ShellDefault, ShellBuiltin:
		return nil
	}
	if !filepath.IsAbs(shell) {
		return fmt.Errorf("shell: invalid value %q, must be %q, %q, or an absolute path", shell, ShellDefault, ShellBuiltin)
	}
	return nil
}
