package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/xdg/sshgate/internal/pathutil"
)

// Sentinel errors returned by Load. Callers distinguish them with errors.Is.
var (
	// ErrUnreadable indicates the policy file could not be read.
	ErrUnreadable = errors.New("config file could not be opened")

	// ErrInvalid indicates the policy file was read but is malformed or
	// fails validation.
	ErrInvalid = errors.New("config file not valid")
)

// Load reads, parses, and validates the policy file at path.
// Paths containing ~ are expanded to the actual home directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalid, path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalid, path, err)
	}

	expandPaths(cfg)
	return cfg, nil
}

// expandPaths expands ~ to the home directory in the file path fields.
// Executables are left alone; they are compared byte-for-byte.
func expandPaths(cfg *Config) {
	cfg.LogFile = pathutil.ExpandHome(cfg.LogFile)
	cfg.DebugLog = pathutil.ExpandHome(cfg.DebugLog)
}
