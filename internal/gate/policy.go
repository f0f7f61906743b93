package gate

import "github.com/xdg/sshgate/internal/config"

// Entry is one allowlist entry.
type Entry struct {
	// Executable is compared byte-for-byte with the resolved path.
	Executable string

	// ForceArguments replaces the user's arguments when non-nil.
	ForceArguments []string
}

// Forced reports whether the entry overrides the user's arguments.
func (e Entry) Forced() bool {
	return e.ForceArguments != nil
}

// Policy is the administrator-defined decision input. It is built once per
// process and not modified afterwards.
type Policy struct {
	// DefaultCommand runs when no command was requested. Empty means none.
	DefaultCommand string

	// Allowed is searched in order; the first match wins.
	Allowed []Entry

	// DenyMessage is printed to the user on denial.
	DenyMessage string
}

// PolicyFromConfig converts a loaded policy file into a Policy.
func PolicyFromConfig(cfg *config.Config) Policy {
	p := Policy{
		DefaultCommand: cfg.DefaultCommand,
		Allowed:        make([]Entry, 0, len(cfg.AllowedCommands)),
		DenyMessage:    cfg.DenyMessage,
	}
	if p.DenyMessage == "" {
		p.DenyMessage = config.DefaultDenyMessage
	}
	for _, opt := range cfg.AllowedCommands {
		e := Entry{Executable: opt.Executable}
		if opt.Forced() {
			e.ForceArguments = append([]string{}, opt.ForceArguments...)
		}
		p.Allowed = append(p.Allowed, e)
	}
	return p
}

// match returns the index of the first entry for path, or -1.
func (p Policy) match(path string) int {
	if path == "" {
		return -1
	}
	for i, e := range p.Allowed {
		if e.Executable == path {
			return i
		}
	}
	return -1
}
