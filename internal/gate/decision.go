package gate

import (
	"fmt"
	"strings"
)

// Outcome is the terminal state of one session.
type Outcome int

const (
	// NoCommandNoDefault: nothing requested and no default configured.
	NoCommandNoDefault Outcome = iota
	// ExecutedDefault: nothing requested, default command run.
	ExecutedDefault
	// Executed: requested command matched and was run.
	Executed
	// Denied: requested command matched no entry, or was blank.
	Denied
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case NoCommandNoDefault:
		return "NoCommandNoDefault"
	case ExecutedDefault:
		return "ExecutedDefault"
	case Executed:
		return "Executed"
	case Denied:
		return "Denied"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Session is what the SSH server told us about this login.
type Session struct {
	// Command is SSH_ORIGINAL_COMMAND. Empty means no command was requested.
	Command string

	// User is the acting login name; may be empty.
	User string

	// Client is the originating address.
	Client string
}

// Request is a requested command split into its parts.
type Request struct {
	// Raw is the command line exactly as received.
	Raw string

	// Executable is the first whitespace-delimited token.
	Executable string

	// Args are the remaining tokens.
	Args []string

	// ResolvedPath is Executable resolved against the search path, or "".
	ResolvedPath string
}

// ParseRequest tokenizes raw on whitespace. Resolution is left to the caller.
func ParseRequest(raw string) Request {
	fields := strings.Fields(raw)
	req := Request{Raw: raw}
	if len(fields) == 0 {
		return req
	}
	req.Executable = fields[0]
	req.Args = fields[1:]
	return req
}

// Resolver maps a command token to the path it would execute, returning ""
// when it resolves to nothing.
type Resolver interface {
	Resolve(token string) string
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(token string) string

// Resolve calls f(token).
func (f ResolverFunc) Resolve(token string) string {
	return f(token)
}

// Decision is the result of evaluating a Session against a Policy, before
// anything is run or logged.
type Decision struct {
	Outcome Outcome

	// Request is the parsed request; zero for the no-command outcomes.
	Request Request

	// Entry is the index of the matching allowlist entry, or -1.
	Entry int

	// Command is what to run: the default command or the composed command.
	// Empty for Denied and NoCommandNoDefault.
	Command string

	// Malformed is set when a denial came from a blank command line.
	Malformed bool
}

// Decide evaluates s against p. It performs no I/O other than through r.
func Decide(p Policy, s Session, r Resolver) Decision {
	if s.Command == "" {
		if p.DefaultCommand == "" {
			return Decision{Outcome: NoCommandNoDefault, Entry: -1}
		}
		return Decision{Outcome: ExecutedDefault, Entry: -1, Command: p.DefaultCommand}
	}

	req := ParseRequest(s.Command)
	if req.Executable == "" {
		return Decision{Outcome: Denied, Request: req, Entry: -1, Malformed: true}
	}

	req.ResolvedPath = r.Resolve(req.Executable)

	i := p.match(req.ResolvedPath)
	if i < 0 {
		return Decision{Outcome: Denied, Request: req, Entry: -1}
	}

	args := req.Args
	if p.Allowed[i].Forced() {
		args = p.Allowed[i].ForceArguments
	}

	return Decision{
		Outcome: Executed,
		Request: req,
		Entry:   i,
		Command: compose(req.ResolvedPath, args),
	}
}

// compose joins path and args with single spaces. Arguments are not quoted;
// forced arguments carry whatever shell quoting the administrator wrote.
func compose(path string, args []string) string {
	if len(args) == 0 {
		return path
	}
	return path + " " + strings.Join(args, " ")
}
