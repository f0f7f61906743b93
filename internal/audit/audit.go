// Package audit records forced-command decisions, one line per event.
// Lines are appended to a shared file that several sshgate processes may
// write at once, so each record is emitted with a single Write.
package audit

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Kind identifies what happened to a requested command.
type Kind string

// Event kinds, in the order they can occur within one session.
const (
	KindAttempted       Kind = "Attempted"
	KindExecuted        Kind = "Executed"
	KindExecutedDefault Kind = "ExecutedDefault"
	KindDenied          Kind = "Denied"
)

// phrase returns the text written between the client address and the command.
// The default command shares the executed phrase so existing log parsers
// see one format.
func (k Kind) phrase() string {
	switch k {
	case KindAttempted:
		return "Attempted command"
	case KindExecuted, KindExecutedDefault:
		return "Executed command"
	case KindDenied:
		return "Denied attempt"
	default:
		return string(k)
	}
}

// UnknownClient is logged when the client address is not available.
const UnknownClient = "unknown"

// TimestampLayout is the layout of the leading timestamp on every line.
const TimestampLayout = "2006-01-02 15:04:05.000000000 -07:00"

// ClientAddress extracts the client IP from an SSH_CLIENT style descriptor
// ("ip port localport"). An empty descriptor yields UnknownClient.
func ClientAddress(descriptor string) string {
	fields := strings.Fields(descriptor)
	if len(fields) == 0 {
		return UnknownClient
	}
	return fields[0]
}

// Record is a single audit log entry.
type Record struct {
	// Timestamp is when the outcome was determined.
	Timestamp time.Time

	// Kind is the outcome.
	Kind Kind

	// User is the acting login name; may be empty.
	User string

	// Client is the originating address.
	Client string

	// Command is the command text relevant to Kind: the raw request for
	// Attempted and Denied, the composed command for Executed.
	Command string
}

// Format returns the record as a log line without the trailing newline.
// Format: 2024-01-15 14:32:05.000000000 +01:00 - User "git" [203.0.113.9] Executed command: /usr/bin/git upload-pack 'repo'
func (r *Record) Format() string {
	client := r.Client
	if client == "" {
		client = UnknownClient
	}

	var b strings.Builder
	b.WriteString(r.Timestamp.Format(TimestampLayout))
	b.WriteString(` - User "`)
	b.WriteString(r.User)
	b.WriteString(`" [`)
	b.WriteString(client)
	b.WriteString("] ")
	b.WriteString(r.Kind.phrase())
	b.WriteString(": ")
	b.WriteString(oneLine(r.Command))
	return b.String()
}

// oneLine keeps a record on a single line so readers can split on newlines.
func oneLine(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return strings.NewReplacer("\r", `\r`, "\n", `\n`).Replace(s)
}

// Logger writes audit records to an io.Writer.
type Logger struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

// NewLogger creates a new audit logger that writes to the given writer.
func NewLogger(w io.Writer) *Logger {
	return &Logger{w: w, now: time.Now}
}

// Log writes a record to the audit log. A nil Logger or writer drops the
// record, which is how disabled auditing is represented.
func (l *Logger) Log(r *Record) error {
	if l == nil || l.w == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	line := r.Format() + "\n"
	if _, err := io.WriteString(l.w, line); err != nil {
		return fmt.Errorf("write audit record: %w", err)
	}
	return nil
}

// Enabled reports whether records are actually written.
func (l *Logger) Enabled() bool {
	return l != nil && l.w != nil
}

func (l *Logger) record(kind Kind, user, client, cmd string) error {
	if !l.Enabled() {
		return nil
	}
	return l.Log(&Record{
		Timestamp: l.now(),
		Kind:      kind,
		User:      user,
		Client:    client,
		Command:   cmd,
	})
}

// LogAttempted logs the raw command a session asked for.
func (l *Logger) LogAttempted(user, client, cmd string) error {
	return l.record(KindAttempted, user, client, cmd)
}

// LogExecuted logs the composed command that was run.
func (l *Logger) LogExecuted(user, client, cmd string) error {
	return l.record(KindExecuted, user, client, cmd)
}

// LogExecutedDefault logs the default command run for a session that
// requested none.
func (l *Logger) LogExecutedDefault(user, client, cmd string) error {
	return l.record(KindExecutedDefault, user, client, cmd)
}

// LogDenied logs a raw command that matched no allowlist entry.
func (l *Logger) LogDenied(user, client, cmd string) error {
	return l.record(KindDenied, user, client, cmd)
}
