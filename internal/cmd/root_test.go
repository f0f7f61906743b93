package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xdg/sshgate/internal/clog"
	"github.com/xdg/sshgate/internal/config"
	"github.com/xdg/sshgate/internal/executor"
	"github.com/xdg/sshgate/internal/gate"
	"github.com/xdg/sshgate/internal/testutil"
)

type recordingRunner struct {
	shell    string
	commands []string
}

func (r *recordingRunner) Run(_ context.Context, command string) (int, error) {
	r.commands = append(r.commands, command)
	return 0, nil
}

type result struct {
	stdout string
	stderr string
	runner *recordingRunner
	err    error
}

// execute runs the root command with args against env, capturing user
// output and the commands that would have run.
func execute(t *testing.T, env map[string]string, args ...string) result {
	t.Helper()

	stdout, stderr := captureTerm(t)

	old := clog.ReplaceGlobal(clog.NewLogger(stderr))

	runner := &recordingRunner{}
	origLookup, origRunner := lookupEnv, newRunner
	lookupEnv = func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
	newRunner = func(shell string) executor.Runner {
		runner.shell = shell
		return runner
	}

	t.Cleanup(func() {
		clog.ReplaceGlobal(old)
		lookupEnv, newRunner = origLookup, origRunner
		resetFlags()
	})

	resetFlags()
	// A nil slice makes cobra fall back to os.Args.
	if args == nil {
		args = []string{}
	}
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()

	return result{stdout: stdout.String(), stderr: stderr.String(), runner: runner, err: err}
}

// resetFlags clears flag values left over from an earlier Execute.
func resetFlags() {
	for _, name := range []string{"help", "version", "debug", "check"} {
		if f := rootCmd.Flags().Lookup(name); f != nil {
			_ = f.Value.Set("false")
			f.Changed = false
		}
	}
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitCodeError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// fixture is a policy allowing a fake git with forced arguments, plus a
// PATH on which that git is found.
type fixture struct {
	dir    string
	git    string
	policy string
	audit  string
}

func newFixture(t *testing.T, extra string) fixture {
	t.Helper()
	dir := t.TempDir()
	bin := filepath.Join(dir, "bin")
	if err := os.Mkdir(bin, 0o755); err != nil {
		t.Fatalf("os.Mkdir() error = %v", err)
	}
	git := testutil.WriteExecutable(t, bin, "git", "")

	auditPath := filepath.Join(dir, "audit.log")
	content := fmt.Sprintf(`allowed_commands:
  - executable: %s
    force_arguments: ["upload-pack", "'repo'"]
log_file: %s
%s`, git, auditPath, extra)

	policy := testutil.WriteFile(t, dir, "sshgate.yaml", content, 0o644)
	return fixture{dir: dir, git: git, policy: policy, audit: auditPath}
}

func (f fixture) env(command string) map[string]string {
	env := map[string]string{
		"USER":       "git",
		"SSH_CLIENT": "203.0.113.9 51234 22",
		"PATH":       filepath.Join(f.dir, "bin"),
	}
	if command != "" {
		env["SSH_ORIGINAL_COMMAND"] = command
	}
	return env
}

func (f fixture) auditLines(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(f.audit)
	if err != nil {
		t.Fatalf("read audit log: %v", err)
	}
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestRootCommand_Help(t *testing.T) {
	var stdout bytes.Buffer

	cmd := rootCmd
	cmd.SetOut(&stdout)
	cmd.SetErr(&stdout)
	cmd.SetArgs([]string{"--help"})
	t.Cleanup(func() {
		cmd.SetOut(nil)
		cmd.SetErr(nil)
		resetFlags()
	})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("root command --help returned error: %v", err)
	}

	output := stdout.String()
	for _, expected := range []string{"sshgate", "authorized_keys", "Usage:", "--check", "--debug"} {
		if !strings.Contains(output, expected) {
			t.Errorf("help output missing expected string %q\nGot: %s", expected, output)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	var stdout bytes.Buffer

	cmd := rootCmd
	cmd.SetOut(&stdout)
	cmd.SetErr(&stdout)
	cmd.SetArgs([]string{"--version"})
	t.Cleanup(func() {
		cmd.SetOut(nil)
		cmd.SetErr(nil)
		resetFlags()
	})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("root command --version returned error: %v", err)
	}
	if !strings.Contains(stdout.String(), "sshgate") {
		t.Errorf("version output missing 'sshgate'\nGot: %s", stdout.String())
	}
}

func TestRoot_NoConfigFile(t *testing.T) {
	r := execute(t, nil)

	if code := exitCode(r.err); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if r.stdout != "Usage: sshgate [CONFIG_FILE]\n" {
		t.Errorf("stdout = %q", r.stdout)
	}
	if len(r.runner.commands) != 0 {
		t.Errorf("ran %q without a config", r.runner.commands)
	}
}

func TestRoot_ExtraArgumentsIgnored(t *testing.T) {
	f := newFixture(t, "")
	r := execute(t, f.env(""), f.policy, "extra")

	if code := exitCode(r.err); code != 0 {
		t.Errorf("exit code = %d, want 0 (stderr %q)", code, r.stderr)
	}
}

func TestRoot_UnreadableConfig(t *testing.T) {
	r := execute(t, nil, filepath.Join(t.TempDir(), "missing.yaml"))

	if code := exitCode(r.err); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if r.stderr != "Config file could not be opened\n" {
		t.Errorf("stderr = %q", r.stderr)
	}
	if r.stdout != "" {
		t.Errorf("stdout = %q, want empty", r.stdout)
	}
}

func TestRoot_InvalidConfig(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "sshgate.json", `{"allowed_commands": "not a list"}`, 0o644)

	r := execute(t, nil, path)

	if code := exitCode(r.err); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if r.stderr != "config file not valid\n" {
		t.Errorf("stderr = %q", r.stderr)
	}
}

func TestRoot_ExecutesForcedCommand(t *testing.T) {
	f := newFixture(t, "")

	r := execute(t, f.env("git shell-injection-attempt"), f.policy)

	if code := exitCode(r.err); code != 0 {
		t.Fatalf("exit code = %d, want 0 (stderr %q)", code, r.stderr)
	}
	want := f.git + " upload-pack 'repo'"
	if len(r.runner.commands) != 1 || r.runner.commands[0] != want {
		t.Fatalf("ran %q, want [%q]", r.runner.commands, want)
	}

	lines := f.auditLines(t)
	if len(lines) != 2 {
		t.Fatalf("expected 2 audit lines, got %q", lines)
	}
	if !strings.HasSuffix(lines[0], `- User "git" [203.0.113.9] Attempted command: git shell-injection-attempt`) {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], `- User "git" [203.0.113.9] Executed command: `+want) {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestRoot_DeniesUnlistedCommand(t *testing.T) {
	f := newFixture(t, "")

	r := execute(t, f.env("rm -rf /"), f.policy)

	if code := exitCode(r.err); code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	if r.stdout != "Access denied\n" {
		t.Errorf("stdout = %q, want %q", r.stdout, "Access denied\n")
	}
	if len(r.runner.commands) != 0 {
		t.Errorf("ran %q for a denied command", r.runner.commands)
	}

	lines := f.auditLines(t)
	if len(lines) != 2 || !strings.HasSuffix(lines[0], "Attempted command: rm -rf /") || !strings.HasSuffix(lines[1], "Denied attempt: rm -rf /") {
		t.Errorf("unexpected audit lines: %q", lines)
	}
}

func TestRoot_CustomDenyMessage(t *testing.T) {
	f := newFixture(t, "deny_message: Only git is served here.\n")

	r := execute(t, f.env("bash"), f.policy)

	if r.stdout != "Only git is served here.\n" {
		t.Errorf("stdout = %q", r.stdout)
	}
}

func TestRoot_MissingClientAddress(t *testing.T) {
	f := newFixture(t, "")
	env := f.env("rm -rf /")
	delete(env, "SSH_CLIENT")

	r := execute(t, env, f.policy)

	if code := exitCode(r.err); code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	for _, line := range f.auditLines(t) {
		if !strings.Contains(line, `User "git" [unknown]`) {
			t.Errorf("line %q does not record an unknown client", line)
		}
	}
}

func TestRoot_NoCommandNoDefault(t *testing.T) {
	f := newFixture(t, "")

	r := execute(t, f.env(""), f.policy)

	if code := exitCode(r.err); code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	if len(r.runner.commands) != 0 {
		t.Errorf("ran %q, want nothing", r.runner.commands)
	}
	if r.stdout != "" {
		t.Errorf("stdout = %q, want empty", r.stdout)
	}
	if data, err := os.ReadFile(f.audit); err == nil && len(data) != 0 {
		t.Errorf("expected no audit records, got %q", data)
	}
}

func TestRoot_DefaultCommand(t *testing.T) {
	f := newFixture(t, "default_command: echo welcome\n")

	r := execute(t, f.env(""), f.policy)

	if len(r.runner.commands) != 1 || r.runner.commands[0] != "echo welcome" {
		t.Fatalf("ran %q, want the default command once", r.runner.commands)
	}
	lines := f.auditLines(t)
	if len(lines) != 1 || !strings.HasSuffix(lines[0], "Executed command: echo welcome") {
		t.Errorf("unexpected audit lines: %q", lines)
	}
}

func TestRoot_AuditLogUnavailable(t *testing.T) {
	f := newFixture(t, "")
	policy := strings.Replace(mustRead(t, f.policy), f.audit, filepath.Join(f.dir, "missing", "audit.log"), 1)
	if err := os.WriteFile(f.policy, []byte(policy), 0o644); err != nil {
		t.Fatalf("os.WriteFile() error = %v", err)
	}

	r := execute(t, f.env("git fetch"), f.policy)

	if code := exitCode(r.err); code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	if len(r.runner.commands) != 1 {
		t.Errorf("ran %q, want the forced command", r.runner.commands)
	}
	if !strings.Contains(r.stderr, "[WARN] audit log disabled") {
		t.Errorf("stderr = %q, want an audit warning", r.stderr)
	}
}

func TestRoot_ShellSetting(t *testing.T) {
	f := newFixture(t, "shell: builtin\n")

	r := execute(t, f.env("git fetch"), f.policy)

	if r.runner.shell != config.ShellBuiltin {
		t.Errorf("runner built for shell %q, want %q", r.runner.shell, config.ShellBuiltin)
	}
}

func TestRoot_Check(t *testing.T) {
	f := newFixture(t, "default_command: echo welcome\n")

	r := execute(t, f.env("git fetch"), "--check", f.policy)

	if code := exitCode(r.err); code != 0 {
		t.Fatalf("exit code = %d, want 0 (stderr %q)", code, r.stderr)
	}
	if len(r.runner.commands) != 0 {
		t.Errorf("--check ran %q", r.runner.commands)
	}
	for _, want := range []string{"(ok)", "echo welcome", f.git, "forced: upload-pack 'repo'", f.audit, "/bin/sh"} {
		if !strings.Contains(r.stdout, want) {
			t.Errorf("summary missing %q\nGot: %s", want, r.stdout)
		}
	}
	if _, err := os.Stat(f.audit); !os.IsNotExist(err) {
		t.Errorf("--check touched the audit log: %v", err)
	}
}

func TestRoot_CheckReportsCause(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "sshgate.yaml", "allowed_commands:\n  - executable: \"\"\n", 0o644)

	r := execute(t, nil, "--check", path)

	if code := exitCode(r.err); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.HasPrefix(r.stderr, "config file not valid: ") || !strings.Contains(r.stderr, "allowed_commands[0].executable") {
		t.Errorf("stderr = %q", r.stderr)
	}
}

func TestRoot_CheckWarnings(t *testing.T) {
	f := newFixture(t, "")
	policy := mustRead(t, f.policy) + "\n"
	policy = strings.Replace(policy, "allowed_commands:\n", "allowed_commands:\n  - executable: git\n", 1)
	if err := os.WriteFile(f.policy, []byte(policy), 0o644); err != nil {
		t.Fatalf("os.WriteFile() error = %v", err)
	}

	r := execute(t, nil, "--check", f.policy)

	if !strings.Contains(r.stderr, "[WARN] allowed_commands[0].executable") {
		t.Errorf("stderr = %q, want a relative-path warning", r.stderr)
	}
}

func TestRoot_DebugLog(t *testing.T) {
	f := newFixture(t, "")
	debugPath := filepath.Join(f.dir, "debug.log")
	if err := os.WriteFile(f.policy, []byte(mustRead(t, f.policy)+"debug_log: "+debugPath+"\n"), 0o644); err != nil {
		t.Fatalf("os.WriteFile() error = %v", err)
	}

	execute(t, f.env("rm -rf /"), "--debug", f.policy)

	data, err := os.ReadFile(debugPath)
	if err != nil {
		t.Fatalf("read debug log: %v", err)
	}
	if !strings.Contains(string(data), "no allowlist match") {
		t.Errorf("debug log = %q, want the decision trace", data)
	}
}

func TestSessionFromEnv(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want gate.Session
	}{
		{
			name: "full session",
			env: map[string]string{
				"SSH_ORIGINAL_COMMAND": "git upload-pack 'repo'",
				"USER":                 "git",
				"SSH_CLIENT":           "198.51.100.7 40022 22",
			},
			want: gate.Session{Command: "git upload-pack 'repo'", User: "git", Client: "198.51.100.7"},
		},
		{
			name: "empty command is no command",
			env:  map[string]string{"SSH_ORIGINAL_COMMAND": "", "USER": "git", "SSH_CLIENT": "198.51.100.7 40022 22"},
			want: gate.Session{User: "git", Client: "198.51.100.7"},
		},
		{
			name: "nothing set",
			env:  map[string]string{},
			want: gate.Session{Client: "unknown"},
		},
		{
			name: "IPv6 client",
			env:  map[string]string{"SSH_CLIENT": "2001:db8::1 40022 22"},
			want: gate.Session{Client: "2001:db8::1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sessionFromEnv(func(key string) (string, bool) {
				v, ok := tt.env[key]
				return v, ok
			})
			if got != tt.want {
				t.Errorf("sessionFromEnv() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRunnerForShell(t *testing.T) {
	if _, ok := runnerForShell(config.ShellBuiltin).(*executor.InterpRunner); !ok {
		t.Errorf("builtin did not select the interpreter")
	}

	tests := []struct {
		shell string
		want  string
	}{
		{"", executor.DefaultShell},
		{config.ShellDefault, executor.DefaultShell},
		{"/bin/bash", "/bin/bash"},
	}
	for _, tt := range tests {
		r, ok := runnerForShell(tt.shell).(*executor.ShellRunner)
		if !ok {
			t.Errorf("runnerForShell(%q) is not a ShellRunner", tt.shell)
			continue
		}
		if r.Shell != tt.want {
			t.Errorf("runnerForShell(%q).Shell = %q, want %q", tt.shell, r.Shell, tt.want)
		}
	}
}

func mustRead(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("os.ReadFile() error = %v", err)
	}
	return string(data)
}
