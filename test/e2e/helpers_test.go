//go:build e2e

package e2e

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// session describes one forced-command invocation.
type session struct {
	Command string // SSH_ORIGINAL_COMMAND; empty leaves it unset
	User    string
	Client  string // SSH_CLIENT; empty leaves it unset
	Path    string
}

// outcome is what the remote user and the administrator would observe.
type outcome struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// writeScript creates an executable shell script in dir.
func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// writePolicy writes a policy file in dir and returns its path.
func writePolicy(t *testing.T, dir, format string, args ...any) string {
	t.Helper()
	path := filepath.Join(dir, "sshgate.yaml")
	if err := os.WriteFile(path, []byte(fmt.Sprintf(format, args...)), 0o644); err != nil {
		t.Fatalf("write policy: %v", err)
	}
	return path
}

// runGate runs the sshgate binary with args for s. It is safe to call from
// several goroutines.
func runGate(t *testing.T, s session, args ...string) outcome {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = []string{"PATH=" + s.Path, "HOME=" + t.TempDir()}
	if s.Command != "" {
		cmd.Env = append(cmd.Env, "SSH_ORIGINAL_COMMAND="+s.Command)
	}
	if s.User != "" {
		cmd.Env = append(cmd.Env, "USER="+s.User)
	}
	if s.Client != "" {
		cmd.Env = append(cmd.Env, "SSH_CLIENT="+s.Client)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	code := 0
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	} else if err != nil {
		t.Errorf("run sshgate: %v", err)
		code = -1
	}

	return outcome{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: code}
}

// readLines returns the lines of the file at path, or nil if it is missing.
func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	s := strings.TrimSuffix(string(data), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
