// Package testutil provides shared test helpers for sshgate tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to dir/name with mode and returns the path.
func WriteFile(t testing.TB, dir, name, content string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		t.Fatalf("os.WriteFile() error = %v", err)
	}
	return path
}

// WriteExecutable writes a /bin/sh script with body to dir/name.
func WriteExecutable(t testing.TB, dir, name, body string) string {
	t.Helper()
	return WriteFile(t, dir, name, "#!/bin/sh\n"+body+"\n", 0o755)
}

// RequireShell skips the test if /bin/sh is not available.
func RequireShell(t testing.TB) {
	t.Helper()
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skipf("/bin/sh not available: %v", err)
	}
}
