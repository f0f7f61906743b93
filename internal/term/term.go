// Package term writes the messages meant for the remote SSH user: the usage
// line, startup failures, the denial notice, and the --check report.
// Diagnostics go through internal/clog instead.
//
// Messages are short and give away nothing about the policy.
package term

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu     sync.Mutex
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Redirect sends output to out and errOut until the returned function is
// called. A nil writer discards.
func Redirect(out, errOut io.Writer) (restore func()) {
	mu.Lock()
	defer mu.Unlock()

	prevOut, prevErr := stdout, stderr
	stdout, stderr = orDiscard(out), orDiscard(errOut)
	return func() {
		mu.Lock()
		defer mu.Unlock()
		stdout, stderr = prevOut, prevErr
	}
}

func orDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}

// Println writes a line to stdout.
func Println(a ...any) {
	mu.Lock()
	defer mu.Unlock()
	_, _ = fmt.Fprintln(stdout, a...)
}

// Errorln writes msg as a bare line to stderr.
func Errorln(msg string) {
	mu.Lock()
	defer mu.Unlock()
	_, _ = fmt.Fprintln(stderr, msg)
}

// Stdout returns a writer for the user's stdout. It follows later calls to
// Redirect.
func Stdout() io.Writer {
	return stdoutWriter{}
}

type stdoutWriter struct{}

func (stdoutWriter) Write(p []byte) (int, error) {
	mu.Lock()
	defer mu.Unlock()
	return stdout.Write(p)
}
