package cmd

import (
	"errors"
	"fmt"

	"github.com/xdg/sshgate/internal/config"
	"github.com/xdg/sshgate/internal/term"
)

// ExitCodeError carries the process exit code out of a command. main
// exits with Code instead of the default 1.
type ExitCodeError struct {
	Code int
}

// NewExitCodeError returns an ExitCodeError for code.
func NewExitCodeError(code int) *ExitCodeError {
	return &ExitCodeError{Code: code}
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// usageLine is printed to stdout when no config file is given.
const usageLine = "Usage: sshgate [CONFIG_FILE]"

// usageError prints the usage line and returns the exit error for it.
func usageError() error {
	term.Println(usageLine)
	return NewExitCodeError(1)
}

// Startup messages printed to stderr when the config cannot be used.
const (
	unreadableMessage = "Config file could not be opened"
	invalidMessage    = "config file not valid"
)

// configError reports a config load failure to the user and returns the
// exit error for it. The detailed cause goes to the operational log only.
func configError(err error) error {
	switch {
	case errors.Is(err, config.ErrUnreadable):
		term.Errorln(unreadableMessage)
	case errors.Is(err, config.ErrInvalid):
		term.Errorln(invalidMessage)
	default:
		term.Errorln(err.Error())
	}
	return NewExitCodeError(1)
}
