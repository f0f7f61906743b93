// Package main is the entry point for the sshgate forced command.
package main

import (
	"errors"
	"os"

	"github.com/xdg/sshgate/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		var exitErr *cmd.ExitCodeError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
