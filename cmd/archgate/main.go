// Package main provides the archgate architecture conformance checker.
package main

import (
	"errors"
	"os"

	"github.com/leapstack-labs/archgate/internal/cli"
	"github.com/leapstack-labs/archgate/internal/cli/commands"
)

// Exit codes.
const (
	exitOK            = 0
	exitFailed        = 1
	exitMisconfigured = 2
)

func main() {
	os.Exit(exitCode(cli.Execute()))
}

// exitCode maps a command error to the process exit status: 1 when roots
// failed conformance, 2 for every other error.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var failed *commands.CheckFailedError
	if errors.As(err, &failed) {
		return exitFailed
	}
	return exitMisconfigured
}
