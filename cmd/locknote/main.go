package main

import (
	"errors"

	"github.com/aretw0/locknote/pkg/core"
)

// Exit codes reported by the CLI.
const (
	exitGeneric        = 1
	exitConfiguration  = 2
	exitAuthentication = 3
	exitSerialization  = 4
	exitNotFound       = 5
)

func main() {
	Execute()
}

// exitCode maps the error taxonomy to a process exit status. view and delete
// report unknown ids themselves, so exitNotFound only covers other paths.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case core.IsNotFoundError(err):
		return exitNotFound
	case core.IsAuthenticationError(err):
		return exitAuthentication
	case core.IsSerializationError(err):
		return exitSerialization
	case core.IsConfigurationError(err), core.IsKeyDerivationError(err),
		errors.Is(err, core.ErrPasswordMismatch):
		return exitConfiguration
	default:
		return exitGeneric
	}
}
