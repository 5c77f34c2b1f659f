// Package exitcode defines exit codes for the CLI.
package exitcode

import (
	"errors"

	"stickylist/internal/service"
)

// Exit codes.
const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, not found, ambiguous,
	// invalid input).
	UserError = 1

	// AuthError indicates an auth/config error.
	AuthError = 2

	// BackendError indicates a backend/API/network error.
	BackendError = 3
)

// For maps an error to its exit code.
func For(err error) int {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, service.ErrNotLoggedIn), errors.Is(err, service.ErrAuthFailed):
		return AuthError
	case errors.Is(err, service.ErrValidationFailed),
		errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrAmbiguous):
		return UserError
	default:
		return BackendError
	}
}
