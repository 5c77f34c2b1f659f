package service

import (
	"errors"
	"fmt"
	"net/http"
)

// Failure kinds surfaced by synchronizers and the session manager.
// Callers match them with errors.Is.
var (
	ErrLoadFailed        = errors.New("load failed")
	ErrCreateFailed      = errors.New("create failed")
	ErrDeleteFailed      = errors.New("delete failed")
	ErrAuthFailed        = errors.New("auth failed")
	ErrValidationFailed  = errors.New("validation failed")
	ErrMirrorWriteFailed = errors.New("mirror write failed")
)

// Collaborator conditions.
var (
	ErrNotLoggedIn = errors.New("not logged in")
	ErrNotFound    = errors.New("not found")
	ErrAmbiguous   = errors.New("ambiguous")
	ErrTimeout     = errors.New("request timed out")
)

// RemoteError is a non-success response from a remote collaborator.
type RemoteError struct {
	StatusCode int
	// Message is the server-supplied message, if any.
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if text := http.StatusText(e.StatusCode); text != "" {
		return fmt.Sprintf("server returned %d %s", e.StatusCode, text)
	}
	return fmt.Sprintf("server returned %d", e.StatusCode)
}

// Unwrap lets errors.Is match ErrNotLoggedIn and ErrNotFound on
// the corresponding status codes.
func (e *RemoteError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrNotLoggedIn
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// UserMessage returns the server-supplied message carried by err,
// or fallback when there is none.
func UserMessage(err error, fallback string) string {
	var remote *RemoteError
	if errors.As(err, &remote) && remote.Message != "" {
		return remote.Message
	}
	return fallback
}
