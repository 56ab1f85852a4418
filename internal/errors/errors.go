package errors

import (
	"errors"
	"fmt"
)

// This package defines a centralized set of sentinel errors for the application.
// Services return these (usually wrapped with fmt.Errorf("%w")) and the API
// layer uses errors.Is/errors.As to map them to HTTP responses.

var (
	// ErrNotFound signifies that a requested resource could not be located.
	// This is typically mapped to a 404 Not Found HTTP status.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation signifies that input data provided by a client failed
	// business rule validation.
	// This is typically mapped to a 400 Bad Request HTTP status.
	ErrValidation = errors.New("validation failed")

	// ErrConflict signifies that an operation could not be completed because
	// it conflicts with the current state of a resource, e.g. a second
	// submission to a chat that already has one in flight.
	// This is typically mapped to a 409 Conflict HTTP status.
	ErrConflict = errors.New("resource conflict")

	// ErrPermission signifies that the caller is not authorized
	// to perform the requested action.
	// This is typically mapped to a 403 Forbidden HTTP status.
	ErrPermission = errors.New("permission denied")

	// ErrInternal signifies an unexpected error on the server.
	// This is typically mapped to a 500 Internal Server Error HTTP status.
	ErrInternal = errors.New("internal server error")

	// ErrMissingCredential means no API key is stored. It is detected locally
	// and never causes a network call.
	ErrMissingCredential = errors.New("API key is required")

	// ErrInvalidCredentialFormat means the key failed the local format check.
	// It is detected locally and never causes a network call.
	ErrInvalidCredentialFormat = errors.New("invalid API key format")

	// ErrUpstreamRejected means the upstream provider answered with a
	// non-success status. Use *UpstreamError to get the status and message.
	ErrUpstreamRejected = errors.New("upstream rejected request")

	// ErrTransport covers network and payload parse failures talking to the
	// upstream, including the relay timeout.
	ErrTransport = errors.New("upstream transport error")

	// ErrCancelled marks a user-initiated abort. It is not a failure.
	ErrCancelled = errors.New("request cancelled")
)

// UpstreamError carries the provider's HTTP status and its error message,
// verbatim, so callers can show actionable detail to the user.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.Status, e.Message)
}

// Unwrap lets errors.Is(err, ErrUpstreamRejected) match.
func (e *UpstreamError) Unwrap() error { return ErrUpstreamRejected }

// IsAuthFailure reports whether the provider rejected the credential itself.
func (e *UpstreamError) IsAuthFailure() bool {
	return e.Status == 401 || e.Status == 403
}

// Transport wraps err as a transport error, keeping its text.
func Transport(err error) error {
	return fmt.Errorf("%w: %w", ErrTransport, err)
}
