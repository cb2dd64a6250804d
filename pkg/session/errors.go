package session

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized classifies any authenticated call whose token was
	// rejected by the identity service. It is absorbed by the Manager and
	// converted into a state transition; views never see it directly.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials is returned when a login exchange is rejected.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotLoggedIn is returned when no session is persisted.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrLoginRequired is the view-facing outcome of an invalidated session:
	// the caller should send the user to the login entry point.
	ErrLoginRequired = errors.New("login required")
)

// UnreachableError wraps a transport-level failure talking to the identity
// service. It is user-correctable by retrying.
type UnreachableError struct {
	Err error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("identity service unreachable: %v", e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// PolicyViolationError carries the server-supplied detail for a rejected
// password change, e.g. a reused or too short password.
type PolicyViolationError struct {
	Detail string
}

func (e *PolicyViolationError) Error() string {
	return "password rejected: " + e.Detail
}
