package session

import "errors"

// Decision is the outcome of an access check for a protected entry point.
type Decision int

const (
	// DecisionDefer means session state is still resolving; the caller must
	// wait rather than commit to a redirect, so a valid session never sees a
	// flash-redirect during bootstrap.
	DecisionDefer Decision = iota
	// DecisionAllow permits rendering the protected view.
	DecisionAllow
	// DecisionRedirect sends the user to the login entry point.
	DecisionRedirect
)

func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionRedirect:
		return "redirect"
	default:
		return "defer"
	}
}

// Guard gates protected entry points on the current session state. It is a
// read-side consumer only; it never mutates session state.
type Guard struct {
	manager *Manager
}

// NewGuard creates a Guard over the given Manager.
func NewGuard(m *Manager) *Guard {
	return &Guard{manager: m}
}

// Check maps the current session state to an access decision.
func (g *Guard) Check() Decision {
	switch g.manager.State() {
	case StateAuthenticated:
		return DecisionAllow
	case StateUnauthenticated:
		return DecisionRedirect
	default:
		return DecisionDefer
	}
}

// Require resolves the decision for a command-line entry point, where a
// redirect surfaces as ErrLoginRequired.
func (g *Guard) Require() error {
	switch g.Check() {
	case DecisionAllow:
		return nil
	case DecisionRedirect:
		return ErrLoginRequired
	default:
		return errors.New("session state not resolved; run Bootstrap first")
	}
}
