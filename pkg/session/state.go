package session

// State is the session state observed by the Guard and other read-only
// consumers.
type State int

const (
	// StateUnknown means the persisted session has not been reconciled yet.
	// It is transient: Bootstrap resolves it before any protected view
	// should commit to rendering.
	StateUnknown State = iota
	// StateAuthenticated means a session is present; the identity may still
	// be resolving.
	StateAuthenticated
	// StateUnauthenticated means no session exists or it was invalidated.
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}
