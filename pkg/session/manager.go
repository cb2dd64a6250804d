package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// revokeTimeout caps how long a logout waits for the best-effort revoke
// call. Local state is already cleared by the time the call is issued, so
// the timeout only bounds the network wait.
const revokeTimeout = 5 * time.Second

// Manager is the session lifecycle controller: the only component that
// mutates the Store and the identity cache. Views, the Guard, and any other
// consumer observe state through it, which keeps multiple independent
// readers (a dashboard, a status line) from diverging.
//
// Every session mutation bumps an epoch. In-flight identity refreshes
// capture the epoch at launch and their results are discarded if the epoch
// changed, so a refresh completing after a logout can never resurrect the
// cache.
type Manager struct {
	store  Store
	client *Client
	logger *slog.Logger

	mu        sync.Mutex
	state     State
	current   *Session
	epoch     string
	cache     identityCache
	observers []chan State
}

// NewManager creates a Manager talking to the identity service at baseURL,
// persisting sessions through store. The state starts as StateUnknown until
// Bootstrap runs.
func NewManager(baseURL string, store Store, logger *slog.Logger, opts ...GatewayOption) *Manager {
	m := &Manager{
		store:  store,
		logger: logger,
		state:  StateUnknown,
		epoch:  uuid.NewString(),
	}
	m.client = NewClient(NewGateway(baseURL, m, logger, opts...))
	return m
}

// CurrentToken implements TokenProvider from the in-memory session.
func (m *Manager) CurrentToken() (*oauth2.Token, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil, false
	}
	return m.current.Token(), true
}

// State reports the current session state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Session returns a copy of the current session, if one exists.
func (m *Manager) Session() (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil, false
	}
	s := *m.current
	return &s, true
}

// Identity returns the cached user profile, if one has been fetched.
func (m *Manager) Identity() (*User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cache.get()
}

// Subscribe registers an observer for state transitions. Notifications are
// dropped rather than blocking the controller on a slow observer.
func (m *Manager) Subscribe() <-chan State {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan State, 4)
	m.observers = append(m.observers, ch)
	return ch
}

// Bootstrap reconciles persisted session state once per process start.
//
// With no persisted session the state becomes StateUnauthenticated and no
// network call is made. With one, the state moves to StateAuthenticated
// optimistically and the identity is verified in the background; if that
// verification reports the token was rejected, the session is cleared
// retroactively. This avoids blocking every protected view on a network
// round-trip before first render.
func (m *Manager) Bootstrap(ctx context.Context) State {
	m.mu.Lock()
	sess, err := m.store.Load()
	if err != nil {
		if !errors.Is(err, ErrNotLoggedIn) {
			m.logger.Warn("discarding unreadable credentials", "err", err)
			if clearErr := m.store.Clear(); clearErr != nil {
				m.logger.Warn("failed to clear credential store", "err", clearErr)
			}
		}
		m.current = nil
		m.cache.invalidate()
		m.setStateLocked(StateUnauthenticated)
		m.mu.Unlock()
		return StateUnauthenticated
	}

	m.current = sess
	m.epoch = uuid.NewString()
	epoch := m.epoch
	m.setStateLocked(StateAuthenticated)
	m.mu.Unlock()

	go func() {
		if _, err := m.refreshIdentity(ctx, epoch); err != nil && !errors.Is(err, ErrUnauthorized) {
			m.logger.Debug("bootstrap identity refresh failed", "err", err)
		}
	}()

	return StateAuthenticated
}

// Login exchanges credentials with the identity service and, on success,
// persists the returned token pair and refreshes the identity cache
// best-effort. A failed exchange leaves any prior session untouched. Login
// while already authenticated simply replaces the session, which supports
// account switching.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	sess, err := m.client.Login(ctx, username, password)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if err := m.store.Save(sess); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("failed to persist session: %w", err)
	}
	m.current = sess
	m.cache.invalidate()
	m.epoch = uuid.NewString()
	epoch := m.epoch
	m.setStateLocked(StateAuthenticated)
	m.mu.Unlock()

	m.logger.Info("logged in", "username", username)

	// Best-effort: a refresh failure does not undo a successful login.
	if _, err := m.refreshIdentity(ctx, epoch); err != nil && !errors.Is(err, ErrUnauthorized) {
		m.logger.Debug("identity refresh after login failed", "err", err)
	}
	return nil
}

// Logout clears local session state unconditionally and then issues a
// best-effort revoke of the refresh token. The clear happens before the
// revoke call, so a slow or failed revoke can never block logout. Logout
// while already unauthenticated is a no-op, and so is Logout before
// Bootstrap: with state still unknown there is no reconciled session to
// revoke.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	if m.state == StateUnknown {
		m.mu.Unlock()
		return
	}
	sess := m.current
	m.clearLocked()
	m.mu.Unlock()

	if sess == nil {
		return
	}

	m.logger.Info("logged out")

	rctx, cancel := context.WithTimeout(ctx, revokeTimeout)
	defer cancel()
	if err := m.client.Revoke(rctx, sess); err != nil {
		m.logger.Debug("token revoke failed", "err", err)
	}
}

// RefreshIdentity fetches the user profile for the current session and
// caches it. An unauthorized response is absorbed: the session is
// invalidated and ErrLoginRequired is returned so the caller can send the
// user to login.
func (m *Manager) RefreshIdentity(ctx context.Context) (*User, error) {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return nil, ErrNotLoggedIn
	}
	epoch := m.epoch
	m.mu.Unlock()

	u, err := m.refreshIdentity(ctx, epoch)
	if errors.Is(err, ErrUnauthorized) {
		return nil, ErrLoginRequired
	}
	return u, err
}

// ChangePassword submits a password change for the current session. Policy
// rejections propagate with the server's detail; an unauthorized response
// invalidates the session and reports ErrLoginRequired.
func (m *Manager) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return ErrLoginRequired
	}
	epoch := m.epoch
	m.mu.Unlock()

	if err := m.client.ChangePassword(ctx, oldPassword, newPassword); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			m.invalidate(epoch)
			return ErrLoginRequired
		}
		return err
	}
	return nil
}

// refreshIdentity performs the identity fetch for the session generation
// identified by epoch. The cache write is guarded: if the session changed
// while the fetch was in flight, the result is dropped.
func (m *Manager) refreshIdentity(ctx context.Context, epoch string) (*User, error) {
	u, err := m.client.Me(ctx)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			m.invalidate(epoch)
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != epoch {
		m.logger.Debug("discarding stale identity refresh", "username", u.Username)
		return nil, ErrNotLoggedIn
	}
	m.cache.set(u)
	return u, nil
}

// invalidate is the shared unauthorized reaction: clear the store and cache
// and move to StateUnauthenticated. Idempotent, and a no-op when the session
// generation already moved on.
func (m *Manager) invalidate(epoch string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != epoch {
		return
	}
	if m.state == StateUnauthenticated && m.current == nil {
		return
	}
	m.logger.Info("session invalidated by identity service")
	m.clearLocked()
}

// clearLocked wipes all session state. Callers hold m.mu.
func (m *Manager) clearLocked() {
	if err := m.store.Clear(); err != nil {
		m.logger.Warn("failed to clear credential store", "err", err)
	}
	m.current = nil
	m.cache.invalidate()
	m.epoch = uuid.NewString()
	m.setStateLocked(StateUnauthenticated)
}

// setStateLocked transitions state and notifies observers. Callers hold m.mu.
func (m *Manager) setStateLocked(s State) {
	if m.state == s {
		return
	}
	m.state = s
	for _, ch := range m.observers {
		select {
		case ch <- s:
		default:
		}
	}
}
