package session_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/oauth2"

	"github.com/ekrsw/knowledge2/pkg/session"
)

// staticTokens is a fixed TokenProvider for gateway-level tests.
type staticTokens struct {
	access string
}

func (s staticTokens) CurrentToken() (*oauth2.Token, bool) {
	if s.access == "" {
		return nil, false
	}
	return &oauth2.Token{AccessToken: s.access, TokenType: "bearer"}, true
}

// fakeIdentity is an in-memory stand-in for the knowledge2 identity service.
// It accepts one username/password pair, issues one fixed token pair, and
// records every request it sees. Individual endpoints can be made to fail or
// to block on a gate channel so tests can observe in-flight behavior.
type fakeIdentity struct {
	mu sync.Mutex

	username string
	password string
	access   string
	refresh  string
	user     session.User

	requests     []string
	revokeBodies []string

	revokeStatus   int           // 0 means 200
	passwordStatus int           // 0 means 200
	passwordDetail string        // detail for a 400 password response
	meStarted      chan struct{} // receives once per /auth/me request when set
	meGate         chan struct{} // /auth/me blocks until closed when set
	revokeStarted  chan struct{} // receives once per /auth/logout request when set
	revokeGate     chan struct{} // /auth/logout blocks until closed when set
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{
		username: "alice",
		password: "pw",
		access:   "A1",
		refresh:  "R1",
		user: session.User{
			ID:        "u1",
			Username:  "alice",
			FullName:  "Alice Example",
			IsAdmin:   false,
			CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
			UpdatedAt: time.Date(2025, 6, 7, 8, 9, 10, 0, time.UTC),
		},
	}
}

func (f *fakeIdentity) serve(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(f.router())
	t.Cleanup(srv.Close)
	return srv
}

func (f *fakeIdentity) router() http.Handler {
	r := chi.NewRouter()
	r.Post("/auth/login", f.handleLogin)
	r.Get("/auth/me", f.handleMe)
	r.Post("/auth/logout", f.handleLogout)
	r.Put("/auth/password", f.handlePassword)
	return r
}

func (f *fakeIdentity) record(req *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req.Method+" "+req.URL.Path)
}

func (f *fakeIdentity) requestLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *fakeIdentity) authorized(req *http.Request) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return req.Header.Get("Authorization") == "Bearer "+f.access
}

func (f *fakeIdentity) handleLogin(w http.ResponseWriter, req *http.Request) {
	f.record(req)
	if err := req.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	ok := req.PostFormValue("username") == f.username && req.PostFormValue("password") == f.password
	access, refresh := f.access, f.refresh
	f.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "incorrect username or password"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"access_token":  access,
		"refresh_token": refresh,
		"token_type":    "bearer",
	})
}

func (f *fakeIdentity) handleMe(w http.ResponseWriter, req *http.Request) {
	f.record(req)

	f.mu.Lock()
	started, gate := f.meStarted, f.meGate
	user := f.user
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		<-gate
	}

	if !f.authorized(req) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "could not validate credentials"})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (f *fakeIdentity) handleLogout(w http.ResponseWriter, req *http.Request) {
	f.record(req)
	body, _ := io.ReadAll(req.Body)

	f.mu.Lock()
	f.revokeBodies = append(f.revokeBodies, string(body))
	started, gate := f.revokeStarted, f.revokeGate
	status := f.revokeStatus
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		<-gate
	}

	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
}

func (f *fakeIdentity) handlePassword(w http.ResponseWriter, req *http.Request) {
	f.record(req)
	if !f.authorized(req) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "could not validate credentials"})
		return
	}

	f.mu.Lock()
	status, detail := f.passwordStatus, f.passwordDetail
	f.mu.Unlock()

	switch status {
	case 0, http.StatusOK:
		w.WriteHeader(http.StatusOK)
	case http.StatusBadRequest:
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": detail})
	default:
		w.WriteHeader(status)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// testLogger keeps manager logging out of test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestManager wires a Manager to a temp-dir file store and the given
// server URL.
func newTestManager(t *testing.T, serverURL string) (*session.Manager, *session.FileStore) {
	t.Helper()
	store := session.NewFileStoreAt(filepath.Join(t.TempDir(), "credentials.json"))
	return session.NewManager(serverURL, store, testLogger()), store
}

// mustLogin is a shorthand for tests that need an authenticated manager.
func mustLogin(t *testing.T, m *session.Manager) {
	t.Helper()
	if err := m.Login(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
}
