package session

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// TokenProvider exposes the current session's token, if one exists.
// The Manager implements this from its in-memory session.
type TokenProvider interface {
	CurrentToken() (*oauth2.Token, bool)
}

// Gateway performs HTTP calls against the identity service, attaching the
// current access token as a bearer credential when a session exists. It is
// stateless with respect to session validity: an unauthorized response is
// reported as ErrUnauthorized, never retried, and never triggers any storage
// mutation here. Reacting to it is the caller's responsibility.
type Gateway struct {
	baseURL string
	tokens  TokenProvider
	http    *http.Client
	logger  *slog.Logger
}

// GatewayOption mutates gateway construction.
type GatewayOption func(*Gateway)

// WithHTTPClient overrides the HTTP client used for identity service calls.
func WithHTTPClient(client *http.Client) GatewayOption {
	return func(g *Gateway) {
		g.http = client
	}
}

// NewGateway creates a Gateway for the identity service at baseURL.
// A nil TokenProvider yields an unauthenticated gateway.
func NewGateway(baseURL string, tokens TokenProvider, logger *slog.Logger, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		baseURL: baseURL,
		tokens:  tokens,
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Do sends one request with the current session's token, if any.
func (g *Gateway) Do(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, error) {
	var tok *oauth2.Token
	if g.tokens != nil {
		if t, ok := g.tokens.CurrentToken(); ok {
			tok = t
		}
	}
	return g.do(ctx, method, path, contentType, body, tok)
}

// DoAs sends one request authenticated with an explicit token instead of the
// current session. The logout revoke uses this, since it runs after local
// session state has already been cleared.
func (g *Gateway) DoAs(ctx context.Context, method, path, contentType string, body io.Reader, tok *oauth2.Token) (*http.Response, error) {
	return g.do(ctx, method, path, contentType, body, tok)
}

func (g *Gateway) do(ctx context.Context, method, path, contentType string, body io.Reader, tok *oauth2.Token) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok != nil {
		tok.SetAuthHeader(req)
	}

	g.logger.Debug("identity service request", "method", method, "path", path)

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, &UnreachableError{Err: err}
	}

	g.logger.Debug("identity service response", "method", method, "path", path, "status", resp.StatusCode)

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		return nil, ErrUnauthorized
	}
	return resp, nil
}
