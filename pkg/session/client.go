package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const (
	formContentType = "application/x-www-form-urlencoded"
	jsonContentType = "application/json"
)

// Client wraps the Gateway with typed calls for the identity service
// endpoints. It holds no state of its own.
type Client struct {
	gw *Gateway
}

// NewClient creates a Client on top of the given Gateway.
func NewClient(gw *Gateway) *Client {
	return &Client{gw: gw}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// errorBody is the identity service's error envelope.
type errorBody struct {
	Detail string `json:"detail"`
}

// Login exchanges a username and password for a token pair. A rejected
// exchange yields ErrInvalidCredentials; transport faults and malformed
// responses yield an UnreachableError.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	resp, err := c.gw.Do(ctx, http.MethodPost, "/auth/login", formContentType, strings.NewReader(form.Encode()))
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			// On the login endpoint a 401 means the credentials were wrong,
			// not that a token expired.
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("login failed: %s", resp.Status)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, &UnreachableError{Err: fmt.Errorf("malformed login response: %w", err)}
	}
	if tr.AccessToken == "" {
		return nil, &UnreachableError{Err: errors.New("login response missing access token")}
	}

	return &Session{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		TokenType:    tr.TokenType,
	}, nil
}

// Me fetches the identity record for the current session.
func (c *Client) Me(ctx context.Context) (*User, error) {
	resp, err := c.gw.Do(ctx, http.MethodGet, "/auth/me", "", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity fetch failed: %s", resp.Status)
	}

	var u User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, &UnreachableError{Err: fmt.Errorf("malformed identity response: %w", err)}
	}
	return &u, nil
}

// Revoke asks the identity service to revoke the given session's refresh
// token. The response body is ignored; callers treat the whole call as
// best-effort.
func (c *Client) Revoke(ctx context.Context, sess *Session) error {
	body, err := json.Marshal(map[string]string{"refresh_token": sess.RefreshToken})
	if err != nil {
		return err
	}

	resp, err := c.gw.DoAs(ctx, http.MethodPost, "/auth/logout", jsonContentType, bytes.NewReader(body), sess.Token())
	if err != nil {
		return err
	}
	resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("revoke failed: %s", resp.Status)
	}
	return nil
}

// ChangePassword submits a password change for the current session. A policy
// rejection (reused password, too short, ...) is returned as a
// PolicyViolationError carrying the server's detail message.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	body, err := json.Marshal(map[string]string{
		"old_password": oldPassword,
		"new_password": newPassword,
	})
	if err != nil {
		return err
	}

	resp, err := c.gw.Do(ctx, http.MethodPut, "/auth/password", jsonContentType, bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		var eb errorBody
		if err := json.NewDecoder(resp.Body).Decode(&eb); err != nil || eb.Detail == "" {
			eb.Detail = "password rejected by server policy"
		}
		return &PolicyViolationError{Detail: eb.Detail}
	case resp.StatusCode >= 300:
		return fmt.Errorf("password change failed: %s", resp.Status)
	}
	return nil
}

// Register creates a new account. Registration is a public, sessionless
// operation; it does not log the new user in.
func (c *Client) Register(ctx context.Context, username, fullName, password string) (*User, error) {
	body, err := json.Marshal(map[string]string{
		"username":  username,
		"full_name": fullName,
		"password":  password,
	})
	if err != nil {
		return nil, err
	}

	resp, err := c.gw.Do(ctx, http.MethodPost, "/auth/register", jsonContentType, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		var eb errorBody
		if err := json.NewDecoder(resp.Body).Decode(&eb); err == nil && eb.Detail != "" {
			return nil, fmt.Errorf("registration failed: %s", eb.Detail)
		}
		return nil, fmt.Errorf("registration failed: %s", resp.Status)
	}

	var u User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, &UnreachableError{Err: fmt.Errorf("malformed registration response: %w", err)}
	}
	return &u, nil
}
