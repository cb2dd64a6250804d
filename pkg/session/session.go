// Package session manages the client-side lifecycle of a knowledge2 login:
// credential exchange, token persistence, identity caching, unauthorized
// handling, and logout sequencing. The Manager is the single writer of
// session state; everything else reads through it.
package session

import "golang.org/x/oauth2"

// Session is the persisted credential pair identifying an active login.
// It is created by a successful credential exchange and destroyed by logout
// or by an unauthorized response from the identity service.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"`
}

// Token converts the session to an oauth2 token for use on the wire.
func (s *Session) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    s.TokenType,
	}
}
