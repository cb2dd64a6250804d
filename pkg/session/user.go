package session

import "time"

// User is the identity record returned by GET /auth/me. It is cached,
// derived data: always re-fetchable given a valid access token, and never
// authoritative for access decisions. Only the presence of a Session gates
// access.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
