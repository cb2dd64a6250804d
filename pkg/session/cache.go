package session

// identityCache holds the last-fetched user profile. It is best-effort,
// informational data and must never gate access: only the Session's
// presence does that. The Manager is its sole writer and serializes access
// under its own mutex.
type identityCache struct {
	user *User
}

func (c *identityCache) get() (*User, bool) {
	if c.user == nil {
		return nil, false
	}
	u := *c.user
	return &u, true
}

func (c *identityCache) set(u *User) {
	c.user = u
}

func (c *identityCache) invalidate() {
	c.user = nil
}
