package auth

import "github.com/jjpaste/jjbin/models"

// Identity is the resolved caller for one request: either anonymous or a
// specific user. It is derived fresh per request and never cached.
type Identity struct {
	user *models.User
}

// Anonymous returns the identity of an unauthenticated caller.
func Anonymous() Identity {
	return Identity{}
}

// Authenticated returns the identity of user.
func Authenticated(user *models.User) Identity {
	return Identity{user: user}
}

// IsAuthenticated reports whether the identity carries a user.
func (id Identity) IsAuthenticated() bool {
	return id.user != nil
}

// User returns the authenticated user, or nil for anonymous identities.
func (id Identity) User() *models.User {
	return id.user
}
