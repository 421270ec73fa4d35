// Package store persists users and pastes. Handlers depend on the interfaces
// here; the bun-backed implementations live in postgres.go.
package store

import (
	"context"
	"errors"

	"github.com/jjpaste/jjbin/auth"
	"github.com/jjpaste/jjbin/models"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already registered")
)

// PasteFilter narrows a paste listing. Zero value lists everything.
type PasteFilter struct {
	PublicOnly bool
	Language   string
	Search     string // matches title or content, case-insensitive
	UserID     *int   // limit to one owner
}

// PasteUpdate carries a partial update; nil fields are left untouched.
// UniqueID, UserID, Views and CreatedAt are not updatable.
type PasteUpdate struct {
	Title    *string
	Content  *string
	Language *string
	IsPublic *bool
}

// UserStore holds accounts.
type UserStore interface {
	// Create inserts u, hashing nothing (PasswordHash is stored as given).
	// Returns ErrDuplicateUsername or ErrDuplicateEmail; the username is
	// checked before the email.
	Create(ctx context.Context, u *models.User) error
	ByUsername(ctx context.Context, username string) (*models.User, error)
	ByID(ctx context.Context, id int) (*models.User, error)
	// List returns a page of users, newest first, and the total count.
	List(ctx context.Context, page, perPage int) ([]models.User, int, error)
	// Delete removes u and all pastes u owns.
	Delete(ctx context.Context, u *models.User) error
	PasteCount(ctx context.Context, userID int) (int, error)
}

// PasteStore holds pastes.
type PasteStore interface {
	// Create inserts p, allocating a fresh UniqueID.
	Create(ctx context.Context, p *models.Paste) error
	// ByUniqueID loads a paste with its author.
	ByUniqueID(ctx context.Context, uniqueID string) (*models.Paste, error)
	// Update applies upd to p and refreshes UpdatedAt.
	Update(ctx context.Context, p *models.Paste, upd PasteUpdate) error
	Delete(ctx context.Context, p *models.Paste) error
	// IncrementViews adds exactly one view. It must not touch UpdatedAt and
	// must not lose increments under concurrent calls.
	IncrementViews(ctx context.Context, p *models.Paste) error
	// List returns a page of pastes, newest first, and the total count.
	List(ctx context.Context, f PasteFilter, page, perPage int) ([]models.Paste, int, error)
}

// Authenticate looks a user up by exact username and verifies the password.
// The second return is false on any mismatch; callers cannot tell an unknown
// username from a wrong password.
func Authenticate(ctx context.Context, users UserStore, username, password string) (*models.User, bool) {
	u, err := users.ByUsername(ctx, username)
	if err != nil {
		return nil, false
	}
	if !auth.CheckPassword(password, u.PasswordHash) {
		return nil, false
	}
	return u, true
}
