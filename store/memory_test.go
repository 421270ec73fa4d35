package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjpaste/jjbin/auth"
	"github.com/jjpaste/jjbin/models"
)

func newUser(t *testing.T, users UserStore, username, email, password string) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	u := &models.User{Username: username, Email: email, PasswordHash: hash}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestUserCreate_DuplicateChecksInOrder(t *testing.T) {
	ctx := context.Background()
	users := NewMemory().Users()

	newUser(t, users, "alice", "alice@x.com", "pw1")

	// Same username AND same email: the username error wins.
	err := users.Create(ctx, &models.User{Username: "alice", Email: "alice@x.com"})
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	// Fresh username, taken email.
	err = users.Create(ctx, &models.User{Username: "bob", Email: "alice@x.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	// bob was not created.
	_, err = users.ByUsername(ctx, "bob")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	users := NewMemory().Users()
	newUser(t, users, "alice", "alice@x.com", "pw1")

	u, ok := Authenticate(ctx, users, "alice", "pw1")
	require.True(t, ok)
	assert.Equal(t, "alice", u.Username)

	// Wrong password and unknown user are indistinguishable.
	_, ok = Authenticate(ctx, users, "alice", "wrong")
	assert.False(t, ok)
	_, ok = Authenticate(ctx, users, "nobody", "pw1")
	assert.False(t, ok)
}

func TestPasteCreate_Defaults(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	owner := newUser(t, mem.Users(), "alice", "alice@x.com", "pw1")

	p := models.NewPaste("", "x", "", true, &owner.ID)
	require.NoError(t, mem.Pastes().Create(ctx, p))

	assert.Equal(t, "Untitled", p.Title)
	assert.Equal(t, "text", p.Language)
	assert.True(t, p.IsPublic)
	assert.Equal(t, 0, p.Views)
	assert.Len(t, p.UniqueID, models.UniqueIDLength)
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)
}

func TestIncrementViews_DoesNotTouchUpdatedAt(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	pastes := mem.Pastes()

	p := models.NewPaste("t", "content", "go", true, nil)
	require.NoError(t, pastes.Create(ctx, p))
	updatedAt := p.UpdatedAt

	const n = 5
	for i := 0; i < n; i++ {
		require.NoError(t, pastes.IncrementViews(ctx, p))
	}
	assert.Equal(t, n, p.Views)
	assert.Equal(t, updatedAt, p.UpdatedAt)
}

func TestPasteUpdate_PartialAndImmutableFields(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	owner := newUser(t, mem.Users(), "alice", "alice@x.com", "pw1")
	pastes := mem.Pastes()

	p := models.NewPaste("original", "content", "go", true, &owner.ID)
	require.NoError(t, pastes.Create(ctx, p))
	uid, created, views := p.UniqueID, p.CreatedAt, p.Views

	title := "renamed"
	require.NoError(t, pastes.Update(ctx, p, PasteUpdate{Title: &title}))

	assert.Equal(t, "renamed", p.Title)
	assert.Equal(t, "content", p.Content, "omitted fields stay untouched")
	assert.Equal(t, "go", p.Language)
	assert.Equal(t, uid, p.UniqueID)
	assert.Equal(t, created, p.CreatedAt)
	assert.Equal(t, views, p.Views)
	assert.True(t, p.UpdatedAt.After(created) || p.UpdatedAt.Equal(created))
}

func TestUserDelete_CascadesPastes(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	users, pastes := mem.Users(), mem.Pastes()
	alice := newUser(t, users, "alice", "alice@x.com", "pw1")
	bob := newUser(t, users, "bob", "bob@x.com", "pw2")

	ap := models.NewPaste("a", "x", "", true, &alice.ID)
	require.NoError(t, pastes.Create(ctx, ap))
	bp := models.NewPaste("b", "y", "", true, &bob.ID)
	require.NoError(t, pastes.Create(ctx, bp))

	require.NoError(t, users.Delete(ctx, alice))

	_, err := pastes.ByUniqueID(ctx, ap.UniqueID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = pastes.ByUniqueID(ctx, bp.UniqueID)
	assert.NoError(t, err, "other users' pastes survive")
}

func TestPasteList_Filters(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	owner := newUser(t, mem.Users(), "alice", "alice@x.com", "pw1")
	pastes := mem.Pastes()

	mk := func(title, content, lang string, public bool) {
		t.Helper()
		require.NoError(t, pastes.Create(ctx, models.NewPaste(title, content, lang, public, &owner.ID)))
	}
	mk("hello go", "package main", "go", true)
	mk("hello py", "import os", "python", true)
	mk("secret", "hidden", "go", false)

	got, total, err := pastes.List(ctx, PasteFilter{PublicOnly: true}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, got, 2)

	got, total, err = pastes.List(ctx, PasteFilter{PublicOnly: true, Language: "go"}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, got, 1)
	assert.Equal(t, "hello go", got[0].Title)

	_, total, err = pastes.List(ctx, PasteFilter{PublicOnly: true, Search: "import"}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	_, total, err = pastes.List(ctx, PasteFilter{UserID: &owner.ID}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, total, "owner filter without PublicOnly includes private")
}
