package handlers

import (
	"github.com/jjpaste/jjbin/highlight"
	"github.com/jjpaste/jjbin/middleware"
	"github.com/jjpaste/jjbin/store"
)

// Handler holds shared dependencies used by all route handlers.
type Handler struct {
	users    store.UserStore
	pastes   store.PasteStore
	sessions *middleware.Sessions
	hl       highlight.Highlighter

	secret  string
	baseURL string
	perPage int
}

// New creates a Handler. secret is the installation secret backing the API
// token scheme; baseURL is the public origin used in paste URLs; perPage is
// the default page size.
func New(users store.UserStore, pastes store.PasteStore, sessions *middleware.Sessions, hl highlight.Highlighter, secret, baseURL string, perPage int) *Handler {
	if perPage <= 0 {
		perPage = 20
	}
	return &Handler{
		users:    users,
		pastes:   pastes,
		sessions: sessions,
		hl:       hl,
		secret:   secret,
		baseURL:  baseURL,
		perPage:  perPage,
	}
}
