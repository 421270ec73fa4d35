package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jjpaste/jjbin/models"
)

// pasteJSON is the wire representation of a paste. The id field repeats the
// unique_id: the integer row id never leaves the system.
type pasteJSON struct {
	ID        string `json:"id"`
	UniqueID  string `json:"unique_id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Language  string `json:"language"`
	IsPublic  bool   `json:"is_public"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
	Views     int    `json:"views"`
	Author    string `json:"author"`
	URL       string `json:"url"`
}

func (h *Handler) pasteRepr(p *models.Paste) pasteJSON {
	return pasteJSON{
		ID:        p.UniqueID,
		UniqueID:  p.UniqueID,
		Title:     p.Title,
		Content:   p.Content,
		Language:  p.Language,
		IsPublic:  p.IsPublic,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
		Views:     p.Views,
		Author:    p.AuthorName(),
		URL:       h.baseURL + "/paste/" + p.UniqueID,
	}
}

func (h *Handler) pasteReprs(pastes []models.Paste) []pasteJSON {
	out := make([]pasteJSON, len(pastes))
	for i := range pastes {
		out[i] = h.pasteRepr(&pastes[i])
	}
	return out
}

type userJSON struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email,omitempty"`
	IsSuperuser bool   `json:"is_superuser"`
	CreatedAt   string `json:"created_at"`
	PasteCount  int    `json:"paste_count"`
}

// userRepr builds the user representation. withEmail is true only in
// self/admin contexts; public profiles never include the email.
func (h *Handler) userRepr(ctx context.Context, u *models.User, withEmail bool) userJSON {
	count, _ := h.users.PasteCount(ctx, u.ID)
	out := userJSON{
		ID:          u.ID,
		Username:    u.Username,
		IsSuperuser: u.IsSuperuser,
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
		PasteCount:  count,
	}
	if withEmail {
		out.Email = u.Email
	}
	return out
}

type pagination struct {
	Total   int `json:"total"`
	Pages   int `json:"pages"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

func paginate(total, page, perPage int) pagination {
	pages := (total + perPage - 1) / perPage
	return pagination{Total: total, Pages: pages, Page: page, PerPage: perPage}
}

// pageParams reads ?page= and ?per_page=, defaulting and clamping per_page
// to at most 100.
func (h *Handler) pageParams(c echo.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(c.QueryParam("per_page"))
	if perPage < 1 {
		perPage = h.perPage
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}
