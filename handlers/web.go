package handlers

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/jjpaste/jjbin/auth"
	"github.com/jjpaste/jjbin/middleware"
	"github.com/jjpaste/jjbin/models"
	"github.com/jjpaste/jjbin/store"
)

// pageData feeds the server-rendered templates.
type pageData struct {
	Title       string
	CurrentUser *models.User
	Error       string

	Pastes []models.Paste
	Page   int
	Pages  int

	Language string
	Paste    *models.Paste
	Markup   template.HTML
	CanEdit  bool
	Profile  *models.User
}

func (h *Handler) page(c echo.Context, title string) pageData {
	return pageData{
		Title:       title,
		CurrentUser: middleware.GetIdentity(c).User(),
	}
}

func webPage(c echo.Context) int {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	return page
}

// The create checkbox posts "true" when ticked and nothing otherwise; a
// handful of false-ish strings are also accepted for non-browser clients.
func formIsPublic(c echo.Context) bool {
	switch strings.ToLower(c.FormValue("is_public")) {
	case "", "false", "f", "0":
		return false
	}
	return true
}

// Index lists recent public pastes.
func (h *Handler) Index(c echo.Context) error {
	return h.publicIndex(c, "")
}

// LanguageIndex lists public pastes for one language tag.
func (h *Handler) LanguageIndex(c echo.Context) error {
	return h.publicIndex(c, c.Param("language"))
}

func (h *Handler) publicIndex(c echo.Context, language string) error {
	page := webPage(c)
	f := store.PasteFilter{PublicOnly: true, Language: language}
	pastes, total, err := h.pastes.List(c.Request().Context(), f, page, h.perPage)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	data := h.page(c, "Recent Pastes")
	data.Pastes = pastes
	data.Page = page
	data.Pages = (total + h.perPage - 1) / h.perPage
	data.Language = language
	if language != "" {
		data.Title = language + " Pastes"
	}
	return c.Render(http.StatusOK, "index.html", data)
}

// LoginPage renders the sign-in form.
func (h *Handler) LoginPage(c echo.Context) error {
	if middleware.GetIdentity(c).IsAuthenticated() {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return c.Render(http.StatusOK, "login.html", h.page(c, "Sign In"))
}

// LoginSubmit checks the posted credentials and establishes the session.
// The failure message is deliberately generic.
func (h *Handler) LoginSubmit(c echo.Context) error {
	username := strings.TrimSpace(c.FormValue("username"))
	password := c.FormValue("password")

	user, ok := store.Authenticate(c.Request().Context(), h.users, username, password)
	if !ok {
		data := h.page(c, "Sign In")
		data.Error = "Invalid username or password"
		return c.Render(http.StatusOK, "login.html", data)
	}

	if err := h.sessions.Login(c, user.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if next := c.QueryParam("next"); strings.HasPrefix(next, "/") {
		return c.Redirect(http.StatusSeeOther, next)
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// Logout clears the session whether or not one exists.
func (h *Handler) Logout(c echo.Context) error {
	if err := h.sessions.Logout(c); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// RegisterPage renders the registration form.
func (h *Handler) RegisterPage(c echo.Context) error {
	if middleware.GetIdentity(c).IsAuthenticated() {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return c.Render(http.StatusOK, "register.html", h.page(c, "Register"))
}

// RegisterSubmit creates the account and sends the user to the sign-in page.
func (h *Handler) RegisterSubmit(c echo.Context) error {
	username := strings.TrimSpace(c.FormValue("username"))
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")

	fail := func(msg string) error {
		data := h.page(c, "Register")
		data.Error = msg
		return c.Render(http.StatusOK, "register.html", data)
	}

	if username == "" || email == "" || password == "" {
		return fail("Username, email, and password required")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	user := &models.User{Username: username, Email: email, PasswordHash: hash}
	if err := h.users.Create(c.Request().Context(), user); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateUsername):
			return fail("Username already exists")
		case errors.Is(err, store.ErrDuplicateEmail):
			return fail("Email already registered")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.Redirect(http.StatusSeeOther, "/login")
}

func (h *Handler) requireLogin(c echo.Context) (*models.User, bool) {
	id := middleware.GetIdentity(c)
	if !id.IsAuthenticated() {
		return nil, false
	}
	return id.User(), true
}

// CreatePage renders the new-paste form.
func (h *Handler) CreatePage(c echo.Context) error {
	if _, ok := h.requireLogin(c); !ok {
		return c.Redirect(http.StatusSeeOther, "/login?next=/create")
	}
	return c.Render(http.StatusOK, "edit.html", h.page(c, "Create Paste"))
}

// CreateSubmit stores a new paste from the form.
func (h *Handler) CreateSubmit(c echo.Context) error {
	user, ok := h.requireLogin(c)
	if !ok {
		return c.Redirect(http.StatusSeeOther, "/login?next=/create")
	}

	content := c.FormValue("content")
	if content == "" {
		data := h.page(c, "Create Paste")
		data.Error = "Content is required"
		return c.Render(http.StatusOK, "edit.html", data)
	}

	paste := models.NewPaste(
		strings.TrimSpace(c.FormValue("title")),
		content,
		strings.TrimSpace(c.FormValue("language")),
		formIsPublic(c),
		&user.ID,
	)
	if err := h.pastes.Create(c.Request().Context(), paste); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Redirect(http.StatusSeeOther, "/paste/"+paste.UniqueID)
}

// ViewPaste renders one paste. Unauthorized private pastes look exactly like
// missing ones, and each successful render counts a view.
func (h *Handler) ViewPaste(c echo.Context) error {
	paste, err := h.loadPaste(c)
	if err != nil {
		return err
	}

	id := middleware.GetIdentity(c)
	if !auth.CanReadPaste(id, paste) {
		return echo.NewHTTPError(http.StatusNotFound, "Paste not found")
	}

	if err := h.pastes.IncrementViews(c.Request().Context(), paste); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	data := h.page(c, paste.Title)
	data.Paste = paste
	data.Markup = h.hl.Highlight(paste.Content, paste.Language)
	data.CanEdit = auth.CanWritePaste(id, paste)
	return c.Render(http.StatusOK, "view.html", data)
}

// RawPaste serves the bare content. Like the API raw path this answers 403,
// not 404, for unauthorized private pastes, and does not count a view.
func (h *Handler) RawPaste(c echo.Context) error {
	paste, err := h.loadPaste(c)
	if err != nil {
		return err
	}

	if !auth.CanReadPaste(middleware.GetIdentity(c), paste) {
		return c.String(http.StatusForbidden, "This paste is private.")
	}
	return c.Blob(http.StatusOK, "text/plain; charset=utf-8", []byte(paste.Content))
}

// EditPage renders the edit form for an owned paste.
func (h *Handler) EditPage(c echo.Context) error {
	if _, ok := h.requireLogin(c); !ok {
		return c.Redirect(http.StatusSeeOther, "/login")
	}
	paste, err := h.loadPaste(c)
	if err != nil {
		return err
	}
	if !auth.CanWritePaste(middleware.GetIdentity(c), paste) {
		return echo.NewHTTPError(http.StatusForbidden, "You can only edit your own pastes")
	}

	data := h.page(c, "Edit Paste")
	data.Paste = paste
	return c.Render(http.StatusOK, "edit.html", data)
}

// EditSubmit applies the form to an owned paste.
func (h *Handler) EditSubmit(c echo.Context) error {
	if _, ok := h.requireLogin(c); !ok {
		return c.Redirect(http.StatusSeeOther, "/login")
	}
	paste, err := h.loadPaste(c)
	if err != nil {
		return err
	}
	if !auth.CanWritePaste(middleware.GetIdentity(c), paste) {
		return echo.NewHTTPError(http.StatusForbidden, "You can only edit your own pastes")
	}

	content := c.FormValue("content")
	if content == "" {
		data := h.page(c, "Edit Paste")
		data.Paste = paste
		data.Error = "Content is required"
		return c.Render(http.StatusOK, "edit.html", data)
	}

	title := c.FormValue("title")
	language := c.FormValue("language")
	isPublic := formIsPublic(c)
	upd := store.PasteUpdate{
		Title:    &title,
		Content:  &content,
		Language: &language,
		IsPublic: &isPublic,
	}
	if err := h.pastes.Update(c.Request().Context(), paste, upd); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Redirect(http.StatusSeeOther, "/paste/"+paste.UniqueID)
}

// DeleteSubmit deletes an owned paste and returns to the index.
func (h *Handler) DeleteSubmit(c echo.Context) error {
	if _, ok := h.requireLogin(c); !ok {
		return c.Redirect(http.StatusSeeOther, "/login")
	}
	paste, err := h.loadPaste(c)
	if err != nil {
		return err
	}
	if !auth.CanDeletePaste(middleware.GetIdentity(c), paste) {
		return echo.NewHTTPError(http.StatusForbidden, "You can only delete your own pastes")
	}

	if err := h.pastes.Delete(c.Request().Context(), paste); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// Profile shows a user's pastes. Visitors see public pastes only; the owner
// sees everything.
func (h *Handler) Profile(c echo.Context) error {
	user, err := h.users.ByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	id := middleware.GetIdentity(c)
	own := id.IsAuthenticated() && id.User().ID == user.ID

	page := webPage(c)
	f := store.PasteFilter{UserID: &user.ID, PublicOnly: !own}
	pastes, total, err := h.pastes.List(c.Request().Context(), f, page, h.perPage)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	data := h.page(c, user.Username)
	data.Profile = user
	data.Pastes = pastes
	data.Page = page
	data.Pages = (total + h.perPage - 1) / h.perPage
	return c.Render(http.StatusOK, "profile.html", data)
}
