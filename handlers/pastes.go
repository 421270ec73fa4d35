package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jjpaste/jjbin/auth"
	"github.com/jjpaste/jjbin/middleware"
	"github.com/jjpaste/jjbin/models"
	"github.com/jjpaste/jjbin/store"
)

type createPasteRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Language string `json:"language"`
	IsPublic *bool  `json:"is_public"`
}

type updatePasteRequest struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Language *string `json:"language"`
	IsPublic *bool   `json:"is_public"`
}

// ListPastes returns a page of public pastes, optionally filtered by
// language or a title/content search.
func (h *Handler) ListPastes(c echo.Context) error {
	page, perPage := h.pageParams(c)

	f := store.PasteFilter{
		PublicOnly: true,
		Language:   c.QueryParam("language"),
		Search:     c.QueryParam("search"),
	}
	pastes, total, err := h.pastes.List(c.Request().Context(), f, page, perPage)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"pastes":     h.pasteReprs(pastes),
		"pagination": paginate(total, page, perPage),
	})
}

// CreatePaste stores a new paste owned by the authenticated caller.
func (h *Handler) CreatePaste(c echo.Context) error {
	var req createPasteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Content == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Content is required")
	}

	user := middleware.GetIdentity(c).User()
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	paste := models.NewPaste(req.Title, req.Content, req.Language, isPublic, &user.ID)
	if err := h.pastes.Create(c.Request().Context(), paste); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	paste.Author = user

	return c.JSON(http.StatusCreated, h.pasteRepr(paste))
}

// loadPaste fetches a paste by its external id, translating store misses to
// 404.
func (h *Handler) loadPaste(c echo.Context) (*models.Paste, error) {
	paste, err := h.pastes.ByUniqueID(c.Request().Context(), c.Param("unique_id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "Paste not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return paste, nil
}

// GetPaste returns a paste's full representation and counts the view.
// Private pastes are indistinguishable from missing ones for anyone but the
// owner or a superuser.
func (h *Handler) GetPaste(c echo.Context) error {
	paste, err := h.loadPaste(c)
	if err != nil {
		return err
	}

	if !auth.CanReadPaste(middleware.GetIdentity(c), paste) {
		return echo.NewHTTPError(http.StatusNotFound, "Paste not found")
	}

	if err := h.pastes.IncrementViews(c.Request().Context(), paste); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, h.pasteRepr(paste))
}

// GetPasteRaw returns the bare content as text/plain. This path answers 403
// for unauthorized private pastes where the JSON path answers 404; clients
// depend on the difference. Raw reads do not count as views.
func (h *Handler) GetPasteRaw(c echo.Context) error {
	paste, err := h.loadPaste(c)
	if err != nil {
		return err
	}

	if !auth.CanReadPaste(middleware.GetIdentity(c), paste) {
		return echo.NewHTTPError(http.StatusForbidden, "This paste is private")
	}

	return c.Blob(http.StatusOK, "text/plain; charset=utf-8", []byte(paste.Content))
}

// UpdatePaste applies a partial update to an owned paste.
func (h *Handler) UpdatePaste(c echo.Context) error {
	paste, err := h.loadPaste(c)
	if err != nil {
		return err
	}

	if !auth.CanWritePaste(middleware.GetIdentity(c), paste) {
		return echo.NewHTTPError(http.StatusForbidden, "You can only edit your own pastes")
	}

	var req updatePasteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Title == nil && req.Content == nil && req.Language == nil && req.IsPublic == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No data provided")
	}

	upd := store.PasteUpdate{
		Title:    req.Title,
		Content:  req.Content,
		Language: req.Language,
		IsPublic: req.IsPublic,
	}
	if err := h.pastes.Update(c.Request().Context(), paste, upd); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, h.pasteRepr(paste))
}

// DeletePaste removes an owned paste.
func (h *Handler) DeletePaste(c echo.Context) error {
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
	return c.JSON(http.StatusOK, map[string]string{"message": "Paste deleted successfully"})
}
