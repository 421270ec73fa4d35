package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jjpaste/jjbin/auth"
	"github.com/jjpaste/jjbin/middleware"
	"github.com/jjpaste/jjbin/store"
)

// Me returns the authenticated caller's own account, email included.
func (h *Handler) Me(c echo.Context) error {
	user := middleware.GetIdentity(c).User()
	return c.JSON(http.StatusOK, h.userRepr(c.Request().Context(), user, true))
}

// MyPastes lists the caller's pastes, private ones included.
func (h *Handler) MyPastes(c echo.Context) error {
	user := middleware.GetIdentity(c).User()
	page, perPage := h.pageParams(c)

	f := store.PasteFilter{UserID: &user.ID}
	pastes, total, err := h.pastes.List(c.Request().Context(), f, page, perPage)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"pastes":     h.pasteReprs(pastes),
		"pagination": paginate(total, page, perPage),
	})
}

// UserProfile returns a public profile. Email is never part of it.
func (h *Handler) UserProfile(c echo.Context) error {
	user, err := h.users.ByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, h.userRepr(c.Request().Context(), user, false))
}

// UserPastes lists a user's pastes. Outsiders see only public ones; the
// owner and superusers see everything.
func (h *Handler) UserPastes(c echo.Context) error {
	user, err := h.users.ByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	id := middleware.GetIdentity(c)
	ownProfile := id.IsAuthenticated() && (id.User().ID == user.ID || id.User().IsSuperuser)

	page, perPage := h.pageParams(c)
	f := store.PasteFilter{UserID: &user.ID, PublicOnly: !ownProfile}
	pastes, total, err := h.pastes.List(c.Request().Context(), f, page, perPage)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"pastes":     h.pasteReprs(pastes),
		"pagination": paginate(total, page, perPage),
	})
}

// ListUsers returns all accounts. Superuser only.
func (h *Handler) ListUsers(c echo.Context) error {
	page, perPage := h.pageParams(c)

	users, total, err := h.users.List(c.Request().Context(), page, perPage)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	reprs := make([]userJSON, len(users))
	for i := range users {
		reprs[i] = h.userRepr(c.Request().Context(), &users[i], true)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"users":      reprs,
		"pagination": paginate(total, page, perPage),
	})
}

// DeleteUser removes an account and everything it owns. Superuser only, and
// superusers cannot delete each other; deleting their own account is allowed.
func (h *Handler) DeleteUser(c echo.Context) error {
	target, err := h.users.ByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if !auth.CanDeleteUser(middleware.GetIdentity(c), target) {
		return echo.NewHTTPError(http.StatusForbidden, "Cannot delete other superusers")
	}

	if err := h.users.Delete(c.Request().Context(), target); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "User deleted successfully"})
}
