package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/jjpaste/jjbin/auth"
	"github.com/jjpaste/jjbin/models"
	"github.com/jjpaste/jjbin/store"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a new account. The duplicate-username error deliberately
// names the condition even though login errors stay generic; that mismatch
// is long-standing observable behavior.
func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Username, email, and password required")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := h.users.Create(c.Request().Context(), user); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateUsername):
			return echo.NewHTTPError(http.StatusBadRequest, "Username already exists")
		case errors.Is(err, store.ErrDuplicateEmail):
			return echo.NewHTTPError(http.StatusBadRequest, "Email already registered")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "User created successfully",
		"user":    h.userRepr(c.Request().Context(), user, true),
	})
}

// Login validates credentials and returns the shared-secret API token. The
// failure message never says whether the username or the password was wrong.
func (h *Handler) Login(c echo.Context) error {
	var creds credentials
	if err := c.Bind(&creds); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	creds.Username = strings.TrimSpace(creds.Username)

	if creds.Username == "" || creds.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Username and password required")
	}

	user, ok := store.Authenticate(c.Request().Context(), h.users, creds.Username, creds.Password)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"token": auth.EncodeToken(user.Username, h.secret),
		"user":  h.userRepr(c.Request().Context(), user, true),
	})
}
