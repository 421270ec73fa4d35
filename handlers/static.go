package handlers

import (
	_ "embed"
	"net/http"

	"github.com/labstack/echo/v4"
)

//go:embed templates/style.css
var stylesheet []byte

// Stylesheet serves the single embedded stylesheet.
func Stylesheet(c echo.Context) error {
	return c.Blob(http.StatusOK, "text/css; charset=utf-8", stylesheet)
}
