package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// getTheme returns the current theme preference.
func (s *Server) getTheme(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]bool{
		"darkMode": s.preferences.DarkMode(c.Request().Context()),
	})
}

// toggleTheme flips the theme preference.
func (s *Server) toggleTheme(c echo.Context) error {
	darkMode, err := s.preferences.ToggleDarkMode(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update theme")
	}
	return c.JSON(http.StatusOK, map[string]bool{"darkMode": darkMode})
}
