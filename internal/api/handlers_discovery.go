package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// getHome returns the curated landing-page sections.
func (s *Server) getHome(c echo.Context) error {
	sections, err := s.discovery.HomeSections(c.Request().Context())
	if err != nil {
		return translateError(c, err)
	}
	return c.JSON(http.StatusOK, sections)
}

// getMovie returns the full detail payload for a movie.
func (s *Server) getMovie(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid movie ID")
	}

	detail, err := s.discovery.MovieDetail(c.Request().Context(), id)
	if err != nil {
		return translateError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// getRelated returns the ranked related rail for a movie.
func (s *Server) getRelated(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid movie ID")
	}

	related, err := s.discovery.Related(c.Request().Context(), id)
	if err != nil {
		return translateError(c, err)
	}
	return c.JSON(http.StatusOK, related)
}

// searchMovies runs a curated catalogue search.
func (s *Server) searchMovies(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter 'q' is required")
	}

	page := 1
	if p := c.QueryParam("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}

	year := 0
	if y := c.QueryParam("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil || parsed <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid year")
		}
		year = parsed
	}

	result, err := s.discovery.Search(c.Request().Context(), query, page, year)
	if err != nil {
		return translateError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
