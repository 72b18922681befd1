package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cinebase/cinebase/internal/tmdb"
)

// listFavorites returns all favorites, most recent first.
func (s *Server) listFavorites(c echo.Context) error {
	movies, err := s.favorites.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list favorites")
	}
	return c.JSON(http.StatusOK, movies)
}

// toggleFavorite flips a movie's favorite state.
func (s *Server) toggleFavorite(c echo.Context) error {
	var movie tmdb.Movie
	if err := c.Bind(&movie); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid movie payload")
	}
	if movie.ID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "movie ID is required")
	}

	added, err := s.favorites.Toggle(c.Request().Context(), movie)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to toggle favorite")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"movieId":  movie.ID,
		"favorite": added,
	})
}

// removeFavorite unmarks a favorite. Removing a movie that is not a
// favorite still succeeds.
func (s *Server) removeFavorite(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid movie ID")
	}

	if err := s.favorites.Remove(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to remove favorite")
	}
	return c.NoContent(http.StatusNoContent)
}
