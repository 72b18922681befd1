package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinebase/cinebase/internal/config"
)

// healthCheck reports liveness, including database reachability.
func (s *Server) healthCheck(c echo.Context) error {
	if err := s.db.PingContext(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  "database unreachable",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// getStatus reports version, provider configuration state, and cache
// occupancy.
func (s *Server) getStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"version": config.Version,
		"providers": map[string]bool{
			s.tmdbClient.Name(): s.tmdbClient.IsConfigured(),
			s.omdbClient.Name(): s.omdbClient.IsConfigured(),
		},
		"cache": map[string]int{
			"items": s.discovery.CacheSize(),
		},
	})
}

// testProvider runs a live connectivity check against a metadata
// provider and reports the outcome without failing the request.
func (s *Server) testProvider(c echo.Context) error {
	ctx := c.Request().Context()

	var name string
	var err error
	switch c.Param("name") {
	case s.tmdbClient.Name():
		name = s.tmdbClient.Name()
		err = s.tmdbClient.Test(ctx)
	case s.omdbClient.Name():
		name = s.omdbClient.Name()
		err = s.omdbClient.Test(ctx)
	default:
		return c.JSON(http.StatusNotFound, map[string]string{"error": "unknown provider"})
	}

	if err != nil {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"provider": name,
			"success":  false,
			"message":  err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"provider": name,
		"success":  true,
	})
}

// flushCache drops all cached discovery pages.
func (s *Server) flushCache(c echo.Context) error {
	s.discovery.FlushCache()
	return c.NoContent(http.StatusNoContent)
}

// listTasks returns the registered background tasks.
func (s *Server) listTasks(c echo.Context) error {
	if s.scheduler == nil {
		return c.JSON(http.StatusOK, []interface{}{})
	}
	return c.JSON(http.StatusOK, s.scheduler.ListTasks())
}
