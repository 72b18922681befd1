package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinebase/cinebase/internal/tmdb"
)

// errorBody is the JSON shape of a page-level error. Category drives
// which message and artwork the UI shows; Retryable tells it whether to
// offer a retry affordance.
type errorBody struct {
	Category  string `json:"category"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

const (
	categoryConnection = "connection"
	categoryNotFound   = "not_found"
	categoryGeneric    = "generic"
)

// translateError maps a discovery failure to the user-facing error
// payload.
func translateError(c echo.Context, err error) error {
	var netErr *tmdb.NetworkError
	if errors.As(err, &netErr) {
		return c.JSON(http.StatusServiceUnavailable, errorBody{
			Category:  categoryConnection,
			Message:   "Connection Error",
			Retryable: true,
		})
	}

	var apiErr *tmdb.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status == http.StatusNotFound {
			return c.JSON(http.StatusNotFound, errorBody{
				Category: categoryNotFound,
				Message:  "Not Found",
			})
		}
		return c.JSON(http.StatusBadGateway, errorBody{
			Category:  categoryGeneric,
			Message:   "Something went wrong",
			Retryable: true,
		})
	}

	if errors.Is(err, context.Canceled) {
		// The client went away; nothing useful to send.
		return nil
	}

	return c.JSON(http.StatusInternalServerError, errorBody{
		Category:  categoryGeneric,
		Message:   "Something went wrong",
		Retryable: true,
	})
}
