package tmdb

import (
	"errors"
	"fmt"
)

// ErrAPIKeyMissing is returned when a request is attempted without a configured key.
var ErrAPIKeyMissing = errors.New("TMDB API key is not configured")

// APIError is a response from TMDB with a non-success status code.
// The request reached the server; it answered with a failure.
type APIError struct {
	Status  int
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("TMDB API error: %s (status %d)", e.Message, e.Status)
}

// IsClientError reports whether the status is a 4xx — the request itself is
// wrong, so retrying it cannot help.
func (e *APIError) IsClientError() bool {
	return e.Status >= 400 && e.Status < 500
}

// NetworkError means no HTTP response was obtained at all: DNS failure,
// refused connection, timeout. Distinct from a 404 or 500.
type NetworkError struct {
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 404
}
