package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cinebase/cinebase/internal/config"
)

// maxErrorBody caps how much of an error response body is kept for
// diagnostics.
const maxErrorBody = 4 << 10

// Client is a TMDB API client.
type Client struct {
	httpClient *http.Client
	config     config.TMDBConfig
	logger     zerolog.Logger
}

// NewClient creates a new TMDB client.
func NewClient(cfg config.TMDBConfig, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		config: cfg,
		logger: logger.With().Str("component", "tmdb").Logger(),
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "tmdb"
}

// IsConfigured returns true if the API key is set.
func (c *Client) IsConfigured() bool {
	return c.config.APIKey != ""
}

// Test verifies connectivity to the TMDB API by making a configuration request.
func (c *Client) Test(ctx context.Context) error {
	if !c.IsConfigured() {
		return ErrAPIKeyMissing
	}

	var result struct {
		Images struct {
			BaseURL string `json:"base_url"`
		} `json:"images"`
	}

	return c.get(ctx, "/configuration", nil, &result)
}

// DiscoverOptions narrows a catalogue discover request.
type DiscoverOptions struct {
	Genres             []int
	OriginalLanguage   string
	PrimaryReleaseYear int
	SortBy             string
}

// Discover lists movies matching the given filters, one page at a time.
func (c *Client) Discover(ctx context.Context, opts DiscoverOptions, page int) (*MoviePage, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	params := url.Values{}
	if len(opts.Genres) > 0 {
		genres := make([]string, len(opts.Genres))
		for i, g := range opts.Genres {
			genres[i] = strconv.Itoa(g)
		}
		params.Set("with_genres", strings.Join(genres, ","))
	}
	if opts.OriginalLanguage != "" {
		params.Set("with_original_language", opts.OriginalLanguage)
	}
	if opts.PrimaryReleaseYear > 0 {
		params.Set("primary_release_year", strconv.Itoa(opts.PrimaryReleaseYear))
	}
	if opts.SortBy != "" {
		params.Set("sort_by", opts.SortBy)
	}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}

	var result MoviePage
	if err := c.get(ctx, "/discover/movie", params, &result); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Int("page", result.Page).
		Int("results", len(result.Results)).
		Msg("Discover completed")

	return &result, nil
}

// TopRated lists the highest rated movies, one page at a time.
func (c *Client) TopRated(ctx context.Context, page int) (*MoviePage, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	params := url.Values{}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}

	var result MoviePage
	if err := c.get(ctx, "/movie/top_rated", params, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// SearchMovies searches for movies by free-text query. A positive year
// narrows results to that primary release year.
func (c *Client) SearchMovies(ctx context.Context, query string, page, year int) (*MoviePage, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if year > 0 {
		params.Set("primary_release_year", strconv.Itoa(year))
	}

	var result MoviePage
	if err := c.get(ctx, "/search/movie", params, &result); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("query", query).
		Int("results", len(result.Results)).
		Msg("Movie search completed")

	return &result, nil
}

// GetMovie gets detailed movie info by TMDB ID.
func (c *Client) GetMovie(ctx context.Context, id int) (*MovieDetails, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	var details MovieDetails
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", id), nil, &details); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Int("id", id).
		Str("title", details.Title).
		Msg("Got movie details")

	return &details, nil
}

// GetCredits gets the cast and crew for a movie.
func (c *Client) GetCredits(ctx context.Context, id int) (*CreditsResponse, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	var credits CreditsResponse
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/credits", id), nil, &credits); err != nil {
		return nil, err
	}

	return &credits, nil
}

// GetVideos gets the videos (trailers, teasers) attached to a movie.
func (c *Client) GetVideos(ctx context.Context, id int) (*VideosResponse, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	var videos VideosResponse
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/videos", id), nil, &videos); err != nil {
		return nil, err
	}

	return &videos, nil
}

// Similar lists movies similar to the given movie.
func (c *Client) Similar(ctx context.Context, id int) (*MoviePage, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	var result MoviePage
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/similar", id), nil, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// Recommendations lists movies recommended alongside the given movie.
func (c *Client) Recommendations(ctx context.Context, id int) (*MoviePage, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	var result MoviePage
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/recommendations", id), nil, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// GetImageURL returns a full image URL for a given path and size.
// Size options: "w92", "w154", "w185", "w342", "w500", "w780", "original"
func (c *Client) GetImageURL(path string, size string) string {
	if path == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s%s", c.config.ImageBaseURL, size, path)
}

// get performs an HTTP GET request against the API and decodes the JSON
// response. Transport failures come back as *NetworkError, non-2xx
// responses as *APIError.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.config.APIKey)
	if c.config.Language != "" {
		params.Set("language", c.config.Language)
	}

	reqURL := fmt.Sprintf("%s%s?%s", c.config.BaseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("path", path).Msg("HTTP request failed")
		return &NetworkError{
			Message: "unable to reach the movie catalogue",
			Err:     err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		message := fmt.Sprintf("API error: %d", resp.StatusCode)
		var errResp errorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.StatusMessage != "" {
			message = errResp.StatusMessage
		}

		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("path", path).
			Str("message", message).
			Msg("TMDB API error")

		return &APIError{
			Status:  resp.StatusCode,
			Message: message,
			Body:    body,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
