package discovery

import (
	"github.com/cinebase/cinebase/internal/omdb"
	"github.com/cinebase/cinebase/internal/tmdb"
)

// HomeSections holds the curated browse rails on the landing page.
type HomeSections struct {
	Trending []tmdb.Movie `json:"trending"`
	TopRated []tmdb.Movie `json:"topRated"`
	Action   []tmdb.Movie `json:"action"`
	Drama    []tmdb.Movie `json:"drama"`
	Cartoons []tmdb.Movie `json:"cartoons"`
	Anime    []tmdb.Movie `json:"anime"`
}

// MovieDetail is the full detail-page payload. Everything beyond the
// movie itself is best-effort enrichment and may be empty.
type MovieDetail struct {
	Movie    *tmdb.MovieDetails `json:"movie"`
	Cast     []tmdb.CastMember  `json:"cast"`
	Director *tmdb.CrewMember   `json:"director,omitempty"`
	Trailer  *tmdb.Video        `json:"trailer,omitempty"`
	Ratings  []omdb.Rating      `json:"ratings"`
	Related  []tmdb.Movie       `json:"related"`
}

// SearchResult is one page of curated search results.
type SearchResult struct {
	Query        string       `json:"query"`
	Page         int          `json:"page"`
	TotalPages   int          `json:"totalPages"`
	TotalResults int          `json:"totalResults"`
	Results      []tmdb.Movie `json:"results"`
}
