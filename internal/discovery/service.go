package discovery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cinebase/cinebase/internal/curation"
	"github.com/cinebase/cinebase/internal/omdb"
	"github.com/cinebase/cinebase/internal/retry"
	"github.com/cinebase/cinebase/internal/tmdb"
)

const (
	homeSectionsCacheKey = "home:sections"
	maxCastMembers       = 6
)

// CatalogueClient is the slice of the TMDB client the service needs.
type CatalogueClient interface {
	Discover(ctx context.Context, opts tmdb.DiscoverOptions, page int) (*tmdb.MoviePage, error)
	TopRated(ctx context.Context, page int) (*tmdb.MoviePage, error)
	SearchMovies(ctx context.Context, query string, page, year int) (*tmdb.MoviePage, error)
	GetMovie(ctx context.Context, id int) (*tmdb.MovieDetails, error)
	GetCredits(ctx context.Context, id int) (*tmdb.CreditsResponse, error)
	GetVideos(ctx context.Context, id int) (*tmdb.VideosResponse, error)
	Similar(ctx context.Context, id int) (*tmdb.MoviePage, error)
	Recommendations(ctx context.Context, id int) (*tmdb.MoviePage, error)
}

// RatingsClient fetches external ratings by IMDb ID.
type RatingsClient interface {
	IsConfigured() bool
	Ratings(ctx context.Context, imdbID string) ([]omdb.Rating, error)
}

// Service assembles curated discovery pages from the catalogue.
type Service struct {
	tmdb     CatalogueClient
	omdb     RatingsClient
	retryCfg retry.Config
	policy   curation.Policy
	related  curation.RelatedPolicy
	suggest  int
	cache    *Cache
	logger   zerolog.Logger
}

// NewService creates a discovery service.
func NewService(catalogue CatalogueClient, ratings RatingsClient, retryCfg retry.Config, policy curation.Policy, related curation.RelatedPolicy, suggestLimit int, cache *Cache, logger zerolog.Logger) *Service {
	if suggestLimit <= 0 {
		suggestLimit = 7
	}
	return &Service{
		tmdb:     catalogue,
		omdb:     ratings,
		retryCfg: retryCfg,
		policy:   policy,
		related:  related,
		suggest:  suggestLimit,
		cache:    cache,
		logger:   logger.With().Str("component", "discovery").Logger(),
	}
}

// HomeSections fetches the six landing-page rails concurrently. One rail
// failing fails the whole page, so the caller can show a single retryable
// error instead of a half-empty page.
func (s *Service) HomeSections(ctx context.Context) (*HomeSections, error) {
	if s.cache != nil {
		if cached, ok := s.cache.getSections(homeSectionsCacheKey); ok {
			return cached, nil
		}
	}

	sections := &HomeSections{}
	g, gctx := errgroup.WithContext(ctx)

	fetch := func(name string, dest *[]tmdb.Movie, fn func(ctx context.Context) (*tmdb.MoviePage, error)) {
		g.Go(func() error {
			page, err := retry.DoValue(gctx, name, s.retryCfg, s.logger, fn)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*dest = curation.Curate(page.Results, s.policy)
			return nil
		})
	}

	year := time.Now().Year()
	fetch("home.trending", &sections.Trending, func(ctx context.Context) (*tmdb.MoviePage, error) {
		return s.tmdb.Discover(ctx, tmdb.DiscoverOptions{PrimaryReleaseYear: year, SortBy: "popularity.desc"}, 1)
	})
	fetch("home.topRated", &sections.TopRated, func(ctx context.Context) (*tmdb.MoviePage, error) {
		return s.tmdb.TopRated(ctx, 1)
	})
	fetch("home.action", &sections.Action, func(ctx context.Context) (*tmdb.MoviePage, error) {
		return s.tmdb.Discover(ctx, tmdb.DiscoverOptions{Genres: []int{28}, SortBy: "popularity.desc"}, 1)
	})
	fetch("home.drama", &sections.Drama, func(ctx context.Context) (*tmdb.MoviePage, error) {
		return s.tmdb.Discover(ctx, tmdb.DiscoverOptions{Genres: []int{18}, OriginalLanguage: "en", SortBy: "popularity.desc"}, 1)
	})
	fetch("home.cartoons", &sections.Cartoons, func(ctx context.Context) (*tmdb.MoviePage, error) {
		return s.tmdb.Discover(ctx, tmdb.DiscoverOptions{Genres: []int{16, 10751}, OriginalLanguage: "en", SortBy: "popularity.desc"}, 1)
	})
	fetch("home.anime", &sections.Anime, func(ctx context.Context) (*tmdb.MoviePage, error) {
		return s.tmdb.Discover(ctx, tmdb.DiscoverOptions{Genres: []int{16}, OriginalLanguage: "ja", SortBy: "popularity.desc"}, 1)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(homeSectionsCacheKey, sections)
	}

	return sections, nil
}

// WarmHomeSections refreshes the landing-page cache in the background.
func (s *Service) WarmHomeSections(ctx context.Context) error {
	if s.cache != nil {
		s.cache.Delete(homeSectionsCacheKey)
	}
	_, err := s.HomeSections(ctx)
	return err
}

// FlushCache drops every cached page, forcing fresh fetches.
func (s *Service) FlushCache() {
	if s.cache != nil {
		s.cache.Clear()
	}
}

// CacheSize reports how many entries the page cache currently holds.
func (s *Service) CacheSize() int {
	if s.cache == nil {
		return 0
	}
	return s.cache.Len()
}

// MovieDetail fetches the detail page for a movie. The movie itself must
// resolve; cast, trailer, external ratings, and the related rail are
// enrichment and are dropped individually on failure.
func (s *Service) MovieDetail(ctx context.Context, id int) (*MovieDetail, error) {
	movie, err := retry.DoValue(ctx, "movie.detail", s.retryCfg, s.logger, func(ctx context.Context) (*tmdb.MovieDetails, error) {
		return s.tmdb.GetMovie(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	detail := &MovieDetail{Movie: movie}

	var wg sync.WaitGroup
	var mu sync.Mutex

	wg.Add(1)
	go func() {
		defer wg.Done()
		credits, err := s.tmdb.GetCredits(ctx, id)
		if err != nil {
			s.logger.Warn().Err(err).Int("id", id).Msg("failed to fetch credits")
			return
		}
		cast := credits.Cast
		if len(cast) > maxCastMembers {
			cast = cast[:maxCastMembers]
		}
		var director *tmdb.CrewMember
		for i := range credits.Crew {
			if credits.Crew[i].Job == "Director" {
				director = &credits.Crew[i]
				break
			}
		}
		mu.Lock()
		detail.Cast = cast
		detail.Director = director
		mu.Unlock()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		videos, err := s.tmdb.GetVideos(ctx, id)
		if err != nil {
			s.logger.Warn().Err(err).Int("id", id).Msg("failed to fetch videos")
			return
		}
		trailer := pickTrailer(videos.Results)
		mu.Lock()
		detail.Trailer = trailer
		mu.Unlock()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		ratings := s.fetchRatings(ctx, movie)
		mu.Lock()
		detail.Ratings = ratings
		mu.Unlock()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		related, err := s.Related(ctx, id)
		if err != nil {
			s.logger.Warn().Err(err).Int("id", id).Msg("failed to fetch related movies")
			return
		}
		mu.Lock()
		detail.Related = related
		mu.Unlock()
	}()

	wg.Wait()

	if detail.Ratings == nil {
		detail.Ratings = []omdb.Rating{}
	}
	if detail.Related == nil {
		detail.Related = []tmdb.Movie{}
	}

	return detail, nil
}

// fetchRatings assembles the ratings list: the catalogue's own score
// first, then whatever OMDb offers. OMDb being down or unconfigured only
// shortens the list.
func (s *Service) fetchRatings(ctx context.Context, movie *tmdb.MovieDetails) []omdb.Rating {
	ratings := []omdb.Rating{}
	if movie.VoteAverage > 0 {
		ratings = append(ratings, omdb.Rating{
			Source: "TMDB",
			Value:  fmt.Sprintf("%.1f/10", movie.VoteAverage),
		})
	}

	if s.omdb == nil || !s.omdb.IsConfigured() || movie.ImdbID == "" {
		return ratings
	}

	external, err := s.omdb.Ratings(ctx, movie.ImdbID)
	if err != nil {
		s.logger.Debug().Err(err).Str("imdbId", movie.ImdbID).Msg("failed to fetch external ratings")
		return ratings
	}
	return append(ratings, external...)
}

// Related builds the ranked related rail for a movie. The similar and
// recommended lists are fetched concurrently; either one failing just
// narrows the candidate pool.
func (s *Service) Related(ctx context.Context, id int) ([]tmdb.Movie, error) {
	var (
		wg          sync.WaitGroup
		similar     []tmdb.Movie
		recommended []tmdb.Movie
		similarErr  error
		recErr      error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		page, err := retry.DoValue(ctx, "movie.similar", s.retryCfg, s.logger, func(ctx context.Context) (*tmdb.MoviePage, error) {
			return s.tmdb.Similar(ctx, id)
		})
		if err != nil {
			similarErr = err
			return
		}
		similar = page.Results
	}()
	go func() {
		defer wg.Done()
		page, err := retry.DoValue(ctx, "movie.recommendations", s.retryCfg, s.logger, func(ctx context.Context) (*tmdb.MoviePage, error) {
			return s.tmdb.Recommendations(ctx, id)
		})
		if err != nil {
			recErr = err
			return
		}
		recommended = page.Results
	}()
	wg.Wait()

	if similarErr != nil && recErr != nil {
		return nil, similarErr
	}
	if similarErr != nil {
		s.logger.Warn().Err(similarErr).Int("id", id).Msg("similar list unavailable")
	}
	if recErr != nil {
		s.logger.Warn().Err(recErr).Int("id", id).Msg("recommendations list unavailable")
	}

	return curation.AggregateRelated(similar, recommended, id, s.related), nil
}

// Search runs a curated movie search. A positive year restricts results
// to that release year.
func (s *Service) Search(ctx context.Context, query string, page, year int) (*SearchResult, error) {
	if page < 1 {
		page = 1
	}

	result, err := retry.DoValue(ctx, "search.movies", s.retryCfg, s.logger, func(ctx context.Context) (*tmdb.MoviePage, error) {
		return s.tmdb.SearchMovies(ctx, query, page, year)
	})
	if err != nil {
		return nil, err
	}

	return &SearchResult{
		Query:        query,
		Page:         result.Page,
		TotalPages:   result.TotalPages,
		TotalResults: result.TotalResults,
		Results:      curation.Curate(result.Results, s.policy),
	}, nil
}

// Suggest returns up to the configured number of curated candidates for
// the suggestion dropdown. Lookups are single-shot so a stale result
// never delays a newer keystroke.
func (s *Service) Suggest(ctx context.Context, query string, limit int) ([]tmdb.Movie, error) {
	if limit <= 0 || limit > s.suggest {
		limit = s.suggest
	}

	result, err := s.tmdb.SearchMovies(ctx, query, 1, 0)
	if err != nil {
		return nil, err
	}

	curated := curation.Curate(result.Results, s.policy)
	if len(curated) > limit {
		curated = curated[:limit]
	}
	return curated, nil
}

func pickTrailer(videos []tmdb.Video) *tmdb.Video {
	var fallback *tmdb.Video
	for i := range videos {
		v := &videos[i]
		if v.Site != "YouTube" {
			continue
		}
		if v.Type == "Trailer" {
			return v
		}
		if fallback == nil {
			fallback = v
		}
	}
	return fallback
}
