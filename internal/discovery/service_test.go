package discovery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/cinebase/cinebase/internal/curation"
	"github.com/cinebase/cinebase/internal/omdb"
	"github.com/cinebase/cinebase/internal/retry"
	"github.com/cinebase/cinebase/internal/tmdb"
)

func poster(p string) *string { return &p }

func qualified(id int, title string) tmdb.Movie {
	return tmdb.Movie{
		ID:               id,
		Title:            title,
		PosterPath:       poster("/p.jpg"),
		ReleaseDate:      "2020-01-01",
		OriginalLanguage: "en",
		VoteCount:        1000,
		VoteAverage:      7.0,
		Popularity:       50,
	}
}

type fakeCatalogue struct {
	mu sync.Mutex

	discoverPages map[string]*tmdb.MoviePage
	topRatedPage  *tmdb.MoviePage
	searchPage    *tmdb.MoviePage
	movie         *tmdb.MovieDetails
	credits       *tmdb.CreditsResponse
	videos        *tmdb.VideosResponse
	similarPage   *tmdb.MoviePage
	recPage       *tmdb.MoviePage

	discoverErr error
	movieErr    error
	creditsErr  error
	videosErr   error
	similarErr  error
	recErr      error
	searchErr   error

	discoverCalls int
	searchCalls   int
	searchYear    int
}

func (f *fakeCatalogue) Discover(ctx context.Context, opts tmdb.DiscoverOptions, page int) (*tmdb.MoviePage, error) {
	f.mu.Lock()
	f.discoverCalls++
	f.mu.Unlock()
	if f.discoverErr != nil {
		return nil, f.discoverErr
	}
	if f.discoverPages != nil {
		if p, ok := f.discoverPages[opts.OriginalLanguage]; ok {
			return p, nil
		}
	}
	return &tmdb.MoviePage{Page: 1, Results: []tmdb.Movie{qualified(1, "Discovered")}}, nil
}

func (f *fakeCatalogue) TopRated(ctx context.Context, page int) (*tmdb.MoviePage, error) {
	if f.topRatedPage != nil {
		return f.topRatedPage, nil
	}
	return &tmdb.MoviePage{Page: 1, Results: []tmdb.Movie{qualified(2, "Top Rated")}}, nil
}

func (f *fakeCatalogue) SearchMovies(ctx context.Context, query string, page, year int) (*tmdb.MoviePage, error) {
	f.mu.Lock()
	f.searchCalls++
	f.searchYear = year
	f.mu.Unlock()
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if f.searchPage != nil {
		return f.searchPage, nil
	}
	return &tmdb.MoviePage{Page: page, TotalPages: 1, TotalResults: 1, Results: []tmdb.Movie{qualified(3, "Found")}}, nil
}

func (f *fakeCatalogue) GetMovie(ctx context.Context, id int) (*tmdb.MovieDetails, error) {
	if f.movieErr != nil {
		return nil, f.movieErr
	}
	if f.movie != nil {
		return f.movie, nil
	}
	return &tmdb.MovieDetails{ID: id, Title: "Subject", VoteAverage: 7.7, ImdbID: "tt0000001"}, nil
}

func (f *fakeCatalogue) GetCredits(ctx context.Context, id int) (*tmdb.CreditsResponse, error) {
	if f.creditsErr != nil {
		return nil, f.creditsErr
	}
	if f.credits != nil {
		return f.credits, nil
	}
	return &tmdb.CreditsResponse{ID: id}, nil
}

func (f *fakeCatalogue) GetVideos(ctx context.Context, id int) (*tmdb.VideosResponse, error) {
	if f.videosErr != nil {
		return nil, f.videosErr
	}
	if f.videos != nil {
		return f.videos, nil
	}
	return &tmdb.VideosResponse{ID: id}, nil
}

func (f *fakeCatalogue) Similar(ctx context.Context, id int) (*tmdb.MoviePage, error) {
	if f.similarErr != nil {
		return nil, f.similarErr
	}
	if f.similarPage != nil {
		return f.similarPage, nil
	}
	return &tmdb.MoviePage{Results: nil}, nil
}

func (f *fakeCatalogue) Recommendations(ctx context.Context, id int) (*tmdb.MoviePage, error) {
	if f.recErr != nil {
		return nil, f.recErr
	}
	if f.recPage != nil {
		return f.recPage, nil
	}
	return &tmdb.MoviePage{Results: nil}, nil
}

type fakeRatings struct {
	ratings []omdb.Rating
	err     error
}

func (f *fakeRatings) IsConfigured() bool { return true }

func (f *fakeRatings) Ratings(ctx context.Context, imdbID string) ([]omdb.Rating, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.ratings, nil
}

func newTestService(catalogue CatalogueClient, ratings RatingsClient, cache *Cache) *Service {
	return NewService(
		catalogue,
		ratings,
		retry.Config{MaxAttempts: 2, BaseDelay: time.Millisecond},
		curation.DefaultPolicy(),
		curation.DefaultRelatedPolicy(),
		7,
		cache,
		zerolog.Nop(),
	)
}

func TestHomeSections_AllRailsPopulated(t *testing.T) {
	svc := newTestService(&fakeCatalogue{}, &fakeRatings{}, nil)

	sections, err := svc.HomeSections(context.Background())
	if err != nil {
		t.Fatalf("HomeSections() error = %v", err)
	}

	for name, rail := range map[string][]tmdb.Movie{
		"trending": sections.Trending,
		"topRated": sections.TopRated,
		"action":   sections.Action,
		"drama":    sections.Drama,
		"cartoons": sections.Cartoons,
		"anime":    sections.Anime,
	} {
		if len(rail) == 0 {
			t.Errorf("section %s is empty", name)
		}
	}
}

func TestHomeSections_FailFast(t *testing.T) {
	catalogue := &fakeCatalogue{
		discoverErr: &tmdb.APIError{Status: 500, Message: "upstream down"},
	}
	svc := newTestService(catalogue, &fakeRatings{}, nil)

	_, err := svc.HomeSections(context.Background())
	if err == nil {
		t.Fatal("HomeSections() expected error, got nil")
	}
	var apiErr *tmdb.APIError
	if !errors.As(err, &apiErr) {
		t.Errorf("HomeSections() error = %T, want wrapped *APIError", err)
	}
}

func TestHomeSections_AppliesCuration(t *testing.T) {
	catalogue := &fakeCatalogue{
		topRatedPage: &tmdb.MoviePage{Results: []tmdb.Movie{
			qualified(1, "Clean"),
			qualified(2, "Forbidden Desire"),
			{ID: 3, Title: "No Poster"},
		}},
	}
	svc := newTestService(catalogue, &fakeRatings{}, nil)

	sections, err := svc.HomeSections(context.Background())
	if err != nil {
		t.Fatalf("HomeSections() error = %v", err)
	}
	if len(sections.TopRated) != 1 || sections.TopRated[0].ID != 1 {
		t.Errorf("TopRated = %+v, want only the clean movie", sections.TopRated)
	}
}

func TestHomeSections_CachesResult(t *testing.T) {
	catalogue := &fakeCatalogue{}
	svc := newTestService(catalogue, &fakeRatings{}, NewCache(CacheConfig{TTL: time.Minute, MaxItems: 10}))

	if _, err := svc.HomeSections(context.Background()); err != nil {
		t.Fatalf("HomeSections() error = %v", err)
	}
	first := catalogue.discoverCalls

	if _, err := svc.HomeSections(context.Background()); err != nil {
		t.Fatalf("HomeSections() second call error = %v", err)
	}
	if catalogue.discoverCalls != first {
		t.Errorf("discover calls grew from %d to %d, want cache hit", first, catalogue.discoverCalls)
	}
}

func TestFlushCache_ForcesRefetch(t *testing.T) {
	catalogue := &fakeCatalogue{}
	svc := newTestService(catalogue, &fakeRatings{}, NewCache(CacheConfig{TTL: time.Minute, MaxItems: 10}))

	if _, err := svc.HomeSections(context.Background()); err != nil {
		t.Fatalf("HomeSections() error = %v", err)
	}
	if got := svc.CacheSize(); got != 1 {
		t.Errorf("CacheSize() = %d, want 1", got)
	}
	first := catalogue.discoverCalls

	svc.FlushCache()
	if got := svc.CacheSize(); got != 0 {
		t.Errorf("CacheSize() after flush = %d, want 0", got)
	}

	if _, err := svc.HomeSections(context.Background()); err != nil {
		t.Fatalf("HomeSections() after flush error = %v", err)
	}
	if catalogue.discoverCalls == first {
		t.Error("discover calls unchanged after flush, want a refetch")
	}
}

func TestMovieDetail_SubjectFailureFails(t *testing.T) {
	catalogue := &fakeCatalogue{
		movieErr: &tmdb.APIError{Status: 404, Message: "not found"},
	}
	svc := newTestService(catalogue, &fakeRatings{}, nil)

	_, err := svc.MovieDetail(context.Background(), 99)
	if !tmdb.IsNotFound(err) {
		t.Fatalf("MovieDetail() error = %v, want a 404 *APIError", err)
	}
}

func TestMovieDetail_EnrichmentFailuresTolerated(t *testing.T) {
	catalogue := &fakeCatalogue{
		creditsErr: errors.New("credits down"),
		videosErr:  errors.New("videos down"),
		similarErr: errors.New("similar down"),
		recErr:     errors.New("recommendations down"),
	}
	svc := newTestService(catalogue, &fakeRatings{err: errors.New("omdb down")}, nil)

	detail, err := svc.MovieDetail(context.Background(), 603)
	if err != nil {
		t.Fatalf("MovieDetail() error = %v", err)
	}
	if detail.Movie == nil {
		t.Fatal("Movie = nil, want the subject")
	}
	if len(detail.Cast) != 0 || detail.Trailer != nil {
		t.Error("enrichment should be empty when upstream fails")
	}
	// TMDB's own rating still leads the list
	if len(detail.Ratings) != 1 || detail.Ratings[0].Source != "TMDB" {
		t.Errorf("Ratings = %+v, want only the TMDB entry", detail.Ratings)
	}
	if detail.Related == nil {
		t.Error("Related = nil, want empty slice")
	}
}

func TestMovieDetail_FullEnrichment(t *testing.T) {
	catalogue := &fakeCatalogue{
		credits: &tmdb.CreditsResponse{
			Cast: []tmdb.CastMember{
				{ID: 1, Name: "A"}, {ID: 2, Name: "B"}, {ID: 3, Name: "C"},
				{ID: 4, Name: "D"}, {ID: 5, Name: "E"}, {ID: 6, Name: "F"},
				{ID: 7, Name: "G"},
			},
			Crew: []tmdb.CrewMember{
				{ID: 10, Name: "Editor", Job: "Editor"},
				{ID: 11, Name: "Director One", Job: "Director"},
			},
		},
		videos: &tmdb.VideosResponse{Results: []tmdb.Video{
			{Key: "teaser1", Site: "YouTube", Type: "Teaser"},
			{Key: "trailer1", Site: "YouTube", Type: "Trailer"},
			{Key: "vimeo1", Site: "Vimeo", Type: "Trailer"},
		}},
		similarPage: &tmdb.MoviePage{Results: []tmdb.Movie{qualified(700, "Related One")}},
	}
	svc := newTestService(catalogue, &fakeRatings{ratings: []omdb.Rating{
		{Source: "Internet Movie Database", Value: "8.7/10"},
	}}, nil)

	detail, err := svc.MovieDetail(context.Background(), 603)
	if err != nil {
		t.Fatalf("MovieDetail() error = %v", err)
	}

	if len(detail.Cast) != 6 {
		t.Errorf("cast = %d, want capped at 6", len(detail.Cast))
	}
	if detail.Director == nil || detail.Director.Name != "Director One" {
		t.Errorf("Director = %+v, want Director One", detail.Director)
	}
	if detail.Trailer == nil || detail.Trailer.Key != "trailer1" {
		t.Errorf("Trailer = %+v, want the YouTube trailer", detail.Trailer)
	}
	if len(detail.Ratings) != 2 || detail.Ratings[0].Source != "TMDB" {
		t.Errorf("Ratings = %+v, want TMDB first then IMDb", detail.Ratings)
	}
	if len(detail.Related) != 1 || detail.Related[0].ID != 700 {
		t.Errorf("Related = %+v, want the similar movie", detail.Related)
	}
}

func TestRelated_OneSourceFailing(t *testing.T) {
	catalogue := &fakeCatalogue{
		similarErr: &tmdb.APIError{Status: 500, Message: "down"},
		recPage:    &tmdb.MoviePage{Results: []tmdb.Movie{qualified(700, "From Recs")}},
	}
	svc := newTestService(catalogue, &fakeRatings{}, nil)

	related, err := svc.Related(context.Background(), 603)
	if err != nil {
		t.Fatalf("Related() error = %v", err)
	}
	if len(related) != 1 || related[0].ID != 700 {
		t.Errorf("Related() = %+v, want the recommendations entry", related)
	}
}

func TestRelated_BothSourcesFailing(t *testing.T) {
	catalogue := &fakeCatalogue{
		similarErr: &tmdb.APIError{Status: 500, Message: "down"},
		recErr:     &tmdb.APIError{Status: 500, Message: "down"},
	}
	svc := newTestService(catalogue, &fakeRatings{}, nil)

	if _, err := svc.Related(context.Background(), 603); err == nil {
		t.Fatal("Related() expected error when both sources fail")
	}
}

func TestSearch_CuratesResults(t *testing.T) {
	catalogue := &fakeCatalogue{
		searchPage: &tmdb.MoviePage{
			Page:         2,
			TotalPages:   5,
			TotalResults: 87,
			Results: []tmdb.Movie{
				qualified(1, "Clean Hit"),
				qualified(2, "Seduction Story"),
			},
		},
	}
	svc := newTestService(catalogue, &fakeRatings{}, nil)

	result, err := svc.Search(context.Background(), "story", 2, 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if result.Page != 2 || result.TotalPages != 5 {
		t.Errorf("paging = %d/%d, want 2/5", result.Page, result.TotalPages)
	}
	if result.TotalResults != 87 {
		t.Errorf("TotalResults = %d, want 87", result.TotalResults)
	}
	if len(result.Results) != 1 || result.Results[0].ID != 1 {
		t.Errorf("Results = %+v, want only the clean movie", result.Results)
	}
}

func TestSearch_PassesYearFilter(t *testing.T) {
	catalogue := &fakeCatalogue{}
	svc := newTestService(catalogue, &fakeRatings{}, nil)

	if _, err := svc.Search(context.Background(), "story", 1, 1999); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if catalogue.searchYear != 1999 {
		t.Errorf("search year = %d, want 1999", catalogue.searchYear)
	}
}

func TestSuggest_SingleShotAndCapped(t *testing.T) {
	var results []tmdb.Movie
	for i := 1; i <= 10; i++ {
		results = append(results, qualified(i, "Candidate"))
	}
	catalogue := &fakeCatalogue{
		searchPage: &tmdb.MoviePage{Results: results},
	}
	svc := newTestService(catalogue, &fakeRatings{}, nil)

	items, err := svc.Suggest(context.Background(), "cand", 0)
	if err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}
	if len(items) != 7 {
		t.Errorf("items = %d, want 7", len(items))
	}
	if catalogue.searchCalls != 1 {
		t.Errorf("search calls = %d, want 1 (no retry for suggestions)", catalogue.searchCalls)
	}
}

func TestSuggest_ErrorPropagates(t *testing.T) {
	catalogue := &fakeCatalogue{searchErr: &tmdb.NetworkError{Message: "down"}}
	svc := newTestService(catalogue, &fakeRatings{}, nil)

	if _, err := svc.Suggest(context.Background(), "x", 5); err == nil {
		t.Fatal("Suggest() expected error, got nil")
	}
	if catalogue.searchCalls != 1 {
		t.Errorf("search calls = %d, want 1", catalogue.searchCalls)
	}
}
