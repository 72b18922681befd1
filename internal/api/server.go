package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/cinebase/cinebase/internal/config"
	"github.com/cinebase/cinebase/internal/curation"
	"github.com/cinebase/cinebase/internal/discovery"
	"github.com/cinebase/cinebase/internal/favorites"
	"github.com/cinebase/cinebase/internal/omdb"
	"github.com/cinebase/cinebase/internal/preferences"
	"github.com/cinebase/cinebase/internal/retry"
	"github.com/cinebase/cinebase/internal/scheduler"
	"github.com/cinebase/cinebase/internal/suggest"
	"github.com/cinebase/cinebase/internal/tmdb"
)

// Server handles HTTP requests for the CineBase API.
type Server struct {
	echo   *echo.Echo
	db     *sql.DB
	logger zerolog.Logger
	cfg    *config.Config

	tmdbClient  *tmdb.Client
	omdbClient  *omdb.Client
	discovery   *discovery.Service
	favorites   *favorites.Store
	preferences *preferences.Service
	scheduler   *scheduler.Scheduler
	suggestCfg  suggest.Config
}

// NewServer creates a new API server instance.
func NewServer(db *sql.DB, cfg *config.Config, sched *scheduler.Scheduler, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:      e,
		db:        db,
		logger:    logger,
		cfg:       cfg,
		scheduler: sched,
	}

	s.tmdbClient = tmdb.NewClient(cfg.TMDB, logger)
	s.omdbClient = omdb.NewClient(cfg.OMDB, logger)

	s.discovery = discovery.NewService(
		s.tmdbClient,
		s.omdbClient,
		retryConfig(cfg.Retry),
		curationPolicy(cfg.Curation),
		relatedPolicy(cfg.Related),
		cfg.Suggest.MaxItems,
		discovery.NewCache(discovery.DefaultCacheConfig()),
		logger,
	)

	s.favorites = favorites.NewStore(db, logger)
	s.preferences = preferences.NewService(db)
	s.suggestCfg = suggestConfig(cfg.Suggest)

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Discovery exposes the discovery service for background tasks.
func (s *Server) Discovery() *discovery.Service {
	return s.discovery
}

// Start starts the HTTP server.
func (s *Server) Start(address string) error {
	s.logger.Info().Str("address", address).Msg("Starting API server")
	return s.echo.Start(address)
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler returns the underlying HTTP handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())
	s.echo.Use(middleware.BodyLimit("1M"))

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogMethod:   true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Info().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Msg("request")
			}
			return nil
		},
	}))

	s.echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			// Skip compression for WebSocket
			return c.Request().Header.Get("Upgrade") == "websocket"
		},
	}))
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)

	api := s.echo.Group("/api/v1")

	api.GET("/status", s.getStatus)
	api.GET("/tasks", s.listTasks)
	api.POST("/providers/:name/test", s.testProvider)
	api.DELETE("/cache", s.flushCache)

	api.GET("/home", s.getHome)
	api.GET("/movie/:id", s.getMovie)
	api.GET("/movie/:id/related", s.getRelated)
	api.GET("/search", s.searchMovies)
	api.GET("/suggest/ws", s.suggestSocket)

	api.GET("/favorites", s.listFavorites)
	api.POST("/favorites/toggle", s.toggleFavorite)
	api.DELETE("/favorites/:id", s.removeFavorite)

	api.GET("/theme", s.getTheme)
	api.POST("/theme/toggle", s.toggleTheme)
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func retryConfig(cfg config.RetryConfig) retry.Config {
	out := retry.DefaultConfig()
	if cfg.MaxAttempts > 0 {
		out.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.BaseDelayMS > 0 {
		out.BaseDelay = millis(cfg.BaseDelayMS)
	}
	return out
}

func curationPolicy(cfg config.CurationConfig) curation.Policy {
	p := curation.DefaultPolicy()
	p.RequirePoster = cfg.RequirePoster
	p.ExcludeAdult = cfg.ExcludeAdult
	if len(cfg.BlockedTitles) > 0 {
		p.BlockedTitles = make(map[string]struct{}, len(cfg.BlockedTitles))
		for _, t := range cfg.BlockedTitles {
			p.BlockedTitles[t] = struct{}{}
		}
	}
	if len(cfg.BlockedKeywords) > 0 {
		p.BlockedKeywords = cfg.BlockedKeywords
	}
	return p
}

func relatedPolicy(cfg config.RelatedConfig) curation.RelatedPolicy {
	p := curation.DefaultRelatedPolicy()
	if cfg.MinVoteCount > 0 {
		p.MinVoteCount = cfg.MinVoteCount
	}
	if cfg.MinVoteAverage > 0 {
		p.MinVoteAverage = cfg.MinVoteAverage
	}
	if len(cfg.AllowedLanguages) > 0 {
		p.AllowedLanguages = cfg.AllowedLanguages
	}
	if cfg.Limit > 0 {
		p.Limit = cfg.Limit
	}
	return p
}

func suggestConfig(cfg config.SuggestConfig) suggest.Config {
	out := suggest.DefaultConfig()
	if cfg.DebounceMS > 0 {
		out.Debounce = millis(cfg.DebounceMS)
	}
	if cfg.MaxItems > 0 {
		out.MaxItems = cfg.MaxItems
	}
	return out
}
