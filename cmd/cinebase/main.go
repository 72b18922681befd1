package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/cinebase/cinebase/internal/api"
	"github.com/cinebase/cinebase/internal/config"
	"github.com/cinebase/cinebase/internal/database"
	"github.com/cinebase/cinebase/internal/logger"
	"github.com/cinebase/cinebase/internal/scheduler"
)

func main() {
	// Load .env if present, so API keys can live outside the config file.
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to config file")
	rollback := flag.Bool("rollback", false, "Roll back the most recent database migration and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Logging)
	defer log.Close()

	log.Info().
		Str("version", config.Version).
		Str("logLevel", cfg.Logging.Level).
		Msg("CineBase starting")

	if cfg.TMDB.APIKey == "" {
		log.Warn().Msg("TMDB API key is not configured; catalogue requests will fail")
	}

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("failed to open database")
	}
	defer db.Close()

	if *rollback {
		if err := db.MigrateDown(); err != nil {
			log.Fatal().Err(err).Msg("failed to roll back migration")
		}
		log.Info().Msg("Rolled back last migration")
		return
	}

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to run database migrations")
	}

	sched, err := scheduler.New(log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduler")
	}

	server := api.NewServer(db.Conn(), cfg, sched, log.Logger)

	err = sched.RegisterTask(scheduler.TaskConfig{
		ID:          "home-sections-warm",
		Name:        "Home Sections Warm",
		Description: "Refreshes the cached landing-page sections",
		Cron:        cfg.Scheduler.SectionWarmCron,
		RunOnStart:  true,
		Func: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
			defer cancel()
			return server.Discovery().WarmHomeSections(ctx)
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register warm task")
	}

	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}

	go func() {
		if err := server.Start(cfg.Server.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	log.Info().Str("address", cfg.Server.Address()).Msg("CineBase started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")

	if err := sched.Stop(); err != nil {
		log.Error().Err(err).Msg("failed to stop scheduler")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("failed to shut down server")
	}

	log.Info().Msg("Shutdown complete")
}
