package favorites

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cinebase/cinebase/internal/tmdb"
)

// Store persists the user's favorite movies.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewStore creates a favorites store.
func NewStore(db *sql.DB, logger zerolog.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger.With().Str("component", "favorites").Logger(),
	}
}

// Add marks a movie as a favorite. Adding a movie that is already a
// favorite is a no-op.
func (s *Store) Add(ctx context.Context, movie tmdb.Movie) error {
	payload, err := json.Marshal(movie)
	if err != nil {
		return fmt.Errorf("failed to encode movie: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO favorites (movie_id, movie) VALUES (?, ?)
		ON CONFLICT(movie_id) DO NOTHING`,
		movie.ID, string(payload))
	if err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

// Remove unmarks a favorite. Removing a movie that is not a favorite is
// a no-op.
func (s *Store) Remove(ctx context.Context, movieID int) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM favorites WHERE movie_id = ?`, movieID)
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

// Toggle flips the favorite state of a movie and reports whether it is
// now a favorite.
func (s *Store) Toggle(ctx context.Context, movie tmdb.Movie) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM favorites WHERE movie_id = ?`, movie.ID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}

	added := false
	if exists > 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM favorites WHERE movie_id = ?`, movie.ID); err != nil {
			return false, fmt.Errorf("failed to remove favorite: %w", err)
		}
	} else {
		payload, err := json.Marshal(movie)
		if err != nil {
			return false, fmt.Errorf("failed to encode movie: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO favorites (movie_id, movie) VALUES (?, ?)`, movie.ID, string(payload)); err != nil {
			return false, fmt.Errorf("failed to add favorite: %w", err)
		}
		added = true
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Debug().Int("movieId", movie.ID).Bool("added", added).Msg("toggled favorite")
	return added, nil
}

// IsFavorite reports whether a movie is a favorite.
func (s *Store) IsFavorite(ctx context.Context, movieID int) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM favorites WHERE movie_id = ?`, movieID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return count > 0, nil
}

// List returns all favorites, most recently added first. Entries that no
// longer decode are skipped rather than failing the whole list.
func (s *Store) List(ctx context.Context) ([]tmdb.Movie, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT movie FROM favorites ORDER BY added_at DESC, movie_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	movies := make([]tmdb.Movie, 0)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		var movie tmdb.Movie
		if err := json.Unmarshal([]byte(payload), &movie); err != nil {
			s.logger.Warn().Err(err).Msg("skipping undecodable favorite")
			continue
		}
		movies = append(movies, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate favorites: %w", err)
	}

	return movies, nil
}
