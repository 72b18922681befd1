package preferences

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

const (
	// KeyDarkMode stores the UI theme preference.
	KeyDarkMode = "ui.dark_mode"

	boolTrue = "true"
)

// Service reads and writes user preferences stored as key-value pairs.
type Service struct {
	db *sql.DB
}

// NewService creates a preferences service.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// DarkMode returns the theme preference. Dark mode is the default until
// the user chooses otherwise.
func (s *Service) DarkMode(ctx context.Context) bool {
	val, err := s.getString(ctx, KeyDarkMode)
	if err != nil {
		return true
	}
	return val == boolTrue
}

// SetDarkMode updates the theme preference.
func (s *Service) SetDarkMode(ctx context.Context, value bool) error {
	return s.setString(ctx, KeyDarkMode, strconv.FormatBool(value))
}

// ToggleDarkMode flips the theme preference and returns the new value.
func (s *Service) ToggleDarkMode(ctx context.Context) (bool, error) {
	next := !s.DarkMode(ctx)
	if err := s.SetDarkMode(ctx, next); err != nil {
		return false, err
	}
	return next, nil
}

func (s *Service) getString(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", err
	}
	if err != nil {
		return "", fmt.Errorf("failed to read preference %s: %w", key, err)
	}
	return value, nil
}

func (s *Service) setString(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		return fmt.Errorf("failed to write preference %s: %w", key, err)
	}
	return nil
}
