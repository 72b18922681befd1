package favorites

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/cinebase/cinebase/internal/database"
	"github.com/cinebase/cinebase/internal/tmdb"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return NewStore(db.Conn(), zerolog.Nop())
}

func movie(id int, title string) tmdb.Movie {
	return tmdb.Movie{ID: id, Title: title, VoteAverage: 7.0}
}

func TestStore_AddIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	m := movie(603, "The Matrix")
	if err := store.Add(ctx, m); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := store.Add(ctx, m); err != nil {
		t.Fatalf("second Add() error = %v", err)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 {
		t.Errorf("List() len = %d, want 1", len(list))
	}
}

func TestStore_RemoveMissingIsNoop(t *testing.T) {
	store := newTestStore(t)
	if err := store.Remove(context.Background(), 12345); err != nil {
		t.Errorf("Remove() error = %v, want nil", err)
	}
}

func TestStore_Toggle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	m := movie(603, "The Matrix")

	added, err := store.Toggle(ctx, m)
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if !added {
		t.Error("first Toggle() = false, want true")
	}

	fav, err := store.IsFavorite(ctx, 603)
	if err != nil {
		t.Fatalf("IsFavorite() error = %v", err)
	}
	if !fav {
		t.Error("IsFavorite() = false after toggle on")
	}

	added, err = store.Toggle(ctx, m)
	if err != nil {
		t.Fatalf("second Toggle() error = %v", err)
	}
	if added {
		t.Error("second Toggle() = true, want false")
	}

	fav, err = store.IsFavorite(ctx, 603)
	if err != nil {
		t.Fatalf("IsFavorite() error = %v", err)
	}
	if fav {
		t.Error("IsFavorite() = true after toggle off")
	}
}

func TestStore_ListRoundTripsMovieFields(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := "/poster.jpg"
	in := tmdb.Movie{
		ID:          603,
		Title:       "The Matrix",
		ReleaseDate: "1999-03-30",
		PosterPath:  &p,
		VoteAverage: 8.2,
		VoteCount:   26000,
	}
	if err := store.Add(ctx, in); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("List() len = %d, want 1", len(list))
	}

	got := list[0]
	if got.ID != in.ID || got.Title != in.Title || got.ReleaseDate != in.ReleaseDate {
		t.Errorf("List()[0] = %+v, want %+v", got, in)
	}
	if got.PosterPath == nil || *got.PosterPath != p {
		t.Errorf("PosterPath = %v, want %q", got.PosterPath, p)
	}
}

func TestStore_ListEmpty(t *testing.T) {
	store := newTestStore(t)

	list, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if list == nil {
		t.Fatal("List() = nil, want empty slice")
	}
	if len(list) != 0 {
		t.Errorf("List() len = %d, want 0", len(list))
	}
}
