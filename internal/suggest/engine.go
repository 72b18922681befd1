package suggest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cinebase/cinebase/internal/tmdb"
)

// Searcher produces suggestion candidates for a query.
type Searcher interface {
	Suggest(ctx context.Context, query string, limit int) ([]tmdb.Movie, error)
}

// Config tunes the suggestion engine.
type Config struct {
	Debounce time.Duration
	MaxItems int
}

// DefaultConfig returns the standard suggestion tuning.
func DefaultConfig() Config {
	return Config{
		Debounce: 300 * time.Millisecond,
		MaxItems: 7,
	}
}

// State is a snapshot of the suggestion dropdown.
type State struct {
	Query   string       `json:"query"`
	Items   []tmdb.Movie `json:"items"`
	Cursor  int          `json:"cursor"`
	Loading bool         `json:"loading"`
	Visible bool         `json:"visible"`
}

// Engine drives a single suggestion session. Keystrokes are debounced,
// and a lookup that finishes after the query has moved on is discarded.
// Lookup failures leave the dropdown hidden rather than surfacing an
// error.
type Engine struct {
	searcher Searcher
	config   Config
	logger   zerolog.Logger
	notify   func(State)

	mu         sync.Mutex
	query      string
	items      []tmdb.Movie
	cursor     int
	loading    bool
	visible    bool
	generation uint64
	timer      *time.Timer
	cancel     context.CancelFunc
	closed     bool
}

// NewEngine creates a suggestion engine. notify is called with a state
// snapshot after every visible change; it may be nil.
func NewEngine(searcher Searcher, cfg Config, logger zerolog.Logger, notify func(State)) *Engine {
	return &Engine{
		searcher: searcher,
		config:   cfg,
		logger:   logger.With().Str("component", "suggest").Logger(),
		notify:   notify,
		cursor:   -1,
	}
}

// Input feeds a new query value into the engine. An empty or blank query
// clears and hides the dropdown immediately; anything else schedules a
// lookup after the debounce window.
func (e *Engine) Input(query string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}

	e.query = query
	e.generation++
	gen := e.generation

	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}

	if strings.TrimSpace(query) == "" {
		e.items = nil
		e.cursor = -1
		e.loading = false
		e.visible = false
		e.notifyLocked()
		return
	}

	e.loading = true
	e.notifyLocked()

	e.timer = time.AfterFunc(e.config.Debounce, func() {
		e.lookup(gen, query)
	})
}

func (e *Engine) lookup(gen uint64, query string) {
	e.mu.Lock()
	if e.closed || gen != e.generation {
		e.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.mu.Unlock()

	items, err := e.searcher.Suggest(ctx, query, e.config.MaxItems)
	cancel()

	e.mu.Lock()
	defer e.mu.Unlock()

	// A newer keystroke owns the dropdown now.
	if e.closed || gen != e.generation {
		return
	}

	e.loading = false
	if err != nil {
		e.logger.Debug().Err(err).Str("query", query).Msg("suggestion lookup failed")
		e.items = nil
		e.cursor = -1
		e.visible = false
		e.notifyLocked()
		return
	}

	if len(items) > e.config.MaxItems {
		items = items[:e.config.MaxItems]
	}
	e.items = items
	e.cursor = -1
	e.visible = len(items) > 0
	e.notifyLocked()
}

// MoveDown advances the cursor, stopping at the last item.
func (e *Engine) MoveDown() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.visible || len(e.items) == 0 {
		return
	}
	if e.cursor < len(e.items)-1 {
		e.cursor++
	}
	e.notifyLocked()
}

// MoveUp retreats the cursor, stopping at the first item.
func (e *Engine) MoveUp() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.visible || len(e.items) == 0 {
		return
	}
	if e.cursor--; e.cursor < 0 {
		e.cursor = 0
	}
	e.notifyLocked()
}

// Commit selects the item under the cursor and resets the session: the
// query and list are cleared and the dropdown hides. With no item
// engaged it returns false and leaves the state alone, so the caller
// can fall through to a full search instead.
func (e *Engine) Commit() (tmdb.Movie, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.visible || len(e.items) == 0 || e.cursor < 0 {
		return tmdb.Movie{}, false
	}

	selected := e.items[e.cursor]

	e.generation++
	e.query = ""
	e.items = nil
	e.cursor = -1
	e.loading = false
	e.visible = false
	e.notifyLocked()

	return selected, true
}

// Escape hides the dropdown without clearing the query.
func (e *Engine) Escape() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.generation++
	e.cursor = -1
	e.loading = false
	e.visible = false
	e.notifyLocked()
}

// State returns a snapshot of the current dropdown state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

// Close stops timers and in-flight lookups. The engine no longer reacts
// to input afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closed = true
	e.generation++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

func (e *Engine) stateLocked() State {
	items := make([]tmdb.Movie, len(e.items))
	copy(items, e.items)
	return State{
		Query:   e.query,
		Items:   items,
		Cursor:  e.cursor,
		Loading: e.loading,
		Visible: e.visible,
	}
}

func (e *Engine) notifyLocked() {
	if e.notify == nil {
		return
	}
	e.notify(e.stateLocked())
}
