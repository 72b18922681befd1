package api

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/cinebase/cinebase/internal/suggest"
	"github.com/cinebase/cinebase/internal/tmdb"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// suggestRequest is a client message on the suggestion socket.
type suggestRequest struct {
	Action string `json:"action"` // input, down, up, commit, escape
	Query  string `json:"query,omitempty"`
}

// suggestItem is one dropdown entry with its title split into highlight
// segments.
type suggestItem struct {
	Movie    tmdb.Movie        `json:"movie"`
	Segments []suggest.Segment `json:"segments"`
}

// suggestEvent is a server push on the suggestion socket.
type suggestEvent struct {
	Type    string        `json:"type"` // state, commit
	Query   string        `json:"query"`
	Items   []suggestItem `json:"items,omitempty"`
	Cursor  int           `json:"cursor"`
	Loading bool          `json:"loading"`
	Visible bool          `json:"visible"`
	Movie   *tmdb.Movie   `json:"movie,omitempty"`
}

// suggestSocket runs one suggestion session per WebSocket connection.
// Keystrokes come in as input actions; debounced state snapshots go back
// out, already decorated with highlight segments.
func (s *Server) suggestSocket(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	var writeMu sync.Mutex
	send := func(ev suggestEvent) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(ev); err != nil {
			s.logger.Debug().Err(err).Msg("suggest socket write failed")
		}
	}

	engine := suggest.NewEngine(s.discovery, s.suggestCfg, s.logger, func(state suggest.State) {
		send(stateEvent(state))
	})
	defer engine.Close()

	for {
		var req suggestRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug().Err(err).Msg("suggest socket closed unexpectedly")
			}
			return nil
		}

		switch req.Action {
		case "input":
			engine.Input(req.Query)
		case "down":
			engine.MoveDown()
		case "up":
			engine.MoveUp()
		case "commit":
			if movie, ok := engine.Commit(); ok {
				send(suggestEvent{Type: "commit", Query: req.Query, Cursor: -1, Movie: &movie})
			}
		case "escape":
			engine.Escape()
		}
	}
}

func stateEvent(state suggest.State) suggestEvent {
	items := make([]suggestItem, len(state.Items))
	for i, m := range state.Items {
		items[i] = suggestItem{
			Movie:    m,
			Segments: suggest.Highlight(m.Title, state.Query),
		}
	}
	return suggestEvent{
		Type:    "state",
		Query:   state.Query,
		Items:   items,
		Cursor:  state.Cursor,
		Loading: state.Loading,
		Visible: state.Visible,
	}
}
