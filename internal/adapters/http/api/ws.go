package api

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/swaralaya/scoreboard/internal/domain/standings"
	"github.com/swaralaya/scoreboard/internal/view/scroll"
	"github.com/swaralaya/scoreboard/pkg/metrics"
)

// wsHandler pushes view updates to display clients and runs one auto-scroll
// loop per leaderboard connection, steering the client's viewport remotely.
type wsHandler struct {
	deps       Dependencies
	scrollOpts []scroll.Option
	upgrader   websocket.Upgrader

	lbClients atomic.Int64
	evClients atomic.Int64
}

func newWSHandler(deps Dependencies, scrollOpts []scroll.Option) *wsHandler {
	return &wsHandler{
		deps:       deps,
		scrollOpts: scrollOpts,
		upgrader: websocket.Upgrader{
			// The display pages are served cross-device in the hall; origin
			// policy for the read-only sockets is handled by CORS upstream.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// clientMessage is anything a display page sends upstream.
type clientMessage struct {
	Type string `json:"type"`

	// metrics report (leaderboard)
	Top          float64 `json:"top,omitempty"`
	ScrollHeight float64 `json:"scroll_height,omitempty"`
	ClientHeight float64 `json:"client_height,omitempty"`

	// pointer report
	Entered bool `json:"entered,omitempty"`

	// select navigation (events)
	Index int `json:"index,omitempty"`
}

// serverMessage is anything pushed down to a display page.
type serverMessage struct {
	Type string   `json:"type"`
	View any      `json:"view,omitempty"`
	Top  *float64 `json:"top,omitempty"`
}

// HandleLeaderboardSocket handles GET /ws/leaderboard. The server owns the
// auto-scroll state machine; the client reports viewport metrics and pointer
// hover, and applies the scroll offsets it is sent.
func (h *wsHandler) HandleLeaderboardSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	metrics.UpdateWSClients("leaderboard", int(h.lbClients.Add(1)))
	defer func() {
		metrics.UpdateWSClients("leaderboard", int(h.lbClients.Add(-1)))
	}()
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	out := make(chan serverMessage, 64)
	surface := &wsSurface{}
	surface.send = func(top float64) {
		msg := serverMessage{Type: "scroll_to", Top: &top}
		// Frames are frequent; drop on backpressure rather than stall the
		// animation loop.
		select {
		case out <- msg:
		default:
		}
	}

	loop := scroll.New(surface, h.scrollOpts...)
	go loop.Run(ctx)

	views, stopWatch := h.deps.WatchLeaderboard()
	defer stopWatch()

	go writeLoop(ctx, cancel, conn, out)
	go closeOnDone(ctx, conn)

	go func() {
		for view := range views {
			// No content or a feed error disables the loop entirely.
			if view.State == standings.StateReady {
				loop.Start()
			} else {
				loop.Stop()
			}
			select {
			case out <- serverMessage{Type: "view", View: view}:
			case <-ctx.Done():
				return
			}
		}
		cancel()
	}()

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		switch msg.Type {
		case "metrics":
			surface.update(msg.Top, msg.ScrollHeight, msg.ClientHeight)
		case "pointer":
			if msg.Entered {
				loop.PointerEnter()
			} else {
				loop.PointerLeave()
			}
		}
	}
}

// HandleEventsSocket handles GET /ws/events. View updates (including
// carousel index changes) are pushed down; pointer and manual navigation
// come back up and drive the shared carousel.
func (h *wsHandler) HandleEventsSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	metrics.UpdateWSClients("events", int(h.evClients.Add(1)))
	defer func() {
		metrics.UpdateWSClients("events", int(h.evClients.Add(-1)))
	}()
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	out := make(chan serverMessage, 64)
	views, stopWatch := h.deps.WatchEvents()
	defer stopWatch()

	go writeLoop(ctx, cancel, conn, out)
	go closeOnDone(ctx, conn)

	go func() {
		for view := range views {
			select {
			case out <- serverMessage{Type: "view", View: view}:
			case <-ctx.Done():
				return
			}
		}
		cancel()
	}()

	car := h.deps.Carousel()
	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		switch msg.Type {
		case "pointer":
			if msg.Entered {
				car.PointerEnter()
			} else {
				car.PointerLeave()
			}
		case "next":
			car.Next()
		case "prev":
			car.Prev()
		case "select":
			car.Select(msg.Index)
		}
	}
}

// closeOnDone closes the connection once ctx is cancelled, unblocking the
// read loop when the watch channel closes on service shutdown.
func closeOnDone(ctx context.Context, conn *websocket.Conn) {
	<-ctx.Done()
	_ = conn.Close()
}

// writeLoop is the single writer for a connection.
func writeLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, out <-chan serverMessage) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-out:
			if err := conn.WriteJSON(msg); err != nil {
				cancel()
				return
			}
		}
	}
}

// wsSurface is the scroll.Surface for one leaderboard connection: metrics
// reported by the client, offsets pushed back to it. SetScrollTop records
// the offset optimistically so the loop keeps moving between metric reports.
type wsSurface struct {
	mu           sync.Mutex
	top          float64
	scrollHeight float64
	clientHeight float64
	send         func(top float64)
}

func (s *wsSurface) update(top, scrollHeight, clientHeight float64) {
	s.mu.Lock()
	s.top = top
	s.scrollHeight = scrollHeight
	s.clientHeight = clientHeight
	s.mu.Unlock()
}

func (s *wsSurface) ScrollMetrics() (top, scrollHeight, clientHeight float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.top, s.scrollHeight, s.clientHeight
}

func (s *wsSurface) SetScrollTop(top float64) {
	s.mu.Lock()
	s.top = top
	send := s.send
	s.mu.Unlock()
	if send != nil {
		send(top)
	}
}
