package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/swaralaya/scoreboard/internal/domain/model"
	"github.com/swaralaya/scoreboard/internal/domain/standings"
	. "github.com/smartystreets/goconvey/convey"
)

// wsMessage mirrors the server push frames.
type wsMessage struct {
	Type string          `json:"type"`
	View json.RawMessage `json:"view"`
	Top  *float64        `json:"top"`
}

func dialWS(t *testing.T, httpURL, path string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(httpURL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", path, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// readUntil reads frames until match returns true or the deadline expires.
func readUntil(t *testing.T, conn *websocket.Conn, match func(wsMessage) bool) bool {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return false
		}
		if match(msg) {
			return true
		}
	}
}

func TestLeaderboardSocket(t *testing.T) {
	Convey("Given a leaderboard display connection", t, func() {
		ts, svc := newTestServer(t)
		conn := dialWS(t, ts.URL, "/ws/leaderboard")

		Convey("When the connection opens", func() {
			Convey("Then the current view should be pushed immediately", func() {
				So(readUntil(t, conn, func(m wsMessage) bool {
					return m.Type == "view"
				}), ShouldBeTrue)
			})
		})

		Convey("When content is ready and the client reports a scrollable viewport", func() {
			_, err := svc.PutRecord(context.Background(), model.ScoreRecord{
				House: "Ujjain", Item: "Quiz", Category: "I", Points: model.PointsOf(5),
			})
			So(err, ShouldBeNil)
			So(readUntil(t, conn, func(m wsMessage) bool {
				if m.Type != "view" {
					return false
				}
				var view standings.View
				return json.Unmarshal(m.View, &view) == nil && view.State == standings.StateReady
			}), ShouldBeTrue)

			So(conn.WriteJSON(map[string]any{
				"type": "metrics", "top": 0.0, "scroll_height": 1000.0, "client_height": 500.0,
			}), ShouldBeNil)

			Convey("Then scroll offsets should be steered back to the client", func() {
				So(readUntil(t, conn, func(m wsMessage) bool {
					return m.Type == "scroll_to" && m.Top != nil && *m.Top > 0
				}), ShouldBeTrue)
			})
		})

		Convey("When the service stops mid-connection", func() {
			So(readUntil(t, conn, func(m wsMessage) bool {
				return m.Type == "view"
			}), ShouldBeTrue)
			svc.Stop()

			Convey("Then the server should close the connection", func() {
				_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
				var err error
				for err == nil {
					_, _, err = conn.ReadMessage()
				}
				var nerr net.Error
				if errors.As(err, &nerr) {
					So(nerr.Timeout(), ShouldBeFalse)
				}
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When a record update lands mid-connection", func() {
			_, err := svc.PutRecord(context.Background(), model.ScoreRecord{
				House: "Nalanda", Item: "Chess", Category: "III", Points: model.PointsOf(10),
			})
			So(err, ShouldBeNil)

			Convey("Then a fresh view should be pushed", func() {
				So(readUntil(t, conn, func(m wsMessage) bool {
					if m.Type != "view" {
						return false
					}
					var view standings.View
					if json.Unmarshal(m.View, &view) != nil {
						return false
					}
					for _, h := range view.Standings.Houses {
						if h.House == "Nalanda" && h.TotalPoints == 10 {
							return true
						}
					}
					return false
				}), ShouldBeTrue)
			})
		})
	})
}

// slidesView is the subset of the events view frame the tests read.
type slidesView struct {
	State  standings.State `json:"state"`
	Index  int             `json:"index"`
	Slides []model.Slide   `json:"slides"`
}

func eventsView(m wsMessage) (slidesView, bool) {
	var view slidesView
	if m.Type != "view" {
		return view, false
	}
	if err := json.Unmarshal(m.View, &view); err != nil {
		return view, false
	}
	return view, true
}

func TestEventsSocket(t *testing.T) {
	Convey("Given an events display connection with slides", t, func() {
		ts, svc := newTestServer(t)
		ctx := context.Background()
		for _, name := range []string{"Chess", "Quiz", "Debate"} {
			_, err := svc.PutSlide(ctx, model.Slide{Name: name, Category: "I"})
			So(err, ShouldBeNil)
		}
		conn := dialWS(t, ts.URL, "/ws/events")

		Convey("When the connection opens", func() {
			Convey("Then the slide list should arrive", func() {
				So(readUntil(t, conn, func(m wsMessage) bool {
					view, ok := eventsView(m)
					return ok && view.State == standings.StateReady && len(view.Slides) == 3
				}), ShouldBeTrue)
			})
		})

		Convey("When the client navigates forward", func() {
			So(conn.WriteJSON(map[string]any{"type": "next"}), ShouldBeNil)

			Convey("Then the pushed view should carry the new index", func() {
				So(readUntil(t, conn, func(m wsMessage) bool {
					view, ok := eventsView(m)
					return ok && view.Index == 1
				}), ShouldBeTrue)
			})
		})

		Convey("When the client navigates back from the first slide", func() {
			So(conn.WriteJSON(map[string]any{"type": "prev"}), ShouldBeNil)

			Convey("Then the index should wrap to the last slide", func() {
				So(readUntil(t, conn, func(m wsMessage) bool {
					view, ok := eventsView(m)
					return ok && view.Index == 2
				}), ShouldBeTrue)
			})
		})

		Convey("When the client selects a slide directly", func() {
			So(conn.WriteJSON(map[string]any{"type": "select", "index": 1}), ShouldBeNil)

			Convey("Then the pushed view should land on it", func() {
				So(readUntil(t, conn, func(m wsMessage) bool {
					view, ok := eventsView(m)
					return ok && view.Index == 1
				}), ShouldBeTrue)
			})
		})
	})
}
