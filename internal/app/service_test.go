package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	service "github.com/swaralaya/scoreboard/internal/app"
	"github.com/swaralaya/scoreboard/internal/domain/model"
	"github.com/swaralaya/scoreboard/internal/domain/standings"
	. "github.com/smartystreets/goconvey/convey"
)

// eventually polls cond until it holds or the deadline passes. Feed delivery
// is asynchronous, so view assertions have to converge rather than expect
// immediate visibility.
func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func startedService(t *testing.T) *service.Service {
	t.Helper()
	svc := service.New()
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a started service with no data", t, func() {
		svc := startedService(t)

		Convey("Then both views should converge to empty", func() {
			So(eventually(func() bool {
				return svc.LeaderboardView().State == standings.StateEmpty
			}), ShouldBeTrue)
			So(eventually(func() bool {
				return svc.EventsView().State == standings.StateEmpty
			}), ShouldBeTrue)
		})

		Convey("And the empty leaderboard should still carry every house", func() {
			So(eventually(func() bool {
				return svc.LeaderboardView().State == standings.StateEmpty
			}), ShouldBeTrue)
			view := svc.LeaderboardView()
			So(view.Standings.Houses, ShouldHaveLength, 4)
		})

		Convey("When the service is started twice", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
		})
	})
}

func TestService_RecordFlow(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startedService(t)
		ctx := context.Background()

		Convey("When a score record is put", func() {
			rec, err := svc.PutRecord(ctx, model.ScoreRecord{
				House:    "Nalanda",
				Item:     "Chess",
				Category: "III",
				Points:   model.PointsOf(10),
			})

			Convey("Then an ID should be assigned", func() {
				So(err, ShouldBeNil)
				So(rec.ID, ShouldNotBeBlank)
			})

			Convey("And the leaderboard should rebuild to ready", func() {
				So(eventually(func() bool {
					v := svc.LeaderboardView()
					return v.State == standings.StateReady
				}), ShouldBeTrue)

				view := svc.LeaderboardView()
				So(view.Standings.Events, ShouldResemble, []string{"Chess"})
				for _, h := range view.Standings.Houses {
					if h.House == "Nalanda" {
						So(h.TotalPoints, ShouldEqual, 10)
					} else {
						So(h.TotalPoints, ShouldEqual, 0)
					}
				}
			})

			Convey("And deleting it should empty the leaderboard again", func() {
				So(eventually(func() bool {
					return svc.LeaderboardView().State == standings.StateReady
				}), ShouldBeTrue)
				So(svc.DeleteRecord(ctx, rec.ID), ShouldBeNil)
				So(eventually(func() bool {
					return svc.LeaderboardView().State == standings.StateEmpty
				}), ShouldBeTrue)
			})
		})

		Convey("When a record keeps its caller-provided ID", func() {
			rec, err := svc.PutRecord(ctx, model.ScoreRecord{
				ID:       "rec-1",
				House:    "Ujjain",
				Item:     "Quiz",
				Category: "I",
				Points:   model.PointsOf(5),
			})

			Convey("Then the ID should be unchanged", func() {
				So(err, ShouldBeNil)
				So(rec.ID, ShouldEqual, "rec-1")
			})
		})
	})
}

func TestService_EventsFlow(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startedService(t)
		ctx := context.Background()

		Convey("When slides are put", func() {
			_, err := svc.PutSlide(ctx, model.Slide{Name: "Chess", Category: "III"})
			So(err, ShouldBeNil)
			_, err = svc.PutSlide(ctx, model.Slide{Name: "Quiz", Category: "I", Completed: true, Winner: "Taxila"})
			So(err, ShouldBeNil)

			Convey("Then the events view should become ready with both slides", func() {
				So(eventually(func() bool {
					v := svc.EventsView()
					return v.State == standings.StateReady && len(v.Slides) == 2
				}), ShouldBeTrue)
			})

			Convey("And the carousel should start playing on the first slide", func() {
				So(eventually(func() bool {
					return svc.Carousel() != nil && len(svc.EventsView().Slides) == 2
				}), ShouldBeTrue)
				So(svc.EventsView().Index, ShouldEqual, 0)
			})
		})
	})
}

func TestService_FeedFailure(t *testing.T) {
	Convey("Given a started service with data", t, func() {
		svc := startedService(t)
		ctx := context.Background()
		_, err := svc.PutRecord(ctx, model.ScoreRecord{
			House: "Taxila", Item: "Debate", Category: "IV", Points: model.PointsOf(8),
		})
		So(err, ShouldBeNil)
		So(eventually(func() bool {
			return svc.LeaderboardView().State == standings.StateReady
		}), ShouldBeTrue)

		Convey("When the leaderboard feed fails", func() {
			svc.Fail("leaderboard", errors.New("listener detached"))

			Convey("Then the view should flip to unavailable with a reason", func() {
				So(eventually(func() bool {
					return svc.LeaderboardView().State == standings.StateUnavailable
				}), ShouldBeTrue)
				So(svc.LeaderboardView().Reason, ShouldNotBeBlank)
			})

			Convey("And the next mutation should recover it", func() {
				So(eventually(func() bool {
					return svc.LeaderboardView().State == standings.StateUnavailable
				}), ShouldBeTrue)
				_, err := svc.PutRecord(ctx, model.ScoreRecord{
					House: "Ujjain", Item: "Quiz", Category: "I", Points: model.PointsOf(5),
				})
				So(err, ShouldBeNil)
				So(eventually(func() bool {
					v := svc.LeaderboardView()
					return v.State == standings.StateReady && v.Reason == ""
				}), ShouldBeTrue)
			})
		})
	})
}

func TestService_Watchers(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startedService(t)
		ctx := context.Background()

		Convey("When a leaderboard watcher registers", func() {
			ch, stop := svc.WatchLeaderboard()
			defer stop()

			Convey("Then it should receive the current view immediately", func() {
				select {
				case view := <-ch:
					So(view.State, ShouldNotBeEmpty)
				case <-time.After(time.Second):
					So("timed out waiting for initial view", ShouldBeEmpty)
				}
			})

			Convey("And it should receive subsequent updates", func() {
				<-ch // initial view
				_, err := svc.PutRecord(ctx, model.ScoreRecord{
					House: "Nalanda", Item: "Chess", Category: "III", Points: model.PointsOf(10),
				})
				So(err, ShouldBeNil)

				So(eventually(func() bool {
					select {
					case view, ok := <-ch:
						return ok && view.State == standings.StateReady
					default:
						return false
					}
				}), ShouldBeTrue)
			})
		})

		Convey("When a watcher never drains its initial view", func() {
			ch, stop := svc.WatchLeaderboard()
			defer stop()

			_, err := svc.PutRecord(ctx, model.ScoreRecord{
				House: "Nalanda", Item: "Chess", Category: "III", Points: model.PointsOf(10),
			})
			So(err, ShouldBeNil)

			Convey("Then the pending view should coalesce to the latest", func() {
				So(eventually(func() bool {
					select {
					case view := <-ch:
						return view.State == standings.StateReady
					default:
						return false
					}
				}), ShouldBeTrue)
			})
		})

		Convey("When watchers register while updates broadcast concurrently", func() {
			stopChurn := make(chan struct{})
			churnDone := make(chan struct{})
			go func() {
				defer close(churnDone)
				for {
					select {
					case <-stopChurn:
						return
					default:
					}
					_, _ = svc.PutRecord(ctx, model.ScoreRecord{
						House: "Ujjain", Item: "Quiz", Category: "I", Points: model.PointsOf(1),
					})
				}
			}()
			defer func() {
				close(stopChurn)
				<-churnDone
			}()

			Convey("Then registration should deliver a first view without stalling", func() {
				for i := 0; i < 8; i++ {
					ch, stop := svc.WatchLeaderboard()
					select {
					case view := <-ch:
						So(view.State, ShouldNotBeEmpty)
					case <-time.After(time.Second):
						So("timed out waiting for the initial view", ShouldBeEmpty)
					}
					stop()
				}
			})
		})

		Convey("When an events watcher registers and a slide arrives", func() {
			ch, stop := svc.WatchEvents()
			defer stop()
			<-ch // initial view

			_, err := svc.PutSlide(ctx, model.Slide{Name: "Folk Dance", Category: "C"})
			So(err, ShouldBeNil)

			Convey("Then the watcher should see the ready view", func() {
				So(eventually(func() bool {
					select {
					case view, ok := <-ch:
						return ok && view.State == standings.StateReady && len(view.Slides) == 1
					default:
						return false
					}
				}), ShouldBeTrue)
			})
		})

		Convey("When the service stops", func() {
			ch, stop := svc.WatchLeaderboard()
			defer stop()
			<-ch
			svc.Stop()

			Convey("Then watcher channels should be closed", func() {
				So(eventually(func() bool {
					select {
					case _, ok := <-ch:
						return !ok
					default:
						return false
					}
				}), ShouldBeTrue)
			})
		})
	})
}

func TestService_GetStats(t *testing.T) {
	Convey("Given a started service with a record", t, func() {
		svc := startedService(t)
		_, err := svc.PutRecord(context.Background(), model.ScoreRecord{
			House: "Ujjain", Item: "Quiz", Category: "I", Points: model.PointsOf(5),
		})
		So(err, ShouldBeNil)

		Convey("When stats are read", func() {
			stats := svc.GetStats()

			Convey("Then they should report the document counts", func() {
				So(stats["started"], ShouldBeTrue)
				So(stats["records"], ShouldEqual, 1)
				So(stats["slides"], ShouldEqual, 0)
			})
		})
	})
}
