package carousel_test

import (
	"testing"

	"github.com/swaralaya/scoreboard/internal/view/carousel"
	. "github.com/smartystreets/goconvey/convey"
)

// recordingSurface captures every scroll-into-view notification.
type recordingSurface struct {
	indexes []int
}

func (r *recordingSurface) ScrollIntoView(index int) {
	r.indexes = append(r.indexes, index)
}

func TestCarousel_SlideCount(t *testing.T) {
	Convey("Given an idle carousel", t, func() {
		surface := &recordingSurface{}
		c := carousel.New(surface)

		Convey("When there are no slides", func() {
			c.Advance()
			c.Next()

			Convey("Then nothing should move and no notification fires", func() {
				So(c.State(), ShouldEqual, carousel.StateIdle)
				So(c.Index(), ShouldEqual, 0)
				So(surface.indexes, ShouldBeEmpty)
			})
		})

		Convey("When the first slides arrive", func() {
			c.SetSlideCount(3)

			Convey("Then auto-play should start on slide zero", func() {
				So(c.State(), ShouldEqual, carousel.StatePlaying)
				So(c.Index(), ShouldEqual, 0)
				So(surface.indexes, ShouldResemble, []int{0})
			})
		})

		Convey("When the slide count shrinks below the current index", func() {
			c.SetSlideCount(5)
			c.Select(4)
			c.SetSlideCount(3)

			Convey("Then the index should wrap back to the first slide", func() {
				So(c.Index(), ShouldEqual, 0)
			})
		})

		Convey("When the slide count shrinks but the index remains in range", func() {
			c.SetSlideCount(5)
			c.Select(1)
			c.SetSlideCount(3)

			Convey("Then the index should be preserved", func() {
				So(c.Index(), ShouldEqual, 1)
			})
		})

		Convey("When all slides are removed", func() {
			c.SetSlideCount(3)
			c.SetSlideCount(0)
			c.Advance()

			Convey("Then the carousel should go idle at index zero", func() {
				So(c.State(), ShouldEqual, carousel.StateIdle)
				So(c.Index(), ShouldEqual, 0)
			})
		})
	})
}

func TestCarousel_AutoAdvance(t *testing.T) {
	Convey("Given a playing carousel with three slides", t, func() {
		surface := &recordingSurface{}
		c := carousel.New(surface)
		c.SetSlideCount(3)

		Convey("When the timer fires repeatedly", func() {
			c.Advance()
			c.Advance()
			c.Advance()

			Convey("Then the index should cycle 0 -> 1 -> 2 -> 0", func() {
				So(surface.indexes, ShouldResemble, []int{0, 1, 2, 0})
				So(c.Index(), ShouldEqual, 0)
			})
		})

		Convey("When the carousel is paused", func() {
			c.PointerEnter()
			c.Advance()

			Convey("Then timer firings should be ignored", func() {
				So(c.State(), ShouldEqual, carousel.StatePaused)
				So(c.Index(), ShouldEqual, 0)
			})
		})
	})
}

func TestCarousel_ManualNavigation(t *testing.T) {
	Convey("Given a playing carousel with three slides", t, func() {
		surface := &recordingSurface{}
		c := carousel.New(surface)
		c.SetSlideCount(3)

		Convey("When Next is pressed", func() {
			c.Next()

			Convey("Then the index should advance and auto-play should stop", func() {
				So(c.Index(), ShouldEqual, 1)
				So(c.State(), ShouldEqual, carousel.StatePaused)
			})

			Convey("And timer firings should no longer move it", func() {
				c.Advance()
				So(c.Index(), ShouldEqual, 1)
			})
		})

		Convey("When Prev is pressed on the first slide", func() {
			c.Prev()

			Convey("Then the index should wrap to the last slide", func() {
				So(c.Index(), ShouldEqual, 2)
			})
		})

		Convey("When Next is pressed on the last slide", func() {
			c.Select(2)
			c.Next()

			Convey("Then the index should wrap to the first slide", func() {
				So(c.Index(), ShouldEqual, 0)
			})
		})

		Convey("When a specific slide is selected", func() {
			c.Select(2)

			Convey("Then the cursor should jump there and pause", func() {
				So(c.Index(), ShouldEqual, 2)
				So(c.State(), ShouldEqual, carousel.StatePaused)
			})
		})

		Convey("When an out-of-range slide is selected", func() {
			c.Select(7)
			c.Select(-1)

			Convey("Then the selection should be ignored", func() {
				So(c.Index(), ShouldEqual, 0)
				So(c.State(), ShouldEqual, carousel.StatePlaying)
			})
		})
	})
}

func TestCarousel_PointerAndPlay(t *testing.T) {
	Convey("Given a playing carousel with three slides", t, func() {
		surface := &recordingSurface{}
		c := carousel.New(surface)
		c.SetSlideCount(3)

		Convey("When the pointer enters and leaves", func() {
			c.PointerEnter()
			So(c.State(), ShouldEqual, carousel.StatePaused)
			c.PointerLeave()

			Convey("Then auto-play should resume", func() {
				So(c.State(), ShouldEqual, carousel.StatePlaying)
			})
		})

		Convey("When manual navigation paused the carousel", func() {
			c.Next()
			So(c.State(), ShouldEqual, carousel.StatePaused)

			Convey("Then a pointer leave should re-enable auto-play", func() {
				c.PointerLeave()
				So(c.State(), ShouldEqual, carousel.StatePlaying)
			})

			Convey("And an explicit Play should re-enable auto-play", func() {
				c.Play()
				So(c.State(), ShouldEqual, carousel.StatePlaying)
			})
		})

		Convey("When Play is called with no slides", func() {
			c.SetSlideCount(0)
			c.Play()

			Convey("Then the carousel should stay idle", func() {
				So(c.State(), ShouldEqual, carousel.StateIdle)
			})
		})
	})
}
