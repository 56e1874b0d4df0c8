// Package carousel cycles the events display through its slides on a fixed
// timer, with manual navigation and hover-pause.
package carousel

import (
	"context"
	"sync"
	"time"

	"github.com/swaralaya/scoreboard/pkg/metrics"
)

// Surface is notified whenever the current slide changes so it can bring
// that slide into view. This is an output of the component, not state.
type Surface interface {
	ScrollIntoView(index int)
}

// State of the carousel.
type State string

const (
	// StateIdle means there are no slides; the timer does nothing.
	StateIdle State = "idle"
	// StatePlaying auto-advances on every timer interval.
	StatePlaying State = "playing"
	// StatePaused holds the current slide: pointer hover, or manual
	// navigation which deliberately stops auto-play until the next
	// pointer leave or explicit Play.
	StatePaused State = "paused"
)

const defaultInterval = 5 * time.Second

// Carousel owns the slide cursor. The slide list itself lives in the events
// view; the carousel only tracks the count and the current index, wrapping
// the index whenever the count shrinks underneath it.
type Carousel struct {
	mu sync.Mutex

	surface  Surface
	interval time.Duration

	state State
	index int
	count int

	reset chan struct{}
}

// Option applies a configuration option to the Carousel.
type Option func(*Carousel)

// WithInterval sets the auto-advance interval.
func WithInterval(d time.Duration) Option {
	return func(c *Carousel) {
		if d > 0 {
			c.interval = d
		}
	}
}

// New creates an idle carousel on the given surface.
func New(surface Surface, opts ...Option) *Carousel {
	c := &Carousel{
		surface:  surface,
		interval: defaultInterval,
		state:    StateIdle,
		reset:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetSlideCount updates the slide count from a new snapshot. A count of zero
// disables the carousel; a shrinking count wraps an out-of-range index back
// to the first slide; gaining the first slides starts auto-play.
func (c *Carousel) SetSlideCount(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.count = n
	switch {
	case n == 0:
		c.state = StateIdle
		c.index = 0
	case c.state == StateIdle:
		c.state = StatePlaying
		c.index = 0
		c.notifyLocked()
	case c.index >= n:
		c.index = 0
		c.notifyLocked()
	}
}

// Advance is one auto-play timer firing: move to the next slide, wrapping
// past the last one. Paused and idle carousels ignore it.
func (c *Carousel) Advance() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StatePlaying || c.count == 0 {
		return
	}
	c.index = (c.index + 1) % c.count
	metrics.RecordCarouselAdvance("auto")
	c.notifyLocked()
}

// Next moves forward one slide and stops auto-play.
func (c *Carousel) Next() {
	c.manual(1)
}

// Prev moves back one slide (wrapping to the last) and stops auto-play.
func (c *Carousel) Prev() {
	c.manual(-1)
}

// Select jumps to a specific slide and stops auto-play. Out-of-range
// indexes are ignored.
func (c *Carousel) Select(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.count == 0 || index < 0 || index >= c.count {
		return
	}
	c.state = StatePaused
	if index != c.index {
		c.index = index
		metrics.RecordCarouselAdvance("manual")
		c.notifyLocked()
	}
}

func (c *Carousel) manual(delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.count == 0 {
		return
	}
	c.state = StatePaused
	c.index = (c.index + delta + c.count) % c.count
	metrics.RecordCarouselAdvance("manual")
	c.notifyLocked()
}

// PointerEnter pauses auto-play while the pointer hovers the carousel.
func (c *Carousel) PointerEnter() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StatePlaying {
		c.state = StatePaused
	}
}

// PointerLeave resumes auto-play and restarts the interval from now. This is
// also what re-enables auto-play after manual navigation.
func (c *Carousel) PointerLeave() {
	c.Play()
}

// Play explicitly (re-)enables auto-play, restarting the interval.
func (c *Carousel) Play() {
	c.mu.Lock()
	if c.count > 0 && c.state != StatePlaying {
		c.state = StatePlaying
	}
	c.mu.Unlock()

	select {
	case c.reset <- struct{}{}:
	default:
	}
}

// Index returns the current slide index.
func (c *Carousel) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// State returns the current state.
func (c *Carousel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Run drives auto-advance until ctx is cancelled. No timer fires after Run
// returns; that is the teardown guarantee for the component.
func (c *Carousel) Run(ctx context.Context) {
	timer := time.NewTimer(c.interval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.reset:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(c.interval)
		case <-timer.C:
			c.Advance()
			timer.Reset(c.interval)
		}
	}
}

// notifyLocked tells the surface to bring the current slide into view.
func (c *Carousel) notifyLocked() {
	if c.surface != nil {
		c.surface.ScrollIntoView(c.index)
	}
}
