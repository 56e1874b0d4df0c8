// Package scroll drives the leaderboard's continuous, reversible auto-scroll
// over a bounded viewport.
package scroll

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/swaralaya/scoreboard/pkg/metrics"
)

// Surface is the rendering surface the loop steers. Implementations expose
// the viewport's current scroll metrics and accept a new scroll offset.
type Surface interface {
	// ScrollMetrics returns the current scroll offset, the total content
	// height and the viewport height, in pixels.
	ScrollMetrics() (top, scrollHeight, clientHeight float64)

	// SetScrollTop moves the viewport to the given offset.
	SetScrollTop(top float64)
}

// State of the auto-scroll loop.
type State string

const (
	// StateIdle means no content is being scrolled; no frames are consumed.
	StateIdle State = "idle"
	// StateScrollingDown and StateScrollingUp are the two active directions.
	StateScrollingDown State = "scrolling_down"
	StateScrollingUp   State = "scrolling_up"
	// StatePaused is the pointer-hover override. Direction and stall
	// counters are preserved for resumption.
	StatePaused State = "paused"
)

// Default tuning values. Speed is ~30 px/second at 60 FPS.
const (
	defaultSpeed          = 0.5
	defaultTolerance      = 5.0
	defaultStallThreshold = 60
	defaultFrameRate      = 60

	// stallEpsilon is the movement below which a frame counts as stalled.
	stallEpsilon = 0.1
)

// Loop is the auto-scroll state machine. All mutation happens inside Tick or
// the explicit transition methods; the zero direction is down.
type Loop struct {
	mu sync.Mutex

	surface        Surface
	speed          float64
	tolerance      float64
	stallThreshold int
	frameInterval  time.Duration

	state   State
	resumed State // direction to restore on pointer leave
	lastTop float64
	stalls  int
}

// Option applies a configuration option to the Loop.
type Option func(*Loop)

// WithSpeed sets the per-frame scroll increment in pixels.
func WithSpeed(speed float64) Option {
	return func(l *Loop) {
		if speed > 0 {
			l.speed = speed
		}
	}
}

// WithTolerance sets the bound-detection tolerance in pixels. Exact bounds
// are unreliable across rendering surfaces due to layout rounding.
func WithTolerance(tol float64) Option {
	return func(l *Loop) {
		if tol > 0 {
			l.tolerance = tol
		}
	}
}

// WithStallThreshold sets how many consecutive stalled frames force a
// direction reversal.
func WithStallThreshold(frames int) Option {
	return func(l *Loop) {
		if frames > 0 {
			l.stallThreshold = frames
		}
	}
}

// WithFrameRate sets the tick rate used by Run.
func WithFrameRate(fps int) Option {
	return func(l *Loop) {
		if fps > 0 {
			l.frameInterval = time.Second / time.Duration(fps)
		}
	}
}

// New creates an idle loop over the given surface.
func New(surface Surface, opts ...Option) *Loop {
	l := &Loop{
		surface:        surface,
		speed:          defaultSpeed,
		tolerance:      defaultTolerance,
		stallThreshold: defaultStallThreshold,
		frameInterval:  time.Second / defaultFrameRate,
		state:          StateIdle,
		resumed:        StateScrollingDown,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start begins scrolling downward. Starting an already active loop is a
// no-op; a paused loop stays paused (the pointer is still over it).
func (l *Loop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateIdle {
		l.state = StateScrollingDown
		l.stalls = 0
	}
}

// Stop disables the loop entirely, e.g. when the view has no content or the
// feed is unavailable.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = StateIdle
	l.resumed = StateScrollingDown
	l.stalls = 0
}

// PointerEnter pauses scrolling without resetting direction or counters.
func (l *Loop) PointerEnter() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateScrollingDown || l.state == StateScrollingUp {
		l.resumed = l.state
		l.state = StatePaused
	}
}

// PointerLeave resumes scrolling in the direction active before the pause.
func (l *Loop) PointerLeave() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StatePaused {
		l.state = l.resumed
	}
}

// State returns the current state.
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Tick evaluates one animation frame: advance, reverse at bounds, and escape
// stalled positions. Idle and paused loops consume no frame work.
func (l *Loop) Tick() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != StateScrollingDown && l.state != StateScrollingUp {
		return
	}

	top, scrollHeight, clientHeight := l.surface.ScrollMetrics()
	maxTop := scrollHeight - clientHeight
	if maxTop < 0 {
		maxTop = 0
	}

	// Content that fits inside the viewport (or metrics not yet reported)
	// has nothing to scroll; both bounds would trigger at once.
	if maxTop <= l.tolerance {
		return
	}

	// Stall tracking guards against layout rounding that keeps the offset
	// from ever reaching the exact bound.
	if math.Abs(top-l.lastTop) < stallEpsilon {
		l.stalls++
	} else {
		l.stalls = 0
	}
	l.lastTop = top

	atBottom := top+clientHeight >= scrollHeight-l.tolerance
	atTop := top <= l.tolerance

	switch l.state {
	case StateScrollingDown:
		if atBottom {
			l.reverse(StateScrollingUp, "bound")
		} else if l.stalls > l.stallThreshold {
			l.reverse(StateScrollingUp, "stall")
		}
	case StateScrollingUp:
		if atTop {
			l.reverse(StateScrollingDown, "bound")
		} else if l.stalls > l.stallThreshold {
			l.reverse(StateScrollingDown, "stall")
		}
	case StateIdle, StatePaused:
	}

	next := top + l.speed
	if l.state == StateScrollingUp {
		next = top - l.speed
	}
	next = math.Max(0, math.Min(maxTop, next))
	l.surface.SetScrollTop(next)
}

func (l *Loop) reverse(to State, cause string) {
	l.state = to
	l.stalls = 0
	metrics.RecordScrollReversal(cause)
}

// Run ticks the loop at the configured frame rate until ctx is cancelled.
// Cancellation is the teardown guarantee: no frame fires after Run returns.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.frameInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Tick()
		}
	}
}
