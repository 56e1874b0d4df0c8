// Package feed implements the live record feed: named collections whose full
// snapshots are pushed to subscribers on every change.
//
// Subscribers receive complete snapshots, never deltas. A slow subscriber is
// coalesced to the latest snapshot; the contract only requires converging to
// the latest state, not observing every intermediate one.
package feed

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/swaralaya/scoreboard/pkg/logger"
	"github.com/swaralaya/scoreboard/pkg/metrics"
)

// SnapshotFunc receives a complete collection snapshot.
type SnapshotFunc func(docs []json.RawMessage)

// ErrorFunc receives a feed transport error. After an error the subscriber
// should treat its derived state as unavailable until the next snapshot.
type ErrorFunc func(err error)

// Unsubscribe cancels a subscription. It blocks until any in-flight callback
// returns; no callback fires after it returns.
type Unsubscribe func()

// delivery is the unit handed to a subscriber: either a snapshot or an error.
type delivery struct {
	docs []json.RawMessage
	err  error
}

// subscription is one subscriber's coalescing mailbox plus its dispatch
// goroutine state.
type subscription struct {
	onSnapshot SnapshotFunc
	onError    ErrorFunc

	// mu guards the mailbox; cbMu is held for the duration of a callback so
	// Unsubscribe can wait out an in-flight delivery without publishers
	// blocking on it.
	mu      sync.Mutex
	cbMu    sync.Mutex
	pending *delivery
	closed  bool

	wake chan struct{}
	done chan struct{}
}

// Hub fans collection snapshots out to subscribers. Each subscriber gets its
// own dispatch goroutine so one stalled callback cannot block publishers or
// other subscribers.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[int64]*subscription
	latest map[string]delivery
	nextID int64
	log    logger.Logger
}

// Option applies a configuration option to the Hub.
type Option func(*Hub)

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(h *Hub) {
		if log != nil {
			h.log = log
		}
	}
}

// NewHub creates an empty feed hub.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		subs:   make(map[string]map[int64]*subscription),
		latest: make(map[string]delivery),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.log == nil {
		h.log = logger.Get().Named("feed")
	}
	return h
}

// Subscribe registers callbacks for a collection and returns the unsubscribe
// handle. If the collection already has a known state (snapshot or error),
// it is delivered immediately so late subscribers converge without waiting
// for the next mutation. Cancelling ctx is equivalent to unsubscribing.
func (h *Hub) Subscribe(ctx context.Context, collection string, onSnapshot SnapshotFunc, onError ErrorFunc) Unsubscribe {
	sub := &subscription{
		onSnapshot: onSnapshot,
		onError:    onError,
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
	}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	if h.subs[collection] == nil {
		h.subs[collection] = make(map[int64]*subscription)
	}
	h.subs[collection][id] = sub
	if last, ok := h.latest[collection]; ok {
		sub.offer(last)
	}
	count := len(h.subs[collection])
	h.mu.Unlock()
	metrics.UpdateFeedSubscribers(collection, count)

	go sub.dispatch(ctx)

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[collection], id)
			remaining := len(h.subs[collection])
			h.mu.Unlock()
			metrics.UpdateFeedSubscribers(collection, remaining)

			sub.mu.Lock()
			sub.closed = true
			sub.pending = nil
			sub.mu.Unlock()

			// Wait out any in-flight callback; none fires after this.
			sub.cbMu.Lock()
			sub.cbMu.Unlock() //nolint:staticcheck // empty critical section is the barrier
			close(sub.done)
		})
	}
}

// Publish delivers a new full snapshot of a collection to all subscribers
// and clears any previous error state.
func (h *Hub) Publish(collection string, docs []json.RawMessage) {
	h.fanout(collection, delivery{docs: docs})
}

// Fail reports a transport error on a collection. Subscribers get their
// onError callback once; the error state is replayed to new subscribers
// until the next Publish.
func (h *Hub) Fail(collection string, err error) {
	metrics.RecordFeedError(collection)
	h.log.Warn(context.Background(), "feed error",
		logger.String("collection", collection),
		logger.Error(err),
	)
	h.fanout(collection, delivery{err: WrapUnavailable(collection, err)})
}

func (h *Hub) fanout(collection string, d delivery) {
	h.mu.Lock()
	h.latest[collection] = d
	targets := make([]*subscription, 0, len(h.subs[collection]))
	for _, sub := range h.subs[collection] {
		targets = append(targets, sub)
	}
	h.mu.Unlock()

	for _, sub := range targets {
		sub.offer(d)
	}
}

// offer places a delivery in the mailbox, replacing any undelivered one.
func (s *subscription) offer(d delivery) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.pending != nil {
		metrics.RecordSnapshotCoalesced()
	}
	s.pending = &d
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// dispatch runs the subscriber's callback loop until unsubscribed or ctx is
// cancelled.
func (s *subscription) dispatch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-s.wake:
		}

		s.mu.Lock()
		if s.closed || s.pending == nil {
			s.mu.Unlock()
			continue
		}
		d := *s.pending
		s.pending = nil
		s.mu.Unlock()

		s.cbMu.Lock()
		s.mu.Lock()
		closed := s.closed
		s.mu.Unlock()
		if !closed {
			if d.err != nil {
				if s.onError != nil {
					s.onError(d.err)
				}
			} else if s.onSnapshot != nil {
				s.onSnapshot(d.docs)
			}
		}
		s.cbMu.Unlock()
	}
}
