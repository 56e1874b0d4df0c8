// Package service wires the document store, the live feed and the two view
// models together, and implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/swaralaya/scoreboard/internal/adapters/feed"
	"github.com/swaralaya/scoreboard/internal/adapters/repository"
	"github.com/swaralaya/scoreboard/internal/domain/model"
	"github.com/swaralaya/scoreboard/internal/domain/standings"
	"github.com/swaralaya/scoreboard/internal/view/carousel"
	"github.com/swaralaya/scoreboard/pkg/logger"
	"github.com/swaralaya/scoreboard/pkg/metrics"
)

// Service owns the store, the feed hub, the aggregator and the carousel
// cursor, and exposes the derived views to the HTTP layer.
type Service struct {
	mu sync.RWMutex

	// Configuration
	houses            []string
	categories        []string
	recordsCollection string
	eventsCollection  string
	carouselInterval  time.Duration

	// Core components
	store    *repository.MemoryStore
	hub      *feed.Hub
	agg      *standings.Aggregator
	carousel *carousel.Carousel

	// Derived views
	leaderboardView standings.View
	eventsView      EventsView

	// Watchers receive coalesced view updates (WebSocket push).
	lbWatchers  map[int64]chan standings.View
	evWatchers  map[int64]chan EventsView
	nextWatchID int64

	// Lifecycle
	started      bool
	cancel       context.CancelFunc
	unsubscribes []feed.Unsubscribe

	log logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithHouses sets the fixed, ordered house set.
func WithHouses(houses []string) Option {
	return func(s *Service) {
		if len(houses) > 0 {
			s.houses = houses
		}
	}
}

// WithCategories sets the fixed, ordered category set.
func WithCategories(categories []string) Option {
	return func(s *Service) {
		if len(categories) > 0 {
			s.categories = categories
		}
	}
}

// WithCollections names the two feed collections.
func WithCollections(records, events string) Option {
	return func(s *Service) {
		if records != "" {
			s.recordsCollection = records
		}
		if events != "" {
			s.eventsCollection = events
		}
	}
}

// WithCarouselInterval sets the carousel auto-advance interval.
func WithCarouselInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.carouselInterval = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		houses:            []string{"Ujjain", "Nalanda", "Taxila", "Vikramshila"},
		categories:        []string{"I", "II", "III", "IV", "V", "C"},
		recordsCollection: "leaderboard",
		eventsCollection:  "events",
		carouselInterval:  5 * time.Second,
		lbWatchers:        make(map[int64]chan standings.View),
		evWatchers:        make(map[int64]chan EventsView),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the components and subscribes both view models to their
// feeds. Until the first snapshot lands the views report loading.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	if s.log == nil {
		s.log = logger.Get().Named("service")
	}

	s.hub = feed.NewHub(feed.WithLogger(s.log.Named("feed")))
	s.store = repository.NewMemoryStore(repository.WithOnChange(s.hub.Publish))
	s.agg = standings.New(s.houses, s.categories,
		standings.WithLogger(s.log.Named("standings")))
	s.carousel = carousel.New(carouselSurface{s}, carousel.WithInterval(s.carouselInterval))

	s.leaderboardView = standings.View{
		State:     standings.StateLoading,
		Standings: s.agg.Build(ctx, nil),
	}
	s.eventsView = EventsView{State: standings.StateLoading}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.unsubscribes = []feed.Unsubscribe{
		s.hub.Subscribe(runCtx, s.recordsCollection, s.applyRecordsSnapshot, s.failLeaderboard),
		s.hub.Subscribe(runCtx, s.eventsCollection, s.applyEventsSnapshot, s.failEvents),
	}

	go s.carousel.Run(runCtx)

	s.started = true
	s.mu.Unlock()

	// Prime both feeds so subscribers see the (empty) current state rather
	// than loading forever on a fresh store.
	s.hub.Publish(s.recordsCollection, s.store.List(ctx, s.recordsCollection))
	s.hub.Publish(s.eventsCollection, s.store.List(ctx, s.eventsCollection))

	s.log.Info(ctx, "scoreboard service started",
		logger.Int("houses", len(s.houses)),
		logger.Int("categories", len(s.categories)),
	)
	return nil
}

// Stop tears the service down: feed subscriptions are cancelled so no
// aggregation callback fires afterwards, the carousel timer stops, and every
// watcher channel is closed.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	cancel := s.cancel
	unsubs := s.unsubscribes
	s.unsubscribes = nil
	s.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
	if cancel != nil {
		cancel()
	}

	s.mu.Lock()
	for id, ch := range s.lbWatchers {
		close(ch)
		delete(s.lbWatchers, id)
	}
	for id, ch := range s.evWatchers {
		close(ch)
		delete(s.evWatchers, id)
	}
	s.mu.Unlock()

	s.log.Info(context.Background(), "scoreboard service stopped")
}

// applyRecordsSnapshot rebuilds the standings view from a full snapshot.
func (s *Service) applyRecordsSnapshot(docs []json.RawMessage) {
	ctx := context.Background()
	records := make([]model.ScoreRecord, 0, len(docs))
	for _, doc := range docs {
		var rec model.ScoreRecord
		if err := json.Unmarshal(doc, &rec); err != nil {
			// One malformed document never aborts the pass.
			s.log.Warn(ctx, "skipping malformed score record", logger.Error(err))
			continue
		}
		records = append(records, rec)
	}

	view := standings.View{
		State:     standings.StateReady,
		Standings: s.agg.Build(ctx, records),
	}
	if len(records) == 0 {
		view.State = standings.StateEmpty
	}
	metrics.RecordSnapshotApplied(s.recordsCollection)

	s.mu.Lock()
	s.leaderboardView = view
	s.mu.Unlock()
	s.broadcastLeaderboard(view)
}

// applyEventsSnapshot replaces the slide list and reconciles the carousel
// cursor with the new count.
func (s *Service) applyEventsSnapshot(docs []json.RawMessage) {
	ctx := context.Background()
	slides := make([]model.Slide, 0, len(docs))
	for _, doc := range docs {
		var slide model.Slide
		if err := json.Unmarshal(doc, &slide); err != nil {
			s.log.Warn(ctx, "skipping malformed event slide", logger.Error(err))
			continue
		}
		slides = append(slides, slide)
	}

	s.carousel.SetSlideCount(len(slides))

	view := EventsView{
		State:  standings.StateReady,
		Slides: slides,
		Index:  s.carousel.Index(),
	}
	if len(slides) == 0 {
		view.State = standings.StateEmpty
	}
	metrics.RecordSnapshotApplied(s.eventsCollection)

	s.mu.Lock()
	s.eventsView = view
	s.mu.Unlock()
	s.broadcastEvents(view)
}

// failLeaderboard flips the standings view to unavailable. Previously
// derived data is kept but must no longer be rendered as current.
func (s *Service) failLeaderboard(err error) {
	s.mu.Lock()
	s.leaderboardView.State = standings.StateUnavailable
	s.leaderboardView.Reason = err.Error()
	view := s.leaderboardView
	s.mu.Unlock()
	s.broadcastLeaderboard(view)
}

func (s *Service) failEvents(err error) {
	s.mu.Lock()
	s.eventsView.State = standings.StateUnavailable
	s.eventsView.Reason = err.Error()
	view := s.eventsView
	s.mu.Unlock()
	s.broadcastEvents(view)
}

// LeaderboardView returns the current standings view.
func (s *Service) LeaderboardView() standings.View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.leaderboardView
}

// EventsView returns the current events view with the live carousel index.
// The carousel lock is never taken while holding the service lock; the
// carousel's surface callback acquires them in the opposite order.
func (s *Service) EventsView() EventsView {
	index := 0
	if s.carousel != nil {
		index = s.carousel.Index()
	}
	s.mu.RLock()
	view := s.eventsView
	s.mu.RUnlock()
	view.Index = index
	return view
}

// Carousel exposes the shared carousel cursor to the transport layer.
func (s *Service) Carousel() *carousel.Carousel {
	return s.carousel
}

// Fail reports a transport error on a collection's feed. The affected view
// flips to unavailable until the next snapshot.
func (s *Service) Fail(collection string, err error) {
	s.hub.Fail(collection, err)
}

// PutRecord upserts a score record document, assigning an ID when absent.
// The mutation publishes a fresh snapshot to the leaderboard feed.
func (s *Service) PutRecord(ctx context.Context, rec model.ScoreRecord) (model.ScoreRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	doc, err := json.Marshal(rec)
	if err != nil {
		return model.ScoreRecord{}, err
	}
	if err := s.store.Put(ctx, s.recordsCollection, rec.ID, doc); err != nil {
		return model.ScoreRecord{}, err
	}
	return rec, nil
}

// DeleteRecord removes a score record document.
func (s *Service) DeleteRecord(ctx context.Context, id string) error {
	return s.store.Delete(ctx, s.recordsCollection, id)
}

// PutSlide upserts an event slide document.
func (s *Service) PutSlide(ctx context.Context, slide model.Slide) (model.Slide, error) {
	if slide.ID == "" {
		slide.ID = uuid.NewString()
	}
	doc, err := json.Marshal(slide)
	if err != nil {
		return model.Slide{}, err
	}
	if err := s.store.Put(ctx, s.eventsCollection, slide.ID, doc); err != nil {
		return model.Slide{}, err
	}
	return slide, nil
}

// DeleteSlide removes an event slide document.
func (s *Service) DeleteSlide(ctx context.Context, id string) error {
	return s.store.Delete(ctx, s.eventsCollection, id)
}

// WatchLeaderboard registers a watcher for standings view updates. The
// channel is buffered and coalesced: a slow reader only ever misses
// intermediate views, never the latest. The returned func unregisters.
func (s *Service) WatchLeaderboard() (<-chan standings.View, func()) {
	ch := make(chan standings.View, 1)

	s.mu.Lock()
	id := s.nextWatchID
	s.nextWatchID++
	s.lbWatchers[id] = ch
	// The buffer is empty and broadcasts contend on the same lock, so
	// this send cannot block and no newer view can land before it.
	ch <- s.leaderboardView
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		if c, ok := s.lbWatchers[id]; ok {
			delete(s.lbWatchers, id)
			close(c)
		}
		s.mu.Unlock()
	}
}

// WatchEvents registers a watcher for events view updates.
func (s *Service) WatchEvents() (<-chan EventsView, func()) {
	ch := make(chan EventsView, 1)

	index := 0
	if s.carousel != nil {
		index = s.carousel.Index()
	}
	s.mu.Lock()
	id := s.nextWatchID
	s.nextWatchID++
	s.evWatchers[id] = ch
	view := s.eventsView
	view.Index = index
	ch <- view
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		if c, ok := s.evWatchers[id]; ok {
			delete(s.evWatchers, id)
			close(c)
		}
		s.mu.Unlock()
	}
}

func (s *Service) broadcastLeaderboard(view standings.View) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.lbWatchers {
		select {
		case ch <- view:
		default:
			// Replace the stale pending view with the latest one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- view:
			default:
			}
		}
	}
}

func (s *Service) broadcastEvents(view EventsView) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.evWatchers {
		select {
		case ch <- view:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- view:
			default:
			}
		}
	}
}

// carouselSurface routes the carousel's scroll-into-view output to all
// events watchers as a fresh view with the new index.
type carouselSurface struct {
	s *Service
}

func (cs carouselSurface) ScrollIntoView(index int) {
	cs.s.mu.RLock()
	view := cs.s.eventsView
	cs.s.mu.RUnlock()
	view.Index = index
	cs.s.broadcastEvents(view)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started": s.started,
	}
	if s.started {
		stats["records"] = s.store.Count(ctx, s.recordsCollection)
		stats["slides"] = s.store.Count(ctx, s.eventsCollection)
		stats["leaderboardState"] = string(s.leaderboardView.State)
		stats["eventsState"] = string(s.eventsView.State)
		stats["leaderboardWatchers"] = len(s.lbWatchers)
		stats["eventsWatchers"] = len(s.evWatchers)
	}
	return stats
}
