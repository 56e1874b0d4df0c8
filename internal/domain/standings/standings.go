// Package standings turns a flat snapshot of score records into the nested
// per-house, per-category leaderboard structure the display renders.
package standings

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/swaralaya/scoreboard/internal/domain/model"
	"github.com/swaralaya/scoreboard/pkg/logger"
	"github.com/swaralaya/scoreboard/pkg/metrics"
)

// CategoryBucket accumulates one house's results inside a single category.
// Events keeps every individual contribution in arrival order so repeated
// placements for the same event stay visible ("10+5" rather than "15").
type CategoryBucket struct {
	Points float64              `json:"points"`
	Events map[string][]float64 `json:"events"`
}

// HouseStanding is one house's aggregated results.
type HouseStanding struct {
	House       string                     `json:"house"`
	TotalPoints float64                    `json:"total_points"`
	Categories  map[string]*CategoryBucket `json:"categories"`
}

// Standings is the complete derived leaderboard structure: every fixed house
// in fixed order, plus the sorted index of distinct event names seen.
type Standings struct {
	Houses []HouseStanding `json:"houses"`
	Events []string        `json:"events"`
}

// Aggregator rebuilds Standings from scratch on every snapshot. It never
// assumes incremental consistency with a prior snapshot; the feed may
// reorder, insert or delete records between updates.
type Aggregator struct {
	houses      []string
	categories  []string
	houseSet    map[string]struct{}
	categorySet map[string]struct{}
	log         logger.Logger
}

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(a *Aggregator) {
		if log != nil {
			a.log = log
		}
	}
}

// New creates an Aggregator over the fixed house and category sets. The
// slice order of houses is the display order of the result.
func New(houses, categories []string, opts ...Option) *Aggregator {
	a := &Aggregator{
		houses:      append([]string(nil), houses...),
		categories:  append([]string(nil), categories...),
		houseSet:    make(map[string]struct{}, len(houses)),
		categorySet: make(map[string]struct{}, len(categories)),
	}
	for _, h := range houses {
		a.houseSet[h] = struct{}{}
	}
	for _, c := range categories {
		a.categorySet[c] = struct{}{}
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = logger.Get().Named("standings")
	}
	return a
}

// Build derives fresh Standings from a full snapshot of score records.
//
// Records with an unrecognized house or category are dropped silently (they
// are not an error). Records whose points did not parse as a number count as
// zero and are logged, so one bad document can never abort or poison an
// aggregation pass.
func (a *Aggregator) Build(ctx context.Context, records []model.ScoreRecord) Standings {
	start := time.Now()
	defer func() {
		metrics.RecordRebuildDuration(float64(time.Since(start).Milliseconds()))
	}()

	byHouse := make(map[string]*HouseStanding, len(a.houses))
	for _, h := range a.houses {
		hs := &HouseStanding{
			House:      h,
			Categories: make(map[string]*CategoryBucket, len(a.categories)),
		}
		for _, c := range a.categories {
			hs.Categories[c] = &CategoryBucket{Events: make(map[string][]float64)}
		}
		byHouse[h] = hs
	}

	// Distinct event names come from the whole snapshot, including records
	// that are later dropped from totals; the index is what labels the
	// table rows.
	names := make(map[string]struct{})
	for _, r := range records {
		names[r.Item] = struct{}{}
	}
	events := make([]string, 0, len(names))
	for name := range names {
		events = append(events, name)
	}
	sort.Strings(events)

	for _, r := range records {
		hs, okHouse := byHouse[r.House]
		_, okCat := a.categorySet[r.Category]
		if !okHouse || !okCat {
			metrics.RecordRecordDropped()
			continue
		}
		pts, valid := r.Points.Float()
		if !valid {
			pts = 0
			metrics.RecordMalformedPoints()
			a.log.Warn(ctx, "non-numeric points coerced to zero",
				logger.String("record", r.ID),
				logger.String("house", r.House),
				logger.String("item", r.Item),
				logger.String("points", r.Points.Raw()),
			)
		}
		bucket := hs.Categories[r.Category]
		bucket.Events[r.Item] = append(bucket.Events[r.Item], pts)
		bucket.Points += pts
		hs.TotalPoints += pts
	}

	houses := make([]HouseStanding, len(a.houses))
	for i, h := range a.houses {
		houses[i] = *byHouse[h]
	}
	metrics.UpdateRecordsAggregated(len(records))
	return Standings{Houses: houses, Events: events}
}

// Houses returns the fixed house order.
func (a *Aggregator) Houses() []string {
	return append([]string(nil), a.houses...)
}

// Categories returns the fixed category order.
func (a *Aggregator) Categories() []string {
	return append([]string(nil), a.categories...)
}

// CellText renders one table cell: "-" for no contributions, the bare number
// for a single one, and a "10+5" sum expression for several.
func CellText(values []float64) string {
	if len(values) == 0 {
		return "-"
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, "+")
}
