package seed

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/swaralaya/scoreboard/pkg/logger"
)

// verifyTolerance absorbs float64 accumulation noise when comparing the
// submitted and aggregated totals.
const verifyTolerance = 1e-6

// Run generates demo records and slides, submits them concurrently through
// the admin API, and verifies the aggregated totals against what was sent.
func Run(ctx context.Context, cfg *Config) error {
	log := logger.Get().Named("seed")
	start := time.Now()
	stats := &Stats{}

	records := generateRecords(cfg.NumRecords)
	slides := generateSlides(cfg.NumSlides)
	stats.RecordsGenerated = len(records)
	stats.SlidesGenerated = len(slides)
	log.Info(ctx, "generated demo data",
		logger.Int("records", len(records)),
		logger.Int("slides", len(slides)),
	)

	c := newClient(cfg)
	payloads := make(chan payload, cfg.Workers*2)

	var successful, failed int64
	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range payloads {
				if err := c.post(ctx, p.path, p.body); err != nil {
					atomic.AddInt64(&failed, 1)
					if cfg.Verbose {
						log.Warn(ctx, "submit failed", logger.Error(err))
					}
					continue
				}
				atomic.AddInt64(&successful, 1)
			}
		}()
	}

	go func() {
		defer close(payloads)
		for _, rec := range records {
			select {
			case <-ctx.Done():
				return
			case payloads <- payload{path: "/admin/records", body: mustMarshal(rec)}:
			}
		}
		for _, slide := range slides {
			select {
			case <-ctx.Done():
				return
			case payloads <- payload{path: "/admin/events", body: mustMarshal(slide)}:
			}
		}
	}()
	wg.Wait()

	stats.Submitted = len(records) + len(slides)
	stats.Successful = int(atomic.LoadInt64(&successful))
	stats.Failed = int(atomic.LoadInt64(&failed))
	stats.Duration = time.Since(start)

	log.Info(ctx, "submission complete",
		logger.Int("submitted", stats.Submitted),
		logger.Int("successful", stats.Successful),
		logger.Int("failed", stats.Failed),
		logger.Duration("duration", stats.Duration),
	)
	if stats.Failed > 0 {
		return fmt.Errorf("%d of %d submissions failed", stats.Failed, stats.Submitted)
	}

	return verify(ctx, c, records, log)
}

type payload struct {
	path string
	body []byte
}

// verify fetches the leaderboard and checks the grand total against the sum
// of everything submitted.
func verify(ctx context.Context, c *client, records []recordPayload, log logger.Logger) error {
	view, err := c.getLeaderboard(ctx)
	if err != nil {
		return fmt.Errorf("fetch leaderboard: %w", err)
	}

	var got float64
	for _, house := range view.Standings.Houses {
		got += house.TotalPoints
	}
	want := expectedTotal(records)

	if math.Abs(got-want) > verifyTolerance {
		return fmt.Errorf("aggregated total %.2f does not match submitted total %.2f", got, want)
	}

	log.Info(ctx, "verification passed",
		logger.Float64("total_points", got),
		logger.Int("houses", len(view.Standings.Houses)),
		logger.Int("items", len(view.Standings.Events)),
	)
	return nil
}
