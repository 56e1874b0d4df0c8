// Package seed populates a running scoreboard with demo data through the
// admin API and verifies the derived leaderboard afterwards.
package seed

import "time"

// Config controls a seeding run.
type Config struct {
	// BaseURL of the running service, e.g. http://localhost:9080.
	BaseURL string

	// AdminPassword is sent as the admin token on write requests.
	AdminPassword string

	// NumRecords is the number of score records to generate and submit.
	NumRecords int

	// NumSlides is the number of event slides to generate and submit.
	NumSlides int

	// Workers is the number of concurrent submitters.
	Workers int

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// Verbose enables per-request logging.
	Verbose bool
}

// Stats collects run counters for the final report.
type Stats struct {
	RecordsGenerated int
	SlidesGenerated  int
	Submitted        int
	Successful       int
	Failed           int
	Duration         time.Duration
}
