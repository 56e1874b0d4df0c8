package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/swaralaya/scoreboard/internal/seed"
	"github.com/swaralaya/scoreboard/pkg/logger"
)

// Default configuration constants.
const (
	defaultNumRecords = 120
	defaultNumSlides  = 12
	defaultWorkers    = 8
	defaultTimeout    = 10 * time.Second
	defaultRunTimeout = 2 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		password   = flag.String("password", "swaralaya@2025", "Admin password for write routes")
		numRecords = flag.Int("records", defaultNumRecords, "Number of score records to generate and submit")
		numSlides  = flag.Int("slides", defaultNumSlides, "Number of event slides to generate and submit")
		workers    = flag.Int("workers", defaultWorkers, "Number of concurrent submitters")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &seed.Config{
		BaseURL:       *baseURL,
		AdminPassword: *password,
		NumRecords:    *numRecords,
		NumSlides:     *numSlides,
		Workers:       *workers,
		Timeout:       *timeout,
		Verbose:       *verbose,
	}

	if err := seed.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("seed run failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
