// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load() layers file/env.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DisplayURL is the public URL of the display pages; it is what the
	// QR code endpoint encodes.
	DisplayURL string `koanf:"display_url"`

	// AdminPassword gates the admin routes. This is a shared display-hall
	// secret, not a real access-control boundary.
	AdminPassword string `koanf:"admin_password"`

	// Houses is the fixed, ordered set of competing houses.
	Houses []string `koanf:"houses"`

	// Categories is the fixed, ordered set of competition categories.
	Categories []string `koanf:"categories"`

	// ScrollSpeed is the leaderboard auto-scroll increment in pixels per frame.
	ScrollSpeed float64 `koanf:"scroll_speed"`

	// ScrollTolerance is the distance from a bound, in pixels, at which the
	// scroll direction reverses.
	ScrollTolerance float64 `koanf:"scroll_tolerance"`

	// ScrollStallFrames is the number of consecutive stalled frames after
	// which the scroll direction is force-reversed.
	ScrollStallFrames int `koanf:"scroll_stall_frames"`

	// FrameRate is the auto-scroll tick rate in frames per second.
	FrameRate int `koanf:"frame_rate"`

	// CarouselIntervalMS is the auto-advance interval of the events carousel.
	CarouselIntervalMS int `koanf:"carousel_interval_ms"`

	// AllowedOrigins configures CORS for the read API and WebSocket routes.
	AllowedOrigins []string `koanf:"allowed_origins"`

	// RecordsCollection and EventsCollection name the feed collections the
	// two view models subscribe to.
	RecordsCollection string `koanf:"records_collection"`
	EventsCollection  string `koanf:"events_collection"`
}

// New creates a Config with defaults. House and category sets default to the
// Swaralaya fixtures.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":9080",
		DisplayURL:         "https://scoreboard.vercel.app/",
		AdminPassword:      "swaralaya@2025",
		Houses:             []string{"Ujjain", "Nalanda", "Taxila", "Vikramshila"},
		Categories:         []string{"I", "II", "III", "IV", "V", "C"},
		ScrollSpeed:        0.5,
		ScrollTolerance:    5,
		ScrollStallFrames:  60,
		FrameRate:          60,
		CarouselIntervalMS: 5000,
		AllowedOrigins:     []string{"*"},
		RecordsCollection:  "leaderboard",
		EventsCollection:   "events",
	}
}
