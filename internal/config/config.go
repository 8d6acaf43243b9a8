// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Flat snake_case keys, identical in YAML and (upper-cased, prefixed) in env.
// - New returns the defaults; Load layers file and env on top.
// - External errors are wrapped with this package's sentinels.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// PublicURL is what the kiosk QR code points at.
	PublicURL string `koanf:"public_url"`

	// Profile selects the rule set: leaderboard or classic.
	Profile string `koanf:"profile"`

	// MaxTaps and MaxSeconds override the profile budgets when > 0.
	MaxTaps    int `koanf:"max_taps"`
	MaxSeconds int `koanf:"max_seconds"`

	// CountdownSeconds is the pause before play starts. 0 starts at once.
	CountdownSeconds int `koanf:"countdown_seconds"`

	// CatalogPath points at a YAML hotspot catalog. Empty uses the bundled one.
	CatalogPath string `koanf:"catalog_path"`

	// Debug exposes hotspot outlines to clients.
	Debug bool `koanf:"debug"`

	// StoreEngine selects leaderboard persistence: sqlite, json or memory.
	StoreEngine string `koanf:"store_engine"`
	StorePath   string `koanf:"store_path"`

	LeaderboardCapacity     int `koanf:"leaderboard_capacity"`
	LeaderboardDefaultLimit int `koanf:"leaderboard_default_limit"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// ScoreEndpointURL and FormEndpointURL enable the result sinks when set.
	ScoreEndpointURL string `koanf:"score_endpoint_url"`
	FormEndpointURL  string `koanf:"form_endpoint_url"`

	// FormFields overrides form field identifiers by result field name.
	FormFields map[string]string `koanf:"form_fields"`

	// UserAgent is reported to the score endpoint. Empty means spotcheck/<build version>.
	UserAgent string `koanf:"user_agent"`

	SubmitQueueSize int `koanf:"submit_queue_size"`
	SubmitWorkers   int `koanf:"submit_workers"`
	SubmitTimeoutMS int `koanf:"submit_timeout_ms"`

	// SessionTTLSeconds is how long ended sessions stay readable.
	SessionTTLSeconds int `koanf:"session_ttl_seconds"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		Addr:                    ":9080",
		PublicURL:               "http://localhost:9080/",
		Profile:                 "leaderboard",
		CountdownSeconds:        3,
		StoreEngine:             "sqlite",
		StorePath:               "spotcheck.db",
		LeaderboardCapacity:     50,
		LeaderboardDefaultLimit: 20,
		MaxLeaderboardLimit:     50,
		FormFields:              map[string]string{},
		SubmitQueueSize:         256,
		SubmitWorkers:           2,
		SubmitTimeoutMS:         5000,
		SessionTTLSeconds:       600,
	}
}
