// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load layers file and env.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9090".
	Addr string `koanf:"addr"`

	// DatabaseURL is the Postgres DSN. Empty selects the in-memory store.
	DatabaseURL string `koanf:"database_url"`

	// MigrationsURL locates SQL migrations, e.g. "file://migrations".
	MigrationsURL string `koanf:"migrations_url"`

	// MarginWeight, YardageWeight, and TurnoverWeight shape the per-game
	// power score. Yardage differential is taken in tens of yards.
	MarginWeight   float64 `koanf:"margin_weight"`
	YardageWeight  float64 `koanf:"yardage_weight"`
	TurnoverWeight float64 `koanf:"turnover_weight"`

	// HomeFieldBonus is added to the home team's power score when predicting.
	HomeFieldBonus float64 `koanf:"home_field_bonus"`

	// MarginDivisor converts a power gap into a predicted score margin.
	MarginDivisor float64 `koanf:"margin_divisor"`

	// BaseLoserScore anchors the losing side of a predicted final score.
	BaseLoserScore int `koanf:"base_loser_score"`

	// MaxMargin caps the predicted margin of victory.
	MaxMargin int `koanf:"max_margin"`

	// ConfidenceSlope scales power gap into win confidence above 50.
	ConfidenceSlope float64 `koanf:"confidence_slope"`

	// CompetitivenessWeight, QualityWeight, StakesWeight, and RivalryWeight
	// combine into the marquee-game composite score. They should sum to 1.
	CompetitivenessWeight float64 `koanf:"competitiveness_weight"`
	QualityWeight         float64 `koanf:"quality_weight"`
	StakesWeight          float64 `koanf:"stakes_weight"`
	RivalryWeight         float64 `koanf:"rivalry_weight"`

	// MaxLeaderboardLimit caps GET /contests/leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// BusBufferSize bounds the in-memory broadcast notification buffer.
	BusBufferSize int `koanf:"bus_buffer_size"`

	// DedupeSize sets the size of the broadcast deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		Addr:                  ":9090",
		DatabaseURL:           "",
		MigrationsURL:         "file://migrations",
		MarginWeight:          1.0,
		YardageWeight:         0.6,
		TurnoverWeight:        0.35,
		HomeFieldBonus:        2.5,
		MarginDivisor:         2.25,
		BaseLoserScore:        17,
		MaxMargin:             28,
		ConfidenceSlope:       1.5,
		CompetitivenessWeight: 0.40,
		QualityWeight:         0.30,
		StakesWeight:          0.20,
		RivalryWeight:         0.10,
		MaxLeaderboardLimit:   100,
		BusBufferSize:         256,
		DedupeSize:            10_000,
	}
}
