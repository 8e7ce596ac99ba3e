package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// Reconciliation
	OverrideWindow          time.Duration   // manual override suppression window
	HistoryThresholdPercent decimal.Decimal // min % change producing an api_update history entry
	SnapshotRefreshInterval time.Duration   // conversion snapshot TTL

	// Rate feed puller
	BaseCurrency     string
	RateFeedURL      string
	RateFeedEnabled  bool
	RateFeedInterval time.Duration

	// HTTP
	RateLimit string // ulule/limiter formatted, e.g. "100-M"
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("OVERRIDE_WINDOW_HOURS", 24)
	viper.SetDefault("HISTORY_THRESHOLD_PERCENT", "0.1")
	viper.SetDefault("SNAPSHOT_REFRESH_INTERVAL", "1m")
	viper.SetDefault("BASE_CURRENCY", "USD")
	viper.SetDefault("RATE_FEED_URL", "")
	viper.SetDefault("RATE_FEED_ENABLED", false)
	viper.SetDefault("RATE_FEED_INTERVAL", "1h")
	viper.SetDefault("RATE_LIMIT", "100-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	overrideHours := viper.GetInt("OVERRIDE_WINDOW_HOURS")
	if overrideHours <= 0 {
		overrideHours = 24
		log.Printf("Warning: Invalid OVERRIDE_WINDOW_HOURS. Defaulting to %d.\n", overrideHours)
	}
	cfg.OverrideWindow = time.Duration(overrideHours) * time.Hour

	threshold, err := decimal.NewFromString(viper.GetString("HISTORY_THRESHOLD_PERCENT"))
	if err != nil || threshold.IsNegative() {
		threshold = decimal.NewFromFloat(0.1)
		log.Printf("Warning: Invalid HISTORY_THRESHOLD_PERCENT. Defaulting to %s.\n", threshold.String())
	}
	cfg.HistoryThresholdPercent = threshold

	snapshotIntervalStr := viper.GetString("SNAPSHOT_REFRESH_INTERVAL")
	snapshotInterval, err := time.ParseDuration(snapshotIntervalStr)
	if err != nil {
		snapshotInterval = time.Minute
		if snapshotIntervalStr != "" {
			log.Printf("Warning: Invalid SNAPSHOT_REFRESH_INTERVAL ('%s'). Defaulting to %s.\n", snapshotIntervalStr, snapshotInterval.String())
		}
	}
	cfg.SnapshotRefreshInterval = snapshotInterval

	cfg.BaseCurrency = viper.GetString("BASE_CURRENCY")
	cfg.RateFeedURL = viper.GetString("RATE_FEED_URL")
	cfg.RateFeedEnabled = viper.GetBool("RATE_FEED_ENABLED")
	if cfg.RateFeedEnabled && cfg.RateFeedURL == "" {
		log.Println("Warning: RATE_FEED_ENABLED is set but RATE_FEED_URL is empty. The feed puller will not start.")
		cfg.RateFeedEnabled = false
	}

	feedIntervalStr := viper.GetString("RATE_FEED_INTERVAL")
	feedInterval, err := time.ParseDuration(feedIntervalStr)
	if err != nil {
		feedInterval = time.Hour
		if feedIntervalStr != "" {
			log.Printf("Warning: Invalid RATE_FEED_INTERVAL ('%s'). Defaulting to %s.\n", feedIntervalStr, feedInterval.String())
		}
	}
	cfg.RateFeedInterval = feedInterval

	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	return cfg, nil
}
