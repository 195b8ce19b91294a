package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/mtlprog/balances/internal/horizon"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Network               string
	HorizonURL            string
	DatabaseURL           string
	HorizonRetryMax       int
	HorizonRetryBaseDelay time.Duration
	ClassifyTimeout       time.Duration
	ClassifyConcurrency   int
	WatchAccounts         []string
	RefreshInterval       time.Duration
	HTTPPort              string
	AdminAPIKey           string
	LogLevel              string
	GoogleSpreadsheetID   string
	GoogleCredentialsJSON string
}

// Load reads configuration from environment variables with sensible defaults.
// HORIZON_URL takes precedence over the default URL of NETWORK.
func Load() Config {
	network := envOrDefault("NETWORK", "public")
	defaultHorizon, err := horizon.URLForNetwork(network)
	if err != nil {
		slog.Warn("unknown network, using public", "key", "NETWORK", "value", network)
		network = "public"
		defaultHorizon = horizon.PublicURL
	}

	return Config{
		Network:               network,
		HorizonURL:            envOrDefault("HORIZON_URL", defaultHorizon),
		DatabaseURL:           envOrDefault("DATABASE_URL", ""),
		HorizonRetryMax:       envOrDefaultInt("HORIZON_RETRY_MAX", 5, 0),
		HorizonRetryBaseDelay: envOrDefaultDuration("HORIZON_RETRY_BASE_DELAY", 2*time.Second),
		ClassifyTimeout:       envOrDefaultDuration("CLASSIFY_TIMEOUT", 10*time.Second),
		ClassifyConcurrency:   envOrDefaultInt("CLASSIFY_CONCURRENCY", 8, 1),
		WatchAccounts:         envList("WATCH_ACCOUNTS"),
		RefreshInterval:       envOrDefaultDuration("REFRESH_INTERVAL", 5*time.Minute),
		HTTPPort:              envOrDefault("HTTP_PORT", "8080"),
		AdminAPIKey:           envOrDefault("ADMIN_API_KEY", ""),
		LogLevel:              envOrDefault("LOG_LEVEL", "info"),
		GoogleSpreadsheetID:   envOrDefault("GOOGLE_SPREADSHEET_ID", ""),
		GoogleCredentialsJSON: envOrDefault("GOOGLE_CREDENTIALS_JSON", ""),
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// envOrDefaultInt parses an integer no smaller than minVal.
func envOrDefaultInt(key string, defaultVal, minVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < minVal {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

// envOrDefaultDuration parses a strictly positive duration.
func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}

// envList splits a comma-separated variable, dropping blanks and duplicates.
func envList(key string) []string {
	parts := lo.Map(strings.Split(os.Getenv(key), ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	})
	return lo.Uniq(lo.Compact(parts))
}
