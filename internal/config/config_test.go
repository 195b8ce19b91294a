package config

import (
	"os"
	"slices"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// Clear any env vars that might affect defaults
	for _, key := range []string{
		"NETWORK", "HORIZON_URL", "DATABASE_URL", "HTTP_PORT", "HORIZON_RETRY_MAX",
		"CLASSIFY_TIMEOUT", "CLASSIFY_CONCURRENCY", "WATCH_ACCOUNTS", "REFRESH_INTERVAL",
		"ADMIN_API_KEY", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := Load()

	if cfg.Network != "public" {
		t.Errorf("Network = %q, want public", cfg.Network)
	}
	if cfg.HorizonURL != "https://horizon.stellar.org" {
		t.Errorf("HorizonURL = %q, want default", cfg.HorizonURL)
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("DatabaseURL = %q, want empty", cfg.DatabaseURL)
	}
	if cfg.HorizonRetryMax != 5 {
		t.Errorf("HorizonRetryMax = %d, want 5", cfg.HorizonRetryMax)
	}
	if cfg.HorizonRetryBaseDelay != 2*time.Second {
		t.Errorf("HorizonRetryBaseDelay = %v, want 2s", cfg.HorizonRetryBaseDelay)
	}
	if cfg.ClassifyTimeout != 10*time.Second {
		t.Errorf("ClassifyTimeout = %v, want 10s", cfg.ClassifyTimeout)
	}
	if cfg.ClassifyConcurrency != 8 {
		t.Errorf("ClassifyConcurrency = %d, want 8", cfg.ClassifyConcurrency)
	}
	if len(cfg.WatchAccounts) != 0 {
		t.Errorf("WatchAccounts = %v, want empty", cfg.WatchAccounts)
	}
	if cfg.RefreshInterval != 5*time.Minute {
		t.Errorf("RefreshInterval = %v, want 5m", cfg.RefreshInterval)
	}
	if cfg.HTTPPort != "8080" {
		t.Errorf("HTTPPort = %q, want 8080", cfg.HTTPPort)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoadTestnet(t *testing.T) {
	t.Setenv("NETWORK", "testnet")
	t.Setenv("HORIZON_URL", "")
	os.Unsetenv("HORIZON_URL")

	cfg := Load()

	if cfg.HorizonURL != "https://horizon-testnet.stellar.org" {
		t.Errorf("HorizonURL = %q, want testnet default", cfg.HorizonURL)
	}
}

func TestLoadUnknownNetworkFallsBackToPublic(t *testing.T) {
	t.Setenv("NETWORK", "futurenet")
	t.Setenv("HORIZON_URL", "")
	os.Unsetenv("HORIZON_URL")

	cfg := Load()

	if cfg.Network != "public" {
		t.Errorf("Network = %q, want public", cfg.Network)
	}
	if cfg.HorizonURL != "https://horizon.stellar.org" {
		t.Errorf("HorizonURL = %q, want public default", cfg.HorizonURL)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("NETWORK", "testnet")
	t.Setenv("HORIZON_URL", "https://custom-horizon.example.com")
	t.Setenv("DATABASE_URL", "postgres://localhost/testdb")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("HORIZON_RETRY_MAX", "10")
	t.Setenv("HORIZON_RETRY_BASE_DELAY", "5s")
	t.Setenv("CLASSIFY_TIMEOUT", "3s")
	t.Setenv("CLASSIFY_CONCURRENCY", "2")
	t.Setenv("WATCH_ACCOUNTS", " GAAA, GBBB,,GAAA ")
	t.Setenv("REFRESH_INTERVAL", "30s")

	cfg := Load()

	if cfg.HorizonURL != "https://custom-horizon.example.com" {
		t.Errorf("HorizonURL = %q, want override", cfg.HorizonURL)
	}
	if cfg.DatabaseURL != "postgres://localhost/testdb" {
		t.Errorf("DatabaseURL = %q, want override", cfg.DatabaseURL)
	}
	if cfg.HTTPPort != "9090" {
		t.Errorf("HTTPPort = %q, want 9090", cfg.HTTPPort)
	}
	if cfg.HorizonRetryMax != 10 {
		t.Errorf("HorizonRetryMax = %d, want 10", cfg.HorizonRetryMax)
	}
	if cfg.HorizonRetryBaseDelay != 5*time.Second {
		t.Errorf("HorizonRetryBaseDelay = %v, want 5s", cfg.HorizonRetryBaseDelay)
	}
	if cfg.ClassifyTimeout != 3*time.Second {
		t.Errorf("ClassifyTimeout = %v, want 3s", cfg.ClassifyTimeout)
	}
	if cfg.ClassifyConcurrency != 2 {
		t.Errorf("ClassifyConcurrency = %d, want 2", cfg.ClassifyConcurrency)
	}
	if !slices.Equal(cfg.WatchAccounts, []string{"GAAA", "GBBB"}) {
		t.Errorf("WatchAccounts = %v, want [GAAA GBBB]", cfg.WatchAccounts)
	}
	if cfg.RefreshInterval != 30*time.Second {
		t.Errorf("RefreshInterval = %v, want 30s", cfg.RefreshInterval)
	}
}

func TestLoadInvalidEnvFallsBackToDefault(t *testing.T) {
	t.Setenv("HORIZON_RETRY_MAX", "not-a-number")
	t.Setenv("HORIZON_RETRY_BASE_DELAY", "invalid-duration")
	t.Setenv("CLASSIFY_CONCURRENCY", "many")

	cfg := Load()

	if cfg.HorizonRetryMax != 5 {
		t.Errorf("HorizonRetryMax = %d, want default 5 on invalid input", cfg.HorizonRetryMax)
	}
	if cfg.HorizonRetryBaseDelay != 2*time.Second {
		t.Errorf("HorizonRetryBaseDelay = %v, want default 2s on invalid input", cfg.HorizonRetryBaseDelay)
	}
	if cfg.ClassifyConcurrency != 8 {
		t.Errorf("ClassifyConcurrency = %d, want default 8 on invalid input", cfg.ClassifyConcurrency)
	}
}

func TestLoadOutOfRangeEnvFallsBackToDefault(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		check func(Config) bool
	}{
		{"zero refresh interval", "REFRESH_INTERVAL", "0s", func(c Config) bool { return c.RefreshInterval == 5*time.Minute }},
		{"negative refresh interval", "REFRESH_INTERVAL", "-1m", func(c Config) bool { return c.RefreshInterval == 5*time.Minute }},
		{"zero retry delay", "HORIZON_RETRY_BASE_DELAY", "0", func(c Config) bool { return c.HorizonRetryBaseDelay == 2*time.Second }},
		{"negative classify timeout", "CLASSIFY_TIMEOUT", "-10s", func(c Config) bool { return c.ClassifyTimeout == 10*time.Second }},
		{"negative retry max", "HORIZON_RETRY_MAX", "-1", func(c Config) bool { return c.HorizonRetryMax == 5 }},
		{"zero retry max is allowed", "HORIZON_RETRY_MAX", "0", func(c Config) bool { return c.HorizonRetryMax == 0 }},
		{"zero concurrency", "CLASSIFY_CONCURRENCY", "0", func(c Config) bool { return c.ClassifyConcurrency == 8 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			cfg := Load()
			if !tt.check(cfg) {
				t.Errorf("%s=%q: got %+v", tt.key, tt.value, cfg)
			}
		})
	}
}
