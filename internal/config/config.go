package config

import (
	"log/slog"
	"os"
	"strings"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	BazaarURL      string
	AuctionURL     string
	Relays         []string
	CacheURL       string
	BazaarTTL      time.Duration
	AuctionTTL     time.Duration
	BazaarMinGap   time.Duration
	AuctionMinGap  time.Duration
	FetchTimeout   time.Duration
	DataDir        string
	HTTPPort       string
	SpreadsheetID  string
	GoogleCredsRaw string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		BazaarURL:      envOrDefault("BAZAAR_URL", "https://api.hypixel.net/skyblock/bazaar"),
		AuctionURL:     envOrDefault("AUCTION_URL", "https://sky.coflnet.com"),
		Relays:         envOrDefaultList("RELAYS", []string{"allorigins", "corsproxy", "codetabs"}),
		CacheURL:       envOrDefault("CACHE_URL", "sqlite:tmp/skycalc.sqlite"),
		BazaarTTL:      envOrDefaultDuration("BAZAAR_TTL", 2*time.Minute),
		AuctionTTL:     envOrDefaultDuration("AUCTION_TTL", 5*time.Minute),
		BazaarMinGap:   envOrDefaultDuration("BAZAAR_MIN_GAP", 300*time.Millisecond),
		AuctionMinGap:  envOrDefaultDuration("AUCTION_MIN_GAP", 250*time.Millisecond),
		FetchTimeout:   envOrDefaultDuration("FETCH_TIMEOUT", 12*time.Second),
		DataDir:        envOrDefault("DATA_DIR", "data"),
		HTTPPort:       envOrDefault("HTTP_PORT", "8080"),
		SpreadsheetID:  envOrDefault("SHEETS_SPREADSHEET_ID", ""),
		GoogleCredsRaw: envOrDefault("GOOGLE_CREDENTIALS_JSON", ""),
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}
