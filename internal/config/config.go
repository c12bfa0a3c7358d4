package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"robovac/internal/cleaning"
)

// Config is the full configuration surface: every knob is an explicit
// field, nothing hides in package globals.
type Config struct {
	CatalogURL        string
	ProductPathPrefix string
	UserAgent         string

	PageSize    int
	MaxPages    int
	MaxProducts int
	TimeBudget  time.Duration

	MinDelay     time.Duration
	RetryCount   int
	BackoffBase  time.Duration
	FetchTimeout time.Duration

	DatabaseURL string
	RedisURL    string
	CacheTTL    time.Duration
	MetricsPort string

	DropThreshold float64
	Ranges        map[string]cleaning.Range
}

// rangeEnvPrefixes maps range-checked columns to their env var prefixes,
// e.g. PRICE_MIN / PRICE_MAX.
var rangeEnvPrefixes = map[string]string{
	cleaning.ColPrice:           "PRICE",
	cleaning.ColBatteryCapacity: "BATTERY_CAPACITY",
	cleaning.ColBatteryLife:     "BATTERY_LIFE",
	cleaning.ColSuctionPower:    "SUCTION_POWER",
	cleaning.ColRoomArea:        "ROOM_AREA",
}

func Load() *Config {
	// .env from the project root, then the working directory
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load()

	ranges := cleaning.DefaultRanges()
	for col, prefix := range rangeEnvPrefixes {
		r := ranges[col]
		r.Min = getFloat(prefix+"_MIN", r.Min)
		r.Max = getFloat(prefix+"_MAX", r.Max)
		ranges[col] = r
	}

	return &Config{
		CatalogURL:        getEnv("CATALOG_URL", "https://www.galaxus.ch/en/s2/producttype/robot-vacuum-cleaners-174"),
		ProductPathPrefix: getEnv("PRODUCT_PATH_PREFIX", "/en/s2/product/"),
		UserAgent:         getEnv("USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"),

		PageSize:    getInt("PAGE_SIZE", 60),
		MaxPages:    getInt("MAX_PAGES", 20),
		MaxProducts: getInt("MAX_PRODUCTS", 0),
		TimeBudget:  getDuration("TIME_BUDGET", 0),

		MinDelay:     getDuration("MIN_DELAY", 3*time.Second),
		RetryCount:   getInt("RETRY_COUNT", 3),
		BackoffBase:  getDuration("BACKOFF_BASE", 2*time.Second),
		FetchTimeout: getDuration("FETCH_TIMEOUT", 30*time.Second),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		CacheTTL:    getDuration("CACHE_TTL", 24*time.Hour),
		MetricsPort: getEnv("METRICS_PORT", "9090"),

		DropThreshold: getFloat("DROP_THRESHOLD", 0.8),
		Ranges:        ranges,
	}
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getFloat(k string, d float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return d
}

func getDuration(k string, d time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if dur, err := time.ParseDuration(v); err == nil {
			return dur
		}
	}
	return d
}
