package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds service configuration loaded from the environment.
type Config struct {
	Env        string
	ServerPort string

	GeminiAPIKey string
	GeminiAPIURL string
	GeminiModel  string

	WeatherAPIKey     string
	WeatherAPIURL     string
	WeatherAPITimeout time.Duration

	// AnalysisTimeout is the soft deadline raced against the generative call.
	AnalysisTimeout time.Duration
	// RequestTimeout is the hard budget for the full request/response cycle.
	RequestTimeout time.Duration

	AllowedOrigins []string

	RateLimitRPS   int
	RateLimitBurst int

	BreakerEnabled     bool
	BreakerMaxFailures uint32
	BreakerTimeout     time.Duration

	ShutdownTimeout               time.Duration
	ShutdownInFlightTimeout       time.Duration
	ShutdownInFlightCheckInterval time.Duration
}

// Load reads configuration from the environment, with a best-effort .env
// file pass first. Fails when either required API key is absent; the
// process should exit non-zero in that case.
func Load() (*Config, error) {
	// .env is a local-development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		Env:        getenvDefault("ENV_NAME", "dev"),
		ServerPort: getenvDefault("PORT", "3000"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiAPIURL: getenvDefault("GEMINI_API_URL", "https://generativelanguage.googleapis.com/v1beta/models"),
		GeminiModel:  getenvDefault("GEMINI_MODEL", "gemini-2.0-flash"),

		WeatherAPIKey: os.Getenv("VISUAL_CROSSING_API_KEY"),
		WeatherAPIURL: getenvDefault("VISUAL_CROSSING_API_URL",
			"https://weather.visualcrossing.com/VisualCrossingWebServices/rest/services/timeline"),
		WeatherAPITimeout: getenvDuration("WEATHER_API_TIMEOUT", 10*time.Second),

		AnalysisTimeout: getenvDuration("ANALYSIS_TIMEOUT", 60*time.Second),
		RequestTimeout:  getenvDuration("REQUEST_TIMEOUT", 90*time.Second),

		RateLimitRPS:   getenvInt("RATE_LIMIT_RPS", 0),
		RateLimitBurst: getenvInt("RATE_LIMIT_BURST", 0),

		BreakerEnabled:     getenvBool("BREAKER_ENABLED", false),
		BreakerMaxFailures: uint32(getenvInt("BREAKER_MAX_FAILURES", 5)),
		BreakerTimeout:     getenvDuration("BREAKER_TIMEOUT", 30*time.Second),

		ShutdownTimeout:               getenvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		ShutdownInFlightTimeout:       getenvDuration("SHUTDOWN_INFLIGHT_TIMEOUT", 10*time.Second),
		ShutdownInFlightCheckInterval: getenvDuration("SHUTDOWN_INFLIGHT_CHECK_INTERVAL", 100*time.Millisecond),
	}

	cfg.AllowedOrigins = splitOrigins(getenvDefault("ALLOWED_ORIGINS", "http://localhost:5173"))

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if cfg.WeatherAPIKey == "" {
		return fmt.Errorf("VISUAL_CROSSING_API_KEY is required")
	}
	if cfg.WeatherAPITimeout <= 0 {
		return fmt.Errorf("WEATHER_API_TIMEOUT must be positive")
	}
	if cfg.RequestTimeout <= cfg.AnalysisTimeout {
		// The hard budget must outlast the soft analysis deadline so the 504
		// path is reachable.
		cfg.RequestTimeout = cfg.AnalysisTimeout + 30*time.Second
	}
	return nil
}

func splitOrigins(s string) []string {
	parts := strings.Split(s, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
