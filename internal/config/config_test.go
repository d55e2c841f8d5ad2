package config

import (
	"strings"
	"testing"
	"time"
)

func setRequiredKeys(t *testing.T) {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("VISUAL_CROSSING_API_KEY", "vc-key")
}

func TestLoad_RequiresGeminiKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("VISUAL_CROSSING_API_KEY", "vc-key")
	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "GEMINI_API_KEY") {
		t.Errorf("error = %v, want GEMINI_API_KEY requirement", err)
	}
}

func TestLoad_RequiresWeatherKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("VISUAL_CROSSING_API_KEY", "")
	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "VISUAL_CROSSING_API_KEY") {
		t.Errorf("error = %v, want VISUAL_CROSSING_API_KEY requirement", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredKeys(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() err = %v", err)
	}
	if cfg.ServerPort != "3000" {
		t.Errorf("port = %q, want 3000", cfg.ServerPort)
	}
	if cfg.AnalysisTimeout != 60*time.Second {
		t.Errorf("analysis timeout = %v, want 60s", cfg.AnalysisTimeout)
	}
	if cfg.RequestTimeout != 90*time.Second {
		t.Errorf("request timeout = %v, want 90s", cfg.RequestTimeout)
	}
	if cfg.BreakerEnabled {
		t.Error("breaker should default off")
	}
	if len(cfg.AllowedOrigins) == 0 {
		t.Error("allowed origins should have a default")
	}
}

func TestLoad_AllowedOriginsSplit(t *testing.T) {
	setRequiredKeys(t)
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() err = %v", err)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Fatalf("origins = %v, want 2 entries", cfg.AllowedOrigins)
	}
	if cfg.AllowedOrigins[0] != "https://a.example" || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("origins = %v", cfg.AllowedOrigins)
	}
}

func TestLoad_RequestTimeoutOutlastsAnalysis(t *testing.T) {
	setRequiredKeys(t)
	t.Setenv("ANALYSIS_TIMEOUT", "60s")
	t.Setenv("REQUEST_TIMEOUT", "30s")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() err = %v", err)
	}
	if cfg.RequestTimeout <= cfg.AnalysisTimeout {
		t.Errorf("request timeout %v must outlast analysis timeout %v", cfg.RequestTimeout, cfg.AnalysisTimeout)
	}
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	setRequiredKeys(t)
	t.Setenv("WEATHER_API_TIMEOUT", "soon")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() err = %v", err)
	}
	if cfg.WeatherAPITimeout != 10*time.Second {
		t.Errorf("weather timeout = %v, want default 10s", cfg.WeatherAPITimeout)
	}
}
