package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/thrkingunknown/NASA-WeatherSense/internal/analysis"
	"github.com/thrkingunknown/NASA-WeatherSense/internal/forecast"
	"github.com/thrkingunknown/NASA-WeatherSense/internal/models"
)

type stubWeather struct {
	obs models.DailyObservation
	err error
}

func (s *stubWeather) GetDay(ctx context.Context, latitude, longitude, date string) (models.DailyObservation, error) {
	if s.err != nil {
		return models.DailyObservation{}, s.err
	}
	obs := s.obs
	obs.Date = date
	return obs, nil
}

type stubGenerator struct {
	reply string
	err   error
	delay time.Duration
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.reply, s.err
}

const analysisDoc = `{
	"overall_comfortability_score": {"score": 72, "summary": "pleasant"},
	"activities": {"suggestions": ["walk"], "warnings": [], "reminders": []}
}`

func newTestRouter(weather *stubWeather, gen *stubGenerator, analysisTimeout time.Duration) *mux.Router {
	orchestrator := forecast.NewOrchestrator(weather, nil, nil)
	adapter := analysis.NewAdapter(gen, analysisTimeout, nil)
	handler := NewHandler(orchestrator, adapter, nil)

	router := mux.NewRouter()
	router.HandleFunc("/api/health", handler.GetHealth).Methods("GET")
	router.HandleFunc("/api/weather", handler.GetWeather).Methods("GET")
	return router
}

func doGet(t *testing.T, router *mux.Router, target string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest("GET", target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v: %s", err, rec.Body.String())
	}
	return rec, body
}

func TestGetHealth(t *testing.T) {
	router := newTestRouter(&stubWeather{}, &stubGenerator{reply: analysisDoc}, time.Second)
	rec, body := doGet(t, router, "/api/health")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
	for _, k := range []string{"timestamp", "service", "version"} {
		if _, ok := body[k]; !ok {
			t.Errorf("health body missing %q", k)
		}
	}
}

func TestGetWeather_ValidationErrors(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		wantError string
	}{
		{"no parameters", "/api/weather", "Missing required parameters"},
		{"missing date", "/api/weather?latitude=8.52&longitude=76.94", "Missing required parameters"},
		{"iso date", "/api/weather?latitude=8.52&longitude=76.94&date=2026-09-30", "Invalid date format"},
		{"latitude out of range", "/api/weather?latitude=200&longitude=76.94&date=30-09-2026", "Invalid latitude"},
		{"longitude out of range", "/api/weather?latitude=8.52&longitude=300&date=30-09-2026", "Invalid longitude"},
	}
	router := newTestRouter(&stubWeather{}, &stubGenerator{reply: analysisDoc}, time.Second)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, body := doGet(t, router, tc.target)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if body["error"] != tc.wantError {
				t.Errorf("error = %v, want %q", body["error"], tc.wantError)
			}
			if body["message"] == nil || body["message"] == "" {
				t.Error("validation error must carry a human-readable message")
			}
		})
	}
}

func TestGetWeather_DateFormatErrorCarriesExample(t *testing.T) {
	router := newTestRouter(&stubWeather{}, &stubGenerator{reply: analysisDoc}, time.Second)
	_, body := doGet(t, router, "/api/weather?latitude=8.52&longitude=76.94&date=2026-09-30")
	if body["example"] != "30-09-2026" {
		t.Errorf("example = %v, want 30-09-2026", body["example"])
	}
}

func TestGetWeather_Success(t *testing.T) {
	weather := &stubWeather{obs: models.DailyObservation{Temp: 27.3, Conditions: "Clear"}}
	router := newTestRouter(weather, &stubGenerator{reply: analysisDoc}, time.Second)

	rec, body := doGet(t, router, "/api/weather?latitude=8.52&longitude=76.94&date=30-09-2026")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if _, ok := body["overall_comfortability_score"]; !ok {
		t.Error("response missing comfort score")
	}
	if _, ok := body["visual_crossing_data"]; !ok {
		t.Error("response missing appended visual_crossing_data block")
	}
}

func TestGetWeather_WeatherFetchFailure500(t *testing.T) {
	weather := &stubWeather{err: errors.New("provider unreachable")}
	router := newTestRouter(weather, &stubGenerator{reply: analysisDoc}, time.Second)

	rec, body := doGet(t, router, "/api/weather?latitude=8.52&longitude=76.94&date=30-09-2026")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if body["error"] != "Internal server error" {
		t.Errorf("error = %v", body["error"])
	}
	if body["details"] == nil {
		t.Error("500 body must carry details")
	}
}

func TestGetWeather_Timeout504(t *testing.T) {
	gen := &stubGenerator{reply: analysisDoc, delay: 200 * time.Millisecond}
	router := newTestRouter(&stubWeather{}, gen, 20*time.Millisecond)

	rec, body := doGet(t, router, "/api/weather?latitude=8.52&longitude=76.94&date=30-09-2026")
	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("status = %d, want 504", rec.Code)
	}
	if body["error"] != "Gateway timeout" {
		t.Errorf("error = %v, want Gateway timeout", body["error"])
	}
}

func TestGetWeather_MalformedGeneratorOutput500(t *testing.T) {
	router := newTestRouter(&stubWeather{}, &stubGenerator{reply: "not json"}, time.Second)

	rec, _ := doGet(t, router, "/api/weather?latitude=8.52&longitude=76.94&date=30-09-2026")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500 for malformed generator output", rec.Code)
	}
}
