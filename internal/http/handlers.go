package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/thrkingunknown/NASA-WeatherSense/internal/analysis"
	"github.com/thrkingunknown/NASA-WeatherSense/internal/forecast"
	"github.com/thrkingunknown/NASA-WeatherSense/internal/lifecycle"
	"github.com/thrkingunknown/NASA-WeatherSense/internal/validation"
)

const (
	serviceName    = "nasa-weathersense"
	serviceVersion = "1.0.0"
)

// Handler holds dependencies for HTTP handlers. Stateless per request;
// nothing is shared between requests beyond the wired collaborators.
type Handler struct {
	orchestrator *forecast.Orchestrator
	adapter      *analysis.Adapter
	logger       *zap.Logger
}

// NewHandler returns a new Handler.
func NewHandler(orchestrator *forecast.Orchestrator, adapter *analysis.Adapter, logger *zap.Logger) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		adapter:      adapter,
		logger:       logger,
	}
}

// GetHealth handles GET /api/health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	statusCode := http.StatusOK
	if lifecycle.IsShuttingDown() {
		status = "shutting-down"
		statusCode = http.StatusServiceUnavailable
	}
	writeJSON(w, statusCode, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   serviceName,
		"version":   serviceVersion,
	})
}

// GetWeather handles GET /api/weather?latitude=..&longitude=..&date=DD-MM-YYYY.
// Validation failures short-circuit with 400; a generative timeout maps to
// 504; everything else that goes wrong below the controller maps to 500.
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	query, err := validation.ValidateQuery(
		params.Get("latitude"),
		params.Get("longitude"),
		params.Get("date"),
	)
	if err != nil {
		writeValidationError(w, r, err)
		return
	}

	ctx := r.Context()
	logger := requestLogger(ctx, h.logger)

	composite, err := h.orchestrator.BuildComposite(ctx, query)
	if err != nil {
		logger.Error("composite forecast failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError,
			"Internal server error",
			"Failed to fetch weather data for the requested location and date",
			err.Error())
		return
	}

	doc, err := h.adapter.Analyze(ctx, query, composite)
	if err != nil {
		if errors.Is(err, analysis.ErrTimeout) {
			logger.Warn("analysis timed out", zap.String("date", query.Date))
			writeError(w, r, http.StatusGatewayTimeout,
				"Gateway timeout",
				"The analysis took too long to complete. Try a narrower query or retry shortly.",
				err.Error())
			return
		}
		logger.Error("analysis failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError,
			"Internal server error",
			"Failed to generate the weather analysis",
			err.Error())
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// writeValidationError maps a validation sentinel to its 400 body. The
// error field carries the violated constraint; the date-format case also
// carries a usage example.
func writeValidationError(w http.ResponseWriter, r *http.Request, err error) {
	body := map[string]interface{}{
		"error": err.Error(),
	}
	switch {
	case errors.Is(err, validation.ErrMissingParameters):
		body["message"] = "latitude, longitude and date query parameters are all required"
	case errors.Is(err, validation.ErrInvalidDateFormat):
		body["message"] = "date must be in DD-MM-YYYY format"
		body["example"] = "30-09-2026"
	case errors.Is(err, validation.ErrInvalidLatitude):
		body["message"] = "latitude must be a number between -90 and 90"
	case errors.Is(err, validation.ErrInvalidLongitude):
		body["message"] = "longitude must be a number between -180 and 180"
	default:
		body["message"] = "invalid request"
	}
	writeJSON(w, http.StatusBadRequest, body)
}

// requestLogger prefers the correlation-scoped logger middleware placed in
// the context.
func requestLogger(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if v := ctx.Value("logger"); v != nil {
		if l, ok := v.(*zap.Logger); ok && l != nil {
			return l
		}
	}
	if fallback != nil {
		return fallback
	}
	return zap.NewNop()
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the standard error envelope: machine-readable error
// category, human-readable message, provider/parse detail, and the request
// correlation ID when present.
func writeError(w http.ResponseWriter, r *http.Request, status int, errCategory, message, details string) {
	corrID := ""
	if v := r.Context().Value("correlation_id"); v != nil {
		corrID, _ = v.(string)
	}
	writeJSON(w, status, map[string]interface{}{
		"error":     errCategory,
		"message":   message,
		"details":   details,
		"requestId": corrID,
	})
}
