package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/thrkingunknown/NASA-WeatherSense/internal/genai"
	"github.com/thrkingunknown/NASA-WeatherSense/internal/models"
	"github.com/thrkingunknown/NASA-WeatherSense/internal/observability"
)

var (
	// ErrTimeout is returned when the generative call loses the race against
	// the adapter deadline. Mapped to 504 at the controller.
	ErrTimeout = errors.New("analysis timed out")

	// ErrMalformedResponse is returned when the generated text does not parse as JSON.
	ErrMalformedResponse = errors.New("invalid response format from AI service")

	// ErrInvalidStructure is returned when required top-level fields are missing.
	ErrInvalidStructure = errors.New("invalid response structure from AI service")
)

// DefaultTimeout is the soft deadline for one generative call.
const DefaultTimeout = 60 * time.Second

var validate = validator.New()

// requiredFields is the minimal structural contract enforced on the
// generated document. Anything beyond these two objects is trusted.
type requiredFields struct {
	ComfortScore map[string]interface{} `json:"overall_comfortability_score" validate:"required"`
	Activities   map[string]interface{} `json:"activities" validate:"required"`
}

// Adapter turns a validated query plus fetched weather data into the
// analysis document rendered by the frontend.
type Adapter struct {
	generator genai.TextGenerator
	timeout   time.Duration
	logger    *zap.Logger
}

// NewAdapter creates an Adapter. timeout <= 0 selects DefaultTimeout.
func NewAdapter(generator genai.TextGenerator, timeout time.Duration, logger *zap.Logger) *Adapter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Adapter{
		generator: generator,
		timeout:   timeout,
		logger:    logger,
	}
}

type genResult struct {
	text string
	err  error
}

// Analyze builds the prompt, races the generative call against the adapter
// deadline, parses and validates the reply, and merges the real-data block
// when a composite was supplied. The losing call is abandoned, not
// cancelled; its result is discarded when it eventually completes.
func (a *Adapter) Analyze(ctx context.Context, query models.WeatherQuery, composite *models.CompositeForecast) (map[string]interface{}, error) {
	prompt := BuildPrompt(query, composite)

	ch := make(chan genResult, 1)
	go func() {
		text, err := a.generator.Generate(ctx, prompt)
		ch <- genResult{text: text, err: err}
	}()

	timer := time.NewTimer(a.timeout)
	defer timer.Stop()

	var raw string
	select {
	case res := <-ch:
		if res.err != nil {
			return nil, fmt.Errorf("generate analysis: %w", res.err)
		}
		raw = res.text
	case <-timer.C:
		observability.AnalysisTimeoutsTotal.Inc()
		if a.logger != nil {
			a.logger.Warn("generative call abandoned",
				zap.Duration("timeout", a.timeout),
				zap.String("date", query.Date))
		}
		return nil, fmt.Errorf("%w after %s", ErrTimeout, a.timeout)
	}

	doc, err := parseDocument(raw)
	if err != nil {
		return nil, err
	}

	if composite != nil {
		doc["visual_crossing_data"] = realDataBlock(composite)
	}
	return doc, nil
}

// parseDocument strips code fences, parses JSON, and enforces the minimal
// structural contract.
func parseDocument(raw string) (map[string]interface{}, error) {
	cleaned := StripCodeFences(raw)

	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	var required requiredFields
	if err := json.Unmarshal([]byte(cleaned), &required); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := validate.Struct(required); err != nil {
		return nil, fmt.Errorf("%w: missing comfort score or activities", ErrInvalidStructure)
	}

	return doc, nil
}

// StripCodeFences removes Markdown ```json / ``` delimiters wrapping the
// generated text, if present.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
	}
	return strings.TrimSpace(s)
}

// realDataBlock flattens the composite into the block merged onto the
// generated document. Measurements come from whichever of current/forecast
// was populated, renamed but otherwise untouched.
func realDataBlock(composite *models.CompositeForecast) models.VisualCrossingData {
	return models.VisualCrossingData{
		Source:             "Visual Crossing Weather API",
		Location:           composite.Latitude + "," + composite.Longitude,
		ActualData:         models.ObservationData(composite.Day()),
		HistoricalAverages: composite.MonthlyAverages,
		Statistics:         composite.Statistics,
	}
}
