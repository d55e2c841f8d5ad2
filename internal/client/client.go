package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/thrkingunknown/NASA-WeatherSense/internal/models"
	"github.com/thrkingunknown/NASA-WeatherSense/internal/observability"
)

// WeatherClient fetches single-day observation records by coordinates.
type WeatherClient interface {
	GetDay(ctx context.Context, latitude, longitude, date string) (models.DailyObservation, error)
}

var (
	ErrInvalidAPIKey    = errors.New("invalid API key")
	ErrLocationNotFound = errors.New("location not found")
	ErrUpstreamFailure  = errors.New("upstream failure")
	ErrRateLimited      = errors.New("rate limited")
	ErrCircuitOpen      = errors.New("weather provider circuit open")
)

// VisualCrossingClient calls the Visual Crossing timeline API for
// point-in-time daily observations. One outbound call per lookup, no retry;
// historical shortfall handling is the caller's concern.
type VisualCrossingClient struct {
	apiKey  string
	apiURL  string
	timeout time.Duration
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

func NewVisualCrossingClient(apiKey, apiURL string, timeout time.Duration) (*VisualCrossingClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key is required", ErrInvalidAPIKey)
	}
	return &VisualCrossingClient{
		apiKey:  apiKey,
		apiURL:  apiURL,
		timeout: timeout,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// SetCircuitBreaker wires an optional breaker around outbound calls.
// When the breaker is open, calls fail fast with ErrCircuitOpen.
func (c *VisualCrossingClient) SetCircuitBreaker(cb *gobreaker.CircuitBreaker) {
	c.breaker = cb
}

// timelineResponse mirrors the subset of the Visual Crossing timeline
// payload this service reads.
type timelineResponse struct {
	ResolvedAddress string        `json:"resolvedAddress"`
	Days            []timelineDay `json:"days"`
}

type timelineDay struct {
	Datetime   string  `json:"datetime"`
	Temp       float64 `json:"temp"`
	TempMin    float64 `json:"tempmin"`
	TempMax    float64 `json:"tempmax"`
	FeelsLike  float64 `json:"feelslike"`
	Humidity   float64 `json:"humidity"`
	Precip     float64 `json:"precip"`
	PrecipProb float64 `json:"precipprob"`
	Snow       float64 `json:"snow"`
	SnowDepth  float64 `json:"snowdepth"`
	WindSpeed  float64 `json:"windspeed"`
	WindGust   float64 `json:"windgust"`
	WindDir    float64 `json:"winddir"`
	Pressure   float64 `json:"pressure"`
	CloudCover float64 `json:"cloudcover"`
	Visibility float64 `json:"visibility"`
	UVIndex    float64 `json:"uvindex"`
	Conditions string  `json:"conditions"`
}

// GetDay fetches the observation record for one calendar day (YYYY-MM-DD)
// at the given coordinates.
func (c *VisualCrossingClient) GetDay(ctx context.Context, latitude, longitude, date string) (models.DailyObservation, error) {
	if c.breaker != nil {
		result, err := c.breaker.Execute(func() (interface{}, error) {
			return c.callAPI(ctx, latitude, longitude, date)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return models.DailyObservation{}, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
			}
			return models.DailyObservation{}, err
		}
		return result.(models.DailyObservation), nil
	}
	return c.callAPI(ctx, latitude, longitude, date)
}

func (c *VisualCrossingClient) callAPI(ctx context.Context, latitude, longitude, date string) (models.DailyObservation, error) {
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.buildRequest(reqCtx, latitude, longitude, date)
	if err != nil {
		observability.WeatherAPICallsTotal.WithLabelValues("error").Inc()
		return models.DailyObservation{}, fmt.Errorf("build request: %w", err)
	}

	if corrID := extractCorrelationID(ctx); corrID != "" {
		req.Header.Set("X-Correlation-ID", corrID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		duration := time.Since(start).Seconds()
		observability.WeatherAPICallsTotal.WithLabelValues("error").Inc()
		observability.WeatherAPIDuration.WithLabelValues("error").Observe(duration)

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return models.DailyObservation{}, fmt.Errorf("request timeout: %w", err)
		}
		return models.DailyObservation{}, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	duration := time.Since(start).Seconds()
	status := statusLabel(resp.StatusCode)
	observability.WeatherAPICallsTotal.WithLabelValues(status).Inc()
	observability.WeatherAPIDuration.WithLabelValues(status).Observe(duration)

	if err := c.handleErrorResponse(resp); err != nil {
		return models.DailyObservation{}, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.DailyObservation{}, fmt.Errorf("read response body: %w", err)
	}

	var apiResp timelineResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return models.DailyObservation{}, fmt.Errorf("parse response: %w", err)
	}
	if len(apiResp.Days) == 0 {
		return models.DailyObservation{}, fmt.Errorf("%w: no day record for %s", ErrUpstreamFailure, date)
	}

	return mapDay(apiResp.Days[0]), nil
}

func (c *VisualCrossingClient) buildRequest(ctx context.Context, latitude, longitude, date string) (*http.Request, error) {
	baseURL, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}
	baseURL.Path, err = url.JoinPath(baseURL.Path, latitude+","+longitude, date)
	if err != nil {
		return nil, fmt.Errorf("build path: %w", err)
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("unitGroup", "metric")
	params.Set("include", "days")
	params.Set("contentType", "json")
	baseURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", baseURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *VisualCrossingClient) handleErrorResponse(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: provider rejected credentials", ErrInvalidAPIKey)
	case http.StatusNotFound:
		return fmt.Errorf("%w", ErrLocationNotFound)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w", ErrRateLimited)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: HTTP %d", ErrUpstreamFailure, resp.StatusCode)
	}

	return nil
}

func mapDay(d timelineDay) models.DailyObservation {
	return models.DailyObservation{
		Date:       d.Datetime,
		Temp:       d.Temp,
		TempMin:    d.TempMin,
		TempMax:    d.TempMax,
		FeelsLike:  d.FeelsLike,
		Humidity:   d.Humidity,
		Precip:     d.Precip,
		PrecipProb: d.PrecipProb,
		Snow:       d.Snow,
		SnowDepth:  d.SnowDepth,
		WindSpeed:  d.WindSpeed,
		WindGust:   d.WindGust,
		WindDir:    d.WindDir,
		Pressure:   d.Pressure,
		CloudCover: d.CloudCover,
		Visibility: d.Visibility,
		UVIndex:    d.UVIndex,
		Conditions: d.Conditions,
	}
}

func extractCorrelationID(ctx context.Context) string {
	if corrIDVal := ctx.Value("correlation_id"); corrIDVal != nil {
		if corrID, ok := corrIDVal.(string); ok {
			return corrID
		}
	}
	return ""
}

func statusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode == 429 {
		return "rate_limited"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}
