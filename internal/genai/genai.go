package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/thrkingunknown/NASA-WeatherSense/internal/observability"
)

// TextGenerator produces text from a prompt via an external generative endpoint.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var (
	ErrInvalidAPIKey   = errors.New("generative provider rejected API key")
	ErrRateLimited     = errors.New("generative provider rate limited")
	ErrUpstreamFailure = errors.New("generative provider failure")
	ErrEmptyResponse   = errors.New("generative provider returned no candidates")
)

// Generation parameters sent on every request. The endpoint is asked for
// JSON output directly; code fences in the reply are still stripped by the
// caller as a safety net.
const (
	genTemperature     = 0.7
	genTopP            = 0.95
	genTopK            = 40
	genMaxOutputTokens = 8192
	genResponseMIME    = "application/json"
)

// GeminiClient calls the Gemini generateContent REST endpoint.
type GeminiClient struct {
	apiKey string
	apiURL string
	model  string
	client *http.Client
}

// NewGeminiClient builds a client for the given model. apiURL is the base
// endpoint (".../v1beta/models"); the model and method are appended per call.
// No client-level timeout: the adapter owns the deadline via context.
func NewGeminiClient(apiKey, apiURL, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key is required", ErrInvalidAPIKey)
	}
	return &GeminiClient{
		apiKey: apiKey,
		apiURL: apiURL,
		model:  model,
		client: &http.Client{},
	}, nil
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	TopP             float64 `json:"topP"`
	TopK             int     `json:"topK"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMIMEType string  `json:"responseMimeType"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends the prompt and returns the raw candidate text. The call
// runs until it completes or ctx is cancelled.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	payload := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:      genTemperature,
			TopP:             genTopP,
			TopK:             genTopK,
			MaxOutputTokens:  genMaxOutputTokens,
			ResponseMIMEType: genResponseMIME,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s:generateContent", c.apiURL, c.model)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(body))
	if err != nil {
		observability.GenerateCallsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		duration := time.Since(start).Seconds()
		observability.GenerateCallsTotal.WithLabelValues("error").Inc()
		observability.GenerateDuration.WithLabelValues("error").Observe(duration)
		return "", fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	duration := time.Since(start).Seconds()
	status := statusLabel(resp.StatusCode)
	observability.GenerateCallsTotal.WithLabelValues(status).Inc()
	observability.GenerateDuration.WithLabelValues(status).Observe(duration)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}

	if err := handleErrorResponse(resp.StatusCode, respBody); err != nil {
		return "", err
	}

	var apiResp generateResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	return apiResp.Candidates[0].Content.Parts[0].Text, nil
}

// handleErrorResponse maps non-2xx statuses to sentinel errors, carrying
// the provider-supplied message where one is present.
func handleErrorResponse(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	detail := ""
	var apiResp generateResponse
	if err := json.Unmarshal(body, &apiResp); err == nil && apiResp.Error != nil {
		detail = apiResp.Error.Message
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return wrapDetail(ErrInvalidAPIKey, detail)
	case http.StatusTooManyRequests:
		return wrapDetail(ErrRateLimited, detail)
	}
	return wrapDetail(fmt.Errorf("%w: HTTP %d", ErrUpstreamFailure, statusCode), detail)
}

func wrapDetail(err error, detail string) error {
	if detail == "" {
		return err
	}
	return fmt.Errorf("%w: %s", err, detail)
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
