package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"safehaven/internal/config"
	"safehaven/internal/logger"
	"safehaven/internal/model"
)

// APIError is a non-2xx answer from the SafeHaven backend
type APIError struct {
	StatusCode int
	Message    string // Human-readable detail from the error body, may be empty
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// Backend is the slice of the SafeHaven REST API the survey workflow uses
type Backend interface {
	GetSurvey(ctx context.Context, surveyID string) (*model.Survey, error)
	CompleteSurvey(ctx context.Context, surveyID string, req model.CompletionRequest, token string) (*model.CompletionResult, error)
}

// BackendClient wraps SafeHaven REST API calls. It never retries.
type BackendClient struct {
	cfg        config.BackendConfig
	httpClient *http.Client
	log        logger.Logger
}

// NewBackendClient creates a new SafeHaven API client
func NewBackendClient(cfg config.BackendConfig, log logger.Logger) *BackendClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BackendClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log.WithFields(map[string]interface{}{"component": "backend_client"}),
	}
}

// errorBody covers the field names the backend uses for error text
type errorBody struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (b errorBody) text() string {
	switch {
	case b.Message != "":
		return b.Message
	case b.Detail != "":
		return b.Detail
	default:
		return b.Error
	}
}

// doRequest performs one HTTP request and returns the body of a 2xx answer.
// An empty token sends no Authorization header at all.
func (c *BackendClient) doRequest(ctx context.Context, method, url string, body io.Reader, token string) ([]byte, error) {
	log := c.log.WithFields(map[string]interface{}{"method": method, "url": url})

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("backend request failed", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	log.Debug("backend response", map[string]interface{}{
		"status":      resp.StatusCode,
		"bytes":       len(respBody),
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode >= 400 {
		var eb errorBody
		_ = json.Unmarshal(respBody, &eb)
		return nil, &APIError{StatusCode: resp.StatusCode, Message: eb.text()}
	}
	return respBody, nil
}

// GetSurvey fetches a survey definition
func (c *BackendClient) GetSurvey(ctx context.Context, surveyID string) (*model.Survey, error) {
	respBody, err := c.doRequest(ctx, http.MethodGet, c.cfg.SurveyEndpoint(surveyID), nil, "")
	if err != nil {
		return nil, err
	}

	var envelope model.SurveyEnvelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse survey response: %w", err)
	}
	survey := envelope.Unwrap()
	if survey == nil {
		return nil, fmt.Errorf("failed to parse survey response: missing survey")
	}
	if survey.ID == "" {
		survey.ID = surveyID
	}
	return survey, nil
}

// CompleteSurvey posts the answers and returns the computed result
func (c *BackendClient) CompleteSurvey(ctx context.Context, surveyID string, req model.CompletionRequest, token string) (*model.CompletionResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode completion: %w", err)
	}

	respBody, err := c.doRequest(ctx, http.MethodPost, c.cfg.CompleteEndpoint(surveyID), bytes.NewReader(payload), token)
	if err != nil {
		return nil, err
	}

	var resp model.CompletionResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse completion response: %w", err)
	}
	return resp.Result(), nil
}
