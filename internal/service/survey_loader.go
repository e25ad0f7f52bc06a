package service

import (
	"context"
	"errors"
	"net/http"

	"safehaven/internal/logger"
	"safehaven/internal/metrics"
	"safehaven/internal/model"
)

// Load failure kinds. They never overlap.
var (
	ErrSurveyNotFound = errors.New("survey not found")
	ErrSurveyInactive = errors.New("survey is not active")
	ErrConnection     = errors.New("could not reach the survey service")
)

// LoadError carries the load failure kind and the backend's detail text
type LoadError struct {
	Kind   error
	Detail string
}

func (e *LoadError) Error() string {
	if e.Detail == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Detail
}

func (e *LoadError) Unwrap() error {
	return e.Kind
}

// SurveyLoader fetches survey definitions and normalizes failures
type SurveyLoader struct {
	backend Backend
	log     logger.Logger
}

// NewSurveyLoader creates a new survey loader
func NewSurveyLoader(backend Backend, log logger.Logger) *SurveyLoader {
	return &SurveyLoader{
		backend: backend,
		log:     log,
	}
}

// Load retrieves a survey by ID. Errors are always *LoadError.
func (l *SurveyLoader) Load(ctx context.Context, surveyID string) (*model.Survey, error) {
	survey, err := l.backend.GetSurvey(ctx, surveyID)
	if err != nil {
		loadErr := classifyLoadError(err)
		metrics.SurveyLoads.WithLabelValues(outcomeLabel(loadErr.Kind)).Inc()
		l.log.Warn("survey load failed", map[string]interface{}{
			"survey_id": surveyID,
			"kind":      loadErr.Kind.Error(),
			"error":     err.Error(),
		})
		return nil, loadErr
	}

	if !survey.IsActive() {
		metrics.SurveyLoads.WithLabelValues("inactive").Inc()
		return nil, &LoadError{Kind: ErrSurveyInactive}
	}
	// A survey that cannot be seeded is as good as closed
	if err := survey.Validate(); err != nil {
		metrics.SurveyLoads.WithLabelValues("inactive").Inc()
		l.log.Warn("survey rejected", map[string]interface{}{
			"survey_id": surveyID,
			"error":     err.Error(),
		})
		return nil, &LoadError{Kind: ErrSurveyInactive, Detail: err.Error()}
	}

	metrics.SurveyLoads.WithLabelValues("ok").Inc()
	l.log.Info("survey loaded", map[string]interface{}{
		"survey_id": survey.ID,
		"questions": len(survey.Questions),
	})
	return survey, nil
}

func classifyLoadError(err error) *LoadError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusNotFound:
			return &LoadError{Kind: ErrSurveyNotFound, Detail: apiErr.Message}
		case http.StatusBadRequest:
			return &LoadError{Kind: ErrSurveyInactive, Detail: apiErr.Message}
		}
		return &LoadError{Kind: ErrConnection, Detail: apiErr.Message}
	}
	return &LoadError{Kind: ErrConnection}
}

func outcomeLabel(kind error) string {
	switch kind {
	case ErrSurveyNotFound:
		return "not_found"
	case ErrSurveyInactive:
		return "inactive"
	default:
		return "connection_error"
	}
}
