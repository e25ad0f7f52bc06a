package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safehaven/internal/logger/logtest"
	"safehaven/internal/model"
	"safehaven/internal/service"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"survey not found", &service.LoadError{Kind: service.ErrSurveyNotFound}, http.StatusNotFound, "survey_not_found"},
		{"survey inactive", &service.LoadError{Kind: service.ErrSurveyInactive}, http.StatusConflict, "survey_inactive"},
		{"connection", &service.LoadError{Kind: service.ErrConnection}, http.StatusBadGateway, "connection_error"},
		{"session not found", service.ErrSessionNotFound, http.StatusNotFound, "session_not_found"},
		{"session closed", service.ErrSessionClosed, http.StatusGone, "session_closed"},
		{"answer required", model.ErrAnswerRequired, http.StatusUnprocessableEntity, "answer_required"},
		{"incomplete", model.ErrIncomplete, http.StatusUnprocessableEntity, "incomplete"},
		{"invalid answer", model.ErrInvalidAnswer, http.StatusUnprocessableEntity, "invalid_answer"},
		{"unknown question", model.ErrUnknownQuestion, http.StatusUnprocessableEntity, "unknown_question"},
		{"locked", model.ErrSubmissionLocked, http.StatusConflict, "locked"},
		{"in progress", model.ErrSubmitInProgress, http.StatusConflict, "submit_in_progress"},
		{"already submitted", model.ErrAlreadySubmitted, http.StatusConflict, "already_submitted"},
		{"auth required", service.ErrAuthRequired, http.StatusUnauthorized, "auth_required"},
		{"forbidden", service.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"draft not found", service.ErrDraftNotFound, http.StatusNotFound, "draft_not_found"},
		{"wrapped", fmt.Errorf("outer: %w", model.ErrIncomplete), http.StatusUnprocessableEntity, "incomplete"},
		{"unknown", errors.New("redis: connection refused"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, logtest.New(t), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Error)
			assert.Nil(t, body.Toast)
		})
	}
}

func TestWriteServiceError_InternalDetailHidden(t *testing.T) {
	rec := httptest.NewRecorder()
	writeServiceError(rec, logtest.New(t), errors.New("redis: connection refused"))
	assert.NotContains(t, rec.Body.String(), "redis")
}

func TestWriteServiceError_SubmitFailureCarriesToast(t *testing.T) {
	rec := httptest.NewRecorder()
	err := &service.SubmitError{
		Message: "Servicio no disponible",
		Toast:   model.Toast{ID: "t1", Message: "Servicio no disponible", Severity: model.ToastError},
		Err:     &service.APIError{StatusCode: http.StatusServiceUnavailable},
	}
	writeServiceError(rec, logtest.New(t), err)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "submission_failed", body.Code)
	assert.Equal(t, "Servicio no disponible", body.Error)
	require.NotNil(t, body.Toast)
	assert.Equal(t, model.ToastError, body.Toast.Severity)
}
