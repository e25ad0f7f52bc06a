package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"safehaven/internal/logger"
	"safehaven/internal/model"
	"safehaven/internal/service"
)

// ErrorResponse is the body of every non-2xx answer
type ErrorResponse struct {
	Error string       `json:"error"`
	Code  string       `json:"code"`
	Toast *model.Toast `json:"toast,omitempty"`
}

type errorMapping struct {
	err    error
	status int
	code   string
}

// Order matters only where errors wrap each other
var errorMappings = []errorMapping{
	{service.ErrSurveyNotFound, http.StatusNotFound, "survey_not_found"},
	{service.ErrSurveyInactive, http.StatusConflict, "survey_inactive"},
	{service.ErrConnection, http.StatusBadGateway, "connection_error"},
	{service.ErrSessionNotFound, http.StatusNotFound, "session_not_found"},
	{service.ErrSessionClosed, http.StatusGone, "session_closed"},
	{model.ErrAnswerRequired, http.StatusUnprocessableEntity, "answer_required"},
	{model.ErrIncomplete, http.StatusUnprocessableEntity, "incomplete"},
	{model.ErrInvalidAnswer, http.StatusUnprocessableEntity, "invalid_answer"},
	{model.ErrInvalidAnswerJSON, http.StatusUnprocessableEntity, "invalid_answer"},
	{model.ErrUnknownQuestion, http.StatusUnprocessableEntity, "unknown_question"},
	{model.ErrSubmissionLocked, http.StatusConflict, "locked"},
	{model.ErrSubmitInProgress, http.StatusConflict, "submit_in_progress"},
	{model.ErrAlreadySubmitted, http.StatusConflict, "already_submitted"},
	{service.ErrAuthRequired, http.StatusUnauthorized, "auth_required"},
	{service.ErrInvalidToken, http.StatusUnauthorized, "unauthorized"},
	{service.ErrForbidden, http.StatusForbidden, "forbidden"},
	{service.ErrDraftNotFound, http.StatusNotFound, "draft_not_found"},
	{service.ErrInvalidDraft, http.StatusUnprocessableEntity, "invalid_draft"},
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// writeServiceError is the single place errors become HTTP statuses
func writeServiceError(w http.ResponseWriter, log logger.Logger, err error) {
	var submitErr *service.SubmitError
	if errors.As(err, &submitErr) {
		toast := submitErr.Toast
		writeJSON(w, http.StatusBadGateway, ErrorResponse{
			Error: submitErr.Message,
			Code:  "submission_failed",
			Toast: &toast,
		})
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			writeError(w, m.status, m.code, err.Error())
			return
		}
	}

	log.Error("request failed", map[string]interface{}{"error": err.Error()})
	writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}
