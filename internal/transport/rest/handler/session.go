package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"safehaven/internal/logger"
	"safehaven/internal/model"
	"safehaven/internal/service"
	"safehaven/internal/transport/rest/middleware"
)

// SessionHandler handles the survey wizard endpoints
type SessionHandler struct {
	sessionSvc   *service.SessionService
	redirectPath string
	log          logger.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionSvc *service.SessionService, redirectPath string, log logger.Logger) *SessionHandler {
	return &SessionHandler{
		sessionSvc:   sessionSvc,
		redirectPath: redirectPath,
		log:          log,
	}
}

// StartSessionRequest is the request body for starting a session
type StartSessionRequest struct {
	SurveyID string `json:"surveyId"`
}

// SetAnswerRequest carries the full new value of one answer. A null or
// empty value clears it.
type SetAnswerRequest struct {
	Value *model.AnswerValue `json:"value"`
}

// ExitResponse tells the tab where to go after leaving the wizard
type ExitResponse struct {
	Status       string `json:"status"`
	RedirectPath string `json:"redirectPath"`
}

// ToastResponse wraps the visible toast, null when none
type ToastResponse struct {
	Toast *model.Toast `json:"toast"`
}

// Start handles POST /v1/sessions
//
//	@Summary	Load a survey and open a wizard session
//	@Tags		sessions
//	@Accept		json
//	@Produce	json
//	@Param		body	body		StartSessionRequest	true	"Survey to take"
//	@Success	201		{object}	service.SessionView
//	@Failure	404		{object}	ErrorResponse
//	@Failure	409		{object}	ErrorResponse
//	@Failure	502		{object}	ErrorResponse
//	@Router		/v1/sessions [post]
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	view, err := h.sessionSvc.Start(r.Context(), req.SurveyID, middleware.CurrentUser(r.Context()))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// Get handles GET /v1/sessions/{id}
//
//	@Summary	Current wizard step
//	@Tags		sessions
//	@Produce	json
//	@Param		id	path		string	true	"Session ID"
//	@Success	200	{object}	service.SessionView
//	@Failure	404	{object}	ErrorResponse
//	@Router		/v1/sessions/{id} [get]
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessionSvc.Get(r.Context(), mux.Vars(r)["id"], middleware.CurrentUser(r.Context()))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// SetAnswer handles PUT /v1/sessions/{id}/answers/{order}
//
//	@Summary	Replace the answer of one question
//	@Tags		sessions
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Session ID"
//	@Param		order	path		int					true	"Question order"
//	@Param		body	body		SetAnswerRequest	true	"New value"
//	@Success	200		{object}	service.SessionView
//	@Failure	409		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/v1/sessions/{id}/answers/{order} [put]
func (h *SessionHandler) SetAnswer(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	order, err := strconv.Atoi(vars["order"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid question order")
		return
	}

	var req SetAnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		if errors.Is(err, model.ErrInvalidAnswerJSON) {
			writeServiceError(w, h.log, err)
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	view, err := h.sessionSvc.SetAnswer(r.Context(), vars["id"], order, req.Value, middleware.CurrentUser(r.Context()))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Next handles POST /v1/sessions/{id}/next
//
//	@Summary	Advance to the next question
//	@Tags		sessions
//	@Produce	json
//	@Param		id	path		string	true	"Session ID"
//	@Success	200	{object}	service.SessionView
//	@Failure	422	{object}	ErrorResponse
//	@Router		/v1/sessions/{id}/next [post]
func (h *SessionHandler) Next(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessionSvc.Next(r.Context(), mux.Vars(r)["id"], middleware.CurrentUser(r.Context()))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Prev handles POST /v1/sessions/{id}/prev
func (h *SessionHandler) Prev(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessionSvc.Prev(r.Context(), mux.Vars(r)["id"], middleware.CurrentUser(r.Context()))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Submit handles POST /v1/sessions/{id}/submit
//
//	@Summary	Complete the survey
//	@Tags		sessions
//	@Produce	json
//	@Param		id	path		string	true	"Session ID"
//	@Success	200	{object}	service.SubmitOutcome
//	@Failure	409	{object}	ErrorResponse
//	@Failure	422	{object}	ErrorResponse
//	@Failure	502	{object}	ErrorResponse	"Backend rejected the completion; toast attached"
//	@Router		/v1/sessions/{id}/submit [post]
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	out, err := h.sessionSvc.Submit(r.Context(), mux.Vars(r)["id"], middleware.CurrentUser(r.Context()))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Exit handles POST /v1/sessions/{id}/exit
func (h *SessionHandler) Exit(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionSvc.Exit(r.Context(), mux.Vars(r)["id"], middleware.CurrentUser(r.Context())); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, ExitResponse{Status: "closed", RedirectPath: h.redirectPath})
}

// Close handles DELETE /v1/sessions/{id}
func (h *SessionHandler) Close(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionSvc.Close(r.Context(), mux.Vars(r)["id"], middleware.CurrentUser(r.Context())); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Toast handles GET /v1/sessions/{id}/toast
func (h *SessionHandler) Toast(w http.ResponseWriter, r *http.Request) {
	toast, err := h.sessionSvc.Toast(r.Context(), mux.Vars(r)["id"], middleware.CurrentUser(r.Context()))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, ToastResponse{Toast: toast})
}

// DismissToast handles DELETE /v1/sessions/{id}/toast
func (h *SessionHandler) DismissToast(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionSvc.DismissToast(r.Context(), mux.Vars(r)["id"], middleware.CurrentUser(r.Context())); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
