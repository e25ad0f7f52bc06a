package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"safehaven/internal/logger"
	"safehaven/internal/model"
	"safehaven/internal/service"
	"safehaven/internal/transport/rest/middleware"
)

// DraftHandler handles saved draft endpoints. Routes sit behind RequireAuth.
type DraftHandler struct {
	draftSvc *service.DraftService
	log      logger.Logger
}

// NewDraftHandler creates a new draft handler
func NewDraftHandler(draftSvc *service.DraftService, log logger.Logger) *DraftHandler {
	return &DraftHandler{draftSvc: draftSvc, log: log}
}

// SaveDraftRequest is the request body for saving a draft
type SaveDraftRequest struct {
	Answers []model.AnswerEntry `json:"answers"`
}

// Get handles GET /v1/drafts/{surveyId}
//
//	@Summary	Saved draft of a survey
//	@Tags		drafts
//	@Produce	json
//	@Security	BearerAuth
//	@Param		surveyId	path		string	true	"Survey ID"
//	@Success	200			{object}	model.Draft
//	@Failure	404			{object}	ErrorResponse
//	@Router		/v1/drafts/{surveyId} [get]
func (h *DraftHandler) Get(w http.ResponseWriter, r *http.Request) {
	draft, err := h.draftSvc.Load(r.Context(), middleware.CurrentUser(r.Context()), mux.Vars(r)["surveyId"])
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

// Save handles PUT /v1/drafts/{surveyId}
//
//	@Summary	Save a draft of a survey
//	@Tags		drafts
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		surveyId	path		string				true	"Survey ID"
//	@Param		body		body		SaveDraftRequest	true	"Answers so far"
//	@Success	200			{object}	model.Draft
//	@Failure	422			{object}	ErrorResponse
//	@Router		/v1/drafts/{surveyId} [put]
func (h *DraftHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req SaveDraftRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	draft, err := h.draftSvc.Save(r.Context(), middleware.CurrentUser(r.Context()), mux.Vars(r)["surveyId"], req.Answers)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

// Clear handles DELETE /v1/drafts/{surveyId}
func (h *DraftHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.draftSvc.Clear(r.Context(), middleware.CurrentUser(r.Context()), mux.Vars(r)["surveyId"]); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
