package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"safehaven/internal/logger"
	"safehaven/internal/service"
)

// SurveyHandler handles survey endpoints
type SurveyHandler struct {
	loader *service.SurveyLoader
	log    logger.Logger
}

// NewSurveyHandler creates a new survey handler
func NewSurveyHandler(loader *service.SurveyLoader, log logger.Logger) *SurveyHandler {
	return &SurveyHandler{loader: loader, log: log}
}

// Get handles GET /v1/surveys/{surveyId}
//
//	@Summary	Survey definition, without opening a session
//	@Tags		surveys
//	@Produce	json
//	@Param		surveyId	path		string	true	"Survey ID"
//	@Success	200			{object}	model.Survey
//	@Failure	404			{object}	ErrorResponse
//	@Failure	409			{object}	ErrorResponse
//	@Failure	502			{object}	ErrorResponse
//	@Router		/v1/surveys/{surveyId} [get]
func (h *SurveyHandler) Get(w http.ResponseWriter, r *http.Request) {
	survey, err := h.loader.Load(r.Context(), mux.Vars(r)["surveyId"])
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, survey)
}
