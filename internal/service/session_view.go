package service

import "safehaven/internal/model"

// SurveySummary is the survey header shown above the wizard
type SurveySummary struct {
	ID                string `json:"id"`
	Title             string `json:"titulo"`
	Description       string `json:"descripcion,omitempty"`
	Category          string `json:"categoria,omitempty"`
	EstimatedDuration int    `json:"duracionEstimada,omitempty"`
}

// SessionView is everything the tab needs to render the current step
type SessionView struct {
	ID          string                  `json:"id"`
	Survey      SurveySummary           `json:"survey"`
	Index       int                     `json:"index"`
	Total       int                     `json:"total"`
	Answered    int                     `json:"answered"`
	Question    model.Question          `json:"question"`
	Answer      *model.AnswerValue      `json:"answer"`
	Required    bool                    `json:"required"`
	Valid       bool                    `json:"valid"`
	IsLast      bool                    `json:"isLast"`
	CanAdvance  bool                    `json:"canAdvance"`
	CanRetreat  bool                    `json:"canRetreat"`
	CanSubmit   bool                    `json:"canSubmit"`
	SubmitState model.SubmitState       `json:"submitState"`
	Result      *model.CompletionResult `json:"result,omitempty"`
	LastError   string                  `json:"lastError,omitempty"`
	Toast       *model.Toast            `json:"toast,omitempty"`
}

// NewSessionView projects a session onto its view
func NewSessionView(sess *model.Session, toast *model.Toast) *SessionView {
	q := sess.CurrentQuestion()
	answer := sess.CurrentAnswer()
	return &SessionView{
		ID: sess.ID,
		Survey: SurveySummary{
			ID:                sess.Survey.ID,
			Title:             sess.Survey.Title,
			Description:       sess.Survey.Description,
			Category:          sess.Survey.Category,
			EstimatedDuration: sess.Survey.EstimatedDuration,
		},
		Index:       sess.Current,
		Total:       len(sess.Survey.Questions),
		Answered:    sess.Answers.Answered(),
		Question:    q,
		Answer:      answer,
		Required:    q.Required,
		Valid:       model.IsValid(q, answer),
		IsLast:      sess.IsLast(),
		CanAdvance:  sess.CanAdvance(),
		CanRetreat:  sess.CanRetreat(),
		CanSubmit:   sess.CanSubmit(),
		SubmitState: sess.SubmitState,
		Result:      sess.Result,
		LastError:   sess.LastError,
		Toast:       toast,
	}
}
