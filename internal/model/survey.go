package model

import (
	"errors"
	"fmt"
)

var ErrDuplicateOrder = errors.New("question order repeats within the survey")

// Survey is a self-assessment definition owned by the backend. It is never
// modified once a session has loaded it.
type Survey struct {
	ID                string     `json:"_id"`
	Title             string     `json:"titulo"`
	Description       string     `json:"descripcion"`
	Category          string     `json:"categoria"`
	EstimatedDuration int        `json:"duracionEstimada"` // minutes
	Active            *bool      `json:"activa,omitempty"`
	Questions         []Question `json:"preguntas"`
}

// IsActive treats a missing flag as active
func (s *Survey) IsActive() bool {
	return s.Active == nil || *s.Active
}

// Validate checks that the survey can be taken: at least one question and
// no order used twice.
func (s *Survey) Validate() error {
	if len(s.Questions) == 0 {
		return ErrEmptySurvey
	}
	seen := make(map[int]bool, len(s.Questions))
	for _, q := range s.Questions {
		if seen[q.Order] {
			return fmt.Errorf("%w: %d", ErrDuplicateOrder, q.Order)
		}
		seen[q.Order] = true
	}
	return nil
}

// QuestionByOrder returns the question with the given order, if any
func (s *Survey) QuestionByOrder(order int) (Question, bool) {
	for _, q := range s.Questions {
		if q.Order == order {
			return q, true
		}
	}
	return Question{}, false
}

// SurveyEnvelope is the body of GET /surveys/{id}
type SurveyEnvelope struct {
	Survey *surveyDocument `json:"survey"`
}

// surveyDocument accepts both "_id" and "id" from the backend.
type surveyDocument struct {
	Survey
	AltID string `json:"id,omitempty"`
}

// Unwrap returns the survey carried by the envelope, or nil
func (e *SurveyEnvelope) Unwrap() *Survey {
	if e.Survey == nil {
		return nil
	}
	s := e.Survey.Survey
	if s.ID == "" {
		s.ID = e.Survey.AltID
	}
	return &s
}
