package model

import (
	"errors"
	"time"
)

var (
	ErrAnswerRequired   = errors.New("current question must be answered before advancing")
	ErrUnknownQuestion  = errors.New("question does not belong to this survey")
	ErrInvalidAnswer    = errors.New("answer does not fit the question")
	ErrIncomplete       = errors.New("every question must be answered before submitting")
	ErrSubmissionLocked = errors.New("survey can no longer be changed")
	ErrSubmitInProgress = errors.New("submission already in progress")
	ErrAlreadySubmitted = errors.New("survey already submitted")
	ErrNotSubmitting    = errors.New("no submission in progress")
	ErrEmptySurvey      = errors.New("survey has no questions")
)

// SubmitState is the completion state machine:
// idle -> submitting -> done | failed, failed -> submitting.
type SubmitState string

const (
	SubmitIdle       SubmitState = "idle"
	SubmitSubmitting SubmitState = "submitting"
	SubmitDone       SubmitState = "done"
	SubmitFailed     SubmitState = "failed"
)

// Session is one survey-taking run: the loaded survey, its answer store,
// the navigation index and the submission state.
type Session struct {
	ID          string            `json:"id"`
	SurveyID    string            `json:"surveyId"`
	OwnerID     string            `json:"ownerId,omitempty"` // Empty for anonymous sessions
	Survey      Survey            `json:"survey"`
	Answers     AnswerStore       `json:"answers"`
	Current     int               `json:"current"`
	SubmitState SubmitState       `json:"submitState"`
	Result      *CompletionResult `json:"result,omitempty"`
	LastError   string            `json:"lastError,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// NewSession seeds the answer store with one unanswered slot per question
// and positions the wizard on the first question.
func NewSession(id string, survey *Survey, ownerID string) (*Session, error) {
	if err := survey.Validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	return &Session{
		ID:          id,
		SurveyID:    survey.ID,
		OwnerID:     ownerID,
		Survey:      *survey,
		Answers:     NewAnswerStore(survey.Questions),
		Current:     0,
		SubmitState: SubmitIdle,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// CurrentQuestion returns the question under the cursor
func (s *Session) CurrentQuestion() Question {
	return s.Survey.Questions[s.Current]
}

// CurrentAnswer returns the stored answer of the current question
func (s *Session) CurrentAnswer() *AnswerValue {
	v, _ := s.Answers.Get(s.CurrentQuestion().Order)
	return v
}

// IsLast reports whether the cursor sits on the final question
func (s *Session) IsLast() bool {
	return s.Current == len(s.Survey.Questions)-1
}

// Locked reports whether answers and navigation are frozen
func (s *Session) Locked() bool {
	return s.SubmitState == SubmitSubmitting || s.SubmitState == SubmitDone
}

// CanAdvance is the may-advance predicate enforced by Advance
func (s *Session) CanAdvance() bool {
	return !s.Locked() && !s.IsLast() && s.CurrentAnswer() != nil
}

// CanRetreat reports whether Retreat would move the cursor
func (s *Session) CanRetreat() bool {
	return !s.Locked() && s.Current > 0
}

// CanSubmit reports whether BeginSubmit would be accepted
func (s *Session) CanSubmit() bool {
	return (s.SubmitState == SubmitIdle || s.SubmitState == SubmitFailed) && s.Answers.Complete()
}

// Advance moves to the next question. It is a no-op on the last question.
func (s *Session) Advance() error {
	if s.Locked() {
		return ErrSubmissionLocked
	}
	if s.IsLast() {
		return nil
	}
	if s.CurrentAnswer() == nil {
		return ErrAnswerRequired
	}
	s.Current++
	s.touch()
	return nil
}

// Retreat moves to the previous question. It is a no-op on the first one.
func (s *Session) Retreat() error {
	if s.Locked() {
		return ErrSubmissionLocked
	}
	if s.Current == 0 {
		return nil
	}
	s.Current--
	s.touch()
	return nil
}

// SetAnswer replaces the stored value for a question. Multiple-choice
// callers pass the whole new list. Empty values clear the slot.
func (s *Session) SetAnswer(order int, v *AnswerValue) error {
	if s.Locked() {
		return ErrSubmissionLocked
	}
	q, ok := s.Survey.QuestionByOrder(order)
	if !ok {
		return ErrUnknownQuestion
	}
	if v.IsEmpty() {
		v = nil
	}
	if v != nil {
		if err := checkShape(q, v); err != nil {
			return err
		}
	}
	s.Answers.Set(order, v)
	s.touch()
	return nil
}

func checkShape(q Question, v *AnswerValue) error {
	if q.IsMultiple() != v.Multi {
		return ErrInvalidAnswer
	}
	if len(q.Options) == 0 || q.Type == QuestionTypeFreeText {
		return nil
	}
	if v.Multi {
		seen := make(map[string]bool, len(v.Choices))
		for _, c := range v.Choices {
			if !q.HasOption(c) || seen[c] {
				return ErrInvalidAnswer
			}
			seen[c] = true
		}
		return nil
	}
	if !q.HasOption(v.Text) {
		return ErrInvalidAnswer
	}
	return nil
}

// BeginSubmit takes the idle|failed -> submitting transition.
func (s *Session) BeginSubmit() error {
	switch s.SubmitState {
	case SubmitSubmitting:
		return ErrSubmitInProgress
	case SubmitDone:
		return ErrAlreadySubmitted
	}
	if !s.Answers.Complete() {
		return ErrIncomplete
	}
	s.SubmitState = SubmitSubmitting
	s.LastError = ""
	s.touch()
	return nil
}

// CompleteSubmit takes the submitting -> done transition
func (s *Session) CompleteSubmit(result *CompletionResult) error {
	if s.SubmitState != SubmitSubmitting {
		return ErrNotSubmitting
	}
	s.SubmitState = SubmitDone
	s.Result = result
	s.touch()
	return nil
}

// FailSubmit takes the submitting -> failed transition; the cursor stays put
func (s *Session) FailSubmit(message string) error {
	if s.SubmitState != SubmitSubmitting {
		return ErrNotSubmitting
	}
	s.SubmitState = SubmitFailed
	s.LastError = message
	s.touch()
	return nil
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now()
}
