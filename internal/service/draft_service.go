package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"safehaven/internal/logger"
	"safehaven/internal/model"
	"safehaven/internal/repository"
)

var (
	ErrDraftNotFound = errors.New("no saved draft for this survey")
	ErrInvalidDraft  = errors.New("draft is malformed")
)

const maxDraftAnswers = 500

// DraftService saves and restores partial answer sets. The wizard session
// never reads drafts; the tab decides whether to replay one.
type DraftService struct {
	repo   repository.DraftRepo
	maxAge time.Duration
	now    func() time.Time
	log    logger.Logger
}

// NewDraftService creates a new draft service
func NewDraftService(repo repository.DraftRepo, maxAge time.Duration, log logger.Logger) *DraftService {
	if maxAge <= 0 {
		maxAge = 7 * 24 * time.Hour
	}
	return &DraftService{
		repo:   repo,
		maxAge: maxAge,
		now:    time.Now,
		log:    log.WithFields(map[string]interface{}{"component": "draft_service"}),
	}
}

// Save stores the answers as the current draft of the survey
func (s *DraftService) Save(ctx context.Context, user *model.CurrentUser, surveyID string, answers []model.AnswerEntry) (*model.Draft, error) {
	if user == nil {
		return nil, ErrAuthRequired
	}
	if surveyID == "" || len(answers) > maxDraftAnswers {
		return nil, ErrInvalidDraft
	}
	seen := make(map[int]bool, len(answers))
	for _, a := range answers {
		if seen[a.Order] {
			return nil, ErrInvalidDraft
		}
		seen[a.Order] = true
	}

	draft := &model.Draft{
		Key:       model.DraftKey(user.ID, surveyID),
		OwnerID:   user.ID,
		SurveyID:  surveyID,
		Answers:   answers,
		Timestamp: s.now().UTC(),
		Version:   model.DraftVersion,
	}
	if draft.Answers == nil {
		draft.Answers = []model.AnswerEntry{}
	}
	if err := s.repo.Save(ctx, draft); err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}
	return draft, nil
}

// Load returns the saved draft. Drafts from another envelope version or
// older than the maximum age are deleted and reported as missing.
func (s *DraftService) Load(ctx context.Context, user *model.CurrentUser, surveyID string) (*model.Draft, error) {
	if user == nil {
		return nil, ErrAuthRequired
	}
	key := model.DraftKey(user.ID, surveyID)
	draft, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}
	if draft == nil {
		return nil, ErrDraftNotFound
	}

	if draft.Version != model.DraftVersion || s.now().Sub(draft.Timestamp) > s.maxAge {
		s.log.Info("discarding stale draft", map[string]interface{}{
			"survey_id": surveyID,
			"version":   draft.Version,
			"age":       s.now().Sub(draft.Timestamp).String(),
		})
		if err := s.repo.Delete(ctx, key); err != nil {
			s.log.Warn("failed to delete stale draft", map[string]interface{}{"error": err.Error()})
		}
		return nil, ErrDraftNotFound
	}
	return draft, nil
}

// Clear removes the saved draft, if any
func (s *DraftService) Clear(ctx context.Context, user *model.CurrentUser, surveyID string) error {
	if user == nil {
		return ErrAuthRequired
	}
	if err := s.repo.Delete(ctx, model.DraftKey(user.ID, surveyID)); err != nil {
		return fmt.Errorf("failed to clear draft: %w", err)
	}
	return nil
}
