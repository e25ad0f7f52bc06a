package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"safehaven/internal/cache"
	"safehaven/internal/config"
	"safehaven/internal/logger"
	"safehaven/internal/metrics"
	"safehaven/internal/model"
)

var (
	ErrSessionNotFound = errors.New("session not found or expired")
	ErrSessionClosed   = errors.New("session was closed")
)

const (
	submitFailedMessage      = "Could not complete the survey. Please try again."
	submitInterruptedMessage = "The submission was interrupted. Please try again."
)

// SubmitError is a failed completion call. The error toast has already been
// shown when it is returned.
type SubmitError struct {
	Message string
	Toast   model.Toast
	Err     error
}

func (e *SubmitError) Error() string {
	return "survey submission failed: " + e.Message
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// SubmitOutcome is what a successful submission hands back to the tab
type SubmitOutcome struct {
	Result       *model.CompletionResult `json:"result"`
	DocumentURL  string                  `json:"documentUrl,omitempty"`
	Toast        model.Toast             `json:"toast"`
	RedirectPath string                  `json:"redirectPath"`
	RedirectIn   int64                   `json:"redirectInMs"`
}

// SessionService drives the survey wizard: load, answer, navigate, submit
type SessionService struct {
	loader      *SurveyLoader
	backend     Backend
	cache       cache.SessionCache
	toasts      *ToastService
	broadcaster Broadcaster
	workflow    config.WorkflowConfig
	auth        config.AuthConfig
	lockTTL     time.Duration
	log         logger.Logger

	mu        sync.Mutex
	locks     map[string]*sync.Mutex
	inflight  map[string]context.CancelFunc
	redirects map[string]*time.Timer
}

// NewSessionService creates a new session service
func NewSessionService(
	loader *SurveyLoader,
	backend Backend,
	sessionCache cache.SessionCache,
	toasts *ToastService,
	broadcaster Broadcaster,
	cfg *config.Config,
	log logger.Logger,
) *SessionService {
	lockTTL := 2 * cfg.Backend.Timeout
	if lockTTL <= 0 {
		lockTTL = time.Minute
	}
	return &SessionService{
		loader:      loader,
		backend:     backend,
		cache:       sessionCache,
		toasts:      toasts,
		broadcaster: broadcaster,
		workflow:    cfg.Workflow,
		auth:        cfg.Auth,
		lockTTL:     lockTTL,
		log:         log.WithFields(map[string]interface{}{"component": "session_service"}),
		locks:       make(map[string]*sync.Mutex),
		inflight:    make(map[string]context.CancelFunc),
		redirects:   make(map[string]*time.Timer),
	}
}

// Start loads the survey and opens a session positioned on its first question
func (s *SessionService) Start(ctx context.Context, surveyID string, user *model.CurrentUser) (*SessionView, error) {
	if surveyID == "" {
		return nil, &LoadError{Kind: ErrSurveyNotFound, Detail: "missing survey id"}
	}
	survey, err := s.loader.Load(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	ownerID := ""
	if user != nil {
		ownerID = user.ID
	}
	sess, err := model.NewSession(uuid.New().String(), survey, ownerID)
	if err != nil {
		return nil, &LoadError{Kind: ErrSurveyInactive, Detail: err.Error()}
	}
	if err := s.cache.Set(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	metrics.ActiveSessions.Inc()
	s.log.Info("session started", map[string]interface{}{
		"session_id": sess.ID,
		"survey_id":  sess.SurveyID,
		"questions":  len(sess.Survey.Questions),
		"anonymous":  ownerID == "",
	})
	return s.view(sess), nil
}

// Get returns the session view
func (s *SessionService) Get(ctx context.Context, id string, user *model.CurrentUser) (*SessionView, error) {
	sess, err := s.load(ctx, id, user)
	if err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

// SetAnswer replaces the answer of one question
func (s *SessionService) SetAnswer(ctx context.Context, id string, order int, v *model.AnswerValue, user *model.CurrentUser) (*SessionView, error) {
	return s.mutate(ctx, id, user, func(sess *model.Session) error {
		return sess.SetAnswer(order, v)
	})
}

// Next advances to the following question
func (s *SessionService) Next(ctx context.Context, id string, user *model.CurrentUser) (*SessionView, error) {
	return s.mutate(ctx, id, user, func(sess *model.Session) error {
		return sess.Advance()
	})
}

// Prev goes back one question
func (s *SessionService) Prev(ctx context.Context, id string, user *model.CurrentUser) (*SessionView, error) {
	return s.mutate(ctx, id, user, func(sess *model.Session) error {
		return sess.Retreat()
	})
}

// Submit posts the answers once. The session mutex is released during the
// backend call; the persisted submitting state and the Redis lock keep other
// requests out meanwhile.
func (s *SessionService) Submit(ctx context.Context, id string, user *model.CurrentUser) (*SubmitOutcome, error) {
	if user == nil && !s.auth.AllowAnonymousCompletion {
		return nil, ErrAuthRequired
	}

	callCtx, payload, surveyID, err := s.beginSubmit(ctx, id, user)
	if err != nil {
		return nil, err
	}

	token := ""
	if user != nil {
		token = user.Token
	}

	start := time.Now()
	result, callErr := s.backend.CompleteSurvey(callCtx, surveyID, payload, token)
	metrics.SubmissionDuration.Observe(time.Since(start).Seconds())
	cancelled := callCtx.Err() != nil
	s.endCall(id)
	ctx = context.WithoutCancel(ctx)

	if cancelled {
		s.abandonSubmit(ctx, id)
		metrics.SurveySubmissions.WithLabelValues("cancelled").Inc()
		s.log.Info("late submission result discarded", map[string]interface{}{"session_id": id})
		return nil, ErrSessionClosed
	}

	if callErr != nil {
		return nil, s.failSubmit(ctx, id, callErr)
	}
	return s.completeSubmit(ctx, id, result)
}

func (s *SessionService) beginSubmit(ctx context.Context, id string, user *model.CurrentUser) (context.Context, model.CompletionRequest, string, error) {
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	sess, err := s.load(ctx, id, user)
	if err != nil {
		return nil, model.CompletionRequest{}, "", err
	}
	if err := sess.BeginSubmit(); err != nil {
		return nil, model.CompletionRequest{}, "", err
	}

	ok, err := s.cache.AcquireSubmitLock(ctx, id, s.lockTTL)
	if err != nil {
		return nil, model.CompletionRequest{}, "", fmt.Errorf("failed to acquire submit lock: %w", err)
	}
	if !ok {
		return nil, model.CompletionRequest{}, "", model.ErrSubmitInProgress
	}
	if err := s.cache.Set(ctx, sess); err != nil {
		_ = s.cache.ReleaseSubmitLock(ctx, id)
		return nil, model.CompletionRequest{}, "", fmt.Errorf("failed to store session: %w", err)
	}

	// Outlives the HTTP request; only teardown cancels it
	callCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.mu.Lock()
	s.inflight[id] = cancel
	s.mu.Unlock()

	s.log.Info("submitting survey", map[string]interface{}{
		"session_id": id,
		"survey_id":  sess.SurveyID,
		"answers":    sess.Answers.Answered(),
		"anonymous":  user == nil,
	})
	return callCtx, sess.Answers.Payload(), sess.SurveyID, nil
}

func (s *SessionService) completeSubmit(ctx context.Context, id string, result *model.CompletionResult) (*SubmitOutcome, error) {
	mu := s.lockFor(id)
	mu.Lock()
	sess, err := s.cache.Get(ctx, id)
	if err == nil {
		err = sess.CompleteSubmit(result)
	}
	if err == nil {
		err = s.cache.Set(ctx, sess)
	}
	_ = s.cache.ReleaseSubmitLock(ctx, id)
	mu.Unlock()
	if errors.Is(err, cache.ErrSessionNotFound) {
		return nil, ErrSessionClosed
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store submission result: %w", err)
	}

	metrics.SurveySubmissions.WithLabelValues("ok").Inc()
	s.log.Info("survey completed", map[string]interface{}{
		"session_id":   id,
		"survey_id":    sess.SurveyID,
		"risk_level":   result.RiskLevel,
		"score":        result.TotalScore,
		"has_document": result.DocumentURL != "",
	})

	if result.DocumentURL != "" {
		s.broadcaster.SendToSession(id, EventOpenDocument, map[string]string{"url": result.DocumentURL})
	}
	toast := s.toasts.Show(id, model.ToastSuccess,
		fmt.Sprintf("Survey completed. Risk level: %s, score: %g", result.RiskLevel, result.TotalScore))
	s.scheduleRedirect(id)

	return &SubmitOutcome{
		Result:       result,
		DocumentURL:  result.DocumentURL,
		Toast:        toast,
		RedirectPath: s.workflow.RedirectPath,
		RedirectIn:   s.workflow.RedirectDelay.Milliseconds(),
	}, nil
}

func (s *SessionService) failSubmit(ctx context.Context, id string, callErr error) error {
	message := submitFailedMessage
	var apiErr *APIError
	if errors.As(callErr, &apiErr) && apiErr.Message != "" {
		message = apiErr.Message
	}

	mu := s.lockFor(id)
	mu.Lock()
	sess, err := s.cache.Get(ctx, id)
	if err == nil {
		err = sess.FailSubmit(message)
	}
	if err == nil {
		err = s.cache.Set(ctx, sess)
	}
	_ = s.cache.ReleaseSubmitLock(ctx, id)
	mu.Unlock()
	if errors.Is(err, cache.ErrSessionNotFound) {
		return ErrSessionClosed
	}
	if err != nil {
		s.log.Error("failed to store submission failure", map[string]interface{}{
			"session_id": id,
			"error":      err.Error(),
		})
	}

	metrics.SurveySubmissions.WithLabelValues("failed").Inc()
	s.log.Warn("survey submission failed", map[string]interface{}{
		"session_id": id,
		"error":      callErr.Error(),
	})
	toast := s.toasts.Show(id, model.ToastError, message)
	return &SubmitError{Message: message, Toast: toast, Err: callErr}
}

// abandonSubmit puts a session whose call was cancelled back into a
// retryable state, unless teardown already removed it.
func (s *SessionService) abandonSubmit(ctx context.Context, id string) {
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()
	defer s.cache.ReleaseSubmitLock(ctx, id)

	sess, err := s.cache.Get(ctx, id)
	if err != nil {
		return
	}
	if sess.FailSubmit("submission cancelled") == nil {
		_ = s.cache.Set(ctx, sess)
	}
}

func (s *SessionService) scheduleRedirect(id string) {
	path := s.workflow.RedirectPath
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.redirects[id]; ok {
		old.Stop()
	}
	s.redirects[id] = time.AfterFunc(s.workflow.RedirectDelay, func() {
		s.mu.Lock()
		delete(s.redirects, id)
		s.mu.Unlock()
		s.broadcaster.SendToSession(id, EventNavigate, map[string]string{"path": path})
	})
}

// Exit is the wizard's exit control. It is not available while a
// submission is out.
func (s *SessionService) Exit(ctx context.Context, id string, user *model.CurrentUser) error {
	sess, err := s.load(ctx, id, user)
	if err != nil {
		return err
	}
	if sess.SubmitState == model.SubmitSubmitting {
		return model.ErrSubmitInProgress
	}
	return s.teardown(ctx, id)
}

// Close tears the session down, cancelling any in-flight backend call
func (s *SessionService) Close(ctx context.Context, id string, user *model.CurrentUser) error {
	if _, err := s.load(ctx, id, user); err != nil {
		return err
	}
	return s.teardown(ctx, id)
}

func (s *SessionService) teardown(ctx context.Context, id string) error {
	s.mu.Lock()
	if cancel, ok := s.inflight[id]; ok {
		cancel()
		delete(s.inflight, id)
	}
	if t, ok := s.redirects[id]; ok {
		t.Stop()
		delete(s.redirects, id)
	}
	s.mu.Unlock()

	s.toasts.Clear(id)
	mu := s.lockFor(id)
	mu.Lock()
	removed, err := s.cache.Delete(ctx, id)
	mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	s.mu.Lock()
	delete(s.locks, id)
	s.mu.Unlock()

	// A concurrent teardown may have got there first
	if removed {
		metrics.ActiveSessions.Dec()
	}
	s.broadcaster.SendToSession(id, EventSessionClosed, map[string]string{"sessionId": id})
	s.broadcaster.DisconnectSession(id)
	s.log.Info("session closed", map[string]interface{}{"session_id": id})
	return nil
}

// Shutdown cancels every in-flight call and pending redirect
func (s *SessionService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, cancel := range s.inflight {
		cancel()
		delete(s.inflight, id)
	}
	for id, t := range s.redirects {
		t.Stop()
		delete(s.redirects, id)
	}
}

// Toast returns the visible toast of a session the caller may see
func (s *SessionService) Toast(ctx context.Context, id string, user *model.CurrentUser) (*model.Toast, error) {
	if _, err := s.load(ctx, id, user); err != nil {
		return nil, err
	}
	t, _ := s.toasts.Current(id)
	return t, nil
}

// DismissToast closes the visible toast
func (s *SessionService) DismissToast(ctx context.Context, id string, user *model.CurrentUser) error {
	if _, err := s.load(ctx, id, user); err != nil {
		return err
	}
	s.toasts.Dismiss(id)
	return nil
}

// Authorize checks that the caller may attach to the session
func (s *SessionService) Authorize(ctx context.Context, id string, user *model.CurrentUser) error {
	_, err := s.load(ctx, id, user)
	return err
}

func (s *SessionService) mutate(ctx context.Context, id string, user *model.CurrentUser, fn func(*model.Session) error) (*SessionView, error) {
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	sess, err := s.load(ctx, id, user)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return s.view(sess), nil
}

func (s *SessionService) load(ctx context.Context, id string, user *model.CurrentUser) (*model.Session, error) {
	sess, err := s.cache.Get(ctx, id)
	if errors.Is(err, cache.ErrSessionNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if err := CheckOwner(sess, user); err != nil {
		return nil, err
	}
	if sess.SubmitState == model.SubmitSubmitting {
		if err := s.recoverInterrupted(ctx, sess); err != nil {
			return nil, err
		}
	}
	return sess, nil
}

// recoverInterrupted moves a submitting session to failed when nobody holds
// its submit lock any more: the call was not made from this process and the
// lock TTL ran out, so the replica that made it is gone. Only the loaded copy
// changes; callers holding the session mutex persist it with their write.
func (s *SessionService) recoverInterrupted(ctx context.Context, sess *model.Session) error {
	s.mu.Lock()
	_, local := s.inflight[sess.ID]
	s.mu.Unlock()
	if local {
		return nil
	}

	held, err := s.cache.SubmitLockHeld(ctx, sess.ID)
	if err != nil {
		return fmt.Errorf("failed to check submit lock: %w", err)
	}
	if held {
		return nil
	}

	s.log.Warn("recovering interrupted submission", map[string]interface{}{
		"session_id": sess.ID,
		"since":      sess.UpdatedAt,
	})
	return sess.FailSubmit(submitInterruptedMessage)
}

func (s *SessionService) endCall(id string) {
	s.mu.Lock()
	if cancel, ok := s.inflight[id]; ok {
		cancel()
		delete(s.inflight, id)
	}
	s.mu.Unlock()
}

func (s *SessionService) lockFor(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	mu, ok := s.locks[id]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[id] = mu
	}
	return mu
}

func (s *SessionService) view(sess *model.Session) *SessionView {
	t, _ := s.toasts.Current(sess.ID)
	return NewSessionView(sess, t)
}
