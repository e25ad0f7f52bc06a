package service

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"safehaven/internal/logger"
	"safehaven/internal/metrics"
	"safehaven/internal/model"
)

type toastSlot struct {
	toast model.Toast
	timer *time.Timer
}

// ToastService keeps at most one visible toast per session
type ToastService struct {
	duration    time.Duration
	broadcaster Broadcaster
	log         logger.Logger

	mu    sync.Mutex
	slots map[string]*toastSlot
}

// NewToastService creates a new toast service
func NewToastService(duration time.Duration, broadcaster Broadcaster, log logger.Logger) *ToastService {
	if duration <= 0 {
		duration = 4 * time.Second
	}
	return &ToastService{
		duration:    duration,
		broadcaster: broadcaster,
		log:         log,
		slots:       make(map[string]*toastSlot),
	}
}

// Show replaces any visible toast of the session and schedules its removal
func (s *ToastService) Show(sessionID string, severity model.ToastSeverity, message string) model.Toast {
	now := time.Now()
	toast := model.Toast{
		ID:        uuid.New().String(),
		Message:   message,
		Severity:  severity,
		ShownAt:   now,
		ExpiresAt: now.Add(s.duration),
	}

	s.mu.Lock()
	if old, ok := s.slots[sessionID]; ok {
		old.timer.Stop()
	}
	s.slots[sessionID] = &toastSlot{
		toast: toast,
		timer: time.AfterFunc(s.duration, func() { s.expire(sessionID, toast.ID) }),
	}
	s.mu.Unlock()

	metrics.ToastsShown.WithLabelValues(string(severity)).Inc()
	s.log.Debug("toast shown", map[string]interface{}{
		"session_id": sessionID,
		"severity":   string(severity),
	})
	s.broadcaster.SendToSession(sessionID, EventToast, toast)
	return toast
}

// Dismiss closes the visible toast, if any
func (s *ToastService) Dismiss(sessionID string) bool {
	s.mu.Lock()
	slot, ok := s.slots[sessionID]
	if ok {
		slot.timer.Stop()
		delete(s.slots, sessionID)
	}
	s.mu.Unlock()

	if ok {
		s.broadcaster.SendToSession(sessionID, EventToastDismissed, map[string]string{"id": slot.toast.ID})
	}
	return ok
}

// Current returns the visible toast of the session
func (s *ToastService) Current(sessionID string) (*model.Toast, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[sessionID]
	if !ok {
		return nil, false
	}
	t := slot.toast
	return &t, true
}

// Clear drops the session's toast without notifying the tab
func (s *ToastService) Clear(sessionID string) {
	s.mu.Lock()
	if slot, ok := s.slots[sessionID]; ok {
		slot.timer.Stop()
		delete(s.slots, sessionID)
	}
	s.mu.Unlock()
}

// expire only removes the toast it was scheduled for
func (s *ToastService) expire(sessionID, toastID string) {
	s.mu.Lock()
	slot, ok := s.slots[sessionID]
	if !ok || slot.toast.ID != toastID {
		s.mu.Unlock()
		return
	}
	delete(s.slots, sessionID)
	s.mu.Unlock()

	s.broadcaster.SendToSession(sessionID, EventToastDismissed, map[string]string{"id": toastID})
}
