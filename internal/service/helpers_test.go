package service

import (
	"context"
	"sync"

	"safehaven/internal/model"
)

type fakeBackend struct {
	getSurvey func(ctx context.Context, id string) (*model.Survey, error)
	complete  func(ctx context.Context, id string, req model.CompletionRequest, token string) (*model.CompletionResult, error)
}

func (f *fakeBackend) GetSurvey(ctx context.Context, id string) (*model.Survey, error) {
	return f.getSurvey(ctx, id)
}

func (f *fakeBackend) CompleteSurvey(ctx context.Context, id string, req model.CompletionRequest, token string) (*model.CompletionResult, error) {
	return f.complete(ctx, id, req, token)
}

type sentEvent struct {
	SessionID string
	Type      string
	Payload   interface{}
}

type fakeBroadcaster struct {
	mu           sync.Mutex
	events       []sentEvent
	disconnected []string
}

func (f *fakeBroadcaster) SendToSession(sessionID, msgType string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, sentEvent{SessionID: sessionID, Type: msgType, Payload: payload})
}

func (f *fakeBroadcaster) DisconnectSession(sessionID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnected = append(f.disconnected, sessionID)
}

func (f *fakeBroadcaster) Events(msgType string) []sentEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentEvent
	for _, e := range f.events {
		if e.Type == msgType {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeBroadcaster) Disconnected() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.disconnected...)
}

func testSurvey() *model.Survey {
	return &model.Survey{
		ID:                "abc123",
		Title:             "Bienestar semanal",
		Description:       "Cómo te sentiste esta semana",
		Category:          "bienestar",
		EstimatedDuration: 5,
		Questions: []model.Question{
			{Order: 1, Prompt: "¿Dormiste bien?", Type: model.QuestionTypeSingleChoice, Required: true, Options: []string{"Siempre", "A veces", "Nunca"}},
			{Order: 2, Prompt: "¿Qué te preocupa?", Type: model.QuestionTypeMultipleChoice, Required: true, Options: []string{"a", "b", "c"}},
		},
	}
}

func testUser(id string) *model.CurrentUser {
	return &model.CurrentUser{ID: id, Token: "tok-" + id}
}
