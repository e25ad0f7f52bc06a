package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safehaven/internal/config"
	"safehaven/internal/logger"
	"safehaven/internal/logger/logtest"
	"safehaven/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *BackendClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewBackendClient(config.BackendConfig{
		BaseURL: srv.URL + "/api/",
		Timeout: 5 * time.Second,
	}, logtest.New(t))
}

func TestBackendClient_GetSurvey(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/surveys/abc123", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"survey":{"_id":"abc123","titulo":"Bienestar","activa":true,
			"preguntas":[{"orden":1,"texto":"¿Dormiste bien?","tipo":"opcion_unica","requerida":true,"opciones":["Siempre","Nunca"]}]}}`)
	})

	survey, err := client.GetSurvey(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", survey.ID)
	assert.Equal(t, "Bienestar", survey.Title)
	require.Len(t, survey.Questions, 1)
	assert.Equal(t, model.QuestionTypeSingleChoice, survey.Questions[0].Type)
	assert.True(t, survey.IsActive())
}

func TestBackendClient_GetSurveyFillsMissingID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"survey":{"titulo":"Sin id","preguntas":[]}}`)
	})

	survey, err := client.GetSurvey(context.Background(), "xyz")
	require.NoError(t, err)
	assert.Equal(t, "xyz", survey.ID)
}

func TestBackendClient_ErrorBodies(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"message field", http.StatusNotFound, `{"message":"Encuesta no encontrada"}`, "Encuesta no encontrada"},
		{"detail field", http.StatusBadRequest, `{"detail":"Encuesta inactiva"}`, "Encuesta inactiva"},
		{"error field", http.StatusInternalServerError, `{"error":"boom"}`, "boom"},
		{"message wins", http.StatusBadRequest, `{"detail":"d","message":"m"}`, "m"},
		{"no body", http.StatusBadGateway, ``, ""},
		{"non json body", http.StatusServiceUnavailable, `<html>down</html>`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			_, err := client.GetSurvey(context.Background(), "abc123")
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}

func TestBackendClient_ConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	client := NewBackendClient(config.BackendConfig{BaseURL: srv.URL, Timeout: time.Second}, logger.NewNoOpLogger())

	_, err := client.GetSurvey(context.Background(), "abc123")
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestBackendClient_CompleteSurvey(t *testing.T) {
	req := model.CompletionRequest{Answers: []model.SubmittedAnswer{
		{QuestionOrder: 1, Value: *model.Single("Siempre")},
		{QuestionOrder: 2, Value: *model.Multiple("a", "b")},
	}}

	tests := []struct {
		name       string
		token      string
		wantHeader bool
	}{
		{"authenticated sends bearer", "tok-1", true},
		{"anonymous sends no header", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/surveys/abc123/complete", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				_, present := r.Header["Authorization"]
				assert.Equal(t, tt.wantHeader, present)
				if tt.wantHeader {
					assert.Equal(t, "Bearer "+tt.token, r.Header.Get("Authorization"))
				}

				body, err := io.ReadAll(r.Body)
				require.NoError(t, err)
				assert.JSONEq(t, `{"respuestas":[{"preguntaOrden":1,"respuesta":"Siempre"},{"preguntaOrden":2,"respuesta":["a","b"]}]}`, string(body))

				json.NewEncoder(w).Encode(map[string]interface{}{
					"respuesta": map[string]interface{}{"nivelRiesgo": "bajo", "puntajeTotal": 3.5},
					"pdfUrl":    "https://files.example/report.pdf",
				})
			})

			result, err := client.CompleteSurvey(context.Background(), "abc123", req, tt.token)
			require.NoError(t, err)
			assert.Equal(t, "bajo", result.RiskLevel)
			assert.Equal(t, 3.5, result.TotalScore)
			assert.Equal(t, "https://files.example/report.pdf", result.DocumentURL)
		})
	}
}

func TestBackendClient_CompleteSurveyHonoursCancel(t *testing.T) {
	entered := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-entered
		cancel()
	}()

	_, err := client.CompleteSurvey(ctx, "abc123", model.CompletionRequest{}, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
