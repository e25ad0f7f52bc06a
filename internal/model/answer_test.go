package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerValue_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    *AnswerValue
		wantErr bool
	}{
		{name: "string", input: `"Siempre"`, want: Single("Siempre")},
		{name: "list", input: `["a","b"]`, want: Multiple("a", "b")},
		{name: "empty list", input: `[]`, want: Multiple()},
		{name: "number", input: `4`, want: Single("4")},
		{name: "null", input: `null`, want: nil},
		{name: "bool", input: `true`, wantErr: true},
		{name: "object", input: `{"a":1}`, wantErr: true},
		{name: "mixed list", input: `["a",1]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body struct {
				Value *AnswerValue `json:"value"`
			}
			err := json.Unmarshal([]byte(`{"value":`+tt.input+`}`), &body)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, body.Value)
		})
	}
}

func TestAnswerStore_MarshalsNullForUnanswered(t *testing.T) {
	store := NewAnswerStore([]Question{{Order: 1}, {Order: 2}})
	store.Set(2, Multiple("x"))

	data, err := json.Marshal(store)
	require.NoError(t, err)

	assert.JSONEq(t, `{"entries":[{"order":1,"value":null},{"order":2,"value":["x"]}]}`, string(data))
}

func TestCompletionResponse_Result(t *testing.T) {
	var resp CompletionResponse
	require.NoError(t, json.Unmarshal([]byte(`{"respuesta":{"nivelRiesgo":"moderado","puntajeTotal":17},"pdfUrl":"https://cdn.test/r.pdf"}`), &resp))

	assert.Equal(t, &CompletionResult{RiskLevel: "moderado", TotalScore: 17, DocumentURL: "https://cdn.test/r.pdf"}, resp.Result())
}

func TestSurveyEnvelope_AcceptsBothIDKeys(t *testing.T) {
	var withUnderscore, plain SurveyEnvelope
	require.NoError(t, json.Unmarshal([]byte(`{"survey":{"_id":"abc","titulo":"T","preguntas":[{"orden":1,"texto":"q","tipo":"texto_libre"}]}}`), &withUnderscore))
	require.NoError(t, json.Unmarshal([]byte(`{"survey":{"id":"def","activa":false,"preguntas":[]}}`), &plain))

	s := withUnderscore.Unwrap()
	require.NotNil(t, s)
	assert.Equal(t, "abc", s.ID)
	assert.Equal(t, "T", s.Title)
	assert.True(t, s.IsActive())
	require.Len(t, s.Questions, 1)
	assert.Equal(t, QuestionTypeFreeText, s.Questions[0].Type)

	p := plain.Unwrap()
	assert.Equal(t, "def", p.ID)
	assert.False(t, p.IsActive())

	assert.Nil(t, (&SurveyEnvelope{}).Unwrap())
}
