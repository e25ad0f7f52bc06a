package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrInvalidAnswerJSON = errors.New("answer must be a string, a number, a list of strings or null")

// AnswerValue is either a single label/text or, for multiple-choice, a list
// of labels. A nil *AnswerValue means unanswered.
type AnswerValue struct {
	Text    string
	Choices []string
	Multi   bool
}

// Single builds a scalar answer
func Single(text string) *AnswerValue {
	return &AnswerValue{Text: text}
}

// Multiple builds a list answer
func Multiple(choices ...string) *AnswerValue {
	return &AnswerValue{Choices: append([]string{}, choices...), Multi: true}
}

// IsEmpty reports whether the value carries nothing
func (v *AnswerValue) IsEmpty() bool {
	if v == nil {
		return true
	}
	if v.Multi {
		return len(v.Choices) == 0
	}
	return v.Text == ""
}

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	if v.Multi {
		if v.Choices == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.Choices)
	}
	return json.Marshal(v.Text)
}

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ErrInvalidAnswerJSON
	}
	switch data[0] {
	case 'n':
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = AnswerValue{Text: s}
	case '[':
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAnswerJSON, err)
		}
		*v = AnswerValue{Choices: list, Multi: true}
	default:
		// Scale answers sometimes arrive as bare numbers
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return ErrInvalidAnswerJSON
		}
		*v = AnswerValue{Text: n.String()}
	}
	return nil
}

// AnswerEntry is one slot of the answer store
type AnswerEntry struct {
	Order int          `json:"order"`
	Value *AnswerValue `json:"value"`
}

// AnswerStore maps question order to the current answer, keeping the order
// in which the slots were seeded.
type AnswerStore struct {
	Entries []AnswerEntry `json:"entries"`
}

// NewAnswerStore seeds one unanswered slot per question
func NewAnswerStore(questions []Question) AnswerStore {
	entries := make([]AnswerEntry, 0, len(questions))
	for _, q := range questions {
		entries = append(entries, AnswerEntry{Order: q.Order})
	}
	return AnswerStore{Entries: entries}
}

// Len returns the number of slots
func (s *AnswerStore) Len() int {
	return len(s.Entries)
}

// Get returns the stored value and whether the order has a slot
func (s *AnswerStore) Get(order int) (*AnswerValue, bool) {
	for _, e := range s.Entries {
		if e.Order == order {
			return e.Value, true
		}
	}
	return nil, false
}

// Set replaces the value of an existing slot
func (s *AnswerStore) Set(order int, v *AnswerValue) bool {
	for i := range s.Entries {
		if s.Entries[i].Order == order {
			s.Entries[i].Value = v
			return true
		}
	}
	return false
}

// Complete reports whether every slot holds an answer
func (s *AnswerStore) Complete() bool {
	for _, e := range s.Entries {
		if e.Value == nil {
			return false
		}
	}
	return true
}

// Answered counts the slots holding an answer
func (s *AnswerStore) Answered() int {
	n := 0
	for _, e := range s.Entries {
		if e.Value != nil {
			n++
		}
	}
	return n
}

// Payload compacts the answered slots into the completion request, in store
// order. Unanswered slots are dropped.
func (s *AnswerStore) Payload() CompletionRequest {
	out := CompletionRequest{Answers: make([]SubmittedAnswer, 0, len(s.Entries))}
	for _, e := range s.Entries {
		if e.Value == nil {
			continue
		}
		out.Answers = append(out.Answers, SubmittedAnswer{QuestionOrder: e.Order, Value: *e.Value})
	}
	return out
}

// SubmittedAnswer is one element of the completion payload
type SubmittedAnswer struct {
	QuestionOrder int         `json:"preguntaOrden"`
	Value         AnswerValue `json:"respuesta"`
}

// CompletionRequest is the body of POST /surveys/{id}/complete
type CompletionRequest struct {
	Answers []SubmittedAnswer `json:"respuestas"`
}

// CompletionResult is what the backend computed from the answers
type CompletionResult struct {
	RiskLevel   string  `json:"nivelRiesgo"`
	TotalScore  float64 `json:"puntajeTotal"`
	DocumentURL string  `json:"pdfUrl,omitempty"`
}

// CompletionResponse is the body returned by POST /surveys/{id}/complete
type CompletionResponse struct {
	Response struct {
		RiskLevel  string  `json:"nivelRiesgo"`
		TotalScore float64 `json:"puntajeTotal"`
	} `json:"respuesta"`
	PDFURL string `json:"pdfUrl,omitempty"`
}

// Result flattens the response
func (r *CompletionResponse) Result() *CompletionResult {
	return &CompletionResult{
		RiskLevel:   r.Response.RiskLevel,
		TotalScore:  r.Response.TotalScore,
		DocumentURL: r.PDFURL,
	}
}
