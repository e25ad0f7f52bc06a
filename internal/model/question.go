package model

// QuestionType defines how a question is answered
type QuestionType string

const (
	QuestionTypeSingleChoice   QuestionType = "opcion_unica"    // One label from Options
	QuestionTypeMultipleChoice QuestionType = "opcion_multiple" // Any labels from Options, sent as a list
	QuestionTypeFreeText       QuestionType = "texto_libre"
	QuestionTypeScale          QuestionType = "escala" // One label from Options, rendered as a scale
)

// Question is one step of a survey
type Question struct {
	Order    int          `json:"orden"` // Unique within a survey, defines the sequence
	Prompt   string       `json:"texto"`
	Type     QuestionType `json:"tipo"`
	Required bool         `json:"requerida"`
	Options  []string     `json:"opciones,omitempty"`
}

// IsMultiple reports whether the question takes a list of labels
func (q Question) IsMultiple() bool {
	return q.Type == QuestionTypeMultipleChoice
}

// HasOption reports whether label is one of the declared choices
func (q Question) HasOption(label string) bool {
	for _, o := range q.Options {
		if o == label {
			return true
		}
	}
	return false
}

// IsValid mirrors the question card's valid flag: a multiple-choice answer
// needs a non-empty list, anything else a non-empty value.
func IsValid(q Question, v *AnswerValue) bool {
	if v == nil {
		return false
	}
	if q.IsMultiple() {
		return v.Multi && len(v.Choices) > 0
	}
	return !v.Multi && v.Text != ""
}
