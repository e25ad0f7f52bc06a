package model

import "time"

// DraftVersion is the envelope version written by this gateway
const DraftVersion = "1.0"

// Draft is a saved partial answer set for one survey. It is independent of
// the wizard session and is never read by the submit flow.
type Draft struct {
	Key       string        `json:"-" bson:"_id"`
	OwnerID   string        `json:"-" bson:"ownerId"`
	SurveyID  string        `json:"surveyId" bson:"surveyId"`
	Answers   []AnswerEntry `json:"answers" bson:"answers"`
	Timestamp time.Time     `json:"timestamp" bson:"timestamp"`
	Version   string        `json:"version" bson:"version"`
}

// DraftKey namespaces a draft by owner and survey
func DraftKey(ownerID, surveyID string) string {
	return ownerID + ":survey_draft_" + surveyID
}
