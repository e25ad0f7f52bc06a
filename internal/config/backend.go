package config

import (
	"net/url"
	"strings"
	"time"
)

// BackendConfig points the gateway at the SafeHaven REST backend
type BackendConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// IsConfigured returns true if a backend URL is set
func (c BackendConfig) IsConfigured() bool {
	return c.BaseURL != ""
}

// SurveyEndpoint returns the full GET endpoint for a survey definition
func (c BackendConfig) SurveyEndpoint(surveyID string) string {
	return c.base() + "/surveys/" + url.PathEscape(surveyID)
}

// CompleteEndpoint returns the full POST endpoint for a survey completion
func (c BackendConfig) CompleteEndpoint(surveyID string) string {
	return c.SurveyEndpoint(surveyID) + "/complete"
}

func (c BackendConfig) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
