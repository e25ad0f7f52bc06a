package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SurveyLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safehaven_survey_loads_total",
			Help: "Survey definition loads by outcome",
		},
		[]string{"outcome"},
	)

	SurveySubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safehaven_survey_submissions_total",
			Help: "Survey completion submissions by outcome",
		},
		[]string{"outcome"},
	)

	SubmissionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "safehaven_survey_submission_duration_seconds",
			Help:    "Duration of the backend completion call in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "safehaven_survey_sessions_active",
			Help: "Survey sessions started and not yet torn down by this replica",
		},
	)

	ToastsShown = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safehaven_toasts_shown_total",
			Help: "Toast notifications shown by severity",
		},
		[]string{"severity"},
	)
)
