package model

import "time"

// ToastSeverity selects how a toast is rendered
type ToastSeverity string

const (
	ToastSuccess ToastSeverity = "success"
	ToastError   ToastSeverity = "error"
)

// Toast is a transient, auto-dismissing notification for one session
type Toast struct {
	ID        string        `json:"id"`
	Message   string        `json:"message"`
	Severity  ToastSeverity `json:"severity"`
	ShownAt   time.Time     `json:"shownAt"`
	ExpiresAt time.Time     `json:"expiresAt"`
}
