package service

// Push event types sent to the session's browser tab
const (
	EventToast          = "toast"
	EventToastDismissed = "toast_dismissed"
	EventOpenDocument   = "open_document"
	EventNavigate       = "navigate"
	EventSessionClosed  = "session_closed"
)

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	SendToSession(sessionID string, msgType string, payload interface{})
	DisconnectSession(sessionID string)
}

// NopBroadcaster drops every event
type NopBroadcaster struct{}

func (NopBroadcaster) SendToSession(string, string, interface{}) {}
func (NopBroadcaster) DisconnectSession(string)                  {}
