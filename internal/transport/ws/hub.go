package ws

import (
	"encoding/json"
	"sync"

	"safehaven/internal/logger"
	"safehaven/internal/service"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Server to tab message types
const (
	MsgToast          MessageType = service.EventToast
	MsgToastDismissed MessageType = service.EventToastDismissed
	MsgOpenDocument   MessageType = service.EventOpenDocument
	MsgNavigate       MessageType = service.EventNavigate
	MsgSessionClosed  MessageType = service.EventSessionClosed
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages WebSocket connections for wizard sessions
type Hub struct {
	// Session -> connections; a session may be open in more than one tab
	conns map[string]map[*Connection]struct{}

	mu  sync.RWMutex
	log logger.Logger

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	stop       chan struct{}
	stopOnce   sync.Once
}

// Connection represents a WebSocket connection
type Connection struct {
	SessionID string
	UserID    string // Empty for anonymous sessions
	Send      chan []byte
	Hub       *Hub
}

// BroadcastMessage is a message to broadcast. Disconnect closes the
// session's tabs instead, after everything queued before it. A non-nil
// Target narrows delivery to that one tab.
type BroadcastMessage struct {
	SessionID  string
	Message    *Message
	Disconnect bool
	Target     *Connection
}

// NewHub creates a new WebSocket hub
func NewHub(log logger.Logger) *Hub {
	h := &Hub{
		conns:      make(map[string]map[*Connection]struct{}),
		log:        log.WithFields(map[string]interface{}{"component": "ws_hub"}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
		stop:       make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.SessionID] == nil {
				h.conns[conn.SessionID] = make(map[*Connection]struct{})
			}
			h.conns[conn.SessionID][conn] = struct{}{}
			h.mu.Unlock()
			h.log.Info("tab connected", map[string]interface{}{"session_id": conn.SessionID})

		case conn := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.conns[conn.SessionID]; ok {
				if _, ok := set[conn]; ok {
					delete(set, conn)
					close(conn.Send)
					if len(set) == 0 {
						delete(h.conns, conn.SessionID)
					}
					h.log.Info("tab disconnected", map[string]interface{}{"session_id": conn.SessionID})
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			if msg.Disconnect {
				h.mu.Lock()
				for conn := range h.conns[msg.SessionID] {
					close(conn.Send)
				}
				delete(h.conns, msg.SessionID)
				h.mu.Unlock()
				continue
			}
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)
			for conn := range h.conns[msg.SessionID] {
				if msg.Target != nil && conn != msg.Target {
					continue
				}
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()

		case <-h.stop:
			h.mu.Lock()
			for id, set := range h.conns {
				for conn := range set {
					close(conn.Send)
				}
				delete(h.conns, id)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.stop:
		close(conn.Send)
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.stop:
	}
}

// SendToSession pushes an event to every tab of a session (implements service.Broadcaster)
func (h *Hub) SendToSession(sessionID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	select {
	case h.broadcast <- &BroadcastMessage{
		SessionID: sessionID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}:
	case <-h.stop:
	}
}

// SendToConnection pushes an event to a single tab. It is dropped if the tab
// has gone by the time the hub gets to it.
func (h *Hub) SendToConnection(conn *Connection, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	select {
	case h.broadcast <- &BroadcastMessage{
		SessionID: conn.SessionID,
		Target:    conn,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}:
	case <-h.stop:
	}
}

// DisconnectSession closes every tab of a session (implements service.Broadcaster)
func (h *Hub) DisconnectSession(sessionID string) {
	select {
	case h.broadcast <- &BroadcastMessage{SessionID: sessionID, Disconnect: true}:
	case <-h.stop:
	}
}

// Connections returns the number of open tabs of a session
func (h *Hub) Connections(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[sessionID])
}

// Shutdown closes every connection and stops the hub
func (h *Hub) Shutdown() {
	h.stopOnce.Do(func() { close(h.stop) })
}
