package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Session is the ephemeral per-connection state tracked by the hub. It
// carries no durable data and dies with the connection.
type Session struct {
	ParticipantID string
	Role          string
}

// Role tags carried by a connected session. Authors may create and close
// polls; participants join and vote.
const (
	RoleAuthor      = "author"
	RoleParticipant = "participant"
)

// Hub maintains the set of connected sessions and routes outbound state to
// them. All writes go through the hub mutex, so only one writer ever
// touches a connection at a time.
type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]*Session
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[*websocket.Conn]*Session),
	}
}

func (h *Hub) AddConnection(conn *websocket.Conn, role string) *Session {
	h.mu.Lock()
	defer h.mu.Unlock()

	sess := &Session{Role: role}
	h.conns[conn] = sess
	log.Printf("ws: client connected as %s (total: %d)", role, len(h.conns))
	return sess
}

// BindParticipant attaches a participant identity to an existing session.
func (h *Hub) BindParticipant(conn *websocket.Conn, participantID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sess, ok := h.conns[conn]; ok {
		sess.ParticipantID = participantID
	}
}

func (h *Hub) RemoveConnection(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		conn.Close()
		log.Printf("ws: client disconnected (total: %d)", len(h.conns))
	}
}

// Broadcast fans one message out to every connected session. Connections
// that fail the write are dropped.
func (h *Hub) Broadcast(message WSMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("ws: marshal error: %v", err)
		return
	}

	for conn := range h.conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("ws: write error: %v", err)
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

// Unicast sends one message to a single connection.
func (h *Hub) Unicast(conn *websocket.Conn, message WSMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[conn]; !ok {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("ws: marshal error: %v", err)
		return
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Printf("ws: write error: %v", err)
		conn.Close()
		delete(h.conns, conn)
	}
}
