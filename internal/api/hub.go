package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"feltengine/internal/sink"
)

func envelopeOf(msgType string, data any) sink.Envelope {
	return sink.Envelope{Type: msgType, Data: data, Timestamp: time.Now().UnixMilli()}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub fans out envelopes to every connected player/viewer/admin
// websocket and implements sink.ConnectionSink. Grounded on the
// original implementation's ConnectionManager: three independent
// connection sets (player_id -> conn, viewer set, admin set), with a
// failing write dropping that connection rather than blocking the
// caller.
type Hub struct {
	mu      sync.Mutex
	players map[string]*websocket.Conn
	viewers map[*websocket.Conn]bool
	admins  map[*websocket.Conn]bool
}

func NewHub() *Hub {
	return &Hub{
		players: make(map[string]*websocket.Conn),
		viewers: make(map[*websocket.Conn]bool),
		admins:  make(map[*websocket.Conn]bool),
	}
}

func (h *Hub) AddPlayer(playerID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.players[playerID] = conn
}

func (h *Hub) RemovePlayer(playerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.players, playerID)
}

func (h *Hub) AddViewer(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.viewers[conn] = true
}

func (h *Hub) RemoveViewer(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.viewers, conn)
}

func (h *Hub) AddAdmin(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.admins[conn] = true
}

func (h *Hub) RemoveAdmin(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.admins, conn)
}

func (h *Hub) SendToPlayer(playerID string, env sink.Envelope) {
	h.mu.Lock()
	conn, ok := h.players[playerID]
	h.mu.Unlock()
	if !ok {
		return
	}
	if err := conn.WriteJSON(env); err != nil {
		log.Printf("[hub] write to player %s failed: %v", playerID, err)
		h.RemovePlayer(playerID)
	}
}

func (h *Hub) BroadcastToViewers(env sink.Envelope) {
	h.mu.Lock()
	targets := make([]*websocket.Conn, 0, len(h.viewers))
	for c := range h.viewers {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	for _, c := range targets {
		if err := c.WriteJSON(env); err != nil {
			log.Printf("[hub] broadcast to viewer failed: %v", err)
			h.RemoveViewer(c)
		}
	}
}

func (h *Hub) BroadcastToAdmins(env sink.Envelope) {
	h.mu.Lock()
	targets := make([]*websocket.Conn, 0, len(h.admins))
	for c := range h.admins {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	for _, c := range targets {
		if err := c.WriteJSON(env); err != nil {
			log.Printf("[hub] broadcast to admin failed: %v", err)
			h.RemoveAdmin(c)
		}
	}
}

// upgrade promotes an HTTP request to a websocket connection.
func upgrade(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return upgrader.Upgrade(w, r, nil)
}

func writeJSONMessage(conn *websocket.Conn, msgType string, data any) {
	_ = conn.WriteJSON(map[string]any{"type": msgType, "data": data})
}

func decodeInbound(raw []byte) (string, json.RawMessage, error) {
	var envelope struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return "", nil, err
	}
	return envelope.Type, envelope.Data, nil
}

func unmarshalInto(data json.RawMessage, dest any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dest)
}
