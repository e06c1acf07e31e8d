package api

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// Envelope is the wire frame for every WebSocket event in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// errorPayload is the payload of an "error" event.
type errorPayload struct {
	Msg string `json:"msg"`
}

// client wraps a connection with serialized writes; broadcasts and the
// reader's own replies arrive from different goroutines.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(event string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	data, err := json.Marshal(Envelope{Type: event, Payload: body})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// RoomMembers resolves the connections currently joined to a room.
type RoomMembers interface {
	Members(roomID string) []string
}

// ConnTable tracks live WebSocket connections and implements the fan-out
// sink used by the relay and the coordinator.
type ConnTable struct {
	mu      sync.RWMutex
	clients map[string]*client
	members RoomMembers
	logger  *slog.Logger
}

// NewConnTable creates an empty connection table.
func NewConnTable(members RoomMembers) *ConnTable {
	return &ConnTable{
		clients: make(map[string]*client),
		members: members,
		logger:  slog.Default(),
	}
}

// Add registers a connection under its identifier.
func (t *ConnTable) Add(connID string, conn *websocket.Conn) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clients[connID] = &client{conn: conn}
}

// Remove drops a connection from the table.
func (t *ConnTable) Remove(connID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.clients, connID)
}

// SendTo delivers an event to a single connection. Send failures are logged
// and dropped; the reader loop will notice a dead connection on its own.
func (t *ConnTable) SendTo(connID, event string, payload any) {
	t.mu.RLock()
	c, ok := t.clients[connID]
	t.mu.RUnlock()
	if !ok {
		return
	}
	if err := c.send(event, payload); err != nil {
		t.logger.Error("websocket send failed", "conn_id", connID, "event", event, "error", err)
	}
}

// BroadcastToRoom delivers an event to every connection joined to a room,
// resolving membership from the session registry at send time.
func (t *ConnTable) BroadcastToRoom(roomID, event string, payload any) {
	for _, connID := range t.members.Members(roomID) {
		t.SendTo(connID, event, payload)
	}
}

// Len returns the number of tracked connections.
func (t *ConnTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.clients)
}
