package api

import (
	"context"
	"encoding/json"
	"net"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// Inbound event payloads over the real-time transport.

type joinRequest struct {
	RoomID   string `json:"room_id"`
	Pin      string `json:"pin"`
	Nickname string `json:"nickname"`
}

type textRequest struct {
	Msg       string `json:"msg"`
	Timestamp string `json:"timestamp,omitempty"`
}

type fileRequest struct {
	Filename  string `json:"filename"`
	Filetype  string `json:"filetype"`
	File      []byte `json:"file"`
	Timestamp string `json:"timestamp,omitempty"`
}

// HandleWebSocket runs the read loop for one connection. Each connection gets
// an opaque identifier; disconnect cleanup runs unconditionally when the loop
// exits, whatever state the join protocol reached.
func (h *Handlers) HandleWebSocket(c *websocket.Conn) {
	connID := uuid.New().String()
	origin := remoteOrigin(c)

	h.conns.Add(connID, c)
	limiter := newRateLimiter(burstSize, messagesPerSecond)

	defer func() {
		h.conns.Remove(connID)
		h.coordinator.Disconnect(context.Background(), connID)
	}()

	h.logger.Info("websocket connected", "conn_id", connID, "origin", origin)

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Error("websocket error", "conn_id", connID, "error", err)
			}
			break
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			h.sendError(connID, "invalid message format")
			continue
		}

		switch env.Type {
		case "join_room":
			h.handleJoin(connID, origin, env.Payload)
		case "message":
			if !limiter.allow() {
				h.sendError(connID, "rate limit exceeded, please slow down")
				continue
			}
			h.handleText(connID, env.Payload)
		case "file":
			if !limiter.allow() {
				h.sendError(connID, "rate limit exceeded, please slow down")
				continue
			}
			h.handleFile(connID, env.Payload)
		default:
			h.sendError(connID, "unknown message type: "+env.Type)
		}
	}

	h.logger.Info("websocket disconnected", "conn_id", connID)
}

func (h *Handlers) handleJoin(connID, origin string, payload json.RawMessage) {
	var req joinRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		h.sendError(connID, "invalid join payload")
		return
	}

	res, err := h.coordinator.Join(context.Background(), connID, origin, req.RoomID, req.Pin, req.Nickname)
	if err != nil {
		h.sendError(connID, joinErrorMessage(err))
		return
	}

	// The coordinator already broadcast "joined" and "user_list" to the room,
	// this connection included; history goes to the new arrival only.
	h.conns.SendTo(connID, "history", res.History)
}

func (h *Handlers) handleText(connID string, payload json.RawMessage) {
	var req textRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		h.sendError(connID, "invalid message payload")
		return
	}
	if req.Msg == "" {
		h.sendError(connID, "message content is required")
		return
	}

	if _, err := h.relay.PostText(connID, req.Msg, req.Timestamp); err != nil {
		h.sendError(connID, relayErrorMessage(err))
	}
}

func (h *Handlers) handleFile(connID string, payload json.RawMessage) {
	var req fileRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		h.sendError(connID, "invalid file payload")
		return
	}
	if req.Filename == "" || len(req.File) == 0 {
		h.sendError(connID, "filename and file content are required")
		return
	}

	if _, err := h.relay.PostFile(connID, req.Filename, req.Filetype, req.File, req.Timestamp); err != nil {
		h.sendError(connID, relayErrorMessage(err))
	}
}

func (h *Handlers) sendError(connID, msg string) {
	h.conns.SendTo(connID, "error", errorPayload{Msg: msg})
}

// remoteOrigin extracts the client address that presence locks are keyed by.
func remoteOrigin(c *websocket.Conn) string {
	addr := c.RemoteAddr().String()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
