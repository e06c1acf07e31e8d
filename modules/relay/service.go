package relay

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/AnthonyVillarreal2001/chat-espe-backend/domain/chat"
)

// DefaultHistoryLimit caps how many messages a history request returns.
const DefaultHistoryLimit = 100

// Wire event names for broadcast messages.
const (
	EventMessage = "message"
	EventFile    = "file"
)

// SessionSource resolves the live session for a connection.
type SessionSource interface {
	Get(connID string) (*chat.Session, bool)
}

// RoomSource resolves room records for capability checks.
type RoomSource interface {
	GetRoom(roomID string) (*chat.Room, error)
}

// MessageStore persists and retrieves messages.
type MessageStore interface {
	Insert(msg *chat.Message) error
	Recent(roomID string, limit int) ([]chat.Message, error)
}

// Broadcaster fans an event out to every connection joined to a room.
type Broadcaster interface {
	BroadcastToRoom(roomID, event string, payload any)
}

// Service validates, persists and fans out room messages. Persistence failure
// aborts the call: messages are the user-visible content, unlike session
// records.
type Service struct {
	sessions    SessionSource
	rooms       RoomSource
	store       MessageStore
	broadcaster Broadcaster
	logger      *slog.Logger
}

// NewService creates a new relay service.
func NewService(sessions SessionSource, rooms RoomSource, store MessageStore, broadcaster Broadcaster) *Service {
	return &Service{
		sessions:    sessions,
		rooms:       rooms,
		store:       store,
		broadcaster: broadcaster,
		logger:      slog.Default(),
	}
}

// PostText persists a text message and broadcasts it to the sender's room,
// sender included. A message from a connection without a session is dropped
// silently: disconnect races make late events normal, not errors.
func (s *Service) PostText(connID, body, clientTimestamp string) (*chat.Message, error) {
	sess, ok := s.sessions.Get(connID)
	if !ok {
		s.logger.Debug("dropping message without session", "conn_id", connID)
		return nil, nil
	}

	msg := &chat.Message{
		RoomID:    sess.RoomID,
		Username:  sess.Nickname,
		Kind:      chat.MessageText,
		Body:      body,
		Timestamp: parseTimestamp(clientTimestamp),
	}

	if err := s.store.Insert(msg); err != nil {
		return nil, fmt.Errorf("persist message: %w", err)
	}

	s.broadcaster.BroadcastToRoom(sess.RoomID, EventMessage, msg)
	return msg, nil
}

// PostFile persists a file message and broadcasts it. The session's room must
// be multimedia-capable and the payload must not exceed chat.MaxFilePayload.
func (s *Service) PostFile(connID, filename, filetype string, payload []byte, clientTimestamp string) (*chat.Message, error) {
	sess, ok := s.sessions.Get(connID)
	if !ok {
		s.logger.Debug("dropping file without session", "conn_id", connID)
		return nil, nil
	}

	room, err := s.rooms.GetRoom(sess.RoomID)
	if err != nil {
		return nil, fmt.Errorf("resolve room: %w", err)
	}
	if room.Kind != chat.KindMultimedia {
		return nil, ErrCapabilityDenied
	}
	if len(payload) > chat.MaxFilePayload {
		return nil, ErrPayloadTooLarge
	}

	msg := &chat.Message{
		RoomID:    sess.RoomID,
		Username:  sess.Nickname,
		Kind:      chat.MessageFile,
		Filename:  filename,
		Filetype:  filetype,
		File:      payload,
		Timestamp: parseTimestamp(clientTimestamp),
	}

	if err := s.store.Insert(msg); err != nil {
		return nil, fmt.Errorf("persist file: %w", err)
	}

	s.broadcaster.BroadcastToRoom(sess.RoomID, EventFile, msg)
	return msg, nil
}

// History returns the most recent limit messages for a room, oldest first.
func (s *Service) History(roomID string, limit int) ([]chat.Message, error) {
	if limit <= 0 || limit > DefaultHistoryLimit {
		limit = DefaultHistoryLimit
	}
	return s.store.Recent(roomID, limit)
}

// parseTimestamp interprets a client-supplied ISO-8601 timestamp, falling
// back to server time when it is absent or malformed.
func parseTimestamp(ts string) time.Time {
	if ts == "" {
		return time.Now().UTC()
	}
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		return t.UTC()
	}
	// Timestamps without a zone offset, as produced by naive clients.
	if t, err := time.Parse("2006-01-02T15:04:05", ts); err == nil {
		return t.UTC()
	}
	return time.Now().UTC()
}
