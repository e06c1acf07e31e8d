package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AnthonyVillarreal2001/chat-espe-backend/domain/chat"
)

// Wire event names for join and roster broadcasts.
const (
	EventJoined   = "joined"
	EventUserList = "user_list"
)

const historyLimit = 100

// PinDirectory verifies room PINs.
type PinDirectory interface {
	VerifyPin(roomID, pin string) bool
}

// Locker is the distributed presence lock. TryAcquire must be atomic against
// the backing store.
type Locker interface {
	TryAcquire(ctx context.Context, roomID, origin, holder string) (bool, error)
	Release(ctx context.Context, roomID, origin string) error
}

// SessionRegistry is the in-process session map.
type SessionRegistry interface {
	Join(connID, roomID, nickname, origin string) error
	Leave(connID string) (*chat.Session, bool)
	Roster(roomID string) []string
}

// SessionRecorder persists the audit copy of a session.
type SessionRecorder interface {
	Insert(rec *chat.SessionRecord) error
	DeleteByConn(connID string) error
}

// HistorySource supplies room history for the join reply.
type HistorySource interface {
	History(roomID string, limit int) ([]chat.Message, error)
}

// Broadcaster fans an event out to every connection joined to a room.
type Broadcaster interface {
	BroadcastToRoom(roomID, event string, payload any)
}

// JoinResult is the reply to a successful join.
type JoinResult struct {
	Nickname string
	Roster   []string
	History  []chat.Message
}

// Service runs the join protocol: PIN check, presence lock, registry insert,
// best-effort session record, then history and roster delivery. Disconnect
// reverses it without re-checking the PIN.
type Service struct {
	rooms       PinDirectory
	locks       Locker
	sessions    SessionRegistry
	records     SessionRecorder
	history     HistorySource
	broadcaster Broadcaster
	logger      *slog.Logger
}

// NewService creates a new coordinator service.
func NewService(rooms PinDirectory, locks Locker, sessions SessionRegistry, records SessionRecorder, history HistorySource, broadcaster Broadcaster) *Service {
	return &Service{
		rooms:       rooms,
		locks:       locks,
		sessions:    sessions,
		records:     records,
		history:     history,
		broadcaster: broadcaster,
		logger:      slog.Default(),
	}
}

// Join admits a connection into a room. The step ordering is the correctness
// contract: no registry mutation happens before the lock is held, and PIN or
// lock failures leave no side effects behind.
func (s *Service) Join(ctx context.Context, connID, origin, roomID, pin, nickname string) (*JoinResult, error) {
	if err := chat.ValidateNickname(nickname); err != nil {
		return nil, err
	}

	if !s.rooms.VerifyPin(roomID, pin) {
		return nil, ErrInvalidPin
	}

	ok, err := s.locks.TryAcquire(ctx, roomID, origin, connID)
	if err != nil {
		return nil, fmt.Errorf("presence lock: %w", err)
	}
	if !ok {
		return nil, ErrOriginAlreadyJoined
	}

	if err := s.sessions.Join(connID, roomID, nickname, origin); err != nil {
		// The lock belongs to this failed attempt, not to whichever session
		// the connection already holds.
		if relErr := s.locks.Release(ctx, roomID, origin); relErr != nil {
			s.logger.Warn("presence lock release failed after rejected join",
				"conn_id", connID, "room_id", roomID, "error", relErr)
		}
		return nil, err
	}

	// Session records are a best-effort audit trail, not a join precondition.
	rec := &chat.SessionRecord{
		RoomID:   roomID,
		ConnID:   connID,
		Nickname: nickname,
		Origin:   origin,
		JoinedAt: time.Now().UTC(),
	}
	if err := s.records.Insert(rec); err != nil {
		s.logger.Warn("session record not persisted",
			"conn_id", connID, "room_id", roomID, "error", err)
	}

	hist, err := s.history.History(roomID, historyLimit)
	if err != nil {
		s.logger.Warn("history unavailable for join reply",
			"room_id", roomID, "error", err)
		hist = nil
	}

	roster := s.sessions.Roster(roomID)
	s.broadcaster.BroadcastToRoom(roomID, EventJoined, map[string]string{"nickname": nickname})
	s.broadcaster.BroadcastToRoom(roomID, EventUserList, roster)

	s.logger.Info("session joined",
		"conn_id", connID, "room_id", roomID, "nickname", nickname, "origin", origin)

	return &JoinResult{
		Nickname: nickname,
		Roster:   roster,
		History:  hist,
	}, nil
}

// Disconnect cleans up a departed connection. Every step runs even if an
// earlier one fails; each resource is independent and each cleanup is
// idempotent. A connection that never joined cleans up nothing.
func (s *Service) Disconnect(ctx context.Context, connID string) {
	sess, ok := s.sessions.Leave(connID)
	if !ok {
		return
	}

	if err := s.locks.Release(ctx, sess.RoomID, sess.Origin); err != nil {
		s.logger.Warn("presence lock release failed",
			"conn_id", connID, "room_id", sess.RoomID, "error", err)
	}

	if err := s.records.DeleteByConn(connID); err != nil {
		s.logger.Warn("session record delete failed",
			"conn_id", connID, "error", err)
	}

	s.broadcaster.BroadcastToRoom(sess.RoomID, EventUserList, s.sessions.Roster(sess.RoomID))

	s.logger.Info("session left",
		"conn_id", connID, "room_id", sess.RoomID, "nickname", sess.Nickname)
}
