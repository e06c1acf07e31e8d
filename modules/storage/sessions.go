package storage

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/AnthonyVillarreal2001/chat-espe-backend/domain/chat"
)

// SessionRepository provides access to persisted session records.
type SessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new session record repository.
func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Insert saves a session record.
func (r *SessionRepository) Insert(rec *chat.SessionRecord) error {
	if err := r.db.Create(rec).Error; err != nil {
		return fmt.Errorf("failed to insert session record: %w", err)
	}
	return nil
}

// DeleteByConn removes the session record for a connection. Deleting a
// connection that has no record is not an error; disconnect cleanup must be
// idempotent.
func (r *SessionRepository) DeleteByConn(connID string) error {
	if err := r.db.Delete(&chat.SessionRecord{}, "conn_id = ?", connID).Error; err != nil {
		return fmt.Errorf("failed to delete session record: %w", err)
	}
	return nil
}

// FindByRoom returns the persisted session records for a room.
func (r *SessionRepository) FindByRoom(roomID string) ([]chat.SessionRecord, error) {
	var recs []chat.SessionRecord
	if err := r.db.Where("room_id = ?", roomID).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to find session records: %w", err)
	}
	return recs, nil
}
