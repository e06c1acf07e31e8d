package storage

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/AnthonyVillarreal2001/chat-espe-backend/domain/chat"
)

// MessageRepository provides access to persisted messages.
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new message repository.
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Insert saves a message. Messages are never updated or deleted.
func (r *MessageRepository) Insert(msg *chat.Message) error {
	if err := r.db.Create(msg).Error; err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

// Recent returns the newest limit messages for a room in ascending timestamp
// order. The query fetches descending and reverses the result: an ascending
// scan with a limit would return the oldest window of a long history, not the
// latest one.
func (r *MessageRepository) Recent(roomID string, limit int) ([]chat.Message, error) {
	if limit <= 0 {
		limit = 100
	}

	var msgs []chat.Message
	err := r.db.
		Where("room_id = ?", roomID).
		Order("timestamp DESC").
		Order("id DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
