package storage

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/AnthonyVillarreal2001/chat-espe-backend/domain/chat"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrConflict is returned when an insert collides with an existing identifier.
var ErrConflict = errors.New("identifier already exists")

// RoomRepository provides access to room storage.
type RoomRepository struct {
	db *gorm.DB
}

// NewRoomRepository creates a new room repository.
func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// Create saves a new room. Returns ErrConflict if the identifier is taken.
func (r *RoomRepository) Create(room *chat.Room) error {
	if err := r.db.Create(room).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrConflict
		}
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

// FindByID retrieves a room by its identifier.
func (r *RoomRepository) FindByID(id string) (*chat.Room, error) {
	var room chat.Room
	if err := r.db.First(&room, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find room: %w", err)
	}
	return &room, nil
}
