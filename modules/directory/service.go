package directory

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AnthonyVillarreal2001/chat-espe-backend/domain/chat"
	"github.com/AnthonyVillarreal2001/chat-espe-backend/modules/storage"
)

// createRetries bounds identifier regeneration on collision. Collisions are
// negligible at 62^8 identifiers but must be handled, not assumed away.
const createRetries = 5

// RoomStore is the storage the directory needs.
type RoomStore interface {
	Create(room *chat.Room) error
	FindByID(id string) (*chat.Room, error)
}

// Service provides room lookup and creation.
type Service struct {
	rooms  RoomStore
	hasher *PinHasher
	newID  func() (string, error)

	// dummyHash is compared against on the missing-room path of VerifyPin so
	// that path costs about the same as a real comparison.
	dummyHash string

	logger *slog.Logger
}

// NewService creates a new directory service.
func NewService(rooms RoomStore) *Service {
	hasher := NewPinHasher()
	dummy, err := hasher.Hash("0000")
	if err != nil {
		dummy = ""
	}
	return &Service{
		rooms:     rooms,
		hasher:    hasher,
		newID:     GenerateRoomID,
		dummyHash: dummy,
		logger:    slog.Default(),
	}
}

// CreateRoom generates a fresh identifier, hashes the PIN and stores the
// room. The PIN is never stored or logged in plaintext.
func (s *Service) CreateRoom(name, pin, kind string) (*chat.Room, error) {
	if err := chat.ValidateRoomName(name); err != nil {
		return nil, err
	}
	if err := chat.ValidatePin(pin); err != nil {
		return nil, err
	}
	if err := chat.ValidateKind(kind); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(pin)
	if err != nil {
		return nil, fmt.Errorf("failed to hash pin: %w", err)
	}

	for attempt := 0; attempt < createRetries; attempt++ {
		id, err := s.newID()
		if err != nil {
			return nil, fmt.Errorf("failed to generate room id: %w", err)
		}

		room := &chat.Room{
			ID:        id,
			Name:      name,
			PinHash:   hash,
			Kind:      kind,
			CreatedAt: time.Now().UTC(),
		}

		err = s.rooms.Create(room)
		if errors.Is(err, storage.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		s.logger.Info("room created", "room_id", id, "kind", kind)
		return room, nil
	}

	return nil, fmt.Errorf("could not allocate a unique room id: %w", storage.ErrConflict)
}

// VerifyPin reports whether the PIN matches the room's stored hash. A missing
// room yields false, not an error, and still burns a bcrypt comparison so the
// two paths stay near-equal in cost.
func (s *Service) VerifyPin(roomID, pin string) bool {
	room, err := s.rooms.FindByID(roomID)
	if err != nil {
		s.hasher.Verify(pin, s.dummyHash)
		return false
	}
	return s.hasher.Verify(pin, room.PinHash)
}

// GetRoom retrieves a room by identifier.
func (s *Service) GetRoom(roomID string) (*chat.Room, error) {
	return s.rooms.FindByID(roomID)
}
