package directory

import (
	"crypto/rand"
	"math/big"

	"github.com/AnthonyVillarreal2001/chat-espe-backend/domain/chat"
)

// Base62 characters for room identifier generation.
const base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// GenerateRoomID generates a random 8-character room identifier.
func GenerateRoomID() (string, error) {
	id := make([]byte, chat.RoomIDLength)
	max := big.NewInt(int64(len(base62Chars)))

	for i := 0; i < chat.RoomIDLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		id[i] = base62Chars[n.Int64()]
	}

	return string(id), nil
}

// IsValidRoomID checks whether an identifier has the expected shape.
func IsValidRoomID(id string) bool {
	if len(id) != chat.RoomIDLength {
		return false
	}
	for _, c := range id {
		if !isAlphanumeric(c) {
			return false
		}
	}
	return true
}

func isAlphanumeric(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
