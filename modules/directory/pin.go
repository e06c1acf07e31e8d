package directory

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the cost used for PIN hashing. A cost of 12 keeps
// verification time reasonable for interactive joins.
const DefaultBcryptCost = 12

// PinHasher provides PIN hashing and verification.
type PinHasher struct {
	cost int
}

// NewPinHasher creates a PinHasher with the default cost.
func NewPinHasher() *PinHasher {
	return &PinHasher{
		cost: DefaultBcryptCost,
	}
}

// Hash generates a salted bcrypt hash of the given PIN.
func (h *PinHasher) Hash(pin string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(pin), h.cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify checks whether the provided PIN matches the hash.
func (h *PinHasher) Verify(pin, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin))
	return err == nil
}
