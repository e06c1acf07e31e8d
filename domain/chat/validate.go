package chat

import (
	"errors"
	"unicode/utf8"
)

// Validation constants
const (
	MaxNicknameLength = 50
	MaxRoomNameLength = 100
	MaxPinLength      = 64
)

// Validation errors
var (
	ErrNicknameEmpty   = errors.New("nickname cannot be empty")
	ErrNicknameTooLong = errors.New("nickname exceeds maximum length")
	ErrNicknameInvalid = errors.New("nickname contains invalid characters")
	ErrRoomNameEmpty   = errors.New("room name cannot be empty")
	ErrRoomNameTooLong = errors.New("room name exceeds maximum length")
	ErrPinEmpty        = errors.New("pin cannot be empty")
	ErrPinTooLong      = errors.New("pin exceeds maximum length")
	ErrKindInvalid     = errors.New("room kind must be text or multimedia")
)

// ValidateNickname validates a display name.
func ValidateNickname(nickname string) error {
	if nickname == "" {
		return ErrNicknameEmpty
	}
	if len(nickname) > MaxNicknameLength {
		return ErrNicknameTooLong
	}
	if !utf8.ValidString(nickname) {
		return ErrNicknameInvalid
	}
	return nil
}

// ValidateRoomName validates a room display name.
func ValidateRoomName(name string) error {
	if name == "" {
		return ErrRoomNameEmpty
	}
	if len(name) > MaxRoomNameLength {
		return ErrRoomNameTooLong
	}
	return nil
}

// ValidatePin validates an access PIN before hashing. bcrypt truncates inputs
// beyond 72 bytes, so long PINs are rejected outright.
func ValidatePin(pin string) error {
	if pin == "" {
		return ErrPinEmpty
	}
	if len(pin) > MaxPinLength {
		return ErrPinTooLong
	}
	return nil
}

// ValidateKind validates a room kind flag.
func ValidateKind(kind string) error {
	if kind != KindText && kind != KindMultimedia {
		return ErrKindInvalid
	}
	return nil
}
