package coordinator

import "errors"

// Join failures surfaced to the requesting connection. Both abort the join
// with no side effects left behind.
var (
	// ErrInvalidPin is returned when the PIN does not match the room.
	ErrInvalidPin = errors.New("invalid room pin")

	// ErrOriginAlreadyJoined is returned when the origin already holds a
	// presence lock for the room.
	ErrOriginAlreadyJoined = errors.New("origin already connected to this room")
)
