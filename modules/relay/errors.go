package relay

import "errors"

// Sentinel errors surfaced to the sending connection only; a rejected message
// is never broadcast.
var (
	// ErrCapabilityDenied is returned when a file is posted to a text-only room.
	ErrCapabilityDenied = errors.New("room does not accept file messages")

	// ErrPayloadTooLarge is returned when a file payload exceeds the 10 MiB cap.
	ErrPayloadTooLarge = errors.New("file payload exceeds the size limit")
)
