// Package chat holds the domain types shared by the room coordinator modules.
package chat

import "time"

// Room kinds. Text rooms reject file messages.
const (
	KindText       = "text"
	KindMultimedia = "multimedia"
)

// Message kinds.
const (
	MessageText = "text"
	MessageFile = "file"
)

// MaxFilePayload is the upper bound for a file message payload.
const MaxFilePayload = 10 << 20 // 10 MiB

// RoomIDLength is the length of generated room identifiers.
const RoomIDLength = 8

// Room is a named, PIN-protected channel. The identifier is immutable once
// assigned and is the only key used for lookups. The PIN is stored only as a
// salted bcrypt hash.
type Room struct {
	ID        string    `gorm:"primarykey;size:8" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	PinHash   string    `gorm:"size:60;not null" json:"-"`
	Kind      string    `gorm:"size:16;not null" json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the table name for Room.
func (Room) TableName() string {
	return "rooms"
}

// Session is the live binding between a connection and the room it joined
// under. It is owned by the session registry; SessionRecord is its durable
// copy.
type Session struct {
	ConnID   string    `json:"-"`
	RoomID   string    `json:"room_id"`
	Nickname string    `json:"nickname"`
	Origin   string    `json:"-"`
	JoinedAt time.Time `json:"joined_at"`
}

// SessionRecord is the persisted audit copy of a live session. It is inserted
// on join and deleted on disconnect.
type SessionRecord struct {
	ID       uint      `gorm:"primarykey" json:"-"`
	RoomID   string    `gorm:"size:8;index:idx_sessions_room_conn" json:"room_id"`
	ConnID   string    `gorm:"size:36;index:idx_sessions_room_conn" json:"sid"`
	Nickname string    `gorm:"size:50" json:"nickname"`
	Origin   string    `gorm:"size:64" json:"ip_address"`
	JoinedAt time.Time `json:"joined_at"`
}

// TableName returns the table name for SessionRecord.
func (SessionRecord) TableName() string {
	return "user_sessions"
}

// Message is a persisted room message. Messages are immutable once stored;
// insertion order within a room is given by (timestamp, id).
type Message struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	RoomID    string    `gorm:"size:8;index:idx_messages_room_ts" json:"-"`
	Username  string    `gorm:"size:50" json:"username"`
	Kind      string    `gorm:"size:8" json:"type"`
	Body      string    `json:"msg,omitempty"`
	Filename  string    `gorm:"size:255" json:"filename,omitempty"`
	Filetype  string    `gorm:"size:100" json:"filetype,omitempty"`
	File      []byte    `json:"file,omitempty"`
	Timestamp time.Time `gorm:"index:idx_messages_room_ts" json:"timestamp"`
}

// TableName returns the table name for Message.
func (Message) TableName() string {
	return "messages"
}
