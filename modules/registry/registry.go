package registry

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/AnthonyVillarreal2001/chat-espe-backend/domain/chat"
)

// ErrAlreadyJoined is returned when a connection that already has a session
// attempts another join. A connection joins at most one room.
var ErrAlreadyJoined = errors.New("connection already has an active session")

// Registry is the authoritative in-process mapping from connection to live
// session. All operations take the registry lock, so a room snapshot never
// races a concurrent join or leave.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*chat.Session       // connID -> session
	rooms    map[string]map[string]struct{} // roomID -> set of connIDs
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		sessions: make(map[string]*chat.Session),
		rooms:    make(map[string]map[string]struct{}),
	}
}

// Join inserts a session for the connection. The caller must already hold the
// presence lock for (room, origin).
func (r *Registry) Join(connID, roomID, nickname, origin string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[connID]; ok {
		return ErrAlreadyJoined
	}

	r.sessions[connID] = &chat.Session{
		ConnID:   connID,
		RoomID:   roomID,
		Nickname: nickname,
		Origin:   origin,
		JoinedAt: time.Now().UTC(),
	}
	if r.rooms[roomID] == nil {
		r.rooms[roomID] = make(map[string]struct{})
	}
	r.rooms[roomID][connID] = struct{}{}
	return nil
}

// Leave removes and returns the session for the connection. An unknown
// connection returns ok=false; disconnect events can arrive without a prior
// successful join.
func (r *Registry) Leave(connID string) (*chat.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[connID]
	if !ok {
		return nil, false
	}

	delete(r.sessions, connID)
	if members, ok := r.rooms[sess.RoomID]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(r.rooms, sess.RoomID)
		}
	}

	copy := *sess
	return &copy, true
}

// Get returns a copy of the session for the connection.
func (r *Registry) Get(connID string) (*chat.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, ok := r.sessions[connID]
	if !ok {
		return nil, false
	}
	copy := *sess
	return &copy, true
}

// Roster returns the display names present in a room as a single atomic
// snapshot, sorted for stable output.
func (r *Registry) Roster(roomID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.rooms[roomID]))
	for connID := range r.rooms[roomID] {
		if sess, ok := r.sessions[connID]; ok {
			names = append(names, sess.Nickname)
		}
	}
	sort.Strings(names)
	return names
}

// Members returns the connection identifiers currently joined to a room.
func (r *Registry) Members(roomID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.rooms[roomID]))
	for connID := range r.rooms[roomID] {
		ids = append(ids, connID)
	}
	return ids
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
