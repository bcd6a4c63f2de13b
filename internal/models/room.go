package models

import (
	"sync"
	"time"
)

/*
LEARNING: ONE MUTEX PER ROOM

Every connection runs in its own goroutine, so two sessions in the same room
can process messages at the same moment. Room.Update is the single
serialization point for a room: a mutation, the snapshot built from it and
the fanout that delivers it all happen inside one critical section. That way
every connection sees the events of a room in the same order.

Rooms never share a mutex, so traffic in one document never waits on another.
*/

// Conn is a live duplex connection attached to a room.
// Send must not block; a non-nil error marks the connection dead.
type Conn interface {
	Send(message []byte) error
}

// Lock is the exclusive edit permission on a room
type Lock struct {
	Holder string
	Since  time.Time
}

// RoomState holds the mutable fields of a Room.
// It is only valid inside Room.Update.
type RoomState struct {
	Content string
	Lock    *Lock

	// Presence is kept in join order
	Presence []string
	Focus    map[string]string

	// Conns maps each live connection to the username it joined as ("" until join)
	Conns map[Conn]string
}

// Room is the authoritative state for one document id
type Room struct {
	ID string

	mu    sync.Mutex
	state RoomState
}

// NewRoom creates a room with empty presence, focus, lock and connections
func NewRoom(id, content string) *Room {
	return &Room{
		ID: id,
		state: RoomState{
			Content:  content,
			Presence: make([]string, 0),
			Focus:    make(map[string]string),
			Conns:    make(map[Conn]string),
		},
	}
}

// Update runs fn with exclusive access to the room state
func (r *Room) Update(fn func(s *RoomState)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&r.state)
}

// Content returns the current content and lock
func (r *Room) Content() (string, *Lock) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var lock *Lock
	if r.state.Lock != nil {
		l := *r.state.Lock
		lock = &l
	}
	return r.state.Content, lock
}

// SetContent replaces the content without any lock check
func (r *Room) SetContent(content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Content = content
}

// ConnCount returns the number of live connections
func (r *Room) ConnCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.state.Conns)
}

// AddPresence adds username if it is not already present
func (s *RoomState) AddPresence(username string) {
	for _, u := range s.Presence {
		if u == username {
			return
		}
	}
	s.Presence = append(s.Presence, username)
}

// RemovePresence drops username from presence
func (s *RoomState) RemovePresence(username string) {
	for i, u := range s.Presence {
		if u == username {
			s.Presence = append(s.Presence[:i], s.Presence[i+1:]...)
			return
		}
	}
}

// HasPresence reports whether username is present
func (s *RoomState) HasPresence(username string) bool {
	for _, u := range s.Presence {
		if u == username {
			return true
		}
	}
	return false
}

// LockedBy reports whether the room lock is held by username
func (s *RoomState) LockedBy(username string) bool {
	return s.Lock != nil && s.Lock.Holder == username
}
