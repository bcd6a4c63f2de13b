package repository

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"drawsync/internal/models"
)

/*
LEARNING: IN-MEMORY REPOSITORY

The registry is the only owner of the id -> Room table. It is constructed
explicitly in main and injected into the handlers and the session manager,
so nothing reaches for a package-level map.

Rooms are never deleted: a document lives for the lifetime of the process.
This keeps references held by live sessions valid without reference counting,
at the cost of unbounded growth for very long-running processes.
*/

var (
	ErrRoomExists    = errors.New("room already exists")
	ErrInvalidRoomID = errors.New("room id cannot be empty")
	ErrRoomNotFound  = errors.New("room not found")
)

// RoomRegistryImpl holds every known room in memory
type RoomRegistryImpl struct {
	mu             sync.RWMutex
	rooms          map[string]*models.Room
	defaultContent string
}

// NewRoomRegistry creates an empty registry.
// defaultContent is used for rooms created without explicit content.
func NewRoomRegistry(defaultContent string) *RoomRegistryImpl {
	return &RoomRegistryImpl{
		rooms:          make(map[string]*models.Room),
		defaultContent: defaultContent,
	}
}

// List returns all known room ids in no particular order
func (r *RoomRegistryImpl) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.rooms))
	for id := range r.rooms {
		ids = append(ids, id)
	}
	return ids
}

// Create explicitly creates a room under the trimmed id.
// A nil content uses the registry's default template.
func (r *RoomRegistryImpl) Create(id string, content *string) (*models.Room, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrInvalidRoomID
	}

	initial := r.defaultContent
	if content != nil {
		initial = *content
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rooms[id]; exists {
		return nil, fmt.Errorf("create %q: %w", id, ErrRoomExists)
	}

	room := models.NewRoom(id, initial)
	r.rooms[id] = room
	return room, nil
}

// GetOrCreate returns the room for id, creating it with the default content
// if it does not exist yet. Only connection establishment uses this.
func (r *RoomRegistryImpl) GetOrCreate(id string) *models.Room {
	// Try read lock first
	r.mu.RLock()
	room, ok := r.rooms[id]
	r.mu.RUnlock()
	if ok {
		return room
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if room, ok := r.rooms[id]; ok {
		return room
	}
	room = models.NewRoom(id, r.defaultContent)
	r.rooms[id] = room
	return room
}

// Get looks a room up without creating it
func (r *RoomRegistryImpl) Get(id string) (*models.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[id]
	if !ok {
		return nil, fmt.Errorf("get %q: %w", id, ErrRoomNotFound)
	}
	return room, nil
}
