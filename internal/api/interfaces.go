package api

import (
	"drawsync/internal/models"
)

/*
LEARNING: CONSUMER-DRIVEN INTERFACES (Go Idiom)

The handlers only need the explicit-create, lookup and list half of the room
registry. GetOrCreate is deliberately absent: rooms are only created lazily
by websocket connections, never by a REST lookup.
*/

// RoomRegistry defines what handlers need from the room registry
type RoomRegistry interface {
	List() []string
	Create(id string, content *string) (*models.Room, error)
	Get(id string) (*models.Room, error)
}

// SessionStats exposes live session counts for the health endpoint
type SessionStats interface {
	ActiveSessions() int
}
