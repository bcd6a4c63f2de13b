package models

import (
	"time"

	"github.com/segmentio/ksuid"
)

// SessionInfo describes one live connection to a room
type SessionInfo struct {
	ID           string    `json:"id"`
	RoomID       string    `json:"room_id"`
	ConnectedAt  time.Time `json:"connected_at"`
	LastActiveAt time.Time `json:"last_active_at"`
}

// DefaultUsername is used when a join message carries no user
const DefaultUsername = "anon"

func NewSessionInfo(roomID string, now time.Time) *SessionInfo {
	return &SessionInfo{
		ID:           ksuid.New().String(),
		RoomID:       roomID,
		ConnectedAt:  now,
		LastActiveAt: now,
	}
}
