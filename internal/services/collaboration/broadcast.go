package collaboration

import (
	"encoding/json"
	"log"

	"drawsync/internal/models"
)

/*
LEARNING: FANOUT WITH FAILURE ISOLATION

broadcast runs inside Room.Update, so the connection set cannot change under
it. It still copies the set before delivering and prunes in a second pass:
deleting from a map while ranging over it is legal in Go, but the two-pass
shape keeps "who received this event" independent of "who failed".

Conn.Send never blocks (see Client.Send), so holding the room mutex during
delivery costs one channel operation per connection.
*/

// broadcast delivers event to every live connection of the room.
// Connections whose Send fails are removed; the sender is never told.
func broadcast(roomID string, s *models.RoomState, event interface{}) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("⚠️  Failed to encode event for room %s: %v", roomID, err)
		return
	}

	conns := make([]models.Conn, 0, len(s.Conns))
	for c := range s.Conns {
		conns = append(conns, c)
	}

	var dead []models.Conn
	for _, c := range conns {
		if err := c.Send(data); err != nil {
			dead = append(dead, c)
		}
	}

	for _, c := range dead {
		delete(s.Conns, c)
	}

	if len(dead) > 0 {
		log.Printf("  Pruned %d dead connection(s) from room %s (remaining: %d)",
			len(dead), roomID, len(s.Conns))
	}
}

// broadcastState sends the full room snapshot to every connection
func broadcastState(roomID string, s *models.RoomState) {
	broadcast(roomID, s, snapshot(s))
}

// sendTo delivers event to a single connection
func sendTo(conn models.Conn, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return conn.Send(data)
}
