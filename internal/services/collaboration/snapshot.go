package collaboration

import "drawsync/internal/models"

// snapshot builds the full room view.
// Clients replace their local view with it; there are no partial patches.
func snapshot(s *models.RoomState) models.StateEvent {
	users := make([]string, len(s.Presence))
	copy(users, s.Presence)

	focus := make(map[string]string, len(s.Focus))
	for elem, user := range s.Focus {
		focus[elem] = user
	}

	return models.StateEvent{
		Type:    models.EventState,
		Content: s.Content,
		Lock:    models.NewLockView(s.Lock),
		Users:   users,
		Focus:   focus,
	}
}
