package collaboration

import (
	"time"

	"drawsync/internal/models"
)

// DefaultLockTTL is how long a granted edit lock stays valid
const DefaultLockTTL = 10 * time.Minute

// lockExpired reports whether l has outlived ttl at now
func lockExpired(l *models.Lock, now time.Time, ttl time.Duration) bool {
	return l != nil && now.Sub(l.Since) > ttl
}

// arbitrateLock decides a lock request from requester.
// An expired lock is cleared first; expiry is only checked here (and by the
// optional sweep), never on a timer per lock.
// On deny the still-current lock is returned; there is no queue, a denied
// requester has to ask again.
func arbitrateLock(s *models.RoomState, requester string, now time.Time, ttl time.Duration) (bool, *models.Lock) {
	if lockExpired(s.Lock, now, ttl) {
		s.Lock = nil
	}

	if s.Lock == nil {
		s.Lock = &models.Lock{Holder: requester, Since: now}
		return true, s.Lock
	}

	return false, s.Lock
}
