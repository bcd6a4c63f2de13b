package collaboration

import (
	"io"
	"log"
	"sync"
	"time"

	"drawsync/internal/models"
)

/*
LEARNING: WEBSOCKET SESSION MANAGER

The manager attaches new connections to their rooms and keeps track of every
live session so shutdown can close them.

Room state is not stored here: rooms come from the injected RoomStore, and
each room serializes its own mutations. The manager only holds policy (lock
TTL, clock, content gating) and the optional expired-lock sweep.
*/

// RoomStore is what the manager needs from the room registry
type RoomStore interface {
	GetOrCreate(id string) *models.Room
	Get(id string) (*models.Room, error)
	List() []string
}

// ManagerConfig configures a SessionManager
type ManagerConfig struct {
	// LockTTL defaults to DefaultLockTTL
	LockTTL time.Duration

	// SweepInterval enables the background expired-lock sweep when > 0
	SweepInterval time.Duration

	// PermissiveContent lets any session replace content without the lock
	PermissiveContent bool

	// Clock defaults to time.Now
	Clock func() time.Time
}

// SessionManager owns all live sessions
type SessionManager struct {
	rooms RoomStore

	lockTTL           time.Duration
	sweepInterval     time.Duration
	permissiveContent bool
	clock             func() time.Time

	sessions map[*Session]struct{}
	mu       sync.RWMutex

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewSessionManager creates a new session manager
func NewSessionManager(rooms RoomStore, cfg ManagerConfig) *SessionManager {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = DefaultLockTTL
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	return &SessionManager{
		rooms:             rooms,
		lockTTL:           cfg.LockTTL,
		sweepInterval:     cfg.SweepInterval,
		permissiveContent: cfg.PermissiveContent,
		clock:             cfg.Clock,
		sessions:          make(map[*Session]struct{}),
		done:              make(chan struct{}),
	}
}

func (sm *SessionManager) now() time.Time {
	return sm.clock()
}

// Start launches the expired-lock sweep when it is enabled
func (sm *SessionManager) Start() {
	log.Println("🔄 Starting session manager...")

	if sm.sweepInterval > 0 {
		sm.wg.Add(1)
		go sm.sweepLoop()
		log.Printf("  Expired-lock sweep every %s", sm.sweepInterval)
	}

	log.Println("✓ Session manager started")
}

// Connect attaches conn to the room for roomID, creating the room on demand.
// The new connection immediately receives the current state.
func (sm *SessionManager) Connect(roomID string, conn models.Conn) *Session {
	room := sm.rooms.GetOrCreate(roomID)

	session := &Session{
		SessionInfo: models.NewSessionInfo(roomID, sm.now()),
		room:        room,
		conn:        conn,
		manager:     sm,
	}

	sm.mu.Lock()
	sm.sessions[session] = struct{}{}
	sm.mu.Unlock()

	room.Update(func(st *models.RoomState) {
		st.Conns[conn] = ""
		if err := sendTo(conn, snapshot(st)); err != nil {
			delete(st.Conns, conn)
		}
	})

	log.Printf("  Session %s joined room %s (connections: %d)", session.ID, roomID, room.ConnCount())

	return session
}

func (sm *SessionManager) forget(s *Session) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.sessions, s)
}

// ActiveSessions returns the number of live sessions across all rooms
func (sm *SessionManager) ActiveSessions() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// sweepLoop periodically clears expired locks
func (sm *SessionManager) sweepLoop() {
	defer sm.wg.Done()

	ticker := time.NewTicker(sm.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sm.done:
			return
		case <-ticker.C:
			if n := sm.SweepExpiredLocks(); n > 0 {
				log.Printf("  Cleared %d expired lock(s)", n)
			}
		}
	}
}

// SweepExpiredLocks clears every expired lock and tells the room about it.
// Returns the number of locks cleared.
func (sm *SessionManager) SweepExpiredLocks() int {
	now := sm.now()
	cleared := 0

	for _, id := range sm.rooms.List() {
		room, err := sm.rooms.Get(id)
		if err != nil {
			continue
		}

		room.Update(func(st *models.RoomState) {
			if !lockExpired(st.Lock, now, sm.lockTTL) {
				return
			}
			st.Lock = nil
			cleared++
			broadcast(room.ID, st, models.UnlockEvent{Type: models.EventUnlock})
			broadcastState(room.ID, st)
		})
	}

	return cleared
}

// Shutdown stops the sweep and closes every live connection.
// Each session still runs its own cleanup when its read loop ends.
func (sm *SessionManager) Shutdown() {
	log.Println("🛑 Shutting down session manager...")

	sm.stopOnce.Do(func() { close(sm.done) })
	sm.wg.Wait()

	sm.mu.RLock()
	sessions := make([]*Session, 0, len(sm.sessions))
	for s := range sm.sessions {
		sessions = append(sessions, s)
	}
	sm.mu.RUnlock()

	for _, s := range sessions {
		if closer, ok := s.conn.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				log.Printf("⚠️  Failed to close session %s: %v", s.ID, err)
			}
		}
	}

	log.Println("✓ Session manager shutdown complete")
}
