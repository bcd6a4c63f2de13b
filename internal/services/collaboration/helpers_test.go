package collaboration

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"drawsync/internal/repository"

	"github.com/stretchr/testify/require"
)

// fakeConn records every frame sent to it
type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	fail   bool
}

func (c *fakeConn) Send(message []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("peer gone")
	}
	c.frames = append(c.frames, message)
	return nil
}

func (c *fakeConn) setFail(fail bool) {
	c.mu.Lock()
	c.fail = fail
	c.mu.Unlock()
}

func (c *fakeConn) events(t *testing.T) []map[string]interface{} {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]map[string]interface{}, 0, len(c.frames))
	for _, f := range c.frames {
		var ev map[string]interface{}
		require.NoError(t, json.Unmarshal(f, &ev))
		out = append(out, ev)
	}
	return out
}

func (c *fakeConn) last(t *testing.T) map[string]interface{} {
	t.Helper()
	evs := c.events(t)
	require.NotEmpty(t, evs, "expected at least one frame")
	return evs[len(evs)-1]
}

func (c *fakeConn) reset() {
	c.mu.Lock()
	c.frames = nil
	c.mu.Unlock()
}

// virtualClock is a manually advanced clock
type virtualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newVirtualClock() *virtualClock {
	return &virtualClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *virtualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *virtualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type testEnv struct {
	registry *repository.RoomRegistryImpl
	manager  *SessionManager
	clock    *virtualClock
}

func newTestEnv(t *testing.T, cfg ManagerConfig) *testEnv {
	t.Helper()
	clock := newVirtualClock()
	cfg.Clock = clock.Now
	registry := repository.NewRoomRegistry("")
	return &testEnv{
		registry: registry,
		manager:  NewSessionManager(registry, cfg),
		clock:    clock,
	}
}

func (e *testEnv) connect(t *testing.T, roomID string) (*Session, *fakeConn) {
	t.Helper()
	conn := &fakeConn{}
	session := e.manager.Connect(roomID, conn)
	conn.reset()
	return session, conn
}

func send(t *testing.T, s *Session, raw string) error {
	t.Helper()
	return s.HandleMessage(context.Background(), []byte(raw))
}

func usersOf(ev map[string]interface{}) []interface{} {
	users, _ := ev["users"].([]interface{})
	return users
}

func lockOf(ev map[string]interface{}) map[string]interface{} {
	lock, _ := ev["lock"].(map[string]interface{})
	return lock
}
