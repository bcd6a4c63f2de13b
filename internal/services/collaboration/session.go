package collaboration

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"drawsync/internal/middleware"
	"drawsync/internal/models"

	"go.opentelemetry.io/otel/attribute"
)

/*
LEARNING: PER-CONNECTION STATE MACHINE

A Session starts in Connected (no username) and moves to Joined on the first
join message. Every other message is accepted in both states; before join
the session acts with the empty username.

HandleMessage is only ever called from the connection's read goroutine, so
the session's own fields need no locking. Room fields are only touched inside
Room.Update.

Close runs the cleanup exactly once, whatever ended the read loop.
*/

// Session is the protocol state of one live connection
type Session struct {
	*models.SessionInfo

	room    *models.Room
	conn    models.Conn
	manager *SessionManager

	username string
	joined   bool

	closeOnce sync.Once
}

// Username returns the joined username, or "" before join
func (s *Session) Username() string {
	return s.username
}

// Joined reports whether a join message has been processed
func (s *Session) Joined() bool {
	return s.joined
}

// Room returns the room the session is attached to
func (s *Session) Room() *models.Room {
	return s.room
}

// HandleMessage parses and applies one inbound frame.
// Malformed frames are answered with an error event and reported; they never
// end the session.
func (s *Session) HandleMessage(ctx context.Context, raw []byte) (err error) {
	s.LastActiveAt = s.manager.now()

	ctx, span := middleware.StartSpan(ctx, "WebSocket.ProcessMessage",
		attribute.String("session.id", s.ID),
		attribute.String("room.id", s.RoomID),
		attribute.Int("message.size", len(raw)),
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic processing message: %v", r)
			log.Printf("⚠️  Session %s: %v", s.ID, err)
			s.reply(models.ErrorEvent{Type: models.EventError, Reason: "internal error"})
			middleware.AddSpanError(ctx, err)
		}
	}()

	msg, err := models.ParseMessage(raw)
	if err != nil {
		var msgErr *models.MessageError
		if errors.As(err, &msgErr) {
			s.reply(models.ErrorEvent{Type: models.EventError, Reason: msgErr.Reason})
		}
		middleware.AddSpanError(ctx, err)
		return err
	}

	span.SetAttributes(attribute.String("message.type", models.TypeOf(msg)))

	if err := s.apply(msg); err != nil {
		middleware.AddSpanError(ctx, err)
		return err
	}
	return nil
}

func (s *Session) apply(msg models.Message) error {
	var err error
	now := s.manager.now()

	s.room.Update(func(st *models.RoomState) {
		switch m := msg.(type) {
		case models.JoinMessage:
			s.join(st, m.User)
			broadcastState(s.room.ID, st)

		case models.LockMessage:
			granted, current := arbitrateLock(st, s.username, now, s.manager.lockTTL)
			if !granted {
				s.reply(models.LockDeniedEvent{Type: models.EventLockDenied, Lock: models.NewLockView(current)})
				return
			}
			broadcast(s.room.ID, st, models.LockEvent{Type: models.EventLock, By: s.username})
			broadcastState(s.room.ID, st)

		case models.UnlockMessage:
			if !st.LockedBy(s.username) {
				return
			}
			st.Lock = nil
			broadcast(s.room.ID, st, models.UnlockEvent{Type: models.EventUnlock})
			broadcastState(s.room.ID, st)

		case models.ContentMessage:
			if !s.manager.permissiveContent && !st.LockedBy(s.username) {
				err = &models.MessageError{Reason: "edit lock not held"}
				s.reply(models.ErrorEvent{Type: models.EventError, Reason: "edit lock not held"})
				return
			}
			st.Content = m.Content
			broadcast(s.room.ID, st, models.ContentEvent{Type: models.EventXML, Content: st.Content, By: s.username})
			broadcastState(s.room.ID, st)

		case models.FocusMessage:
			st.Focus[m.Element] = s.username
			broadcastState(s.room.ID, st)

		case models.BlurMessage:
			if _, ok := st.Focus[m.Element]; !ok {
				return
			}
			delete(st.Focus, m.Element)
			broadcastState(s.room.ID, st)

		case models.UnknownMessage:
			// ignored
		}
	})

	return err
}

// join sets the username and adds it to presence.
// A rejoin under a different name releases the old name. A lock held under
// the old name follows the rename when no other connection still carries it.
func (s *Session) join(st *models.RoomState, user string) {
	if user == "" {
		user = models.DefaultUsername
	}

	if s.joined && s.username != user {
		old := s.username
		if st.LockedBy(old) && !s.nameShared(st, old) {
			st.Lock.Holder = user
		}
		s.username = user
		s.releasePresence(st, old)
	}

	s.username = user
	s.joined = true

	if _, attached := st.Conns[s.conn]; attached {
		st.Conns[s.conn] = user
	}
	st.AddPresence(user)
}

// releasePresence removes name from presence unless another joined
// connection in the room still carries it.
func (s *Session) releasePresence(st *models.RoomState, name string) {
	if s.nameShared(st, name) {
		return
	}
	st.RemovePresence(name)
}

func (s *Session) nameShared(st *models.RoomState, name string) bool {
	for c, user := range st.Conns {
		if c != s.conn && user == name {
			return true
		}
	}
	return false
}

// Close detaches the session from its room. Safe to call more than once;
// the cleanup runs on the first call only.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.room.Update(func(st *models.RoomState) {
			delete(st.Conns, s.conn)

			if s.joined {
				s.releasePresence(st, s.username)
			}

			if st.LockedBy(s.username) {
				st.Lock = nil
			}

			broadcastState(s.room.ID, st)
		})

		s.manager.forget(s)

		log.Printf("  Session %s left room %s (user: %q)", s.ID, s.RoomID, s.username)
	})
}

func (s *Session) reply(event interface{}) {
	if err := sendTo(s.conn, event); err != nil {
		log.Printf("⚠️  Failed to reply to session %s: %v", s.ID, err)
	}
}
