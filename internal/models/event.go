package models

import (
	"encoding/json"
	"time"
)

// Outbound event types
const (
	EventState      = "state"
	EventLock       = "lock"
	EventLockDenied = "lock-denied"
	EventUnlock     = "unlock"
	EventXML        = "xml"
	EventError      = "error"
)

// LockView is the wire form of a Lock
type LockView struct {
	By    string  `json:"by"`
	Since float64 `json:"since"`
}

// NewLockView converts a lock to its wire form; nil stays nil
func NewLockView(l *Lock) *LockView {
	if l == nil {
		return nil
	}
	return &LockView{
		By:    l.Holder,
		Since: float64(l.Since.UnixNano()) / float64(time.Second),
	}
}

// MarshalJSON writes a holder that never joined as "by": null
func (v LockView) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		By    *string `json:"by"`
		Since float64 `json:"since"`
	}{By: holderOrNil(v.By), Since: v.Since})
}

func holderOrNil(name string) *string {
	if name == "" {
		return nil
	}
	return &name
}

// StateEvent is the full room view sent to converge every client
type StateEvent struct {
	Type    string            `json:"type"`
	Content string            `json:"content"`
	Lock    *LockView         `json:"lock"`
	Users   []string          `json:"users"`
	Focus   map[string]string `json:"focus"`
}

// LockEvent announces a granted lock
type LockEvent struct {
	Type string `json:"type"`
	By   string `json:"by"`
}

// MarshalJSON writes a holder that never joined as "by": null
func (e LockEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string  `json:"type"`
		By   *string `json:"by"`
	}{Type: e.Type, By: holderOrNil(e.By)})
}

// LockDeniedEvent is sent only to the requester of a refused lock
type LockDeniedEvent struct {
	Type string    `json:"type"`
	Lock *LockView `json:"lock"`
}

// UnlockEvent announces a released lock
type UnlockEvent struct {
	Type string `json:"type"`
}

// ContentEvent carries a replaced room content
type ContentEvent struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	By      string `json:"by"`
}

// ErrorEvent answers a message the server could not apply
type ErrorEvent struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}
