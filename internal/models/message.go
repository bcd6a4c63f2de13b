package models

import (
	"encoding/json"
	"fmt"
)

/*
LEARNING: CLOSED TAGGED VARIANTS

Go has no sum types, but an interface with an unexported method is the
idiomatic stand-in: only types in this package can implement Message, so a
type switch over it covers every variant the protocol knows about.

ParseMessage validates the shape once at the boundary. Handlers receive a
typed value and never have to check for missing fields again.
*/

// Inbound message types
const (
	MessageTypeJoin   = "join"
	MessageTypeLock   = "lock"
	MessageTypeUnlock = "unlock"
	MessageTypeXML    = "xml"
	MessageTypeFocus  = "focus"
	MessageTypeBlur   = "blur"
)

// Message is one inbound protocol message
type Message interface {
	messageType() string
}

// JoinMessage sets the session username. User may be empty.
type JoinMessage struct {
	User string
}

// LockMessage requests the edit lock
type LockMessage struct{}

// UnlockMessage releases the edit lock
type UnlockMessage struct{}

// ContentMessage replaces the room content
type ContentMessage struct {
	Content string
}

// FocusMessage marks an element as focused by the sender
type FocusMessage struct {
	Element string
}

// BlurMessage clears the focus on an element
type BlurMessage struct {
	Element string
}

// UnknownMessage is any message with a missing or unrecognized type.
// It is ignored by the session.
type UnknownMessage struct {
	Type string
}

func (JoinMessage) messageType() string    { return MessageTypeJoin }
func (LockMessage) messageType() string    { return MessageTypeLock }
func (UnlockMessage) messageType() string  { return MessageTypeUnlock }
func (ContentMessage) messageType() string { return MessageTypeXML }
func (FocusMessage) messageType() string   { return MessageTypeFocus }
func (BlurMessage) messageType() string    { return MessageTypeBlur }
func (m UnknownMessage) messageType() string {
	return m.Type
}

// TypeOf returns the wire type of a message
func TypeOf(m Message) string {
	return m.messageType()
}

// MessageError is returned for inbound messages that cannot be applied
type MessageError struct {
	Reason string
}

func (e *MessageError) Error() string {
	return fmt.Sprintf("malformed message: %s", e.Reason)
}

type envelope struct {
	Type    string  `json:"type"`
	User    *string `json:"user"`
	Content *string `json:"content"`
	XML     *string `json:"xml"` // older clients send the content under this key
	Element *string `json:"element"`
}

// ParseMessage decodes and validates one inbound frame
func ParseMessage(raw []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &MessageError{Reason: "invalid JSON"}
	}

	switch env.Type {
	case MessageTypeJoin:
		msg := JoinMessage{}
		if env.User != nil {
			msg.User = *env.User
		}
		return msg, nil

	case MessageTypeLock:
		return LockMessage{}, nil

	case MessageTypeUnlock:
		return UnlockMessage{}, nil

	case MessageTypeXML:
		content := env.Content
		if content == nil {
			content = env.XML
		}
		if content == nil {
			return nil, &MessageError{Reason: "xml message requires content"}
		}
		return ContentMessage{Content: *content}, nil

	case MessageTypeFocus:
		if env.Element == nil || *env.Element == "" {
			return nil, &MessageError{Reason: "focus message requires an element"}
		}
		return FocusMessage{Element: *env.Element}, nil

	case MessageTypeBlur:
		if env.Element == nil {
			return nil, &MessageError{Reason: "blur message requires an element"}
		}
		return BlurMessage{Element: *env.Element}, nil

	default:
		return UnknownMessage{Type: env.Type}, nil
	}
}
