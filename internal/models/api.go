package models

// RoomCreate is the body of an explicit room creation.
// Content is optional; older clients send it as "xml".
type RoomCreate struct {
	Name    string  `json:"name"`
	Content *string `json:"content,omitempty"`
	XML     *string `json:"xml,omitempty"`
}

// InitialContent returns the requested content, or nil for the default template
func (c RoomCreate) InitialContent() *string {
	if c.Content != nil {
		return c.Content
	}
	return c.XML
}

// RoomUpdate is the body of a plain content replacement
type RoomUpdate struct {
	Content *string `json:"content,omitempty"`
	XML     *string `json:"xml,omitempty"`
}

// NewContent returns the replacement content, or nil when none was sent
func (u RoomUpdate) NewContent() *string {
	if u.Content != nil {
		return u.Content
	}
	return u.XML
}

type RoomCreated struct {
	OK bool   `json:"ok"`
	ID string `json:"id"`
}

// RoomView is the REST view of a room
type RoomView struct {
	ID      string    `json:"id"`
	Content string    `json:"content"`
	Lock    *LockView `json:"lock"`
}

// LegacyRoomView is RoomView as the /files routes have always shaped it
type LegacyRoomView struct {
	ID   string    `json:"id"`
	XML  string    `json:"xml"`
	Lock *LockView `json:"lock"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
