package collaboration

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"drawsync/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
)

/*
LEARNING: READ AND WRITE PUMPS

gorilla/websocket allows one concurrent reader and one concurrent writer per
connection. Each connection therefore gets:

- a read goroutine that feeds frames to the Session in arrival order
- a write goroutine that drains a buffered Send channel

Broadcasts only enqueue into the channel, so a slow peer never stalls the
room. When the buffer is full the client is closed and its read loop ends,
which runs the session cleanup.
*/

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 << 20 // diagrams can be large

	DefaultSendBufferSize = 256
)

var (
	ErrSendBufferFull = errors.New("send buffer full")
	ErrClientClosed   = errors.New("client closed")
)

// Client is the websocket side of a connection
type Client struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

// NewClient wraps conn with an outbound queue of bufferSize messages
func NewClient(conn *websocket.Conn, bufferSize int) *Client {
	if bufferSize <= 0 {
		bufferSize = DefaultSendBufferSize
	}
	return &Client{
		conn: conn,
		send: make(chan []byte, bufferSize),
	}
}

// Send enqueues message without blocking.
// A full buffer means the peer is too slow or gone; the client is closed.
func (c *Client) Send(message []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}

	select {
	case c.send <- message:
		return nil
	default:
		c.closed = true
		close(c.send)
		return ErrSendBufferFull
	}
}

// Close stops the outbound queue; the write pump then closes the socket
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
	return nil
}

// ReadPump reads frames and hands them to the session in order.
// It returns when the transport reports a disconnect; cleanup always runs.
func (c *Client) ReadPump(ctx context.Context, session *Session) {
	defer func() {
		session.Close()
		c.Close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		if err := session.HandleMessage(ctx, message); err != nil {
			log.Printf("  Session %s: %v", session.ID, err)
		}
	}
}

// WritePump writes queued messages, one text frame each, and keeps the
// connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.Close()
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		}
	}
}

// WebSocketConfig configures the upgrader and per-client buffers
type WebSocketConfig struct {
	AllowedOrigins []string
	SendBufferSize int
}

// WebSocketHandler handles websocket connections for rooms
type WebSocketHandler struct {
	sessionManager *SessionManager
	upgrader       websocket.Upgrader
	sendBufferSize int
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(sessionManager *SessionManager, cfg WebSocketConfig) *WebSocketHandler {
	return &WebSocketHandler{
		sessionManager: sessionManager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(cfg.AllowedOrigins),
		},
		sendBufferSize: cfg.SendBufferSize,
	}
}

// originChecker allows requests without an Origin header (non-browser
// clients), any origin when the list contains "*", and listed origins.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// ServeHTTP lets the handler be mounted directly on a router
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.HandleRoomConnection(w, r)
}

// HandleRoomConnection upgrades the request and attaches it to the room in
// the {id} path variable.
func (h *WebSocketHandler) HandleRoomConnection(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["id"]

	ctx, span := middleware.StartSpan(r.Context(), "WebSocket.Connect",
		attribute.String("room.id", roomID),
	)
	defer span.End()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade WebSocket: %v", err)
		middleware.AddSpanError(ctx, err)
		return
	}

	client := NewClient(conn, h.sendBufferSize)
	session := h.sessionManager.Connect(roomID, client)
	span.SetAttributes(attribute.String("session.id", session.ID))

	// The request context ends when this handler returns; the pumps outlive it
	pumpCtx := context.WithoutCancel(ctx)
	go client.WritePump()
	go client.ReadPump(pumpCtx, session)

	log.Printf("✓ WebSocket connection established for room %s (session: %s)", roomID, session.ID)
}
