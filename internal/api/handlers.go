package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"drawsync/internal/middleware"
	"drawsync/internal/models"
	"drawsync/internal/repository"

	"github.com/gorilla/mux"
)

// Handler handles HTTP requests
type Handler struct {
	rooms     RoomRegistry
	sessions  SessionStats
	wsHandler http.Handler
}

func NewHandler(rooms RoomRegistry, sessions SessionStats, wsHandler http.Handler) *Handler {
	return &Handler{
		rooms:     rooms,
		sessions:  sessions,
		wsHandler: wsHandler,
	}
}

// Room handlers

func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.rooms.List())
}

func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	h.createRoom(w, r, http.StatusCreated)
}

// LegacyCreateRoom answers a successful create with 200, as /files always has
func (h *Handler) LegacyCreateRoom(w http.ResponseWriter, r *http.Request) {
	h.createRoom(w, r, http.StatusOK)
}

func (h *Handler) createRoom(w http.ResponseWriter, r *http.Request, okStatus int) {
	var req models.RoomCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	room, err := h.rooms.Create(req.Name, req.InitialContent())
	if err != nil {
		middleware.AddSpanError(r.Context(), err)
		switch {
		case errors.Is(err, repository.ErrInvalidRoomID):
			writeError(w, http.StatusBadRequest, "Name cannot be empty")
		case errors.Is(err, repository.ErrRoomExists):
			writeError(w, http.StatusConflict, "File already exists")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, okStatus, models.RoomCreated{OK: true, ID: room.ID})
}

func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	room, err := h.rooms.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}

	content, lock := room.Content()
	writeJSON(w, http.StatusOK, models.RoomView{
		ID:      room.ID,
		Content: content,
		Lock:    models.NewLockView(lock),
	})
}

// LegacyGetRoom returns the room with its content under "xml"
func (h *Handler) LegacyGetRoom(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	room, err := h.rooms.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}

	content, lock := room.Content()
	writeJSON(w, http.StatusOK, models.LegacyRoomView{
		ID:   room.ID,
		XML:  content,
		Lock: models.NewLockView(lock),
	})
}

// UpdateRoom replaces the content without checking the edit lock.
// Connected clients are not notified.
func (h *Handler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req models.RoomUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	content := req.NewContent()
	if content == nil {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	room, err := h.rooms.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}

	room.SetContent(*content)
	writeJSON(w, http.StatusOK, models.OKResponse{OK: true})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"rooms":    len(h.rooms.List()),
		"sessions": h.sessions.ActiveSessions(),
	})
}

// HandleRoomWebSocket upgrades to the real-time channel of a room
func (h *Handler) HandleRoomWebSocket(w http.ResponseWriter, r *http.Request) {
	h.wsHandler.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("⚠️  Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.ErrorResponse{Error: message})
}
