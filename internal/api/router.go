package api

import (
	"drawsync/internal/middleware"

	"github.com/gorilla/mux"
)

func SetupRoutes(h *Handler, allowedOrigins []string) *mux.Router {
	r := mux.NewRouter()

	// Middleware runs in order - tracing first, then recovery, then CORS
	r.Use(middleware.TracingMiddleware)
	r.Use(middleware.ErrorRecoveryMiddleware)
	r.Use(middleware.CORSMiddleware(allowedOrigins))

	api := r.PathPrefix("/api").Subrouter()

	// Room lifecycle
	api.HandleFunc("/files", h.ListRooms).Methods("GET")
	api.HandleFunc("/files", h.CreateRoom).Methods("POST")
	api.HandleFunc("/files/{id}", h.GetRoom).Methods("GET")
	api.HandleFunc("/files/{id}", h.UpdateRoom).Methods("PUT")

	api.HandleFunc("/health", h.Health).Methods("GET")

	// Unprefixed routes kept for older clients of the file API
	r.HandleFunc("/files", h.ListRooms).Methods("GET")
	r.HandleFunc("/files", h.LegacyCreateRoom).Methods("POST")
	r.HandleFunc("/files/{id}", h.LegacyGetRoom).Methods("GET")
	r.HandleFunc("/files/{id}", h.UpdateRoom).Methods("PUT")

	// Real-time channel, one per room
	r.HandleFunc("/ws/{id}", h.HandleRoomWebSocket)

	return r
}
