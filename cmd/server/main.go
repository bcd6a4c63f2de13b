package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"drawsync/internal/api"
	"drawsync/internal/config"
	"drawsync/internal/repository"
	"drawsync/internal/services/collaboration"
	"drawsync/internal/telemetry"
)

const (
	serviceName    = "drawsync"
	serviceVersion = "1.0.0"
)

func main() {
	log.Println("🚀 Starting drawsync room server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	// Tracing first so every later operation is traced
	shutdownTracing, err := telemetry.InitJaeger(serviceName, serviceVersion, cfg.JaegerEndpoint)
	if err != nil {
		log.Printf("⚠️  Failed to initialize Jaeger: %v (continuing without tracing)", err)
		shutdownTracing = func(ctx context.Context) error { return nil }
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("⚠️  Failed to shutdown Jaeger: %v", err)
		}
	}()

	// Rooms live for the lifetime of the process
	registry := repository.NewRoomRegistry(cfg.DefaultContent)

	sessionManager := collaboration.NewSessionManager(registry, collaboration.ManagerConfig{
		SweepInterval:     cfg.LockSweepInterval,
		PermissiveContent: cfg.PermissiveContentUpdates,
	})
	sessionManager.Start()

	wsHandler := collaboration.NewWebSocketHandler(sessionManager, collaboration.WebSocketConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		SendBufferSize: cfg.SendBufferSize,
	})

	handler := api.NewHandler(registry, sessionManager, wsHandler)
	router := api.SetupRoutes(handler, cfg.AllowedOrigins)

	// No WriteTimeout: it would also apply to hijacked websocket connections
	addr := cfg.Addr()
	server := &http.Server{
		Addr:        addr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("🌐 Server listening on http://%s", addr)
		log.Printf("📚 API Endpoints:")
		log.Printf("   GET    /api/files       - List rooms")
		log.Printf("   POST   /api/files       - Create room")
		log.Printf("   GET    /api/files/:id   - Get room content and lock")
		log.Printf("   PUT    /api/files/:id   - Replace room content")
		log.Printf("   GET    /ws/:id          - Join room (WebSocket)")
		log.Println()

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown does not wait for hijacked connections; the session manager closes those
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("⚠️  Server forced to shutdown: %v", err)
	}

	sessionManager.Shutdown()

	log.Println("✓ Server shutdown complete")
}
