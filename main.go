package main

import (
	"context"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"

	"github.com/AnthonyVillarreal2001/chat-espe-backend/modules/api"
	"github.com/AnthonyVillarreal2001/chat-espe-backend/modules/coordinator"
	"github.com/AnthonyVillarreal2001/chat-espe-backend/modules/directory"
	"github.com/AnthonyVillarreal2001/chat-espe-backend/modules/presence"
	"github.com/AnthonyVillarreal2001/chat-espe-backend/modules/registry"
	"github.com/AnthonyVillarreal2001/chat-espe-backend/modules/relay"
	"github.com/AnthonyVillarreal2001/chat-espe-backend/modules/storage"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== chat-espe backend - Room & Session Coordinator ===")

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Create modules
	storageMod := storage.NewModule()
	presenceMod := presence.NewModule()
	registryMod := registry.NewModule()
	directoryMod := directory.NewModule(storageMod)
	relayMod := relay.NewModule(storageMod, registryMod, directoryMod)
	coordinatorMod := coordinator.NewModule(directoryMod, presenceMod, registryMod, storageMod, relayMod)
	apiMod := api.NewModule(directoryMod, relayMod, coordinatorMod, registryMod.Sessions())

	// The connection table lives in the API module; relay and coordinator
	// fan out through it.
	relayMod.SetBroadcaster(apiMod.Broadcaster())
	coordinatorMod.SetBroadcaster(apiMod.Broadcaster())

	// Register modules with the framework.
	// Order: stores first, then the services built on them, transport last.
	app.Register(storageMod)
	app.Register(presenceMod)
	app.Register(registryMod)
	app.Register(directoryMod)
	app.Register(relayMod)
	app.Register(coordinatorMod)
	app.Register(apiMod)

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo()

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Println("Architecture:")
	log.Println("  - HTTP/WebSocket: Fiber")
	log.Println("  - Durable store: SQLite via GORM (rooms, session records, messages)")
	log.Printf("  - Presence locks: Redis at %s (1h TTL)", redisAddr)
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%s):", port)
	log.Println("  GET    /health            - Health check")
	log.Println("  POST   /api/admin/login   - Admin login, returns bearer token")
	log.Println("  POST   /api/admin/rooms   - Create a room {name, pin, type}")
	log.Println("")
	log.Printf("WebSocket Endpoint (ws://localhost:%s/ws):", port)
	log.Println("  Inbound events:  join_room, message, file")
	log.Println("  Outbound events: history, joined, user_list, message, file, error")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
