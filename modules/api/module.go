// Package api is the outer surface: the WebSocket transport the coordinator
// speaks through, and the administrative HTTP endpoints.
package api

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-monolith/mono"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/AnthonyVillarreal2001/chat-espe-backend/modules/coordinator"
	"github.com/AnthonyVillarreal2001/chat-espe-backend/modules/directory"
	"github.com/AnthonyVillarreal2001/chat-espe-backend/modules/relay"
)

// Module runs the Fiber server with the WebSocket endpoint and admin API.
type Module struct {
	app         *fiber.App
	addr        string
	conns       *ConnTable
	directory   *directory.Module
	relay       *relay.Module
	coordinator *coordinator.Module
	handlers    *Handlers
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates the API module. The connection table is created eagerly
// so it can be injected into the relay and coordinator before startup.
func NewModule(dir *directory.Module, rel *relay.Module, coord *coordinator.Module, members RoomMembers) *Module {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	return &Module{
		addr:        ":" + port,
		conns:       NewConnTable(members),
		directory:   dir,
		relay:       rel,
		coordinator: coord,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "api"
}

// Broadcaster returns the connection table used for room fan-out.
func (m *Module) Broadcaster() *ConnTable {
	return m.conns
}

// Start builds the handlers and runs the HTTP server.
func (m *Module) Start(_ context.Context) error {
	auth, err := NewAdminAuth()
	if err != nil {
		return err
	}

	m.handlers = NewHandlers(
		m.coordinator.Service(),
		m.relay.Service(),
		m.directory.Service(),
		m.conns,
		auth,
	)

	m.app = fiber.New(fiber.Config{
		AppName:               "chat-espe-backend",
		DisableStartupMessage: true,
		BodyLimit:             12 * 1024 * 1024, // file messages top out at 10 MiB plus envelope
		ErrorHandler:          m.errorHandler,
	})

	m.app.Use(recover.New())
	m.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} ${method} ${path} ${latency}\n",
	}))

	allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	m.app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))

	m.registerRoutes(auth)

	// Start server in goroutine with startup error detection.
	errCh := make(chan error, 1)
	go func() {
		if err := m.app.Listen(m.addr); err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	log.Printf("[api] Server started on %s", m.addr)
	return nil
}

// Stop gracefully shuts down the server.
func (m *Module) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	if err := m.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	log.Println("[api] Server stopped")
	return nil
}

// Health reports whether the server is up.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"addr":        m.addr,
			"connections": m.conns.Len(),
		},
	}
}

func (m *Module) registerRoutes(auth *AdminAuth) {
	m.app.Get("/health", m.handlers.HealthCheck)

	// WebSocket upgrade middleware
	m.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	m.app.Get("/ws", websocket.New(m.handlers.HandleWebSocket))

	admin := m.app.Group("/api/admin")
	admin.Post("/login", m.handlers.AdminLogin)
	admin.Post("/rooms", AdminRequired(auth), m.handlers.CreateRoom)
}

// errorHandler handles errors globally.
func (m *Module) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	log.Printf("[api] HTTP error %d: %v", code, err)
	return c.Status(code).JSON(fiber.Map{
		"error": message,
	})
}
