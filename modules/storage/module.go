// Package storage owns the durable store: rooms, session records and
// messages, persisted with GORM over SQLite.
package storage

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-monolith/mono"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/AnthonyVillarreal2001/chat-espe-backend/domain/chat"
)

// Module provides the durable store for the coordinator.
type Module struct {
	db       *gorm.DB
	dbPath   string
	rooms    *RoomRepository
	sessions *SessionRepository
	messages *MessageRepository
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new storage module.
func NewModule() *Module {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "chat_espe.db"
	}
	return &Module{
		dbPath: dbPath,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "storage"
}

// Start opens the database, runs migrations and builds the repositories.
func (m *Module) Start(_ context.Context) error {
	log.Printf("[storage] Connecting to SQLite database: %s", m.dbPath)

	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "true" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	if err := m.db.AutoMigrate(&chat.Room{}, &chat.SessionRecord{}, &chat.Message{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	m.rooms = NewRoomRepository(m.db)
	m.sessions = NewSessionRepository(m.db)
	m.messages = NewMessageRepository(m.db)

	log.Println("[storage] Module started")
	return nil
}

// Stop closes the database connection.
func (m *Module) Stop(_ context.Context) error {
	if m.db == nil {
		return nil
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	log.Println("[storage] Database connection closed")
	return nil
}

// Health performs a database ping.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get sql.DB: %v", err),
		}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"driver": "sqlite",
			"path":   m.dbPath,
		},
	}
}

// Rooms returns the room repository.
func (m *Module) Rooms() *RoomRepository {
	return m.rooms
}

// Sessions returns the session record repository.
func (m *Module) Sessions() *SessionRepository {
	return m.sessions
}

// Messages returns the message repository.
func (m *Module) Messages() *MessageRepository {
	return m.messages
}
