// Package presence provides the distributed presence lock backed by Redis.
package presence

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-monolith/mono"
	"github.com/redis/go-redis/v9"
)

// Module owns the Redis client and the presence lock store.
type Module struct {
	client *redis.Client
	lock   *LockStore
	addr   string
	ttl    time.Duration
	strict bool
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new presence module.
func NewModule() *Module {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	ttl := DefaultTTL
	if v := os.Getenv("LOCK_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			ttl = d
		}
	}

	return &Module{
		addr:   addr,
		ttl:    ttl,
		strict: os.Getenv("PRESENCE_STRICT") == "true",
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "presence"
}

// Start creates the Redis client. An unreachable lock store is a warning, not
// a startup failure: joins will be rejected until it recovers. PRESENCE_STRICT
// makes unreachability fatal for test bootstraps.
func (m *Module) Start(ctx context.Context) error {
	m.client = redis.NewClient(&redis.Options{
		Addr:         m.addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	m.lock = NewLockStore(m.client, m.ttl)

	if err := m.client.Ping(ctx).Err(); err != nil {
		if m.strict {
			return fmt.Errorf("failed to connect to Redis at %s: %w", m.addr, err)
		}
		log.Printf("[presence] WARNING: Redis unreachable at %s, joins will fail until it recovers: %v", m.addr, err)
		return nil
	}

	log.Printf("[presence] Connected to Redis at %s (lock TTL: %s)", m.addr, m.ttl)
	return nil
}

// Stop closes the Redis client.
func (m *Module) Stop(_ context.Context) error {
	if m.client == nil {
		return nil
	}
	if err := m.client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis connection: %w", err)
	}
	log.Println("[presence] Module stopped")
	return nil
}

// Health checks the Redis connection.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if m.client == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "redis client not initialized",
		}
	}
	if err := m.client.Ping(ctx).Err(); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("redis ping failed: %v", err),
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"addr": m.addr,
			"ttl":  m.ttl.String(),
		},
	}
}

// Lock returns the presence lock store.
func (m *Module) Lock() *LockStore {
	return m.lock
}
